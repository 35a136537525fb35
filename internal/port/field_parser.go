package port

import (
	"context"

	"invoicedesk/internal/domain"
)

// ParseInput carries recognized document text to a field parser.
type ParseInput struct {
	Text string
}

// ParseOutput contains the fields a parser recovered.
type ParseOutput struct {
	Fields    domain.ExtractedFields
	Provider  string
	ModelUsed string
}

// FieldParser turns recognized invoice text into ExtractedFields.
type FieldParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
