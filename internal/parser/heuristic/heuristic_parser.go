// Package heuristic adapts the local keyword extractor to the FieldParser port.
package heuristic

import (
	"context"

	"invoicedesk/internal/extractor"
	"invoicedesk/internal/port"
)

// ProviderName identifies results produced by the local rules.
const ProviderName = "heuristic"

// Parser implements port.FieldParser with the local rule table. It never fails.
type Parser struct{}

// NewParser creates a heuristic parser.
func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(_ context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	return &port.ParseOutput{
		Fields:    extractor.Extract(input.Text),
		Provider:  ProviderName,
		ModelUsed: "rules",
	}, nil
}
