package parser

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/port"
)

// MergeParser runs two FieldParsers in parallel and fills every attribute the
// primary left absent from the secondary's result. When the primary fails the
// secondary's result is returned on its own.
type MergeParser struct {
	primary   port.FieldParser
	secondary port.FieldParser
	log       *zap.Logger
}

// NewMergeParser creates a MergeParser from primary and secondary parsers.
func NewMergeParser(primary, secondary port.FieldParser, log *zap.Logger) *MergeParser {
	return &MergeParser{primary: primary, secondary: secondary, log: log}
}

func (m *MergeParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	type result struct {
		output *port.ParseOutput
		err    error
	}

	var wg sync.WaitGroup
	var primary, secondary result

	wg.Add(2)
	go func() {
		defer wg.Done()
		primary.output, primary.err = m.primary.Parse(ctx, input)
	}()
	go func() {
		defer wg.Done()
		secondary.output, secondary.err = m.secondary.Parse(ctx, input)
	}()
	wg.Wait()

	switch {
	case primary.err != nil && secondary.err != nil:
		return nil, fmt.Errorf("merge parse: primary: %v; secondary: %w", primary.err, secondary.err)
	case primary.err != nil:
		if IsRateLimited(primary.err) {
			m.log.Info("primary parser rate limited, using secondary result", zap.Error(primary.err))
		} else {
			m.log.Warn("primary parser failed, using secondary result", zap.Error(primary.err))
		}
		return secondary.output, nil
	case secondary.err != nil:
		return primary.output, nil
	}

	out := *primary.output
	out.Fields = MergeFields(primary.output.Fields, secondary.output.Fields)
	return &out, nil
}

// MergeFields returns primary with every absent attribute taken from secondary.
func MergeFields(primary, secondary domain.ExtractedFields) domain.ExtractedFields {
	pick := func(p, s domain.Optional) domain.Optional {
		if p.Present {
			return p
		}
		return s
	}
	return domain.ExtractedFields{
		Date:         pick(primary.Date, secondary.Date),
		VendorName:   pick(primary.VendorName, secondary.VendorName),
		EmployeeName: pick(primary.EmployeeName, secondary.EmployeeName),
		Category:     pick(primary.Category, secondary.Category),
		GSTAmount:    pick(primary.GSTAmount, secondary.GSTAmount),
		TotalAmount:  pick(primary.TotalAmount, secondary.TotalAmount),
	}
}
