package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"invoicedesk/internal/csvexport"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/port"
	"invoicedesk/internal/xlsxexport"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportInput selects the invoices to export. Both dates are required.
type ExportInput struct {
	From   string
	To     string
	Format domain.ExportFormat
}

// ExportResult is a rendered export ready to be sent as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Rows        int
}

// ExportService renders dashboard exports.
type ExportService interface {
	Export(ctx context.Context, input ExportInput) (*ExportResult, error)
}

type exportService struct {
	repo port.InvoiceRepository
	log  *zap.Logger
}

// NewExportService creates a new ExportService implementation.
func NewExportService(repo port.InvoiceRepository, log *zap.Logger) ExportService {
	return &exportService{repo: repo, log: log}
}

func (s *exportService) Export(ctx context.Context, input ExportInput) (*ExportResult, error) {
	start := time.Now()

	format := input.Format
	if format == "" {
		format = domain.ExportFormatCSV
	}
	if format != domain.ExportFormatCSV && format != domain.ExportFormatXLSX {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedExportFormat, format)
	}

	r, err := domain.ParseDateRange(input.From, input.To, true)
	if err != nil {
		return nil, err
	}

	invoices, _, err := s.repo.List(ctx, port.InvoiceFilter{Range: r})
	if err != nil {
		return nil, fmt.Errorf("export.Export: %w", err)
	}

	result := &ExportResult{
		Filename: csvexport.BuildFilename(*r, string(format)),
		Rows:     len(invoices),
	}
	switch format {
	case domain.ExportFormatXLSX:
		result.ContentType = contentTypeXLSX
		if result.Data, err = xlsxexport.Build(invoices); err != nil {
			return nil, fmt.Errorf("export.Export: %w", err)
		}
	default:
		result.ContentType = contentTypeCSV
		if result.Data, err = renderCSV(invoices); err != nil {
			return nil, fmt.Errorf("export.Export: %w", err)
		}
	}

	s.log.Info("invoices exported",
		zap.String("format", string(format)),
		zap.String("from", r.From),
		zap.String("to", r.To),
		zap.Int("rows", len(invoices)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

func renderCSV(invoices []domain.Invoice) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(csvexport.BOM)

	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		return nil, err
	}
	if err := w.WriteInvoices(invoices); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
