package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"

	"invoicedesk/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Columns is the export header row, shared with the XLSX export.
var Columns = []string{"Date", "Vendor", "Employee", "Category", "GST", "Total"}

// Writer wraps csv.Writer for exporting invoices as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(Columns)
}

// WriteInvoices converts invoices to CSV rows and writes them.
func (w *Writer) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		if err := w.csv.Write(Row(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Row returns the export cells of an invoice in Columns order.
func Row(inv *domain.Invoice) []string {
	return []string{
		inv.Date,
		inv.VendorName,
		inv.EmployeeName,
		inv.Category,
		inv.GSTAmount,
		inv.TotalAmount,
	}
}

// BuildFilename returns the attachment name for an export covering r.
// Format: invoices_{from}_to_{to}.{ext}
func BuildFilename(r domain.DateRange, ext string) string {
	return fmt.Sprintf("invoices_%s_to_%s.%s", r.From, r.To, ext)
}
