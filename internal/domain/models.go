package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is a committed expense record.
//
// Amounts are kept as decimal text, exactly as entered or extracted.
type Invoice struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Date         string    `db:"date" json:"date"`
	VendorName   string    `db:"vendor_name" json:"vendor_name"`
	EmployeeName string    `db:"employee_name" json:"employee_name"`
	Category     string    `db:"category" json:"category"`
	GSTAmount    string    `db:"gst_amount" json:"gst_amount"`
	TotalAmount  string    `db:"total_amount" json:"total_amount"`
	ImageURL     string    `db:"image_url" json:"image_url"`
	ImageKey     string    `db:"image_key" json:"-"`
	CreatedBy    string    `db:"created_by" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// InvoiceFields holds the user-editable attributes shared by invoices and drafts.
type InvoiceFields struct {
	Date         string `json:"date"`
	VendorName   string `json:"vendor_name"`
	EmployeeName string `json:"employee_name"`
	Category     string `json:"category"`
	GSTAmount    string `json:"gst_amount"`
	TotalAmount  string `json:"total_amount"`
}

// Fields returns the editable attributes of the invoice.
func (i *Invoice) Fields() InvoiceFields {
	return InvoiceFields{
		Date:         i.Date,
		VendorName:   i.VendorName,
		EmployeeName: i.EmployeeName,
		Category:     i.Category,
		GSTAmount:    i.GSTAmount,
		TotalAmount:  i.TotalAmount,
	}
}

// Apply copies the editable attributes onto the invoice.
func (i *Invoice) Apply(f InvoiceFields) {
	i.Date = f.Date
	i.VendorName = f.VendorName
	i.EmployeeName = f.EmployeeName
	i.Category = f.Category
	i.GSTAmount = f.GSTAmount
	i.TotalAmount = f.TotalAmount
}

// Session identifies the signed-in user of a request.
type Session struct {
	Phone     string    `json:"phone"`
	LoginTime time.Time `json:"login_time"`
}
