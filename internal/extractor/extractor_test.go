package extractor_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/extractor"
)

func TestExtract_FullInvoice(t *testing.T) {
	text := strings.Join([]string{
		"TAX INVOICE",
		"Invoice Date: 2024-03-15",
		"Billed By: Acme Telecom Pvt Ltd",
		"Billed To: Ravi Kumar",
		"Expense Category: Mobile bill",
		"CGST 9%: 45.00",
		"Grand Total: INR 590.00 only",
	}, "\n")

	got := extractor.Extract(text)

	assert.Equal(t, domain.Some("2024-03-15"), got.Date)
	assert.Equal(t, domain.Some("Acme Telecom Pvt Ltd"), got.VendorName)
	assert.Equal(t, domain.Some("Ravi Kumar"), got.EmployeeName)
	assert.Equal(t, domain.Some("Mobile bill"), got.Category)
	assert.Equal(t, domain.Some("9"), got.GSTAmount)
	assert.Equal(t, domain.Some("590.00"), got.TotalAmount)
}

func TestExtract_NeverFails(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"\x00\xff\xfe garbage \t\r\n::::",
		strings.Repeat("lorem ipsum dolor sit amet ", 20000),
		"date date date",
		"vendor",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { extractor.Extract(in) })
	}
}

func TestExtract_NoMatches(t *testing.T) {
	got := extractor.Extract("hello world\nnothing to see here")
	assert.True(t, got.IsEmpty())
}

func TestExtract_Idempotent(t *testing.T) {
	text := "Date: 05/03/2024\nSupplier: Foo\nTotal Amount: 100"
	assert.Equal(t, extractor.Extract(text), extractor.Extract(text))
}

func FuzzExtract(f *testing.F) {
	seeds := []string{
		"",
		"Invoice Date: 2024-03-15\nBilled By: Acme\nGrand Total: INR 590.00",
		"Date: 05/03/2024\r\nSupplier: Foo\r\nTotal Amount: 100",
		"CGST 9%: 45.00\nExpense Category: Mobile bill",
		"date date date\nvendor\ntotal",
		"\x00\xff\xfe garbage \t\r\n::::",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, text string) {
		var first, second domain.ExtractedFields
		require.NotPanics(t, func() {
			first = extractor.Extract(text)
			second = extractor.Extract(text)
		})
		assert.Equal(t, first, second)
	})
}

func TestExtract_DateFormats(t *testing.T) {
	tests := []struct {
		name string
		line string
		want domain.Optional
	}{
		{"iso verbatim", "Date: 2024-01-15", domain.Some("2024-01-15")},
		{"day first slash", "Invoice date 05/03/2024", domain.Some("2024-03-05")},
		{"impossible slash date", "Date: 31/02/2024", domain.None()},
		{"no date token", "Due date: tomorrow", domain.None()},
		{"date without keyword", "Issued 2024-01-15", domain.None()},
		{"uppercase keyword", "DATE 2023-12-31", domain.Some("2023-12-31")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Extract(tt.line)
			assert.Equal(t, tt.want, got.Date)
		})
	}
}

func TestExtract_InvalidDateDoesNotClearEarlierMatch(t *testing.T) {
	got := extractor.Extract("Date: 2024-01-15\nDue date: 99/99/2024")
	assert.Equal(t, domain.Some("2024-01-15"), got.Date)
}

func TestExtract_LabelSplit(t *testing.T) {
	got := extractor.Extract("Vendor: Acme Corp")
	assert.Equal(t, domain.Some("Acme Corp"), got.VendorName)

	got = extractor.Extract("Vendor:")
	assert.False(t, got.VendorName.Present)

	got = extractor.Extract("Vendor Acme Corp")
	assert.False(t, got.VendorName.Present)

	got = extractor.Extract("Seller: Shop: Branch 2")
	assert.Equal(t, domain.Some("Shop: Branch 2"), got.VendorName)
}

func TestExtract_LastMatchWins(t *testing.T) {
	got := extractor.Extract("Vendor: A\nsomething else\nBilled By: B")
	assert.Equal(t, domain.Some("B"), got.VendorName)
}

func TestExtract_EmptyRemainderKeepsEarlierValue(t *testing.T) {
	got := extractor.Extract("Vendor: A\nVendor:   ")
	assert.Equal(t, domain.Some("A"), got.VendorName)
}

func TestExtract_NumericCapture(t *testing.T) {
	got := extractor.Extract("Grand Total: INR 1234.50 only")
	assert.Equal(t, domain.Some("1234.50"), got.TotalAmount)

	got = extractor.Extract("GST: 18.456")
	assert.Equal(t, domain.Some("18.45"), got.GSTAmount)

	got = extractor.Extract("Amount payable: rupees")
	assert.False(t, got.TotalAmount.Present)
}

func TestExtract_TotalPrefixIsAnchored(t *testing.T) {
	got := extractor.Extract("Total Amount: 500")
	assert.Equal(t, domain.Some("500"), got.TotalAmount)

	got = extractor.Extract("   total amount 750")
	assert.Equal(t, domain.Some("750"), got.TotalAmount)

	got = extractor.Extract("Net total amount: 900")
	assert.False(t, got.TotalAmount.Present)
}

func TestExtract_SubstringMatchingSetsSeveralFields(t *testing.T) {
	got := extractor.Extract("Employee Category: Staff")
	assert.Equal(t, domain.Some("Staff"), got.EmployeeName)
	assert.Equal(t, domain.Some("Staff"), got.Category)
	assert.False(t, got.VendorName.Present)
}

func TestExtract_WindowsLineEndings(t *testing.T) {
	got := extractor.Extract("Vendor: Acme\r\nTotal Amount: 10\r\n")
	assert.Equal(t, domain.Some("Acme"), got.VendorName)
	assert.Equal(t, domain.Some("10"), got.TotalAmount)
}

func TestApplyDefaults_AllAbsent(t *testing.T) {
	now := time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)
	got := extractor.ApplyDefaults(domain.ExtractedFields{}, now)

	assert.Equal(t, domain.InvoiceFields{
		Date:        "2025-07-04",
		GSTAmount:   "0",
		TotalAmount: "0",
	}, got)
}

func TestApplyDefaults_KeepsPresentValues(t *testing.T) {
	now := time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)
	fields := extractor.Extract("Date: 2024-01-01\nVendor: X\nGST: 5\nTotal Amount: 50")
	got := extractor.ApplyDefaults(fields, now)

	require.NoError(t, got.Validate())
	assert.Equal(t, "2024-01-01", got.Date)
	assert.Equal(t, "X", got.VendorName)
	assert.Equal(t, "", got.EmployeeName)
	assert.Equal(t, "5", got.GSTAmount)
	assert.Equal(t, "50", got.TotalAmount)
}
