package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicedesk/internal/domain"
)

func TestInvoiceFields_Validate(t *testing.T) {
	valid := domain.InvoiceFields{Date: "2024-02-29", GSTAmount: "18.00", TotalAmount: "118", Category: "Food"}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Date = "29/02/2024"
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidDate)

	bad = valid
	bad.TotalAmount = "-1"
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidAmount)

	bad = valid
	bad.GSTAmount = "abc"
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidAmount)

	bad = valid
	bad.Category = "Others"
	assert.ErrorIs(t, bad.Validate(), domain.ErrCustomCategoryTooShort)
}

func TestParseDateRange(t *testing.T) {
	r, err := domain.ParseDateRange("", "", false)
	require.NoError(t, err)
	assert.Nil(t, r)

	_, err = domain.ParseDateRange("", "", true)
	assert.ErrorIs(t, err, domain.ErrDateRangeRequired)

	_, err = domain.ParseDateRange("2024-01-01", "", true)
	assert.ErrorIs(t, err, domain.ErrDateRangeRequired)

	r, err = domain.ParseDateRange("2024-01-01", "", false)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", r.From)

	_, err = domain.ParseDateRange("2024-02-01", "2024-01-01", false)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = domain.ParseDateRange("2024-13-01", "2024-12-01", false)
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	r, err = domain.ParseDateRange("2024-01-01", "2024-01-01", true)
	require.NoError(t, err)
	assert.Equal(t, &domain.DateRange{From: "2024-01-01", To: "2024-01-01"}, r)
}

func TestExtractedFields_JSON(t *testing.T) {
	f := domain.ExtractedFields{VendorName: domain.Some("Acme"), GSTAmount: domain.Some("")}
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":null,"vendor_name":"Acme","employee_name":null,"category":null,"gst_amount":"","total_amount":null}`, string(b))

	var back domain.ExtractedFields
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, f, back)
	assert.Equal(t, []string{"vendor_name", "gst_amount"}, back.PresentFields())
}
