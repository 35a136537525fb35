package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar date format.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseAmount parses a non-negative decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// Validate checks the editable attributes of an invoice before it is stored.
func (f InvoiceFields) Validate() error {
	if _, err := ParseDate(f.Date); err != nil {
		return err
	}
	if _, err := ParseAmount(f.GSTAmount); err != nil {
		return err
	}
	if _, err := ParseAmount(f.TotalAmount); err != nil {
		return err
	}
	return CheckCategory(f.Category)
}

// DateRange is an inclusive range of invoice dates.
type DateRange struct {
	From string
	To   string
}

// ParseDateRange builds a DateRange from optional bounds. Both bounds empty
// yields nil unless required is set, in which case ErrDateRangeRequired is
// returned. A single bound is also rejected when required.
func ParseDateRange(from, to string, required bool) (*DateRange, error) {
	if from == "" && to == "" {
		if required {
			return nil, ErrDateRangeRequired
		}
		return nil, nil
	}
	if required && (from == "" || to == "") {
		return nil, ErrDateRangeRequired
	}
	var fromT, toT time.Time
	var err error
	if from != "" {
		if fromT, err = ParseDate(from); err != nil {
			return nil, err
		}
	}
	if to != "" {
		if toT, err = ParseDate(to); err != nil {
			return nil, err
		}
	}
	if from != "" && to != "" && fromT.After(toT) {
		return nil, ErrInvalidDateRange
	}
	return &DateRange{From: from, To: to}, nil
}
