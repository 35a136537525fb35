// Package extractor recovers invoice fields from raw recognized text with a
// fixed table of keyword rules.
//
// Extraction is a single forward pass over the lines of the input. Keyword
// tests run against the trimmed, lowercased line; values are captured from the
// original line. When several lines set the same field, the last one wins.
// Matching is by substring, so "Employee Category: Staff" sets both the
// employee and the category fields. Extraction never fails; the worst outcome
// is an ExtractedFields with every attribute absent.
package extractor

import (
	"strings"
	"time"

	"invoicedesk/internal/domain"
)

// Extract runs the rule table over text.
func Extract(text string) domain.ExtractedFields {
	var out domain.ExtractedFields
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		if lower == "" {
			continue
		}
		for _, r := range rules {
			if !r.match(lower) {
				continue
			}
			if v, ok := r.capture(line); ok {
				r.set(&out, v)
			}
		}
	}
	return out
}

// Default values for absent fields.
const (
	DefaultAmount = "0"
)

// ApplyDefaults resolves every absent attribute: the date becomes today's date,
// amounts become "0", and text fields become empty.
func ApplyDefaults(f domain.ExtractedFields, now time.Time) domain.InvoiceFields {
	return domain.InvoiceFields{
		Date:         f.Date.OrElse(now.Format(domain.DateLayout)),
		VendorName:   f.VendorName.OrElse(""),
		EmployeeName: f.EmployeeName.OrElse(""),
		Category:     f.Category.OrElse(""),
		GSTAmount:    f.GSTAmount.OrElse(DefaultAmount),
		TotalAmount:  f.TotalAmount.OrElse(DefaultAmount),
	}
}

// ruleFields lists the field names covered by the rule table, in evaluation order.
func ruleFields() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.field
	}
	return names
}
