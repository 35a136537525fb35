package extractor

import (
	"regexp"
	"strings"
	"time"

	"invoicedesk/internal/domain"
)

var (
	datePattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4}`)
	amountPattern = regexp.MustCompile(`(\d+(\.\d{1,2})?)`)
)

// matcher tests a trimmed, lowercased line.
type matcher func(lower string) bool

// capturer pulls a value out of the original line.
type capturer func(line string) (string, bool)

type setter func(f *domain.ExtractedFields, v string)

// rule is one row of the extraction table.
type rule struct {
	field   string
	match   matcher
	capture capturer
	set     setter
}

// rules are evaluated in order on every line. A line may satisfy several.
var rules = []rule{
	{
		field:   "date",
		match:   containsAny("date"),
		capture: captureDate,
		set:     func(f *domain.ExtractedFields, v string) { f.Date = domain.Some(v) },
	},
	{
		field:   "vendor_name",
		match:   containsAny("vendor name", "vendor", "billed by", "billed from", "supplier", "seller", "provided by"),
		capture: captureLabel,
		set:     func(f *domain.ExtractedFields, v string) { f.VendorName = domain.Some(v) },
	},
	{
		field:   "employee_name",
		match:   containsAny("employee name", "employee", "billed to", "received by", "for employee", "customer", "buyer"),
		capture: captureLabel,
		set:     func(f *domain.ExtractedFields, v string) { f.EmployeeName = domain.Some(v) },
	},
	{
		field:   "category",
		match:   containsAny("category", "type of expense", "expense category"),
		capture: captureLabel,
		set:     func(f *domain.ExtractedFields, v string) { f.Category = domain.Some(v) },
	},
	{
		field:   "gst_amount",
		match:   containsAny("gst", "tax amount", "cgst", "sgst"),
		capture: captureAmount,
		set:     func(f *domain.ExtractedFields, v string) { f.GSTAmount = domain.Some(v) },
	},
	{
		field: "total_amount",
		match: either(
			hasPrefix("total amount"),
			containsAny("grand total", "amount payable", "total payable", "total (inr)"),
		),
		capture: captureAmount,
		set:     func(f *domain.ExtractedFields, v string) { f.TotalAmount = domain.Some(v) },
	},
}

func containsAny(phrases ...string) matcher {
	return func(lower string) bool {
		for _, p := range phrases {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	}
}

func hasPrefix(prefix string) matcher {
	return func(lower string) bool {
		return strings.HasPrefix(lower, prefix)
	}
}

func either(ms ...matcher) matcher {
	return func(lower string) bool {
		for _, m := range ms {
			if m(lower) {
				return true
			}
		}
		return false
	}
}

// captureDate finds the first ISO or DD/MM/YYYY date on the line and returns
// it as YYYY-MM-DD. Impossible calendar dates are not captured.
func captureDate(line string) (string, bool) {
	raw := datePattern.FindString(line)
	if raw == "" {
		return "", false
	}
	if !strings.Contains(raw, "/") {
		return raw, true
	}
	t, err := time.Parse("02/01/2006", raw)
	if err != nil {
		return "", false
	}
	return t.Format(domain.DateLayout), true
}

// captureLabel returns the trimmed text after the first colon.
func captureLabel(line string) (string, bool) {
	_, value, found := strings.Cut(line, ":")
	if !found {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// captureAmount returns the first integer or decimal token on the line.
func captureAmount(line string) (string, bool) {
	m := amountPattern.FindString(line)
	return m, m != ""
}
