package domain

import (
	"bytes"
	"encoding/json"
)

// Optional is a text value that may be absent. The zero value is absent.
type Optional struct {
	Value   string
	Present bool
}

// Some returns a present Optional holding v.
func Some(v string) Optional {
	return Optional{Value: v, Present: true}
}

// None returns an absent Optional.
func None() Optional {
	return Optional{}
}

// Get returns the value and whether it is present.
func (o Optional) Get() (string, bool) {
	return o.Value, o.Present
}

// OrElse returns the value when present, def otherwise.
func (o Optional) OrElse(def string) string {
	if o.Present {
		return o.Value
	}
	return def
}

// MarshalJSON encodes an absent value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Present {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON decodes null as absent.
func (o *Optional) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = None()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*o = Some(s)
	return nil
}

// ExtractedFields is the result of running field extraction over document text.
// Every attribute is independently optional.
type ExtractedFields struct {
	Date         Optional `json:"date"`
	VendorName   Optional `json:"vendor_name"`
	EmployeeName Optional `json:"employee_name"`
	Category     Optional `json:"category"`
	GSTAmount    Optional `json:"gst_amount"`
	TotalAmount  Optional `json:"total_amount"`
}

// FieldNames lists the extractable attributes in a stable order.
var FieldNames = []string{"date", "vendor_name", "employee_name", "category", "gst_amount", "total_amount"}

// PresentFields returns the names of the attributes that were found.
func (e ExtractedFields) PresentFields() []string {
	var names []string
	for i, o := range e.ordered() {
		if o.Present {
			names = append(names, FieldNames[i])
		}
	}
	return names
}

// IsEmpty reports whether no attribute was found.
func (e ExtractedFields) IsEmpty() bool {
	return len(e.PresentFields()) == 0
}

func (e ExtractedFields) ordered() []Optional {
	return []Optional{e.Date, e.VendorName, e.EmployeeName, e.Category, e.GSTAmount, e.TotalAmount}
}
