package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	// CategoryOthers is the sentinel stored while a custom category is pending.
	CategoryOthers = "Others"
	// CustomCategoryPrefix marks a stored custom category.
	CustomCategoryPrefix = "Others: "
	// MinCustomCategoryLength is the shortest accepted custom category label.
	MinCustomCategoryLength = 20
)

// CategoryOptions are the predefined expense categories, in display order.
var CategoryOptions = []string{"Mobile bill", "DTH", "Tools", "Food", "Events", CategoryOthers}

// IsCategoryOption reports whether s is one of the predefined categories.
func IsCategoryOption(s string) bool {
	for _, opt := range CategoryOptions {
		if opt == s {
			return true
		}
	}
	return false
}

// ResolveCategory turns a selected category and an optional custom label into
// the stored category value.
//
// Selecting "Others" with a label of at least MinCustomCategoryLength characters
// yields "Others: <label>". A shorter label yields the sentinel "Others" together
// with ErrCustomCategoryTooShort; callers must not persist in that case.
func ResolveCategory(selected, custom string) (string, error) {
	if selected != CategoryOthers {
		return selected, nil
	}
	if utf8.RuneCountInString(custom) >= MinCustomCategoryLength {
		return CustomCategoryPrefix + custom, nil
	}
	return CategoryOthers, ErrCustomCategoryTooShort
}

// SplitCategory is the inverse of ResolveCategory: it maps a stored category
// back to the selection and custom label shown for editing. Values outside the
// option set are treated as custom labels.
func SplitCategory(stored string) (selected, custom string) {
	switch {
	case stored == "":
		return "", ""
	case strings.HasPrefix(stored, CustomCategoryPrefix):
		return CategoryOthers, strings.TrimPrefix(stored, CustomCategoryPrefix)
	case IsCategoryOption(stored):
		return stored, ""
	default:
		return CategoryOthers, stored
	}
}

// CheckCategory returns ErrCustomCategoryTooShort when a stored category is the
// bare sentinel or a custom value whose label is under the minimum length.
func CheckCategory(stored string) error {
	if stored == CategoryOthers {
		return ErrCustomCategoryTooShort
	}
	if strings.HasPrefix(stored, CustomCategoryPrefix) {
		label := strings.TrimPrefix(stored, CustomCategoryPrefix)
		if utf8.RuneCountInString(label) < MinCustomCategoryLength {
			return ErrCustomCategoryTooShort
		}
	}
	return nil
}
