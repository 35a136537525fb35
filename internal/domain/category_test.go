package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"invoicedesk/internal/domain"
)

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		name     string
		selected string
		custom   string
		want     string
		wantErr  error
	}{
		{"predefined", "Food", "", "Food", nil},
		{"free text from extraction", "Travel", "", "Travel", nil},
		{"custom 19 chars", "Others", strings.Repeat("a", 19), "Others", domain.ErrCustomCategoryTooShort},
		{"custom 20 chars", "Others", strings.Repeat("a", 20), "Others: " + strings.Repeat("a", 20), nil},
		{"custom empty", "Others", "", "Others", domain.ErrCustomCategoryTooShort},
		{"multibyte counted as characters", "Others", strings.Repeat("é", 20), "Others: " + strings.Repeat("é", 20), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ResolveCategory(tt.selected, tt.custom)
			assert.Equal(t, tt.want, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSplitCategory(t *testing.T) {
	sel, custom := domain.SplitCategory("Others: Conference travel to Pune")
	assert.Equal(t, "Others", sel)
	assert.Equal(t, "Conference travel to Pune", custom)

	sel, custom = domain.SplitCategory("DTH")
	assert.Equal(t, "DTH", sel)
	assert.Empty(t, custom)

	sel, custom = domain.SplitCategory("Stationery")
	assert.Equal(t, "Others", sel)
	assert.Equal(t, "Stationery", custom)
}

func TestCheckCategory(t *testing.T) {
	assert.ErrorIs(t, domain.CheckCategory("Others"), domain.ErrCustomCategoryTooShort)
	assert.ErrorIs(t, domain.CheckCategory("Others: short"), domain.ErrCustomCategoryTooShort)
	assert.NoError(t, domain.CheckCategory("Others: "+strings.Repeat("b", 20)))
	assert.NoError(t, domain.CheckCategory("Tools"))
	assert.NoError(t, domain.CheckCategory(""))
}
