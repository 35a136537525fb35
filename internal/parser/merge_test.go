package parser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/parser"
	"invoicedesk/internal/port"
	"invoicedesk/mocks"
)

func TestMergeParser_FillsAbsentFields(t *testing.T) {
	primary := new(mocks.MockFieldParser)
	secondary := new(mocks.MockFieldParser)
	primary.On("Parse", mock.Anything, testInput).Return(&port.ParseOutput{
		Fields:   domain.ExtractedFields{VendorName: domain.Some("Remote Vendor"), Date: domain.Some("2024-05-01")},
		Provider: "openai",
	}, nil)
	secondary.On("Parse", mock.Anything, testInput).Return(&port.ParseOutput{
		Fields: domain.ExtractedFields{
			VendorName:  domain.Some("Local Vendor"),
			TotalAmount: domain.Some("250"),
		},
		Provider: "heuristic",
	}, nil)

	mp := parser.NewMergeParser(primary, secondary, zap.NewNop())
	out, err := mp.Parse(context.Background(), testInput)

	require.NoError(t, err)
	assert.Equal(t, "openai", out.Provider)
	assert.Equal(t, domain.Some("Remote Vendor"), out.Fields.VendorName)
	assert.Equal(t, domain.Some("2024-05-01"), out.Fields.Date)
	assert.Equal(t, domain.Some("250"), out.Fields.TotalAmount)
	assert.False(t, out.Fields.GSTAmount.Present)
}

func TestMergeParser_PrimaryFails(t *testing.T) {
	primary := new(mocks.MockFieldParser)
	secondary := new(mocks.MockFieldParser)
	primary.On("Parse", mock.Anything, testInput).Return(nil, errors.New("timeout"))
	secondary.On("Parse", mock.Anything, testInput).Return(&port.ParseOutput{Provider: "heuristic"}, nil)

	out, err := parser.NewMergeParser(primary, secondary, zap.NewNop()).Parse(context.Background(), testInput)

	require.NoError(t, err)
	assert.Equal(t, "heuristic", out.Provider)
}

func TestMergeParser_PrimaryFailureLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level zapcore.Level
	}{
		{"rate limited", parser.NewRateLimitError("openai", errors.New("429"), 30), zap.InfoLevel},
		{"other failure", errors.New("timeout"), zap.WarnLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := new(mocks.MockFieldParser)
			secondary := new(mocks.MockFieldParser)
			primary.On("Parse", mock.Anything, testInput).Return(nil, tt.err)
			secondary.On("Parse", mock.Anything, testInput).Return(&port.ParseOutput{Provider: "heuristic"}, nil)

			core, logs := observer.New(zap.DebugLevel)
			_, err := parser.NewMergeParser(primary, secondary, zap.New(core)).Parse(context.Background(), testInput)

			require.NoError(t, err)
			require.Equal(t, 1, logs.Len())
			assert.Equal(t, tt.level, logs.All()[0].Level)
		})
	}
}

func TestMergeParser_BothFail(t *testing.T) {
	primary := new(mocks.MockFieldParser)
	secondary := new(mocks.MockFieldParser)
	primary.On("Parse", mock.Anything, testInput).Return(nil, errors.New("a"))
	secondary.On("Parse", mock.Anything, testInput).Return(nil, errors.New("b"))

	_, err := parser.NewMergeParser(primary, secondary, zap.NewNop()).Parse(context.Background(), testInput)

	assert.Error(t, err)
}
