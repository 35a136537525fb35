package chain_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"invoicedesk/internal/config"
	"invoicedesk/internal/parser"
	"invoicedesk/internal/parser/chain"
	"invoicedesk/internal/parser/heuristic"
	"invoicedesk/internal/port"
)

func TestBuild_HeuristicOnly(t *testing.T) {
	p, err := chain.Build(&config.ParserConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &heuristic.Parser{}, p)

	out, err := p.Parse(context.Background(), port.ParseInput{Text: "Vendor: Acme"})
	require.NoError(t, err)
	assert.Equal(t, "heuristic", out.Provider)
	v, ok := out.Fields.VendorName.Get()
	assert.True(t, ok)
	assert.Equal(t, "Acme", v)
}

func TestBuild_RemoteMergedOverHeuristic(t *testing.T) {
	p, err := chain.Build(&config.ParserConfig{
		Primary: config.ParserProviderConfig{Provider: "openai", APIKey: "sk-test"},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &parser.MergeParser{}, p)
	assert.Contains(t, parser.RegisteredProviders(), "openai")
}

func TestBuild_Errors(t *testing.T) {
	_, err := chain.Build(&config.ParserConfig{
		Primary: config.ParserProviderConfig{Provider: "unknown"},
	}, zap.NewNop())
	assert.Error(t, err)

	_, err = chain.Build(&config.ParserConfig{
		Primary: config.ParserProviderConfig{Provider: "openai"},
	}, zap.NewNop())
	assert.Error(t, err, "api key is required")
}
