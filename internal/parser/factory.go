package parser

import (
	"fmt"
	"sort"

	"invoicedesk/internal/config"
	"invoicedesk/internal/port"
)

// ProviderFactory creates a remote FieldParser from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.FieldParser, error)

// registry of remote parser factories, populated explicitly via RegisterProvider
// at startup.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a parser provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// RegisteredProviders returns the registered provider names, sorted.
func RegisteredProviders() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewParser creates a FieldParser from a provider config using the registered factory.
func NewParser(cfg *config.ParserProviderConfig) (port.FieldParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}
