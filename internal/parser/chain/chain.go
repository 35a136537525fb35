// Package chain assembles the field parser used by the entry flow: the
// configured remote providers behind a rate-limit fallback, merged over the
// local heuristic rules.
package chain

import (
	"fmt"

	"go.uber.org/zap"

	"invoicedesk/internal/config"
	"invoicedesk/internal/parser"
	"invoicedesk/internal/parser/heuristic"
	"invoicedesk/internal/parser/openai"
	"invoicedesk/internal/port"
)

func init() {
	parser.RegisterProvider("openai", openai.Factory)
}

// Build returns the parser chain for cfg. Without remote providers only the
// heuristic parser runs.
func Build(cfg *config.ParserConfig, log *zap.Logger) (port.FieldParser, error) {
	local := heuristic.NewParser()

	providers := cfg.Providers()
	if len(providers) == 0 {
		log.Info("no remote parser configured; using heuristic rules only")
		return local, nil
	}

	parsers := make([]port.FieldParser, 0, len(providers))
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		fp, err := parser.NewParser(p)
		if err != nil {
			return nil, fmt.Errorf("building %s parser: %w", p.Provider, err)
		}
		parsers = append(parsers, fp)
		names = append(names, p.Provider)
	}
	log.Info("remote parsers configured", zap.Strings("providers", names))

	var remote port.FieldParser = parsers[0]
	if len(parsers) > 1 {
		remote = parser.NewFallbackParser(parsers, names, log)
	}
	return parser.NewMergeParser(remote, local, log), nil
}
