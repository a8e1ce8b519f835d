package parser

import (
	"fmt"

	"invoiceqc/internal/config"
	"invoiceqc/internal/port"
)

// ProviderFactory is a function that creates a DocumentParser from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.DocumentParser, error)

// registry of extraction provider factories, populated by init() in each
// provider package or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extraction provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewParser creates a DocumentParser from a provider config using the registered factory.
func NewParser(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown extraction provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewChain builds the configured providers in fallback order. A single
// provider is returned directly; two or more are wrapped in a FallbackParser.
func NewChain(cfgs []config.ParserProviderConfig) (port.DocumentParser, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no extraction providers configured")
	}

	parsers := make([]port.DocumentParser, 0, len(cfgs))
	names := make([]string, 0, len(cfgs))
	for i := range cfgs {
		p, err := NewParser(&cfgs[i])
		if err != nil {
			return nil, err
		}
		parsers = append(parsers, p)
		names = append(names, cfgs[i].Provider)
	}

	if len(parsers) == 1 {
		return parsers[0], nil
	}
	return NewFallbackParser(parsers, names), nil
}
