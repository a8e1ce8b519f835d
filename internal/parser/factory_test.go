package parser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceqc/internal/config"
	"invoiceqc/internal/parser"
	"invoiceqc/internal/port"

	_ "invoiceqc/internal/parser/claude"
	_ "invoiceqc/internal/parser/gemini"
	_ "invoiceqc/internal/parser/openai"
	_ "invoiceqc/internal/parser/pattern"
)

func TestNewParser_RegisteredProviders(t *testing.T) {
	for _, name := range []string{"claude", "gemini", "openai", "pattern"} {
		t.Run(name, func(t *testing.T) {
			p, err := parser.NewParser(&config.ParserProviderConfig{Provider: name, APIKey: "k"})
			assert.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}

func TestNewParser_UnknownProvider(t *testing.T) {
	p, err := parser.NewParser(&config.ParserProviderConfig{Provider: "carrier-pigeon"})
	assert.Nil(t, p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extraction provider")
}

func TestRegisterProvider_Custom(t *testing.T) {
	stub := &port.ParseOutput{Provider: "stub"}
	parser.RegisterProvider("stub", func(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
		return stubParser{out: stub}, nil
	})

	p, err := parser.NewParser(&config.ParserProviderConfig{Provider: "stub"})
	require.NoError(t, err)

	out, err := p.Parse(context.Background(), port.ParseInput{})
	require.NoError(t, err)
	assert.Equal(t, "stub", out.Provider)
}

func TestNewChain_Empty(t *testing.T) {
	p, err := parser.NewChain(nil)
	assert.Nil(t, p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no extraction providers configured")
}

func TestNewChain_Single(t *testing.T) {
	p, err := parser.NewChain([]config.ParserProviderConfig{
		{Provider: "pattern"},
	})
	require.NoError(t, err)
	assert.NotNil(t, p)

	// A single provider is returned directly, not wrapped.
	_, isFallback := p.(*parser.FallbackParser)
	assert.False(t, isFallback)
}

func TestNewChain_Multiple(t *testing.T) {
	p, err := parser.NewChain([]config.ParserProviderConfig{
		{Provider: "claude", APIKey: "k1"},
		{Provider: "gemini", APIKey: "k2"},
		{Provider: "pattern"},
	})
	require.NoError(t, err)

	_, isFallback := p.(*parser.FallbackParser)
	assert.True(t, isFallback)
}

func TestNewChain_UnknownProvider(t *testing.T) {
	p, err := parser.NewChain([]config.ParserProviderConfig{
		{Provider: "claude", APIKey: "k1"},
		{Provider: "carrier-pigeon"},
	})
	assert.Nil(t, p)
	assert.Error(t, err)
}

// stubParser is a minimal DocumentParser for factory tests.
type stubParser struct {
	out *port.ParseOutput
}

func (s stubParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	return s.out, nil
}
