package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceqc/internal/config"
	"invoiceqc/internal/parser"
	"invoiceqc/internal/parser/claude"
	"invoiceqc/internal/port"
)

func newTestParser(serverURL string) *claude.Parser {
	cfg := &config.ParserProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewParserWithEndpoint(cfg, serverURL)
}

func envelopeResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
	}
}

func TestClaudeParser_Parse_PDF_Success(t *testing.T) {
	responseBody := envelopeResponse(`{"data":{"invoice_number":"RE-2024-001","invoice_date":"2024-05-22","currency":"EUR","net_total":1234.56,"line_items":[{"position":1,"description":"Widget","quantity":4,"unit_price":25,"line_total":100}]},"confidence_scores":{"invoice_number":0.95,"invoice_date":0.9,"net_total":0.85}}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(16384), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		assert.Len(t, messages, 1)
		msg := messages[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)

		docBlock := content[0].(map[string]interface{})
		assert.Equal(t, "document", docBlock["type"])
		source := docBlock["source"].(map[string]interface{})
		assert.Equal(t, "application/pdf", source["media_type"])

		textBlock := content[1].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Contains(t, textBlock["text"], "confidence_scores")

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4 test content"),
		ContentType: "application/pdf",
		FileName:    "invoice.pdf",
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "claude", result.Provider)
	assert.Equal(t, "RE-2024-001", result.Invoice.InvoiceNumber)
	assert.Equal(t, "2024-05-22", result.Invoice.InvoiceDate)
	require.NotNil(t, result.Invoice.NetTotal)
	assert.Equal(t, "1234.56", result.Invoice.NetTotal.String())
	require.Len(t, result.Invoice.LineItems, 1)
	assert.Equal(t, "Widget", result.Invoice.LineItems[0].Description)

	assert.Equal(t, 0.95, result.Confidence["invoice_number"])
	assert.Equal(t, 0.85, result.Confidence["net_total"])
}

func TestClaudeParser_Parse_Image_Success(t *testing.T) {
	responseBody := envelopeResponse(`{"data":{"invoice_number":"RE-2024-002"},"confidence_scores":{"invoice_number":0.8}}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&reqBody)

		messages := reqBody["messages"].([]interface{})
		msg := messages[0].(map[string]interface{})
		content := msg["content"].([]interface{})

		imgBlock := content[0].(map[string]interface{})
		assert.Equal(t, "image", imgBlock["type"])
		source := imgBlock["source"].(map[string]interface{})
		assert.Equal(t, "image/jpeg", source["media_type"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte{0xFF, 0xD8, 0xFF, 0xE0},
		ContentType: "image/jpeg",
		FileName:    "scan.jpg",
	})

	require.NoError(t, err)
	assert.Equal(t, "RE-2024-002", result.Invoice.InvoiceNumber)
}

func TestClaudeParser_Parse_Text_Success(t *testing.T) {
	responseBody := envelopeResponse(`{"data":{"invoice_number":"RE-2024-003"},"confidence_scores":{}}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&reqBody)

		messages := reqBody["messages"].([]interface{})
		msg := messages[0].(map[string]interface{})
		content := msg["content"].([]interface{})
		assert.Len(t, content, 2)

		// Plain text is passed inline, not base64 encoded.
		textBlock := content[0].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Equal(t, "Bestellung 42 vom 01.01.2024", textBlock["text"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("Bestellung 42 vom 01.01.2024"),
		ContentType: "text/plain",
		FileName:    "invoice.txt",
	})

	require.NoError(t, err)
	assert.Equal(t, "RE-2024-003", result.Invoice.InvoiceNumber)
}

func TestClaudeParser_Parse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"rate limited"}}`))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
		FileName:    "invoice.pdf",
	})

	assert.Nil(t, result)
	require.Error(t, err)

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
}

func TestClaudeParser_Parse_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"server_error","message":"internal error"}}`))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
		FileName:    "invoice.pdf",
	})

	assert.Nil(t, result)
	require.Error(t, err)

	var apiErr *parser.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "claude API error (status 500)")
}

func TestClaudeParser_Parse_Truncated(t *testing.T) {
	responseBody := map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": `{"data":{"invoice_number":"RE-`},
		},
		"stop_reason": "max_tokens",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
		FileName:    "invoice.pdf",
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestClaudeParser_Parse_BadEnvelope(t *testing.T) {
	responseBody := envelopeResponse(`I could not find an invoice in this document.`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4 test"),
		ContentType: "application/pdf",
		FileName:    "invoice.pdf",
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing model JSON output")
}

func TestClaudeParser_Parse_UnsupportedContentType(t *testing.T) {
	p := newTestParser("http://unused.invalid")

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("zip bytes"),
		ContentType: "application/zip",
		FileName:    "invoice.zip",
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}
