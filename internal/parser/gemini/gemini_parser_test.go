package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceqc/internal/config"
	"invoiceqc/internal/parser"
	"invoiceqc/internal/parser/gemini"
	"invoiceqc/internal/port"
)

func newTestParser(serverURL string) *gemini.Parser {
	cfg := &config.ParserProviderConfig{
		Provider:     "gemini",
		APIKey:       "test-api-key",
		DefaultModel: "gemini-2.0-flash",
		TimeoutSecs:  30,
	}
	return gemini.NewParserWithEndpoint(cfg, serverURL)
}

func candidateResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func TestGeminiParser_Parse_PDF_Success(t *testing.T) {
	responseBody := candidateResponse(`{"data":{"invoice_number":"RE-2024-010","gross_total":"119.00"},"confidence_scores":{"invoice_number":0.9}}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-goog-api-key"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)

		contents := reqBody["contents"].([]interface{})
		require.Len(t, contents, 1)
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		require.Len(t, parts, 2)

		inline := parts[0].(map[string]interface{})["inline_data"].(map[string]interface{})
		assert.Equal(t, "application/pdf", inline["mime_type"])

		genCfg := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genCfg["responseMimeType"])

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
	assert.Equal(t, "gemini", result.Provider)
	assert.Equal(t, "RE-2024-010", result.Invoice.InvoiceNumber)
	require.NotNil(t, result.Invoice.GrossTotal)
	assert.Equal(t, "119", result.Invoice.GrossTotal.String())
	assert.Equal(t, 0.9, result.Confidence["invoice_number"])
}

func TestGeminiParser_Parse_Text_PassedInline(t *testing.T) {
	responseBody := candidateResponse(`{"data":{},"confidence_scores":{}}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&reqBody)

		contents := reqBody["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		first := parts[0].(map[string]interface{})
		assert.Equal(t, "Gesamtwert EUR 64,00", first["text"])

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	_, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("Gesamtwert EUR 64,00"),
		ContentType: "text/plain",
		FileName:    "invoice.txt",
	})

	assert.NoError(t, err)
}

func TestGeminiParser_Parse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4"),
		ContentType: "application/pdf",
		FileName:    "invoice.pdf",
	})

	assert.Nil(t, result)
	require.Error(t, err)

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "gemini", rlErr.Provider)
}

func TestGeminiParser_Parse_Truncated(t *testing.T) {
	responseBody := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": `{"data":{`}},
				},
				"finishReason": "MAX_TOKENS",
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4"),
		ContentType: "application/pdf",
		FileName:    "invoice.pdf",
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestGeminiParser_Parse_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	result, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte("%PDF-1.4"),
		ContentType: "application/pdf",
		FileName:    "invoice.pdf",
	})

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}
