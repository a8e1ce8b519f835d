package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoiceqc/internal/config"
	"invoiceqc/internal/parser"
	"invoiceqc/internal/parser/openai"
	"invoiceqc/internal/port"
)

func newTestParser(serverURL string) *openai.Parser {
	cfg := &config.ParserProviderConfig{
		Provider:     "openai",
		APIKey:       "test-api-key",
		DefaultModel: "gpt-4o",
		TimeoutSecs:  30,
	}
	return openai.NewParserWithEndpoint(cfg, serverURL)
}

func choiceResponse(text, finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message":       map[string]interface{}{"content": text},
				"finish_reason": finishReason,
			},
		},
	}
}

func TestOpenAIParser_Parse_PDF_Success(t *testing.T) {
	responseBody := choiceResponse(`{"data":{"invoice_number":"RE-2024-020","currency":"EUR"},"confidence_scores":{"currency":1.0}}`, "stop")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)
		assert.Equal(t, "gpt-4o", reqBody["model"])

		respFormat := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", respFormat["type"])

		messages := reqBody["messages"].([]interface{})
		content := messages[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, content, 2)

		fileBlock := content[0].(map[string]interface{})
		assert.Equal(t, "file", fileBlock["type"])
		fileData := fileBlock["file"].(map[string]interface{})["file_data"].(string)
		assert.True(t, strings.HasPrefix(fileData, "data:application/pdf;base64,"))

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
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, "RE-2024-020", result.Invoice.InvoiceNumber)
	assert.Equal(t, "EUR", result.Invoice.Currency)
	assert.Equal(t, 1.0, result.Confidence["currency"])
}

func TestOpenAIParser_Parse_PNG_UsesImageURL(t *testing.T) {
	responseBody := choiceResponse(`{"data":{},"confidence_scores":{}}`, "stop")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&reqBody)

		messages := reqBody["messages"].([]interface{})
		content := messages[0].(map[string]interface{})["content"].([]interface{})
		imgBlock := content[0].(map[string]interface{})
		assert.Equal(t, "image_url", imgBlock["type"])
		url := imgBlock["image_url"].(map[string]interface{})["url"].(string)
		assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(responseBody)
	}))
	defer server.Close()

	p := newTestParser(server.URL)

	_, err := p.Parse(context.Background(), port.ParseInput{
		FileBytes:   []byte{0x89, 0x50, 0x4E, 0x47},
		ContentType: "image/png",
		FileName:    "scan.png",
	})

	assert.NoError(t, err)
}

func TestOpenAIParser_Parse_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
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
	assert.Equal(t, "openai", rlErr.Provider)
}

func TestOpenAIParser_Parse_TruncatedOutput(t *testing.T) {
	responseBody := choiceResponse(`{"data":{`, "length")

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

func TestOpenAIParser_Parse_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"choices":[]}`))
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
	assert.Contains(t, err.Error(), "no choices")
}
