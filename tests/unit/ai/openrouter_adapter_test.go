package ai_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"snapdoc/internal/ai"
	"snapdoc/internal/ai/openrouter"
	"snapdoc/internal/config"
	"snapdoc/internal/domain"
)

func TestOpenRouterAdapter_AttributionHeaders(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "https://app.example.com", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "SnapDoc Document Parser", r.Header.Get("X-Title"))
		_, _ = w.Write([]byte(chatBody(`{"firstName": "Ana"}`)))
	}))
	defer api.Close()

	adapter := openrouter.NewAdapterWithEndpoint(
		&config.ProviderConfig{Provider: "openrouter", APIKey: "test-key"},
		nil, "https://app.example.com", api.URL)

	resp, err := adapter.ExtractDataFromDocument(context.Background(), ai.ExtractInput{
		ImageURL:     "https://files.example.com/doc.jpg",
		DocumentType: domain.DocumentTypePassport,
	})

	assert.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "openrouter", resp.Provider)
	assert.Equal(t, "Ana", resp.Data.Single["firstName"])
}

func TestOpenRouterAdapter_RetryAfterPropagated(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer api.Close()

	adapter := openrouter.NewAdapterWithEndpoint(
		&config.ProviderConfig{Provider: "openrouter", APIKey: "k"}, nil, "", api.URL)

	_, err := adapter.ExtractDataFromDocument(context.Background(), ai.ExtractInput{
		ImageURL:     "https://files.example.com/doc.jpg",
		DocumentType: domain.DocumentTypePassport,
	})

	var aiErr *ai.Error
	assert.True(t, errors.As(err, &aiErr))
	assert.Equal(t, ai.ErrKindRateLimit, aiErr.Kind)
	assert.Equal(t, 30, aiErr.RetryAfterSecs)
	assert.Equal(t, "openrouter", aiErr.Provider)
}

func TestOpenRouterAdapter_EmptyChoicesIsValidationError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer api.Close()

	adapter := openrouter.NewAdapterWithEndpoint(
		&config.ProviderConfig{Provider: "openrouter", APIKey: "k"}, nil, "", api.URL)

	_, err := adapter.ExtractDataFromDocument(context.Background(), ai.ExtractInput{
		ImageURL:     "https://files.example.com/doc.jpg",
		DocumentType: domain.DocumentTypePassport,
	})

	var aiErr *ai.Error
	assert.True(t, errors.As(err, &aiErr))
	assert.Equal(t, ai.ErrKindValidation, aiErr.Kind)
}
