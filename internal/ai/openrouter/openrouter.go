package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"snapdoc/internal/ai"
	"snapdoc/internal/config"
)

const (
	providerName = "openrouter"
	apiURL       = "https://openrouter.ai/api/v1/chat/completions"
)

// Adapter implements ai.Extractor using OpenRouter, which speaks the
// OpenAI chat completions wire format and routes to a hosted model.
type Adapter struct {
	apiKey   string
	model    string
	endpoint string
	referer  string
	timeout  time.Duration
	client   *http.Client
	limiter  *ai.RateLimiter
}

// NewAdapter creates an OpenRouter-based extractor. referer identifies
// the calling app to OpenRouter's attribution headers.
func NewAdapter(cfg *config.ProviderConfig, limiter *ai.RateLimiter, referer string) *Adapter {
	return newAdapter(cfg, limiter, referer, "")
}

// NewAdapterWithEndpoint creates an adapter pointing at a custom API
// endpoint (for testing).
func NewAdapterWithEndpoint(cfg *config.ProviderConfig, limiter *ai.RateLimiter, referer, endpoint string) *Adapter {
	return newAdapter(cfg, limiter, referer, endpoint)
}

func newAdapter(cfg *config.ProviderConfig, limiter *ai.RateLimiter, referer, endpoint string) *Adapter {
	model := cfg.Model
	if model == "" {
		model = "google/gemini-flash-1.5"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if endpoint == "" {
		endpoint = apiURL
	}
	if referer == "" {
		referer = "http://localhost:8080"
	}
	return &Adapter{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		referer:  referer,
		timeout:  timeout,
		client:   &http.Client{},
		limiter:  limiter,
	}
}

func (a *Adapter) ExtractDataFromDocument(ctx context.Context, input ai.ExtractInput) (*ai.ProviderResponse, error) {
	if a.limiter != nil {
		if err := a.limiter.Check(providerName); err != nil {
			return nil, err
		}
	}

	prompt, err := ai.PromptFor(input)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	reqBody := map[string]interface{}{
		"model": a.model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": prompt},
			{
				"role": "user",
				"content": []map[string]interface{}{
					{
						"type": "image_url",
						"image_url": map[string]interface{}{
							"url":    input.ImageURL,
							"detail": "high",
						},
					},
				},
			},
		},
		"max_tokens":  1000,
		"temperature": 0.1,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, ai.NewError(providerName, ai.ErrKindValidation, fmt.Sprintf("marshaling request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, ai.NewError(providerName, ai.ErrKindValidation, fmt.Sprintf("creating request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("HTTP-Referer", a.referer)
	req.Header.Set("X-Title", "SnapDoc Document Parser")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, ai.ClassifyTransport(providerName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ai.ClassifyTransport(providerName, err)
	}

	if resp.StatusCode != http.StatusOK {
		classified := ai.ClassifyStatus(providerName, resp.StatusCode, string(respBody))
		if secs := ai.ParseRetryAfterHeader(resp.Header.Get("Retry-After")); secs > 0 {
			classified.RetryAfterSecs = secs
		}
		return nil, classified
	}

	return parseResponse(respBody)
}

// chatResponse models the chat completions response envelope.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func parseResponse(body []byte) (*ai.ProviderResponse, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, ai.NewValidationError(providerName, fmt.Sprintf("unmarshaling response: %v", err), string(body))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, ai.NewValidationError(providerName, "no response content", string(body))
	}

	payload, err := ai.DecodePayload(providerName, resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return &ai.ProviderResponse{Success: true, Data: payload, Provider: providerName}, nil
}
