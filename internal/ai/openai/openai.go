package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"snapdoc/internal/ai"
	"snapdoc/internal/config"
)

const (
	providerName = "openai"
	apiURL       = "https://api.openai.com/v1/chat/completions"
)

// Adapter implements ai.Extractor using OpenAI's chat completions API.
// OpenAI fetches the image itself from the supplied URL, so no inline
// payload is built here.
type Adapter struct {
	apiKey   string
	model    string
	endpoint string
	timeout  time.Duration
	client   *http.Client
	limiter  *ai.RateLimiter
}

// NewAdapter creates an OpenAI-based extractor.
func NewAdapter(cfg *config.ProviderConfig, limiter *ai.RateLimiter) *Adapter {
	return newAdapter(cfg, limiter, "")
}

// NewAdapterWithEndpoint creates an adapter pointing at a custom API
// endpoint (for testing).
func NewAdapterWithEndpoint(cfg *config.ProviderConfig, limiter *ai.RateLimiter, endpoint string) *Adapter {
	return newAdapter(cfg, limiter, endpoint)
}

func newAdapter(cfg *config.ProviderConfig, limiter *ai.RateLimiter, endpoint string) *Adapter {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if endpoint == "" {
		endpoint = apiURL
	}
	return &Adapter{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
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
		return nil, classifyOpenAIError(resp, respBody)
	}

	return parseResponse(respBody)
}

// classifyOpenAIError handles OpenAI's error body conventions on top of
// the generic status classification. A 429 with an insufficient_quota
// code is a hard quota failure, not transient throttling.
func classifyOpenAIError(resp *http.Response, body []byte) *ai.Error {
	if resp.StatusCode == http.StatusTooManyRequests && strings.Contains(string(body), "insufficient_quota") {
		return &ai.Error{
			Kind:       ai.ErrKindQuotaExceeded,
			Message:    "provider quota exhausted",
			StatusCode: resp.StatusCode,
			Provider:   providerName,
		}
	}
	classified := ai.ClassifyStatus(providerName, resp.StatusCode, string(body))
	if secs := ai.ParseRetryAfterHeader(resp.Header.Get("Retry-After")); secs > 0 {
		classified.RetryAfterSecs = secs
	}
	return classified
}

// chatResponse models the chat completions response envelope.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
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
