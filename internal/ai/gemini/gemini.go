package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"snapdoc/internal/ai"
	"snapdoc/internal/config"
)

const (
	providerName = "gemini"
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
)

// Adapter implements ai.Extractor using Google's Gemini API. Gemini
// takes the image as inline base64 bytes, so the adapter fetches the
// image from object storage itself.
type Adapter struct {
	apiKey   string
	model    string
	endpoint string
	timeout  time.Duration
	client   *http.Client
	limiter  *ai.RateLimiter
}

// NewAdapter creates a Gemini-based extractor.
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
		model = "gemini-1.5-flash-latest"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
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

	imageBytes, contentType, err := ai.FetchImage(ctx, a.client, providerName, input.ImageURL)
	if err != nil {
		return nil, err
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": prompt},
					{
						"inline_data": map[string]interface{}{
							"mime_type": contentType,
							"data":      base64.StdEncoding.EncodeToString(imageBytes),
						},
					},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  8192,
		},
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
	req.Header.Set("x-goog-api-key", a.apiKey)

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

// geminiResponse models the Gemini API response envelope.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte) (*ai.ProviderResponse, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, ai.NewValidationError(providerName, fmt.Sprintf("unmarshaling response: %v", err), string(body))
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ai.NewValidationError(providerName, "empty response from API", string(body))
	}

	payload, err := ai.DecodePayload(providerName, resp.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}
	return &ai.ProviderResponse{Success: true, Data: payload, Provider: providerName}, nil
}
