package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// maxImageBytes caps fetched image size at 20 MB, which is above every
// supported provider's inline payload limit.
const maxImageBytes = 20 << 20

// FetchImage downloads image bytes from a URL for providers that take
// inline binary payloads. The returned content type is taken from the
// response header and trusted for encoding the multimodal request.
func FetchImage(ctx context.Context, client *http.Client, provider, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", NewError(provider, ErrKindValidation, fmt.Sprintf("invalid image URL: %v", err))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", ClassifyTransport(provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", NewError(provider, ErrKindAPIError,
			fmt.Sprintf("failed to fetch image: status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", ClassifyTransport(provider, err)
	}
	if len(data) > maxImageBytes {
		return nil, "", NewError(provider, ErrKindValidation, "image exceeds maximum inline payload size")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}
