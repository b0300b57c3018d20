package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFence removes a leading/trailing triple-backtick fence (with
// or without a language tag) from a model response. Providers asked for
// raw JSON still wrap it in markdown fences often enough that parsing
// without this step is unreliable.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop an optional language tag on the opening fence line
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if !strings.ContainsAny(firstLine, "{[") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodePayload parses a model's text response into a Payload. The
// response is fence-stripped first; a "guests" key discriminates the
// guest-form shape from a single-document extraction. Any parse or shape
// failure is a validation Error carrying the raw text: retrying the same
// prompt and image reproduces it, so it is never retried.
func DecodePayload(provider, text string) (*Payload, error) {
	cleaned := StripCodeFence(text)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, NewValidationError(provider, fmt.Sprintf("invalid JSON response: %v", err), text)
	}
	// "null" unmarshals into a nil map without error
	if raw == nil {
		return nil, NewValidationError(provider, "response is not a JSON object", text)
	}

	if _, ok := raw["guests"]; ok {
		var guestForm GuestFormExtraction
		if err := json.Unmarshal([]byte(cleaned), &guestForm); err != nil {
			return nil, NewValidationError(provider, fmt.Sprintf("invalid guest form response: %v", err), text)
		}
		for i, guest := range guestForm.Guests {
			if err := validateScalars(guest); err != nil {
				return nil, NewValidationError(provider, fmt.Sprintf("guest %d: %v", i+1, err), text)
			}
		}
		return &Payload{GuestForm: &guestForm}, nil
	}

	var single ExtractedData
	if err := json.Unmarshal([]byte(cleaned), &single); err != nil {
		return nil, NewValidationError(provider, fmt.Sprintf("invalid extraction response: %v", err), text)
	}
	if err := validateScalars(single); err != nil {
		return nil, NewValidationError(provider, err.Error(), text)
	}
	return &Payload{Single: single}, nil
}

// validateScalars enforces the core invariant that extracted values are
// scalar or null, never nested objects or arrays.
func validateScalars(data ExtractedData) error {
	for key, value := range data {
		switch value.(type) {
		case nil, string, float64, bool:
		default:
			return fmt.Errorf("field %q holds a non-scalar value", key)
		}
	}
	return nil
}
