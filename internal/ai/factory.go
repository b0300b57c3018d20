package ai

import (
	"fmt"

	"snapdoc/internal/config"
)

// ProviderFactory creates an Extractor from a provider config and a
// shared rate limiter.
type ProviderFactory func(cfg *config.ProviderConfig, limiter *RateLimiter) (Extractor, error)

// registry of provider factories, populated by RegisterProvider from
// each adapter package's wiring in cmd/server.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an extractor factory by provider name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates an Extractor from a provider config using the
// registered factory.
func NewExtractor(cfg *config.ProviderConfig, limiter *RateLimiter) (Extractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}
	return factory(cfg, limiter)
}
