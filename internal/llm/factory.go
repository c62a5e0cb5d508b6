package llm

import (
	"context"
	"fmt"
	"time"
)

// ProviderConfig selects and configures a completion provider.
type ProviderConfig struct {
	// Provider is one of "openai", "gemini" or any OpenAI-compatible
	// provider name when BaseURL is set explicitly.
	Provider string

	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// NewClient builds a Client for the configured provider.
func NewClient(ctx context.Context, cfg ProviderConfig) (Client, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
	case "openai", "":
		httpCfg := DefaultHTTPConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			httpCfg.BaseURL = cfg.BaseURL
		}
		if cfg.Model != "" {
			httpCfg.Model = cfg.Model
		}
		if cfg.MaxTokens > 0 {
			httpCfg.MaxTokens = cfg.MaxTokens
		}
		if cfg.Temperature > 0 {
			httpCfg.Temperature = cfg.Temperature
		}
		if cfg.Timeout > 0 {
			httpCfg.Timeout = cfg.Timeout
		}
		return NewHTTPClient(httpCfg), nil
	default:
		if cfg.BaseURL != "" {
			httpCfg := DefaultHTTPConfig(cfg.APIKey)
			httpCfg.BaseURL = cfg.BaseURL
			httpCfg.Model = cfg.Model
			if cfg.MaxTokens > 0 {
				httpCfg.MaxTokens = cfg.MaxTokens
			}
			if cfg.Timeout > 0 {
				httpCfg.Timeout = cfg.Timeout
			}
			return NewHTTPClient(httpCfg), nil
		}
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}
