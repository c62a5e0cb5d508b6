// Package config loads taskchat configuration from
// .taskchat/config.json with TASKCHAT_* environment overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Dir is the per-workspace configuration directory.
const Dir = ".taskchat"

// LLMConfig selects and tunes the completion provider.
type LLMConfig struct {
	Provider    string  `json:"provider"`     // openai | gemini | custom
	APIKey      string  `json:"api_key"`      // usually set via TASKCHAT_API_KEY
	BaseURL     string  `json:"base_url"`     // for OpenAI-compatible providers
	Model       string  `json:"model"`        //
	MaxTokens   int     `json:"max_tokens"`   //
	Temperature float64 `json:"temperature"`  //
	TimeoutSecs int     `json:"timeout_secs"` //
}

// Timeout returns the configured request timeout.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSecs) * time.Second
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	DebugMode bool `json:"debug_mode"`
}

// Config is the root configuration.
type Config struct {
	LLM     LLMConfig     `json:"llm"`
	Logging LoggingConfig `json:"logging"`

	// DatabasePath is where the SQLite store lives.
	DatabasePath string `json:"database_path"`

	// MaxResponseLength is the hard budget the size governor enforces
	// on every reply.
	MaxResponseLength int `json:"max_response_length"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			MaxTokens:   4096,
			Temperature: 0.1,
			TimeoutSecs: 120,
		},
		DatabasePath:      filepath.Join(Dir, "taskchat.db"),
		MaxResponseLength: 4000,
	}
}

// Path returns the config file path inside the given workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, Dir, "config.json")
}

// Load reads the workspace config, falling back to defaults when the
// file is absent, then applies environment overrides. A malformed file
// is an error; a missing one is not.
func Load(workspace string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(workspace))
	switch {
	case os.IsNotExist(err):
		// Defaults apply.
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv layers TASKCHAT_* environment variables over the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("TASKCHAT_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("TASKCHAT_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("TASKCHAT_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("TASKCHAT_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("TASKCHAT_DB_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("TASKCHAT_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Logging.DebugMode = b
		}
	}
	if v := os.Getenv("TASKCHAT_MAX_RESPONSE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxResponseLength = n
		}
	}
}

// Validate checks invariants the rest of the system relies on.
func (c Config) Validate() error {
	if c.MaxResponseLength <= 0 {
		return fmt.Errorf("max_response_length must be positive, got %d", c.MaxResponseLength)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path cannot be empty")
	}
	return nil
}

// Save writes the config file, creating the directory when needed.
func (c Config) Save(workspace string) error {
	dir := filepath.Join(workspace, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(Path(workspace), data, 0o644)
}
