package config

import (
	"fmt"
	"os"
	"slices"
	"time"
	_ "time/tzdata" // timezone database for minimal container images
)

// Accepted enumerated settings.
var (
	LLMProviders        = []string{"deepseek", "anthropic"}
	MissingWordPolicies = []string{"accept", "retry", "reject"}
	RemovalModes        = []string{"delete", "clear"}
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Sheets.SpreadsheetID == "" {
		return fmt.Errorf("sheets.spreadsheet_id is required")
	}

	if err := c.LLM.validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}

	if err := c.Pipeline.validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := c.Worksheet.validate(); err != nil {
		return fmt.Errorf("worksheet: %w", err)
	}

	if err := c.Auth.validate(false); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	if c.Database.RunRetention < 0 {
		return fmt.Errorf("database.run_retention must be >= 0 (got %v)", c.Database.RunRetention)
	}

	return nil
}

// ValidateServer adds the checks that only apply when serving HTTP.
func (c *Config) ValidateServer() error {
	if err := c.Auth.validate(true); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("server.rate_limit_per_minute must be >= 0 (got %d)", c.Server.RateLimitPerMinute)
	}
	return nil
}

func (l *LLMConfig) validate() error {
	if !slices.Contains(LLMProviders, l.Provider) {
		return fmt.Errorf("provider must be one of %v (got %q)", LLMProviders, l.Provider)
	}
	if l.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if l.Temperature < 0 || l.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2] (got %v)", l.Temperature)
	}
	if l.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0 (got %v)", l.Timeout)
	}
	if l.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be >= 0 (got %d)", l.MaxRetries)
	}
	return nil
}

func (p *PipelineConfig) validate() error {
	if !slices.Contains(MissingWordPolicies, p.MissingWordPolicy) {
		return fmt.Errorf("missing_word_policy must be one of %v (got %q)", MissingWordPolicies, p.MissingWordPolicy)
	}
	if p.SentenceAttempts < 1 {
		return fmt.Errorf("sentence_attempts must be >= 1 (got %d)", p.SentenceAttempts)
	}
	if !slices.Contains(RemovalModes, p.Removal) {
		return fmt.Errorf("removal must be one of %v (got %q)", RemovalModes, p.Removal)
	}
	if p.DateFormat == "" {
		return fmt.Errorf("date_format is required")
	}

	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	p.Location = loc

	return nil
}

func (w *WorksheetConfig) validate() error {
	if w.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1 (got %d)", w.Concurrency)
	}
	if w.FontSize <= 0 {
		return fmt.Errorf("font_size must be > 0 (got %v)", w.FontSize)
	}
	if w.FontPath != "" {
		if _, err := os.Stat(w.FontPath); err != nil {
			return fmt.Errorf("font_path: %w", err)
		}
	}
	return nil
}

func (a *AuthConfig) validate(required bool) error {
	if a.JWTSecret == "" {
		if required {
			return fmt.Errorf("jwt_secret is required")
		}
		return nil
	}
	if len(a.JWTSecret) < 32 {
		return fmt.Errorf("jwt_secret must be at least 32 characters (got %d)", len(a.JWTSecret))
	}
	if a.AccessTokenTTL <= 0 {
		return fmt.Errorf("access_token_ttl must be > 0 (got %v)", a.AccessTokenTTL)
	}
	return nil
}
