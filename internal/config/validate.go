package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when the selected provider has no credential.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrUnknownProvider is returned when the selected provider is not configured.
	ErrUnknownProvider = errors.New("unknown LLM provider")

	// ErrInvalidConfig is returned for out-of-range settings.
	ErrInvalidConfig = errors.New("invalid config")
)

// Validate checks run settings and the default provider's credential.
func (c *Config) Validate() error {
	d := c.Defaults
	if d.SurveyLength < 0 {
		return fmt.Errorf("%w: survey_length must not be negative (got %d)", ErrInvalidConfig, d.SurveyLength)
	}
	if d.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive (got %d)", ErrInvalidConfig, d.MaxTokens)
	}
	if d.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive (got %d)", ErrInvalidConfig, d.Concurrency)
	}
	if d.DPI <= 0 {
		return fmt.Errorf("%w: dpi must be positive (got %d)", ErrInvalidConfig, d.DPI)
	}
	if d.OutputFile == "" {
		return fmt.Errorf("%w: output_file is required", ErrInvalidConfig)
	}
	return c.ValidateProvider(d.LLMProvider)
}

// ValidateProvider checks that the named provider is configured, enabled,
// and has a non-empty API key after ${ENV_VAR} expansion.
func (c *Config) ValidateProvider(name string) error {
	p, ok := c.LLMProviders[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	if !p.Enabled {
		return fmt.Errorf("%w: %q is disabled", ErrUnknownProvider, name)
	}
	if ResolveEnvVars(p.APIKey) == "" {
		return fmt.Errorf("%w for provider %q (set %s)", ErrMissingAPIKey, name, envVarHint(p.APIKey))
	}
	return nil
}

// envVarHint names the variable an API key references, for error messages.
func envVarHint(value string) string {
	if m := envVarPattern.FindStringSubmatch(value); len(m) > 1 {
		return m[1]
	}
	return "api_key in config"
}
