package config

// Default run settings.
const (
	DefaultMaxTokens   = 1024
	DefaultConcurrency = 1
	DefaultDPI         = 150
	DefaultOutputFile  = "processed_survey_data.csv"
	DefaultProvider    = "openrouter"
)

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:           "openrouter",
				Model:          "anthropic/claude-3.5-sonnet",
				APIKey:         "${OPENROUTER_API_KEY}",
				TimeoutSeconds: 120,
				Enabled:        true,
			},
			"openai": {
				Type:           "openai",
				Model:          "gpt-4o",
				APIKey:         "${OPENAI_API_KEY}",
				TimeoutSeconds: 120,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: DefaultProvider,
			MaxTokens:   DefaultMaxTokens,
			Concurrency: DefaultConcurrency,
			DPI:         DefaultDPI,
			OutputFile:  DefaultOutputFile,
		},
	}
}
