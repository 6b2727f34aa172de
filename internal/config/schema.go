package config

// Config holds surveytab configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
}

// LLMProviderCfg configures a vision-capable LLM provider.
type LLMProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`                       // "openrouter", "openai"
	Model          string `mapstructure:"model" yaml:"model"`                     // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`                 // API key (supports ${ENV_VAR} syntax)
	BaseURL        string `mapstructure:"base_url" yaml:"base_url,omitempty"`     // Optional endpoint override
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`         // Transport retries (0 = report failures as-is)
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // HTTP timeout
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg holds run settings that command-line flags override.
type DefaultsCfg struct {
	LLMProvider  string `mapstructure:"llm_provider" yaml:"llm_provider"`   // Provider used for page reads
	Model        string `mapstructure:"model" yaml:"model"`                 // Overrides the provider's model when set
	SurveyLength int    `mapstructure:"survey_length" yaml:"survey_length"` // Pages per survey (0 = must be passed on the command line)
	MaxTokens    int    `mapstructure:"max_tokens" yaml:"max_tokens"`       // Response budget per page
	Concurrency  int    `mapstructure:"concurrency" yaml:"concurrency"`     // Pages read in parallel within one survey
	DPI          int    `mapstructure:"dpi" yaml:"dpi"`                     // Render resolution
	OutputFile   string `mapstructure:"output_file" yaml:"output_file"`     // CSV destination
	PromptFile   string `mapstructure:"prompt_file" yaml:"prompt_file"`     // Optional instruction override
	Lint         bool   `mapstructure:"lint" yaml:"lint"`                   // Warn on answer sets with unexpected shape
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
