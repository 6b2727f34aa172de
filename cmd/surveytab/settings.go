package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/surveytab/internal/config"
	"github.com/jackzampolin/surveytab/internal/prompts"
	"github.com/jackzampolin/surveytab/internal/prompts/survey"
	"github.com/jackzampolin/surveytab/internal/providers"
)

// runFlags are the per-run settings shared by process and watch.
type runFlags struct {
	surveyLength int
	provider     string
	model        string
	maxTokens    int
	concurrency  int
	dpi          int
	promptFile   string
	lint         bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.surveyLength, "survey-length", "n", 0, "pages per survey (required unless set in config)")
	fs.StringVar(&f.provider, "provider", "", "LLM provider name from config (default from config)")
	fs.StringVar(&f.model, "model", "", "model override for the provider")
	fs.IntVar(&f.maxTokens, "max-tokens", config.DefaultMaxTokens, "response token budget per page")
	fs.IntVar(&f.concurrency, "concurrency", config.DefaultConcurrency, "pages read in parallel within one survey")
	fs.IntVar(&f.dpi, "dpi", config.DefaultDPI, "render resolution")
	fs.StringVar(&f.promptFile, "prompt-file", "", "file replacing the built-in page instruction")
	fs.BoolVar(&f.lint, "lint", false, "warn about answer sets with an unexpected shape")
}

// merge overlays flags the user set onto config defaults.
func (f *runFlags) merge(cmd *cobra.Command, d config.DefaultsCfg) config.DefaultsCfg {
	fs := cmd.Flags()
	if fs.Changed("survey-length") {
		d.SurveyLength = f.surveyLength
	}
	if fs.Changed("provider") {
		d.LLMProvider = f.provider
	}
	if fs.Changed("model") {
		d.Model = f.model
	}
	if fs.Changed("max-tokens") {
		d.MaxTokens = f.maxTokens
	}
	if fs.Changed("concurrency") {
		d.Concurrency = f.concurrency
	}
	if fs.Changed("dpi") {
		d.DPI = f.dpi
	}
	if fs.Changed("prompt-file") {
		d.PromptFile = f.promptFile
	}
	if fs.Changed("lint") {
		d.Lint = f.lint
	}
	return d
}

// runSetup is everything a run needs besides its input and output paths.
type runSetup struct {
	settings config.DefaultsCfg
	registry *providers.Registry
	client   providers.LLMClient
	model    string
	prompt   *prompts.ResolvedPrompt
}

// prepareRun validates the merged settings and resolves the client and prompt.
// A missing API key stops here, before any PDF is touched.
func prepareRun(cfg *config.Config, settings config.DefaultsCfg, logger *slog.Logger) (*runSetup, error) {
	merged := *cfg
	merged.Defaults = settings
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	if settings.SurveyLength == 0 {
		return nil, errors.New("--survey-length is required")
	}

	providerCfg, _ := cfg.GetLLMProvider(settings.LLMProvider)
	logger.Info("using LLM provider",
		"provider", settings.LLMProvider,
		"api_key", config.MaskKey(config.ResolveEnvVars(providerCfg.APIKey)))

	registry := providers.NewRegistryFromConfig(cfg.ToProviderRegistryConfig())
	registry.SetLogger(logger)
	client, err := registry.GetLLM(settings.LLMProvider)
	if err != nil {
		return nil, err
	}

	resolver := prompts.NewResolver(logger)
	survey.RegisterPrompts(resolver)
	prompt, err := resolver.Resolve(survey.PagePromptKey, settings.PromptFile)
	if err != nil {
		return nil, err
	}

	return &runSetup{
		settings: settings,
		registry: registry,
		client:   client,
		model:    settings.Model,
		prompt:   prompt,
	}, nil
}
