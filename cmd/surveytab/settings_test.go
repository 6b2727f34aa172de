package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/surveytab/internal/config"
)

func TestRunFlagsMerge(t *testing.T) {
	t.Run("unset flags keep config values", func(t *testing.T) {
		var f runFlags
		cmd := &cobra.Command{Use: "test"}
		f.register(cmd)
		if err := cmd.Flags().Parse(nil); err != nil {
			t.Fatal(err)
		}

		d := config.DefaultConfig().Defaults
		d.SurveyLength = 3
		d.Concurrency = 4

		got := f.merge(cmd, d)
		if got.SurveyLength != 3 || got.Concurrency != 4 {
			t.Errorf("merge() = %+v, want config values kept", got)
		}
	})

	t.Run("set flags override config", func(t *testing.T) {
		var f runFlags
		cmd := &cobra.Command{Use: "test"}
		f.register(cmd)
		if err := cmd.Flags().Parse([]string{"-n", "2", "--provider", "openai", "--lint"}); err != nil {
			t.Fatal(err)
		}

		got := f.merge(cmd, config.DefaultConfig().Defaults)
		if got.SurveyLength != 2 {
			t.Errorf("SurveyLength = %d, want 2", got.SurveyLength)
		}
		if got.LLMProvider != "openai" {
			t.Errorf("LLMProvider = %s, want openai", got.LLMProvider)
		}
		if !got.Lint {
			t.Error("Lint = false, want true")
		}
		if got.DPI != config.DefaultDPI {
			t.Errorf("DPI = %d, want %d", got.DPI, config.DefaultDPI)
		}
	})
}

func TestPrepareRun(t *testing.T) {
	t.Run("missing API key", func(t *testing.T) {
		t.Setenv("OPENROUTER_API_KEY", "")
		cfg := config.DefaultConfig()
		settings := cfg.Defaults
		settings.SurveyLength = 2

		if _, err := prepareRun(cfg, settings, consoleLogger()); err == nil {
			t.Fatal("expected error for missing API key")
		}
	})

	t.Run("survey length required", func(t *testing.T) {
		t.Setenv("OPENROUTER_API_KEY", "sk-or-test-key-123456")
		cfg := config.DefaultConfig()

		if _, err := prepareRun(cfg, cfg.Defaults, consoleLogger()); err == nil {
			t.Fatal("expected error for missing survey length")
		}
	})

	t.Run("resolves client and prompt", func(t *testing.T) {
		t.Setenv("OPENROUTER_API_KEY", "sk-or-test-key-123456")
		cfg := config.DefaultConfig()
		settings := cfg.Defaults
		settings.SurveyLength = 2

		setup, err := prepareRun(cfg, settings, consoleLogger())
		if err != nil {
			t.Fatalf("prepareRun() error = %v", err)
		}
		if setup.client.Name() != "openrouter" {
			t.Errorf("client = %s, want openrouter", setup.client.Name())
		}
		if setup.prompt.IsOverride {
			t.Error("expected embedded prompt")
		}
	})
}

func TestInboxOutputPath(t *testing.T) {
	tests := []struct {
		pdf, outDir, want string
	}{
		{"scans/batch.pdf", "", filepath.Join("scans", "batch.csv")},
		{"scans/batch.PDF", "tables", filepath.Join("tables", "batch.csv")},
		{"week_2.pdf", "", "week_2.csv"},
	}
	for _, tt := range tests {
		if got := inboxOutputPath(tt.pdf, tt.outDir); got != tt.want {
			t.Errorf("inboxOutputPath(%q, %q) = %q, want %q", tt.pdf, tt.outDir, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("héllo world", 5); got != "héllo..." {
		t.Errorf("truncate() = %q, want %q", got, "héllo...")
	}
}
