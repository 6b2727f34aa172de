package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/surveytab/internal/config"
	"github.com/jackzampolin/surveytab/internal/home"
	"github.com/jackzampolin/surveytab/internal/inbox"
	"github.com/jackzampolin/surveytab/internal/pipeline"
)

var (
	watchFlags     runFlags
	watchOutputDir string
	watchExisting  bool
	watchSettle    time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Process each PDF dropped into a directory",
	Long: `Watch runs process for every new PDF that appears in a directory and
writes <name>.csv next to it (or into --output-dir).

Each file is handled once, after it has stopped changing. Provider settings
in the config file are reloaded while watching.`,
	Example: `  surveytab watch ./inbox --survey-length 2
  surveytab watch ./inbox -n 2 --existing --output-dir ./tables`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := consoleLogger()

		h, mgr, err := loadEnvironment(logger)
		if err != nil {
			return err
		}
		settings := watchFlags.merge(cmd, mgr.Get().Defaults)
		setup, err := prepareRun(mgr.Get(), settings, logger)
		if err != nil {
			return err
		}

		if mgr.ConfigFileUsed() != "" {
			mgr.OnChange(func(cfg *config.Config) {
				setup.registry.Reload(cfg.ToProviderRegistryConfig())
			})
			mgr.WatchConfig()
		}

		if watchOutputDir != "" {
			if err := os.MkdirAll(watchOutputDir, 0o755); err != nil {
				return err
			}
		}

		w, err := inbox.New(inbox.Config{
			Dir:             args[0],
			Settle:          watchSettle,
			IncludeExisting: watchExisting,
			Logger:          logger,
			Handler: func(ctx context.Context, path string) error {
				return processInboxFile(ctx, cmd, h, setup, path)
			},
		})
		if err != nil {
			return err
		}

		logger.Info("watching for PDFs", "dir", args[0], "survey_length", settings.SurveyLength)
		return w.Run(ctx)
	},
}

// processInboxFile runs the pipeline for one PDF found by the watcher.
func processInboxFile(ctx context.Context, cmd *cobra.Command, h *home.Dir, setup *runSetup, path string) error {
	// The registry may have been reloaded since the last file
	client, err := setup.registry.GetLLM(setup.settings.LLMProvider)
	if err != nil {
		return err
	}

	runID := home.NewRunID(time.Now())
	logger, closer, err := pipeline.NewRunLogger(h, runID, cmd.ErrOrStderr(), level)
	if err != nil {
		return err
	}
	defer closer.Close()

	summary, err := pipeline.Run(ctx, pipeline.Options{
		PDFPaths:     []string{path},
		SurveyLength: setup.settings.SurveyLength,
		OutputPath:   inboxOutputPath(path, watchOutputDir),
		Client:       client,
		Model:        setup.model,
		MaxTokens:    setup.settings.MaxTokens,
		Concurrency:  setup.settings.Concurrency,
		DPI:          setup.settings.DPI,
		Lint:         setup.settings.Lint,
		Prompt:       setup.prompt,
		Home:         h,
		RunID:        runID,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	logger.Info("survey table written",
		"output", summary.Output,
		"rows", summary.Rows,
		"failures", len(summary.Failures))
	return nil
}

// inboxOutputPath maps scans/batch.pdf to scans/batch.csv, or to
// outDir/batch.csv when outDir is set.
func inboxOutputPath(pdfPath, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath)) + ".csv"
	if outDir == "" {
		outDir = filepath.Dir(pdfPath)
	}
	return filepath.Join(outDir, base)
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().StringVar(&watchOutputDir, "output-dir", "", "directory for CSV files (default: next to each PDF)")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "also process PDFs already in the directory")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", inbox.DefaultSettle, "wait for a file to stop changing before reading it")
}
