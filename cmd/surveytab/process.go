package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/surveytab/internal/config"
	"github.com/jackzampolin/surveytab/internal/home"
	"github.com/jackzampolin/surveytab/internal/output"
	"github.com/jackzampolin/surveytab/internal/pipeline"
)

var (
	processFlags   runFlags
	processOutput  string
	processPreview int
)

var processCmd = &cobra.Command{
	Use:   "process <pdf>...",
	Short: "Read scanned surveys and write them as CSV",
	Long: `Process renders each page, reads it with the configured vision LLM,
and writes one CSV row per survey.

Multiple PDFs are treated as one document, ordered by the trailing number
in their file names. Pages that fail to read are reported in the summary
and leave their answers blank.`,
	Example: `  surveytab process scans.pdf --survey-length 2
  surveytab process part_1.pdf part_2.pdf -n 4 -o results.csv --provider openai`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		console := consoleLogger()

		h, mgr, err := loadEnvironment(console)
		if err != nil {
			return err
		}
		cfg := mgr.Get()
		settings := processFlags.merge(cmd, cfg.Defaults)
		if cmd.Flags().Changed("output") {
			settings.OutputFile = processOutput
		}

		setup, err := prepareRun(cfg, settings, console)
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
			PDFPaths:     args,
			SurveyLength: settings.SurveyLength,
			OutputPath:   settings.OutputFile,
			Client:       setup.client,
			Model:        setup.model,
			MaxTokens:    settings.MaxTokens,
			Concurrency:  settings.Concurrency,
			DPI:          settings.DPI,
			Lint:         settings.Lint,
			Prompt:       setup.prompt,
			Home:         h,
			RunID:        runID,
			Logger:       logger,
		})
		if err != nil {
			return err
		}

		result := processResult{Summary: summary}
		if processPreview > 0 {
			preview, err := output.ReadPreview(summary.Output, processPreview)
			if err != nil {
				logger.Warn("could not read preview", "error", err)
			} else {
				result.Preview = preview
			}
		}
		return outputTo(cmd, result)
	},
}

type processResult struct {
	Summary *pipeline.Summary `json:"summary" yaml:"summary"`
	Preview *output.Preview   `json:"preview,omitempty" yaml:"preview,omitempty"`
}

func init() {
	processFlags.register(processCmd)
	processCmd.Flags().StringVarP(&processOutput, "output", "o", config.DefaultOutputFile, "CSV output path")
	processCmd.Flags().IntVar(&processPreview, "preview", 5, "rows of the written table to show (0 to disable)")
}
