package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/surveytab/internal/config"
	"github.com/jackzampolin/surveytab/internal/home"
	"github.com/jackzampolin/surveytab/internal/output"
	"github.com/jackzampolin/surveytab/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string

	format output.Format
	level  = new(slog.LevelVar)
)

var rootCmd = &cobra.Command{
	Use:   "surveytab",
	Short: "Turn scanned paper surveys into a CSV table with a vision LLM",
	Long: `Surveytab reads a scanned survey PDF page by page with a vision-capable
LLM and writes one CSV row per completed survey.

The pipeline:
  - Renders every PDF page to an image
  - Asks the model to transcribe each page as JSON question/answer pairs
  - Fixes the column set from the first survey, in natural order
  - Writes one row per survey, leaving unanswered questions blank`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		f, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		format = f

		if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
		}

		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		// .env in the working directory wins over the one in the home directory
		return config.LoadDotEnv(".env", h.DotEnvPath())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.surveytab/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "surveytab home directory (default: ~/.surveytab)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "format", "f", "yaml", "summary output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn, error",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(callsCmd)
}

// consoleLogger logs to stderr at the --log-level.
func consoleLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadEnvironment opens the home directory and loads config.
func loadEnvironment(logger *slog.Logger) (*home.Dir, *config.Manager, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, nil, err
	}
	mgr, err := config.NewManager(cfgFile, h.Path(), logger)
	if err != nil {
		return nil, nil, err
	}
	return h, mgr, nil
}

// outputTo prints data to the command's stdout in the --format.
func outputTo(cmd *cobra.Command, data any) error {
	return output.OutputTo(cmd.OutOrStdout(), format, data)
}
