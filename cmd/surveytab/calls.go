package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/surveytab/internal/home"
	"github.com/jackzampolin/surveytab/internal/llmcall"
)

var (
	callsFailed bool
	callsPage   int
	callsLimit  int
	callsFull   bool
	callsStats  bool
)

var callsCmd = &cobra.Command{
	Use:   "calls [run-id]",
	Short: "Show the LLM calls journaled for a run",
	Long: `Calls prints the per-page LLM calls recorded during a run, including the
raw response text. Without a run ID the most recent run is shown.
With --stats it prints totals for the selected calls instead.`,
	Example: `  surveytab calls --failed
  surveytab calls --stats
  surveytab calls 20250101-120000-abcd1234 --page 3 --full`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}

		var runID string
		if len(args) == 1 {
			runID = args[0]
		} else {
			runID, err = h.LatestRun()
			if err != nil {
				return err
			}
		}

		calls, err := llmcall.ReadCalls(h.CallsPath(runID), llmcall.Filter{
			Page:       callsPage,
			FailedOnly: callsFailed,
			Limit:      callsLimit,
		})
		if err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		if callsStats {
			return outputTo(cmd, llmcall.Summarize(calls))
		}
		if !callsFull {
			for i := range calls {
				calls[i].Response = truncate(calls[i].Response, 200)
			}
		}
		return outputTo(cmd, calls)
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func init() {
	callsCmd.Flags().BoolVar(&callsFailed, "failed", false, "only show failed calls")
	callsCmd.Flags().IntVar(&callsPage, "page", 0, "only show calls for this page")
	callsCmd.Flags().IntVar(&callsLimit, "limit", 0, "maximum number of calls to show")
	callsCmd.Flags().BoolVar(&callsFull, "full", false, "show complete response text")
	callsCmd.Flags().BoolVar(&callsStats, "stats", false, "show cost, token and latency totals instead of calls")
}
