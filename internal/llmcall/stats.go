package llmcall

import (
	"math"
	"sort"
)

// Stats summarizes a set of journaled calls.
type Stats struct {
	Count        int   `json:"count" yaml:"count"`
	SuccessCount int   `json:"success_count" yaml:"success_count"`
	ErrorCount   int   `json:"error_count" yaml:"error_count"`
	PagesFailed  []int `json:"pages_failed,omitempty" yaml:"pages_failed,omitempty"`

	TotalCostUSD float64 `json:"total_cost_usd" yaml:"total_cost_usd"`
	AvgCostUSD   float64 `json:"avg_cost_usd" yaml:"avg_cost_usd"`

	TotalInputTokens  int `json:"total_input_tokens" yaml:"total_input_tokens"`
	TotalOutputTokens int `json:"total_output_tokens" yaml:"total_output_tokens"`

	// Latency in milliseconds
	LatencyP50 int `json:"latency_p50_ms" yaml:"latency_p50_ms"`
	LatencyP95 int `json:"latency_p95_ms" yaml:"latency_p95_ms"`
	LatencyMax int `json:"latency_max_ms" yaml:"latency_max_ms"`
}

// Summarize computes Stats over calls.
func Summarize(calls []Call) *Stats {
	stats := &Stats{Count: len(calls)}
	if len(calls) == 0 {
		return stats
	}

	var latencies []int
	failed := make(map[int]bool)
	for _, c := range calls {
		stats.TotalCostUSD += c.CostUSD
		stats.TotalInputTokens += c.InputTokens
		stats.TotalOutputTokens += c.OutputTokens
		if c.Success {
			stats.SuccessCount++
		} else {
			stats.ErrorCount++
			if !failed[c.Page] {
				failed[c.Page] = true
				stats.PagesFailed = append(stats.PagesFailed, c.Page)
			}
		}
		if c.LatencyMs > 0 {
			latencies = append(latencies, c.LatencyMs)
		}
	}
	sort.Ints(stats.PagesFailed)
	stats.AvgCostUSD = stats.TotalCostUSD / float64(stats.Count)

	if len(latencies) > 0 {
		sort.Ints(latencies)
		stats.LatencyMax = latencies[len(latencies)-1]
		stats.LatencyP50 = percentile(latencies, 50)
		stats.LatencyP95 = percentile(latencies, 95)
	}
	return stats
}

// percentile returns the nearest-rank p-th percentile of sorted values.
func percentile(sorted []int, p float64) int {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	return sorted[rank]
}
