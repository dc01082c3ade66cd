// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package abtest

import (
	"github.com/teradata-labs/promptbench/pkg/metrics"
	"github.com/teradata-labs/promptbench/pkg/types"
)

// MinSampleSize is the minimum number of requests a variant needs
// before it is eligible to win.
const MinSampleSize = 10

// Outcome classifies a winner determination.
type Outcome string

const (
	// OutcomeInsufficientData: no variant reached MinSampleSize.
	OutcomeInsufficientData Outcome = "insufficient_data"
	// OutcomeNoWinner: eligible variants exist but none scored above zero.
	OutcomeNoWinner Outcome = "no_winner"
	// OutcomeWinner: a winning variant was found.
	OutcomeWinner Outcome = "winner"
)

// Result is the outcome of a winner determination.
type Result struct {
	Outcome Outcome
	// Index and Score are meaningful only when Outcome is OutcomeWinner.
	Index int
	Score float64
	// Summaries holds the per-variant metrics used for scoring, indexed
	// like test.Variants.
	Summaries []metrics.Summary
}

// VariantMetrics aggregates the logs attributable to one variant over
// the test's active window.
func VariantMetrics(test *types.ABTest, idx int, logs []*types.LogEntry) metrics.Summary {
	if test == nil || idx < 0 || idx >= len(test.Variants) {
		return metrics.Summary{}
	}
	v := test.Variants[idx]
	window := metrics.FilterWindow(logs, v.PromptID, v.VersionID, test.StartDate, test.EndDate)
	return metrics.Aggregate(window)
}

// score maps a variant's summary onto a 0-100 composite:
// success rate weighted 60%, inverse error rate 20%, latency 20% with
// latencies at or above 1000ms scoring zero.
func score(s metrics.Summary) float64 {
	latency := float64(s.AvgLatencyMs)
	if latency > 1000 {
		latency = 1000
	}
	latencyScore := (1000 - latency) / 10
	return s.SuccessRate*0.6 + (100-s.ErrorRate)*0.2 + latencyScore*0.2
}

// DetermineWinner scores every variant with at least MinSampleSize
// requests in the test window and returns the best. Ties go to the
// earlier variant.
func DetermineWinner(test *types.ABTest, logs []*types.LogEntry) Result {
	result := Result{
		Outcome:   OutcomeInsufficientData,
		Index:     -1,
		Summaries: make([]metrics.Summary, len(test.Variants)),
	}

	bestScore := 0.0
	for i := range test.Variants {
		summary := VariantMetrics(test, i, logs)
		result.Summaries[i] = summary

		if summary.TotalRequests < MinSampleSize {
			continue
		}
		if result.Outcome == OutcomeInsufficientData {
			result.Outcome = OutcomeNoWinner
		}

		s := score(summary)
		if s > bestScore {
			bestScore = s
			result.Outcome = OutcomeWinner
			result.Index = i
			result.Score = s
		}
	}
	return result
}
