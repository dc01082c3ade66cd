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
// Package metrics aggregates execution-log statistics. Aggregate is a
// pure function over an already-filtered log slice; filtering by
// prompt/version or time window is the caller's job (see FilterWindow).
package metrics

import (
	"math"
	"time"

	"github.com/teradata-labs/promptbench/pkg/types"
)

// maxErrorSamples bounds how many error entries a Summary carries.
const maxErrorSamples = 5

// Summary holds aggregate statistics for a log slice.
type Summary struct {
	TotalRequests   int
	SuccessRequests int
	FailedRequests  int
	SuccessRate     float64 // percent
	AvgLatencyMs    int64   // arithmetic mean, rounded
	AvgCostUSD      float64
	ErrorRate       float64 // percent
	ErrorLogs       []*types.LogEntry
}

// Aggregate computes a Summary over logs. An empty slice yields all
// zeros, never NaN.
func Aggregate(logs []*types.LogEntry) Summary {
	s := Summary{TotalRequests: len(logs)}
	if s.TotalRequests == 0 {
		return s
	}

	var latencySum int64
	var costSum float64
	for _, l := range logs {
		if l.Status == types.ExecSuccess {
			s.SuccessRequests++
		} else if len(s.ErrorLogs) < maxErrorSamples {
			s.ErrorLogs = append(s.ErrorLogs, l)
		}
		latencySum += l.LatencyMs
		costSum += l.CostUSD
	}

	s.FailedRequests = s.TotalRequests - s.SuccessRequests
	s.SuccessRate = 100 * float64(s.SuccessRequests) / float64(s.TotalRequests)
	s.ErrorRate = 100 * float64(s.FailedRequests) / float64(s.TotalRequests)
	s.AvgLatencyMs = int64(math.Round(float64(latencySum) / float64(s.TotalRequests)))
	s.AvgCostUSD = costSum / float64(s.TotalRequests)
	return s
}

// FilterWindow selects logs for a (prompt, version) pair whose timestamp
// falls within [start, end]. A zero end means "now": only the lower
// bound applies. This windowing matters for A/B variants, whose identity
// may be reused outside the test window.
func FilterWindow(logs []*types.LogEntry, promptID, versionID string, start time.Time, end *time.Time) []*types.LogEntry {
	var out []*types.LogEntry
	for _, l := range logs {
		if l.PromptID != promptID || l.VersionID != versionID {
			continue
		}
		if l.Timestamp.Before(start) {
			continue
		}
		if end != nil && l.Timestamp.After(*end) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// FilterVersion selects logs for a (prompt, version) pair, preserving
// order. Used by the regression detector, which slices the newest N.
func FilterVersion(logs []*types.LogEntry, promptID, versionID string) []*types.LogEntry {
	var out []*types.LogEntry
	for _, l := range logs {
		if l.PromptID == promptID && l.VersionID == versionID {
			out = append(out, l)
		}
	}
	return out
}
