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
// Package types defines the core entities of the prompt workbench:
// prompts, versions, execution logs, A/B tests, regression alerts,
// and eval runs. Entities are plain records; invariants are enforced
// by constructors and by the operations in pkg/prompts, pkg/abtest,
// and pkg/regression.
package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VersionStatus is the lifecycle state of a prompt version.
type VersionStatus string

const (
	VersionDraft      VersionStatus = "draft"
	VersionStaging    VersionStatus = "staging"
	VersionProduction VersionStatus = "production"
	VersionArchived   VersionStatus = "archived"
)

// Valid reports whether the status is one of the known values.
func (s VersionStatus) Valid() bool {
	switch s {
	case VersionDraft, VersionStaging, VersionProduction, VersionArchived:
		return true
	}
	return false
}

// PromptVersion is an immutable snapshot of a prompt template.
// Only Status changes after creation (via promote/archive).
type PromptVersion struct {
	ID            string        `json:"id"`
	Version       int           `json:"version"` // monotonic per prompt, 1-based
	Template      string        `json:"template"`
	Variables     []string      `json:"variables"`
	Model         string        `json:"model"`
	Temperature   float64       `json:"temperature"`
	CreatedAt     time.Time     `json:"created_at"`
	CreatedBy     string        `json:"created_by,omitempty"`
	CommitMessage string        `json:"commit_message,omitempty"`
	Status        VersionStatus `json:"status"`
}

// Prompt groups a named template with its version history.
// Versions are ordered newest-first.
type Prompt struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	Tags            []string         `json:"tags,omitempty"`
	ActiveVersionID string           `json:"active_version_id"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Versions        []*PromptVersion `json:"versions"`
}

// VersionByID returns the version with the given ID, or nil.
func (p *Prompt) VersionByID(id string) *PromptVersion {
	for _, v := range p.Versions {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// ProductionVersions returns all production versions, newest-first by CreatedAt.
func (p *Prompt) ProductionVersions() []*PromptVersion {
	var out []*PromptVersion
	for _, v := range p.Versions {
		if v.Status == VersionProduction {
			out = append(out, v)
		}
	}
	// Insertion sort; version lists are short.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.After(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// ExecStatus is the outcome of a single prompt execution.
type ExecStatus string

const (
	ExecSuccess ExecStatus = "success"
	ExecError   ExecStatus = "error"
)

// LogEntry is an immutable record of one prompt execution.
// QualityScore is filled in asynchronously by the judge and may be nil.
type LogEntry struct {
	ID                 string            `json:"id"`
	PromptID           string            `json:"prompt_id"`
	VersionID          string            `json:"version_id"`
	Timestamp          time.Time         `json:"timestamp"`
	Inputs             map[string]string `json:"inputs"`
	Output             string            `json:"output"`
	LatencyMs          int64             `json:"latency_ms"`
	CostUSD            float64           `json:"cost_usd"`
	Tokens             int               `json:"tokens"`
	Status             ExecStatus        `json:"status"`
	Model              string            `json:"model"`
	QualityScore       *float64          `json:"quality_score,omitempty"`
	RegressionDetected bool              `json:"regression_detected,omitempty"`
	RegressionReason   string            `json:"regression_reason,omitempty"`
}

// NewLogEntry builds a log entry with a fresh ID and the current time,
// validating the non-negativity constraints on latency, cost, and tokens.
func NewLogEntry(promptID, versionID string, inputs map[string]string, output string, latencyMs int64, costUSD float64, tokens int, status ExecStatus, model string) (*LogEntry, error) {
	if promptID == "" || versionID == "" {
		return nil, fmt.Errorf("log entry requires prompt and version IDs")
	}
	if latencyMs < 0 || costUSD < 0 || tokens < 0 {
		return nil, fmt.Errorf("log entry metrics must be non-negative (latency=%d cost=%f tokens=%d)", latencyMs, costUSD, tokens)
	}
	if status != ExecSuccess && status != ExecError {
		return nil, fmt.Errorf("invalid execution status %q", status)
	}
	return &LogEntry{
		ID:        uuid.New().String(),
		PromptID:  promptID,
		VersionID: versionID,
		Timestamp: time.Now().UTC(),
		Inputs:    inputs,
		Output:    output,
		LatencyMs: latencyMs,
		CostUSD:   costUSD,
		Tokens:    tokens,
		Status:    status,
		Model:     model,
	}, nil
}

// TestStatus is the lifecycle state of an A/B test.
type TestStatus string

const (
	TestDraft     TestStatus = "draft"
	TestRunning   TestStatus = "running"
	TestPaused    TestStatus = "paused"
	TestCompleted TestStatus = "completed"
)

// CanTransition reports whether a test may move from s to target.
// Completed is terminal.
func (s TestStatus) CanTransition(target TestStatus) bool {
	switch s {
	case TestDraft:
		return target == TestRunning
	case TestRunning:
		return target == TestPaused || target == TestCompleted
	case TestPaused:
		return target == TestRunning || target == TestCompleted
	}
	return false
}

// Variant is one arm of an A/B test. Weight is relative traffic share;
// weights need not sum to 100 (the selector normalizes).
type Variant struct {
	PromptID  string  `json:"prompt_id"`
	VersionID string  `json:"version_id"`
	Weight    float64 `json:"weight"`
}

// TestMetrics is the cached summary displayed on a test.
type TestMetrics struct {
	TotalRequests int     `json:"total_requests"`
	SuccessRate   float64 `json:"success_rate"`
	AvgLatencyMs  int64   `json:"avg_latency_ms"`
	AvgCostUSD    float64 `json:"avg_cost_usd"`
	ErrorRate     float64 `json:"error_rate"`
}

// ABTest routes traffic between prompt version variants.
// WinnerVariantID is the winning variant index as a string, set only on
// the transition into completed.
type ABTest struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	Variants        []Variant   `json:"variants"`
	Status          TestStatus  `json:"status"`
	StartDate       time.Time   `json:"start_date"`
	EndDate         *time.Time  `json:"end_date,omitempty"`
	Metrics         TestMetrics `json:"metrics"`
	WinnerVariantID string      `json:"winner_variant_id,omitempty"`
}

// Severity classifies how bad a detected regression is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RegressionAlert records a detected quality or error-rate regression
// between two versions of the same prompt. Created once; the only
// mutation is the one-way fixed transition.
type RegressionAlert struct {
	ID                string     `json:"id"`
	PromptID          string     `json:"prompt_id"`
	VersionID         string     `json:"version_id"`
	PreviousVersionID string     `json:"previous_version_id,omitempty"`
	DetectedAt        time.Time  `json:"detected_at"`
	Severity          Severity   `json:"severity"`
	Issue             string     `json:"issue"`
	QualityDrop       float64    `json:"quality_drop"` // percentage points
	AffectedLogs      []string   `json:"affected_logs"`
	SuggestedFix      string     `json:"suggested_fix,omitempty"`
	Fixed             bool       `json:"fixed"`
	FixedAt           *time.Time `json:"fixed_at,omitempty"`
	FixedVersionID    string     `json:"fixed_version_id,omitempty"`
}

// EvalStatus is the lifecycle state of an eval run.
type EvalStatus string

const (
	EvalRunning EvalStatus = "running"
	EvalPassed  EvalStatus = "passed"
	EvalFailed  EvalStatus = "failed"
)

// EvalResultItem is the outcome of a single eval test case.
type EvalResultItem struct {
	Input          map[string]string `json:"input"`
	Output         string            `json:"output"`
	ExpectedOutput string            `json:"expected_output,omitempty"`
	Similarity     float64           `json:"similarity,omitempty"`
	Score          float64           `json:"score"`
	GradeReason    string            `json:"grade_reason,omitempty"`
	Suggestions    []string          `json:"suggestions,omitempty"`
}

// EvalRun is one evaluation of a prompt version against a dataset.
type EvalRun struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Date            time.Time         `json:"date"`
	PromptID        string            `json:"prompt_id"`
	PromptVersionID string            `json:"prompt_version_id"`
	Score           float64           `json:"score"` // 0-100 average
	Status          EvalStatus        `json:"status"`
	SampleSize      int               `json:"sample_size"`
	Results         []*EvalResultItem `json:"results,omitempty"`
}

// TestCase is one input set in an eval dataset.
type TestCase struct {
	Inputs         map[string]string `json:"inputs" yaml:"inputs"`
	ExpectedOutput string            `json:"expected_output,omitempty" yaml:"expected_output"`
	Criteria       string            `json:"criteria,omitempty" yaml:"criteria"`
}

// EvalDataset is a named collection of test cases.
type EvalDataset struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description"`
	TestCases   []TestCase `json:"test_cases" yaml:"test_cases"`
}
