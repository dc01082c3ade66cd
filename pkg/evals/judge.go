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

// Package evals runs prompt versions against test datasets and grades
// the outputs with an LLM judge.
package evals

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/teradata-labs/promptbench/internal/log"
	"github.com/teradata-labs/promptbench/pkg/llm"
	"github.com/teradata-labs/promptbench/pkg/types"
	"go.uber.org/zap"
)

const (
	// judgeTemperature keeps grading mostly deterministic.
	judgeTemperature = 0.3

	// fixTemperature allows some creativity in fix suggestions.
	fixTemperature = 0.5

	// maxFailedSamples limits how many failing outputs are quoted in a
	// fix-suggestion prompt.
	maxFailedSamples = 3

	// failedSampleLen truncates each quoted failing output.
	failedSampleLen = 100
)

// Evaluation is the judge's grade for a single output.
type Evaluation struct {
	Score       float64  `json:"score"` // 0-100
	Reasoning   string   `json:"reasoning"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Judge grades model outputs using LLM-as-judge.
type Judge struct {
	provider llm.Provider
	model    string
}

// NewJudge creates a judge backed by the given provider and model.
func NewJudge(provider llm.Provider, model string) (*Judge, error) {
	if provider == nil {
		return nil, fmt.Errorf("LLM provider is required")
	}
	if model == "" {
		return nil, fmt.Errorf("judge model is required")
	}
	return &Judge{provider: provider, model: model}, nil
}

// Evaluate grades output against criteria. A judge call that fails or
// returns unparseable JSON degrades to a zero score with an explanatory
// reasoning rather than an error, so one bad grade never aborts a run.
func (j *Judge) Evaluate(ctx context.Context, input, output, criteria string) (*Evaluation, error) {
	promptText := j.buildJudgePrompt(input, output, criteria)

	resp, err := j.provider.Run(ctx, j.model, promptText, judgeTemperature)
	if err != nil {
		return nil, fmt.Errorf("judge LLM call failed: %w", err)
	}
	if resp.Status == types.ExecError {
		return &Evaluation{Score: 0, Reasoning: fmt.Sprintf("Evaluation failed: %s", resp.Err)}, nil
	}

	eval, err := parseVerdict(resp.Text)
	if err != nil {
		log.Warn("judge verdict unparseable", zap.Error(err))
		return &Evaluation{Score: 0, Reasoning: "Failed to parse evaluation result."}, nil
	}
	return eval, nil
}

// buildJudgePrompt constructs the evaluation prompt.
func (j *Judge) buildJudgePrompt(input, output, criteria string) string {
	var sb strings.Builder

	sb.WriteString("You are an AI Judge. Evaluate the following LLM output based on the criteria provided.\n\n")
	sb.WriteString(fmt.Sprintf("Input Prompt: %q\n", input))
	sb.WriteString(fmt.Sprintf("Model Output: %q\n", output))
	sb.WriteString(fmt.Sprintf("Criteria: %q\n\n", criteria))
	sb.WriteString("Respond with a JSON object containing:\n")
	sb.WriteString("- score: number (0-100)\n")
	sb.WriteString("- reasoning: string (brief explanation)\n")
	sb.WriteString("- suggestions: array of strings (optional improvements)\n")

	return sb.String()
}

// parseVerdict extracts the JSON verdict from the judge's response.
func parseVerdict(response string) (*Evaluation, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var eval Evaluation
	if err := json.Unmarshal([]byte(response[start:end+1]), &eval); err != nil {
		return nil, fmt.Errorf("failed to parse verdict: %w", err)
	}
	if eval.Score < 0 {
		eval.Score = 0
	}
	if eval.Score > 100 {
		eval.Score = 100
	}
	return &eval, nil
}

// FixRequest carries the context for a regression fix suggestion.
type FixRequest struct {
	PreviousVersion   *types.PromptVersion
	CurrentVersion    *types.PromptVersion
	QualityDrop       float64
	ErrorRateIncrease float64
	CurrentLogs       []*types.LogEntry
}

// SuggestFix asks the judge model for actionable suggestions to repair
// a detected regression. Errors are returned so callers can treat the
// suggestion as best-effort.
func (j *Judge) SuggestFix(ctx context.Context, req *FixRequest) (string, error) {
	if req == nil || req.PreviousVersion == nil || req.CurrentVersion == nil {
		return "", fmt.Errorf("both prompt versions are required")
	}

	resp, err := j.provider.Run(ctx, j.model, buildFixPrompt(req), fixTemperature)
	if err != nil {
		return "", fmt.Errorf("fix suggestion call failed: %w", err)
	}
	if resp.Status == types.ExecError {
		return "", fmt.Errorf("fix suggestion failed: %s", resp.Err)
	}
	return resp.Text, nil
}

func buildFixPrompt(req *FixRequest) string {
	var sb strings.Builder

	sb.WriteString("Analyze this prompt regression and suggest a fix.\n\n")
	sb.WriteString(fmt.Sprintf("Previous Version (v%d):\n\"\"\"\n%s\n\"\"\"\n\n",
		req.PreviousVersion.Version, req.PreviousVersion.Template))
	sb.WriteString(fmt.Sprintf("Current Version (v%d):\n\"\"\"\n%s\n\"\"\"\n\n",
		req.CurrentVersion.Version, req.CurrentVersion.Template))
	sb.WriteString(fmt.Sprintf("Quality dropped by %.1f points. Error rate increased by %.1f%%.\n\n",
		req.QualityDrop, req.ErrorRateIncrease))

	sb.WriteString("Recent failed outputs:\n")
	sampled := 0
	for _, entry := range req.CurrentLogs {
		if entry.Status != types.ExecError {
			continue
		}
		out := entry.Output
		if len(out) > failedSampleLen {
			out = out[:failedSampleLen]
		}
		sb.WriteString("- " + out + "\n")
		sampled++
		if sampled == maxFailedSamples {
			break
		}
	}

	sb.WriteString("\nProvide 2-3 specific, actionable suggestions to fix this regression. ")
	sb.WriteString("Focus on what changed that might have caused the quality drop.\n")

	return sb.String()
}
