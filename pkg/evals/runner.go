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
package evals

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/teradata-labs/promptbench/internal/log"
	"github.com/teradata-labs/promptbench/pkg/llm"
	"github.com/teradata-labs/promptbench/pkg/prompts"
	"github.com/teradata-labs/promptbench/pkg/storage"
	"github.com/teradata-labs/promptbench/pkg/types"
	"go.uber.org/zap"
)

// PassThreshold is the minimum average score for a run to pass.
const PassThreshold = 70.0

// defaultCriteria is used when neither the caller nor the test case
// supplies grading criteria.
const defaultCriteria = "Output should be relevant, accurate, and well-formatted."

// Runner executes eval datasets against prompt versions.
type Runner struct {
	store    storage.Store
	provider llm.Provider
	judge    *Judge
	library  *Library
}

// NewRunner wires a runner from its collaborators.
func NewRunner(store storage.Store, provider llm.Provider, judge *Judge, library *Library) *Runner {
	return &Runner{store: store, provider: provider, judge: judge, library: library}
}

// Run executes every test case in the dataset against the given prompt
// version, grades each output, and persists the EvalRun before and
// after execution. customCriteria, when non-empty, overrides per-case
// criteria. Individual case failures degrade to zero-score results;
// only missing entities or storage failures abort the run.
func (r *Runner) Run(ctx context.Context, promptID, versionID, datasetID, customCriteria string) (*types.EvalRun, error) {
	prompt, err := r.store.GetPromptByID(ctx, promptID)
	if err != nil {
		return nil, err
	}
	version := prompt.VersionByID(versionID)
	if version == nil {
		return nil, &storage.NotFoundError{Kind: "version", ID: versionID}
	}
	dataset, ok := r.library.Get(datasetID)
	if !ok {
		return nil, &storage.NotFoundError{Kind: "dataset", ID: datasetID}
	}

	run := &types.EvalRun{
		ID:              uuid.New().String(),
		Name:            fmt.Sprintf("%s - %s", dataset.Name, prompt.Name),
		Date:            time.Now().UTC(),
		PromptID:        promptID,
		PromptVersionID: versionID,
		Status:          types.EvalRunning,
		SampleSize:      len(dataset.TestCases),
	}
	if err := r.store.SaveEvalRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save eval run: %w", err)
	}

	var totalScore float64
	for i := range dataset.TestCases {
		result := r.runCase(ctx, prompt, version, &dataset.TestCases[i], customCriteria)
		run.Results = append(run.Results, result)
		totalScore += result.Score
	}

	if len(run.Results) > 0 {
		run.Score = math.Round(totalScore / float64(len(run.Results)))
	}
	if run.Score >= PassThreshold {
		run.Status = types.EvalPassed
	} else {
		run.Status = types.EvalFailed
	}

	if err := r.store.SaveEvalRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to save eval run: %w", err)
	}

	log.Info("eval run completed",
		zap.String("run_id", run.ID),
		zap.String("prompt_id", promptID),
		zap.String("version_id", versionID),
		zap.Float64("score", run.Score),
		zap.String("status", string(run.Status)))
	return run, nil
}

func (r *Runner) runCase(ctx context.Context, prompt *types.Prompt, version *types.PromptVersion, tc *types.TestCase, customCriteria string) *types.EvalResultItem {
	rendered := prompts.Render(version.Template, tc.Inputs)

	resp, err := r.provider.Run(ctx, version.Model, rendered, version.Temperature)
	if err != nil {
		return &types.EvalResultItem{
			Input:       tc.Inputs,
			Output:      fmt.Sprintf("Error: %v", err),
			Score:       0,
			GradeReason: "Test execution failed",
		}
	}

	r.logExecution(ctx, prompt.ID, version, tc.Inputs, resp)

	if resp.Status == types.ExecError {
		return &types.EvalResultItem{
			Input:          tc.Inputs,
			Output:         fmt.Sprintf("Error: %s", resp.Err),
			ExpectedOutput: tc.ExpectedOutput,
			Score:          0,
			GradeReason:    "Test execution failed",
		}
	}

	criteria := customCriteria
	if criteria == "" {
		criteria = tc.Criteria
	}
	if criteria == "" {
		criteria = defaultCriteria
	}

	inputJSON, _ := json.Marshal(tc.Inputs)
	evaluation, err := r.judge.Evaluate(ctx, string(inputJSON), resp.Text, criteria)
	if err != nil {
		evaluation = &Evaluation{Score: 0, Reasoning: fmt.Sprintf("Evaluation failed: %v", err)}
	}

	item := &types.EvalResultItem{
		Input:          tc.Inputs,
		Output:         resp.Text,
		ExpectedOutput: tc.ExpectedOutput,
		Score:          evaluation.Score,
		GradeReason:    evaluation.Reasoning,
		Suggestions:    evaluation.Suggestions,
	}
	if tc.ExpectedOutput != "" {
		item.Similarity = Similarity(tc.ExpectedOutput, resp.Text)
	}
	return item
}

// logExecution records each eval execution in the shared log stream so
// eval traffic contributes to version metrics. Log failures are
// reported but do not fail the case.
func (r *Runner) logExecution(ctx context.Context, promptID string, version *types.PromptVersion, inputs map[string]string, resp *llm.Response) {
	output := resp.Text
	if resp.Status == types.ExecError {
		output = fmt.Sprintf("Error: %s", resp.Err)
	}
	entry, err := types.NewLogEntry(promptID, version.ID, inputs, output,
		int64(resp.LatencyMs), resp.CostUSD, resp.InputTokens+resp.OutputTokens,
		resp.Status, version.Model)
	if err != nil {
		log.Warn("failed to build eval log entry", zap.Error(err))
		return
	}
	if err := r.store.AddLog(ctx, entry); err != nil {
		log.Warn("failed to record eval log entry", zap.Error(err))
	}
}
