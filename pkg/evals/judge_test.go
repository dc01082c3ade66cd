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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/promptbench/pkg/llm"
	"github.com/teradata-labs/promptbench/pkg/types"
)

// fakeProvider returns canned responses and records prompts it was
// asked to run.
type fakeProvider struct {
	responses []*llm.Response
	err       error
	calls     []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Run(_ context.Context, _, prompt string, _ float64) (*llm.Response, error) {
	f.calls = append(f.calls, prompt)
	if f.err != nil {
		return nil, f.err
	}
	idx := len(f.calls) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx], nil
}

func successResp(text string) *llm.Response {
	return &llm.Response{
		Text:         text,
		LatencyMs:    50,
		InputTokens:  10,
		OutputTokens: 10,
		CostUSD:      0.001,
		Status:       types.ExecSuccess,
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantScore float64
		wantErr   bool
	}{
		{
			name:      "clean json",
			response:  `{"score": 85, "reasoning": "good"}`,
			wantScore: 85,
		},
		{
			name:      "json wrapped in prose",
			response:  "Here is my verdict:\n```json\n{\"score\": 42, \"reasoning\": \"meh\"}\n```\nDone.",
			wantScore: 42,
		},
		{
			name:      "score clamped to 100",
			response:  `{"score": 150, "reasoning": "overeager"}`,
			wantScore: 100,
		},
		{
			name:     "no json at all",
			response: "I cannot evaluate this.",
			wantErr:  true,
		},
		{
			name:     "malformed json",
			response: `{"score": "high"}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, err := parseVerdict(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantScore, eval.Score, 1e-9)
		})
	}
}

func TestJudge_Evaluate(t *testing.T) {
	provider := &fakeProvider{responses: []*llm.Response{
		successResp(`{"score": 90, "reasoning": "clear and accurate", "suggestions": ["tighten intro"]}`),
	}}
	judge, err := NewJudge(provider, "judge-model")
	require.NoError(t, err)

	eval, err := judge.Evaluate(context.Background(), "input", "output", "be accurate")
	require.NoError(t, err)
	assert.InDelta(t, 90.0, eval.Score, 1e-9)
	assert.Equal(t, "clear and accurate", eval.Reasoning)
	assert.Equal(t, []string{"tighten intro"}, eval.Suggestions)

	require.Len(t, provider.calls, 1)
	assert.Contains(t, provider.calls[0], "be accurate")
}

func TestJudge_Evaluate_UnparseableDegradesToZero(t *testing.T) {
	provider := &fakeProvider{responses: []*llm.Response{successResp("no verdict here")}}
	judge, err := NewJudge(provider, "judge-model")
	require.NoError(t, err)

	eval, err := judge.Evaluate(context.Background(), "in", "out", "criteria")
	require.NoError(t, err)
	assert.Zero(t, eval.Score)
	assert.NotEmpty(t, eval.Reasoning)
}

func TestJudge_Evaluate_ProviderErrorStatus(t *testing.T) {
	provider := &fakeProvider{responses: []*llm.Response{
		{Status: types.ExecError, Err: "rate limited"},
	}}
	judge, err := NewJudge(provider, "judge-model")
	require.NoError(t, err)

	eval, err := judge.Evaluate(context.Background(), "in", "out", "criteria")
	require.NoError(t, err)
	assert.Zero(t, eval.Score)
	assert.Contains(t, eval.Reasoning, "rate limited")
}

func TestNewJudge_Validation(t *testing.T) {
	_, err := NewJudge(nil, "m")
	assert.Error(t, err)

	_, err = NewJudge(&fakeProvider{}, "")
	assert.Error(t, err)
}

func TestJudge_SuggestFix(t *testing.T) {
	provider := &fakeProvider{responses: []*llm.Response{successResp("1. Restore the tone instruction.")}}
	judge, err := NewJudge(provider, "judge-model")
	require.NoError(t, err)

	logs := make([]*types.LogEntry, 0, 5)
	for i := 0; i < 5; i++ {
		logs = append(logs, &types.LogEntry{
			ID:     fmt.Sprintf("log-%d", i),
			Output: fmt.Sprintf("Error: boom %d", i),
			Status: types.ExecError,
		})
	}

	fix, err := judge.SuggestFix(context.Background(), &FixRequest{
		PreviousVersion:   &types.PromptVersion{Version: 1, Template: "old template"},
		CurrentVersion:    &types.PromptVersion{Version: 2, Template: "new template"},
		QualityDrop:       22.5,
		ErrorRateIncrease: 5.0,
		CurrentLogs:       logs,
	})
	require.NoError(t, err)
	assert.Equal(t, "1. Restore the tone instruction.", fix)

	require.Len(t, provider.calls, 1)
	prompt := provider.calls[0]
	assert.Contains(t, prompt, "old template")
	assert.Contains(t, prompt, "new template")
	assert.Contains(t, prompt, "22.5 points")
	// Only three failing samples are quoted.
	assert.Contains(t, prompt, "boom 0")
	assert.Contains(t, prompt, "boom 2")
	assert.NotContains(t, prompt, "boom 3")
}
