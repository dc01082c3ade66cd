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
package regression

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/promptbench/pkg/evals"
	"github.com/teradata-labs/promptbench/pkg/storage"
	"github.com/teradata-labs/promptbench/pkg/types"
)

type fixedSuggester struct {
	fix  string
	err  error
	reqs []*evals.FixRequest
}

func (f *fixedSuggester) SuggestFix(_ context.Context, req *evals.FixRequest) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.fix, f.err
}

// seedPrompt stores a prompt with v1 as the production baseline and v2
// as the version under inspection.
func seedPrompt(t *testing.T, store storage.Store) *types.Prompt {
	t.Helper()
	now := time.Now().UTC()
	prompt := &types.Prompt{
		ID:   "p1",
		Name: "support reply",
		Versions: []*types.PromptVersion{
			{ID: "v2", Version: 2, Template: "new", CreatedAt: now, Status: types.VersionStaging},
			{ID: "v1", Version: 1, Template: "old", CreatedAt: now.Add(-time.Hour), Status: types.VersionProduction},
		},
		ActiveVersionID: "v2",
	}
	require.NoError(t, store.SavePrompt(context.Background(), prompt))
	return prompt
}

// addScoredLogs appends count logs for the version, with quality scores
// taken round-robin from scores (nil scores slice leaves them unset).
func addScoredLogs(t *testing.T, store storage.Store, versionID string, scores []float64, errIdx map[int]bool) {
	t.Helper()
	for i := 0; i < len(scores) || (scores == nil && i < 3); i++ {
		status := types.ExecSuccess
		if errIdx[i] {
			status = types.ExecError
		}
		entry := &types.LogEntry{
			ID:        fmt.Sprintf("%s-log-%d", versionID, i),
			PromptID:  "p1",
			VersionID: versionID,
			Timestamp: time.Now().UTC(),
			Output:    "out",
			Status:    status,
		}
		if scores != nil {
			score := scores[i]
			entry.QualityScore = &score
		}
		require.NoError(t, store.AddLog(context.Background(), entry))
	}
}

func TestDetect_NoBaseline(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	prompt := seedPrompt(t, store)
	// Demote the baseline so no other production version exists.
	prompt.Versions[1].Status = types.VersionArchived
	require.NoError(t, store.SavePrompt(ctx, prompt))

	d := NewDetector(store, nil, nil)
	alert, err := d.Detect(ctx, "p1", "v2")
	require.NoError(t, err)
	assert.Nil(t, alert)
}

func TestDetect_InsufficientSamples(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seedPrompt(t, store)

	addScoredLogs(t, store, "v1", []float64{90, 90, 90}, nil)
	addScoredLogs(t, store, "v2", []float64{40, 40}, nil) // one short

	d := NewDetector(store, nil, nil)
	alert, err := d.Detect(ctx, "p1", "v2")
	require.NoError(t, err)
	assert.Nil(t, alert)
}

func TestDetect_QualityDropBoundary(t *testing.T) {
	ctx := context.Background()

	t.Run("drop of exactly 10 does not trigger", func(t *testing.T) {
		store := storage.NewMemoryStore()
		seedPrompt(t, store)
		addScoredLogs(t, store, "v1", []float64{90, 90, 90}, nil)
		addScoredLogs(t, store, "v2", []float64{80, 80, 80}, nil)

		d := NewDetector(store, nil, nil)
		alert, err := d.Detect(ctx, "p1", "v2")
		require.NoError(t, err)
		assert.Nil(t, alert)
	})

	t.Run("drop of 10.01 triggers medium", func(t *testing.T) {
		store := storage.NewMemoryStore()
		seedPrompt(t, store)
		addScoredLogs(t, store, "v1", []float64{90, 90, 90}, nil)
		addScoredLogs(t, store, "v2", []float64{79.99, 79.99, 79.99}, nil)

		d := NewDetector(store, nil, nil)
		alert, err := d.Detect(ctx, "p1", "v2")
		require.NoError(t, err)
		require.NotNil(t, alert)
		assert.Equal(t, types.SeverityMedium, alert.Severity)
		assert.InDelta(t, 10.01, alert.QualityDrop, 1e-6)
		assert.Contains(t, alert.Issue, "Quality dropped")
	})
}

func TestDetect_CriticalQualityDrop(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seedPrompt(t, store)

	addScoredLogs(t, store, "v1", []float64{90, 88, 92}, nil)
	addScoredLogs(t, store, "v2", []float64{60, 55, 58}, nil)

	d := NewDetector(store, nil, nil)
	alert, err := d.Detect(ctx, "p1", "v2")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, types.SeverityCritical, alert.Severity)
	assert.InDelta(t, 32.33, alert.QualityDrop, 0.01)
	assert.Equal(t, "v1", alert.PreviousVersionID)
	assert.Len(t, alert.AffectedLogs, 3)

	// Alert was persisted.
	alerts, err := store.GetAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, alert.ID, alerts[0].ID)
}

func TestDetect_ErrorRateIncrease(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seedPrompt(t, store)

	// Equal quality, but two of three current runs error (66.7 point
	// increase, past the critical threshold of 30).
	addScoredLogs(t, store, "v1", []float64{80, 80, 80}, nil)
	addScoredLogs(t, store, "v2", []float64{80, 80, 80}, map[int]bool{0: true, 1: true})

	d := NewDetector(store, nil, nil)
	alert, err := d.Detect(ctx, "p1", "v2")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, types.SeverityCritical, alert.Severity)
	assert.Contains(t, alert.Issue, "Error rate increased")
}

func TestDetect_UnscoredLogsUseDefaults(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seedPrompt(t, store)

	// No quality scores anywhere: baseline assumes 80, current 70, so
	// the 10-point drop sits exactly on the threshold and stays quiet.
	addScoredLogs(t, store, "v1", nil, nil)
	addScoredLogs(t, store, "v2", nil, nil)

	d := NewDetector(store, nil, nil)
	alert, err := d.Detect(ctx, "p1", "v2")
	require.NoError(t, err)
	assert.Nil(t, alert)

	// Widening the assumed gap trips the detector.
	d = NewDetector(store, nil, &Options{CurrentQualityDefault: 60, BaselineQualityDefault: 85})
	alert, err = d.Detect(ctx, "p1", "v2")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, types.SeverityCritical, alert.Severity)
}

func TestDetect_SuggesterWiredIn(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seedPrompt(t, store)

	addScoredLogs(t, store, "v1", []float64{90, 90, 90}, nil)
	addScoredLogs(t, store, "v2", []float64{50, 50, 50}, nil)

	sug := &fixedSuggester{fix: "restore the tone guidance"}
	d := NewDetector(store, sug, nil)
	alert, err := d.Detect(ctx, "p1", "v2")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, "restore the tone guidance", alert.SuggestedFix)

	require.Len(t, sug.reqs, 1)
	assert.Equal(t, "v1", sug.reqs[0].PreviousVersion.ID)
	assert.Equal(t, "v2", sug.reqs[0].CurrentVersion.ID)
}

func TestDetect_SuggesterFailureIsBestEffort(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seedPrompt(t, store)

	addScoredLogs(t, store, "v1", []float64{90, 90, 90}, nil)
	addScoredLogs(t, store, "v2", []float64{50, 50, 50}, nil)

	sug := &fixedSuggester{err: fmt.Errorf("judge offline")}
	d := NewDetector(store, sug, nil)
	alert, err := d.Detect(ctx, "p1", "v2")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Empty(t, alert.SuggestedFix)
}

func TestDetect_UnknownEntities(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seedPrompt(t, store)

	d := NewDetector(store, nil, nil)
	_, err := d.Detect(ctx, "missing", "v2")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = d.Detect(ctx, "p1", "missing")
	var nf *storage.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "version", nf.Kind)
}

func TestMarkFixed(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	alert := &types.RegressionAlert{
		ID:         "a1",
		PromptID:   "p1",
		VersionID:  "v2",
		DetectedAt: time.Now().UTC(),
		Severity:   types.SeverityHigh,
	}
	require.NoError(t, store.SaveAlert(ctx, alert))

	fixed, err := MarkFixed(ctx, store, "a1", "v3")
	require.NoError(t, err)
	assert.True(t, fixed.Fixed)
	assert.NotNil(t, fixed.FixedAt)
	assert.Equal(t, "v3", fixed.FixedVersionID)

	// One-way: a second fix attempt fails.
	_, err = MarkFixed(ctx, store, "a1", "v4")
	assert.ErrorContains(t, err, "already fixed")

	_, err = MarkFixed(ctx, store, "missing", "v3")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = MarkFixed(ctx, store, "a1", "")
	assert.Error(t, err)
}
