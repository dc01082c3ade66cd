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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teradata-labs/promptbench/pkg/storage"
	"github.com/teradata-labs/promptbench/pkg/types"
)

func twoVariants() []types.Variant {
	return []types.Variant{
		{PromptID: "p1", VersionID: "v1", Weight: 50},
		{PromptID: "p1", VersionID: "v2", Weight: 50},
	}
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	mgr := NewManager(store, NewSelector(1))

	test, err := mgr.Create(ctx, "headline test", "compare tone", twoVariants())
	require.NoError(t, err)
	assert.Equal(t, types.TestDraft, test.Status)
	assert.True(t, test.StartDate.IsZero())

	test, err = mgr.Start(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TestRunning, test.Status)
	assert.False(t, test.StartDate.IsZero())

	test, err = mgr.Pause(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TestPaused, test.Status)

	test, err = mgr.Resume(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TestRunning, test.Status)

	test, result, err := mgr.Complete(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TestCompleted, test.Status)
	assert.NotNil(t, test.EndDate)
	assert.Equal(t, OutcomeInsufficientData, result.Outcome)
	assert.Empty(t, test.WinnerVariantID)

	// Completed is terminal.
	_, err = mgr.Resume(ctx, test.ID)
	assert.Error(t, err)
	_, _, err = mgr.Complete(ctx, test.ID)
	assert.Error(t, err)
}

func TestManager_StartRequiresTwoVariants(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(storage.NewMemoryStore(), NewSelector(1))

	test, err := mgr.Create(ctx, "solo", "", []types.Variant{
		{PromptID: "p1", VersionID: "v1", Weight: 100},
	})
	require.NoError(t, err)

	_, err = mgr.Start(ctx, test.ID)
	assert.ErrorContains(t, err, "at least 2 variants")
}

func TestManager_CreateValidation(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(storage.NewMemoryStore(), NewSelector(1))

	_, err := mgr.Create(ctx, "", "", twoVariants())
	assert.Error(t, err)

	_, err = mgr.Create(ctx, "x", "", []types.Variant{{PromptID: "p1", Weight: 50}})
	assert.Error(t, err)

	_, err = mgr.Create(ctx, "x", "", []types.Variant{
		{PromptID: "p1", VersionID: "v1", Weight: -5},
	})
	assert.Error(t, err)
}

func TestManager_RouteOnlyWhenRunning(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	mgr := NewManager(store, NewSelector(1))

	test, err := mgr.Create(ctx, "routing", "", twoVariants())
	require.NoError(t, err)

	_, err = mgr.Route(ctx, test.ID)
	assert.ErrorContains(t, err, "not running")

	_, err = mgr.Start(ctx, test.ID)
	require.NoError(t, err)

	a, err := mgr.Route(ctx, test.ID)
	require.NoError(t, err)
	assert.Contains(t, []int{0, 1}, a.Index)
	assert.Equal(t, "p1", a.Variant.PromptID)
}

func TestManager_CompleteRecordsWinner(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	mgr := NewManager(store, NewSelector(1))

	test, err := mgr.Create(ctx, "winner", "", twoVariants())
	require.NoError(t, err)
	test, err = mgr.Start(ctx, test.ID)
	require.NoError(t, err)

	// v2 outperforms v1 on every axis.
	for _, entry := range variantLogs("p1", "v1", 15, 6, 900, test.StartDate) {
		require.NoError(t, store.AddLog(ctx, entry))
	}
	for _, entry := range variantLogs("p1", "v2", 15, 0, 100, test.StartDate) {
		require.NoError(t, store.AddLog(ctx, entry))
	}

	test, result, err := mgr.Complete(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWinner, result.Outcome)
	assert.Equal(t, 1, result.Index)
	assert.Equal(t, "1", test.WinnerVariantID)
	assert.Equal(t, 30, test.Metrics.TotalRequests)
	assert.InDelta(t, 80.0, test.Metrics.SuccessRate, 1e-9)

	stored, err := store.GetABTestByID(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", stored.WinnerVariantID)
}

func TestManager_UnknownTest(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(storage.NewMemoryStore(), NewSelector(1))

	_, err := mgr.Start(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = mgr.Winner(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
