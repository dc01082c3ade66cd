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
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/teradata-labs/promptbench/internal/log"
	"github.com/teradata-labs/promptbench/pkg/metrics"
	"github.com/teradata-labs/promptbench/pkg/storage"
	"github.com/teradata-labs/promptbench/pkg/types"
	"go.uber.org/zap"
)

// Manager drives the A/B test lifecycle over the store.
type Manager struct {
	store    storage.Store
	selector *Selector
}

// NewManager creates a manager using the given selector for routing.
func NewManager(store storage.Store, selector *Selector) *Manager {
	return &Manager{store: store, selector: selector}
}

// Create registers a new draft test. Variants may be added before
// Start; starting requires at least two.
func (m *Manager) Create(ctx context.Context, name, description string, variants []types.Variant) (*types.ABTest, error) {
	if name == "" {
		return nil, fmt.Errorf("test name is required")
	}
	for i, v := range variants {
		if v.PromptID == "" || v.VersionID == "" {
			return nil, fmt.Errorf("variant %d is missing prompt or version ID", i)
		}
		if v.Weight < 0 {
			return nil, fmt.Errorf("variant %d has negative weight", i)
		}
	}

	test := &types.ABTest{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Variants:    variants,
		Status:      types.TestDraft,
	}
	if err := m.store.SaveABTest(ctx, test); err != nil {
		return nil, err
	}
	log.Info("ab test created", zap.String("test_id", test.ID), zap.String("name", name))
	return test, nil
}

// Start moves a draft test to running and stamps the start date.
func (m *Manager) Start(ctx context.Context, testID string) (*types.ABTest, error) {
	test, err := m.store.GetABTestByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if len(test.Variants) < 2 {
		return nil, fmt.Errorf("test %s needs at least 2 variants to start, has %d", testID, len(test.Variants))
	}
	if !test.Status.CanTransition(types.TestRunning) {
		return nil, fmt.Errorf("test %s cannot start from status %q", testID, test.Status)
	}
	test.Status = types.TestRunning
	test.StartDate = time.Now().UTC()
	if err := m.store.SaveABTest(ctx, test); err != nil {
		return nil, err
	}
	log.Info("ab test started", zap.String("test_id", testID))
	return test, nil
}

// Pause suspends a running test. Routing resumes with Resume.
func (m *Manager) Pause(ctx context.Context, testID string) (*types.ABTest, error) {
	return m.transition(ctx, testID, types.TestPaused)
}

// Resume returns a paused test to running.
func (m *Manager) Resume(ctx context.Context, testID string) (*types.ABTest, error) {
	return m.transition(ctx, testID, types.TestRunning)
}

func (m *Manager) transition(ctx context.Context, testID string, target types.TestStatus) (*types.ABTest, error) {
	test, err := m.store.GetABTestByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !test.Status.CanTransition(target) {
		return nil, fmt.Errorf("test %s cannot move from %q to %q", testID, test.Status, target)
	}
	test.Status = target
	if err := m.store.SaveABTest(ctx, test); err != nil {
		return nil, err
	}
	log.Info("ab test status changed",
		zap.String("test_id", testID),
		zap.String("status", string(target)))
	return test, nil
}

// Route assigns a variant for one request on a running test.
func (m *Manager) Route(ctx context.Context, testID string) (Assignment, error) {
	test, err := m.store.GetABTestByID(ctx, testID)
	if err != nil {
		return Assignment{}, err
	}
	if test.Status != types.TestRunning {
		return Assignment{}, fmt.Errorf("test %s is not running (status %q)", testID, test.Status)
	}
	return m.selector.Select(test)
}

// Complete ends the test, stamps the end date, refreshes the cached
// metrics, and records the winning variant index when one exists.
func (m *Manager) Complete(ctx context.Context, testID string) (*types.ABTest, Result, error) {
	test, err := m.store.GetABTestByID(ctx, testID)
	if err != nil {
		return nil, Result{}, err
	}
	if !test.Status.CanTransition(types.TestCompleted) {
		return nil, Result{}, fmt.Errorf("test %s cannot complete from status %q", testID, test.Status)
	}

	now := time.Now().UTC()
	test.Status = types.TestCompleted
	test.EndDate = &now

	logs, err := m.store.GetLogs(ctx)
	if err != nil {
		return nil, Result{}, err
	}

	result := DetermineWinner(test, logs)
	if result.Outcome == OutcomeWinner {
		test.WinnerVariantID = strconv.Itoa(result.Index)
	}
	test.Metrics = combinedMetrics(result.Summaries)

	if err := m.store.SaveABTest(ctx, test); err != nil {
		return nil, Result{}, err
	}
	log.Info("ab test completed",
		zap.String("test_id", testID),
		zap.String("outcome", string(result.Outcome)),
		zap.String("winner", test.WinnerVariantID))
	return test, result, nil
}

// Winner recomputes the winner for a test without changing its state.
func (m *Manager) Winner(ctx context.Context, testID string) (Result, error) {
	test, err := m.store.GetABTestByID(ctx, testID)
	if err != nil {
		return Result{}, err
	}
	logs, err := m.store.GetLogs(ctx)
	if err != nil {
		return Result{}, err
	}
	return DetermineWinner(test, logs), nil
}

// combinedMetrics folds per-variant summaries into the test-level
// cached metrics, request-weighted.
func combinedMetrics(summaries []metrics.Summary) types.TestMetrics {
	var out types.TestMetrics
	var latencySum, successSum, errorSum int
	var costSum float64
	for _, s := range summaries {
		out.TotalRequests += s.TotalRequests
		successSum += s.SuccessRequests
		errorSum += s.FailedRequests
		latencySum += int(s.AvgLatencyMs) * s.TotalRequests
		costSum += s.AvgCostUSD * float64(s.TotalRequests)
	}
	if out.TotalRequests == 0 {
		return out
	}
	total := float64(out.TotalRequests)
	out.SuccessRate = float64(successSum) / total * 100
	out.ErrorRate = float64(errorSum) / total * 100
	out.AvgLatencyMs = int64(latencySum / out.TotalRequests)
	out.AvgCostUSD = costSum / total
	return out
}
