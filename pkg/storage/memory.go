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
package storage

import (
	"context"
	"sync"

	"github.com/teradata-labs/promptbench/pkg/types"
)

// MemoryStore is an in-memory Store used in tests and ephemeral runs.
type MemoryStore struct {
	mu       sync.RWMutex
	prompts  []*types.Prompt
	logs     []*types.LogEntry // newest first
	tests    []*types.ABTest
	alerts   []*types.RegressionAlert // newest first
	evalRuns []*types.EvalRun
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) GetPrompts(ctx context.Context) ([]*types.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Prompt, len(s.prompts))
	copy(out, s.prompts)
	return out, nil
}

func (s *MemoryStore) GetPromptByID(ctx context.Context, id string) (*types.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.prompts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, &NotFoundError{Kind: "prompt", ID: id}
}

func (s *MemoryStore) SavePrompt(ctx context.Context, p *types.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.prompts {
		if existing.ID == p.ID {
			s.prompts[i] = p
			return nil
		}
	}
	s.prompts = append(s.prompts, p)
	return nil
}

func (s *MemoryStore) GetLogs(ctx context.Context) ([]*types.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.LogEntry, len(s.logs))
	copy(out, s.logs)
	return out, nil
}

func (s *MemoryStore) AddLog(ctx context.Context, entry *types.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append([]*types.LogEntry{entry}, s.logs...)
	if len(s.logs) > MaxLogs {
		s.logs = s.logs[:MaxLogs]
	}
	return nil
}

func (s *MemoryStore) GetABTests(ctx context.Context) ([]*types.ABTest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.ABTest, len(s.tests))
	copy(out, s.tests)
	return out, nil
}

func (s *MemoryStore) GetABTestByID(ctx context.Context, id string) (*types.ABTest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tests {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, &NotFoundError{Kind: "ab test", ID: id}
}

func (s *MemoryStore) SaveABTest(ctx context.Context, test *types.ABTest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.tests {
		if existing.ID == test.ID {
			s.tests[i] = test
			return nil
		}
	}
	s.tests = append(s.tests, test)
	return nil
}

func (s *MemoryStore) GetAlerts(ctx context.Context) ([]*types.RegressionAlert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.RegressionAlert, len(s.alerts))
	copy(out, s.alerts)
	return out, nil
}

func (s *MemoryStore) SaveAlert(ctx context.Context, alert *types.RegressionAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := alertKey(alert)
	for i, existing := range s.alerts {
		if existing.ID == alert.ID || alertKey(existing) == key {
			s.alerts[i] = alert
			return nil
		}
	}
	s.alerts = append([]*types.RegressionAlert{alert}, s.alerts...)
	return nil
}

func (s *MemoryStore) GetEvalRuns(ctx context.Context) ([]*types.EvalRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.EvalRun, len(s.evalRuns))
	copy(out, s.evalRuns)
	return out, nil
}

func (s *MemoryStore) SaveEvalRun(ctx context.Context, run *types.EvalRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.evalRuns {
		if existing.ID == run.ID {
			s.evalRuns[i] = run
			return nil
		}
	}
	s.evalRuns = append([]*types.EvalRun{run}, s.evalRuns...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
