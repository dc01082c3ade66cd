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
// Package storage persists workbench entities. The Store interface is
// injected into every component so the core stays testable with the
// in-memory implementation and portable across backends (sqlite,
// postgres).
//
// The store offers read-after-write consistency for a single logical
// client but no transactional guarantee across the read-modify-write
// sequences used by SavePrompt; concurrent writers can overwrite each
// other's version lists. Acceptable for single-operator use.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/teradata-labs/promptbench/pkg/types"
)

// ErrNotFound is returned when a referenced entity is absent.
// Data-integrity errors like this always propagate to the caller.
var ErrNotFound = errors.New("not found")

// NotFoundError wraps ErrNotFound with the entity kind and ID.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// MaxLogs caps the retained execution log, newest entries win.
const MaxLogs = 1000

// Store is the persistence collaborator for the workbench core.
//
// Ordering contracts: GetLogs and GetAlerts return newest-first;
// consumers slice the head for "most recent N". Prompt version lists
// are stored as part of the Prompt aggregate, newest-first.
type Store interface {
	// Prompts
	GetPrompts(ctx context.Context) ([]*types.Prompt, error)
	GetPromptByID(ctx context.Context, id string) (*types.Prompt, error)
	SavePrompt(ctx context.Context, p *types.Prompt) error

	// Execution logs
	GetLogs(ctx context.Context) ([]*types.LogEntry, error)
	AddLog(ctx context.Context, entry *types.LogEntry) error

	// A/B tests
	GetABTests(ctx context.Context) ([]*types.ABTest, error)
	GetABTestByID(ctx context.Context, id string) (*types.ABTest, error)
	SaveABTest(ctx context.Context, test *types.ABTest) error

	// Regression alerts. SaveAlert upserts on the
	// (prompt, version, previous version) key so repeated detector runs
	// against a stagnant version pair do not pile up duplicates.
	GetAlerts(ctx context.Context) ([]*types.RegressionAlert, error)
	SaveAlert(ctx context.Context, alert *types.RegressionAlert) error

	// Eval runs
	GetEvalRuns(ctx context.Context) ([]*types.EvalRun, error)
	SaveEvalRun(ctx context.Context, run *types.EvalRun) error

	Close() error
}

// alertKey is the dedup identity of a regression alert.
func alertKey(a *types.RegressionAlert) string {
	return a.PromptID + "\x00" + a.VersionID + "\x00" + a.PreviousVersionID
}
