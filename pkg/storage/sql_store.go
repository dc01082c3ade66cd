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
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/teradata-labs/promptbench/pkg/types"
)

// SQLStore implements Store on a SQL database. Entities are persisted
// as JSON documents with queryable key columns alongside, the same
// layout the eval store uses. Works against sqlite and postgres; the
// dialect only controls placeholder syntax.
type SQLStore struct {
	db      *sql.DB
	rebindQ bool // rewrite ? placeholders to $1..$n (postgres)
}

const schema = `
CREATE TABLE IF NOT EXISTS prompts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	updated_at_ns BIGINT NOT NULL,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS logs (
	id TEXT PRIMARY KEY,
	prompt_id TEXT NOT NULL,
	version_id TEXT NOT NULL,
	ts_ns BIGINT NOT NULL,
	status TEXT NOT NULL,
	doc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_logs_prompt_version ON logs(prompt_id, version_id);
CREATE INDEX IF NOT EXISTS idx_logs_ts ON logs(ts_ns);

CREATE TABLE IF NOT EXISTS ab_tests (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	status TEXT NOT NULL,
	doc TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS regression_alerts (
	id TEXT PRIMARY KEY,
	prompt_id TEXT NOT NULL,
	version_id TEXT NOT NULL,
	previous_version_id TEXT NOT NULL DEFAULT '',
	detected_at_ns BIGINT NOT NULL,
	fixed BOOLEAN NOT NULL,
	doc TEXT NOT NULL,
	UNIQUE (prompt_id, version_id, previous_version_id)
);

CREATE TABLE IF NOT EXISTS eval_runs (
	id TEXT PRIMARY KEY,
	prompt_id TEXT NOT NULL,
	prompt_version_id TEXT NOT NULL,
	date_ns BIGINT NOT NULL,
	status TEXT NOT NULL,
	doc TEXT NOT NULL
);
`

func newSQLStore(db *sql.DB, rebind bool) (*SQLStore, error) {
	s := &SQLStore{db: db, rebindQ: rebind}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// q rewrites ? placeholders for the postgres dialect.
func (s *SQLStore) q(query string) string {
	if !s.rebindQ {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) GetPrompts(ctx context.Context) ([]*types.Prompt, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT doc FROM prompts ORDER BY updated_at_ns DESC`))
	if err != nil {
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	var out []*types.Prompt
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		var p types.Prompt
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prompt: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetPromptByID(ctx context.Context, id string) (*types.Prompt, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT doc FROM prompts WHERE id = ?`), id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "prompt", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query prompt: %w", err)
	}
	var p types.Prompt
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompt: %w", err)
	}
	return &p, nil
}

func (s *SQLStore) SavePrompt(ctx context.Context, p *types.Prompt) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal prompt: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO prompts (id, name, updated_at_ns, doc) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, updated_at_ns = excluded.updated_at_ns, doc = excluded.doc`),
		p.ID, p.Name, p.UpdatedAt.UnixNano(), string(doc))
	if err != nil {
		return fmt.Errorf("failed to save prompt: %w", err)
	}
	return nil
}

func (s *SQLStore) GetLogs(ctx context.Context) ([]*types.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT doc FROM logs ORDER BY ts_ns DESC LIMIT ?`), MaxLogs)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var out []*types.LogEntry
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		var entry types.LogEntry
		if err := json.Unmarshal([]byte(doc), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal log: %w", err)
		}
		out = append(out, &entry)
	}
	return out, rows.Err()
}

func (s *SQLStore) AddLog(ctx context.Context, entry *types.LogEntry) error {
	doc, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO logs (id, prompt_id, version_id, ts_ns, status, doc) VALUES (?, ?, ?, ?, ?, ?)`),
		entry.ID, entry.PromptID, entry.VersionID, entry.Timestamp.UnixNano(), string(entry.Status), string(doc))
	if err != nil {
		return fmt.Errorf("failed to insert log: %w", err)
	}

	// Enforce the retention cap by dropping the oldest overflow rows.
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM logs`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count logs: %w", err)
	}
	if count > MaxLogs {
		_, err = s.db.ExecContext(ctx, s.q(`
			DELETE FROM logs WHERE id IN (SELECT id FROM logs ORDER BY ts_ns ASC LIMIT ?)`),
			count-MaxLogs)
		if err != nil {
			return fmt.Errorf("failed to trim logs: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) GetABTests(ctx context.Context) ([]*types.ABTest, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT doc FROM ab_tests ORDER BY id`))
	if err != nil {
		return nil, fmt.Errorf("failed to query ab tests: %w", err)
	}
	defer rows.Close()

	var out []*types.ABTest
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan ab test: %w", err)
		}
		var t types.ABTest
		if err := json.Unmarshal([]byte(doc), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ab test: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetABTestByID(ctx context.Context, id string) (*types.ABTest, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT doc FROM ab_tests WHERE id = ?`), id).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "ab test", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ab test: %w", err)
	}
	var t types.ABTest
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ab test: %w", err)
	}
	return &t, nil
}

func (s *SQLStore) SaveABTest(ctx context.Context, test *types.ABTest) error {
	doc, err := json.Marshal(test)
	if err != nil {
		return fmt.Errorf("failed to marshal ab test: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO ab_tests (id, name, status, doc) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, status = excluded.status, doc = excluded.doc`),
		test.ID, test.Name, string(test.Status), string(doc))
	if err != nil {
		return fmt.Errorf("failed to save ab test: %w", err)
	}
	return nil
}

func (s *SQLStore) GetAlerts(ctx context.Context) ([]*types.RegressionAlert, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT doc FROM regression_alerts ORDER BY detected_at_ns DESC`))
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var out []*types.RegressionAlert
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		var a types.RegressionAlert
		if err := json.Unmarshal([]byte(doc), &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alert: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveAlert(ctx context.Context, alert *types.RegressionAlert) error {
	doc, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO regression_alerts (id, prompt_id, version_id, previous_version_id, detected_at_ns, fixed, doc)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (prompt_id, version_id, previous_version_id)
		DO UPDATE SET id = excluded.id, detected_at_ns = excluded.detected_at_ns, fixed = excluded.fixed, doc = excluded.doc`),
		alert.ID, alert.PromptID, alert.VersionID, alert.PreviousVersionID,
		alert.DetectedAt.UnixNano(), alert.Fixed, string(doc))
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}

func (s *SQLStore) GetEvalRuns(ctx context.Context) ([]*types.EvalRun, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT doc FROM eval_runs ORDER BY date_ns DESC`))
	if err != nil {
		return nil, fmt.Errorf("failed to query eval runs: %w", err)
	}
	defer rows.Close()

	var out []*types.EvalRun
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan eval run: %w", err)
		}
		var r types.EvalRun
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal eval run: %w", err)
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func (s *SQLStore) SaveEvalRun(ctx context.Context, run *types.EvalRun) error {
	doc, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal eval run: %w", err)
	}
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO eval_runs (id, prompt_id, prompt_version_id, date_ns, status, doc) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET date_ns = excluded.date_ns, status = excluded.status, doc = excluded.doc`),
		run.ID, run.PromptID, run.PromptVersionID, run.Date.UnixNano(), string(run.Status), string(doc))
	if err != nil {
		return fmt.Errorf("failed to save eval run: %w", err)
	}
	return nil
}
