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
// Package prompts manages the prompt registry: creating prompts,
// appending versions, and the promote operation that keeps at most one
// production version per prompt.
package prompts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teradata-labs/promptbench/internal/log"
	"github.com/teradata-labs/promptbench/pkg/storage"
	"github.com/teradata-labs/promptbench/pkg/types"
)

// Registry performs prompt and version operations over an injected store.
type Registry struct {
	store storage.Store
}

// NewRegistry creates a registry backed by store.
func NewRegistry(store storage.Store) *Registry {
	return &Registry{store: store}
}

// Create registers a new prompt with no versions.
func (r *Registry) Create(ctx context.Context, name, description string, tags []string) (*types.Prompt, error) {
	if name == "" {
		return nil, fmt.Errorf("prompt name is required")
	}
	p := &types.Prompt{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Tags:        tags,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := r.store.SavePrompt(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save prompt: %w", err)
	}
	return p, nil
}

// VersionInput carries the fields for a new prompt version.
// Variables defaults to the placeholders extracted from Template.
type VersionInput struct {
	Template      string
	Variables     []string
	Model         string
	Temperature   float64
	CreatedBy     string
	CommitMessage string
}

// CreateVersion appends a new draft version to the prompt. Version
// numbers are monotonic and 1-based; the new version is prepended to
// the history and becomes the active version.
func (r *Registry) CreateVersion(ctx context.Context, promptID string, in VersionInput) (*types.PromptVersion, error) {
	p, err := r.store.GetPromptByID(ctx, promptID)
	if err != nil {
		return nil, err
	}

	next := 1
	for _, v := range p.Versions {
		if v.Version >= next {
			next = v.Version + 1
		}
	}

	vars := in.Variables
	if vars == nil {
		vars = ExtractVariables(in.Template)
	}
	commitMsg := in.CommitMessage
	if commitMsg == "" {
		commitMsg = fmt.Sprintf("Version %d", next)
	}

	version := &types.PromptVersion{
		ID:            uuid.New().String(),
		Version:       next,
		Template:      in.Template,
		Variables:     vars,
		Model:         in.Model,
		Temperature:   in.Temperature,
		CreatedAt:     time.Now().UTC(),
		CreatedBy:     in.CreatedBy,
		CommitMessage: commitMsg,
		Status:        types.VersionDraft,
	}

	p.Versions = append([]*types.PromptVersion{version}, p.Versions...)
	p.ActiveVersionID = version.ID
	p.UpdatedAt = time.Now().UTC()

	if err := r.store.SavePrompt(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save prompt: %w", err)
	}

	log.Debug("created prompt version",
		zap.String("prompt_id", promptID),
		zap.String("version_id", version.ID),
		zap.Int("version", next))
	return version, nil
}

// Promote moves a version to production. Any prior production version
// of the same prompt is demoted to archived, preserving the at-most-one
// production invariant.
func (r *Registry) Promote(ctx context.Context, promptID, versionID string) error {
	p, err := r.store.GetPromptByID(ctx, promptID)
	if err != nil {
		return err
	}
	target := p.VersionByID(versionID)
	if target == nil {
		return &storage.NotFoundError{Kind: "version", ID: versionID}
	}

	for _, v := range p.Versions {
		if v.ID != versionID && v.Status == types.VersionProduction {
			v.Status = types.VersionArchived
		}
	}
	target.Status = types.VersionProduction
	p.ActiveVersionID = versionID
	p.UpdatedAt = time.Now().UTC()

	if err := r.store.SavePrompt(ctx, p); err != nil {
		return fmt.Errorf("failed to save prompt: %w", err)
	}

	log.Info("promoted version to production",
		zap.String("prompt_id", promptID),
		zap.String("version_id", versionID))
	return nil
}

// UpdateVersionStatus sets a version's status directly. Use Promote for
// the production transition; this is for draft/staging/archived moves.
func (r *Registry) UpdateVersionStatus(ctx context.Context, promptID, versionID string, status types.VersionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid version status %q", status)
	}
	if status == types.VersionProduction {
		return r.Promote(ctx, promptID, versionID)
	}

	p, err := r.store.GetPromptByID(ctx, promptID)
	if err != nil {
		return err
	}
	target := p.VersionByID(versionID)
	if target == nil {
		return &storage.NotFoundError{Kind: "version", ID: versionID}
	}

	target.Status = status
	p.UpdatedAt = time.Now().UTC()
	if err := r.store.SavePrompt(ctx, p); err != nil {
		return fmt.Errorf("failed to save prompt: %w", err)
	}
	return nil
}
