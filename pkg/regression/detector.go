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

// Package regression compares a prompt version's recent executions
// against the production baseline and raises alerts when quality drops
// or errors climb.
package regression

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teradata-labs/promptbench/internal/log"
	"github.com/teradata-labs/promptbench/pkg/evals"
	"github.com/teradata-labs/promptbench/pkg/storage"
	"github.com/teradata-labs/promptbench/pkg/types"
	"go.uber.org/zap"
)

const (
	// sampleWindow is how many recent logs per side feed the comparison.
	sampleWindow = 10

	// minSamples is the minimum logs each side needs for a verdict.
	minSamples = 3

	// Trigger and severity thresholds, in quality points and error-rate
	// percentage points. All comparisons are strict.
	qualityTrigger  = 10.0
	errorTrigger    = 15.0
	qualityHigh     = 15.0
	errorHigh       = 20.0
	qualityCritical = 20.0
	errorCritical   = 30.0
)

// FixSuggester produces a remediation suggestion for a detected
// regression. Suggestions are best-effort; failures are logged, not
// propagated.
type FixSuggester interface {
	SuggestFix(ctx context.Context, req *evals.FixRequest) (string, error)
}

// Options tunes detection. Quality defaults fill in for logs that
// carry no quality score.
type Options struct {
	// CurrentQualityDefault is assumed for unscored logs of the version
	// under inspection. Defaults to 70.
	CurrentQualityDefault float64
	// BaselineQualityDefault is assumed for unscored logs of the
	// baseline version. Defaults to 80.
	BaselineQualityDefault float64
}

func (o *Options) withDefaults() Options {
	out := Options{CurrentQualityDefault: 70, BaselineQualityDefault: 80}
	if o == nil {
		return out
	}
	if o.CurrentQualityDefault > 0 {
		out.CurrentQualityDefault = o.CurrentQualityDefault
	}
	if o.BaselineQualityDefault > 0 {
		out.BaselineQualityDefault = o.BaselineQualityDefault
	}
	return out
}

// Detector detects regressions against the production baseline.
type Detector struct {
	store     storage.Store
	suggester FixSuggester
	opts      Options
}

// NewDetector creates a detector. suggester may be nil to skip fix
// suggestions; opts may be nil for defaults.
func NewDetector(store storage.Store, suggester FixSuggester, opts *Options) *Detector {
	return &Detector{store: store, suggester: suggester, opts: opts.withDefaults()}
}

// Detect compares the version's recent executions with the most recent
// production version (excluding itself) and returns a persisted alert
// when quality dropped by more than 10 points or the error rate rose by
// more than 15 percentage points. Returns nil when there is no baseline,
// not enough data on either side, or no regression.
func (d *Detector) Detect(ctx context.Context, promptID, versionID string) (*types.RegressionAlert, error) {
	prompt, err := d.store.GetPromptByID(ctx, promptID)
	if err != nil {
		return nil, err
	}
	current := prompt.VersionByID(versionID)
	if current == nil {
		return nil, &storage.NotFoundError{Kind: "version", ID: versionID}
	}

	baseline := baselineVersion(prompt, versionID)
	if baseline == nil {
		return nil, nil
	}

	allLogs, err := d.store.GetLogs(ctx)
	if err != nil {
		return nil, err
	}
	// Logs arrive newest-first, so taking the head of each filtered
	// stream yields the most recent window.
	currentLogs := recentVersionLogs(allLogs, promptID, versionID)
	baselineLogs := recentVersionLogs(allLogs, promptID, baseline.ID)
	if len(currentLogs) < minSamples || len(baselineLogs) < minSamples {
		return nil, nil
	}

	currentQuality := avgQuality(currentLogs, d.opts.CurrentQualityDefault)
	baselineQuality := avgQuality(baselineLogs, d.opts.BaselineQualityDefault)
	qualityDrop := baselineQuality - currentQuality

	errorRateIncrease := errorRate(currentLogs) - errorRate(baselineLogs)

	if qualityDrop <= qualityTrigger && errorRateIncrease <= errorTrigger {
		return nil, nil
	}

	alert := &types.RegressionAlert{
		ID:                uuid.New().String(),
		PromptID:          promptID,
		VersionID:         versionID,
		PreviousVersionID: baseline.ID,
		DetectedAt:        time.Now().UTC(),
		Severity:          classify(qualityDrop, errorRateIncrease),
		Issue:             issueText(qualityDrop, errorRateIncrease),
		QualityDrop:       qualityDrop,
		AffectedLogs:      logIDs(currentLogs),
	}

	if d.suggester != nil {
		fix, err := d.suggester.SuggestFix(ctx, &evals.FixRequest{
			PreviousVersion:   baseline,
			CurrentVersion:    current,
			QualityDrop:       qualityDrop,
			ErrorRateIncrease: errorRateIncrease,
			CurrentLogs:       currentLogs,
		})
		if err != nil {
			log.Warn("fix suggestion unavailable",
				zap.String("prompt_id", promptID),
				zap.Error(err))
		} else {
			alert.SuggestedFix = fix
		}
	}

	if err := d.store.SaveAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to save regression alert: %w", err)
	}
	log.Warn("regression detected",
		zap.String("prompt_id", promptID),
		zap.String("version_id", versionID),
		zap.String("severity", string(alert.Severity)),
		zap.Float64("quality_drop", qualityDrop),
		zap.Float64("error_rate_increase", errorRateIncrease))
	return alert, nil
}

// baselineVersion picks the most recently created production version
// other than the one under inspection.
func baselineVersion(prompt *types.Prompt, excludeID string) *types.PromptVersion {
	var best *types.PromptVersion
	for _, v := range prompt.Versions {
		if v.Status != types.VersionProduction || v.ID == excludeID {
			continue
		}
		if best == nil || v.CreatedAt.After(best.CreatedAt) {
			best = v
		}
	}
	return best
}

func recentVersionLogs(logs []*types.LogEntry, promptID, versionID string) []*types.LogEntry {
	out := make([]*types.LogEntry, 0, sampleWindow)
	for _, l := range logs {
		if l.PromptID != promptID || l.VersionID != versionID {
			continue
		}
		out = append(out, l)
		if len(out) == sampleWindow {
			break
		}
	}
	return out
}

func avgQuality(logs []*types.LogEntry, fallback float64) float64 {
	var sum float64
	for _, l := range logs {
		if l.QualityScore != nil {
			sum += *l.QualityScore
		} else {
			sum += fallback
		}
	}
	return sum / float64(len(logs))
}

func errorRate(logs []*types.LogEntry) float64 {
	errors := 0
	for _, l := range logs {
		if l.Status == types.ExecError {
			errors++
		}
	}
	return float64(errors) / float64(len(logs)) * 100
}

func classify(qualityDrop, errorRateIncrease float64) types.Severity {
	switch {
	case qualityDrop > qualityCritical || errorRateIncrease > errorCritical:
		return types.SeverityCritical
	case qualityDrop > qualityHigh || errorRateIncrease > errorHigh:
		return types.SeverityHigh
	default:
		return types.SeverityMedium
	}
}

func issueText(qualityDrop, errorRateIncrease float64) string {
	if qualityDrop > qualityTrigger {
		return fmt.Sprintf("Quality dropped by %.1f%% compared to previous version", qualityDrop)
	}
	return fmt.Sprintf("Error rate increased by %.1f%% compared to previous version", errorRateIncrease)
}

func logIDs(logs []*types.LogEntry) []string {
	ids := make([]string, len(logs))
	for i, l := range logs {
		ids[i] = l.ID
	}
	return ids
}
