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
	"time"

	"github.com/teradata-labs/promptbench/internal/log"
	"github.com/teradata-labs/promptbench/pkg/storage"
	"github.com/teradata-labs/promptbench/pkg/types"
	"go.uber.org/zap"
)

// ListAlerts returns all regression alerts, newest first.
func ListAlerts(ctx context.Context, store storage.Store) ([]*types.RegressionAlert, error) {
	return store.GetAlerts(ctx)
}

// MarkFixed records that an alert was resolved by fixedVersionID.
// The transition is one-way; marking an already-fixed alert fails.
func MarkFixed(ctx context.Context, store storage.Store, alertID, fixedVersionID string) (*types.RegressionAlert, error) {
	if fixedVersionID == "" {
		return nil, fmt.Errorf("fixed version ID is required")
	}

	alerts, err := store.GetAlerts(ctx)
	if err != nil {
		return nil, err
	}
	var alert *types.RegressionAlert
	for _, a := range alerts {
		if a.ID == alertID {
			alert = a
			break
		}
	}
	if alert == nil {
		return nil, &storage.NotFoundError{Kind: "regression alert", ID: alertID}
	}
	if alert.Fixed {
		return nil, fmt.Errorf("alert %s is already fixed", alertID)
	}

	now := time.Now().UTC()
	alert.Fixed = true
	alert.FixedAt = &now
	alert.FixedVersionID = fixedVersionID
	if err := store.SaveAlert(ctx, alert); err != nil {
		return nil, err
	}
	log.Info("regression alert fixed",
		zap.String("alert_id", alertID),
		zap.String("fixed_version_id", fixedVersionID))
	return alert, nil
}
