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
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/promptbench/pkg/regression"
)

var regressionCmd = &cobra.Command{
	Use:   "regression",
	Short: "Detect and manage prompt quality regressions",
}

var regressionCheckCmd = &cobra.Command{
	Use:   "check <prompt-id> <version-id>",
	Short: "Check a version against the production baseline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		withFix, _ := cmd.Flags().GetBool("suggest-fix")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		var suggester regression.FixSuggester
		if withFix {
			provider, err := newProvider()
			if err != nil {
				return err
			}
			judge, err := newJudge(provider)
			if err != nil {
				return err
			}
			suggester = judge
		}

		detector := regression.NewDetector(store, suggester, nil)
		alert, err := detector.Detect(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if alert == nil {
			fmt.Println("No regression detected")
			return nil
		}
		fmt.Printf("REGRESSION [%s]: %s\n", alert.Severity, alert.Issue)
		fmt.Printf("  baseline version: %s\n", alert.PreviousVersionID)
		fmt.Printf("  affected logs: %d\n", len(alert.AffectedLogs))
		if alert.SuggestedFix != "" {
			fmt.Printf("\nSuggested fix:\n%s\n", alert.SuggestedFix)
		}
		return nil
	},
}

var regressionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List regression alerts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		alerts, err := regression.ListAlerts(cmd.Context(), store)
		if err != nil {
			return err
		}
		if len(alerts) == 0 {
			fmt.Println("No regression alerts.")
			return nil
		}
		for _, a := range alerts {
			state := "open"
			if a.Fixed {
				state = "fixed by " + a.FixedVersionID
			}
			fmt.Printf("%s  [%s]  %s  %s  (%s)\n",
				a.DetectedAt.Format("2006-01-02 15:04"), a.Severity, a.ID, a.Issue, state)
		}
		return nil
	},
}

var regressionFixCmd = &cobra.Command{
	Use:   "fix <alert-id> <fixed-version-id>",
	Short: "Mark an alert as fixed by a version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		alert, err := regression.MarkFixed(cmd.Context(), store, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Alert %s marked fixed by version %s\n", alert.ID, alert.FixedVersionID)
		return nil
	},
}

func init() {
	regressionCheckCmd.Flags().Bool("suggest-fix", false, "ask the judge model for a fix suggestion")

	regressionCmd.AddCommand(regressionCheckCmd)
	regressionCmd.AddCommand(regressionListCmd)
	regressionCmd.AddCommand(regressionFixCmd)
	rootCmd.AddCommand(regressionCmd)
}
