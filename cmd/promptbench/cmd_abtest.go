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
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/promptbench/pkg/abtest"
	"github.com/teradata-labs/promptbench/pkg/storage"
	"github.com/teradata-labs/promptbench/pkg/types"
)

var abtestCmd = &cobra.Command{
	Use:   "abtest",
	Short: "Run A/B tests between prompt versions",
}

func newABTestManager(store storage.Store) *abtest.Manager {
	return abtest.NewManager(store, abtest.NewSelector(0))
}

// parseVariant parses prompt-id:version-id:weight.
func parseVariant(s string) (types.Variant, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return types.Variant{}, fmt.Errorf("invalid variant %q, expected prompt-id:version-id:weight", s)
	}
	weight, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return types.Variant{}, fmt.Errorf("invalid weight in %q: %w", s, err)
	}
	return types.Variant{PromptID: parts[0], VersionID: parts[1], Weight: weight}, nil
}

var abtestCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a draft A/B test",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		variantFlags, _ := cmd.Flags().GetStringArray("variant")

		variants := make([]types.Variant, 0, len(variantFlags))
		for _, vf := range variantFlags {
			v, err := parseVariant(vf)
			if err != nil {
				return err
			}
			variants = append(variants, v)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		test, err := newABTestManager(store).Create(cmd.Context(), args[0], description, variants)
		if err != nil {
			return err
		}
		fmt.Printf("Created test %s (%s) with %d variants\n", test.Name, test.ID, len(test.Variants))
		return nil
	},
}

var abtestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List A/B tests",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		tests, err := store.GetABTests(cmd.Context())
		if err != nil {
			return err
		}
		if len(tests) == 0 {
			fmt.Println("No A/B tests yet.")
			return nil
		}
		for _, test := range tests {
			winner := ""
			if test.WinnerVariantID != "" {
				winner = fmt.Sprintf("  winner: variant %s", test.WinnerVariantID)
			}
			fmt.Printf("%s  %s  [%s]  %d variants%s\n",
				test.ID, test.Name, test.Status, len(test.Variants), winner)
		}
		return nil
	},
}

func transitionCommand(use, short string, run func(*abtest.Manager, *cobra.Command, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <test-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			return run(newABTestManager(store), cmd, args[0])
		},
	}
}

var abtestStartCmd = transitionCommand("start", "Start a draft test",
	func(mgr *abtest.Manager, cmd *cobra.Command, id string) error {
		test, err := mgr.Start(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("Test %s is running\n", test.ID)
		return nil
	})

var abtestPauseCmd = transitionCommand("pause", "Pause a running test",
	func(mgr *abtest.Manager, cmd *cobra.Command, id string) error {
		if _, err := mgr.Pause(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Println("Test paused")
		return nil
	})

var abtestResumeCmd = transitionCommand("resume", "Resume a paused test",
	func(mgr *abtest.Manager, cmd *cobra.Command, id string) error {
		if _, err := mgr.Resume(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Println("Test resumed")
		return nil
	})

var abtestCompleteCmd = transitionCommand("complete", "Complete a test and record the winner",
	func(mgr *abtest.Manager, cmd *cobra.Command, id string) error {
		test, result, err := mgr.Complete(cmd.Context(), id)
		if err != nil {
			return err
		}
		printWinner(test, result)
		return nil
	})

var abtestRouteCmd = transitionCommand("route", "Assign a variant for one request",
	func(mgr *abtest.Manager, cmd *cobra.Command, id string) error {
		a, err := mgr.Route(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("variant %d: prompt %s version %s\n", a.Index, a.Variant.PromptID, a.Variant.VersionID)
		return nil
	})

var abtestWinnerCmd = transitionCommand("winner", "Show the current winner without completing the test",
	func(mgr *abtest.Manager, cmd *cobra.Command, id string) error {
		result, err := mgr.Winner(cmd.Context(), id)
		if err != nil {
			return err
		}
		printWinner(nil, result)
		return nil
	})

func printWinner(test *types.ABTest, result abtest.Result) {
	switch result.Outcome {
	case abtest.OutcomeInsufficientData:
		fmt.Printf("Not enough data: every variant needs at least %d requests\n", abtest.MinSampleSize)
	case abtest.OutcomeNoWinner:
		fmt.Println("No winner: no eligible variant scored above zero")
	case abtest.OutcomeWinner:
		fmt.Printf("Winner: variant %d (score %.1f)\n", result.Index, result.Score)
	}
	for i, s := range result.Summaries {
		fmt.Printf("  variant %d: %d requests, %.1f%% success, %dms avg, %.1f%% errors\n",
			i, s.TotalRequests, s.SuccessRate, s.AvgLatencyMs, s.ErrorRate)
	}
	if test != nil && test.EndDate != nil {
		fmt.Printf("Completed at %s\n", test.EndDate.Format("2006-01-02 15:04"))
	}
}

func init() {
	abtestCreateCmd.Flags().String("description", "", "test description")
	abtestCreateCmd.Flags().StringArray("variant", nil, "variant as prompt-id:version-id:weight (repeatable)")

	abtestCmd.AddCommand(abtestCreateCmd)
	abtestCmd.AddCommand(abtestListCmd)
	abtestCmd.AddCommand(abtestStartCmd)
	abtestCmd.AddCommand(abtestPauseCmd)
	abtestCmd.AddCommand(abtestResumeCmd)
	abtestCmd.AddCommand(abtestCompleteCmd)
	abtestCmd.AddCommand(abtestRouteCmd)
	abtestCmd.AddCommand(abtestWinnerCmd)
	rootCmd.AddCommand(abtestCmd)
}
