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
	"github.com/teradata-labs/promptbench/pkg/evals"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run evaluation datasets against prompt versions",
}

var evalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available eval datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		library, err := openLibrary()
		if err != nil {
			return err
		}
		defer library.Close()

		datasets := library.List()
		if len(datasets) == 0 {
			fmt.Println("No datasets found. Add YAML files to the dataset directory.")
			return nil
		}
		for _, ds := range datasets {
			fmt.Printf("%s  %s  (%d cases)\n", ds.ID, ds.Name, len(ds.TestCases))
		}
		return nil
	},
}

var evalRunCmd = &cobra.Command{
	Use:   "run <prompt-id> <version-id> <dataset-id>",
	Short: "Run a dataset against a prompt version with LLM-as-judge grading",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, _ := cmd.Flags().GetString("criteria")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		library, err := openLibrary()
		if err != nil {
			return err
		}
		defer library.Close()

		provider, err := newProvider()
		if err != nil {
			return err
		}
		judge, err := newJudge(provider)
		if err != nil {
			return err
		}

		runner := evals.NewRunner(store, provider, judge, library)
		run, err := runner.Run(cmd.Context(), args[0], args[1], args[2], criteria)
		if err != nil {
			return err
		}

		fmt.Printf("%s: %s (score %.0f/100, %d cases)\n", run.Name, run.Status, run.Score, run.SampleSize)
		for i, result := range run.Results {
			fmt.Printf("  case %d: %.0f  %s\n", i+1, result.Score, result.GradeReason)
			if result.ExpectedOutput != "" {
				fmt.Printf("          similarity %.2f\n", result.Similarity)
			}
		}
		return nil
	},
}

var evalHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List past eval runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.GetEvalRuns(cmd.Context())
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No eval runs yet.")
			return nil
		}
		for _, run := range runs {
			fmt.Printf("%s  %s  %s  score %.0f  (%d cases)\n",
				run.Date.Format("2006-01-02 15:04"), run.Name, run.Status, run.Score, run.SampleSize)
		}
		return nil
	},
}

func init() {
	evalRunCmd.Flags().String("criteria", "", "override grading criteria for every case")

	evalCmd.AddCommand(evalListCmd)
	evalCmd.AddCommand(evalRunCmd)
	evalCmd.AddCommand(evalHistoryCmd)
	rootCmd.AddCommand(evalCmd)
}
