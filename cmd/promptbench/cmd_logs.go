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
	"github.com/teradata-labs/promptbench/pkg/metrics"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent executions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		logs, err := store.GetLogs(cmd.Context())
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			fmt.Println("No executions logged yet.")
			return nil
		}
		if limit > 0 && len(logs) > limit {
			logs = logs[:limit]
		}
		for _, l := range logs {
			fmt.Printf("%s  %s/%s  [%s]  %dms  $%.6f\n",
				l.Timestamp.Format("2006-01-02 15:04:05"), l.PromptID, l.VersionID,
				l.Status, l.LatencyMs, l.CostUSD)
		}
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics <prompt-id> <version-id>",
	Short: "Aggregate execution metrics for a prompt version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		logs, err := store.GetLogs(cmd.Context())
		if err != nil {
			return err
		}

		summary := metrics.Aggregate(metrics.FilterVersion(logs, args[0], args[1]))
		fmt.Printf("requests:     %d (%d ok, %d failed)\n",
			summary.TotalRequests, summary.SuccessRequests, summary.FailedRequests)
		fmt.Printf("success rate: %.1f%%\n", summary.SuccessRate)
		fmt.Printf("error rate:   %.1f%%\n", summary.ErrorRate)
		fmt.Printf("avg latency:  %dms\n", summary.AvgLatencyMs)
		fmt.Printf("avg cost:     $%.6f\n", summary.AvgCostUSD)
		for _, e := range summary.ErrorLogs {
			fmt.Printf("  error sample: %s\n", e.Output)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().Int("limit", 50, "maximum entries to display")
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(metricsCmd)
}
