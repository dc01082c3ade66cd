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
	"strings"

	"github.com/spf13/cobra"
	"github.com/teradata-labs/promptbench/internal/log"
	"github.com/teradata-labs/promptbench/pkg/prompts"
	"github.com/teradata-labs/promptbench/pkg/regression"
	"github.com/teradata-labs/promptbench/pkg/types"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run <prompt-id>",
	Short: "Execute a prompt version and log the result",
	Long: `Render the prompt's template with the given variables, execute it against
the configured provider, record the execution in the log stream, and check the
version for regressions against the production baseline.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		versionID, _ := cmd.Flags().GetString("version")
		varFlags, _ := cmd.Flags().GetStringArray("var")
		skipRegression, _ := cmd.Flags().GetBool("no-regression-check")

		vars, err := parseVars(varFlags)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		prompt, err := store.GetPromptByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if versionID == "" {
			versionID = prompt.ActiveVersionID
		}
		version := prompt.VersionByID(versionID)
		if version == nil {
			return fmt.Errorf("version %s not found", versionID)
		}

		provider, err := newProvider()
		if err != nil {
			return err
		}

		rendered := prompts.Render(version.Template, vars)
		resp, err := provider.Run(cmd.Context(), version.Model, rendered, version.Temperature)
		if err != nil {
			return err
		}

		output := resp.Text
		if resp.Status == types.ExecError {
			output = fmt.Sprintf("Error: %s", resp.Err)
		}
		entry, err := types.NewLogEntry(prompt.ID, version.ID, vars, output,
			int64(resp.LatencyMs), resp.CostUSD, resp.InputTokens+resp.OutputTokens,
			resp.Status, version.Model)
		if err != nil {
			return err
		}
		if err := store.AddLog(cmd.Context(), entry); err != nil {
			return err
		}

		fmt.Println(output)
		fmt.Printf("\n[%s] %.0fms, $%.6f, %d tokens\n",
			resp.Status, resp.LatencyMs, resp.CostUSD, resp.InputTokens+resp.OutputTokens)

		if skipRegression {
			return nil
		}

		// Post-run regression check is best-effort: a detection failure
		// never fails the run itself.
		detector := regression.NewDetector(store, nil, nil)
		alert, err := detector.Detect(cmd.Context(), prompt.ID, version.ID)
		if err != nil {
			log.Warn("regression check failed", zap.Error(err))
			return nil
		}
		if alert != nil {
			fmt.Printf("\nREGRESSION [%s]: %s\n", alert.Severity, alert.Issue)
		}
		return nil
	},
}

// parseVars turns repeated key=value flags into a variable map.
func parseVars(flags []string) (map[string]string, error) {
	vars := make(map[string]string, len(flags))
	for _, f := range flags {
		key, value, found := strings.Cut(f, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --var %q, expected key=value", f)
		}
		vars[key] = value
	}
	return vars, nil
}

func init() {
	runCmd.Flags().String("version", "", "version ID (defaults to the active version)")
	runCmd.Flags().StringArray("var", nil, "template variable as key=value (repeatable)")
	runCmd.Flags().Bool("no-regression-check", false, "skip the post-run regression check")
	rootCmd.AddCommand(runCmd)
}
