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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/teradata-labs/promptbench/internal/log"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "promptbench",
	Short: "Prompt engineering workbench - version, test, and monitor LLM prompts",
	Long: `promptbench manages versioned prompt templates, executes them against
LLM providers, runs evaluation datasets with LLM-as-judge grading, routes
traffic through A/B tests, and detects quality regressions between versions.`,
}

// Execute runs the root command
func Execute() {
	defer func() { _ = log.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $PROMPTBENCH_DATA_DIR/promptbench.yaml)")

	// Storage flags
	defaultDBPath := filepath.Join(dataDir(), "promptbench.db")
	rootCmd.PersistentFlags().String("db", defaultDBPath, "SQLite database path")
	rootCmd.PersistentFlags().String("postgres", "", "Postgres DSN (overrides --db when set)")

	// LLM flags
	rootCmd.PersistentFlags().String("anthropic-key", "", "Anthropic API key (or use keyring/env)")
	rootCmd.PersistentFlags().String("model", "claude-sonnet-4-5", "default model for new versions and judging")
	rootCmd.PersistentFlags().Int("max-tokens", 4096, "maximum tokens per request")

	// Eval flags
	defaultDatasets := filepath.Join(dataDir(), "datasets")
	rootCmd.PersistentFlags().String("datasets", defaultDatasets, "eval dataset directory")

	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("database.postgres_dsn", rootCmd.PersistentFlags().Lookup("postgres"))
	_ = viper.BindPFlag("llm.anthropic_api_key", rootCmd.PersistentFlags().Lookup("anthropic-key"))
	_ = viper.BindPFlag("llm.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("llm.max_tokens", rootCmd.PersistentFlags().Lookup("max-tokens"))
	_ = viper.BindPFlag("evals.dataset_dir", rootCmd.PersistentFlags().Lookup("datasets"))
}
