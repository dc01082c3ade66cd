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

	"github.com/spf13/viper"
	"github.com/teradata-labs/promptbench/internal/log"
	"github.com/teradata-labs/promptbench/pkg/evals"
	"github.com/teradata-labs/promptbench/pkg/llm"
	"github.com/teradata-labs/promptbench/pkg/llm/anthropic"
	"github.com/teradata-labs/promptbench/pkg/storage"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

// ServiceName identifies promptbench entries in the system keyring.
const ServiceName = "promptbench"

// anthropicKeyName is the keyring entry for the Anthropic API key.
const anthropicKeyName = "anthropic_api_key"

// dataDir returns the promptbench data directory, honoring
// PROMPTBENCH_DATA_DIR.
func dataDir() string {
	if dir := os.Getenv("PROMPTBENCH_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".promptbench"
	}
	return filepath.Join(home, ".promptbench")
}

// initConfig reads the config file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("promptbench")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(dataDir())
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("PROMPTBENCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Debug("loaded config", zap.String("file", viper.ConfigFileUsed()))
	}
}

// openStore opens postgres when a DSN is configured, sqlite otherwise.
func openStore() (storage.Store, error) {
	if dsn := viper.GetString("database.postgres_dsn"); dsn != "" {
		return storage.NewPostgresStore(dsn)
	}
	dbPath := viper.GetString("database.path")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return storage.NewSQLiteStore(dbPath)
}

// resolveAPIKey finds the Anthropic key: flag/config, then environment,
// then the system keyring.
func resolveAPIKey() (string, error) {
	if key := viper.GetString("llm.anthropic_api_key"); key != "" {
		return key, nil
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, nil
	}
	key, err := keyring.Get(ServiceName, anthropicKeyName)
	if err != nil {
		return "", fmt.Errorf("no Anthropic API key configured; set it with: promptbench config set-key %s", anthropicKeyName)
	}
	return key, nil
}

// newProvider builds the Anthropic provider from config.
func newProvider() (llm.Provider, error) {
	key, err := resolveAPIKey()
	if err != nil {
		return nil, err
	}
	return anthropic.NewClient(key,
		anthropic.WithMaxTokens(viper.GetInt("llm.max_tokens")),
	), nil
}

// newJudge builds an LLM judge on the configured model.
func newJudge(provider llm.Provider) (*evals.Judge, error) {
	return evals.NewJudge(provider, viper.GetString("llm.model"))
}

// openLibrary loads the dataset directory, creating it on first use.
func openLibrary() (*evals.Library, error) {
	dir := viper.GetString("evals.dataset_dir")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}
	return evals.NewLibrary(dir)
}
