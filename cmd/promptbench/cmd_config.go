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
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage promptbench configuration and secrets",
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <key-name>",
	Short: "Store an API key in the system keyring",
	Long:  `Store an API key in the system keyring. The value is read from stdin.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyName := args[0]
		fmt.Fprintf(os.Stderr, "Enter value for %s: ", keyName)
		reader := bufio.NewReader(os.Stdin)
		value, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read secret: %w", err)
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return fmt.Errorf("empty secret")
		}
		if err := keyring.Set(ServiceName, keyName, value); err != nil {
			return fmt.Errorf("failed to store key: %w", err)
		}
		fmt.Printf("Stored %s in keyring\n", keyName)
		return nil
	},
}

var configGetKeyCmd = &cobra.Command{
	Use:   "get-key <key-name>",
	Short: "Check whether an API key is present in the keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyName := args[0]
		secret, err := keyring.Get(ServiceName, keyName)
		if err != nil {
			return fmt.Errorf("key not found in keyring; set it with: promptbench config set-key %s", keyName)
		}
		fmt.Printf("%s is set (%d characters)\n", keyName, len(secret))
		return nil
	},
}

var configDeleteKeyCmd = &cobra.Command{
	Use:   "delete-key <key-name>",
	Short: "Remove an API key from the system keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyName := args[0]
		if err := keyring.Delete(ServiceName, keyName); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
		fmt.Printf("Deleted %s from keyring\n", keyName)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configGetKeyCmd)
	configCmd.AddCommand(configDeleteKeyCmd)
	rootCmd.AddCommand(configCmd)
}
