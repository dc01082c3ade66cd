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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/teradata-labs/promptbench/pkg/diff"
	"github.com/teradata-labs/promptbench/pkg/prompts"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Manage prompts and their versions",
}

var promptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		all, err := store.GetPrompts(cmd.Context())
		if err != nil {
			return err
		}
		if len(all) == 0 {
			fmt.Println("No prompts yet. Create one with: promptbench prompt create")
			return nil
		}
		for _, p := range all {
			fmt.Printf("%s  %s  (%d versions, active %s)\n", p.ID, p.Name, len(p.Versions), p.ActiveVersionID)
		}
		return nil
	},
}

var promptCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		tags, _ := cmd.Flags().GetStringSlice("tags")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		p, err := prompts.NewRegistry(store).Create(cmd.Context(), args[0], description, tags)
		if err != nil {
			return err
		}
		fmt.Printf("Created prompt %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var promptVersionCmd = &cobra.Command{
	Use:   "version <prompt-id>",
	Short: "Add a new version to a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		template, _ := cmd.Flags().GetString("template")
		templateFile, _ := cmd.Flags().GetString("template-file")
		model, _ := cmd.Flags().GetString("model")
		temperature, _ := cmd.Flags().GetFloat64("temperature")
		message, _ := cmd.Flags().GetString("message")
		author, _ := cmd.Flags().GetString("author")

		if templateFile != "" {
			data, err := os.ReadFile(templateFile) //nolint:gosec // operator-supplied path
			if err != nil {
				return fmt.Errorf("failed to read template file: %w", err)
			}
			template = string(data)
		}
		if template == "" {
			return fmt.Errorf("--template or --template-file is required")
		}
		if model == "" {
			model = viper.GetString("llm.model")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		v, err := prompts.NewRegistry(store).CreateVersion(cmd.Context(), args[0], prompts.VersionInput{
			Template:      template,
			Model:         model,
			Temperature:   temperature,
			CreatedBy:     author,
			CommitMessage: message,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created version %d (%s)\n", v.Version, v.ID)
		if len(v.Variables) > 0 {
			fmt.Printf("Variables: %s\n", strings.Join(v.Variables, ", "))
		}
		return nil
	},
}

var promptPromoteCmd = &cobra.Command{
	Use:   "promote <prompt-id> <version-id>",
	Short: "Promote a version to production",
	Long:  `Promote a version to production. Any other production version of the same prompt is archived.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := prompts.NewRegistry(store).Promote(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Promoted version %s to production\n", args[1])
		return nil
	},
}

var promptShowCmd = &cobra.Command{
	Use:   "show <prompt-id>",
	Short: "Show a prompt and its version history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		p, err := store.GetPromptByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", p.ID, p.Name)
		if p.Description != "" {
			fmt.Println(p.Description)
		}
		if len(p.Tags) > 0 {
			fmt.Printf("Tags: %s\n", strings.Join(p.Tags, ", "))
		}
		for _, v := range p.Versions {
			marker := " "
			if v.ID == p.ActiveVersionID {
				marker = "*"
			}
			fmt.Printf("%s v%d  %s  [%s]  %s  %s\n",
				marker, v.Version, v.ID, v.Status, v.CreatedAt.Format("2006-01-02 15:04"), v.CommitMessage)
		}
		return nil
	},
}

var promptDiffCmd = &cobra.Command{
	Use:   "diff <prompt-id> <old-version-id> <new-version-id>",
	Short: "Show a side-aligned diff between two versions",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		p, err := store.GetPromptByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		oldV, newV := p.VersionByID(args[1]), p.VersionByID(args[2])
		if oldV == nil {
			return fmt.Errorf("version %s not found", args[1])
		}
		if newV == nil {
			return fmt.Errorf("version %s not found", args[2])
		}

		oldSide, newSide := diff.Compute(oldV.Template, newV.Template)
		printDiff(oldSide, newSide)
		return nil
	},
}

// printDiff renders the two aligned columns as unified-style rows:
// removals from the old side, additions from the new, one row per
// aligned pair.
func printDiff(oldSide, newSide []diff.LineSegment) {
	for i := range oldSide {
		o, n := oldSide[i], newSide[i]
		switch {
		case o.Type == diff.Unchanged && n.Type == diff.Unchanged:
			fmt.Printf("  %4d  %s\n", o.LineNumber, o.Text)
		default:
			if o.Type == diff.Removed {
				fmt.Printf("- %4d  %s\n", o.LineNumber, o.Text)
			}
			if n.Type == diff.Added {
				fmt.Printf("+ %4d  %s\n", n.LineNumber, n.Text)
			}
		}
	}
}

func init() {
	promptCreateCmd.Flags().String("description", "", "prompt description")
	promptCreateCmd.Flags().StringSlice("tags", nil, "comma-separated tags")

	promptVersionCmd.Flags().String("template", "", "template text with {{variable}} placeholders")
	promptVersionCmd.Flags().String("template-file", "", "read template from file")
	promptVersionCmd.Flags().String("model", "", "model for this version (defaults to --model)")
	promptVersionCmd.Flags().Float64("temperature", 0.7, "sampling temperature")
	promptVersionCmd.Flags().String("message", "", "commit message")
	promptVersionCmd.Flags().String("author", "", "author name")

	promptCmd.AddCommand(promptListCmd)
	promptCmd.AddCommand(promptCreateCmd)
	promptCmd.AddCommand(promptVersionCmd)
	promptCmd.AddCommand(promptPromoteCmd)
	promptCmd.AddCommand(promptShowCmd)
	promptCmd.AddCommand(promptDiffCmd)
	rootCmd.AddCommand(promptCmd)
}
