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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVars(t *testing.T) {
	vars, err := parseVars([]string{"name=Ada", "greeting=hello there", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"name":     "Ada",
		"greeting": "hello there",
		"empty":    "",
	}, vars)

	_, err = parseVars([]string{"noequals"})
	assert.Error(t, err)

	_, err = parseVars([]string{"=value"})
	assert.Error(t, err)
}

func TestParseVariant(t *testing.T) {
	v, err := parseVariant("p1:v1:50")
	require.NoError(t, err)
	assert.Equal(t, "p1", v.PromptID)
	assert.Equal(t, "v1", v.VersionID)
	assert.InDelta(t, 50.0, v.Weight, 1e-9)

	_, err = parseVariant("p1:v1")
	assert.Error(t, err)

	_, err = parseVariant("p1:v1:heavy")
	assert.Error(t, err)
}

func TestRootCommandWiring(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"prompt", "run", "eval", "abtest", "regression", "logs", "metrics", "config"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
