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
package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Identical(t *testing.T) {
	text := "You are a helpful assistant.\nAnswer briefly.\nUse {{tone}} tone."

	oldSide, newSide := Compute(text, text)

	require.Equal(t, len(oldSide), len(newSide))
	require.Len(t, oldSide, 3)
	for i := range oldSide {
		assert.Equal(t, Unchanged, oldSide[i].Type)
		assert.Equal(t, Unchanged, newSide[i].Type)
		assert.Equal(t, oldSide[i].Text, newSide[i].Text)
		assert.Equal(t, i+1, oldSide[i].LineNumber)
		assert.Equal(t, i+1, newSide[i].LineNumber)
	}
}

func TestCompute_EqualLengthInvariant(t *testing.T) {
	cases := []struct{ old, new string }{
		{"", ""},
		{"a", ""},
		{"", "b"},
		{"a\nb\nc", "a\nc"},
		{"a\nb", "a\nx\ny\nb"},
		{"one\ntwo\nthree", "alpha\nbeta"},
		{strings.Repeat("same\n", 30) + "end", "end"},
	}

	for _, tc := range cases {
		oldSide, newSide := Compute(tc.old, tc.new)
		assert.Equal(t, len(oldSide), len(newSide), "old=%q new=%q", tc.old, tc.new)
	}
}

func TestCompute_AddedLines(t *testing.T) {
	oldText := "line one\nline three"
	newText := "line one\nline two\nline three"

	oldSide, newSide := Compute(oldText, newText)

	require.Len(t, newSide, 3)
	assert.Equal(t, Unchanged, newSide[0].Type)
	assert.Equal(t, Added, newSide[1].Type)
	assert.Equal(t, "line two", newSide[1].Text)
	assert.Equal(t, Unchanged, newSide[2].Type)

	// The added row is padded with an empty unchanged segment on the old side.
	assert.Equal(t, Unchanged, oldSide[1].Type)
	assert.Equal(t, "", oldSide[1].Text)
}

func TestCompute_RemovedLines(t *testing.T) {
	oldText := "keep\ndrop me\nalso drop\nkeep too"
	newText := "keep\nkeep too"

	oldSide, newSide := Compute(oldText, newText)

	require.Len(t, oldSide, 4)
	assert.Equal(t, Unchanged, oldSide[0].Type)
	assert.Equal(t, Removed, oldSide[1].Type)
	assert.Equal(t, Removed, oldSide[2].Type)
	assert.Equal(t, Unchanged, oldSide[3].Type)

	assert.Equal(t, "", newSide[1].Text)
	assert.Equal(t, "", newSide[2].Text)
	assert.Equal(t, "keep too", newSide[3].Text)
}

func TestCompute_ReplacedLine(t *testing.T) {
	oldSide, newSide := Compute("be concise", "be verbose")

	require.Len(t, oldSide, 1)
	assert.Equal(t, Removed, oldSide[0].Type)
	assert.Equal(t, "be concise", oldSide[0].Text)
	assert.Equal(t, Added, newSide[0].Type)
	assert.Equal(t, "be verbose", newSide[0].Text)
}

func TestCompute_TrailingAdditions(t *testing.T) {
	oldSide, newSide := Compute("a", "a\nb\nc")

	require.Len(t, newSide, 3)
	assert.Equal(t, Added, newSide[1].Type)
	assert.Equal(t, Added, newSide[2].Type)
	assert.Equal(t, Unchanged, oldSide[1].Type)
	assert.Equal(t, "", oldSide[1].Text)
}

func TestCompute_MatchBeyondLookahead(t *testing.T) {
	// The matching line sits 15 lines ahead, outside the 10-line window,
	// so the walk degrades to one-for-one replacement pairs instead of a
	// clean removal block. Equal-length output still holds.
	var sb strings.Builder
	for i := 0; i < 15; i++ {
		sb.WriteString("filler\n")
	}
	sb.WriteString("anchor")

	oldSide, newSide := Compute(sb.String(), "anchor")
	assert.Equal(t, len(oldSide), len(newSide))
}

func TestCompute_LineNumbersShared(t *testing.T) {
	oldSide, newSide := Compute("a\nb\nc", "a\nx\nc")

	for i := range oldSide {
		assert.Equal(t, oldSide[i].LineNumber, newSide[i].LineNumber)
	}
}
