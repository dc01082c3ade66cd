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
package evals

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Similarity calculates similarity between expected and actual output
// (0.0 to 1.0), ignoring whitespace differences.
func Similarity(expected, actual string) float64 {
	return calculateSimilarity(normalizeWhitespace(expected), normalizeWhitespace(actual))
}

func calculateSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	commonLength := 0
	totalLength := 0
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffEqual:
			commonLength += len(diff.Text)
			totalLength += len(diff.Text)
		case diffmatchpatch.DiffInsert, diffmatchpatch.DiffDelete:
			totalLength += len(diff.Text)
		}
	}

	if totalLength == 0 {
		return 0.0
	}
	return float64(commonLength) / float64(totalLength)
}

// normalizeWhitespace collapses runs of whitespace to single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
