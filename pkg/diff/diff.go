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
// Package diff computes a line-aligned, side-by-side diff between two
// prompt templates. Both output slices always have equal length; a line
// present on only one side is padded with an empty unchanged segment on
// the other so the two columns render row for row.
//
// The alignment is greedy with a bounded lookahead of 10 lines, O(n*k)
// rather than a full LCS. Adequate for short natural-language templates;
// it can misalign on pathological repeated-line inputs.
package diff

// SegmentType classifies a diff line.
type SegmentType string

const (
	Unchanged SegmentType = "unchanged"
	Added     SegmentType = "added"
	Removed   SegmentType = "removed"
)

// LineSegment is one rendered row on one side of the diff.
type LineSegment struct {
	Type       SegmentType
	Text       string
	LineNumber int
}

// lookahead bounds how far the alignment scans for a matching line.
const lookahead = 10

// Compute diffs oldText against newText line by line.
// The returned slices are the old (left) and new (right) columns.
func Compute(oldText, newText string) (oldSide, newSide []LineSegment) {
	oldLines := splitLines(oldText)
	newLines := splitLines(newText)

	oldIdx, newIdx := 0, 0
	lineNum := 1

	for oldIdx < len(oldLines) || newIdx < len(newLines) {
		switch {
		case oldIdx >= len(oldLines):
			// Old side exhausted: everything left is an addition.
			newSide = append(newSide, LineSegment{Type: Added, Text: newLines[newIdx], LineNumber: lineNum})
			oldSide = append(oldSide, LineSegment{Type: Unchanged, Text: "", LineNumber: lineNum})
			newIdx++
			lineNum++

		case newIdx >= len(newLines):
			oldSide = append(oldSide, LineSegment{Type: Removed, Text: oldLines[oldIdx], LineNumber: lineNum})
			newSide = append(newSide, LineSegment{Type: Unchanged, Text: "", LineNumber: lineNum})
			oldIdx++
			lineNum++

		case oldLines[oldIdx] == newLines[newIdx]:
			oldSide = append(oldSide, LineSegment{Type: Unchanged, Text: oldLines[oldIdx], LineNumber: lineNum})
			newSide = append(newSide, LineSegment{Type: Unchanged, Text: newLines[newIdx], LineNumber: lineNum})
			oldIdx++
			newIdx++
			lineNum++

		default:
			matched := false

			// Scan ahead in the old lines for the current new line; the
			// skipped old lines were removed.
			for i := oldIdx + 1; i < min(oldIdx+lookahead, len(oldLines)); i++ {
				if oldLines[i] == newLines[newIdx] {
					for j := oldIdx; j < i; j++ {
						oldSide = append(oldSide, LineSegment{Type: Removed, Text: oldLines[j], LineNumber: lineNum})
						newSide = append(newSide, LineSegment{Type: Unchanged, Text: "", LineNumber: lineNum})
						lineNum++
					}
					oldIdx = i
					matched = true
					break
				}
			}

			// Otherwise scan ahead in the new lines for the current old
			// line; the intervening new lines were added.
			if !matched {
				for i := newIdx + 1; i < min(newIdx+lookahead, len(newLines)); i++ {
					if newLines[i] == oldLines[oldIdx] {
						for j := newIdx; j < i; j++ {
							oldSide = append(oldSide, LineSegment{Type: Unchanged, Text: "", LineNumber: lineNum})
							newSide = append(newSide, LineSegment{Type: Added, Text: newLines[j], LineNumber: lineNum})
							lineNum++
						}
						newIdx = i
						matched = true
						break
					}
				}
			}

			// No alignment within the window: treat as a one-for-one change.
			if !matched {
				oldSide = append(oldSide, LineSegment{Type: Removed, Text: oldLines[oldIdx], LineNumber: lineNum})
				newSide = append(newSide, LineSegment{Type: Added, Text: newLines[newIdx], LineNumber: lineNum})
				oldIdx++
				newIdx++
				lineNum++
			}
		}
	}

	return oldSide, newSide
}

func splitLines(s string) []string {
	lines := []string{}
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}
