// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package operation

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines kept around each change
const contextLines = 2

// lineDiff renders a line diff of before and after and counts changed lines
func lineDiff(path, before, after string) (string, int, int) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var (
		sb      strings.Builder
		added   int
		removed int
	)
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)

	for i, d := range diffs {
		ls := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += len(ls)
			writeLines(&sb, "+", ls)
		case diffmatchpatch.DiffDelete:
			removed += len(ls)
			writeLines(&sb, "-", ls)
		case diffmatchpatch.DiffEqual:
			head, tail := contextLines, contextLines
			if i == 0 {
				head = 0
			}
			if i == len(diffs)-1 {
				tail = 0
			}
			if len(ls) <= head+tail {
				writeLines(&sb, " ", ls)
				continue
			}
			writeLines(&sb, " ", ls[:head])
			sb.WriteString("@@\n")
			writeLines(&sb, " ", ls[len(ls)-tail:])
		}
	}

	return sb.String(), added, removed
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func writeLines(sb *strings.Builder, prefix string, ls []string) {
	for _, l := range ls {
		sb.WriteString(prefix)
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
}
