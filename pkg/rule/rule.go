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

package rule

import (
	"context"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/conformrc/pkg/anchor"
	"github.com/walteh/conformrc/pkg/task"
)

// 📜 Rule is one named rewrite of the catalog.
//
// Rules are stateless and never perform I/O. Applies reports whether the
// rule's idempotency marker is still missing; after Apply it must report false.
type Rule interface {
	Name() string
	Description() string
	Marker() string
	Applies(content string, t task.FileTask) bool
	Apply(ctx context.Context, content string, t task.FileTask) (string, error)
}

// edit replaces content[start:end] with text
type edit struct {
	start int
	end   int
	text  string
}

// applyEdits splices non-overlapping edits into content
func applyEdits(content string, edits []edit) (string, error) {
	if len(edits) == 0 {
		return content, nil
	}
	sorted := make([]edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, e := range sorted {
		if e.start < last || e.end < e.start || e.end > len(content) {
			return "", errors.Errorf("overlapping edit at offset %d", e.start)
		}
		b.WriteString(content[last:e.start])
		b.WriteString(e.text)
		last = e.end
	}
	b.WriteString(content[last:])
	return b.String(), nil
}

// bodyIndent guesses the indentation of statements following offset
func bodyIndent(content string, offset int) string {
	rest := content[offset:]
	for _, line := range strings.Split(rest, "\n")[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if strings.HasPrefix(trimmed, "}") {
			return indent + "  "
		}
		return indent
	}
	return "  "
}

// firstLines returns the first n lines of s
func firstLines(s string, n int) string {
	idx := 0
	for i := 0; i < n; i++ {
		nl := strings.IndexByte(s[idx:], '\n')
		if nl < 0 {
			return s
		}
		idx += nl + 1
	}
	return s[:idx]
}

// correlated reports whether the handler region binds requestId
func correlated(loc anchor.Locator, content string, ep anchor.EntryPoint) bool {
	_, ok := loc.Locate(content, anchor.Binding("requestId").Within(ep.BodyStart, ep.RegionEnd))
	return ok
}

// timed reports whether the handler region binds startTime
func timed(loc anchor.Locator, content string, ep anchor.EntryPoint) bool {
	_, ok := loc.Locate(content, anchor.Binding("startTime").Within(ep.BodyStart, ep.RegionEnd))
	return ok
}

// hasCall reports whether name( appears in content[from:to]
func hasCall(loc anchor.Locator, content, name string, from, to int) bool {
	_, ok := loc.Locate(content, anchor.CallSite(name).Within(from, to))
	return ok
}
