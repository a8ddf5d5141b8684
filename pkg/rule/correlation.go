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
	"strings"

	"github.com/walteh/conformrc/pkg/anchor"
	"github.com/walteh/conformrc/pkg/standard"
	"github.com/walteh/conformrc/pkg/task"
)

// 🔗 CorrelationInjection binds requestId and startTime at the top of every handler
type CorrelationInjection struct {
	window int
	loc    anchor.Locator
}

// NewCorrelationInjection creates the rule
func NewCorrelationInjection(std *standard.Standard, loc anchor.Locator) *CorrelationInjection {
	window := std.CorrelationWindow
	if window <= 0 {
		window = standard.Default().CorrelationWindow
	}
	return &CorrelationInjection{window: window, loc: loc}
}

func (r *CorrelationInjection) Name() string { return "correlation-injection" }

func (r *CorrelationInjection) Description() string {
	return "binds a request correlation id and start timestamp in each handler"
}

func (r *CorrelationInjection) Marker() string {
	return "getRequestId( within the first lines of the handler body"
}

func (r *CorrelationInjection) pending(content string) []anchor.EntryPoint {
	var out []anchor.EntryPoint
	for _, ep := range r.loc.EntryPoints(content) {
		if ep.Param == "" {
			continue
		}
		head := firstLines(content[ep.BodyStart:ep.RegionEnd], r.window+1)
		if _, ok := r.loc.Locate(head, anchor.CallSite("getRequestId")); ok {
			continue
		}
		out = append(out, ep)
	}
	return out
}

func (r *CorrelationInjection) Applies(content string, _ task.FileTask) bool {
	return len(r.pending(content)) > 0
}

func (r *CorrelationInjection) Apply(_ context.Context, content string, _ task.FileTask) (string, error) {
	var edits []edit
	for _, ep := range r.pending(content) {
		indent := bodyIndent(content, ep.BodyStart)
		text := "\n" + indent + "const requestId = getRequestId(" + ep.Param + ");" +
			"\n" + indent + "const startTime = Date.now();"

		// a body that continues on the brace line moves to its own line
		end := ep.BodyStart
		rest := content[ep.BodyStart:anchor.LineEnd(content, ep.BodyStart)]
		if trimmed := strings.TrimLeft(rest, " \t"); strings.TrimSpace(rest) != "" {
			text += "\n" + indent
			end += len(rest) - len(trimmed)
		}
		edits = append(edits, edit{start: ep.BodyStart, end: end, text: text})
	}
	return applyEdits(content, edits)
}
