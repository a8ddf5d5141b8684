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

	"github.com/walteh/conformrc/pkg/anchor"
	"github.com/walteh/conformrc/pkg/task"
)

// 🪵 CatchLogging logs a 500 response before each console.error in a catch block
type CatchLogging struct {
	loc anchor.Locator
}

// NewCatchLogging creates the rule
func NewCatchLogging(loc anchor.Locator) *CatchLogging {
	return &CatchLogging{loc: loc}
}

func (r *CatchLogging) Name() string { return "catch-logging" }

func (r *CatchLogging) Description() string {
	return "inserts logResponse(requestId, 500, elapsed) before console.error in catch blocks"
}

func (r *CatchLogging) Marker() string {
	return "logResponse( inside every catch block that calls console.error("
}

func (r *CatchLogging) Applies(content string, _ task.FileTask) bool {
	return len(r.edits(content)) > 0
}

func (r *CatchLogging) Apply(_ context.Context, content string, _ task.FileTask) (string, error) {
	return applyEdits(content, r.edits(content))
}

func (r *CatchLogging) edits(content string) []edit {
	var edits []edit
	for _, ep := range r.loc.EntryPoints(content) {
		if !correlated(r.loc, content, ep) || !timed(r.loc, content, ep) {
			continue
		}
		for _, c := range r.loc.LocateAll(content, anchor.CatchBlock().Within(ep.BodyStart, ep.RegionEnd)) {
			if hasCall(r.loc, content, "logResponse", c.InnerStart, c.InnerEnd) {
				continue
			}
			diag, ok := r.loc.Locate(content, anchor.CallSite("console.error").Within(c.InnerStart, c.InnerEnd))
			if !ok {
				continue
			}
			edits = append(edits, logResponseEdit(content, diag.Start, c.Groups["var"]))
		}
	}
	return edits
}

func logResponseEdit(content string, at int, errVar string) edit {
	msg := errVar + " instanceof Error ? " + errVar + ".message : String(" + errVar + ")"
	if !onlyIndentBefore(content, at) {
		// the diagnostic shares its line with other code, stay on that line
		return edit{start: at, end: at, text: "logResponse(requestId, 500, Date.now() - startTime, { error: " + msg + " }); "}
	}
	ind := anchor.Indent(content, at)
	start := anchor.LineStart(content, at)
	text := ind + "logResponse(requestId, 500, Date.now() - startTime, {\n" +
		ind + "  error: " + msg + ",\n" +
		ind + "});\n"
	return edit{start: start, end: start, text: text}
}
