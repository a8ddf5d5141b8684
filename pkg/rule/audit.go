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
	"regexp"
	"strings"

	"github.com/walteh/conformrc/pkg/anchor"
	"github.com/walteh/conformrc/pkg/standard"
	"github.com/walteh/conformrc/pkg/task"
)

var standardHeadersLine = regexp.MustCompile(`(?m)^[ \t]*addStandardHeaders\(\s*response\s*,\s*requestId\s*\)\s*;`)

// 📝 AuditLogging records mutations with auditLog before the success response
type AuditLogging struct {
	audit standard.AuditTable
	loc   anchor.Locator
}

// NewAuditLogging creates the rule
func NewAuditLogging(std *standard.Standard, loc anchor.Locator) *AuditLogging {
	return &AuditLogging{audit: std.Audit, loc: loc}
}

func (r *AuditLogging) Name() string { return "audit-logging" }

func (r *AuditLogging) Description() string {
	return "inserts auditLog for create, update and delete handlers before the success response"
}

func (r *AuditLogging) Marker() string {
	return "auditLog( inside every mutating handler"
}

func (r *AuditLogging) Applies(content string, t task.FileTask) bool {
	return len(r.edits(content, t)) > 0
}

func (r *AuditLogging) Apply(_ context.Context, content string, t task.FileTask) (string, error) {
	return applyEdits(content, r.edits(content, t))
}

func (r *AuditLogging) edits(content string, t task.FileTask) []edit {
	if t.Category == "" {
		return nil
	}
	category := strings.ToUpper(t.Category)

	var edits []edit
	for _, ep := range r.loc.EntryPoints(content) {
		if !ep.Async || ep.Param == "" {
			continue
		}
		action, ok := t.Action(ep.Method)
		if !ok || action == "read" {
			continue
		}
		auditAction, ok := r.audit.Lookup(category, action)
		if !ok {
			continue
		}
		if hasCall(r.loc, content, "auditLog", ep.BodyStart, ep.RegionEnd) || !correlated(r.loc, content, ep) {
			continue
		}
		at, ok := r.successHeaders(content, ep)
		if !ok {
			continue
		}
		ind := anchor.Indent(content, at)
		text := ind + "await auditLog(" + ep.Param + ", AuditActions." + auditAction + ", AuditResources." + category + ", { requestId });\n"
		edits = append(edits, edit{start: at, end: at, text: text})
	}
	return edits
}

// successHeaders returns the start of the last addStandardHeaders line in the
// handler body that is not inside a catch block
func (r *AuditLogging) successHeaders(content string, ep anchor.EntryPoint) (int, bool) {
	catches := r.loc.LocateAll(content, anchor.CatchBlock().Within(ep.BodyStart, ep.BodyEnd))

	at, found := 0, false
	for _, loc := range standardHeadersLine.FindAllStringIndex(content[ep.BodyStart:ep.BodyEnd], -1) {
		offset := ep.BodyStart + loc[0]
		inCatch := false
		for _, c := range catches {
			if offset >= c.InnerStart && offset < c.InnerEnd {
				inCatch = true
				break
			}
		}
		if !inCatch {
			at, found = offset, true
		}
	}
	return at, found
}
