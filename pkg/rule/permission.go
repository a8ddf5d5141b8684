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

// 🔐 PermissionReplacement swaps the tenant-only auth helper for requirePermission
// and corrects requirePermission actions that disagree with the handler method.
type PermissionReplacement struct {
	legacy string
	loc    anchor.Locator
}

// NewPermissionReplacement creates the rule
func NewPermissionReplacement(std *standard.Standard, loc anchor.Locator) *PermissionReplacement {
	legacy := std.LegacyAuth
	if legacy == "" {
		legacy = standard.Default().LegacyAuth
	}
	return &PermissionReplacement{legacy: legacy, loc: loc}
}

func (r *PermissionReplacement) Name() string { return "permission-replacement" }

func (r *PermissionReplacement) Description() string {
	return "replaces " + r.legacy + " with requirePermission(resource, action) derived from the handler method"
}

func (r *PermissionReplacement) Marker() string {
	return "no " + r.legacy + " guard and every requirePermission action matches its method"
}

func (r *PermissionReplacement) Applies(content string, t task.FileTask) bool {
	return len(r.edits(content, t)) > 0
}

func (r *PermissionReplacement) Apply(_ context.Context, content string, t task.FileTask) (string, error) {
	return applyEdits(content, r.edits(content, t))
}

func (r *PermissionReplacement) edits(content string, t task.FileTask) []edit {
	if t.Resource == "" {
		return nil
	}
	eps := r.loc.EntryPoints(content)

	var edits []edit
	for _, mt := range r.loc.LocateAll(content, anchor.LegacyAuthBlock(r.legacy)) {
		ep, ok := anchor.Enclosing(eps, mt.Start)
		if !ok {
			continue
		}
		action, ok := t.Action(ep.Method)
		if !ok {
			continue
		}
		ind := mt.Groups["indent"]
		text := ind + "const authResult = await requirePermission(" + mt.Groups["request"] + ", '" + t.Resource + "', '" + action + "');\n" +
			ind + "if ('error' in authResult) {\n" +
			ind + "  return authResult.error;\n" +
			ind + "}\n" +
			ind + "const { " + mt.Groups["fields"] + " } = authResult;"
		edits = append(edits, edit{start: mt.Start, end: mt.End, text: text})
	}

	for _, ep := range eps {
		action, ok := t.Action(ep.Method)
		if !ok {
			continue
		}
		for _, mt := range r.loc.LocateAll(content, anchor.Call("requirePermission").Within(ep.BodyStart, ep.RegionEnd)) {
			if e, ok := fixAction(mt, t.Resource, action); ok {
				edits = append(edits, e)
			}
		}
	}
	return edits
}

// fixAction corrects the action literal of requirePermission(req, 'resource', 'action')
func fixAction(mt anchor.Match, resource, action string) (edit, bool) {
	raw := mt.Groups["args"]
	args := anchor.SplitArgs(raw)
	if len(args) != 3 {
		return edit{}, false
	}
	res, _, ok := unquote(args[1])
	if !ok || res != resource {
		return edit{}, false
	}
	current, quote, ok := unquote(args[2])
	if !ok || current == action {
		return edit{}, false
	}
	off := strings.LastIndex(raw, args[2])
	if off < 0 {
		return edit{}, false
	}
	start := mt.InnerStart + off
	return edit{start: start, end: start + len(args[2]), text: string(quote) + action + string(quote)}, true
}

// unquote strips matching single, double or back quotes without escapes
func unquote(s string) (string, byte, bool) {
	if len(s) < 2 {
		return "", 0, false
	}
	q := s[0]
	if (q != '\'' && q != '"' && q != '`') || s[len(s)-1] != q {
		return "", 0, false
	}
	inner := s[1 : len(s)-1]
	if strings.ContainsAny(inner, "\\'\"`") {
		return "", 0, false
	}
	return inner, q, true
}
