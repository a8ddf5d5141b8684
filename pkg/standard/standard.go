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

package standard

import (
	"sort"
	"strconv"
	"strings"
)

// 📏 canonicalMethods is the display order for HTTP methods
var canonicalMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// 🔐 ActionTable maps an HTTP method to a permission action.
// The zero value is an empty table. Tables are never mutated after construction.
type ActionTable struct {
	m map[string]string
}

// 🏭 NewActionTable copies the given mapping into a new table
func NewActionTable(in map[string]string) ActionTable {
	m := make(map[string]string, len(in))
	for k, v := range in {
		m[strings.ToUpper(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return ActionTable{m: m}
}

// 🔍 Lookup returns the action for a method
func (t ActionTable) Lookup(method string) (string, bool) {
	a, ok := t.m[strings.ToUpper(method)]
	return a, ok
}

// Len returns the number of methods in the table.
func (t ActionTable) Len() int {
	return len(t.m)
}

// 📋 Methods returns the known methods, canonical ones first
func (t ActionTable) Methods() []string {
	out := make([]string, 0, len(t.m))
	seen := make(map[string]bool, len(t.m))
	for _, m := range canonicalMethods {
		if _, ok := t.m[m]; ok {
			out = append(out, m)
			seen[m] = true
		}
	}
	var extra []string
	for m := range t.m {
		if !seen[m] {
			extra = append(extra, m)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// Map returns a copy of the underlying mapping.
func (t ActionTable) Map() map[string]string {
	out := make(map[string]string, len(t.m))
	for k, v := range t.m {
		out[k] = v
	}
	return out
}

// ⏱️ RateLimit is a limit/window pair with a per-method key suffix
type RateLimit struct {
	Limit  int
	Window int // seconds
	Suffix string
}

// Describe renders the limit for an injected comment, e.g. "100 requests per hour per user".
func (r RateLimit) Describe() string {
	var per string
	switch r.Window {
	case 60:
		per = "minute"
	case 3600:
		per = "hour"
	case 86400:
		per = "day"
	default:
		return strconv.Itoa(r.Limit) + " requests per " + strconv.Itoa(r.Window) + " seconds per user"
	}
	return strconv.Itoa(r.Limit) + " requests per " + per + " per user"
}

var fallbackRateLimit = RateLimit{Limit: 100, Window: 3600}

// ⏱️ RateLimitTable maps an HTTP method to its rate limit
type RateLimitTable struct {
	m map[string]RateLimit
}

// 🏭 NewRateLimitTable copies the given mapping into a new table
func NewRateLimitTable(in map[string]RateLimit) RateLimitTable {
	m := make(map[string]RateLimit, len(in))
	for k, v := range in {
		m[strings.ToUpper(strings.TrimSpace(k))] = v
	}
	return RateLimitTable{m: m}
}

// 🔍 Lookup returns the limit for a method, falling back to 100 per hour
func (t RateLimitTable) Lookup(method string) RateLimit {
	if r, ok := t.m[strings.ToUpper(method)]; ok {
		return r
	}
	return fallbackRateLimit
}

// 📝 AuditTable maps a resource category and a permission action to an audit action constant
type AuditTable struct {
	m map[string]map[string]string
}

// 🏭 NewAuditTable copies the given mapping into a new table
func NewAuditTable(in map[string]map[string]string) AuditTable {
	m := make(map[string]map[string]string, len(in))
	for cat, actions := range in {
		inner := make(map[string]string, len(actions))
		for a, v := range actions {
			inner[strings.ToLower(a)] = v
		}
		m[strings.ToUpper(cat)] = inner
	}
	return AuditTable{m: m}
}

// 🔍 Lookup returns the audit action for a category and permission action
func (t AuditTable) Lookup(category, action string) (string, bool) {
	actions, ok := t.m[strings.ToUpper(category)]
	if !ok {
		return "", false
	}
	v, ok := actions[strings.ToLower(action)]
	return v, ok
}

// Map returns a deep copy of the underlying mapping.
func (t AuditTable) Map() map[string]map[string]string {
	out := make(map[string]map[string]string, len(t.m))
	for cat, actions := range t.m {
		inner := make(map[string]string, len(actions))
		for a, v := range actions {
			inner[a] = v
		}
		out[cat] = inner
	}
	return out
}

// 📦 ImportSpec is one module of the canonical import set
type ImportSpec struct {
	Module  string
	Symbols []string
}

// 🔄 Rename is a legacy call name and its standard counterpart
type Rename struct {
	From string
	To   string
}

// 📚 Standard bundles every table the rule catalog reads
type Standard struct {
	Imports           []ImportSpec
	Retired           []string
	LegacyAuth        string // tenant-only authorization helper replaced by requirePermission
	Renames           []Rename
	Actions           ActionTable
	RateLimits        RateLimitTable
	Audit             AuditTable
	CorrelationWindow int
}

// CanonicalSymbols returns every canonical symbol in import-set order.
func (s *Standard) CanonicalSymbols() []string {
	var out []string
	for _, spec := range s.Imports {
		out = append(out, spec.Symbols...)
	}
	return out
}

// 🎯 Default returns the standard the original endpoint migrations converged on
func Default() *Standard {
	return &Standard{
		Imports: []ImportSpec{
			{Module: "next/server", Symbols: []string{"NextRequest", "NextResponse"}},
			{Module: "@/lib/pagination", Symbols: []string{"parseStandardPaginationParams", "buildStandardListResponse"}},
			{Module: "@/lib/response", Symbols: []string{"standardErrorResponse", "ErrorCodes", "addStandardHeaders"}},
			{Module: "@/middleware/permissions", Symbols: []string{"requirePermission"}},
			{Module: "@/middleware/correlation", Symbols: []string{"getRequestId", "logResponse"}},
			{Module: "@/middleware/rateLimit", Symbols: []string{"globalRateLimitTracker"}},
			{Module: "@/middleware/audit", Symbols: []string{"auditLog", "AuditActions", "AuditResources"}},
		},
		Retired: []string{
			"requireTenant",
			"errorResponse",
			"successResponse",
			"notFoundProblem",
			"badRequestProblem",
			"internalServerErrorProblem",
			"unauthorizedProblem",
			"forbiddenProblem",
			"parsePaginationParams",
			"buildPagedResponse",
		},
		LegacyAuth: "requireTenant",
		Renames: []Rename{
			{From: "parsePaginationParams", To: "parseStandardPaginationParams"},
			{From: "buildPagedResponse", To: "buildStandardListResponse"},
		},
		Actions: NewActionTable(map[string]string{
			"GET":    "read",
			"POST":   "create",
			"PUT":    "update",
			"PATCH":  "update",
			"DELETE": "delete",
		}),
		RateLimits: NewRateLimitTable(map[string]RateLimit{
			"GET":    {Limit: 100, Window: 3600, Suffix: ""},
			"POST":   {Limit: 50, Window: 3600, Suffix: "_create"},
			"PUT":    {Limit: 50, Window: 3600, Suffix: "_update"},
			"PATCH":  {Limit: 50, Window: 3600, Suffix: "_update"},
			"DELETE": {Limit: 20, Window: 3600, Suffix: "_delete"},
		}),
		Audit: NewAuditTable(map[string]map[string]string{
			"PROVIDER": {
				"create": "PROVIDER_CREATED",
				"update": "PROVIDER_UPDATED",
				"delete": "PROVIDER_DELETED",
			},
		}),
		CorrelationWindow: 10,
	}
}
