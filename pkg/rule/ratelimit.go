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
	"strconv"
	"strings"

	"github.com/walteh/conformrc/pkg/anchor"
	"github.com/walteh/conformrc/pkg/standard"
	"github.com/walteh/conformrc/pkg/task"
)

const trackRequest = "globalRateLimitTracker.trackRequest"

// ⏱️ RateLimitInjection adds a per-user rate check after the auth destructure
type RateLimitInjection struct {
	limits standard.RateLimitTable
	loc    anchor.Locator
}

// NewRateLimitInjection creates the rule
func NewRateLimitInjection(std *standard.Standard, loc anchor.Locator) *RateLimitInjection {
	return &RateLimitInjection{limits: std.RateLimits, loc: loc}
}

func (r *RateLimitInjection) Name() string { return "rate-limit-injection" }

func (r *RateLimitInjection) Description() string {
	return "inserts a per-user rate check returning 429 after authentication"
}

func (r *RateLimitInjection) Marker() string {
	return trackRequest + "( anywhere in the file"
}

func (r *RateLimitInjection) Applies(content string, _ task.FileTask) bool {
	return len(r.edits(content)) > 0
}

func (r *RateLimitInjection) Apply(_ context.Context, content string, _ task.FileTask) (string, error) {
	return applyEdits(content, r.edits(content))
}

func (r *RateLimitInjection) edits(content string) []edit {
	if _, ok := r.loc.Locate(content, anchor.CallSite(trackRequest)); ok {
		return nil
	}

	var edits []edit
	for _, ep := range r.loc.EntryPoints(content) {
		if !correlated(r.loc, content, ep) {
			continue
		}
		d, ok := r.loc.Locate(content, anchor.AuthDestructure().Within(ep.BodyStart, ep.RegionEnd))
		if !ok {
			continue
		}
		user, fields, ok := userBinding(d.Groups["fields"])
		if !ok {
			continue
		}

		ind := d.Groups["indent"]
		text := rateLimitBlock(ind, user, r.limits.Lookup(ep.Method))
		if fields != d.Groups["fields"] {
			text = ind + "const { " + fields + " } = " + d.Groups["source"] + ";" + text
			edits = append(edits, edit{start: d.Start, end: d.End, text: text})
			continue
		}
		edits = append(edits, edit{start: d.End, end: d.End, text: text})
	}
	return edits
}

// userBinding finds the local name bound to `user` in a destructure field list,
// appending `user` when it is absent. ok is false for rest patterns.
func userBinding(fields string) (local, out string, ok bool) {
	if strings.Contains(fields, "...") {
		return "", "", false
	}
	for _, f := range strings.Split(fields, ",") {
		f = strings.TrimSpace(f)
		if eq := strings.IndexByte(f, '='); eq >= 0 {
			f = strings.TrimSpace(f[:eq])
		}
		key, alias, hasAlias := strings.Cut(f, ":")
		if strings.TrimSpace(key) != "user" {
			continue
		}
		if hasAlias {
			return strings.TrimSpace(alias), fields, true
		}
		return "user", fields, true
	}
	if strings.TrimSpace(fields) == "" {
		return "user", "user", true
	}
	return "user", strings.TrimRight(strings.TrimSpace(fields), ",") + ", user", true
}

func rateLimitBlock(ind, user string, rl standard.RateLimit) string {
	lines := []string{
		"",
		"",
		ind + "// Rate limiting (" + rl.Describe() + ")",
		ind + "const rateLimit = " + trackRequest + "(",
		ind + "  `user_${" + user + ".userId}" + rl.Suffix + "`,",
		ind + "  " + strconv.Itoa(rl.Limit) + ",",
		ind + "  " + strconv.Itoa(rl.Window),
		ind + ");",
		"",
		ind + "if (rateLimit.remaining === 0) {",
		ind + "  const minutesLeft = Math.ceil((rateLimit.reset - Math.floor(Date.now() / 1000)) / 60);",
		ind + "  return standardErrorResponse(",
		ind + "    ErrorCodes.RATE_LIMIT_EXCEEDED,",
		ind + "    `Rate limit exceeded. Try again in ${minutesLeft} minutes.`,",
		ind + "    429,",
		ind + "    undefined,",
		ind + "    requestId",
		ind + "  );",
		ind + "}",
	}
	return strings.Join(lines, "\n")
}
