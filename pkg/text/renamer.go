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

package text

import (
	"context"
	"io"
	"regexp"

	"gitlab.com/tozd/go/errors"
)

// RenameRule renames every call site of one function
type RenameRule struct {
	// From is the legacy function name
	From string

	// To is the replacement function name
	To string
}

// RenameResult contains the results of a rename pass
type RenameResult struct {
	OriginalContent []byte
	ModifiedContent []byte
	RenameCount     int
	WasModified     bool
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// CallRenamer renames call sites by name.
// Only the `name(` token is touched, argument lists are left as they are.
type CallRenamer struct{}

// NewCallRenamer creates a new CallRenamer
func NewCallRenamer() *CallRenamer {
	return &CallRenamer{}
}

// Rename applies each rule in order
func (r *CallRenamer) Rename(ctx context.Context, content io.Reader, rules []RenameRule) (*RenameResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &RenameResult{
		OriginalContent: originalContent,
		ModifiedContent: originalContent,
	}

	current := string(originalContent)
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("renaming calls: %w", err)
		}
		if rule.From == "" || rule.From == rule.To {
			continue
		}

		next, n := RenameCalls(current, rule.From, rule.To)
		if n > 0 {
			result.WasModified = true
			result.RenameCount += n
		}
		current = next
	}

	result.ModifiedContent = []byte(current)
	return result, nil
}

// ValidateRules checks that every rule names two identifiers
func (r *CallRenamer) ValidateRules(rules []RenameRule) error {
	for i, rule := range rules {
		if rule.From == "" {
			return errors.Errorf("rule %d: from is required", i)
		}
		if !identRe.MatchString(rule.From) {
			return errors.Errorf("rule %d: from %q is not an identifier", i, rule.From)
		}
		if !identRe.MatchString(rule.To) {
			return errors.Errorf("rule %d: to %q is not an identifier", i, rule.To)
		}
	}
	return nil
}

// RenameCalls replaces `from(` with `to(` where `from` is not part of a longer
// identifier or a member access. Whitespace between the name and `(` is allowed.
func RenameCalls(content, from, to string) (string, int) {
	re := callSiteRegexp(from)
	locs := re.FindAllStringSubmatchIndex(content, -1)
	if len(locs) == 0 {
		return content, 0
	}

	var (
		out   []byte
		last  int
		count int
	)
	for _, loc := range locs {
		// loc[2]:loc[3] is the name group
		start, end := loc[2], loc[3]
		if start > 0 && isIdentOrDot(content[start-1]) {
			continue
		}
		out = append(out, content[last:start]...)
		out = append(out, to...)
		last = end
		count++
	}
	out = append(out, content[last:]...)
	return string(out), count
}

// HasCallSite reports whether `name(` appears with an identifier boundary
func HasCallSite(content, name string) bool {
	re := callSiteRegexp(name)
	for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
		if loc[2] == 0 || !isIdentOrDot(content[loc[2]-1]) {
			return true
		}
	}
	return false
}

func callSiteRegexp(name string) *regexp.Regexp {
	return regexp.MustCompile(`(` + regexp.QuoteMeta(name) + `)\s*\(`)
}

func isIdentOrDot(b byte) bool {
	return b == '_' || b == '$' || b == '.' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
