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

package anchor

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gitlab.com/tozd/go/errors"
)

// DefaultCacheSize is the number of compiled patterns a Matcher keeps
const DefaultCacheSize = 256

// 🔍 Locator finds structural landmarks in source text.
// Rules only see this interface so the pattern matcher can be replaced by a
// real parser without touching rule logic.
type Locator interface {
	Locate(content string, spec Spec) (Match, bool)
	LocateAll(content string, spec Spec) []Match
	EntryPoints(content string) []EntryPoint
	Imports(content string) (ImportBlock, bool)
}

var _ Locator = (*Matcher)(nil)

// 🔍 Matcher locates anchors with tolerant regular expressions plus a small
// delimiter scanner. It is safe for concurrent use.
type Matcher struct {
	patterns *lru.Cache[string, *regexp.Regexp]
}

// 🏭 NewMatcher creates a Matcher with an LRU cache of compiled patterns
func NewMatcher(cacheSize int) (*Matcher, error) {
	cache, err := lru.New[string, *regexp.Regexp](cacheSize)
	if err != nil {
		return nil, errors.Errorf("creating pattern cache: %w", err)
	}
	return &Matcher{patterns: cache}, nil
}

// compile returns the cached pattern for src, compiling it on a miss.
// Every source passed in is built from quoted names so compilation cannot fail.
func (m *Matcher) compile(src string) *regexp.Regexp {
	if re, ok := m.patterns.Get(src); ok {
		return re
	}
	re := regexp.MustCompile(src)
	m.patterns.Add(src, re)
	return re
}

// Locate returns the first match of spec in its window
func (m *Matcher) Locate(content string, spec Spec) (Match, bool) {
	all := m.locate(content, spec, 1)
	if len(all) == 0 {
		return Match{}, false
	}
	return all[0], true
}

// LocateAll returns every non-overlapping match of spec in its window, in order
func (m *Matcher) LocateAll(content string, spec Spec) []Match {
	return m.locate(content, spec, -1)
}

// Imports parses the import block
func (m *Matcher) Imports(content string) (ImportBlock, bool) {
	return ParseImports(content)
}

func (m *Matcher) locate(content string, spec Spec, limit int) []Match {
	from, to := spec.From, spec.To
	if to <= 0 || to > len(content) {
		to = len(content)
	}
	if from < 0 {
		from = 0
	}
	if from >= to {
		return nil
	}
	window := content[:to]

	var out []Match
	add := func(mt Match) bool {
		out = append(out, mt)
		return limit < 0 || len(out) < limit
	}

	switch spec.Kind {
	case KindImportBlock:
		blk, ok := ParseImports(content)
		if ok && blk.Start >= from && blk.End <= to {
			add(Match{Start: blk.Start, End: blk.End, InnerStart: blk.Start, InnerEnd: blk.End, Groups: map[string]string{}})
		}
	case KindEntryPoint:
		for _, ep := range m.EntryPoints(content) {
			if !strings.EqualFold(ep.Method, spec.Name) || ep.Start < from || ep.BodyStart > to {
				continue
			}
			if !add(ep.Match()) {
				break
			}
		}
	case KindAuthDestructure:
		m.eachRegexp(window, from, `(?m)^([ \t]*)const[ \t]*\{[ \t]*([^{}\n]*?)[ \t]*\}[ \t]*=[ \t]*([A-Za-z_$][\w$]*Result)[ \t]*;`, func(loc []int) (Match, bool) {
			return Match{
				Start: loc[0], End: loc[1],
				Groups: map[string]string{
					"indent": window[loc[2]:loc[3]],
					"fields": window[loc[4]:loc[5]],
					"source": window[loc[6]:loc[7]],
				},
			}, true
		}, add)
	case KindLegacyAuth:
		// each of the three statements sits on one line, only the gaps between them may span lines
		src := `(?m)^([ \t]*)const[ \t]+([A-Za-z_$][\w$]*)[ \t]*=[ \t]*await[ \t]+` + regexp.QuoteMeta(spec.Name) +
			`[ \t]*\([ \t]*([A-Za-z_$][\w$]*)[ \t]*\)[ \t]*;?[ \t]*\n\s*if[ \t]*\([ \t]*['"]error['"][ \t]+in[ \t]+([A-Za-z_$][\w$]*)[ \t]*\)[ \t]*\{[^{}]*\}[ \t]*\n\s*const[ \t]*\{[ \t]*([^{}\n]*?)[ \t]*\}[ \t]*=[ \t]*([A-Za-z_$][\w$]*)[ \t]*;?`
		m.eachRegexp(window, from, src, func(loc []int) (Match, bool) {
			v := window[loc[4]:loc[5]]
			if window[loc[8]:loc[9]] != v || window[loc[12]:loc[13]] != v {
				return Match{}, false
			}
			return Match{
				Start: loc[0], End: loc[1],
				Groups: map[string]string{
					"indent":  window[loc[2]:loc[3]],
					"var":     v,
					"request": window[loc[6]:loc[7]],
					"fields":  window[loc[10]:loc[11]],
				},
			}, true
		}, add)
	case KindCall, KindCallSite:
		m.eachRegexp(window, from, `(`+regexp.QuoteMeta(spec.Name)+`)\s*\(`, func(loc []int) (Match, bool) {
			if !boundaryBefore(window, loc[2]) {
				return Match{}, false
			}
			open := loc[1] - 1
			groups := map[string]string{"name": spec.Name}
			if spec.Kind == KindCallSite {
				return Match{Start: loc[0], End: loc[1], InnerStart: loc[1], InnerEnd: loc[1], Groups: groups}, true
			}
			closeIdx, ok := scanBalanced(window, open, '(', ')', 2, true)
			if !ok {
				return Match{}, false
			}
			groups["args"] = window[open+1 : closeIdx]
			return Match{Start: loc[0], End: closeIdx + 1, InnerStart: open + 1, InnerEnd: closeIdx, Groups: groups}, true
		}, add)
	case KindCatchBlock:
		m.eachRegexp(window, from, `catch\s*\(\s*([A-Za-z_$][\w$]*)\s*(?::\s*[^)]*)?\)\s*\{`, func(loc []int) (Match, bool) {
			if !boundaryBefore(window, loc[0]) {
				return Match{}, false
			}
			open := loc[1] - 1
			closeIdx, ok := scanBalanced(window, open, '{', '}', 2, false)
			if !ok {
				return Match{}, false
			}
			return Match{
				Start: loc[0], End: closeIdx + 1,
				InnerStart: open + 1, InnerEnd: closeIdx,
				Groups: map[string]string{
					"var":  window[loc[2]:loc[3]],
					"body": window[open+1 : closeIdx],
				},
			}, true
		}, add)
	case KindBinding:
		m.eachRegexp(window, from, `(?m)^([ \t]*)(?:const|let|var)\s+(`+regexp.QuoteMeta(spec.Name)+`)\s*(?::[^=\n]*)?=`, func(loc []int) (Match, bool) {
			return Match{
				Start: loc[0], End: loc[1],
				Groups: map[string]string{
					"indent": window[loc[2]:loc[3]],
					"name":   window[loc[4]:loc[5]],
				},
			}, true
		}, add)
	}
	return out
}

// eachRegexp runs the pattern over window starting at from. accept turns a
// submatch index slice into a Match or rejects it, in which case the search
// resumes one byte after the rejected start.
func (m *Matcher) eachRegexp(window string, from int, src string, accept func(loc []int) (Match, bool), add func(Match) bool) {
	re := m.compile(src)
	lineAnchored := strings.HasPrefix(src, "(?m)^")
	pos := from
	for pos <= len(window) {
		loc := re.FindStringSubmatchIndex(window[pos:])
		if loc == nil {
			return
		}
		for i := range loc {
			if loc[i] >= 0 {
				loc[i] += pos
			}
		}
		// ^ also matches at the start of window[pos:], which is not a line start
		if lineAnchored && loc[0] == pos && pos > 0 && window[pos-1] != '\n' {
			pos++
			continue
		}
		mt, ok := accept(loc)
		if !ok {
			pos = loc[0] + 1
			continue
		}
		if !add(mt) {
			return
		}
		if mt.End > loc[0] {
			pos = mt.End
		} else {
			pos = loc[0] + 1
		}
	}
}
