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
	"sort"
	"strings"
)

// Methods lists the HTTP method names recognized as entry points
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}

var (
	nextExportRe = regexp.MustCompile(`(?m)^export\s`)
	firstParamRe = regexp.MustCompile(`\A\s*([A-Za-z_$][\w$]*)`)
)

// 🚪 EntryPoint is an exported HTTP-method handler
type EntryPoint struct {
	Method    string
	Async     bool
	Param     string // first parameter identifier, empty when destructured or absent
	Params    string
	Start     int // start of the export keyword
	BodyStart int // just past the opening brace
	BodyEnd   int // the closing brace, RegionEnd when it cannot be found
	RegionEnd int // next top-level export or end of content
}

// Match projects the entry point onto the generic anchor result
func (e EntryPoint) Match() Match {
	return Match{
		Start:      e.Start,
		End:        e.BodyStart,
		InnerStart: e.BodyStart,
		InnerEnd:   e.RegionEnd,
		Groups: map[string]string{
			"method": e.Method,
			"param":  e.Param,
			"params": e.Params,
		},
	}
}

// Contains reports whether offset lies inside the handler body region
func (e EntryPoint) Contains(offset int) bool {
	return offset >= e.BodyStart && offset < e.RegionEnd
}

// InBody reports whether offset lies between the handler's own braces
func (e EntryPoint) InBody(offset int) bool {
	return offset >= e.BodyStart && offset < e.BodyEnd
}

// Region returns the handler body region of content
func (e EntryPoint) Region(content string) string {
	return content[e.BodyStart:e.RegionEnd]
}

func functionPattern(method string) string {
	return `(?m)^export\s+(async\s+)?function\s+` + regexp.QuoteMeta(method) + `\s*\(`
}

func arrowPattern(method string) string {
	return `(?m)^export\s+const\s+` + regexp.QuoteMeta(method) + `\s*(?::[^=\n]*)?=\s*(async\s*)?\(`
}

const (
	functionTail = `\A\s*(?::\s*[^{};]*?)?\s*\{`
	arrowTail    = `\A\s*(?::\s*[^{};]*?)?\s*=>\s*\{`
)

// EntryPoints returns every recognized handler ordered by position.
// A signature whose parameter list or body brace cannot be found is skipped.
func (m *Matcher) EntryPoints(content string) []EntryPoint {
	var out []EntryPoint
	for _, method := range Methods {
		for _, form := range []struct {
			head string
			tail string
		}{
			{functionPattern(method), functionTail},
			{arrowPattern(method), arrowTail},
		} {
			re := m.compile(form.head)
			for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
				ep, ok := m.entryPoint(content, method, loc, form.tail)
				if ok {
					out = append(out, ep)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func (m *Matcher) entryPoint(content, method string, loc []int, tail string) (EntryPoint, bool) {
	open := loc[1] - 1
	closeIdx, ok := scanBalanced(content, open, '(', ')', 0, false)
	if !ok {
		return EntryPoint{}, false
	}
	brace := m.compile(tail).FindStringIndex(content[closeIdx+1:])
	if brace == nil {
		return EntryPoint{}, false
	}
	bodyStart := closeIdx + 1 + brace[1]

	regionEnd := len(content)
	if next := nextExportRe.FindStringIndex(content[bodyStart:]); next != nil {
		regionEnd = bodyStart + next[0]
	}

	bodyEnd := regionEnd
	if end, ok := scanBalanced(content, bodyStart-1, '{', '}', 0, false); ok && end < regionEnd {
		bodyEnd = end
	}

	params := content[open+1 : closeIdx]
	var param string
	if pm := firstParamRe.FindStringSubmatch(params); pm != nil {
		param = pm[1]
	}

	return EntryPoint{
		Method:    method,
		Async:     loc[2] >= 0 && strings.TrimSpace(content[loc[2]:loc[3]]) == "async",
		Param:     param,
		Params:    params,
		Start:     loc[0],
		BodyStart: bodyStart,
		BodyEnd:   bodyEnd,
		RegionEnd: regionEnd,
	}, true
}

// Enclosing returns the entry point whose body region contains offset
func Enclosing(eps []EntryPoint, offset int) (EntryPoint, bool) {
	for _, ep := range eps {
		if ep.Contains(offset) {
			return ep, true
		}
	}
	return EntryPoint{}, false
}
