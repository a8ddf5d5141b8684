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
	"strings"
)

// scanner walks source text while skipping string literals, template
// literals and comments. It knows nothing about the grammar beyond that.

// skipLiteral returns the index just past the literal or comment starting at i,
// or i when s[i] does not start one. ok is false for an unterminated literal.
func skipLiteral(s string, i int) (next int, ok bool) {
	switch s[i] {
	case '\'', '"':
		q := s[i]
		for j := i + 1; j < len(s); j++ {
			switch s[j] {
			case '\\':
				j++
			case q:
				return j + 1, true
			case '\n':
				return j, false
			}
		}
		return len(s), false
	case '`':
		return skipTemplate(s, i)
	case '/':
		if i+1 < len(s) && s[i+1] == '/' {
			if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
				return i + nl, true
			}
			return len(s), true
		}
		if i+1 < len(s) && s[i+1] == '*' {
			if end := strings.Index(s[i+2:], "*/"); end >= 0 {
				return i + 2 + end + 2, true
			}
			return len(s), false
		}
	}
	return i, true
}

// skipTemplate skips a template literal including nested ${...} expressions.
func skipTemplate(s string, i int) (int, bool) {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '`':
			return j + 1, true
		case '$':
			if j+1 < len(s) && s[j+1] == '{' {
				end, ok := scanBalanced(s, j+1, '{', '}', 0, false)
				if !ok {
					return len(s), false
				}
				j = end
			}
		}
	}
	return len(s), false
}

// scanBalanced returns the index of the delimiter closing the one at s[open].
// maxDepth bounds the nesting depth counting the outer pair, 0 means no bound.
// With sameLine set a newline outside a literal ends the scan.
func scanBalanced(s string, open int, openCh, closeCh byte, maxDepth int, sameLine bool) (int, bool) {
	if open >= len(s) || s[open] != openCh {
		return 0, false
	}
	depth := 0
	for i := open; i < len(s); {
		c := s[i]
		switch {
		case c == '\'' || c == '"' || c == '`' || c == '/':
			next, ok := skipLiteral(s, i)
			if !ok {
				return 0, false
			}
			if next == i {
				i++
				continue
			}
			if sameLine && strings.Contains(s[i:next], "\n") {
				return 0, false
			}
			i = next
			continue
		case c == '\n' && sameLine:
			return 0, false
		case c == openCh:
			depth++
			if maxDepth > 0 && depth > maxDepth {
				return 0, false
			}
		case c == closeCh:
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// SplitArgs splits an argument list at top-level commas and trims each part.
// An empty or all-blank list yields no arguments.
func SplitArgs(args string) []string {
	if strings.TrimSpace(args) == "" {
		return nil
	}
	var (
		out   []string
		depth int
		last  int
	)
	for i := 0; i < len(args); {
		c := args[i]
		switch c {
		case '\'', '"', '`':
			next, _ := skipLiteral(args, i)
			i = next
			continue
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(args[last:i]))
				last = i + 1
			}
		}
		i++
	}
	tail := strings.TrimSpace(args[last:])
	if tail != "" {
		out = append(out, tail)
	}
	return out
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// boundaryBefore reports whether position i is not preceded by an identifier
// character or a member access dot.
func boundaryBefore(s string, i int) bool {
	return i == 0 || (!isIdentByte(s[i-1]) && s[i-1] != '.')
}

// LineStart returns the offset of the first byte of the line containing i.
func LineStart(s string, i int) int {
	return strings.LastIndexByte(s[:i], '\n') + 1
}

// LineEnd returns the offset of the newline ending the line containing i, or len(s).
func LineEnd(s string, i int) int {
	if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
		return i + nl
	}
	return len(s)
}

// Indent returns the leading whitespace of the line containing i.
func Indent(s string, i int) string {
	start := LineStart(s, i)
	end := start
	for end < len(s) && (s[end] == ' ' || s[end] == '\t') {
		end++
	}
	return s[start:end]
}

// References reports whether name occurs in s as a whole identifier.
func References(s, name string) bool {
	for off := 0; ; {
		idx := strings.Index(s[off:], name)
		if idx < 0 {
			return false
		}
		start := off + idx
		end := start + len(name)
		if (start == 0 || !isIdentByte(s[start-1])) && (end == len(s) || !isIdentByte(s[end])) {
			return true
		}
		off = start + 1
	}
}
