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
)

// NamedImport is one entry of a `{ ... }` import list
type NamedImport struct {
	Name     string
	Alias    string
	TypeOnly bool
}

// Local returns the identifier the entry binds in the module
func (n NamedImport) Local() string {
	if n.Alias != "" {
		return n.Alias
	}
	return n.Name
}

// 📦 ImportStmt is one parsed import statement
type ImportStmt struct {
	Start     int
	End       int
	Module    string
	Quote     byte
	Default   string
	Namespace string
	Named     []NamedImport
	HasBraces bool
	TypeOnly  bool
	Multiline bool
	Indent    string // indentation of list entries in a multi-line statement
}

// Bindings returns every local identifier the statement introduces
func (s ImportStmt) Bindings() []string {
	var out []string
	if s.Default != "" {
		out = append(out, s.Default)
	}
	if s.Namespace != "" {
		out = append(out, s.Namespace)
	}
	for _, n := range s.Named {
		out = append(out, n.Local())
	}
	return out
}

// Empty reports whether the statement binds nothing and is not a side-effect import
func (s ImportStmt) Empty() bool {
	return s.HasBraces && s.Default == "" && s.Namespace == "" && len(s.Named) == 0
}

// 📦 ImportBlock is the leading run of import statements
type ImportBlock struct {
	Start int // start of the first statement, or the insertion point when there is none
	End   int // end of the last statement
	Stmts []ImportStmt
}

// Quote returns the quote style of the first statement, single quote by default
func (b ImportBlock) Quote() byte {
	if len(b.Stmts) > 0 {
		return b.Stmts[0].Quote
	}
	return '\''
}

var (
	importStmtRe = regexp.MustCompile(`\Aimport(\s+type)?\s+(?:([^;'"]*?)\s*from\s*)?(['"])([^'"\n]+)['"][ \t]*;?`)
	directiveRe  = regexp.MustCompile(`\A(['"])use [a-z]+['"][ \t]*;?`)
	namespaceRe  = regexp.MustCompile(`\A\*\s*as\s+([A-Za-z_$][\w$]*)\z`)
	identOnlyRe  = regexp.MustCompile(`\A[A-Za-z_$][\w$]*\z`)
	entryIndent  = regexp.MustCompile(`\{[ \t]*\n([ \t]*)\S`)
)

// ParseImports parses the import block at the top of content. Directives,
// comments and blank lines may precede or separate statements. The block ends
// at the first top-level line that is none of those. ok is false when the
// content has no import statement; Start then holds the insertion point.
func ParseImports(content string) (ImportBlock, bool) {
	var blk ImportBlock
	pos := 0
	for pos < len(content) {
		pos = skipTrivia(content, pos)
		if pos >= len(content) {
			break
		}
		rest := content[pos:]
		if loc := directiveRe.FindStringIndex(rest); loc != nil && len(blk.Stmts) == 0 {
			pos += loc[1]
			continue
		}
		if !strings.HasPrefix(rest, "import") || (len(rest) > 6 && isIdentByte(rest[6])) || strings.HasPrefix(rest, "import(") {
			break
		}
		stmt, ok := parseImport(content, pos)
		if !ok {
			break
		}
		blk.Stmts = append(blk.Stmts, stmt)
		pos = stmt.End
	}

	if len(blk.Stmts) == 0 {
		at := len(content)
		if pos < len(content) {
			at = LineStart(content, pos)
		}
		blk.Start, blk.End = at, at
		return blk, false
	}
	blk.Start = blk.Stmts[0].Start
	blk.End = blk.Stmts[len(blk.Stmts)-1].End
	return blk, true
}

// skipTrivia skips whitespace and comments
func skipTrivia(s string, i int) int {
	for i < len(s) {
		switch {
		case s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r':
			i++
		case strings.HasPrefix(s[i:], "//") || strings.HasPrefix(s[i:], "/*"):
			next, ok := skipLiteral(s, i)
			if !ok {
				return len(s)
			}
			i = next
		default:
			return i
		}
	}
	return i
}

func parseImport(content string, pos int) (ImportStmt, bool) {
	loc := importStmtRe.FindStringSubmatchIndex(content[pos:])
	if loc == nil {
		return ImportStmt{}, false
	}
	text := content[pos : pos+loc[1]]
	stmt := ImportStmt{
		Start:     pos,
		End:       pos + loc[1],
		Module:    content[pos+loc[8] : pos+loc[9]],
		Quote:     content[pos+loc[6]],
		TypeOnly:  loc[2] >= 0,
		Multiline: strings.Contains(strings.TrimRight(text, " \t;"), "\n"),
	}
	if m := entryIndent.FindStringSubmatch(text); m != nil {
		stmt.Indent = m[1]
	}
	if loc[4] < 0 {
		return stmt, true
	}
	if !parseClause(&stmt, strings.TrimSpace(content[pos+loc[4]:pos+loc[5]])) {
		return ImportStmt{}, false
	}
	return stmt, true
}

func parseClause(stmt *ImportStmt, clause string) bool {
	if brace := strings.IndexByte(clause, '{'); brace >= 0 {
		closeIdx := strings.LastIndexByte(clause, '}')
		if closeIdx < brace {
			return false
		}
		stmt.HasBraces = true
		head := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(clause[:brace]), ","))
		if head != "" {
			if !identOnlyRe.MatchString(head) {
				return false
			}
			stmt.Default = head
		}
		for _, item := range strings.Split(clause[brace+1:closeIdx], ",") {
			item = stripComments(item)
			if item == "" {
				continue
			}
			var n NamedImport
			if strings.HasPrefix(item, "type ") {
				n.TypeOnly = true
				item = strings.TrimSpace(item[5:])
			}
			fields := strings.Fields(item)
			switch {
			case len(fields) == 1:
				n.Name = fields[0]
			case len(fields) == 3 && fields[1] == "as":
				n.Name, n.Alias = fields[0], fields[2]
			default:
				return false
			}
			stmt.Named = append(stmt.Named, n)
		}
		return true
	}

	parts := strings.SplitN(clause, ",", 2)
	first := strings.TrimSpace(parts[0])
	if m := namespaceRe.FindStringSubmatch(first); m != nil {
		stmt.Namespace = m[1]
		return len(parts) == 1
	}
	if !identOnlyRe.MatchString(first) {
		return false
	}
	stmt.Default = first
	if len(parts) == 2 {
		m := namespaceRe.FindStringSubmatch(strings.TrimSpace(parts[1]))
		if m == nil {
			return false
		}
		stmt.Namespace = m[1]
	}
	return true
}

func stripComments(s string) string {
	for {
		if i := strings.Index(s, "//"); i >= 0 {
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				s = s[:i]
			} else {
				s = s[:i] + s[i+end:]
			}
			continue
		}
		if i := strings.Index(s, "/*"); i >= 0 {
			end := strings.Index(s[i:], "*/")
			if end < 0 {
				s = s[:i]
			} else {
				s = s[:i] + s[i+end+2:]
			}
			continue
		}
		return strings.TrimSpace(s)
	}
}
