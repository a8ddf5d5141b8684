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

// importPlan is the edited copy of an import block
type importPlan struct {
	blk      anchor.ImportBlock
	found    bool
	stmts    []anchor.ImportStmt
	modified map[int]bool
	appended []anchor.ImportStmt
}

func newImportPlan(loc anchor.Locator, content string) *importPlan {
	blk, found := loc.Imports(content)
	stmts := make([]anchor.ImportStmt, len(blk.Stmts))
	for i, st := range blk.Stmts {
		st.Named = append([]anchor.NamedImport(nil), st.Named...)
		stmts[i] = st
	}
	return &importPlan{blk: blk, found: found, stmts: stmts, modified: map[int]bool{}}
}

func (p *importPlan) changed() bool {
	return len(p.modified) > 0 || len(p.appended) > 0
}

func (p *importPlan) removeNamed(stmt int, keep func(anchor.NamedImport) bool) {
	st := &p.stmts[stmt]
	out := st.Named[:0]
	for _, n := range st.Named {
		if keep(n) {
			out = append(out, n)
		}
	}
	if len(out) != len(st.Named) {
		st.Named = out
		p.modified[stmt] = true
	}
}

// render writes the plan back into content
func (p *importPlan) render(content string) (string, error) {
	var edits []edit
	for i, st := range p.stmts {
		if !p.modified[i] {
			continue
		}
		if st.Empty() {
			start, end := lineSpan(content, st.Start, st.End)
			edits = append(edits, edit{start: start, end: end})
			continue
		}
		edits = append(edits, edit{start: st.Start, end: st.End, text: renderImport(st)})
	}

	if len(p.appended) > 0 {
		lines := make([]string, 0, len(p.appended))
		for _, st := range p.appended {
			lines = append(lines, renderImport(st))
		}
		if p.found {
			edits = append(edits, edit{start: p.blk.End, end: p.blk.End, text: "\n" + strings.Join(lines, "\n")})
		} else {
			text := strings.Join(lines, "\n") + "\n"
			if p.blk.Start < len(content) {
				text += "\n"
			}
			edits = append(edits, edit{start: p.blk.Start, end: p.blk.Start, text: text})
		}
	}
	return applyEdits(content, edits)
}

// lineSpan widens [start, end) to whole lines when nothing else shares them
func lineSpan(content string, start, end int) (int, int) {
	ls := anchor.LineStart(content, start)
	if strings.TrimSpace(content[ls:start]) == "" {
		start = ls
	}
	for end < len(content) && (content[end] == ' ' || content[end] == '\t') {
		end++
	}
	if end < len(content) && content[end] == '\n' {
		end++
	}
	return start, end
}

func renderImport(st anchor.ImportStmt) string {
	var parts []string
	if st.Default != "" {
		parts = append(parts, st.Default)
	}
	if st.Namespace != "" {
		parts = append(parts, "* as "+st.Namespace)
	}
	if len(st.Named) > 0 {
		names := make([]string, 0, len(st.Named))
		for _, n := range st.Named {
			s := n.Name
			if n.Alias != "" {
				s += " as " + n.Alias
			}
			if n.TypeOnly {
				s = "type " + s
			}
			names = append(names, s)
		}
		if st.Multiline {
			indent := st.Indent
			if indent == "" {
				indent = "  "
			}
			parts = append(parts, "{\n"+indent+strings.Join(names, ",\n"+indent)+",\n}")
		} else {
			parts = append(parts, "{ "+strings.Join(names, ", ")+" }")
		}
	}

	var b strings.Builder
	b.WriteString("import ")
	if st.TypeOnly {
		b.WriteString("type ")
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString(" from ")
	b.WriteByte(st.Quote)
	b.WriteString(st.Module)
	b.WriteByte(st.Quote)
	b.WriteByte(';')
	return b.String()
}

type binding struct {
	stmt  int
	named int // -1 for default and namespace bindings
}

// 📦 ImportNormalization makes every canonical symbol bound exactly once
type ImportNormalization struct {
	imports []standard.ImportSpec
	loc     anchor.Locator
}

// NewImportNormalization creates the rule
func NewImportNormalization(std *standard.Standard, loc anchor.Locator) *ImportNormalization {
	return &ImportNormalization{imports: std.Imports, loc: loc}
}

func (r *ImportNormalization) Name() string { return "import-normalization" }

func (r *ImportNormalization) Description() string {
	return "adds missing canonical imports and drops duplicate bindings"
}

func (r *ImportNormalization) Marker() string {
	return "every canonical symbol bound once in the import block"
}

func (r *ImportNormalization) Applies(content string, _ task.FileTask) bool {
	return r.plan(content).changed()
}

func (r *ImportNormalization) Apply(_ context.Context, content string, _ task.FileTask) (string, error) {
	p := r.plan(content)
	if !p.changed() {
		return content, nil
	}
	return p.render(content)
}

func (r *ImportNormalization) plan(content string) *importPlan {
	p := newImportPlan(r.loc, content)

	bound := map[string][]binding{}
	for i, st := range p.stmts {
		if st.Default != "" {
			bound[st.Default] = append(bound[st.Default], binding{stmt: i, named: -1})
		}
		if st.Namespace != "" {
			bound[st.Namespace] = append(bound[st.Namespace], binding{stmt: i, named: -1})
		}
		for j, n := range st.Named {
			bound[n.Local()] = append(bound[n.Local()], binding{stmt: i, named: j})
		}
	}

	// duplicates: keep a default or namespace binding when there is one, else the first
	drop := map[int]map[int]bool{}
	for _, spec := range r.imports {
		for _, sym := range spec.Symbols {
			bs := bound[sym]
			if len(bs) < 2 {
				continue
			}
			keep := bs[0]
			for _, b := range bs {
				if b.named < 0 {
					keep = b
					break
				}
			}
			for _, b := range bs {
				if b == keep || b.named < 0 {
					continue
				}
				if drop[b.stmt] == nil {
					drop[b.stmt] = map[int]bool{}
				}
				drop[b.stmt][b.named] = true
			}
		}
	}
	for stmt, idx := range drop {
		j := 0
		p.removeNamed(stmt, func(anchor.NamedImport) bool {
			defer func() { j++ }()
			return !idx[j]
		})
	}

	// missing symbols extend a named import of the same module or get a new statement
	for _, spec := range r.imports {
		var missing []string
		for _, sym := range spec.Symbols {
			if len(bound[sym]) == 0 {
				missing = append(missing, sym)
				bound[sym] = []binding{{stmt: -1}}
			}
		}
		if len(missing) == 0 {
			continue
		}
		target := -1
		for i, st := range p.stmts {
			if st.Module == spec.Module && !st.TypeOnly && st.Namespace == "" && (st.HasBraces || st.Default != "") {
				target = i
				break
			}
		}
		if target < 0 {
			named := make([]anchor.NamedImport, 0, len(missing))
			for _, sym := range missing {
				named = append(named, anchor.NamedImport{Name: sym})
			}
			p.appended = append(p.appended, anchor.ImportStmt{
				Module:    spec.Module,
				Quote:     p.blk.Quote(),
				Named:     named,
				HasBraces: true,
			})
			continue
		}
		st := &p.stmts[target]
		for _, sym := range missing {
			st.Named = append(st.Named, anchor.NamedImport{Name: sym})
		}
		st.HasBraces = true
		p.modified[target] = true
	}
	return p
}

// ✂️ ImportPruning drops retired symbols nothing references any more
type ImportPruning struct {
	retired map[string]bool
	loc     anchor.Locator
}

// NewImportPruning creates the rule
func NewImportPruning(std *standard.Standard, loc anchor.Locator) *ImportPruning {
	retired := make(map[string]bool, len(std.Retired))
	for _, s := range std.Retired {
		retired[s] = true
	}
	return &ImportPruning{retired: retired, loc: loc}
}

func (r *ImportPruning) Name() string { return "import-pruning" }

func (r *ImportPruning) Description() string {
	return "removes imports of retired helpers once they are unreferenced"
}

func (r *ImportPruning) Marker() string {
	return "no unreferenced retired symbol in the import block"
}

func (r *ImportPruning) Applies(content string, _ task.FileTask) bool {
	return r.plan(content).changed()
}

func (r *ImportPruning) Apply(_ context.Context, content string, _ task.FileTask) (string, error) {
	p := r.plan(content)
	if !p.changed() {
		return content, nil
	}
	return p.render(content)
}

func (r *ImportPruning) plan(content string) *importPlan {
	p := newImportPlan(r.loc, content)
	if !p.found {
		return p
	}
	outside := content[:p.blk.Start] + "\n" + content[p.blk.End:]
	for i := range p.stmts {
		p.removeNamed(i, func(n anchor.NamedImport) bool {
			return !r.retired[n.Name] || anchor.References(outside, n.Local())
		})
	}
	return p
}
