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
	"fmt"
)

// Kind names a structural landmark
type Kind int

const (
	KindImportBlock Kind = iota
	KindEntryPoint
	KindAuthDestructure
	KindLegacyAuth
	KindCall
	KindCallSite
	KindCatchBlock
	KindBinding
)

func (k Kind) String() string {
	switch k {
	case KindImportBlock:
		return "import-block"
	case KindEntryPoint:
		return "entry-point"
	case KindAuthDestructure:
		return "auth-destructure"
	case KindLegacyAuth:
		return "legacy-auth"
	case KindCall:
		return "call"
	case KindCallSite:
		return "call-site"
	case KindCatchBlock:
		return "catch-block"
	case KindBinding:
		return "binding"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// 🎯 Spec describes one landmark to locate.
// From and To bound the search window; To == 0 means end of content.
type Spec struct {
	Kind Kind
	Name string
	From int
	To   int
}

// Within returns a copy of the spec restricted to [from, to)
func (s Spec) Within(from, to int) Spec {
	s.From = from
	s.To = to
	return s
}

func (s Spec) String() string {
	if s.Name == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + "(" + s.Name + ")"
}

// ImportBlockSpec locates the leading run of import statements
func ImportBlockSpec() Spec { return Spec{Kind: KindImportBlock} }

// EntryPointSpec locates the exported handler for an HTTP method
func EntryPointSpec(method string) Spec { return Spec{Kind: KindEntryPoint, Name: method} }

// AuthDestructure locates `const { a, b } = <x>Result;`
func AuthDestructure() Spec { return Spec{Kind: KindAuthDestructure} }

// LegacyAuthBlock locates the await/if-error/destructure triple around fn
func LegacyAuthBlock(fn string) Spec { return Spec{Kind: KindLegacyAuth, Name: fn} }

// Call locates a complete single-line call expression
func Call(name string) Spec { return Spec{Kind: KindCall, Name: name} }

// CallSite locates only the `name(` token
func CallSite(name string) Spec { return Spec{Kind: KindCallSite, Name: name} }

// CatchBlock locates `catch (err) { ... }`
func CatchBlock() Spec { return Spec{Kind: KindCatchBlock} }

// Binding locates a `const|let|var name =` declaration
func Binding(name string) Spec { return Spec{Kind: KindBinding, Name: name} }

// 📍 Match is a located landmark. Offsets are absolute byte offsets into the
// searched content. InnerStart and InnerEnd delimit the argument list or block
// body for call, catch and entry-point anchors.
type Match struct {
	Start      int
	End        int
	InnerStart int
	InnerEnd   int
	Groups     map[string]string
}

// Text returns the matched slice of content
func (m Match) Text(content string) string {
	return content[m.Start:m.End]
}
