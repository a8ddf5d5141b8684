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
	"regexp"
	"strconv"
	"strings"

	"github.com/walteh/conformrc/pkg/anchor"
	"github.com/walteh/conformrc/pkg/task"
)

// errorShape maps a legacy problem constructor to a standard error code
type errorShape struct {
	code    string
	status  int
	message string // used when the legacy call carries no message
}

var problemShapes = map[string]errorShape{
	"notFoundProblem":            {code: "NOT_FOUND", status: 404, message: "'Resource not found'"},
	"badRequestProblem":          {code: "VALIDATION_ERROR", status: 400, message: "'Invalid request'"},
	"internalServerErrorProblem": {code: "INTERNAL_ERROR", status: 500, message: "'An unexpected error occurred'"},
	"unauthorizedProblem":        {code: "AUTHENTICATION_REQUIRED", status: 401, message: "'Authentication required'"},
	"forbiddenProblem":           {code: "FORBIDDEN", status: 403, message: "'Insufficient permissions'"},
}

var (
	problemCallRe = regexp.MustCompile(`\A([A-Za-z_$][\w$]*)\s*\(([\s\S]*)\)\z`)
	authErrorRe   = regexp.MustCompile(`\A([A-Za-z_$][\w$]*)\.error\z`)
	memberPathRe  = regexp.MustCompile(`\A[A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*\z`)
	returnPrefix  = regexp.MustCompile(`return\s+\z`)
	statementEnd  = regexp.MustCompile(`\A[ \t]*;`)
)

// 🚨 ErrorCanonicalization rewrites legacy error and success responses
type ErrorCanonicalization struct {
	loc anchor.Locator
}

// NewErrorCanonicalization creates the rule
func NewErrorCanonicalization(loc anchor.Locator) *ErrorCanonicalization {
	return &ErrorCanonicalization{loc: loc}
}

func (r *ErrorCanonicalization) Name() string { return "error-canonicalization" }

func (r *ErrorCanonicalization) Description() string {
	return "rewrites legacy error envelopes to standardErrorResponse and returned responses to NextResponse with standard headers, in correlated handlers"
}

func (r *ErrorCanonicalization) Marker() string {
	return "no recognizable errorResponse(, return successResponse( or return NextResponse.json( call in a correlated handler"
}

func (r *ErrorCanonicalization) Applies(content string, _ task.FileTask) bool {
	return len(r.edits(content)) > 0
}

func (r *ErrorCanonicalization) Apply(_ context.Context, content string, _ task.FileTask) (string, error) {
	return applyEdits(content, r.edits(content))
}

// edits only touches calls inside the body of a handler that binds requestId
func (r *ErrorCanonicalization) edits(content string) []edit {
	eps := r.loc.EntryPoints(content)
	bound := make(map[int]bool, len(eps))
	inScope := func(offset int) bool {
		ep, ok := anchor.Enclosing(eps, offset)
		if !ok || !ep.InBody(offset) {
			return false
		}
		if v, seen := bound[ep.Start]; seen {
			return v
		}
		bound[ep.Start] = correlated(r.loc, content, ep)
		return bound[ep.Start]
	}

	var edits []edit
	for _, mt := range r.loc.LocateAll(content, anchor.Call("errorResponse")) {
		if !inScope(mt.Start) {
			continue
		}
		if repl, ok := canonicalError(mt.Groups["args"]); ok {
			edits = append(edits, edit{start: mt.Start, end: mt.End, text: repl})
		}
	}
	for _, mt := range r.loc.LocateAll(content, anchor.Call("successResponse")) {
		if !inScope(mt.Start) {
			continue
		}
		if e, ok := successEdit(content, mt); ok {
			edits = append(edits, e)
		}
	}
	for _, mt := range r.loc.LocateAll(content, anchor.Call("NextResponse.json")) {
		if !inScope(mt.Start) {
			continue
		}
		if e, ok := jsonReturnEdit(content, mt); ok {
			edits = append(edits, e)
		}
	}
	return edits
}

func standardError(code, message, status string) string {
	return "standardErrorResponse(ErrorCodes." + code + ", " + message + ", " + status + ", undefined, requestId)"
}

// canonicalError returns the standard call for one errorResponse argument list
func canonicalError(args string) (string, bool) {
	parts := anchor.SplitArgs(args)
	if len(parts) != 1 {
		return "", false
	}
	arg := parts[0]

	if m := problemCallRe.FindStringSubmatch(arg); m != nil {
		shape, ok := problemShapes[m[1]]
		if !ok {
			return "", false
		}
		message := shape.message
		if inner := anchor.SplitArgs(m[2]); len(inner) > 0 && inner[0] != "" {
			message = inner[0]
		}
		return standardError(shape.code, message, strconv.Itoa(shape.status)), true
	}

	if m := authErrorRe.FindStringSubmatch(arg); m != nil {
		e := m[1] + ".error"
		return standardError("AUTHENTICATION_REQUIRED", e+".detail || 'Authentication required'", e+".status"), true
	}

	if memberPathRe.MatchString(arg) {
		return standardError("INTERNAL_ERROR", arg+".detail || 'An unexpected error occurred'", arg+".status || 500"), true
	}
	return "", false
}

// successEdit rewrites `return successResponse(x[, status]);`
func successEdit(content string, mt anchor.Match) (edit, bool) {
	args := anchor.SplitArgs(mt.Groups["args"])
	var body string
	switch len(args) {
	case 1:
		body = args[0]
	case 2:
		body = args[0] + ", { status: " + args[1] + " }"
	default:
		return edit{}, false
	}
	return returnEdit(content, mt, body)
}

// jsonReturnEdit rewrites a one-line `return NextResponse.json(...);`
func jsonReturnEdit(content string, mt anchor.Match) (edit, bool) {
	args := mt.Groups["args"]
	if strings.TrimSpace(args) == "" {
		return edit{}, false
	}
	return returnEdit(content, mt, args)
}

// returnEdit replaces the return statement holding mt with a response
// built from body, standard headers and a return of that response
func returnEdit(content string, mt anchor.Match, body string) (edit, bool) {
	lineStart := anchor.LineStart(content, mt.Start)
	prefix := returnPrefix.FindStringIndex(content[lineStart:mt.Start])
	if prefix == nil || !onlyIndentBefore(content, lineStart+prefix[0]) {
		return edit{}, false
	}
	end := statementEnd.FindStringIndex(content[mt.End:])
	if end == nil {
		return edit{}, false
	}

	indent := anchor.Indent(content, mt.Start)
	text := "const response = NextResponse.json(" + body + ");\n" +
		indent + "addStandardHeaders(response, requestId);\n" +
		indent + "return response;"
	return edit{start: lineStart + prefix[0], end: mt.End + end[1], text: text}, true
}

// onlyIndentBefore reports whether only indentation precedes offset on its line
func onlyIndentBefore(content string, offset int) bool {
	return strings.TrimSpace(content[anchor.LineStart(content, offset):offset]) == ""
}
