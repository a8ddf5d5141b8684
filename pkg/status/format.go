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

package status

import (
	"fmt"
	"strings"
)

// FileFormatter defines how outcomes and errors should be formatted
type FileFormatter interface {
	// FormatOutcome formats a single file outcome
	FormatOutcome(o Outcome) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFileFormatter provides a default implementation of FileFormatter
type DefaultFileFormatter struct{}

// NewDefaultFileFormatter creates a new DefaultFileFormatter
func NewDefaultFileFormatter() *DefaultFileFormatter {
	return &DefaultFileFormatter{}
}

// FormatOutcome formats an outcome with emojis
func (f *DefaultFileFormatter) FormatOutcome(o Outcome) string {
	switch o.Status {
	case StatusUpdated:
		if len(o.Rules) == 0 {
			return fmt.Sprintf("📝 Updated %s", o.Path)
		}
		return fmt.Sprintf("📝 Updated %s [%s]", o.Path, strings.Join(o.Rules, ", "))
	case StatusNotFound:
		return fmt.Sprintf("🔍 Not found %s", o.Path)
	case StatusFailed:
		return fmt.Sprintf("❌ Failed %s: %s", o.Path, o.Reason)
	case StatusSkipped:
		return fmt.Sprintf("⏭️  Skipped %s: %s", o.Path, o.Reason)
	default:
		return fmt.Sprintf("👍 Unchanged %s", o.Path)
	}
}

// FormatError formats an error message with emoji
func (f *DefaultFileFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
