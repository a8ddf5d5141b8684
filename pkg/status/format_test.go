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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFileFormatter_FormatOutcome(t *testing.T) {
	f := NewDefaultFileFormatter()

	tests := []struct {
		name        string
		outcome     Outcome
		want        string
		description string
	}{
		{
			name:        "updated_with_rules",
			outcome:     Outcome{Path: "a/route.ts", Status: StatusUpdated, Rules: []string{"audit-logging"}},
			want:        "📝 Updated a/route.ts [audit-logging]",
			description: "updated files list the rules that changed them",
		},
		{
			name:        "unchanged",
			outcome:     Outcome{Path: "a/route.ts", Status: StatusUnchanged},
			want:        "👍 Unchanged a/route.ts",
			description: "unchanged files get a thumbs up",
		},
		{
			name:        "not_found",
			outcome:     Outcome{Path: "a/route.ts", Status: StatusNotFound},
			want:        "🔍 Not found a/route.ts",
			description: "missing files are called out",
		},
		{
			name:        "failed",
			outcome:     Outcome{Path: "a/route.ts", Status: StatusFailed, Reason: "cancelled"},
			want:        "❌ Failed a/route.ts: cancelled",
			description: "failures carry the reason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.FormatOutcome(tt.outcome), tt.description)
		})
	}
}

func TestDefaultFileFormatter_FormatError(t *testing.T) {
	f := NewDefaultFileFormatter()
	assert.Equal(t, "", f.FormatError(nil))
	assert.Equal(t, "❌ Error: boom", f.FormatError(errors.New("boom")))
}
