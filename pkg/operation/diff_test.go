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

package operation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineDiff(t *testing.T) {
	tests := []struct {
		name        string
		before      string
		after       string
		wantAdded   int
		wantRemoved int
		wantDiff    string
	}{
		{
			name:        "insertion",
			before:      "a\nb\n",
			after:       "a\nx\nb\n",
			wantAdded:   1,
			wantRemoved: 0,
			wantDiff:    "--- a/f.ts\n+++ b/f.ts\n a\n+x\n b\n",
		},
		{
			name:        "replacement",
			before:      "a\nb\nc\n",
			after:       "a\ny\nz\nc\n",
			wantAdded:   2,
			wantRemoved: 1,
			wantDiff:    "--- a/f.ts\n+++ b/f.ts\n a\n-b\n+y\n+z\n c\n",
		},
		{
			name:        "context_is_trimmed",
			before:      "1\n2\n3\n4\n5\nold\n6\n",
			after:       "1\n2\n3\n4\n5\nnew\n6\n",
			wantAdded:   1,
			wantRemoved: 1,
			wantDiff:    "--- a/f.ts\n+++ b/f.ts\n@@\n 4\n 5\n-old\n+new\n 6\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff, added, removed := lineDiff("f.ts", tt.before, tt.after)
			assert.Equal(t, tt.wantAdded, added)
			assert.Equal(t, tt.wantRemoved, removed)
			assert.Equal(t, tt.wantDiff, diff)
		})
	}
}
