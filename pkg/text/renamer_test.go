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

package text

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallRenamer_Rename(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		rules        []RenameRule
		want         string
		wantCount    int
		wantModified bool
	}{
		{
			name:         "simple_rename",
			content:      "const p = parsePaginationParams(searchParams);",
			rules:        []RenameRule{{From: "parsePaginationParams", To: "parseStandardPaginationParams"}},
			want:         "const p = parseStandardPaginationParams(searchParams);",
			wantCount:    1,
			wantModified: true,
		},
		{
			name:         "arguments_untouched",
			content:      "buildPagedResponse(items, buildPagedResponse, total)",
			rules:        []RenameRule{{From: "buildPagedResponse", To: "buildStandardListResponse"}},
			want:         "buildStandardListResponse(items, buildPagedResponse, total)",
			wantCount:    1,
			wantModified: true,
		},
		{
			name:         "identifier_boundary",
			content:      "myparsePaginationParams(x); obj.parsePaginationParams(y); parsePaginationParamsX(z);",
			rules:        []RenameRule{{From: "parsePaginationParams", To: "parseStandardPaginationParams"}},
			want:         "myparsePaginationParams(x); obj.parsePaginationParams(y); parsePaginationParamsX(z);",
			wantCount:    0,
			wantModified: false,
		},
		{
			name:    "multiple_rules",
			content: "const p = parsePaginationParams(s);\nreturn buildPagedResponse(rows, p);",
			rules: []RenameRule{
				{From: "parsePaginationParams", To: "parseStandardPaginationParams"},
				{From: "buildPagedResponse", To: "buildStandardListResponse"},
			},
			want:         "const p = parseStandardPaginationParams(s);\nreturn buildStandardListResponse(rows, p);",
			wantCount:    2,
			wantModified: true,
		},
		{
			name:         "import_list_not_a_call",
			content:      "import { parsePaginationParams } from '@/lib/pagination';",
			rules:        []RenameRule{{From: "parsePaginationParams", To: "parseStandardPaginationParams"}},
			want:         "import { parsePaginationParams } from '@/lib/pagination';",
			wantCount:    0,
			wantModified: false,
		},
		{
			name:         "empty_content",
			content:      "",
			rules:        []RenameRule{{From: "a", To: "b"}},
			want:         "",
			wantModified: false,
		},
		{
			name:         "empty_rules",
			content:      "parsePaginationParams(x)",
			rules:        nil,
			want:         "parsePaginationParams(x)",
			wantModified: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renamer := NewCallRenamer()
			result, err := renamer.Rename(context.Background(), strings.NewReader(tt.content), tt.rules)
			require.NoError(t, err, "renaming should succeed")
			assert.Equal(t, tt.want, string(result.ModifiedContent), "content should match")
			assert.Equal(t, tt.content, string(result.OriginalContent), "original content should be kept")
			assert.Equal(t, tt.wantCount, result.RenameCount, "rename count should match")
			assert.Equal(t, tt.wantModified, result.WasModified, "modified flag should match")
		})
	}
}

func TestCallRenamer_RenameCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCallRenamer().Rename(ctx, strings.NewReader("a(1)"), []RenameRule{{From: "a", To: "b"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCallRenamer_ValidateRules(t *testing.T) {
	tests := []struct {
		name      string
		rules     []RenameRule
		wantError string
	}{
		{
			name:  "valid_rules",
			rules: []RenameRule{{From: "parsePaginationParams", To: "parseStandardPaginationParams"}},
		},
		{
			name:      "missing_from",
			rules:     []RenameRule{{To: "x"}},
			wantError: "rule 0: from is required",
		},
		{
			name:      "bad_to",
			rules:     []RenameRule{{From: "a", To: "b"}, {From: "a", To: "not an ident"}},
			wantError: `rule 1: to "not an ident" is not an identifier`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCallRenamer().ValidateRules(tt.rules)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestHasCallSite(t *testing.T) {
	assert.True(t, HasCallSite("x = getRequestId(request);", "getRequestId"))
	assert.True(t, HasCallSite("getRequestId (request)", "getRequestId"))
	assert.False(t, HasCallSite("x = mygetRequestId(request);", "getRequestId"))
	assert.False(t, HasCallSite("import { getRequestId } from 'x';", "getRequestId"))
}
