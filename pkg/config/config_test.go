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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		wantErr     bool
		errContains string
		check       func(t *testing.T, dir string, cfg *Config)
	}{
		{
			name:     "listed_files",
			filename: ".conformrc.yaml",
			config: `
files:
  - path: src/app/api/providers/route.ts
    resource: providers
    category: PROVIDER
  - path: src/app/api/hotels/[id]/route.ts
    resource: hotels
    actions:
      POST: manage
skip:
  - /api/auth
parallel: 4
backup: true
`,
			check: func(t *testing.T, dir string, cfg *Config) {
				require.Len(t, cfg.Files, 2, "should have 2 files")
				assert.Equal(t, "src/app/api/providers/route.ts", cfg.Files[0].Path, "path should match")
				assert.Equal(t, "PROVIDER", cfg.Files[0].Category, "category should match")
				assert.Equal(t, "manage", cfg.Files[1].Actions["POST"], "action override should match")
				assert.Equal(t, []string{"/api/auth"}, cfg.Skip, "skip should match")
				assert.Equal(t, 4, cfg.Parallel, "parallel should match")
				assert.True(t, cfg.Backup, "backup should be true")
				assert.Equal(t, dir, cfg.BaseDir, "base dir defaults to the config directory")
			},
		},
		{
			name:     "scan_defaults",
			filename: ".conformrc.yml",
			config: `
base_dir: web
scan:
  resources:
    providers: providers
`,
			check: func(t *testing.T, dir string, cfg *Config) {
				require.NotNil(t, cfg.Scan, "scan should be set")
				assert.Equal(t, ".", cfg.Scan.Root, "root should default")
				assert.Equal(t, DefaultPattern, cfg.Scan.Pattern, "pattern should default")
				assert.Equal(t, DefaultMarker, cfg.Scan.Marker, "marker should default")
				assert.Equal(t, 1, cfg.Parallel, "parallel should default to 1")
				assert.Equal(t, filepath.Join(dir, "web"), cfg.BaseDir, "base dir is relative to the config")
			},
		},
		{
			name:     "hcl_config",
			filename: "conformrc.hcl",
			config: `
skip = ["/api/auth"]

file "src/app/api/providers/route.ts" {
  resource = "providers"
  category = "PROVIDER"
  actions  = { DELETE = "remove" }
}

rate_limit "POST" {
  limit  = 10
  window = 60
  suffix = "_create"
}

audit "HOTEL" {
  actions = { create = "HOTEL_CREATED" }
}

correlation_window = 5
`,
			check: func(t *testing.T, dir string, cfg *Config) {
				require.Len(t, cfg.Files, 1, "should have 1 file")
				assert.Equal(t, "providers", cfg.Files[0].Resource, "resource should match")
				assert.Equal(t, "remove", cfg.Files[0].Actions["DELETE"], "action override should match")
				require.Len(t, cfg.RateLimits, 1, "should have 1 rate limit")
				assert.Equal(t, RateLimitArgs{Method: "POST", Limit: 10, Window: 60, Suffix: "_create"}, cfg.RateLimits[0])
				require.Len(t, cfg.Audit, 1, "should have 1 audit entry")
				assert.Equal(t, "HOTEL_CREATED", cfg.Audit[0].Actions["create"])
				assert.Equal(t, 5, cfg.CorrelationWindow)
			},
		},
		{
			name:     "json_config",
			filename: "conformrc.json",
			config:   `{"files": [{"path": "a/route.ts", "resource": "a"}], "rules": ["import-normalization"]}`,
			check: func(t *testing.T, dir string, cfg *Config) {
				require.Len(t, cfg.Files, 1)
				assert.Equal(t, []string{"import-normalization"}, cfg.Rules)
			},
		},
		{
			name:        "unknown_field",
			filename:    ".conformrc.yaml",
			config:      "files: [{path: a.ts}]\ndestination: nope\n",
			wantErr:     true,
			errContains: "field destination not found",
		},
		{
			name:        "missing_files_and_scan",
			filename:    ".conformrc.yaml",
			config:      "parallel: 2\n",
			wantErr:     true,
			errContains: "files or scan is required",
		},
		{
			name:        "files_and_scan",
			filename:    ".conformrc.yaml",
			config:      "files: [{path: a.ts}]\nscan: {root: src}\n",
			wantErr:     true,
			errContains: "mutually exclusive",
		},
		{
			name:        "bad_rate_limit",
			filename:    ".conformrc.yaml",
			config:      "files: [{path: a.ts}]\nrate_limits: [{method: GET, limit: 0, window: 60}]\n",
			wantErr:     true,
			errContains: "limit and window must be positive",
		},
		{
			name:        "malformed_yaml",
			filename:    ".conformrc.yaml",
			config:      "files: [\n",
			wantErr:     true,
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_extension",
			filename:    "conformrc.toml",
			config:      "",
			wantErr:     true,
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

			// Create temporary config file
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, tt.filename)
			err := os.WriteFile(configPath, []byte(tt.config), 0644)
			require.NoError(t, err, "writing config file should succeed")

			// Load config
			cfg, err := Load(ctx, configPath)
			if tt.wantErr {
				require.Error(t, err, "Load should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "Load should succeed")
			assert.Equal(t, configPath, cfg.Location(), "location should be recorded")
			if tt.check != nil {
				tt.check(t, tmpDir, cfg)
			}
		})
	}
}

func TestLoad_missing_file(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), ".conformrc.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestConfigStandard(t *testing.T) {
	t.Run("defaults_without_overrides", func(t *testing.T) {
		cfg := &Config{Files: []FileEntry{{Path: "a.ts"}}}
		require.NoError(t, cfg.Validate())

		std := cfg.Standard()
		assert.Equal(t, 10, std.CorrelationWindow)
		action, ok := std.Actions.Lookup("POST")
		require.True(t, ok)
		assert.Equal(t, "create", action)
	})

	t.Run("overlays_tables", func(t *testing.T) {
		cfg := &Config{
			Files:             []FileEntry{{Path: "a.ts"}},
			Imports:           []ImportArgs{{Module: "next/server", Symbols: []string{"NextResponse"}}},
			Retired:           []string{"oldHelper"},
			MethodActions:     map[string]string{"post": "write"},
			RateLimits:        []RateLimitArgs{{Method: "delete", Limit: 5, Window: 60, Suffix: "_delete"}},
			Audit:             []AuditArgs{{Category: "hotel", Actions: map[string]string{"create": "HOTEL_CREATED"}}},
			CorrelationWindow: 3,
		}
		require.NoError(t, cfg.Validate())

		std := cfg.Standard()
		assert.Equal(t, []string{"NextResponse"}, std.CanonicalSymbols())
		assert.Equal(t, []string{"oldHelper"}, std.Retired)

		action, _ := std.Actions.Lookup("POST")
		assert.Equal(t, "write", action, "override should win")
		action, _ = std.Actions.Lookup("GET")
		assert.Equal(t, "read", action, "defaults should survive")

		assert.Equal(t, 5, std.RateLimits.Lookup("DELETE").Limit)
		assert.Equal(t, 100, std.RateLimits.Lookup("GET").Limit)

		audit, ok := std.Audit.Lookup("HOTEL", "create")
		require.True(t, ok)
		assert.Equal(t, "HOTEL_CREATED", audit)
		_, ok = std.Audit.Lookup("PROVIDER", "create")
		assert.True(t, ok, "default categories should survive")

		assert.Equal(t, 3, std.CorrelationWindow)
	})
}

func TestConfigString(t *testing.T) {
	cfg := &Config{BaseDir: "web", Files: []FileEntry{{Path: "a.ts"}, {Path: "b.ts"}}, Skip: []string{"/api/auth"}}
	assert.Equal(t, "web: 2 files, 1 skipped", cfg.String())

	cfg = &Config{BaseDir: ".", Scan: &ScanArgs{Root: "src", Pattern: "**/route.ts"}}
	assert.Equal(t, ".: scan src/**/route.ts, 0 skipped", cfg.String())
}
