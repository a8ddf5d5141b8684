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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/conformrc/pkg/standard"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

const (
	DefaultPattern = "**/route.ts"
	DefaultMarker  = "api"
)

// 📄 FileEntry is one explicitly listed handler module
type FileEntry struct {
	Path     string            `json:"path" yaml:"path"`
	Resource string            `json:"resource,omitempty" yaml:"resource,omitempty"`
	Category string            `json:"category,omitempty" yaml:"category,omitempty"`
	Actions  map[string]string `json:"actions,omitempty" yaml:"actions,omitempty"` // per-file method -> action overrides
}

// 🔍 ScanArgs discovers handler modules by glob instead of listing them
type ScanArgs struct {
	Root       string            `json:"root,omitempty" yaml:"root,omitempty"`
	Pattern    string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Marker     string            `json:"marker,omitempty" yaml:"marker,omitempty"`         // path segment preceding the resource segment
	Resources  map[string]string `json:"resources,omitempty" yaml:"resources,omitempty"`   // resource segment -> permission resource
	Categories map[string]string `json:"categories,omitempty" yaml:"categories,omitempty"` // resource segment -> audit category
}

// 📦 ImportArgs is one module of the canonical import set
type ImportArgs struct {
	Module  string   `json:"module" yaml:"module"`
	Symbols []string `json:"symbols" yaml:"symbols"`
}

// ⏱️ RateLimitArgs overrides the limit for one HTTP method
type RateLimitArgs struct {
	Method string `json:"method" yaml:"method"`
	Limit  int    `json:"limit" yaml:"limit"`
	Window int    `json:"window" yaml:"window"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// 📝 AuditArgs maps permission actions to audit constants for one category
type AuditArgs struct {
	Category string            `json:"category" yaml:"category"`
	Actions  map[string]string `json:"actions" yaml:"actions"`
}

// 📚 Config describes the corpus and the standard it is migrated to
type Config struct {
	BaseDir           string            `json:"base_dir,omitempty" yaml:"base_dir,omitempty"`
	Files             []FileEntry       `json:"files,omitempty" yaml:"files,omitempty"`
	Scan              *ScanArgs         `json:"scan,omitempty" yaml:"scan,omitempty"`
	Skip              []string          `json:"skip,omitempty" yaml:"skip,omitempty"`
	Rules             []string          `json:"rules,omitempty" yaml:"rules,omitempty"`
	Imports           []ImportArgs      `json:"imports,omitempty" yaml:"imports,omitempty"`
	Retired           []string          `json:"retired,omitempty" yaml:"retired,omitempty"`
	MethodActions     map[string]string `json:"method_actions,omitempty" yaml:"method_actions,omitempty"`
	RateLimits        []RateLimitArgs   `json:"rate_limits,omitempty" yaml:"rate_limits,omitempty"`
	Audit             []AuditArgs       `json:"audit,omitempty" yaml:"audit,omitempty"`
	CorrelationWindow int               `json:"correlation_window,omitempty" yaml:"correlation_window,omitempty"`
	Parallel          int               `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Backup            bool              `json:"backup,omitempty" yaml:"backup,omitempty"`

	location string
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	// Get parser
	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	// Parse config
	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	// base_dir is relative to the config file
	dir := filepath.Dir(path)
	switch {
	case cfg.BaseDir == "":
		cfg.BaseDir = dir
	case !filepath.IsAbs(cfg.BaseDir):
		cfg.BaseDir = filepath.Join(dir, cfg.BaseDir)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Str("base_dir", cfg.BaseDir).Int("files", len(cfg.Files)).Bool("scan", cfg.Scan != nil).Msg("configuration loaded")

	return cfg, nil
}

// Location returns the path the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 🔍 Validate checks if the configuration is valid and fills in defaults
func (cfg *Config) Validate() error {
	// Check required fields
	if len(cfg.Files) == 0 && cfg.Scan == nil {
		return errors.Errorf("files or scan is required")
	}
	if len(cfg.Files) > 0 && cfg.Scan != nil {
		return errors.Errorf("files and scan are mutually exclusive")
	}

	for i := range cfg.Files {
		f := &cfg.Files[i]
		if strings.TrimSpace(f.Path) == "" {
			return errors.Errorf("files[%d].path is required", i)
		}
		f.Path = filepath.ToSlash(filepath.Clean(f.Path))
	}

	if cfg.Scan != nil {
		if cfg.Scan.Root == "" {
			cfg.Scan.Root = "."
		}
		if cfg.Scan.Pattern == "" {
			cfg.Scan.Pattern = DefaultPattern
		}
		if cfg.Scan.Marker == "" {
			cfg.Scan.Marker = DefaultMarker
		}
		if !doublestar.ValidatePattern(cfg.Scan.Pattern) {
			return errors.Errorf("scan.pattern %q is not a valid glob", cfg.Scan.Pattern)
		}
		cfg.Scan.Root = filepath.Clean(cfg.Scan.Root)
	}

	for i, s := range cfg.Skip {
		if strings.TrimSpace(s) == "" {
			return errors.Errorf("skip[%d] is empty", i)
		}
		if !doublestar.ValidatePattern(s) {
			return errors.Errorf("skip[%d] %q is not a valid glob", i, s)
		}
	}

	for i, imp := range cfg.Imports {
		if imp.Module == "" {
			return errors.Errorf("imports[%d].module is required", i)
		}
		if len(imp.Symbols) == 0 {
			return errors.Errorf("imports[%d].symbols is required", i)
		}
	}

	for i, rl := range cfg.RateLimits {
		if rl.Method == "" {
			return errors.Errorf("rate_limits[%d].method is required", i)
		}
		if rl.Limit <= 0 || rl.Window <= 0 {
			return errors.Errorf("rate_limits[%d]: limit and window must be positive", i)
		}
	}

	for i, a := range cfg.Audit {
		if a.Category == "" {
			return errors.Errorf("audit[%d].category is required", i)
		}
	}

	if cfg.CorrelationWindow < 0 {
		return errors.Errorf("correlation_window must not be negative")
	}
	if cfg.Parallel < 0 {
		return errors.Errorf("parallel must not be negative")
	}

	// Set defaults
	if cfg.Parallel == 0 {
		cfg.Parallel = 1
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = "."
	}
	cfg.BaseDir = filepath.Clean(cfg.BaseDir)

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	mode := fmt.Sprintf("%d files", len(cfg.Files))
	if cfg.Scan != nil {
		mode = fmt.Sprintf("scan %s/%s", cfg.Scan.Root, cfg.Scan.Pattern)
	}
	return fmt.Sprintf("%s: %s, %d skipped", cfg.BaseDir, mode, len(cfg.Skip))
}

// 📚 Standard overlays the configured tables on the default standard
func (cfg *Config) Standard() *standard.Standard {
	std := standard.Default()

	if len(cfg.Imports) > 0 {
		std.Imports = make([]standard.ImportSpec, 0, len(cfg.Imports))
		for _, imp := range cfg.Imports {
			std.Imports = append(std.Imports, standard.ImportSpec{
				Module:  imp.Module,
				Symbols: append([]string(nil), imp.Symbols...),
			})
		}
	}

	if len(cfg.Retired) > 0 {
		std.Retired = append([]string(nil), cfg.Retired...)
	}

	if len(cfg.MethodActions) > 0 {
		actions := std.Actions.Map()
		for method, action := range cfg.MethodActions {
			actions[strings.ToUpper(method)] = action
		}
		std.Actions = standard.NewActionTable(actions)
	}

	if len(cfg.RateLimits) > 0 {
		limits := make(map[string]standard.RateLimit)
		for _, m := range std.Actions.Methods() {
			limits[m] = std.RateLimits.Lookup(m)
		}
		for _, rl := range cfg.RateLimits {
			limits[strings.ToUpper(rl.Method)] = standard.RateLimit{Limit: rl.Limit, Window: rl.Window, Suffix: rl.Suffix}
		}
		std.RateLimits = standard.NewRateLimitTable(limits)
	}

	if len(cfg.Audit) > 0 {
		audit := map[string]map[string]string{}
		for cat, actions := range std.Audit.Map() {
			audit[cat] = actions
		}
		for _, a := range cfg.Audit {
			audit[strings.ToUpper(a.Category)] = a.Actions
		}
		std.Audit = standard.NewAuditTable(audit)
	}

	if cfg.CorrelationWindow > 0 {
		std.CorrelationWindow = cfg.CorrelationWindow
	}

	return std
}
