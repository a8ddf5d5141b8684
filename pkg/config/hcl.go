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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL.
//
//	base_dir = "."
//	skip     = ["/api/auth"]
//
//	file "src/app/api/providers/route.ts" {
//	  resource = "providers"
//	  category = "PROVIDER"
//	}
//
//	rate_limit "POST" {
//	  limit  = 50
//	  window = 3600
//	  suffix = "_create"
//	}
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclConfig struct {
		BaseDir string `hcl:"base_dir,optional"`
		Files   []struct {
			Path     string            `hcl:"path,label"`
			Resource string            `hcl:"resource,optional"`
			Category string            `hcl:"category,optional"`
			Actions  map[string]string `hcl:"actions,optional"`
		} `hcl:"file,block"`
		Scan *struct {
			Root       string            `hcl:"root,optional"`
			Pattern    string            `hcl:"pattern,optional"`
			Marker     string            `hcl:"marker,optional"`
			Resources  map[string]string `hcl:"resources,optional"`
			Categories map[string]string `hcl:"categories,optional"`
		} `hcl:"scan,block"`
		Skip    []string `hcl:"skip,optional"`
		Rules   []string `hcl:"rules,optional"`
		Imports []struct {
			Module  string   `hcl:"module,label"`
			Symbols []string `hcl:"symbols"`
		} `hcl:"import,block"`
		Retired       []string          `hcl:"retired,optional"`
		MethodActions map[string]string `hcl:"method_actions,optional"`
		RateLimits    []struct {
			Method string `hcl:"method,label"`
			Limit  int    `hcl:"limit"`
			Window int    `hcl:"window"`
			Suffix string `hcl:"suffix,optional"`
		} `hcl:"rate_limit,block"`
		Audit []struct {
			Category string            `hcl:"category,label"`
			Actions  map[string]string `hcl:"actions"`
		} `hcl:"audit,block"`
		CorrelationWindow int  `hcl:"correlation_window,optional"`
		Parallel          int  `hcl:"parallel,optional"`
		Backup            bool `hcl:"backup,optional"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		BaseDir:           hclCfg.BaseDir,
		Skip:              hclCfg.Skip,
		Rules:             hclCfg.Rules,
		Retired:           hclCfg.Retired,
		MethodActions:     hclCfg.MethodActions,
		CorrelationWindow: hclCfg.CorrelationWindow,
		Parallel:          hclCfg.Parallel,
		Backup:            hclCfg.Backup,
	}

	for _, f := range hclCfg.Files {
		cfg.Files = append(cfg.Files, FileEntry{
			Path:     f.Path,
			Resource: f.Resource,
			Category: f.Category,
			Actions:  f.Actions,
		})
	}

	if hclCfg.Scan != nil {
		cfg.Scan = &ScanArgs{
			Root:       hclCfg.Scan.Root,
			Pattern:    hclCfg.Scan.Pattern,
			Marker:     hclCfg.Scan.Marker,
			Resources:  hclCfg.Scan.Resources,
			Categories: hclCfg.Scan.Categories,
		}
	}

	for _, imp := range hclCfg.Imports {
		cfg.Imports = append(cfg.Imports, ImportArgs{Module: imp.Module, Symbols: imp.Symbols})
	}

	for _, rl := range hclCfg.RateLimits {
		cfg.RateLimits = append(cfg.RateLimits, RateLimitArgs{
			Method: rl.Method,
			Limit:  rl.Limit,
			Window: rl.Window,
			Suffix: rl.Suffix,
		})
	}

	for _, a := range hclCfg.Audit {
		cfg.Audit = append(cfg.Audit, AuditArgs{Category: a.Category, Actions: a.Actions})
	}

	return cfg, nil
}
