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

// Package resolve turns a config into the ordered list of file tasks for a run.
package resolve

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/conformrc/pkg/config"
	"github.com/walteh/conformrc/pkg/standard"
	"github.com/walteh/conformrc/pkg/task"
	"gitlab.com/tozd/go/errors"
)

// ReasonNoMapping marks scanned files whose resource segment has no mapping
const ReasonNoMapping = "no resource mapping"

// 📋 Result is the resolved file set. Tasks keep config or sorted-scan order.
type Result struct {
	Tasks   []task.FileTask
	Skipped []task.FileTask
}

// All returns tasks followed by skipped tasks
func (r *Result) All() []task.FileTask {
	out := make([]task.FileTask, 0, len(r.Tasks)+len(r.Skipped))
	out = append(out, r.Tasks...)
	return append(out, r.Skipped...)
}

// 🎯 Resolve builds the file tasks described by cfg.
// Listed files keep their order; scanned files are sorted by path.
func Resolve(ctx context.Context, cfg *config.Config) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	std := cfg.Standard()

	var (
		res *Result
		err error
	)
	if cfg.Scan != nil {
		res, err = scan(ctx, cfg, std)
	} else {
		res = list(cfg, std)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("tasks", len(res.Tasks)).Int("skipped", len(res.Skipped)).Msg("file set resolved")
	return res, nil
}

func list(cfg *config.Config, std *standard.Standard) *Result {
	res := &Result{}
	for _, f := range cfg.Files {
		t := task.FileTask{
			Path:     f.Path,
			Resource: f.Resource,
			Category: f.Category,
			Actions:  mergeActions(std.Actions, f.Actions),
		}
		res.add(t, cfg.Skip)
	}
	return res
}

func scan(ctx context.Context, cfg *config.Config, std *standard.Standard) (*Result, error) {
	root := filepath.Join(cfg.BaseDir, cfg.Scan.Root)
	if _, err := os.Stat(root); err != nil {
		return nil, errors.Errorf("scan root: %w", err)
	}

	matches, err := doublestar.Glob(os.DirFS(root), cfg.Scan.Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("scanning %s: %w", root, err)
	}
	sort.Strings(matches)

	res := &Result{}
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel := path.Join(filepath.ToSlash(cfg.Scan.Root), m)

		t := task.FileTask{Path: rel, Actions: std.Actions}
		key, ok := resourceSegment(rel, cfg.Scan.Marker)
		if ok {
			t.Resource, ok = lookup(cfg.Scan.Resources, key, cfg.Scan.Marker)
			t.Category, _ = lookup(cfg.Scan.Categories, key, cfg.Scan.Marker)
		}
		if !ok && !skipped(rel, cfg.Skip) {
			t.Skip = true
			t.SkipReason = ReasonNoMapping
			res.Skipped = append(res.Skipped, t)
			continue
		}
		res.add(t, cfg.Skip)
	}
	return res, nil
}

func (r *Result) add(t task.FileTask, skip []string) {
	if entry, ok := matchSkip(t.Path, skip); ok {
		t.Skip = true
		t.SkipReason = "matches skip entry " + entry
		r.Skipped = append(r.Skipped, t)
		return
	}
	r.Tasks = append(r.Tasks, t)
}

func skipped(p string, skip []string) bool {
	_, ok := matchSkip(p, skip)
	return ok
}

// 🚫 matchSkip reports the first skip entry matching the path.
// An entry matches as a segment-aligned prefix or infix, or as a glob.
func matchSkip(p string, skip []string) (string, bool) {
	p = filepath.ToSlash(p)
	padded := "/" + strings.Trim(p, "/") + "/"
	for _, entry := range skip {
		trimmed := strings.Trim(filepath.ToSlash(entry), "/")
		if trimmed == "" {
			continue
		}
		if strings.Contains(padded, "/"+trimmed+"/") {
			return entry, true
		}
		if ok, _ := doublestar.Match(trimmed, strings.Trim(p, "/")); ok {
			return entry, true
		}
	}
	return "", false
}

// resourceSegment returns the path segment following the marker segment
func resourceSegment(p, marker string) (string, bool) {
	segs := strings.Split(p, "/")
	for i := 0; i < len(segs)-1; i++ {
		if segs[i] == marker {
			return segs[i+1], true
		}
	}
	return "", false
}

// lookup accepts both "hotels" and "/api/hotels" style keys
func lookup(m map[string]string, key, marker string) (string, bool) {
	if v, ok := m[key]; ok && v != "" {
		return v, true
	}
	if v, ok := m["/"+marker+"/"+key]; ok && v != "" {
		return v, true
	}
	return "", false
}

func mergeActions(base standard.ActionTable, overrides map[string]string) standard.ActionTable {
	if len(overrides) == 0 {
		return base
	}
	m := base.Map()
	for method, action := range overrides {
		m[strings.ToUpper(method)] = action
	}
	return standard.NewActionTable(m)
}
