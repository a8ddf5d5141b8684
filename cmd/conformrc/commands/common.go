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

package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/conformrc/cmd/conformrc/opts"
	"github.com/walteh/conformrc/pkg/anchor"
	"github.com/walteh/conformrc/pkg/config"
	"github.com/walteh/conformrc/pkg/log"
	"github.com/walteh/conformrc/pkg/operation"
	"github.com/walteh/conformrc/pkg/pipeline"
	"github.com/walteh/conformrc/pkg/resolve"
	"github.com/walteh/conformrc/pkg/rule"
	"github.com/walteh/conformrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// runFlags are shared by run, plan and watch
type runFlags struct {
	parallel int
	backup   bool
	rules    []string
	report   string
}

func (f *runFlags) register(cmd *cobra.Command, writes bool) {
	cmd.Flags().IntVar(&f.parallel, "parallel", 0, "number of files processed at once (overrides config)")
	cmd.Flags().StringSliceVar(&f.rules, "rules", nil, "comma separated rule names to run (overrides config)")
	cmd.Flags().StringVar(&f.report, "report", "", "write the batch report to this file (.json for JSON, text otherwise)")
	if writes {
		cmd.Flags().BoolVar(&f.backup, "backup", false, "keep a .bak copy of every rewritten file")
	}
}

// session is everything a batch needs, built from the config and flags
type session struct {
	cfg      *config.Config
	resolved *resolve.Result
	rules    []rule.Rule
	exec     *operation.Executor
}

func prepare(ctx context.Context, o *opts.RootOpts, f *runFlags, dryRun bool) (*session, error) {
	logger := zerolog.Ctx(ctx)

	cfg, err := o.Config(ctx)
	if err != nil {
		return nil, err
	}

	matcher, err := anchor.NewMatcher(anchor.DefaultCacheSize)
	if err != nil {
		return nil, errors.Errorf("creating matcher: %w", err)
	}

	names := f.rules
	if len(names) == 0 {
		names = cfg.Rules
	}
	rules, err := rule.Select(rule.Catalog(cfg.Standard(), matcher), names)
	if err != nil {
		return nil, errors.Errorf("selecting rules: %w", err)
	}

	resolved, err := resolve.Resolve(ctx, cfg)
	if err != nil {
		return nil, errors.Errorf("resolving files: %w", err)
	}

	parallel := cfg.Parallel
	if f.parallel > 0 {
		parallel = f.parallel
	}

	exec, err := operation.New(operation.Options{
		Files:     status.New(cfg.BaseDir, logger),
		Pipeline:  pipeline.New(rules),
		DryRun:    dryRun,
		Backup:    cfg.Backup || f.backup,
		Parallel:  parallel,
		OnOutcome: o.Console.LogOutcome,
	})
	if err != nil {
		return nil, errors.Errorf("creating executor: %w", err)
	}

	logger.Debug().Str("config", cfg.String()).Strs("rules", rule.Names(rules)).Int("parallel", parallel).Msg("session prepared")

	return &session{cfg: cfg, resolved: resolved, rules: rules, exec: exec}, nil
}

// execute runs the whole file set and writes the optional report file
func (s *session) execute(ctx context.Context, console *log.Logger, reportPath string) (*status.BatchReport, error) {
	report := status.NewBatchReport(s.exec.DryRun())

	console.StartRun(ctx, log.RunOperation{
		RunID:   report.RunID,
		BaseDir: s.cfg.BaseDir,
		Tasks:   len(s.resolved.Tasks),
		Skipped: len(s.resolved.Skipped),
		DryRun:  s.exec.DryRun(),
	})
	s.exec.ExecuteInto(ctx, report, s.resolved.All())
	console.EndRun(ctx, report)

	if reportPath != "" {
		if err := writeReport(reportPath, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func writeReport(path string, report *status.BatchReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Errorf("creating report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Errorf("creating report: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return status.WriteJSON(f, report)
	}
	if _, err := f.WriteString(status.Summarize(report)); err != nil {
		return errors.Errorf("writing report: %w", err)
	}
	return nil
}
