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

// Package operation executes a batch of file tasks through the rule pipeline
package operation

import (
	"context"
	"io/fs"

	"github.com/rs/zerolog"
	"github.com/walteh/conformrc/pkg/pipeline"
	"github.com/walteh/conformrc/pkg/status"
	"github.com/walteh/conformrc/pkg/task"
	"gitlab.com/tozd/go/errors"
)

// ReasonCancelled marks tasks that never started because the run was cancelled
const ReasonCancelled = "cancelled"

// 🎯 Runner transforms one file's content. *pipeline.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, content string, t task.FileTask) (*pipeline.Result, error)
}

// 🔧 Options contains configuration for the executor
type Options struct {
	// Files performs every read and write of the run
	Files status.FileManager
	// Pipeline transforms file content
	Pipeline Runner
	// DryRun computes outcomes and diffs without writing
	DryRun bool
	// Backup copies each file to <path>.bak before it is overwritten
	Backup bool
	// Parallel is the number of files processed at once, 1 when unset
	Parallel int
	// OnOutcome observes finished tasks. Sequential runs call it as each task
	// finishes; parallel runs call it in report order once all tasks finish.
	OnOutcome func(ctx context.Context, o status.Outcome)
}

// 🏭 Executor applies the pipeline to every task of a batch
type Executor struct {
	opts Options
}

// 🏭 New creates a new executor with the given options
func New(opts Options) (*Executor, error) {
	if opts.Files == nil {
		return nil, errors.Errorf("file manager is required")
	}
	if opts.Pipeline == nil {
		return nil, errors.Errorf("pipeline is required")
	}
	if opts.Parallel < 0 {
		return nil, errors.Errorf("parallel must not be negative")
	}
	if opts.Parallel == 0 {
		opts.Parallel = 1
	}
	return &Executor{opts: opts}, nil
}

// DryRun reports whether the executor writes files
func (e *Executor) DryRun() bool {
	return e.opts.DryRun
}

// 🏃 Execute runs every task and returns the report in task order.
// A failing file never stops the batch.
func (e *Executor) Execute(ctx context.Context, tasks []task.FileTask) *status.BatchReport {
	report := status.NewBatchReport(e.opts.DryRun)
	e.ExecuteInto(ctx, report, tasks)
	return report
}

// ExecuteInto records the outcomes of tasks into an existing report and finishes it
func (e *Executor) ExecuteInto(ctx context.Context, report *status.BatchReport, tasks []task.FileTask) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("run_id", report.RunID.String()).Int("tasks", len(tasks)).Int("parallel", e.opts.Parallel).Bool("dry_run", e.opts.DryRun).Msg("executing batch")

	runner := newTaskRunner(e.opts.Parallel)
	outcomes := runner.run(ctx, len(tasks), func(ctx context.Context, i int) status.Outcome {
		o := e.ExecuteOne(ctx, tasks[i])
		if runner.sequential() && e.opts.OnOutcome != nil {
			e.opts.OnOutcome(ctx, o)
		}
		return o
	})

	for _, o := range outcomes {
		if !runner.sequential() && e.opts.OnOutcome != nil {
			e.opts.OnOutcome(ctx, o)
		}
		report.Add(o)
	}
	report.Finish()

	c := report.Counts()
	logger.Debug().Str("run_id", report.RunID.String()).Int("updated", c.Updated).Int("failed", c.Failed).Int("not_found", c.NotFound).Msg("batch executed")
}

// 📄 ExecuteOne runs a single task. The file is read at most once and
// written at most once; any failure leaves it untouched.
func (e *Executor) ExecuteOne(ctx context.Context, t task.FileTask) status.Outcome {
	logger := zerolog.Ctx(ctx).With().Str("file", t.Path).Logger()

	if t.Skip {
		o := status.NewOutcome(t, status.StatusSkipped)
		o.Reason = t.SkipReason
		return o
	}

	if ctx.Err() != nil {
		return status.Failure(t, status.KindNone, ReasonCancelled)
	}

	exists, err := e.opts.Files.FileExists(ctx, t.Path)
	if err != nil {
		return status.Failure(t, status.KindReadWriteFailure, err.Error())
	}
	if !exists {
		o := status.NewOutcome(t, status.StatusNotFound)
		o.Kind = status.KindFileNotFound
		o.Reason = "file does not exist"
		return o
	}

	content, err := e.opts.Files.ReadFile(ctx, t.Path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return status.Failure(t, status.KindNone, ReasonCancelled)
		}
		if errors.Is(err, fs.ErrNotExist) {
			o := status.NewOutcome(t, status.StatusNotFound)
			o.Kind = status.KindFileNotFound
			o.Reason = "file does not exist"
			return o
		}
		return status.Failure(t, status.KindReadWriteFailure, err.Error())
	}

	before := string(content)
	res, err := e.opts.Pipeline.Run(ctx, before, t)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return status.Failure(t, status.KindNone, ReasonCancelled)
		}
		logger.Debug().Err(err).Msg("pipeline failed")
		return status.Failure(t, status.KindRuleApplicationFailure, err.Error())
	}

	if res.Content == before {
		return status.NewOutcome(t, status.StatusUnchanged)
	}

	o := status.NewOutcome(t, status.StatusUpdated)
	o.Rules = res.Applied
	o.BytesDelta = len(res.Content) - len(before)
	diff, added, removed := lineDiff(t.Path, before, res.Content)
	o.LinesAdded = added
	o.LinesRemoved = removed

	if e.opts.DryRun {
		o.Diff = diff
		return o
	}

	if e.opts.Backup {
		if err := e.opts.Files.BackupFile(ctx, t.Path); err != nil {
			return status.Failure(t, status.KindReadWriteFailure, err.Error())
		}
	}

	if err := e.opts.Files.WriteFileAtomic(ctx, t.Path, []byte(res.Content)); err != nil {
		return status.Failure(t, status.KindReadWriteFailure, err.Error())
	}

	logger.Debug().Strs("rules", o.Rules).Int("bytes_delta", o.BytesDelta).Msg("file updated")
	return o
}
