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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/conformrc/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	typeWidth   = 15 // Width for resource name
	statusWidth = 15 // Width for status text
)

// 📦 RunOperation describes a batch run for logging
type RunOperation struct {
	RunID   uuid.UUID // Batch run id
	BaseDir string    // Directory task paths are relative to
	Tasks   int       // Number of tasks to execute
	Skipped int       // Number of tasks excluded up front
	DryRun  bool      // Whether writes are suppressed
}

// 🎯 Logger handles structured logging with console output
type Logger struct {
	zlog       zerolog.Logger
	console    io.Writer
	mu         sync.Mutex
	currentRun *RunOperation
	outcomes   []status.Outcome
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return NewWithZerolog(console, zlog)
}

// 🏭 NewWithZerolog creates a logger that mirrors console lines to an existing zerolog logger
func NewWithZerolog(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		mu:      sync.Mutex{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatOutcome formats an outcome for display
func (l *Logger) formatOutcome(o status.Outcome) string {
	// Determine symbol and color
	var symbol rune
	var symbolColor color.Attribute
	var detail string
	switch o.Status {
	case status.StatusUpdated:
		symbol = '⟳'
		symbolColor = color.FgBlue
		detail = fmt.Sprintf("+%d -%d", o.LinesAdded, o.LinesRemoved)
	case status.StatusFailed:
		symbol = '✗'
		symbolColor = color.FgRed
		detail = o.Reason
	case status.StatusNotFound:
		symbol = '?'
		symbolColor = color.FgMagenta
	case status.StatusSkipped:
		symbol = '•'
		symbolColor = color.FgCyan
		detail = o.Reason
	default:
		symbol = '-'
		symbolColor = color.FgYellow
	}

	resource := o.Task.Resource
	if resource == "" {
		resource = "-"
	}

	// Build the line
	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, o.Path),
		color.New(color.FgCyan).Sprint(fmt.Sprintf("%-*s", typeWidth, resource)),
		fmt.Sprintf("%-*s", statusWidth, o.Status.String()))
	if detail != "" {
		line += " " + color.New(color.Faint).Sprint(detail)
	}
	return line
}

// 📝 LogOutcome logs the outcome of one file task
func (l *Logger) LogOutcome(ctx context.Context, o status.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Add to outcome list
	l.outcomes = append(l.outcomes, o)

	// Format and print
	fmt.Fprintln(l.console, l.formatOutcome(o))

	// Log to zerolog
	ev := l.zlog.Info()
	if o.Status == status.StatusFailed {
		ev = l.zlog.Warn().Str("kind", o.Kind.String()).Str("reason", o.Reason)
	}
	ev.
		Str("file", o.Path).
		Str("status", o.Status.String()).
		Strs("rules", o.Rules).
		Int("bytes_delta", o.BytesDelta).
		Int("lines_added", o.LinesAdded).
		Int("lines_removed", o.LinesRemoved).
		Msg("file outcome")
}

// 📝 StartRun starts a new batch run
func (l *Logger) StartRun(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentRun = &op
	l.outcomes = nil

	mode := "apply"
	if op.DryRun {
		mode = "dry-run"
	}

	// Print run header
	fmt.Fprintf(l.console, "[conforming %s]\n",
		color.New(color.FgCyan).Sprint(op.BaseDir))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d files", op.Tasks),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(mode))

	// Log to zerolog
	l.zlog.Info().
		Str("run_id", op.RunID.String()).
		Str("base_dir", op.BaseDir).
		Int("tasks", op.Tasks).
		Int("skipped", op.Skipped).
		Bool("dry_run", op.DryRun).
		Msg("starting batch run")
}

// 📝 EndRun ends the current run and prints the totals
func (l *Logger) EndRun(ctx context.Context, report *status.BatchReport) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentRun == nil {
		return
	}

	c := report.Counts()
	fmt.Fprintf(l.console, "\n%s updated %d, unchanged %d, not found %d, failed %d, skipped %d\n",
		color.New(color.Bold).Sprintf("%d files:", c.Total),
		c.Updated, c.Unchanged, c.NotFound, c.Failed, c.Skipped)

	// Log summary
	l.zlog.Info().
		Str("run_id", report.RunID.String()).
		Int("files", len(l.outcomes)).
		Int("updated", c.Updated).
		Int("failed", c.Failed).
		Dur("duration", report.Duration()).
		Msg("batch run complete")

	l.currentRun = nil
	l.outcomes = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	nameText := color.New(color.Bold, color.FgCyan).Sprint("conformrc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", nameText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
