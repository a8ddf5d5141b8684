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
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/walteh/conformrc/pkg/task"
	"gitlab.com/tozd/go/errors"
)

// 📄 Outcome is the recorded result of one file task
type Outcome struct {
	Task         task.FileTask `json:"-"`
	Path         string        `json:"path"`
	Status       FileStatus    `json:"status"`
	Kind         ErrorKind     `json:"kind,omitempty"`
	Reason       string        `json:"reason,omitempty"`
	BytesDelta   int           `json:"bytes_delta,omitempty"`
	LinesAdded   int           `json:"lines_added,omitempty"`
	LinesRemoved int           `json:"lines_removed,omitempty"`
	Rules        []string      `json:"rules,omitempty"`
	Diff         string        `json:"diff,omitempty"`
}

// NewOutcome starts an outcome for a task
func NewOutcome(t task.FileTask, s FileStatus) Outcome {
	return Outcome{Task: t, Path: t.Path, Status: s}
}

// Failure builds a failed outcome of the given kind
func Failure(t task.FileTask, kind ErrorKind, reason string) Outcome {
	o := NewOutcome(t, StatusFailed)
	o.Kind = kind
	o.Reason = reason
	return o
}

// 📋 Counts tallies outcomes per status
type Counts struct {
	Total     int `json:"total"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	NotFound  int `json:"not_found"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// 📦 BatchReport is the ordered record of one run.
// Outcomes appear in resolver order; skipped tasks follow in a separate list.
type BatchReport struct {
	RunID      uuid.UUID `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`
	Outcomes   []Outcome `json:"outcomes"`
	Skipped    []Outcome `json:"skipped,omitempty"`

	mu sync.Mutex
}

// 🏭 NewBatchReport creates an empty report stamped with a fresh run id
func NewBatchReport(dryRun bool) *BatchReport {
	return &BatchReport{
		RunID:     uuid.New(),
		StartedAt: time.Now(),
		DryRun:    dryRun,
	}
}

// Add records an outcome. Skipped outcomes go to the skipped list.
func (r *BatchReport) Add(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.Status == StatusSkipped {
		r.Skipped = append(r.Skipped, o)
		return
	}
	r.Outcomes = append(r.Outcomes, o)
}

// Finish stamps the end time
func (r *BatchReport) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FinishedAt = time.Now()
}

// Counts returns the per-status totals
func (r *BatchReport) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	var c Counts
	for _, o := range r.Outcomes {
		c.Total++
		switch o.Status {
		case StatusUpdated:
			c.Updated++
		case StatusUnchanged:
			c.Unchanged++
		case StatusNotFound:
			c.NotFound++
		case StatusFailed:
			c.Failed++
		}
	}
	c.Skipped = len(r.Skipped)
	c.Total += c.Skipped
	return c
}

// Failed returns outcomes that did not complete, NotFound included
func (r *BatchReport) Failed() []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed || o.Status == StatusNotFound {
			out = append(out, o)
		}
	}
	return out
}

// Duration returns the wall time of the run
func (r *BatchReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// 📝 Summarize renders a plain-text summary: totals first, then one line per outcome
func Summarize(r *BatchReport) string {
	c := r.Counts()

	var sb strings.Builder
	fmt.Fprintf(&sb, "total: %d, updated: %d, unchanged: %d, not-found: %d, failed: %d, skipped: %d\n",
		c.Total, c.Updated, c.Unchanged, c.NotFound, c.Failed, c.Skipped)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.Outcomes {
		sb.WriteString(summaryLine(o))
	}
	for _, o := range r.Skipped {
		sb.WriteString(summaryLine(o))
	}
	return sb.String()
}

func summaryLine(o Outcome) string {
	line := fmt.Sprintf("%-10s %s", o.Status, o.Path)
	switch {
	case o.Kind != KindNone && o.Reason != "":
		line += fmt.Sprintf(" (%s: %s)", o.Kind, o.Reason)
	case o.Reason != "":
		line += fmt.Sprintf(" (%s)", o.Reason)
	case o.Status == StatusUpdated:
		line += fmt.Sprintf(" (+%d -%d, %s)", o.LinesAdded, o.LinesRemoved, strings.Join(o.Rules, ", "))
	}
	return line + "\n"
}

type jsonReport struct {
	RunID      uuid.UUID `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`
	Counts     Counts    `json:"counts"`
	Outcomes   []Outcome `json:"outcomes"`
	Skipped    []Outcome `json:"skipped,omitempty"`
}

// 💾 WriteJSON writes a machine-readable report
func WriteJSON(w io.Writer, r *BatchReport) error {
	counts := r.Counts()

	r.mu.Lock()
	out := jsonReport{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DryRun:     r.DryRun,
		Counts:     counts,
		Outcomes:   r.Outcomes,
		Skipped:    r.Skipped,
	}
	r.mu.Unlock()

	if out.Outcomes == nil {
		out.Outcomes = []Outcome{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Errorf("encoding report: %w", err)
	}
	return nil
}
