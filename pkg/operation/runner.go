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
	"context"

	"github.com/walteh/conformrc/pkg/status"
	"golang.org/x/sync/errgroup"
)

// 🏃 taskRunner schedules task indices sequentially or on a bounded pool
type taskRunner struct {
	limit int
}

// 🏗️ newTaskRunner creates a new runner
func newTaskRunner(limit int) *taskRunner {
	if limit < 1 {
		limit = 1
	}
	return &taskRunner{limit: limit}
}

func (r *taskRunner) sequential() bool {
	return r.limit == 1
}

// 🏃 run executes fn for 0..n-1 and returns outcomes by index
func (r *taskRunner) run(ctx context.Context, n int, fn func(ctx context.Context, i int) status.Outcome) []status.Outcome {
	if r.sequential() {
		return r.runSync(ctx, n, fn)
	}
	return r.runAsync(ctx, n, fn)
}

// 🔄 runSync runs tasks one after another
func (r *taskRunner) runSync(ctx context.Context, n int, fn func(ctx context.Context, i int) status.Outcome) []status.Outcome {
	outcomes := make([]status.Outcome, n)
	for i := 0; i < n; i++ {
		outcomes[i] = fn(ctx, i)
	}
	return outcomes
}

// ⚡ runAsync runs up to limit tasks at once. Each goroutine owns one slot
// of the result slice.
func (r *taskRunner) runAsync(ctx context.Context, n int, fn func(ctx context.Context, i int) status.Outcome) []status.Outcome {
	outcomes := make([]status.Outcome, n)

	var g errgroup.Group
	g.SetLimit(r.limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			outcomes[i] = fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait() // tasks report failures through their outcome

	return outcomes
}
