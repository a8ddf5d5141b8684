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

/*
Package operation executes file tasks through the rule pipeline.

	+-------------+
	|  Executor   |
	|  (Batch)    |
	+------+------+
	       |
	+------+------+       +-------------+
	|  Pipeline   | ----> |   Status    |
	| (Transform) |       | (Files/Log) |
	+------+------+       +-------------+
	       |
	+------+------+
	|   Watcher   |
	|  (Re-run)   |
	+-------------+

🎯 Purpose:
- Runs every resolved task and records one outcome per file
- Isolates failures: a missing, unreadable or rejected file never stops the batch
- Keeps the report in task order for sequential and parallel runs alike

🔄 Flow:
1. Skipped tasks are recorded without touching disk
2. Existence check, then a single read through status.FileManager
3. The pipeline transforms the content
4. Unchanged output is recorded as such; changed output is diffed
5. Dry runs stop at the diff; otherwise backup (optional) and atomic write

⚡ Concurrency:
- Parallel runs use an errgroup with a limit; each task owns one result slot
- Cancellation marks tasks that have not started as failed ("cancelled")
- A write in progress is never interrupted

👀 Watch mode:
The Watcher observes task directories with fsnotify and re-runs a task after
its file has been quiet for the debounce period. The executor's own write-back
re-triggers once and settles as unchanged.

🔍 Example:

	exec, err := operation.New(operation.Options{
		Files:    status.New(cfg.BaseDir, &logger),
		Pipeline: pipeline.New(rules),
		Parallel: cfg.Parallel,
	})
	report := exec.Execute(ctx, resolved.All())
*/
package operation
