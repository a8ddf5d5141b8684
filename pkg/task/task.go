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

package task

import (
	"github.com/walteh/conformrc/pkg/standard"
)

// 📄 FileTask is one file of the corpus plus the metadata the rules need.
// Tasks are built by the resolver and never modified afterwards.
type FileTask struct {
	Path       string               // Path relative to the base directory
	Resource   string               // Permission resource name, e.g. "providers"
	Category   string               // Audit resource category, e.g. "PROVIDER"
	Actions    standard.ActionTable // HTTP method -> permission action
	Skip       bool                 // Excluded by the skip list or a missing mapping
	SkipReason string
}

// 🔐 Action returns the permission action for an HTTP method
func (t FileTask) Action(method string) (string, bool) {
	return t.Actions.Lookup(method)
}

// String returns the task path.
func (t FileTask) String() string {
	return t.Path
}
