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

package rule

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/conformrc/pkg/anchor"
	"github.com/walteh/conformrc/pkg/standard"
	"github.com/walteh/conformrc/pkg/task"
	"github.com/walteh/conformrc/pkg/text"
)

// 📄 PaginationRenaming swaps legacy pagination calls for the standard ones
type PaginationRenaming struct {
	rules   []text.RenameRule
	renamer *text.CallRenamer
	loc     anchor.Locator
}

// NewPaginationRenaming creates the rule
func NewPaginationRenaming(std *standard.Standard, loc anchor.Locator) *PaginationRenaming {
	rules := make([]text.RenameRule, 0, len(std.Renames))
	for _, r := range std.Renames {
		rules = append(rules, text.RenameRule{From: r.From, To: r.To})
	}
	return &PaginationRenaming{rules: rules, renamer: text.NewCallRenamer(), loc: loc}
}

func (r *PaginationRenaming) Name() string { return "pagination-renaming" }

func (r *PaginationRenaming) Description() string {
	return "renames legacy pagination calls, arguments untouched"
}

func (r *PaginationRenaming) Marker() string {
	return "no legacy pagination call site"
}

func (r *PaginationRenaming) Applies(content string, _ task.FileTask) bool {
	for _, rr := range r.rules {
		if rr.From == rr.To {
			continue
		}
		if _, ok := r.loc.Locate(content, anchor.CallSite(rr.From)); ok {
			return true
		}
	}
	return false
}

func (r *PaginationRenaming) Apply(ctx context.Context, content string, _ task.FileTask) (string, error) {
	if err := r.renamer.ValidateRules(r.rules); err != nil {
		return "", errors.Errorf("validating rename rules: %w", err)
	}
	res, err := r.renamer.Rename(ctx, strings.NewReader(content), r.rules)
	if err != nil {
		return "", errors.Errorf("renaming pagination calls: %w", err)
	}
	return string(res.ModifiedContent), nil
}
