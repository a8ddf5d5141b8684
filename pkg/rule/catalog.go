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
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/conformrc/pkg/anchor"
	"github.com/walteh/conformrc/pkg/standard"
)

// 📚 Catalog returns every rule in application order.
// Permission replacement runs before rate limiting because the rate check
// is keyed on the final shape of the auth destructure.
func Catalog(std *standard.Standard, loc anchor.Locator) []Rule {
	return []Rule{
		NewImportNormalization(std, loc),
		NewCorrelationInjection(std, loc),
		NewPaginationRenaming(std, loc),
		NewErrorCanonicalization(loc),
		NewPermissionReplacement(std, loc),
		NewRateLimitInjection(std, loc),
		NewCatchLogging(loc),
		NewAuditLogging(std, loc),
		NewImportPruning(std, loc),
	}
}

// Names returns the rule names in order
func Names(rules []Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Name())
	}
	return out
}

// 🔍 Select keeps the named rules in catalog order. No names selects every rule.
func Select(rules []Rule, names []string) ([]Rule, error) {
	if len(names) == 0 {
		return rules, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimSpace(n)] = true
	}
	var out []Rule
	for _, r := range rules {
		if want[r.Name()] {
			out = append(out, r)
			delete(want, r.Name())
		}
	}
	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for n := range want {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, errors.Errorf("unknown rules: %s (available: %s)", strings.Join(unknown, ", "), strings.Join(Names(rules), ", "))
	}
	return out, nil
}
