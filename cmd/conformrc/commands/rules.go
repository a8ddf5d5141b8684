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
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/conformrc/cmd/conformrc/opts"
	"github.com/walteh/conformrc/pkg/anchor"
	"github.com/walteh/conformrc/pkg/rule"
	"gitlab.com/tozd/go/errors"
)

// NewRulesCmd creates a new rules command
func NewRulesCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule catalog in application order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			std, err := o.Standard(ctx)
			if err != nil {
				return err
			}

			matcher, err := anchor.NewMatcher(anchor.DefaultCacheSize)
			if err != nil {
				return errors.Errorf("creating matcher: %w", err)
			}

			data := pterm.TableData{{"#", "Rule", "Marker", "Description"}}
			for i, r := range rule.Catalog(std, matcher) {
				data = append(data, []string{pterm.Sprint(i + 1), r.Name(), r.Marker(), r.Description()})
			}

			return pterm.DefaultTable.
				WithHasHeader().
				WithWriter(cmd.OutOrStdout()).
				WithData(data).
				Render()
		},
	}

	return cmd
}
