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
	"github.com/spf13/cobra"
	"github.com/walteh/conformrc/cmd/conformrc/opts"
)

// NewRunCmd creates a new run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rewrite every configured handler module in place",
		Long: `Run applies the rule catalog to every resolved file.
It will:
1. Load and validate the config
2. Resolve the file set (listed or scanned, minus the skip list)
3. Run the rule pipeline over each file
4. Write changed files atomically and report every outcome

A file that is missing or fails a rule is reported and left untouched;
the rest of the batch still runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := prepare(ctx, o, f, false)
			if err != nil {
				return err
			}

			report, err := s.execute(ctx, o.Console, f.report)
			if err != nil {
				return err
			}

			if failed := report.Failed(); len(failed) > 0 {
				o.Console.Warningf("%d files were not migrated", len(failed))
			} else {
				o.Console.Success("all files conform")
			}
			return nil
		},
	}

	f.register(cmd, true)

	return cmd
}
