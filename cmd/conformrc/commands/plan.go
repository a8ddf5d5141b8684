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
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/walteh/conformrc/cmd/conformrc/opts"
	"github.com/walteh/conformrc/pkg/status"
)

// NewPlanCmd creates a new plan command
func NewPlanCmd(o *opts.RootOpts) *cobra.Command {
	f := &runFlags{}
	var showDiff bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what run would change without writing",
		Long: `Plan runs the same pipeline as run in dry-run mode. Nothing is written;
updated files are listed with the rules that changed them and, with --diff,
a line diff of the change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := prepare(ctx, o, f, true)
			if err != nil {
				return err
			}

			report, err := s.execute(ctx, o.Console, f.report)
			if err != nil {
				return err
			}

			if showDiff {
				printDiffs(cmd, report)
			}

			if n := report.Counts().Updated; n > 0 {
				o.Console.Infof("%d files would change", n)
			} else {
				o.Console.Success("nothing to change")
			}
			return nil
		},
	}

	f.register(cmd, false)
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a line diff for every file that would change")

	return cmd
}

func printDiffs(cmd *cobra.Command, report *status.BatchReport) {
	out := cmd.OutOrStdout()
	for _, o := range report.Outcomes {
		if o.Status != status.StatusUpdated || o.Diff == "" {
			continue
		}
		fmt.Fprintln(out)
		for _, line := range strings.Split(strings.TrimSuffix(o.Diff, "\n"), "\n") {
			switch {
			case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
				fmt.Fprintln(out, color.New(color.Bold).Sprint(line))
			case strings.HasPrefix(line, "+"):
				fmt.Fprintln(out, color.GreenString(line))
			case strings.HasPrefix(line, "-"):
				fmt.Fprintln(out, color.RedString(line))
			case strings.HasPrefix(line, "@@"):
				fmt.Fprintln(out, color.CyanString(line))
			default:
				fmt.Fprintln(out, line)
			}
		}
	}
}
