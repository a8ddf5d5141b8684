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
	"context"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/conformrc/cmd/conformrc/opts"
	"github.com/walteh/conformrc/pkg/operation"
	"github.com/walteh/conformrc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewWatchCmd creates a new watch command
func NewWatchCmd(o *opts.RootOpts) *cobra.Command {
	f := &runFlags{}
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run once, then re-run files as they are edited",
		Long: `Watch performs a full run and then keeps watching every resolved file.
When a file is written it is migrated again after a short quiet period.
Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := prepare(ctx, o, f, false)
			if err != nil {
				return err
			}

			if _, err := s.execute(ctx, o.Console, f.report); err != nil {
				return err
			}

			formatter := status.NewDefaultFileFormatter()
			w := operation.NewWatcher(s.exec, s.cfg.BaseDir, s.resolved.Tasks,
				operation.WithDebounce(debounce),
				operation.WithReportHandler(func(ctx context.Context, r *status.BatchReport) {
					for _, out := range r.Outcomes {
						if out.Status == status.StatusUnchanged {
							continue
						}
						pterm.Info.WithPrefix(pterm.Prefix{Text: "👀"}).Println(formatter.FormatOutcome(out))
					}
				}),
			)

			o.Console.Infof("watching %d files", len(s.resolved.Tasks))
			if err := w.Run(ctx); err != nil {
				return errors.Errorf("watching files: %w", err)
			}
			return nil
		},
	}

	f.register(cmd, true)
	cmd.Flags().DurationVar(&debounce, "debounce", operation.DefaultDebounce, "quiet period before a changed file is re-run")

	return cmd
}
