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

package main

import (
	"io"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/conformrc/cmd/conformrc/commands"
	"github.com/walteh/conformrc/cmd/conformrc/opts"
	"github.com/walteh/conformrc/pkg/log"
)

const (
	envConfig = "CONFORMRC_CONFIG"
	envDebug  = "CONFORMRC_DEBUG"
)

// newRootCmd creates the root command with every subcommand attached
func newRootCmd() *cobra.Command {
	o := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "conformrc",
		Short: "Migrate Next.js route handlers to the API standard",
		Long: `conformrc rewrites route.ts handler modules in place so they follow the
API standard: canonical imports, correlation ids, permission checks,
rate limiting, structured errors, audit logging and response logging.

Every rule is idempotent, so running it again over migrated files is a no-op.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(cmd.ErrOrStderr(), o.Debug)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			o.Console = log.NewWithZerolog(cmd.OutOrStdout(), logger)
			return nil
		},
	}

	// Add shared flags
	addRootFlags(rootCmd, o)

	// Add commands
	rootCmd.AddCommand(
		commands.NewRunCmd(o),
		commands.NewPlanCmd(o),
		commands.NewRulesCmd(o),
		commands.NewWatchCmd(o),
		newVersionCmd(),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	defaultConfig := ".conformrc.yaml"
	if v := os.Getenv(envConfig); v != "" {
		defaultConfig = v
	}
	defaultDebug, _ := strconv.ParseBool(os.Getenv(envDebug))

	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", defaultConfig, "config file path (env "+envConfig+")")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", defaultDebug, "enable debug logging (env "+envDebug+")")
}

// setupLogging configures zerolog based on flags
func setupLogging(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
		pterm.EnableDebugMessages()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
}
