// Copyright 2024 qbee.io
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
//
// SPDX-License-Identifier: Apache-2.0

// Package cmd implements the user-audit command-line interface.
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"go.qbee.io/useraudit/app/config"
	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/probe"
	"go.qbee.io/useraudit/app/report"
)

// Command-line option names.
const (
	userOption           = "user"
	allOption            = "all"
	deepOption           = "deep"
	jsonOption           = "json"
	formatOption         = "format"
	outputOption         = "output"
	suspiciousFileOption = "suspicious-file"
	metricsFileOption    = "metrics-file"
	noBannerOption       = "no-banner"
	noColorOption        = "no-color"
	configOption         = "config"
	logLevelOption       = "log-level"
	workersOption        = "workers"
)

// options are values of command-line options.
type options struct {
	user           string
	all            bool
	deep           bool
	json           bool
	format         string
	output         string
	suspiciousFile string
	metricsFile    string
	noBanner       bool
	noColor        bool
	configPath     string
	logLevel       string
	workers        int
}

// CLI holds the state of a single command-line invocation.
type CLI struct {
	stdout io.Writer
	stderr io.Writer

	// runner executes external commands for probes (nil means local system).
	runner probe.Runner

	opts options
}

// New returns a CLI writing reports to stdout and diagnostics to stderr.
func New(stdout, stderr io.Writer) *CLI {
	return &CLI{
		stdout: stdout,
		stderr: stderr,
	}
}

// Execute runs the command line with args and returns the process exit code.
func (cli *CLI) Execute(ctx context.Context, args []string) int {
	root := cli.rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(cli.stderr, "Error: %s\n", err)

		if ExitCode(err) == ExitUsage {
			fmt.Fprintf(cli.stderr, "Run '%s --help' for usage.\n", root.CommandPath())
		}
	}

	return ExitCode(err)
}

// rootCommand returns the command tree.
func (cli *CLI) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "user-audit (--user NAME | --all) [flags]",
		Short: "Audit local user accounts for signs of compromise",
		Long: `user-audit collects evidence about local user accounts and flags suspicious findings.

Evidence includes recent logins, cron jobs, SSH trust material, processes,
network sockets, shell histories, authentication logs, file permission
anomalies and systemd user units. The system is never modified.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unexpected arguments: %v", args)
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.SetOutput(cli.stderr)

			level, err := log.ParseLevel(cli.opts.logLevel)
			if err != nil {
				return &UsageError{err: err}
			}

			log.SetLevel(level)

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.audit(cmd)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.SetOut(cli.stdout)
	root.SetErr(cli.stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{err: err}
	})

	flags := root.Flags()
	flags.StringVarP(&cli.opts.user, userOption, "u", "", "Username to audit.")
	flags.BoolVarP(&cli.opts.all, allOption, "a", false, "Audit all users.")
	flags.BoolVar(&cli.opts.deep, deepOption, false, "Run additional, slower checks.")
	flags.BoolVar(&cli.opts.json, jsonOption, false, "Write structured report to stdout.")
	flags.StringVar(&cli.opts.format, formatOption, report.FormatJSON, "Structured output format: json or yaml.")
	flags.StringVarP(&cli.opts.output, outputOption, "o", "", "Save full report to a file.")
	flags.StringVar(&cli.opts.suspiciousFile, suspiciousFileOption, "", "Save findings-only summary to a file.")
	flags.StringVar(&cli.opts.metricsFile, metricsFileOption, "", "Save metrics in Prometheus text format to a file.")
	flags.BoolVar(&cli.opts.noBanner, noBannerOption, false, "Hide banner.")
	flags.BoolVar(&cli.opts.noColor, noColorOption, false, "Disable colored output.")
	flags.IntVarP(&cli.opts.workers, workersOption, "w", 1, "Number of users audited in parallel (with --all).")

	persistentFlags := root.PersistentFlags()
	persistentFlags.StringVarP(&cli.opts.configPath, configOption, "c", config.DefaultPath, "Configuration file.")
	persistentFlags.StringVarP(&cli.opts.logLevel, logLevelOption, "l", "WARNING", "Logging level: DEBUG, INFO, WARNING or ERROR.")

	root.AddCommand(cli.versionCommand())

	return root
}
