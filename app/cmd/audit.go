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

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"go.qbee.io/useraudit/app"
	"go.qbee.io/useraudit/app/audit"
	"go.qbee.io/useraudit/app/collector"
	"go.qbee.io/useraudit/app/config"
	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/metrics"
	"go.qbee.io/useraudit/app/probe"
	"go.qbee.io/useraudit/app/report"
	"go.qbee.io/useraudit/app/rules"
)

// run holds dependencies of a single audit run.
type run struct {
	cli       *CLI
	config    *config.Config
	collector *collector.Collector
	engine    *rules.Engine
	reporter  *report.TextReporter
}

// audit validates options, audits requested users and writes all requested outputs.
func (cli *CLI) audit(cmd *cobra.Command) error {
	opts := cli.opts

	switch {
	case opts.user == "" && !opts.all:
		return usageErrorf("one of --%s or --%s is required", userOption, allOption)
	case opts.user != "" && opts.all:
		return usageErrorf("--%s and --%s can't be used together", userOption, allOption)
	}

	cfg, err := cli.loadConfig(cmd)
	if err != nil {
		return err
	}

	useColor := cfg.Output.Color && !opts.noColor && report.IsTerminal(cli.stdout)

	r := &run{
		cli:       cli,
		config:    cfg,
		collector: collector.New(probe.New(cfg.Probe, cli.runner), cfg.Output.Workers),
		engine:    rules.NewEngine(cfg.Rules),
		reporter:  report.NewTextReporter(cli.stdout, useColor),
	}

	if !opts.noBanner {
		r.reporter.Banner(app.Version)
	}

	if opts.all {
		return r.auditAll(cmd)
	}

	return r.auditUser(cmd)
}

// loadConfig loads configuration file and applies command-line overrides.
// A missing configuration file is accepted only at the default location.
func (cli *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	cfg, err := config.Load(cli.opts.configPath, !flags.Changed(configOption))
	if err != nil {
		return nil, err
	}

	if flags.Changed(formatOption) {
		if err = report.ValidateFormat(cli.opts.format); err != nil {
			return nil, &UsageError{err: err}
		}

		cfg.Output.Format = cli.opts.format
	}

	if flags.Changed(workersOption) {
		if cli.opts.workers < 1 {
			return nil, usageErrorf("--%s must be at least 1", workersOption)
		}

		cfg.Output.Workers = cli.opts.workers
	}

	return cfg, nil
}

// auditUser audits a single user.
func (r *run) auditUser(cmd *cobra.Command) error {
	username := r.cli.opts.user

	userReport := r.collector.CollectReport(cmd.Context(), username, r.cli.opts.deep)
	findings := r.engine.Evaluate(&userReport)

	r.reporter.RenderUser(audit.UserReportItem{Username: username, Report: userReport}, findings)

	exporter := metrics.New()
	exporter.Record(username, &userReport, findings)

	return r.writeOutputs(userReport, []report.UserFindings{{Username: username, Findings: findings}}, exporter)
}

// auditAll audits all users from the account database.
func (r *run) auditAll(cmd *cobra.Command) error {
	reports, err := r.collector.CollectAllReports(cmd.Context(), r.cli.opts.deep)
	if err != nil {
		return err
	}

	exporter := metrics.New()
	allFindings := make([][]rules.Finding, len(reports))
	userFindings := make([]report.UserFindings, len(reports))

	for i := range reports {
		item := &reports[i]

		allFindings[i] = r.engine.Evaluate(&item.Report)
		userFindings[i] = report.UserFindings{Username: item.Username, Findings: allFindings[i]}
		exporter.Record(item.Username, &item.Report, allFindings[i])
	}

	r.reporter.RenderSummary(reports, allFindings)

	return r.writeOutputs(reports, userFindings, exporter)
}

// writeOutputs writes structured dump and requested files.
// Every output is attempted, and all failures are returned together.
func (r *run) writeOutputs(data any, findings []report.UserFindings, exporter *metrics.Exporter) error {
	opts := r.cli.opts
	format := r.config.Output.Format
	var errs []error

	if opts.json {
		if err := report.Encode(r.cli.stdout, data, format); err != nil {
			errs = append(errs, err)
		}
	}

	if opts.output != "" {
		if err := report.SaveReport(opts.output, report.NewEnvelope(data, app.Version), format); err != nil {
			errs = append(errs, err)
		} else {
			log.Infof("report saved to %s", opts.output)
		}
	}

	if opts.suspiciousFile != "" {
		if err := report.SaveFindings(opts.suspiciousFile, findings, opts.all); err != nil {
			errs = append(errs, err)
		} else {
			log.Infof("findings saved to %s", opts.suspiciousFile)
		}
	}

	if opts.metricsFile != "" {
		if err := exporter.WriteTextfile(opts.metricsFile); err != nil {
			errs = append(errs, err)
		} else {
			log.Infof("metrics saved to %s", opts.metricsFile)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cannot write outputs: %w", errors.Join(errs...))
	}

	return nil
}
