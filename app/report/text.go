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

// Package report renders audit results for humans and serializes them for machines.
package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/term"

	"go.qbee.io/useraudit/app/audit"
	"go.qbee.io/useraudit/app/rules"
)

// Limits of evidence shown on the console. Saved reports are never truncated.
const (
	maxSummaryLogins = 5
	maxContentChars  = 2000
	maxListedLines   = 50
	maxListedFiles   = 30
)

const banner = `                                              ___ __
  __  __________  _____      ____ ___  ______/ (_) /_
 / / / / ___/ _ \/ ___/_____/ __ '/ / / / __  / / __/
/ /_/ (__  )  __/ /  /_____/ /_/ / /_/ / /_/ / / /_
\__,_/____/\___/_/         \__,_/\__,_/\__,_/_/\__/
`

// IsTerminal returns true if out is connected to a terminal.
func IsTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(file.Fd()))
}

// TextReporter renders reports as human-readable text.
// Reports are only read, never modified.
type TextReporter struct {
	out     io.Writer
	heading *color.Color
	title   *color.Color
	alert   *color.Color
	ok      *color.Color
}

// NewTextReporter returns a TextReporter writing to out, with colors when useColor is set.
func NewTextReporter(out io.Writer, useColor bool) *TextReporter {
	reporter := &TextReporter{
		out:     out,
		heading: color.New(color.FgCyan, color.Bold),
		title:   color.New(color.Bold),
		alert:   color.New(color.FgRed, color.Bold),
		ok:      color.New(color.FgGreen),
	}

	for _, c := range []*color.Color{reporter.heading, reporter.title, reporter.alert, reporter.ok} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return reporter
}

// Banner prints application name and version.
func (reporter *TextReporter) Banner(version string) {
	reporter.heading.Fprint(reporter.out, banner)
	fmt.Fprintf(reporter.out, "%52s\n\n", "v"+version)
}

// RenderUser prints complete report of a single user followed by its findings.
func (reporter *TextReporter) RenderUser(item audit.UserReportItem, findings []rules.Finding) {
	report := &item.Report

	reporter.renderAccount(item.Username, report)

	reporter.section("Cron entries")
	for _, entry := range report.CronEntries {
		reporter.block(entry.Source, head(entry.Content, maxContentChars))
	}

	reporter.section("SSH")
	reporter.renderSSH(report.SSH)

	reporter.section("Processes")
	reporter.block("ps -u "+item.Username, headLines(report.Processes, maxListedLines))

	reporter.section("Network connections")
	reporter.block("", headLines(report.NetworkConnections, maxListedLines))

	reporter.section("Shell histories")
	for _, path := range sortedKeys(report.ShellHistories) {
		reporter.block(path, tail(report.ShellHistories[path], maxContentChars))
	}

	reporter.section("Authentication logs")
	for _, excerpt := range report.AuthLogExcerpts {
		reporter.block(excerpt.Source, tail(excerpt.Content, maxContentChars))
	}

	reporter.section("Setuid files")
	reporter.block("", headLines(report.FileFindings.Setuid, maxListedFiles))

	reporter.section("World-writable files")
	reporter.block("", headLines(report.FileFindings.WorldWritable, maxListedFiles))

	if report.FileFindings.Truncated {
		fmt.Fprintf(reporter.out, "(file scan stopped after %d files)\n", report.FileFindings.Visited)
	}

	reporter.section("Systemd user units")
	reporter.block("", headLines(report.SystemdUserUnits, maxListedLines))

	if report.OwnedFiles != nil {
		reporter.section("Files in shared locations")
		reporter.block("", headLines(*report.OwnedFiles, maxListedFiles))
	}

	reporter.RenderFindings(findings)
}

// renderAccount prints account summary table.
func (reporter *TextReporter) renderAccount(username string, report *audit.UserReport) {
	reporter.title.Fprintf(reporter.out, "User: %s\n", username)

	account := report.Account
	if account.IsEmpty() {
		fmt.Fprintln(reporter.out, "  (account not found in the account database)")
	}

	logins := report.RecentLogins
	if len(logins) > maxSummaryLogins {
		logins = logins[:maxSummaryLogins]
	}

	writer := tabwriter.NewWriter(reporter.out, 0, 1, 2, ' ', 0)

	row := func(field, value string) {
		if value == "" {
			value = "-"
		}
		_, _ = fmt.Fprintf(writer, "  %s\t%s\n", field, value)
	}

	if !account.IsEmpty() {
		row("UID", strconv.Itoa(account.UID))
		row("GID", strconv.Itoa(account.GID))
		row("Home", account.Home)
		row("Shell", account.Shell)
	}

	row("Last logins", strings.Join(logins, "\n\t"))
	row("Running processes", strconv.Itoa(len(report.Processes)))
	row("SSH keys", yesNo(report.SSH.AuthorizedKeys != ""))

	_ = writer.Flush()
}

// renderSSH prints state of the ~/.ssh directory.
func (reporter *TextReporter) renderSSH(ssh audit.SSHState) {
	if !ssh.DirExists {
		fmt.Fprintln(reporter.out, "No .ssh directory found.")
		return
	}

	fmt.Fprintf(reporter.out, ".ssh permissions: %s\n", ssh.DirMode)

	if !ssh.AuthorizedKeysPresent {
		fmt.Fprintln(reporter.out, "No authorized_keys found.")
	} else {
		fmt.Fprintf(reporter.out, "authorized_keys permissions: %s\n", ssh.AuthorizedKeysMode)
		reporter.block("authorized_keys (head)", head(ssh.AuthorizedKeys, maxContentChars))
	}

	if len(ssh.OtherFiles) > 0 {
		fmt.Fprintf(reporter.out, "Other files: %s\n", strings.Join(ssh.OtherFiles, ", "))
	}
}

// RenderFindings prints the findings block.
func (reporter *TextReporter) RenderFindings(findings []rules.Finding) {
	fmt.Fprintln(reporter.out)

	if len(findings) == 0 {
		reporter.ok.Fprintln(reporter.out, "No immediate suspicious findings detected.")
		return
	}

	reporter.alert.Fprintln(reporter.out, "Suspicious findings:")
	for _, finding := range findings {
		fmt.Fprintf(reporter.out, " - %s\n", finding)
	}
}

// RenderSummary prints a table with one row per user.
// findings must contain findings of every report, in the same order.
func (reporter *TextReporter) RenderSummary(reports audit.UserReports, findings [][]rules.Finding) {
	reporter.title.Fprintln(reporter.out, "User Audit Summary")

	writer := tabwriter.NewWriter(reporter.out, 0, 1, 2, ' ', 0)
	_, _ = fmt.Fprintln(writer, "User\tSuspicious\tHas SSH\tProcs\t")

	for i, item := range reports {
		_, _ = fmt.Fprintf(writer, "%s\t%d\t%s\t%d\t\n",
			item.Username,
			len(findings[i]),
			yesNo(item.Report.SSH.AuthorizedKeys != ""),
			len(item.Report.Processes))
	}

	_ = writer.Flush()
}

// section prints a section heading.
func (reporter *TextReporter) section(name string) {
	fmt.Fprintln(reporter.out)
	reporter.heading.Fprintf(reporter.out, "== %s ==\n", name)
}

// block prints optionally titled text, or "-" when text is empty.
func (reporter *TextReporter) block(title, text string) {
	if title != "" {
		reporter.title.Fprintf(reporter.out, "--- %s ---\n", title)
	}

	text = strings.TrimRight(text, "\n")
	if text == "" {
		text = "-"
	}

	fmt.Fprintln(reporter.out, text)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}
