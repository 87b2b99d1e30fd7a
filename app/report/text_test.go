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

package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.qbee.io/useraudit/app/audit"
	"go.qbee.io/useraudit/app/rules"
)

func TestTextReporter_RenderUser(t *testing.T) {
	report := sampleReport()
	findings := rules.NewEngine(rules.DefaultTokens()).Evaluate(&report)

	buf := new(bytes.Buffer)
	NewTextReporter(buf, false).RenderUser(audit.UserReportItem{Username: "alice", Report: report}, findings)

	output := buf.String()
	for _, expected := range []string{
		"User: alice",
		"UID",
		"/home/alice",
		"== Cron entries ==",
		"--- crontab ---",
		"@reboot /home/alice/start.sh",
		"authorized_keys permissions: 0666",
		"Other files: id_ed25519, known_hosts",
		"--- /home/alice/.bash_history ---",
		"== Files in shared locations ==",
		"Suspicious findings:",
		" - alice: authorized_keys is writable (permissions 0666)",
	} {
		assert.Contains(t, output, expected)
	}

	assert.NotContains(t, output, "\x1b[", "colors must be disabled")
}

func TestTextReporter_RenderUser_Unknown(t *testing.T) {
	buf := new(bytes.Buffer)
	NewTextReporter(buf, false).RenderUser(audit.UserReportItem{Username: "ghost", Report: audit.NewUserReport()}, nil)

	output := buf.String()
	assert.Contains(t, output, "account not found")
	assert.Contains(t, output, "No .ssh directory found.")
	assert.Contains(t, output, "No immediate suspicious findings detected.")
	assert.NotContains(t, output, "Files in shared locations")
}

func TestTextReporter_RenderUser_Limits(t *testing.T) {
	report := audit.NewUserReport()
	report.Account = audit.AccountInfo{Name: "bob", UID: 1001}
	for i := 0; i < 100; i++ {
		report.Processes = append(report.Processes, "process")
	}
	report.ShellHistories = map[string]string{"/home/bob/.bash_history": strings.Repeat("x", 3000) + "END"}

	buf := new(bytes.Buffer)
	NewTextReporter(buf, false).RenderUser(audit.UserReportItem{Username: "bob", Report: report}, nil)

	output := buf.String()
	assert.Equal(t, maxListedLines, strings.Count(output, "process\n"))
	assert.Contains(t, output, "END")
	assert.Equal(t, maxContentChars-len("END"), strings.Count(output, "x"))
}

func TestTextReporter_RenderSummary(t *testing.T) {
	alice := sampleReport()
	reports := audit.UserReports{
		{Username: "root", Report: audit.NewUserReport()},
		{Username: "alice", Report: alice},
	}
	findings := [][]rules.Finding{nil, rules.NewEngine(rules.DefaultTokens()).Evaluate(&alice)}

	buf := new(bytes.Buffer)
	NewTextReporter(buf, false).RenderSummary(reports, findings)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "User Audit Summary", lines[0])
	assert.Equal(t, []string{"User", "Suspicious", "Has", "SSH", "Procs"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"root", "0", "no", "0"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"alice", "6", "yes", "1"}, strings.Fields(lines[3]))
}

func TestTextReporter_Colors(t *testing.T) {
	buf := new(bytes.Buffer)
	NewTextReporter(buf, true).RenderFindings(nil)
	assert.Contains(t, buf.String(), "\x1b[32m")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", head("abc", 5))
	assert.Equal(t, "ab", head("abcd", 2))
	assert.Equal(t, "a", head("aé", 2))
	assert.Equal(t, "cd", tail("abcd", 2))
	assert.Equal(t, "", tail("aé", 1))
	assert.Equal(t, "é", tail("aé", 2))
	assert.Equal(t, "a\nb", headLines([]string{"a", "b", "c"}, 2))
}
