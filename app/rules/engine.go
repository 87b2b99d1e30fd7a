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

// Package rules flags suspicious evidence in user reports.
//
// The rule catalogue is fixed. Every rule inspects the report independently and
// findings are emitted in rule order, so evaluation is deterministic.
// Only the token tables used by rules are configurable.
package rules

import (
	"fmt"
	"sort"
	"strings"

	"go.qbee.io/useraudit/app/audit"
)

// Rule identifies a check of the catalogue.
type Rule int

// Rules in evaluation order.
const (
	WritableAuthorizedKeys Rule = iota + 1
	TooManyAuthorizedKeys
	MalformedAuthorizedKeys
	SuspiciousCron
	NetworkConnections
	SuspiciousHistory
	SetuidFiles
	WorldWritableFiles
	AuthFailures
	AuthSuccesses
)

// ruleNames are used in metrics and structured output.
var ruleNames = map[Rule]string{
	WritableAuthorizedKeys:  "writable_authorized_keys",
	TooManyAuthorizedKeys:   "too_many_authorized_keys",
	MalformedAuthorizedKeys: "malformed_authorized_keys",
	SuspiciousCron:          "suspicious_cron",
	NetworkConnections:      "network_connections",
	SuspiciousHistory:       "suspicious_history",
	SetuidFiles:             "setuid_files",
	WorldWritableFiles:      "world_writable_files",
	AuthFailures:            "auth_failures",
	AuthSuccesses:           "auth_successes",
}

// All returns the catalogue in evaluation order.
func All() []Rule {
	return []Rule{
		WritableAuthorizedKeys,
		TooManyAuthorizedKeys,
		MalformedAuthorizedKeys,
		SuspiciousCron,
		NetworkConnections,
		SuspiciousHistory,
		SetuidFiles,
		WorldWritableFiles,
		AuthFailures,
		AuthSuccesses,
	}
}

// String returns name of the rule.
func (rule Rule) String() string {
	if name, ok := ruleNames[rule]; ok {
		return name
	}

	return fmt.Sprintf("rule_%d", int(rule))
}

// maxAuthorizedKeys is the number of keys above which authorized_keys is flagged.
const maxAuthorizedKeys = 5

// Finding is a single suspicion flag for human review.
type Finding struct {
	Rule     Rule   `json:"rule" yaml:"rule"`
	Username string `json:"username" yaml:"username"`
	Message  string `json:"message" yaml:"message"`
}

// String returns the finding prefixed with the username.
func (finding Finding) String() string {
	return finding.Username + ": " + finding.Message
}

// Engine evaluates the rule catalogue.
type Engine struct {
	tokens Tokens
}

// NewEngine returns an Engine which uses tokens.
func NewEngine(tokens Tokens) *Engine {
	return &Engine{tokens: tokens}
}

// Evaluate returns findings for report, ordered by rule.
// The report is not modified.
func (engine *Engine) Evaluate(report *audit.UserReport) []Finding {
	eval := &evaluation{username: report.Username()}

	engine.checkAuthorizedKeys(eval, report.SSH)
	engine.checkCron(eval, report.CronEntries)

	if count := len(report.NetworkConnections); count > 0 {
		eval.add(NetworkConnections,
			"has %d network socket(s) associated with processes (possible beacon/connection)", count)
	}

	engine.checkHistories(eval, report.ShellHistories)

	if count := len(report.FileFindings.Setuid); count > 0 {
		eval.add(SetuidFiles, "found setuid files in home (%d)", count)
	}

	if count := len(report.FileFindings.WorldWritable); count > 0 {
		eval.add(WorldWritableFiles, "found world-writable files in home (%d)", count)
	}

	engine.checkAuthLogs(eval, report.AuthLogExcerpts)

	return eval.findings
}

// evaluation accumulates findings for a single report.
type evaluation struct {
	username string
	findings []Finding
}

func (eval *evaluation) add(rule Rule, format string, args ...any) {
	eval.findings = append(eval.findings, Finding{
		Rule:     rule,
		Username: eval.username,
		Message:  fmt.Sprintf(format, args...),
	})
}

// checkAuthorizedKeys flags writable, overfull or malformed authorized_keys.
func (engine *Engine) checkAuthorizedKeys(eval *evaluation, ssh audit.SSHState) {
	if ssh.AuthorizedKeysWritable {
		eval.add(WritableAuthorizedKeys, "authorized_keys is writable (permissions %s)", ssh.AuthorizedKeysMode)
	}

	if count := CountKeys(ssh.AuthorizedKeys); count > maxAuthorizedKeys {
		eval.add(TooManyAuthorizedKeys, "authorized_keys contains %d keys (>%d)", count, maxAuthorizedKeys)
	}

	if ssh.AuthorizedKeysPresent && ssh.AuthorizedKeys != "" &&
		findToken(ssh.AuthorizedKeys, engine.tokens.KeyMarkers) == "" {
		eval.add(MalformedAuthorizedKeys, "authorized_keys content lacks usual key markers")
	}
}

// CountKeys returns number of non-blank, non-comment lines of authorized_keys.
func CountKeys(authorizedKeys string) int {
	count := 0

	for _, line := range strings.Split(authorizedKeys, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		count++
	}

	return count
}

// checkCron flags every cron entry which contains a cron token.
func (engine *Engine) checkCron(eval *evaluation, entries []audit.CronEntry) {
	for _, entry := range entries {
		if findToken(entry.Content, engine.tokens.Cron) != "" {
			eval.add(SuspiciousCron, "cron file %s contains potential downloader/reverse shell usage", entry.Source)
		}
	}
}

// checkHistories flags the first history token found in every history file.
func (engine *Engine) checkHistories(eval *evaluation, histories map[string]string) {
	paths := make([]string, 0, len(histories))
	for path := range histories {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	for _, path := range paths {
		token := findToken(strings.ToLower(histories[path]), lower(engine.tokens.History))
		if token == "" {
			continue
		}

		eval.add(SuspiciousHistory, "suspicious command '%s' found in history %s", strings.TrimSpace(token), path)
	}
}

// checkAuthLogs flags authentication failures and successes in every excerpt.
func (engine *Engine) checkAuthLogs(eval *evaluation, excerpts []audit.AuthLogExcerpt) {
	failureTokens := lower(engine.tokens.AuthFailure)
	successTokens := lower(engine.tokens.AuthSuccess)

	for _, excerpt := range excerpts {
		if findToken(strings.ToLower(excerpt.Content), failureTokens) != "" {
			eval.add(AuthFailures, "auth logs contain failures or invalid-user lines (%s)", excerpt.Source)
		}
	}

	for _, excerpt := range excerpts {
		if findToken(strings.ToLower(excerpt.Content), successTokens) != "" {
			eval.add(AuthSuccesses, "auth logs show successful authentication lines (%s)", excerpt.Source)
		}
	}
}

// findToken returns the first of tokens contained in text, or an empty string.
func findToken(text string, tokens []string) string {
	for _, token := range tokens {
		if token != "" && strings.Contains(text, token) {
			return token
		}
	}

	return ""
}

// lower returns lowercased copy of tokens.
func lower(tokens []string) []string {
	result := make([]string, len(tokens))
	for i, token := range tokens {
		result[i] = strings.ToLower(token)
	}

	return result
}
