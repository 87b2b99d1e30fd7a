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

package probe

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"go.qbee.io/useraudit/app/audit"
	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/utils"
)

// JournalSource is the source of authentication entries from the systemd journal.
const JournalSource = "journalctl:ssh"

// authLogMarkers are kept in authentication logs regardless of the username.
var authLogMarkers = []string{"Failed password", "Accepted password"}

// journalEmptyMarker is printed by journalctl when no entries match.
const journalEmptyMarker = "-- No entries --"

// AuthLogs returns authentication log entries from the systemd journal and system log files.
// Log files are filtered to lines mentioning the user or password authentication results.
func (prober *Prober) AuthLogs(ctx context.Context, name string) Result[[]audit.AuthLogExcerpt] {
	excerpts := make([]audit.AuthLogExcerpt, 0)

	if journal := prober.journal(ctx); journal != "" {
		excerpts = append(excerpts, audit.AuthLogExcerpt{Source: JournalSource, Content: journal})
	}

	for _, filePath := range prober.settings.AuthLogFiles {
		data, err := utils.ReadFileTail(filePath, prober.settings.MaxLogBytes)
		if err != nil {
			log.Debugf("cannot read %s: %v", filePath, err)
			continue
		}

		content := filterAuthLog(data, name, prober.settings.AuthLogTail)
		if content == "" {
			continue
		}

		excerpts = append(excerpts, audit.AuthLogExcerpt{Source: filePath, Content: content})
	}

	return Found(excerpts)
}

// journal returns recent journal entries of the authentication service units.
func (prober *Prober) journal(ctx context.Context) string {
	cmd := []string{"journalctl"}
	for _, unit := range prober.settings.JournalUnits {
		cmd = append(cmd, "-u", unit)
	}

	cmd = append(cmd, "-n", strconv.Itoa(prober.settings.JournalLines), "--no-pager")

	text, err := prober.runText(ctx, cmd...)
	if err != nil {
		log.Debugf("cannot read journal: %v", err)
		return ""
	}

	if text == journalEmptyMarker {
		return ""
	}

	return text
}

// filterAuthLog keeps lines which mention name or one of authLogMarkers, limited to the last maxChars bytes.
func filterAuthLog(data []byte, name string, maxChars int) string {
	tail := utils.NewTailBuffer(maxChars)

	for _, line := range bytes.Split(data, []byte("\n")) {
		text := string(line)

		if (name != "" && strings.Contains(text, name)) || containsAny(text, authLogMarkers) {
			tail.Push(text)
		}
	}

	return tail.String()
}

// containsAny returns true if s contains any of substrings.
func containsAny(s string, substrings []string) bool {
	for _, substring := range substrings {
		if strings.Contains(s, substring) {
			return true
		}
	}

	return false
}
