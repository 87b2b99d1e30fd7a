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
	"context"
	"path/filepath"
	"strings"

	"go.qbee.io/useraudit/app/audit"
	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/utils"
)

// CrontabSource is the source of entries from user's own crontab.
const CrontabSource = "crontab"

// Cron returns user's crontab and system cron files related to the user.
// A cron file is related when its name equals the username or its content mentions the username.
func (prober *Prober) Cron(ctx context.Context, name string) Result[[]audit.CronEntry] {
	if name == "" {
		return Unavailable[[]audit.CronEntry]("no username")
	}

	entries := make([]audit.CronEntry, 0)

	if content, err := prober.runText(ctx, "crontab", "-l", "-u", name); err == nil {
		entries = append(entries, audit.CronEntry{
			Source:  CrontabSource,
			Content: content,
		})
	} else {
		log.Debugf("cannot read crontab of %s: %v", name, err)
	}

	candidates := append([]string(nil), prober.settings.CronFiles...)

	for _, dirPath := range prober.settings.CronDirs {
		fileNames, err := utils.ListDirectory(dirPath)
		if err != nil {
			log.Debugf("cannot list %s: %v", dirPath, err)
			continue
		}

		for _, fileName := range fileNames {
			candidates = append(candidates, filepath.Join(dirPath, fileName))
		}
	}

	for _, filePath := range candidates {
		data, err := utils.ReadFileHead(filePath, prober.settings.MaxFileBytes)
		if err != nil {
			continue
		}

		content := string(data)
		if filepath.Base(filePath) != name && !strings.Contains(content, name) {
			continue
		}

		entries = append(entries, audit.CronEntry{
			Source:  filePath,
			Content: content,
		})
	}

	return Found(entries)
}
