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
	"path/filepath"

	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/utils"
)

// ShellHistories returns contents of known shell history files under home, keyed by file path.
// Only regular files are read and each one is limited to the last MaxFileBytes.
func (prober *Prober) ShellHistories(home string) Result[map[string]string] {
	if home == "" {
		return Unavailable[map[string]string]("no home directory")
	}

	histories := make(map[string]string)

	for _, pattern := range prober.settings.HistoryFiles {
		matches, err := filepath.Glob(filepath.Join(home, pattern))
		if err != nil {
			log.Debugf("invalid history pattern %s: %v", pattern, err)
			continue
		}

		for _, filePath := range matches {
			if utils.HasSymlinkBelow(home, filePath) {
				log.Debugf("skipping history file %s reached through a symbolic link", filePath)
				continue
			}

			data, err := utils.ReadFileTail(filePath, prober.settings.MaxFileBytes)
			if err != nil {
				log.Debugf("cannot read history file %s: %v", filePath, err)
				continue
			}

			histories[filePath] = string(data)
		}
	}

	return Found(histories)
}
