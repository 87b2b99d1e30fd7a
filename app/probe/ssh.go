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
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.qbee.io/useraudit/app/audit"
	"go.qbee.io/useraudit/app/utils"
)

const authorizedKeysFileName = "authorized_keys"

// groupOrWorldWritable is a mask of group and other write permission bits.
const groupOrWorldWritable fs.FileMode = 0o022

// FormatMode renders permission bits as a 4-digit octal number (e.g. "0644").
func FormatMode(mode fs.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}

// SSH describes the ~/.ssh directory under home.
func (prober *Prober) SSH(home string) Result[audit.SSHState] {
	if home == "" {
		return Unavailable[audit.SSHState]("no home directory")
	}

	state := audit.SSHState{}
	sshDir := filepath.Join(home, ".ssh")

	// a symlinked .ssh could expose another account's directory, so it's never followed
	dirInfo, err := os.Lstat(sshDir)
	if err != nil {
		return Unavailable[audit.SSHState]("%v", err)
	}

	if !dirInfo.IsDir() {
		return Unavailable[audit.SSHState]("%s is not a directory", sshDir)
	}

	state.DirExists = true
	state.DirMode = FormatMode(dirInfo.Mode())

	authorizedKeysPath := filepath.Join(sshDir, authorizedKeysFileName)
	if keysInfo, err := os.Stat(authorizedKeysPath); err == nil {
		state.AuthorizedKeysPresent = true
		state.AuthorizedKeysMode = FormatMode(keysInfo.Mode())
		state.AuthorizedKeysWritable = keysInfo.Mode().Perm()&groupOrWorldWritable != 0

		// content is read only from regular files, never through symbolic links
		if data, err := utils.ReadFileHead(authorizedKeysPath, prober.settings.MaxFileBytes); err == nil {
			state.AuthorizedKeys = string(data)
		}
	}

	entries, err := os.ReadDir(sshDir)
	if err != nil {
		return Found(state)
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || entry.Name() == authorizedKeysFileName {
			continue
		}

		state.OtherFiles = append(state.OtherFiles, entry.Name())
	}

	return Found(state)
}
