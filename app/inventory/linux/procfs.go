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

// Package linux reads process and socket information from the proc filesystem.
// See `man proc` for details of the file formats.
package linux

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.qbee.io/useraudit/app/utils"
)

// ProcFS is a mount point of the proc filesystem.
type ProcFS string

// DefaultProcFS is the standard proc filesystem mount point.
const DefaultProcFS ProcFS = "/proc"

// Path returns path of elem relative to the proc filesystem root.
func (procFS ProcFS) Path(elem ...string) string {
	return filepath.Join(append([]string{string(procFS)}, elem...)...)
}

// ListRunningProcesses returns a list of PIDs of currently running processes.
func (procFS ProcFS) ListRunningProcesses() ([]string, error) {
	dirNames, err := utils.ListDirectory(string(procFS))
	if err != nil {
		return nil, err
	}

	// return only directories with numeric filename
	result := make([]string, 0, len(dirNames))
	for _, dirName := range dirNames {
		if !isNumeric(dirName) {
			continue
		}

		result = append(result, dirName)
	}

	return result, nil
}

// GetProcessCommand returns a command used to start the process.
func (procFS ProcFS) GetProcessCommand(pid string) (string, error) {
	cmdLinePath := procFS.Path(pid, "cmdline")

	cmdLineBytes, err := os.ReadFile(cmdLinePath)
	if err != nil {
		return "", fmt.Errorf("error reading %s: %w", cmdLinePath, err)
	}

	// cleanup the command line and replace null-bytes with spaces
	cmdLine := strings.TrimSpace(strings.ReplaceAll(string(cmdLineBytes), "\000", " "))

	return cmdLine, nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
