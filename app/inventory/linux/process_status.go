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

package linux

import (
	"fmt"
	"strconv"
	"strings"

	"go.qbee.io/useraudit/app/utils"
)

// ProcessStatus contains fields of /proc/[pid]/status relevant for ownership checks.
type ProcessStatus struct {
	// Name of the executable (truncated by the kernel to 15 characters).
	Name string

	// PPID is the parent process ID.
	PPID int

	// RealUID is the real user ID of the process owner.
	RealUID int

	// EffectiveUID is the effective user ID of the process.
	EffectiveUID int
}

// GetProcessStatus returns ProcessStatus based on /proc/*/status.
// See `man proc` -> `/proc/[pid]/status section for details on the file format.
func (procFS ProcFS) GetProcessStatus(pid string) (*ProcessStatus, error) {
	statusFilePath := procFS.Path(pid, "status")
	processStatus := &ProcessStatus{RealUID: -1, EffectiveUID: -1}

	err := utils.ForLinesInFile(statusFilePath, func(line string) error {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil
		}

		var err error

		switch fields[0] {
		case "Name:":
			processStatus.Name = fields[1]
		case "PPid:":
			processStatus.PPID, err = strconv.Atoi(fields[1])
		case "Uid:":
			// Uid: real effective saved filesystem
			if len(fields) < 3 {
				return fmt.Errorf("unsupported file format")
			}

			if processStatus.RealUID, err = strconv.Atoi(fields[1]); err != nil {
				return err
			}

			processStatus.EffectiveUID, err = strconv.Atoi(fields[2])
		}

		return err
	})
	if err != nil {
		return nil, err
	}

	if processStatus.RealUID < 0 {
		return nil, fmt.Errorf("no Uid entry in %s", statusFilePath)
	}

	return processStatus, nil
}
