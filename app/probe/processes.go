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
	"errors"
	"fmt"
	"strconv"

	"go.qbee.io/useraudit/app/inventory"
	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/utils"
)

// Processes lists processes owned by the user (pid, ppid, command, CPU and memory usage).
// When `ps` isn't installed, the list is built from the proc filesystem (without resource usage).
func (prober *Prober) Processes(ctx context.Context, user inventory.User) Result[[]string] {
	if user.Name == "" {
		return Unavailable[[]string]("no username")
	}

	output, err := prober.runner.Run(ctx, []string{"ps", "-u", user.Name, "-o", "pid,ppid,cmd,%cpu,%mem", "--no-headers"})
	if err == nil {
		return Found(utils.SplitLines(output))
	}

	if !errors.Is(err, utils.ErrCommandNotFound) || user.UID < 0 {
		return Unavailable[[]string]("process list: %v", err)
	}

	log.Debugf("ps not available, listing processes of %s from %s", user.Name, prober.procFS)

	processes, err := prober.listProcessesFromProcFS(user.UID)
	if err != nil {
		return Unavailable[[]string]("process list: %v", err)
	}

	return Found(processes)
}

// listProcessesFromProcFS returns "pid ppid command" lines for processes with real UID equal to uid.
func (prober *Prober) listProcessesFromProcFS(uid int) ([]string, error) {
	pids, err := prober.procFS.ListRunningProcesses()
	if err != nil {
		return nil, err
	}

	processes := make([]string, 0)

	for _, pid := range pids {
		status, err := prober.procFS.GetProcessStatus(pid)
		if err != nil || status.RealUID != uid {
			continue
		}

		command, err := prober.procFS.GetProcessCommand(pid)
		if err != nil || command == "" {
			// kernel threads and zombies have no command line
			command = "[" + status.Name + "]"
		}

		processes = append(processes, fmt.Sprintf("%s %s %s", pid, strconv.Itoa(status.PPID), command))
	}

	return processes, nil
}
