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
	"regexp"
	"strings"

	"go.qbee.io/useraudit/app/inventory"
	"go.qbee.io/useraudit/app/inventory/linux"
	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/utils"
)

// SocketTable lists network sockets attributable to a user.
// Implementations resolve the owning process of every socket to its user.
type SocketTable interface {
	// Name of the socket table source.
	Name() string

	// UserSockets returns sockets of user's processes.
	// ErrSocketTableUnavailable means that another socket table should be tried.
	UserSockets(ctx context.Context, user inventory.User) ([]string, error)
}

// ErrSocketTableUnavailable is returned by socket tables which can't be used on the current system.
var ErrSocketTableUnavailable = errors.New("socket table unavailable")

// NetworkConnections returns sockets of user's processes from the first available socket table.
func (prober *Prober) NetworkConnections(ctx context.Context, user inventory.User) Result[[]string] {
	if user.Name == "" {
		return Unavailable[[]string]("no username")
	}

	for _, table := range prober.sockets {
		sockets, err := table.UserSockets(ctx, user)
		if err == nil {
			return Found(sockets)
		}

		log.Debugf("%s socket table: %v", table.Name(), err)

		if !errors.Is(err, ErrSocketTableUnavailable) {
			return Unavailable[[]string]("%s: %v", table.Name(), err)
		}
	}

	return Unavailable[[]string]("no socket table available")
}

// ssPIDRE extracts the first process ID from ss process info (users:(("sshd",pid=812,fd=3))).
var ssPIDRE = regexp.MustCompile(`pid=(\d+),`)

// ssSocketTable uses `ss -tunap` output.
type ssSocketTable struct {
	runner Runner
	procFS linux.ProcFS
}

// Name of the socket table source.
func (table *ssSocketTable) Name() string {
	return "ss"
}

// UserSockets returns ss lines which mention the username, or whose process is owned by the user.
func (table *ssSocketTable) UserSockets(ctx context.Context, user inventory.User) ([]string, error) {
	output, err := table.runner.Run(ctx, []string{"ss", "-tunap"})
	if err != nil {
		if errors.Is(err, utils.ErrCommandNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrSocketTableUnavailable, err)
		}

		return nil, err
	}

	sockets := make([]string, 0)

	for _, line := range utils.SplitLines(output) {
		if !strings.Contains(line, "users:((") && !strings.Contains(line, "pid=") {
			continue
		}

		line = strings.TrimSpace(line)

		if strings.Contains(line, user.Name) || table.ownedBy(line, user.UID) {
			sockets = append(sockets, line)
		}
	}

	return sockets, nil
}

// ownedBy returns true if the process referenced by line has real UID equal to uid.
func (table *ssSocketTable) ownedBy(line string, uid int) bool {
	if uid < 0 {
		return false
	}

	match := ssPIDRE.FindStringSubmatch(line)
	if match == nil {
		return false
	}

	status, err := table.procFS.GetProcessStatus(match[1])
	if err != nil {
		return false
	}

	return status.RealUID == uid
}

// procSocketTable reads /proc/net socket tables, which carry the owning UID of every socket.
type procSocketTable struct {
	procFS linux.ProcFS
}

// Name of the socket table source.
func (table *procSocketTable) Name() string {
	return "procfs"
}

// UserSockets returns sockets with UID of the user, annotated with PID of the owning process when known.
func (table *procSocketTable) UserSockets(_ context.Context, user inventory.User) ([]string, error) {
	if user.UID < 0 {
		return nil, fmt.Errorf("%w: unknown UID", ErrSocketTableUnavailable)
	}

	owners, err := table.procFS.SocketOwners()
	if err != nil {
		log.Debugf("cannot map sockets to processes: %v", err)
	}

	sockets := make([]string, 0)
	tablesFound := false

	for _, protocol := range linux.SocketProtocols {
		protocolSockets, err := table.procFS.ReadSockets(protocol)
		if err != nil {
			return nil, err
		}

		if protocolSockets != nil {
			tablesFound = true
		}

		for _, socket := range protocolSockets {
			if socket.UID != user.UID {
				continue
			}

			line := socket.String()
			if pid, ok := owners[socket.Inode]; ok {
				line += " pid=" + pid
			}

			sockets = append(sockets, line)
		}
	}

	if !tablesFound {
		return nil, fmt.Errorf("%w: no socket tables in %s", ErrSocketTableUnavailable, table.procFS)
	}

	return sockets, nil
}

// compile-time interface checks
var (
	_ SocketTable = (*ssSocketTable)(nil)
	_ SocketTable = (*procSocketTable)(nil)
)
