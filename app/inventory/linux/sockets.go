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
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"syscall"

	"github.com/prometheus/procfs"

	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/utils"
)

// SocketProtocols lists socket tables available under /proc/net.
var SocketProtocols = []string{"tcp", "tcp6", "udp", "udp6"}

// tcpStates maps kernel TCP state codes (include/net/tcp_states.h) to ss-like names.
var tcpStates = map[uint64]string{
	0x01: "ESTAB",
	0x02: "SYN-SENT",
	0x03: "SYN-RECV",
	0x04: "FIN-WAIT-1",
	0x05: "FIN-WAIT-2",
	0x06: "TIME-WAIT",
	0x07: "UNCONN",
	0x08: "CLOSE-WAIT",
	0x09: "LAST-ACK",
	0x0A: "LISTEN",
	0x0B: "CLOSING",
}

// Socket is a single entry of a /proc/net/<protocol> socket table.
type Socket struct {
	Protocol string
	State    string
	Local    string
	Remote   string
	UID      int
	Inode    uint64
}

// String renders the socket in a form similar to `ss` output.
func (s Socket) String() string {
	return fmt.Sprintf("%s %s %s %s uid=%d", s.Protocol, s.State, s.Local, s.Remote, s.UID)
}

// ReadSockets parses /proc/net/<protocol> file and returns all its sockets.
// Missing tables (e.g. no IPv6 support) result in an empty list.
func (procFS ProcFS) ReadSockets(protocol string) ([]Socket, error) {
	if _, err := os.Stat(procFS.Path("net", protocol)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	kernelFS, err := procfs.NewFS(string(procFS))
	if err != nil {
		return nil, err
	}

	lines, err := readSocketTable(kernelFS, protocol)
	if err != nil {
		return nil, fmt.Errorf("error reading %s socket table: %w", protocol, err)
	}

	sockets := make([]Socket, 0, len(lines))

	for _, line := range lines {
		state, ok := tcpStates[line.St]
		if !ok {
			state = fmt.Sprintf("%02X", line.St)
		}

		sockets = append(sockets, Socket{
			Protocol: protocol,
			State:    state,
			Local:    net.JoinHostPort(line.LocalAddr.String(), strconv.FormatUint(line.LocalPort, 10)),
			Remote:   net.JoinHostPort(line.RemAddr.String(), strconv.FormatUint(line.RemPort, 10)),
			UID:      int(line.UID),
			Inode:    line.Inode,
		})
	}

	return sockets, nil
}

// readSocketTable returns parsed lines of the protocol's socket table.
func readSocketTable(kernelFS procfs.FS, protocol string) (procfs.NetIPSocket, error) {
	switch protocol {
	case "tcp":
		table, err := kernelFS.NetTCP()
		return procfs.NetIPSocket(table), err
	case "tcp6":
		table, err := kernelFS.NetTCP6()
		return procfs.NetIPSocket(table), err
	case "udp":
		table, err := kernelFS.NetUDP()
		return procfs.NetIPSocket(table), err
	case "udp6":
		table, err := kernelFS.NetUDP6()
		return procfs.NetIPSocket(table), err
	default:
		return nil, fmt.Errorf("unsupported socket protocol %s", protocol)
	}
}

// SocketOwners returns mapping of socket inodes to PIDs of processes which have them open.
// Processes which can't be inspected (e.g. owned by other users) are skipped.
func (procFS ProcFS) SocketOwners() (map[uint64]string, error) {
	runningProcesses, err := procFS.ListRunningProcesses()
	if err != nil {
		return nil, fmt.Errorf("cannot list currently running processes: %w", err)
	}

	result := make(map[uint64]string)

	for _, pid := range runningProcesses {
		fdDirPath := procFS.Path(pid, "fd")

		fdPaths, err := utils.ListDirectory(fdDirPath)
		if err != nil {
			log.Debugf("cannot list file descriptors of process %s: %v", pid, err)
			continue
		}

		for _, fd := range fdPaths {
			fileStat, err := os.Stat(procFS.Path(pid, "fd", fd))
			if err != nil {
				continue
			}

			if fileStat.Mode()&fs.ModeSocket == 0 {
				continue
			}

			if statT, ok := fileStat.Sys().(*syscall.Stat_t); ok {
				result[statT.Ino] = pid
			}
		}
	}

	return result, nil
}
