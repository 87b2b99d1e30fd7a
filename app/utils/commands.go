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

package utils

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.qbee.io/useraudit/app/log"
)

// MaxCommandOutput is the maximum number of stdout bytes kept from a single command.
const MaxCommandOutput = 4 << 20

// maxCommandStderr limits stderr kept for error messages.
const maxCommandStderr = 4 << 10

// waitDelay bounds how long we wait for output pipes after the process got killed.
const waitDelay = 500 * time.Millisecond

// ErrCommandNotFound is returned when the executable is not present on the system.
var ErrCommandNotFound = errors.New("command not found")

// RunCommand runs a command and returns its output.
// The command runs in its own process group, which is killed as a whole when ctx is done.
// Stderr lines are forwarded to the debug log.
func RunCommand(ctx context.Context, cmd []string) ([]byte, error) {
	if len(cmd) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	if _, err := exec.LookPath(cmd[0]); err != nil {
		return nil, fmt.Errorf("error running command %v: %w", cmd, ErrCommandNotFound)
	}

	command := exec.CommandContext(ctx, cmd[0], cmd[1:]...)

	setProcessGroup(command)
	command.WaitDelay = waitDelay

	stdout := NewCappedBuffer(MaxCommandOutput)
	stderr := NewCappedBuffer(maxCommandStderr)

	command.Stdout = stdout
	command.Stderr = MultiWriter(stderr, log.NewWriter(log.DEBUG, fmt.Sprintf("[%s] ", cmd[0])))

	if err := command.Run(); err != nil {
		exitError := new(exec.ExitError)
		if errors.As(err, &exitError) {
			return stdout.Bytes(), fmt.Errorf("error running command %v: %w\n%s", cmd, err, stderr.Bytes())
		}

		return nil, fmt.Errorf("error running command %v: %w", cmd, err)
	}

	return stdout.Bytes(), nil
}

// RunCommandWithTimeout runs RunCommand bounded by timeout.
func RunCommandWithTimeout(ctx context.Context, timeout time.Duration, cmd []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return RunCommand(ctx, cmd)
}
