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

// Package probe implements read-only collectors of account evidence.
//
// Every probe returns a Result which is either populated or marked unavailable.
// Probes never return errors, never modify the system and bound every external
// command with a timeout and every open-ended input with a size limit.
package probe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.qbee.io/useraudit/app/inventory/linux"
	"go.qbee.io/useraudit/app/utils"
)

// Result is an outcome of a single probe.
type Result[T any] struct {
	// Value is set only when Available is true.
	Value T

	// Available is false when evidence couldn't be collected.
	Available bool

	// Reason explains why evidence is unavailable.
	Reason string
}

// Found returns available Result with value.
func Found[T any](value T) Result[T] {
	return Result[T]{Value: value, Available: true}
}

// Unavailable returns Result marked as unavailable with a formatted reason.
func Unavailable[T any](format string, args ...any) Result[T] {
	return Result[T]{Reason: fmt.Sprintf(format, args...)}
}

// Get returns the value, or zero value of T for unavailable results.
func (r Result[T]) Get() T {
	return r.Value
}

// Runner executes external commands.
type Runner interface {
	// Run executes cmd and returns its standard output.
	Run(ctx context.Context, cmd []string) ([]byte, error)
}

// CommandRunner runs commands on the local system, each bounded by Timeout.
type CommandRunner struct {
	Timeout time.Duration
}

// Run executes cmd and returns its standard output.
func (runner CommandRunner) Run(ctx context.Context, cmd []string) ([]byte, error) {
	return utils.RunCommandWithTimeout(ctx, runner.Timeout, cmd)
}

// Prober collects evidence using configured system paths and limits.
type Prober struct {
	settings Settings
	runner   Runner
	procFS   linux.ProcFS
	sockets  []SocketTable
}

// New returns a Prober which runs commands with runner.
// When runner is nil, commands are executed on the local system with settings.CommandTimeout.
func New(settings Settings, runner Runner) *Prober {
	if runner == nil {
		runner = CommandRunner{Timeout: settings.CommandTimeout}
	}

	procFS := linux.ProcFS(settings.ProcFS)

	return &Prober{
		settings: settings,
		runner:   runner,
		procFS:   procFS,
		sockets: []SocketTable{
			&ssSocketTable{runner: runner, procFS: procFS},
			&procSocketTable{procFS: procFS},
		},
	}
}

// Settings returns settings used by the prober.
func (prober *Prober) Settings() Settings {
	return prober.settings
}

// run executes cmd and returns its output split into lines.
// Empty output is reported as an error, so callers can fall back to other sources.
func (prober *Prober) run(ctx context.Context, cmd ...string) ([]string, error) {
	output, err := prober.runner.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}

	lines := utils.SplitLines(output)
	if len(lines) == 0 {
		return nil, fmt.Errorf("no output from %v", cmd)
	}

	return lines, nil
}

// runText executes cmd and returns its output with surrounding white-space removed.
func (prober *Prober) runText(ctx context.Context, cmd ...string) (string, error) {
	output, err := prober.runner.Run(ctx, cmd)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(string(output))
	if text == "" {
		return "", fmt.Errorf("no output from %v", cmd)
	}

	return text, nil
}
