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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.qbee.io/useraudit/app/utils"
)

// fakeOutput is a canned result of a command.
type fakeOutput struct {
	stdout string
	err    error
}

// fakeRunner returns canned outputs keyed by space-joined command.
// Commands without canned output are reported as not installed.
type fakeRunner struct {
	outputs map[string]fakeOutput
	calls   []string
}

func (runner *fakeRunner) Run(_ context.Context, cmd []string) ([]byte, error) {
	key := strings.Join(cmd, " ")
	runner.calls = append(runner.calls, key)

	output, ok := runner.outputs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", utils.ErrCommandNotFound, cmd[0])
	}

	return []byte(output.stdout), output.err
}

// writeFile creates a file with given content and permissions, creating parent directories.
func writeFile(t *testing.T, filePath, content string, perm os.FileMode) {
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
	require.NoError(t, os.WriteFile(filePath, []byte(content), perm))
	require.NoError(t, os.Chmod(filePath, perm))
}

// testSettings returns settings which point only to locations inside a temporary directory.
func testSettings(t *testing.T) Settings {
	root := t.TempDir()

	settings := DefaultSettings()
	settings.PasswdFile = filepath.Join(root, "passwd")
	settings.ProcFS = filepath.Join(root, "proc")
	settings.AuthLogFiles = nil
	settings.CronFiles = nil
	settings.CronDirs = nil
	settings.SharedDirs = nil

	return settings
}

func TestResult(t *testing.T) {
	found := Found([]string{"a"})
	assert.True(t, found.Available)
	assert.Empty(t, found.Reason)
	assert.Equal(t, []string{"a"}, found.Get())

	unavailable := Unavailable[[]string]("cannot read %s", "file")
	assert.False(t, unavailable.Available)
	assert.Equal(t, "cannot read file", unavailable.Reason)
	assert.Nil(t, unavailable.Get())
}

func TestProber_run(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]fakeOutput{
		"echo lines": {stdout: "one\n\ntwo  \n"},
		"echo empty": {stdout: "\n  \n"},
	}}

	prober := New(testSettings(t), runner)
	ctx := context.Background()

	lines, err := prober.run(ctx, "echo", "lines")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)

	_, err = prober.run(ctx, "echo", "empty")
	assert.Error(t, err)

	_, err = prober.runText(ctx, "echo", "empty")
	assert.Error(t, err)

	_, err = prober.run(ctx, "missing")
	assert.ErrorIs(t, err, utils.ErrCommandNotFound)
}

func TestNew_DefaultRunner(t *testing.T) {
	settings := testSettings(t)
	prober := New(settings, nil)

	assert.Equal(t, CommandRunner{Timeout: settings.CommandTimeout}, prober.runner)
	assert.Equal(t, settings, prober.Settings())
}
