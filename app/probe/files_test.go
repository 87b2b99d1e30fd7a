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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.qbee.io/useraudit/app/inventory"
)

func TestProber_FileFindings(t *testing.T) {
	home := t.TempDir()

	setuidPath := filepath.Join(home, "bin", "rootshell")
	writeFile(t, setuidPath, "#!/bin/sh\n", 0755)
	require.NoError(t, os.Chmod(setuidPath, 0755|fs.ModeSetuid))

	writablePath := filepath.Join(home, "notes.txt")
	writeFile(t, writablePath, "", 0666)
	writeFile(t, filepath.Join(home, ".profile"), "", 0644)

	// symbolic links always have 0777 permissions
	require.NoError(t, os.Symlink(writablePath, filepath.Join(home, "link")))

	result := New(testSettings(t), &fakeRunner{}).FileFindings(home)
	require.True(t, result.Available)

	findings := result.Value
	assert.Equal(t, []string{setuidPath}, findings.Setuid)
	assert.Equal(t, []string{writablePath}, findings.WorldWritable)
	assert.Equal(t, 4, findings.Visited)
	assert.False(t, findings.Truncated)
}

func TestProber_FileFindings_Bounded(t *testing.T) {
	home := t.TempDir()
	for i := 0; i < 5000; i++ {
		writeFile(t, filepath.Join(home, fmt.Sprintf("d%02d", i%50), fmt.Sprintf("f%04d", i)), "", 0666)
	}

	result := New(testSettings(t), &fakeRunner{}).FileFindings(home)
	require.True(t, result.Available)

	assert.Equal(t, 2000, result.Value.Visited)
	assert.True(t, result.Value.Truncated)
	assert.Len(t, result.Value.WorldWritable, 2000)
}

func TestProber_FileFindings_NoHome(t *testing.T) {
	result := New(testSettings(t), &fakeRunner{}).FileFindings("")
	assert.False(t, result.Available)
}

func TestProber_OwnedFiles(t *testing.T) {
	shared := t.TempDir()
	ownedPath := filepath.Join(shared, "payload")
	writeFile(t, ownedPath, "", 0755)

	settings := testSettings(t)
	settings.SharedDirs = []string{shared, filepath.Join(shared, "missing")}
	prober := New(settings, &fakeRunner{})

	owner := inventory.User{Name: "owner", UID: os.Getuid()}
	result := prober.OwnedFiles(owner)
	require.True(t, result.Available)
	assert.Equal(t, []string{ownedPath}, result.Value)

	other := inventory.User{Name: "other", UID: os.Getuid() + 1}
	result = prober.OwnedFiles(other)
	require.True(t, result.Available)
	assert.Empty(t, result.Value)

	result = prober.OwnedFiles(inventory.User{Name: "ghost", UID: -1})
	assert.False(t, result.Available)
}
