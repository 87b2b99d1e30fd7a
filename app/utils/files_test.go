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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFileHeadAndTail(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(filePath, []byte("0123456789"), 0600))

	head, err := ReadFileHead(filePath, 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(head))

	tail, err := ReadFileTail(filePath, 4)
	require.NoError(t, err)
	assert.Equal(t, "6789", string(tail))

	all, err := ReadFileTail(filePath, 100)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(all))
}

func TestReadFileHead_Symlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	link := filepath.Join(dir, "link")

	require.NoError(t, os.WriteFile(target, []byte("secret"), 0600))
	require.NoError(t, os.Symlink(target, link))

	_, err := ReadFileHead(link, 100)
	assert.True(t, errors.Is(err, ErrNotRegularFile))

	_, err = ReadFileHead(filepath.Join(dir, "missing"), 100)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "report.json")

	require.NoError(t, WriteFileAtomic(filePath, []byte("first"), 0600))
	require.NoError(t, WriteFileAtomic(filePath, []byte("second"), 0600))

	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	fileInfo, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), fileInfo.Mode().Perm())

	// no temporary files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "report.json"), []byte("x"), 0600)
	assert.Error(t, err)
}

func TestListDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0600))
	}

	names, err := ListDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	_, err = ListDirectory(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestHasSymlinkBelow(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "real", "dir"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "real", "dir", "file"), nil, 0600))
	require.NoError(t, os.MkdirAll(filepath.Join(outside, "dir"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "dir", "file"), nil, 0600))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))

	assert.False(t, HasSymlinkBelow(root, filepath.Join(root, "real", "dir", "file")))
	assert.False(t, HasSymlinkBelow(root, root))
	assert.True(t, HasSymlinkBelow(root, filepath.Join(root, "link", "dir", "file")))
	assert.True(t, HasSymlinkBelow(root, filepath.Join(root, "missing")))
	assert.True(t, HasSymlinkBelow(root, filepath.Join(outside, "dir", "file")))
}
