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
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotRegularFile is returned when a bounded read is attempted on a non-regular file.
var ErrNotRegularFile = errors.New("not a regular file")

// ReadFileHead returns at most maxBytes from the beginning of a regular file.
// Symbolic links are not followed, so reads can't escape to files chosen by the file owner.
func ReadFileHead(filePath string, maxBytes int64) ([]byte, error) {
	file, err := openRegularFile(filePath)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filePath, err)
	}

	return data, nil
}

// ReadFileTail returns at most maxBytes from the end of a regular file.
func ReadFileTail(filePath string, maxBytes int64) ([]byte, error) {
	file, err := openRegularFile(filePath)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("error checking %s: %w", filePath, err)
	}

	if offset := fileInfo.Size() - maxBytes; offset > 0 {
		if _, err = file.Seek(offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("error seeking %s: %w", filePath, err)
		}
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filePath, err)
	}

	return data, nil
}

// HasSymlinkBelow returns true if any element of filePath below root is a symbolic link.
// Paths outside of root and elements which can't be inspected are reported as links too.
func HasSymlinkBelow(root, filePath string) bool {
	relPath, err := filepath.Rel(root, filePath)
	if err != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return true
	}

	current := root
	for _, elem := range strings.Split(relPath, string(filepath.Separator)) {
		if elem == "." {
			continue
		}

		current = filepath.Join(current, elem)

		fileInfo, err := os.Lstat(current)
		if err != nil || fileInfo.Mode()&fs.ModeSymlink != 0 {
			return true
		}
	}

	return false
}

// openRegularFile opens filePath for reading only if it's a regular file (not a symlink).
func openRegularFile(filePath string) (*os.File, error) {
	fileInfo, err := os.Lstat(filePath)
	if err != nil {
		return nil, err
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", filePath, ErrNotRegularFile)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}

	return file, nil
}

// WriteFileAtomic writes data to a file named by filename.
// Data is written to a temporary file in the same directory, synced and renamed over the destination,
// so the destination either has the complete new contents or is left untouched.
func WriteFileAtomic(name string, data []byte, perm fs.FileMode) (err error) {
	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}

	var tmpFile *os.File
	if tmpFile, err = os.CreateTemp(dir, "."+base+".tmp-*"); err != nil {
		return fmt.Errorf("error creating temporary file for %s: %w", name, err)
	}

	tmpName := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = tmpFile.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		return fmt.Errorf("error writing %s: %w", tmpName, err)
	}

	if err = tmpFile.Chmod(perm); err != nil {
		return fmt.Errorf("error setting permissions of %s: %w", tmpName, err)
	}

	if err = tmpFile.Sync(); err != nil {
		return fmt.Errorf("error syncing %s: %w", tmpName, err)
	}

	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", tmpName, err)
	}

	if err = os.Rename(tmpName, name); err != nil {
		return fmt.Errorf("error replacing %s: %w", name, err)
	}

	return nil
}
