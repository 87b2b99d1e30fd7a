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
	"errors"
	"io/fs"
	"path/filepath"

	"go.qbee.io/useraudit/app/audit"
	"go.qbee.io/useraudit/app/inventory"
	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/utils"
)

// worldWritable is the "other" write permission bit.
const worldWritable fs.FileMode = 0o002

// errWalkLimit stops a directory walk after the file limit was reached.
var errWalkLimit = errors.New("walk limit reached")

// walkFiles calls fn for every non-directory entry under root, up to limit entries.
// Symbolic links are reported but never followed, and unreadable subtrees are skipped.
// Returns number of visited entries and whether the walk stopped at the limit.
func walkFiles(root string, limit int, fn func(path string, info fs.FileInfo)) (int, bool) {
	visited := 0

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			log.Debugf("cannot walk %s: %v", path, err)

			if entry != nil && entry.IsDir() && path != root {
				return filepath.SkipDir
			}

			return nil
		}

		if entry.IsDir() {
			return nil
		}

		if visited >= limit {
			return errWalkLimit
		}

		visited++

		// DirEntry.Info returns link status (lstat) for entries found during the walk
		info, err := entry.Info()
		if err != nil {
			return nil
		}

		fn(path, info)

		return nil
	})

	return visited, errors.Is(err, errWalkLimit)
}

// FileFindings returns setuid and world-writable files under home.
// At most MaxWalkFiles files are visited. Symbolic links are not classified, since their permission bits are meaningless.
func (prober *Prober) FileFindings(home string) Result[audit.FileFindings] {
	if home == "" {
		return Unavailable[audit.FileFindings]("no home directory")
	}

	findings := audit.FileFindings{
		Setuid:        []string{},
		WorldWritable: []string{},
	}

	findings.Visited, findings.Truncated = walkFiles(home, prober.settings.MaxWalkFiles, func(path string, info fs.FileInfo) {
		mode := info.Mode()
		if mode&fs.ModeSymlink != 0 {
			return
		}

		if mode&fs.ModeSetuid != 0 {
			findings.Setuid = append(findings.Setuid, path)
		}

		if mode.Perm()&worldWritable != 0 {
			findings.WorldWritable = append(findings.WorldWritable, path)
		}
	})

	if findings.Truncated {
		log.Infof("file walk of %s stopped after %d files", home, findings.Visited)
	}

	return Found(findings)
}

// OwnedFiles returns files owned by the user in shared writable directories.
// All directories share one walk limit of MaxWalkFiles.
func (prober *Prober) OwnedFiles(user inventory.User) Result[[]string] {
	if user.UID < 0 {
		return Unavailable[[]string]("unknown UID")
	}

	owned := make([]string, 0)
	remaining := prober.settings.MaxWalkFiles

	for _, dirPath := range prober.settings.SharedDirs {
		if remaining <= 0 {
			break
		}

		visited, _ := walkFiles(dirPath, remaining, func(path string, info fs.FileInfo) {
			if uid, ok := utils.FileOwner(info); ok && uid == user.UID {
				owned = append(owned, path)
			}
		})

		remaining -= visited
	}

	return Found(owned)
}
