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

//go:build unix

package utils

import (
	"io/fs"
	"syscall"
)

// FileOwner returns uid of the file described by fileInfo.
// ok is false when the platform doesn't expose ownership information.
func FileOwner(fileInfo fs.FileInfo) (uid int, ok bool) {
	fileStat, ok := fileInfo.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}

	return int(fileStat.Uid), true
}
