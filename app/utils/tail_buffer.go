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
	"unicode/utf8"
)

// TailBuffer keeps a size-limited tail of data in bytes.
// Lines are pushed one by one and only the last maxBytes of the joined text are kept.
type TailBuffer struct {
	buffer   []byte
	maxBytes int
	lines    int
}

// NewTailBuffer returns an initialized TailBuffer for maxBytes.
// A negative maxBytes keeps nothing.
func NewTailBuffer(maxBytes int) *TailBuffer {
	if maxBytes < 0 {
		maxBytes = 0
	}

	return &TailBuffer{
		maxBytes: maxBytes,
	}
}

// Push adds a line to the end of the buffer, separated from previous data with a new-line.
func (tb *TailBuffer) Push(line string) {
	if tb.lines > 0 {
		tb.buffer = append(tb.buffer, '\n')
	}

	tb.buffer = append(tb.buffer, line...)
	tb.lines++

	tb.trim()
}

// Len returns number of lines pushed to the buffer (including the ones already trimmed).
func (tb *TailBuffer) Len() int {
	return tb.lines
}

// String returns the tail of recorded data.
func (tb *TailBuffer) String() string {
	return string(tb.buffer)
}

// trim drops data from the beginning of the buffer to fit in maxBytes.
// The cut never splits a multibyte UTF-8 character.
func (tb *TailBuffer) trim() {
	if len(tb.buffer) <= tb.maxBytes {
		return
	}

	excess := len(tb.buffer) - tb.maxBytes
	for excess < len(tb.buffer) && !utf8.RuneStart(tb.buffer[excess]) {
		excess++
	}

	// copy to release the memory of the dropped head
	tb.buffer = append([]byte(nil), tb.buffer[excess:]...)
}
