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
	"bytes"
	"io"
)

// CappedBuffer is an io.Writer which keeps at most maxBytes of the written data.
// Excess data is silently discarded, so writers never block or fail.
type CappedBuffer struct {
	buffer    bytes.Buffer
	maxBytes  int
	truncated bool
}

// NewCappedBuffer returns an initialized CappedBuffer for maxBytes.
func NewCappedBuffer(maxBytes int) *CappedBuffer {
	return &CappedBuffer{maxBytes: maxBytes}
}

// Write implements io.Writer for CappedBuffer.
func (cb *CappedBuffer) Write(data []byte) (int, error) {
	room := cb.maxBytes - cb.buffer.Len()
	if room <= 0 {
		cb.truncated = cb.truncated || len(data) > 0
		return len(data), nil
	}

	if len(data) > room {
		cb.buffer.Write(data[:room])
		cb.truncated = true
		return len(data), nil
	}

	cb.buffer.Write(data)

	return len(data), nil
}

// Bytes returns data recorded so far.
func (cb *CappedBuffer) Bytes() []byte {
	return cb.buffer.Bytes()
}

// Truncated returns true if any data was discarded.
func (cb *CappedBuffer) Truncated() bool {
	return cb.truncated
}

// MultiWriter duplicates writes to all writers and ignores their errors.
// Unlike io.MultiWriter, a failing writer doesn't stop the others.
func MultiWriter(writers ...io.Writer) io.Writer {
	return multiWriter(writers)
}

type multiWriter []io.Writer

func (mw multiWriter) Write(p []byte) (int, error) {
	for _, w := range mw {
		_, _ = w.Write(p)
	}

	return len(p), nil
}
