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

package report

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// head returns at most maxBytes from the beginning of s, without splitting characters.
func head(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}

	end := maxBytes
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}

	return s[:end]
}

// tail returns at most maxBytes from the end of s, without splitting characters.
func tail(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}

	start := len(s) - maxBytes
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}

	return s[start:]
}

// headLines joins at most n first lines.
func headLines(lines []string, n int) string {
	if len(lines) > n {
		lines = lines[:n]
	}

	return strings.Join(lines, "\n")
}

// sortedKeys returns keys of m in lexical order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
