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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// maxLineLength is the longest line accepted by ForLines.
const maxLineLength = 1 << 20

// ForLines runs fn for every line in the provided io.Reader.
func ForLines(reader io.Reader, fn func(string) error) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	var lineNumber uint64
	for scanner.Scan() {
		lineNumber++

		if err := fn(scanner.Text()); err != nil {
			return fmt.Errorf("error processing line %d: %w", lineNumber, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading line %d: %w", lineNumber+1, err)
	}

	return nil
}

// ForLinesInFile runs fn for every line in the provided filePath.
func ForLinesInFile(filePath string, fn func(string) error) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("error opening file %s: %w", filePath, err)
	}

	defer file.Close()

	if err = ForLines(file, fn); err != nil {
		return fmt.Errorf("error processing file %s: %w", filePath, err)
	}

	return nil
}

// SplitLines splits command output into lines, dropping trailing white-space and empty lines.
func SplitLines(output []byte) []string {
	lines := make([]string, 0)

	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		lines = append(lines, line)
	}

	return lines
}

// ParseEnvFile returns key-value pairs of an environment file (e.g. /etc/os-release).
// Comments and malformed lines are skipped, double-quoted values are unquoted.
func ParseEnvFile(filePath string) (map[string]string, error) {
	data := make(map[string]string)

	err := ForLinesInFile(filePath, func(line string) error {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "#") || line == "" {
			return nil
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return nil
		}

		if strings.HasPrefix(value, `"`) {
			unquoted, err := strconv.Unquote(value)
			if err != nil {
				return nil
			}

			value = unquoted
		}

		data[key] = value

		return nil
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}
