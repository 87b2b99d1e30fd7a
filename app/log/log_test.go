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

package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, lvl int) *bytes.Buffer {
	buf := new(bytes.Buffer)

	previousLevel := Level()
	SetOutput(buf)
	SetLevel(lvl)

	t.Cleanup(func() {
		SetLevel(previousLevel)
		SetOutput(os.Stderr)
	})

	return buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{name: "DEBUG", want: DEBUG},
		{name: "info", want: INFO},
		{name: " warning ", want: WARNING},
		{name: "WARN", want: WARNING},
		{name: "ERROR", want: ERROR},
		{name: "TRACE", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t, WARNING)

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)
	Errorf("shown %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARNING] shown 3")
	assert.Contains(t, out, "[ERROR] shown 4")
}

func TestWriter(t *testing.T) {
	buf := captureOutput(t, DEBUG)

	w := NewWriter(DEBUG, "[crontab] ")

	n, err := w.Write([]byte("no crontab for alice\n\nsecond line\n"))
	require.NoError(t, err)
	assert.Equal(t, 34, n)

	out := buf.String()
	assert.Contains(t, out, "[DEBUG] [crontab] no crontab for alice")
	assert.Contains(t, out, "[DEBUG] [crontab] second line")
}
