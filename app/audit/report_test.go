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

package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAccountInfo_IsEmpty(t *testing.T) {
	assert.True(t, AccountInfo{}.IsEmpty())
	assert.False(t, AccountInfo{Name: "alice"}.IsEmpty())
	assert.False(t, AccountInfo{UID: 1}.IsEmpty())
}

func TestUserReport_Username(t *testing.T) {
	report := NewUserReport()
	assert.Equal(t, "?", report.Username())

	report.Account.Name = "alice"
	assert.Equal(t, "alice", report.Username())
}

func TestNewUserReport(t *testing.T) {
	report := NewUserReport()

	assert.NotNil(t, report.RecentLogins)
	assert.NotNil(t, report.CronEntries)
	assert.NotNil(t, report.ShellHistories)
	assert.NotNil(t, report.FileFindings.Setuid)
	assert.NotNil(t, report.FileFindings.WorldWritable)
	assert.Nil(t, report.OwnedFiles)
	assert.True(t, report.Account.IsEmpty())
}

func TestAccountInfo_Marshal(t *testing.T) {
	data, err := json.Marshal(AccountInfo{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	data, err = json.Marshal(AccountInfo{Name: "root", Home: "/root", Shell: "/bin/sh"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":"root","uid":0,"gid":0,"home":"/root","shell":"/bin/sh"}`, string(data))

	data, err = yaml.Marshal(AccountInfo{})
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))

	data, err = yaml.Marshal(AccountInfo{Name: "alice", UID: 1000, GID: 1000})
	require.NoError(t, err)
	assert.Equal(t, "user: alice\nuid: 1000\ngid: 1000\n", string(data))
}

func TestUserReport_UnknownAccountEncoding(t *testing.T) {
	report := NewUserReport()

	data, err := json.Marshal(&report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"account":{}`)
	assert.NotContains(t, string(data), `"uid"`)

	decoded := UserReport{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report, decoded)

	data, err = yaml.Marshal(&report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "account: {}\n")

	decoded = UserReport{}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, report, decoded)
}
