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

// Package audit defines the per-user audit report schema.
//
// Every field of UserReport is independently optional: probes which can't
// collect their evidence leave the field empty, and a report with all fields
// empty is valid. Reports are snapshots built once per run and never modified.
package audit

import (
	"encoding/json"
)

// AccountInfo contains identity facts of a single account.
// Zero value represents an account which doesn't exist in the account database.
type AccountInfo struct {
	Name  string `json:"user,omitempty" yaml:"user,omitempty"`
	UID   int    `json:"uid" yaml:"uid"`
	GID   int    `json:"gid" yaml:"gid"`
	Home  string `json:"home,omitempty" yaml:"home,omitempty"`
	Shell string `json:"shell,omitempty" yaml:"shell,omitempty"`
}

// IsEmpty returns true if the account wasn't resolved.
func (account AccountInfo) IsEmpty() bool {
	return account == AccountInfo{}
}

// accountFields is AccountInfo without its custom marshalers.
type accountFields AccountInfo

// MarshalJSON encodes an unresolved account as an empty object, so zero IDs don't read as root.
func (account AccountInfo) MarshalJSON() ([]byte, error) {
	if account.IsEmpty() {
		return []byte("{}"), nil
	}

	return json.Marshal(accountFields(account))
}

// MarshalYAML encodes an unresolved account as an empty mapping.
func (account AccountInfo) MarshalYAML() (any, error) {
	if account.IsEmpty() {
		return struct{}{}, nil
	}

	return accountFields(account), nil
}

// CronEntry is a crontab or a cron file related to the user.
type CronEntry struct {
	// Source is "crontab" for user's own crontab, otherwise path of the cron file.
	Source string `json:"source" yaml:"source"`

	// Content is the raw text of the entry.
	Content string `json:"content" yaml:"content"`
}

// SSHState describes user's ~/.ssh directory.
type SSHState struct {
	DirExists bool   `json:"dirExists" yaml:"dirExists"`
	DirMode   string `json:"dirMode,omitempty" yaml:"dirMode,omitempty"`

	AuthorizedKeysPresent  bool   `json:"authorizedKeysPresent" yaml:"authorizedKeysPresent"`
	AuthorizedKeys         string `json:"authorizedKeys,omitempty" yaml:"authorizedKeys,omitempty"`
	AuthorizedKeysMode     string `json:"authorizedKeysMode,omitempty" yaml:"authorizedKeysMode,omitempty"`
	AuthorizedKeysWritable bool   `json:"authorizedKeysWritable" yaml:"authorizedKeysWritable"`

	// OtherFiles contains names of other regular files in the directory.
	OtherFiles []string `json:"otherFiles,omitempty" yaml:"otherFiles,omitempty"`
}

// AuthLogExcerpt is a filtered part of an authentication log.
type AuthLogExcerpt struct {
	Source  string `json:"source" yaml:"source"`
	Content string `json:"content" yaml:"content"`
}

// FileFindings lists files with notable permission bits under the home directory.
type FileFindings struct {
	Setuid        []string `json:"setuid" yaml:"setuid"`
	WorldWritable []string `json:"worldWritable" yaml:"worldWritable"`

	// Visited is the number of files checked.
	Visited int `json:"visited" yaml:"visited"`

	// Truncated is set when the walk stopped at the file limit.
	Truncated bool `json:"truncated" yaml:"truncated"`
}

// UserReport is the evidence collected for a single user.
type UserReport struct {
	Account            AccountInfo       `json:"account" yaml:"account"`
	RecentLogins       []string          `json:"recentLogins" yaml:"recentLogins"`
	CronEntries        []CronEntry       `json:"cronEntries" yaml:"cronEntries"`
	SSH                SSHState          `json:"sshState" yaml:"sshState"`
	Processes          []string          `json:"processes" yaml:"processes"`
	NetworkConnections []string          `json:"networkConnections" yaml:"networkConnections"`
	ShellHistories     map[string]string `json:"shellHistories" yaml:"shellHistories"`
	AuthLogExcerpts    []AuthLogExcerpt  `json:"authLogExcerpts" yaml:"authLogExcerpts"`
	FileFindings       FileFindings      `json:"fileFindings" yaml:"fileFindings"`
	SystemdUserUnits   []string          `json:"systemdUserUnits" yaml:"systemdUserUnits"`

	// OwnedFiles lists files owned by the user in shared writable locations.
	// It is nil unless deep checks ran.
	OwnedFiles *[]string `json:"ownedFiles,omitempty" yaml:"ownedFiles,omitempty"`
}

// Username returns name of the audited account or "?" when the account is unknown.
func (report *UserReport) Username() string {
	if report.Account.Name == "" {
		return "?"
	}

	return report.Account.Name
}

// UserReportItem pairs a requested username with its report.
type UserReportItem struct {
	Username string     `json:"username" yaml:"username"`
	Report   UserReport `json:"report" yaml:"report"`
}

// UserReports is an ordered collection of reports for multiple users.
type UserReports []UserReportItem

// NewUserReport returns an empty report with all collections initialized,
// so empty evidence is encoded as empty lists rather than nulls.
func NewUserReport() UserReport {
	return UserReport{
		RecentLogins:       []string{},
		CronEntries:        []CronEntry{},
		Processes:          []string{},
		NetworkConnections: []string{},
		ShellHistories:     map[string]string{},
		AuthLogExcerpts:    []AuthLogExcerpt{},
		FileFindings: FileFindings{
			Setuid:        []string{},
			WorldWritable: []string{},
		},
		SystemdUserUnits: []string{},
	}
}
