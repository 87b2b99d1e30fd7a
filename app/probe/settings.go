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
	"time"

	"go.qbee.io/useraudit/app/inventory"
	"go.qbee.io/useraudit/app/inventory/linux"
)

// Settings define system paths and limits used by probes.
type Settings struct {
	// PasswdFile is the account database.
	PasswdFile string `toml:"passwd_file"`

	// ProcFS is the proc filesystem mount point.
	ProcFS string `toml:"proc_fs"`

	// CommandTimeout bounds each external command.
	CommandTimeout time.Duration `toml:"command_timeout"`

	// LoginLimit is the maximum number of recent logins reported.
	LoginLimit int `toml:"login_limit"`

	// JournalLines is the number of journal entries requested from journalctl.
	JournalLines int `toml:"journal_lines"`

	// JournalUnits are systemd units whose journal entries are collected.
	JournalUnits []string `toml:"journal_units"`

	// AuthLogFiles are system authentication logs.
	AuthLogFiles []string `toml:"auth_log_files"`

	// AuthLogTail is the number of characters kept from each filtered authentication log.
	AuthLogTail int `toml:"auth_log_tail"`

	// MaxLogBytes is the number of bytes read from the end of each authentication log.
	MaxLogBytes int64 `toml:"max_log_bytes"`

	// MaxFileBytes is the maximum number of bytes read from any other file.
	MaxFileBytes int64 `toml:"max_file_bytes"`

	// MaxWalkFiles is the maximum number of files visited by a single directory walk.
	MaxWalkFiles int `toml:"max_walk_files"`

	// CronFiles are system-wide crontab files.
	CronFiles []string `toml:"cron_files"`

	// CronDirs are directories containing cron files.
	CronDirs []string `toml:"cron_dirs"`

	// HistoryFiles are shell history locations relative to the home directory (glob patterns allowed).
	HistoryFiles []string `toml:"history_files"`

	// SharedDirs are world-writable locations searched for user's files in deep mode.
	SharedDirs []string `toml:"shared_dirs"`
}

// DefaultSettings returns settings for a standard Linux system.
func DefaultSettings() Settings {
	return Settings{
		PasswdFile:     inventory.PasswdFilePath,
		ProcFS:         string(linux.DefaultProcFS),
		CommandTimeout: 4 * time.Second,
		LoginLimit:     10,
		JournalLines:   200,
		JournalUnits:   []string{"ssh", "sshd"},
		AuthLogFiles:   []string{"/var/log/auth.log", "/var/log/secure"},
		AuthLogTail:    5000,
		MaxLogBytes:    8 << 20,
		MaxFileBytes:   1 << 20,
		MaxWalkFiles:   2000,
		CronFiles:      []string{"/etc/crontab"},
		CronDirs: []string{
			"/etc/cron.d",
			"/etc/cron.daily",
			"/etc/cron.hourly",
			"/etc/cron.weekly",
			"/etc/cron.monthly",
			"/var/spool/cron/crontabs",
			"/var/spool/cron",
		},
		HistoryFiles: []string{
			".bash_history",
			".zsh_history",
			".ash_history",
			".sh_history",
			".history",
			".python_history",
			".mysql_history",
			".psql_history",
			".config/xfce4/terminal/*history",
			".local/share/fish/fish_history",
			".local/share/recently-used.xbel",
		},
		SharedDirs: []string{"/tmp", "/var/tmp", "/dev/shm"},
	}
}
