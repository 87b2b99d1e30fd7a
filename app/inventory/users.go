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

// Package inventory provides access to the local account database.
package inventory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.qbee.io/useraudit/app/utils"
)

// PasswdFilePath is the path to the standard passwd file.
const PasswdFilePath = "/etc/passwd"

// ErrUnknownUser is returned when the requested user doesn't exist in the account database.
var ErrUnknownUser = errors.New("unknown user")

// User is a single entry of the account database.
type User struct {
	// Name - the string a user would type in when logging into the operating system.
	Name string `json:"user"`

	// UID - user identifier number.
	UID int `json:"uid"`

	// GID - group identifier number, which identifies the primary group of the user.
	GID int `json:"gid"`

	// GECOS - general information about the user, such as their real name and phone number.
	GECOS string `json:"gecos"`

	// HomeDirectory - path to the user's home directory.
	HomeDirectory string `json:"home"`

	// Shell - program that is started every time the user logs into the system.
	Shell string `json:"shell"`
}

// GetUsersFromPasswd returns users based on passwd file, in file order.
// Comments, NIS compat entries (+/-) and malformed lines are skipped.
func GetUsersFromPasswd(passwdFilePath string) ([]User, error) {
	users := make([]User, 0)

	err := utils.ForLinesInFile(passwdFilePath, func(line string) error {
		user, ok := parsePasswdLine(line)
		if ok {
			users = append(users, user)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return users, nil
}

// LookupUser returns the first user with the provided name from the passwd file.
func LookupUser(passwdFilePath, name string) (*User, error) {
	if name == "" {
		return nil, ErrUnknownUser
	}

	users, err := GetUsersFromPasswd(passwdFilePath)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].Name == name {
			return &users[i], nil
		}
	}

	return nil, fmt.Errorf("%s: %w", name, ErrUnknownUser)
}

// parsePasswdLine parses name:password:UID:GID:GECOS:directory:shell line.
func parsePasswdLine(line string) (User, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
		return User{}, false
	}

	fields := strings.Split(line, ":")
	if len(fields) < 7 || fields[0] == "" {
		return User{}, false
	}

	uid, err := strconv.Atoi(fields[2])
	if err != nil {
		return User{}, false
	}

	gid, err := strconv.Atoi(fields[3])
	if err != nil {
		return User{}, false
	}

	return User{
		Name:          fields[0],
		UID:           uid,
		GID:           gid,
		GECOS:         fields[4],
		HomeDirectory: fields[5],
		Shell:         fields[6],
	}, true
}
