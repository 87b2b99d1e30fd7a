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
	"go.qbee.io/useraudit/app/inventory"
)

// Account resolves name in the account database.
func (prober *Prober) Account(name string) Result[inventory.User] {
	user, err := inventory.LookupUser(prober.settings.PasswdFile, name)
	if err != nil {
		return Unavailable[inventory.User]("%v", err)
	}

	return Found(*user)
}

// Accounts returns all accounts from the account database with non-negative UID.
// This is the only probe which reports an error, since without account database there is nothing to audit.
func (prober *Prober) Accounts() ([]inventory.User, error) {
	users, err := inventory.GetUsersFromPasswd(prober.settings.PasswdFile)
	if err != nil {
		return nil, err
	}

	result := make([]inventory.User, 0, len(users))
	for _, user := range users {
		if user.UID >= 0 {
			result = append(result, user)
		}
	}

	return result, nil
}
