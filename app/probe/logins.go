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
	"context"
	"strconv"
	"strings"
)

// RecentLogins returns the most recent logins of the user.
// Detailed history from `last` is preferred, with `lastlog` summary as a fallback.
func (prober *Prober) RecentLogins(ctx context.Context, name string) Result[[]string] {
	if name == "" {
		return Unavailable[[]string]("no username")
	}

	limit := prober.settings.LoginLimit

	lines, err := prober.run(ctx, "last", "-n", strconv.Itoa(limit), name)
	if err == nil {
		lines = filterLastOutput(lines)
	}

	if len(lines) == 0 {
		if lines, err = prober.run(ctx, "lastlog", "-u", name); err != nil {
			return Unavailable[[]string]("login history: %v", err)
		}
	}

	if limit >= 0 && len(lines) > limit {
		lines = lines[:limit]
	}

	return Found(lines)
}

// filterLastOutput drops the "wtmp begins ..." footer printed by `last`.
func filterLastOutput(lines []string) []string {
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		if strings.HasPrefix(line, "wtmp begins") || strings.HasPrefix(line, "btmp begins") {
			continue
		}

		result = append(result, line)
	}

	return result
}
