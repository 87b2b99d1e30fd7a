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
)

// SystemdUserUnits lists user's systemd service units.
// This requires password-less sudo, so an unavailable result is expected for most invocations.
func (prober *Prober) SystemdUserUnits(ctx context.Context, name string) Result[[]string] {
	if name == "" {
		return Unavailable[[]string]("no username")
	}

	lines, err := prober.run(ctx, "sudo", "-n", "-u", name, "systemctl", "--user", "list-units", "--no-pager")
	if err != nil {
		return Unavailable[[]string]("systemd user units: %v", err)
	}

	return Found(lines)
}
