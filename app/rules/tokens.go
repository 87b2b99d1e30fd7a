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

package rules

// Tokens are literal substrings which rules search for in collected evidence.
type Tokens struct {
	// Cron tokens are matched case-sensitively against cron entries.
	Cron []string `toml:"cron"`

	// History tokens are matched against lowercased shell histories.
	History []string `toml:"history"`

	// KeyMarkers are key type prefixes expected in authorized_keys.
	KeyMarkers []string `toml:"key_markers"`

	// AuthFailure tokens are matched against lowercased authentication logs.
	AuthFailure []string `toml:"auth_failure"`

	// AuthSuccess tokens are matched against lowercased authentication logs.
	AuthSuccess []string `toml:"auth_success"`
}

// DefaultTokens returns tokens of downloaders, reverse shells and authentication results.
func DefaultTokens() Tokens {
	return Tokens{
		Cron:        []string{"curl ", "wget ", "nc ", "netcat", "bash -i", "python -c", "perl -e"},
		History:     []string{"nc ", "netcat", "curl ", "wget ", "python -c", "bash -i", "perl -e", "openssl s_client"},
		KeyMarkers:  []string{"ssh-rsa", "ssh-ed25519", "ecdsa-"},
		AuthFailure: []string{"failed password", "invalid user"},
		AuthSuccess: []string{"accepted password", "accepted publickey"},
	}
}
