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

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"go.qbee.io/useraudit/app/inventory"
	"go.qbee.io/useraudit/app/rules"
	"go.qbee.io/useraudit/app/utils"
)

// Supported serialization formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ValidateFormat checks that format is a supported serialization format.
func ValidateFormat(format string) error {
	switch format {
	case FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected %s or %s)", format, FormatJSON, FormatYAML)
	}
}

// outputFileMode is used for saved reports, which may contain secrets from shell histories.
const outputFileMode = 0600

// Envelope wraps saved data with information about the audit run.
type Envelope[T any] struct {
	RunID       string         `json:"runId" yaml:"runId"`
	Host        inventory.Host `json:"host" yaml:"host"`
	GeneratedAt time.Time      `json:"generatedAt" yaml:"generatedAt"`
	Version     string         `json:"version" yaml:"version"`
	Data        T              `json:"data" yaml:"data"`
}

// NewEnvelope returns data wrapped in an Envelope with a new run ID and current host information.
func NewEnvelope[T any](data T, version string) Envelope[T] {
	return Envelope[T]{
		RunID:       uuid.NewString(),
		Host:        inventory.CollectHost(),
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		Version:     version,
		Data:        data,
	}
}

// Encode writes v to w in the requested format.
func Encode(w io.Writer, v any, format string) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("error encoding JSON: %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("error encoding YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("error encoding YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	return nil
}

// Decode reads v from r in the requested format.
func Decode(r io.Reader, v any, format string) error {
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("error decoding JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(v); err != nil {
			return fmt.Errorf("error decoding YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}

	return nil
}

// SaveReport writes envelope to path in the requested format.
// The file is either written completely or left untouched.
func SaveReport[T any](path string, envelope Envelope[T], format string) error {
	buf := new(bytes.Buffer)

	if err := Encode(buf, envelope, format); err != nil {
		return err
	}

	if err := utils.WriteFileAtomic(path, buf.Bytes(), outputFileMode); err != nil {
		return fmt.Errorf("cannot save report: %w", err)
	}

	return nil
}

// LoadReport reads an envelope saved by SaveReport.
func LoadReport[T any](path string, format string) (*Envelope[T], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load report: %w", err)
	}

	defer file.Close()

	envelope := new(Envelope[T])
	if err = Decode(file, envelope, format); err != nil {
		return nil, fmt.Errorf("cannot load report %s: %w", path, err)
	}

	return envelope, nil
}

// UserFindings pairs a username with findings of its report.
type UserFindings struct {
	Username string
	Findings []rules.Finding
}

// FormatFindings renders findings-only summary.
// A single user summary lists findings one per line. Summary of all users
// groups findings under a header per user and skips users without findings.
func FormatFindings(users []UserFindings, allUsers bool) string {
	lines := make([]string, 0)

	for _, user := range users {
		if allUsers && len(user.Findings) > 0 {
			lines = append(lines, "== "+user.Username+" ==")
		}

		for _, finding := range user.Findings {
			lines = append(lines, finding.String())
		}
	}

	if len(lines) == 0 {
		if allUsers {
			return "No suspicious findings across users\n"
		}

		return "No suspicious findings\n"
	}

	return strings.Join(lines, "\n") + "\n"
}

// SaveFindings writes findings-only summary to path.
// The file is either written completely or left untouched.
func SaveFindings(path string, users []UserFindings, allUsers bool) error {
	if err := utils.WriteFileAtomic(path, []byte(FormatFindings(users, allUsers)), outputFileMode); err != nil {
		return fmt.Errorf("cannot save findings: %w", err)
	}

	return nil
}
