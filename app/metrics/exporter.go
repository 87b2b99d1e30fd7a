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

// Package metrics exports audit results as Prometheus metrics.
//
// Metrics are written in the text exposition format, so they can be picked up
// by the node exporter textfile collector after every audit run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"go.qbee.io/useraudit/app/audit"
	"go.qbee.io/useraudit/app/rules"
)

const namespace = "user_audit"

// Exporter holds metrics of a single audit run.
type Exporter struct {
	registry *prometheus.Registry

	findings      *prometheus.GaugeVec
	processes     *prometheus.GaugeVec
	connections   *prometheus.GaugeVec
	keys          *prometheus.GaugeVec
	setuid        *prometheus.GaugeVec
	worldWritable *prometheus.GaugeVec
	users         prometheus.Gauge
	lastRun       prometheus.Gauge
}

func newUserGauge(name, help string, labels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		append([]string{"user"}, labels...),
	)
}

// New returns an Exporter with its own registry.
func New() *Exporter {
	exporter := &Exporter{
		registry:      prometheus.NewRegistry(),
		findings:      newUserGauge("findings", "Number of suspicious findings per rule.", "rule"),
		processes:     newUserGauge("processes", "Number of running processes."),
		connections:   newUserGauge("network_connections", "Number of network sockets of user's processes."),
		keys:          newUserGauge("authorized_keys", "Number of keys in authorized_keys."),
		setuid:        newUserGauge("setuid_files", "Number of setuid files in the home directory."),
		worldWritable: newUserGauge("world_writable_files", "Number of world-writable files in the home directory."),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "users",
			Help:      "Number of audited users.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Time of the audit run.",
		}),
	}

	exporter.registry.MustRegister(
		exporter.findings,
		exporter.processes,
		exporter.connections,
		exporter.keys,
		exporter.setuid,
		exporter.worldWritable,
		exporter.users,
		exporter.lastRun,
	)

	exporter.lastRun.Set(float64(time.Now().Unix()))

	return exporter
}

// Record adds metrics of a single user report and its findings.
func (exporter *Exporter) Record(username string, report *audit.UserReport, findings []rules.Finding) {
	exporter.users.Inc()

	perRule := make(map[rules.Rule]int)
	for _, finding := range findings {
		perRule[finding.Rule]++
	}

	for _, rule := range rules.All() {
		exporter.findings.WithLabelValues(username, rule.String()).Set(float64(perRule[rule]))
	}

	exporter.processes.WithLabelValues(username).Set(float64(len(report.Processes)))
	exporter.connections.WithLabelValues(username).Set(float64(len(report.NetworkConnections)))
	exporter.keys.WithLabelValues(username).Set(float64(rules.CountKeys(report.SSH.AuthorizedKeys)))
	exporter.setuid.WithLabelValues(username).Set(float64(len(report.FileFindings.Setuid)))
	exporter.worldWritable.WithLabelValues(username).Set(float64(len(report.FileFindings.WorldWritable)))
}

// Gatherer returns gatherer of recorded metrics.
func (exporter *Exporter) Gatherer() prometheus.Gatherer {
	return exporter.registry
}

// WriteTextfile writes recorded metrics to path in the text exposition format.
// The file is replaced atomically.
func (exporter *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, exporter.registry); err != nil {
		return fmt.Errorf("cannot write metrics: %w", err)
	}

	return nil
}
