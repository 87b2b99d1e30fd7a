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

// Package collector builds user reports by running every probe for an account.
package collector

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"go.qbee.io/useraudit/app/audit"
	"go.qbee.io/useraudit/app/inventory"
	"go.qbee.io/useraudit/app/log"
	"go.qbee.io/useraudit/app/probe"
)

// Collector collects evidence for one or more users.
type Collector struct {
	prober  *probe.Prober
	workers int
}

// New returns a Collector which uses prober and collects up to workers users in parallel.
func New(prober *probe.Prober, workers int) *Collector {
	if workers < 1 {
		workers = 1
	}

	return &Collector{
		prober:  prober,
		workers: workers,
	}
}

// apply stores available result in field, or logs why the evidence is missing.
func apply[T any](username, probeName string, result probe.Result[T], field *T) {
	if !result.Available {
		log.Debugf("%s: %s unavailable: %s", username, probeName, result.Reason)
		return
	}

	*field = result.Value
}

// CollectReport returns a report for username.
// Unknown users get a report with empty account info. Probes which need the home directory are skipped for them.
// When deep is set, shared writable locations are searched for files owned by the user.
func (collector *Collector) CollectReport(ctx context.Context, username string, deep bool) audit.UserReport {
	report := audit.NewUserReport()
	prober := collector.prober

	user := inventory.User{Name: username, UID: -1, GID: -1}

	if account := prober.Account(username); account.Available {
		user = account.Value
		report.Account = audit.AccountInfo{
			Name:  user.Name,
			UID:   user.UID,
			GID:   user.GID,
			Home:  user.HomeDirectory,
			Shell: user.Shell,
		}
	} else {
		log.Infof("%s: %s", username, account.Reason)
	}

	log.Infof("collecting evidence for %s", username)

	apply(username, "recent logins", prober.RecentLogins(ctx, username), &report.RecentLogins)
	apply(username, "cron", prober.Cron(ctx, username), &report.CronEntries)
	apply(username, "processes", prober.Processes(ctx, user), &report.Processes)
	apply(username, "network connections", prober.NetworkConnections(ctx, user), &report.NetworkConnections)
	apply(username, "authentication logs", prober.AuthLogs(ctx, username), &report.AuthLogExcerpts)

	if report.Account.IsEmpty() {
		return report
	}

	home := report.Account.Home

	apply(username, "ssh", prober.SSH(home), &report.SSH)
	apply(username, "shell histories", prober.ShellHistories(home), &report.ShellHistories)
	apply(username, "file findings", prober.FileFindings(home), &report.FileFindings)
	apply(username, "systemd user units", prober.SystemdUserUnits(ctx, username), &report.SystemdUserUnits)

	if deep {
		owned := make([]string, 0)
		apply(username, "owned files", prober.OwnedFiles(user), &owned)
		report.OwnedFiles = &owned
	}

	return report
}

// CollectAllReports returns reports for all accounts in the account database, in the database order.
// Per-user failures are absorbed by the probes, so errors are returned only when accounts can't be enumerated,
// or when ctx is cancelled.
func (collector *Collector) CollectAllReports(ctx context.Context, deep bool) (audit.UserReports, error) {
	users, err := collector.prober.Accounts()
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate accounts: %w", err)
	}

	reports := make(audit.UserReports, len(users))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(collector.workers)

	for i := range users {
		i := i

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			username := users[i].Name
			reports[i] = audit.UserReportItem{
				Username: username,
				Report:   collector.CollectReport(groupCtx, username, deep),
			}

			return nil
		})
	}

	if err = group.Wait(); err != nil {
		return nil, err
	}

	return reports, nil
}
