// Copyright 2025 Lumina Contributors
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

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/nextdoor/costcharts/pkg/metrics"
)

// recordMetrics updates the run metrics and publishes them where configured.
// Publishing failures are returned.
func (r *Runner) recordMetrics(ctx context.Context, res *Result, startedAt, finishedAt time.Time) error {
	if r.Metrics == nil {
		return nil
	}

	r.Metrics.RecordSummary(res.Summary)
	r.Metrics.RecordFetch(res.Pages, res.Cached)
	if res.Commitments != nil {
		r.Metrics.RecordCommitments(res.Commitments.SavingsPlans, res.Commitments.ReservedInstances)
	}
	accountID := ""
	if res.Account != nil {
		accountID = res.Account.AccountID
	}
	r.Metrics.RecordRunInfo(res.RunID, accountID, r.Config.Service, r.Config.Metric)
	r.Metrics.RecordRun(startedAt, finishedAt)

	cfg := r.Config.Metrics
	if cfg.Textfile == "" && cfg.PushgatewayURL == "" {
		return nil
	}
	if r.Gatherer == nil {
		return fmt.Errorf("metrics publishing configured without a gatherer")
	}

	if cfg.Textfile != "" {
		if err := metrics.WriteTextfile(cfg.Textfile, r.Gatherer); err != nil {
			return err
		}
		r.Log.V(1).Info("metrics written", "path", cfg.Textfile)
	}
	if cfg.PushgatewayURL != "" {
		if err := metrics.Push(ctx, cfg.PushgatewayURL, cfg.Job, r.Gatherer); err != nil {
			return err
		}
		r.Log.V(1).Info("metrics pushed", "url", cfg.PushgatewayURL, "job", cfg.Job)
	}
	return nil
}
