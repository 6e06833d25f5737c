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

// Package pipeline runs one costcharts report: fetch Cost Explorer data,
// reshape it into a daily cost table, print the summary, render the charts,
// and publish artifacts and metrics.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nextdoor/costcharts/internal/cache"
	"github.com/nextdoor/costcharts/pkg/aws"
	"github.com/nextdoor/costcharts/pkg/config"
	"github.com/nextdoor/costcharts/pkg/cost"
	"github.com/nextdoor/costcharts/pkg/metrics"
	"github.com/nextdoor/costcharts/pkg/render"
)

// Runner runs the cost report pipeline.
type Runner struct {
	// AWS client for making API calls
	AWSClient aws.Client

	// Resolved configuration
	Config *config.Config

	// Cache for Cost Explorer responses. Nil disables caching.
	Cache cache.ResponseCache

	// Metrics for the run. Nil disables metrics.
	Metrics *metrics.Metrics

	// Gatherer is what gets written to the textfile or pushed.
	// Required when metrics publishing is configured.
	Gatherer prometheus.Gatherer

	// Logger
	Log logr.Logger

	// Stdout receives the summary report. Nil means os.Stdout.
	Stdout io.Writer

	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
}

// Result describes a completed run.
type Result struct {
	RunID string

	// Start and End are the queried range, End exclusive.
	Start time.Time
	End   time.Time

	Table   *cost.Table
	Summary cost.Summary
	Account *aws.AccountInfo

	// Commitments is nil when disabled or when the lookup failed.
	Commitments *render.Commitments

	// Pages is the number of Cost Explorer pages fetched; 0 when Cached.
	Pages  int
	Cached bool

	// Artifacts are the paths of every file written.
	Artifacts []string

	// Uploaded are the s3:// URIs of uploaded artifacts.
	Uploaded []string
}

// Run executes the pipeline once.
//
// Cost Explorer errors abort the run and are returned wrapped, never
// reclassified. Failing to resolve the account or the commitments only logs a
// warning.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	now := r.Now
	if now == nil {
		now = time.Now
	}
	startedAt := now()

	res := &Result{RunID: uuid.NewString()}
	res.Start, res.End = r.Config.DateRange(startedAt)
	if !res.Start.Before(res.End) {
		return nil, fmt.Errorf("invalid date range: start %s is not before end %s",
			res.Start.Format(aws.DateLayout), res.End.Format(aws.DateLayout))
	}

	log := r.Log.WithValues("run_id", res.RunID)
	log.Info("starting cost report",
		"start", res.Start.Format(aws.DateLayout),
		"end", res.End.Format(aws.DateLayout),
		"service", r.Config.Service,
		"metric", r.Config.Metric)

	query := aws.CostQuery{
		Start:   res.Start,
		End:     res.End,
		Service: r.Config.Service,
		Metric:  r.Config.Metric,
		GroupBy: aws.DimensionPurchaseType,
	}
	resp, cached, err := r.fetch(ctx, log, query)
	if err != nil {
		return nil, err
	}
	res.Cached = cached
	if !cached {
		res.Pages = resp.Pages
	}

	records, err := cost.Flatten(resp.Results)
	if err != nil {
		return nil, fmt.Errorf("failed to process cost data: %w", err)
	}
	res.Table, err = cost.Pivot(records, res.Start, res.End)
	if err != nil {
		return nil, fmt.Errorf("failed to process cost data: %w", err)
	}
	res.Summary = cost.Summarize(res.Table)
	log.V(1).Info("processed cost data",
		"records", len(records),
		"days", res.Table.Len(),
		"purchase_types", len(res.Table.PurchaseTypes))

	res.Account = r.accountInfo(ctx, log)

	if r.Config.Commitments.Enabled {
		c, err := r.fetchCommitments(ctx)
		if err != nil {
			log.Error(err, "failed to fetch active commitments, omitting section")
		} else {
			res.Commitments = c
		}
	}

	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	if err := (render.SummaryRenderer{}).Render(stdout, res.Summary, res.Commitments); err != nil {
		return nil, err
	}

	info := render.NewChartInfo(res.Account, r.Config.Service, r.Config.Metric)
	res.Artifacts, err = r.writeArtifacts(res, info)
	if err != nil {
		return nil, err
	}
	for _, a := range res.Artifacts {
		log.Info("artifact saved", "path", a)
	}

	if r.Config.Upload.Bucket != "" {
		res.Uploaded, err = r.upload(ctx, res)
		if err != nil {
			return nil, err
		}
		log.Info("artifacts uploaded", "bucket", r.Config.Upload.Bucket, "count", len(res.Uploaded))
	}

	if err := r.recordMetrics(ctx, res, startedAt, now()); err != nil {
		return nil, err
	}

	log.Info("cost report complete",
		"total_cost", res.Summary.Total,
		"days", res.Summary.Days,
		"cached", res.Cached,
		"duration_seconds", now().Sub(startedAt).Seconds())
	return res, nil
}

// fetch returns the Cost Explorer response for query, from the cache when
// possible. Cache failures are logged and fall through to the API.
func (r *Runner) fetch(ctx context.Context, log logr.Logger, query aws.CostQuery) (*aws.CostResponse, bool, error) {
	c := r.Cache
	if c == nil {
		c = cache.NopCache{}
	}

	resp, ok, err := c.Get(ctx, query)
	if err != nil {
		log.Error(err, "response cache lookup failed, querying Cost Explorer")
	} else if ok {
		log.Info("using cached Cost Explorer response", "results", len(resp.Results))
		return resp, true, nil
	}

	ce, err := r.AWSClient.CostExplorer(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create Cost Explorer client: %w", err)
	}
	resp, err = ce.GetCostAndUsage(ctx, query)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch cost data: %w", err)
	}
	log.Info("fetched cost data", "pages", resp.Pages, "results", len(resp.Results))

	if err := c.Set(ctx, query, resp); err != nil {
		log.Error(err, "failed to store Cost Explorer response in cache")
	}
	return resp, false, nil
}

// accountInfo resolves the caller's account. On failure the account shows as
// Unknown under the configured profile.
func (r *Runner) accountInfo(ctx context.Context, log logr.Logger) *aws.AccountInfo {
	fallback := &aws.AccountInfo{AccountID: "Unknown", Profile: r.Config.Profile}
	if fallback.Profile == "" {
		fallback.Profile = aws.DefaultProfileName
	}

	id, err := r.AWSClient.Identity(ctx)
	if err != nil {
		log.Info("could not get account info", "error", err.Error())
		return fallback
	}
	info, err := id.GetAccountInfo(ctx)
	if err != nil {
		log.Info("could not get account info", "error", err.Error())
		return fallback
	}
	return info
}
