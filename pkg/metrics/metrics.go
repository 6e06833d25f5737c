/*
Copyright 2025 Lumina Contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics records Prometheus metrics for a costcharts run and
// publishes them to a node_exporter textfile or a Pushgateway. A one-shot
// CLI has no scrape endpoint, so metrics are written out when the run ends.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nextdoor/costcharts/pkg/aws"
	"github.com/nextdoor/costcharts/pkg/cost"
)

// Metrics holds all Prometheus metrics for a costcharts run.
type Metrics struct {
	// CostDollars is the per purchase type cost over the range.
	// Labels: purchase_type
	CostDollars *prometheus.GaugeVec

	CostTotalDollars        prometheus.Gauge
	AverageDailyCostDollars prometheus.Gauge
	HighestDailyCostDollars prometheus.Gauge
	Days                    prometheus.Gauge

	// SavingsPlanHourlyCommitment is deleted and rebuilt on every record.
	// Labels: savings_plan_arn, type, region
	SavingsPlanHourlyCommitment *prometheus.GaugeVec

	// ReservedInstanceCount sums instance counts per region and type.
	// Labels: region, instance_type
	ReservedInstanceCount *prometheus.GaugeVec

	// RunInfo labels: run_id, account_id, service, metric
	RunInfo *prometheus.GaugeVec

	APIPages         prometheus.Gauge
	CacheHits        prometheus.Counter
	LastRunTimestamp prometheus.Gauge
	RunDuration      prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the provided registry.
//
// Example usage:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewMetrics(reg)
//	m.RecordSummary(summary)
//	_ = metrics.WriteTextfile(path, reg)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CostDollars: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricCostDollars,
			Help: "Cost of a purchase type over the charted range (USD)",
		}, []string{LabelPurchaseType}),

		CostTotalDollars: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricCostTotalDollars,
			Help: "Total cost over the charted range (USD)",
		}),

		AverageDailyCostDollars: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricAverageDailyCostDollars,
			Help: "Average daily cost over the charted range (USD)",
		}),

		HighestDailyCostDollars: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricHighestDailyCostDollars,
			Help: "Cost of the most expensive day in the charted range (USD)",
		}),

		Days: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricDays,
			Help: "Number of days in the charted range",
		}),

		SavingsPlanHourlyCommitment: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricSavingsPlanHourlyCommitment,
			Help: "Hourly commitment of an active Savings Plan (USD/hour)",
		}, []string{LabelSavingsPlanARN, LabelType, LabelRegion}),

		ReservedInstanceCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricReservedInstanceCount,
			Help: "Number of active Reserved Instances",
		}, []string{LabelRegion, LabelInstanceType}),

		RunInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: MetricRunInfo,
			Help: "Identifies the costcharts run (always 1)",
		}, []string{LabelRunID, LabelAccountID, LabelService, LabelMetric}),

		APIPages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricAPIPages,
			Help: "Number of Cost Explorer pages fetched (0 on a cache hit)",
		}),

		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricCacheHitsTotal,
			Help: "Cost Explorer responses served from the response cache",
		}),

		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastRunTimestampSeconds,
			Help: "Unix timestamp of the last completed run",
		}),

		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricRunDurationSeconds,
			Help: "Wall time of the last run in seconds",
		}),
	}

	reg.MustRegister(
		m.CostDollars,
		m.CostTotalDollars,
		m.AverageDailyCostDollars,
		m.HighestDailyCostDollars,
		m.Days,
		m.SavingsPlanHourlyCommitment,
		m.ReservedInstanceCount,
		m.RunInfo,
		m.APIPages,
		m.CacheHits,
		m.LastRunTimestamp,
		m.RunDuration,
	)

	return m
}

// RecordSummary sets the cost gauges from a summary. Purchase types from a
// previous summary are removed.
func (m *Metrics) RecordSummary(s cost.Summary) {
	m.CostDollars.Reset()
	for _, b := range s.Breakdown {
		m.CostDollars.With(prometheus.Labels{LabelPurchaseType: b.PurchaseType}).Set(b.Total)
	}
	m.CostTotalDollars.Set(s.Total)
	m.AverageDailyCostDollars.Set(s.AverageDaily)
	m.HighestDailyCostDollars.Set(s.HighestDayTotal)
	m.Days.Set(float64(s.Days))
}

// RecordFetch records how the Cost Explorer response was obtained.
func (m *Metrics) RecordFetch(pages int, cached bool) {
	if cached {
		m.CacheHits.Inc()
		m.APIPages.Set(0)
		return
	}
	m.APIPages.Set(float64(pages))
}

// RecordCommitments replaces the Savings Plan and Reserved Instance gauges.
func (m *Metrics) RecordCommitments(sps []aws.SavingsPlan, ris []aws.ReservedInstance) {
	m.SavingsPlanHourlyCommitment.Reset()
	for _, sp := range sps {
		m.SavingsPlanHourlyCommitment.With(prometheus.Labels{
			LabelSavingsPlanARN: sp.SavingsPlanARN,
			LabelType:           sp.SavingsPlanType,
			LabelRegion:         sp.Region,
		}).Set(sp.Commitment)
	}

	m.ReservedInstanceCount.Reset()
	for _, ri := range ris {
		m.ReservedInstanceCount.With(prometheus.Labels{
			LabelRegion:       ri.Region,
			LabelInstanceType: ri.InstanceType,
		}).Add(float64(ri.InstanceCount))
	}
}

// RecordRunInfo sets the run's identifying labels.
func (m *Metrics) RecordRunInfo(runID, accountID, service, metric string) {
	m.RunInfo.Reset()
	m.RunInfo.With(prometheus.Labels{
		LabelRunID:     runID,
		LabelAccountID: accountID,
		LabelService:   service,
		LabelMetric:    metric,
	}).Set(1)
}

// RecordRun records the duration of a run that started at start and ended at end.
func (m *Metrics) RecordRun(start, end time.Time) {
	m.RunDuration.Set(end.Sub(start).Seconds())
	m.LastRunTimestamp.Set(float64(end.Unix()))
}
