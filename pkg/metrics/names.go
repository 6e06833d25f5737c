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

package metrics

// This file exports metric name constants for dashboards and alert rules
// that query costcharts metrics from a textfile collector or Pushgateway.
//
// Example usage:
//
//	query := fmt.Sprintf("sum by (%s) (%s)", metrics.LabelPurchaseType, metrics.MetricCostDollars)

// Cost Metrics
//
// Values describe the most recent run's date range.
const (
	// MetricCostDollars is the total cost of one purchase type over the range.
	// Type: Gauge
	// Labels: purchase_type
	MetricCostDollars = "costcharts_cost_dollars"

	// MetricCostTotalDollars is the total cost over the range.
	// Type: Gauge
	// Labels: none
	MetricCostTotalDollars = "costcharts_cost_total_dollars"

	// MetricAverageDailyCostDollars is the total divided by the number of days.
	// Type: Gauge
	// Labels: none
	MetricAverageDailyCostDollars = "costcharts_average_daily_cost_dollars"

	// MetricHighestDailyCostDollars is the cost of the most expensive day.
	// Type: Gauge
	// Labels: none
	MetricHighestDailyCostDollars = "costcharts_highest_daily_cost_dollars"

	// MetricDays is the number of days in the cost table.
	// Type: Gauge
	// Labels: none
	MetricDays = "costcharts_days"
)

// Commitment Metrics
//
// Only populated when the commitments section is enabled.
const (
	// MetricSavingsPlanHourlyCommitment is the hourly commitment of an active Savings Plan.
	// Type: Gauge
	// Labels: savings_plan_arn, type, region
	MetricSavingsPlanHourlyCommitment = "costcharts_savings_plan_hourly_commitment_dollars"

	// MetricReservedInstanceCount counts active Reserved Instances.
	// Type: Gauge
	// Labels: region, instance_type
	MetricReservedInstanceCount = "costcharts_reserved_instance_count"
)

// Run Metrics
const (
	// MetricRunInfo is always 1 and carries the run's identifying labels.
	// Type: Gauge
	// Labels: run_id, account_id, service, metric
	MetricRunInfo = "costcharts_run_info"

	// MetricAPIPages is the number of Cost Explorer pages fetched. Zero on a cache hit.
	// Type: Gauge
	// Labels: none
	MetricAPIPages = "costcharts_api_pages"

	// MetricCacheHitsTotal counts Cost Explorer responses served from the cache.
	// Type: Counter
	// Labels: none
	MetricCacheHitsTotal = "costcharts_cache_hits_total"

	// MetricLastRunTimestampSeconds is the Unix time the run finished.
	// Type: Gauge
	// Labels: none
	MetricLastRunTimestampSeconds = "costcharts_last_run_timestamp_seconds"

	// MetricRunDurationSeconds is the wall time of the run.
	// Type: Gauge
	// Labels: none
	MetricRunDurationSeconds = "costcharts_run_duration_seconds"
)
