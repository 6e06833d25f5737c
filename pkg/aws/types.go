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

// Package aws provides abstractions for interacting with AWS services.
//
// This file contains pure data structure definitions with no logic.
// These types are exercised through the real client tests and the mock
// client tests, so direct unit tests would provide no value.

package aws

import (
	"time"
)

// Cost Explorer constants used when building GetCostAndUsage requests.
const (
	// DateLayout is the YYYY-MM-DD layout Cost Explorer uses for time periods.
	DateLayout = "2006-01-02"

	// DefaultService is the SERVICE dimension value for EC2 compute.
	DefaultService = "Amazon Elastic Compute Cloud - Compute"

	// DefaultMetric is the cost metric requested when none is configured.
	DefaultMetric = "BlendedCost"

	// DimensionPurchaseType groups results by purchase option
	// (On Demand, Spot, Savings Plans, Reserved, ...).
	DimensionPurchaseType = "PURCHASE_TYPE"

	// CostExplorerRegion is the only region that serves the Cost Explorer API.
	CostExplorerRegion = "us-east-1"
)

// CostMetrics lists the Cost Explorer metrics that are expressed in currency.
// Usage metrics (UsageQuantity, NormalizedUsageAmount) are not costs and are
// rejected by config validation.
var CostMetrics = []string{
	"AmortizedCost",
	"BlendedCost",
	"NetAmortizedCost",
	"NetUnblendedCost",
	"UnblendedCost",
}

// CostQuery describes one GetCostAndUsage request.
type CostQuery struct {
	// Start is the first day of the period (inclusive).
	Start time.Time

	// End is the day after the last day of the period (exclusive), matching
	// Cost Explorer's TimePeriod semantics.
	End time.Time

	// Service is the SERVICE dimension value to filter on
	// (e.g., "Amazon Elastic Compute Cloud - Compute").
	Service string

	// Metric is the cost metric to request (e.g., "BlendedCost").
	Metric string

	// GroupBy is the dimension to group by. Defaults to PURCHASE_TYPE.
	GroupBy string
}

// CostResponse holds every ResultsByTime entry returned across all pages.
type CostResponse struct {
	// Results are in API order. A single day can appear on more than one page
	// when its groups are split by pagination.
	Results []ResultByTime `json:"results"`

	// Pages is how many GetCostAndUsage calls were needed.
	Pages int `json:"pages"`
}

// ResultByTime is a single time period of Cost Explorer results.
type ResultByTime struct {
	// Start is the period start in YYYY-MM-DD form.
	Start string `json:"start"`

	// End is the period end in YYYY-MM-DD form (exclusive).
	End string `json:"end"`

	// Estimated is true when AWS has not finalized the period's costs yet.
	Estimated bool `json:"estimated"`

	// Groups are the per-purchase-type amounts for the period.
	Groups []Group `json:"groups"`
}

// Group is one group of a ResultByTime entry.
type Group struct {
	// Keys are the group-by values. For PURCHASE_TYPE there is exactly one
	// key (e.g., "Spot Instances"), but AWS may return none.
	Keys []string `json:"keys"`

	// Amount is the metric amount as returned by the API (a decimal string).
	Amount string `json:"amount"`

	// Unit is the currency unit (e.g., "USD").
	Unit string `json:"unit"`
}

// AccountInfo identifies the AWS account whose costs are charted.
type AccountInfo struct {
	// AccountID is the 12-digit AWS account ID, or "Unknown" when it could
	// not be resolved.
	AccountID string

	// ARN is the caller identity ARN.
	ARN string

	// Alias is the IAM account alias, if one is set.
	Alias string

	// Profile is the shared config profile used, or "default".
	Profile string
}

// SavingsPlan represents an active AWS Savings Plan.
type SavingsPlan struct {
	// SavingsPlanARN is the unique ARN for this Savings Plan.
	SavingsPlanARN string

	// SavingsPlanID is the short identifier of the plan.
	SavingsPlanID string

	// SavingsPlanType is "Compute", "EC2Instance" or "SageMaker".
	SavingsPlanType string

	// State is the plan state (only "active" plans are returned).
	State string

	// Commitment is the hourly commitment amount ($/hour).
	Commitment float64

	// Region is the region for EC2 Instance plans; empty for Compute plans.
	Region string

	// InstanceFamily is the instance family for EC2 Instance plans.
	InstanceFamily string

	// Start is when the plan became active.
	Start time.Time

	// End is when the plan expires.
	End time.Time
}

// ReservedInstance represents an active EC2 Reserved Instance reservation.
type ReservedInstance struct {
	// ReservedInstanceID is the reservation ID.
	ReservedInstanceID string

	// InstanceType is the reserved instance type (e.g., "m5.xlarge").
	InstanceType string

	// InstanceCount is how many instances the reservation covers.
	InstanceCount int32

	// Region is the region the reservation belongs to.
	Region string

	// AvailabilityZone is set for zonal reservations, empty for regional ones.
	AvailabilityZone string

	// ProductDescription is the platform (e.g., "Linux/UNIX").
	ProductDescription string

	// OfferingType is the payment option (e.g., "No Upfront").
	OfferingType string

	// End is when the reservation expires.
	End time.Time
}
