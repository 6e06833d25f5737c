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

// Package cost reshapes Cost Explorer results into a daily x purchase-type
// matrix and computes the summary statistics shown on charts and reports.
//
// Everything in this package is pure: no AWS calls, no I/O.
package cost

import (
	"time"
)

// Purchase type labels as returned by Cost Explorer's PURCHASE_TYPE dimension.
const (
	PurchaseTypeOnDemand     = "On Demand Instances"
	PurchaseTypeSpot         = "Spot Instances"
	PurchaseTypeSavingsPlans = "Savings Plans"
	PurchaseTypeReserved     = "Reserved"
	PurchaseTypeUnknown      = "Unknown"
)

// Record is one flattened (date, purchase type, amount) row.
type Record struct {
	Date         time.Time
	PurchaseType string
	Amount       float64
}

// Table is the pivoted cost matrix: one row per day, one column per
// purchase type. Cells[i][j] is the cost of PurchaseTypes[j] on Dates[i].
type Table struct {
	Dates         []time.Time `json:"dates" yaml:"dates"`
	PurchaseTypes []string    `json:"purchaseTypes" yaml:"purchaseTypes"`
	Cells         [][]float64 `json:"cells" yaml:"cells"`
}

// TypeTotal is a purchase type's share of the total cost.
type TypeTotal struct {
	PurchaseType string
	Total        float64
	// Percent is Total as a percentage of the grand total; 0 when the grand total is 0.
	Percent float64
}

// Summary holds the statistics printed in the summary report and drawn on charts.
type Summary struct {
	Start time.Time
	End   time.Time

	// Days is the number of rows in the table.
	Days int

	Total        float64
	AverageDaily float64

	// Breakdown is in the table's column order.
	Breakdown []TypeTotal

	// HighestDay is the first day with the largest total. Zero when the table is empty.
	HighestDay      time.Time
	HighestDayTotal float64
}
