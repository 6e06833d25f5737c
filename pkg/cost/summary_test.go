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

package cost

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	table := &Table{
		Dates:         []time.Time{day("2025-01-01"), day("2025-01-02"), day("2025-01-03"), day("2025-01-04")},
		PurchaseTypes: []string{PurchaseTypeOnDemand, PurchaseTypeSpot},
		Cells: [][]float64{
			{10, 5},
			{20, 10},
			{0, 0},
			{25, 5},
		},
	}

	s := Summarize(table)

	assert.Equal(t, day("2025-01-01"), s.Start)
	assert.Equal(t, day("2025-01-04"), s.End)
	assert.Equal(t, 4, s.Days)
	assert.InDelta(t, 75.0, s.Total, 1e-9)
	assert.InDelta(t, 18.75, s.AverageDaily, 1e-9, "zero-cost days count toward the average")

	require.Len(t, s.Breakdown, 2)
	assert.Equal(t, PurchaseTypeOnDemand, s.Breakdown[0].PurchaseType)
	assert.InDelta(t, 55.0, s.Breakdown[0].Total, 1e-9)
	assert.InDelta(t, 73.333, s.Breakdown[0].Percent, 1e-3)
	assert.InDelta(t, 20.0, s.Breakdown[1].Total, 1e-9)
	assert.InDelta(t, 26.667, s.Breakdown[1].Percent, 1e-3)

	// Days 2 and 4 tie at 30; the first one wins.
	assert.Equal(t, day("2025-01-02"), s.HighestDay)
	assert.InDelta(t, 30.0, s.HighestDayTotal, 1e-9)
}

func TestSummarize_ZeroTotal(t *testing.T) {
	table := &Table{
		Dates:         []time.Time{day("2025-01-01"), day("2025-01-02")},
		PurchaseTypes: []string{PurchaseTypeSpot},
		Cells:         [][]float64{{0}, {0}},
	}

	s := Summarize(table)
	assert.Zero(t, s.Total)
	assert.Zero(t, s.AverageDaily)
	require.Len(t, s.Breakdown, 1)
	assert.Zero(t, s.Breakdown[0].Percent, "percent must not divide by a zero total")
	assert.Equal(t, day("2025-01-01"), s.HighestDay)
}

func TestSummarize_EmptyTable(t *testing.T) {
	s := Summarize(&Table{})

	assert.Zero(t, s.Days)
	assert.Zero(t, s.AverageDaily)
	assert.True(t, s.HighestDay.IsZero())
	assert.Empty(t, s.Breakdown)
}

func TestSummarize_PercentagesAddUp(t *testing.T) {
	records := []Record{
		{Date: day("2025-02-01"), PurchaseType: PurchaseTypeSpot, Amount: 12.34},
		{Date: day("2025-02-01"), PurchaseType: PurchaseTypeOnDemand, Amount: 56.78},
		{Date: day("2025-02-02"), PurchaseType: PurchaseTypeSavingsPlans, Amount: 9.1},
		{Date: day("2025-02-03"), PurchaseType: PurchaseTypeReserved, Amount: 3.3},
	}
	table, err := Pivot(records, day("2025-02-01"), day("2025-02-04"))
	require.NoError(t, err)

	s := Summarize(table)
	var pct, sum float64
	for _, b := range s.Breakdown {
		pct += b.Percent
		sum += b.Total
	}
	assert.InDelta(t, 100.0, pct, 1e-9)
	assert.InDelta(t, s.Total, sum, 1e-9)
}
