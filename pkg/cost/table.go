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
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nextdoor/costcharts/pkg/aws"
)

// Flatten turns Cost Explorer results into one Record per group.
//
// A group without keys is attributed to PurchaseTypeUnknown. An empty amount
// (metric missing from the group) counts as zero; an amount that is present
// but not a number is an error naming the offending day and key.
func Flatten(results []aws.ResultByTime) ([]Record, error) {
	var records []Record
	for _, r := range results {
		date, err := time.Parse(aws.DateLayout, r.Start)
		if err != nil {
			return nil, fmt.Errorf("invalid time period start %q: %w", r.Start, err)
		}

		for _, g := range r.Groups {
			purchaseType := PurchaseTypeUnknown
			if len(g.Keys) > 0 && g.Keys[0] != "" {
				purchaseType = g.Keys[0]
			}

			var amount float64
			if g.Amount != "" {
				amount, err = strconv.ParseFloat(g.Amount, 64)
				if err != nil {
					return nil, fmt.Errorf("invalid amount %q for %s on %s: %w",
						g.Amount, purchaseType, r.Start, err)
				}
			}

			records = append(records, Record{
				Date:         date,
				PurchaseType: purchaseType,
				Amount:       amount,
			})
		}
	}
	return records, nil
}

// Pivot sums records by (day, purchase type) into a Table.
//
// Every day in [start, end) gets a row even when no record falls on it.
// Records outside the range are not dropped: their days are added to the
// table so the grand total always equals the sum of the record amounts.
// If start or end is zero the range is taken from the records alone.
func Pivot(records []Record, start, end time.Time) (*Table, error) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, fmt.Errorf("range end %s is before start %s",
			end.Format(aws.DateLayout), start.Format(aws.DateLayout))
	}

	days := make(map[time.Time]map[string]float64)
	types := make(map[string]bool)

	if !start.IsZero() && !end.IsZero() {
		for d := truncateDay(start); d.Before(truncateDay(end)); d = d.AddDate(0, 0, 1) {
			days[d] = make(map[string]float64)
		}
	}

	for _, rec := range records {
		d := truncateDay(rec.Date)
		row, ok := days[d]
		if !ok {
			row = make(map[string]float64)
			days[d] = row
		}
		row[rec.PurchaseType] += rec.Amount
		types[rec.PurchaseType] = true
	}

	table := &Table{
		Dates:         make([]time.Time, 0, len(days)),
		PurchaseTypes: make([]string, 0, len(types)),
	}
	for d := range days {
		table.Dates = append(table.Dates, d)
	}
	sort.Slice(table.Dates, func(i, j int) bool { return table.Dates[i].Before(table.Dates[j]) })

	for t := range types {
		table.PurchaseTypes = append(table.PurchaseTypes, t)
	}
	SortPurchaseTypes(table.PurchaseTypes)

	table.Cells = make([][]float64, len(table.Dates))
	for i, d := range table.Dates {
		row := make([]float64, len(table.PurchaseTypes))
		for j, t := range table.PurchaseTypes {
			row[j] = days[d][t]
		}
		table.Cells[i] = row
	}
	return table, nil
}

// SortPurchaseTypes orders purchase types so legends and colours are stable:
// On Demand, Spot, Savings Plans, Reserved, anything else alphabetically,
// and Unknown last.
func SortPurchaseTypes(types []string) {
	sort.SliceStable(types, func(i, j int) bool {
		ri, rj := purchaseTypeRank(types[i]), purchaseTypeRank(types[j])
		if ri != rj {
			return ri < rj
		}
		return types[i] < types[j]
	})
}

func purchaseTypeRank(t string) int {
	switch {
	case strings.HasPrefix(t, "On Demand"):
		return 0
	case strings.HasPrefix(t, "Spot"):
		return 1
	case strings.HasPrefix(t, "Savings Plan"):
		return 2
	case strings.Contains(t, "Reserved"):
		return 3
	case t == PurchaseTypeUnknown:
		return 5
	default:
		return 4
	}
}

// truncateDay drops the time-of-day and normalizes to UTC.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Len returns the number of days in the table.
func (t *Table) Len() int {
	return len(t.Dates)
}

// RowTotal returns the total cost of all purchase types on day i.
func (t *Table) RowTotal(i int) float64 {
	var sum float64
	for _, v := range t.Cells[i] {
		sum += v
	}
	return sum
}

// ColumnTotal returns the total cost of purchase type j over all days.
func (t *Table) ColumnTotal(j int) float64 {
	var sum float64
	for _, row := range t.Cells {
		sum += row[j]
	}
	return sum
}

// Column returns the per-day costs of purchase type j.
func (t *Table) Column(j int) []float64 {
	col := make([]float64, len(t.Cells))
	for i, row := range t.Cells {
		col[i] = row[j]
	}
	return col
}

// Total returns the grand total of the table.
func (t *Table) Total() float64 {
	var sum float64
	for i := range t.Cells {
		sum += t.RowTotal(i)
	}
	return sum
}

// DateLabels returns the days formatted as YYYY-MM-DD.
func (t *Table) DateLabels() []string {
	labels := make([]string, len(t.Dates))
	for i, d := range t.Dates {
		labels[i] = d.Format(aws.DateLayout)
	}
	return labels
}
