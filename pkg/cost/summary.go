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

// Summarize computes the report statistics for a table.
//
// AverageDaily divides by the number of days in the table, zero-cost days
// included. On ties the earliest day wins HighestDay.
func Summarize(t *Table) Summary {
	s := Summary{Days: t.Len()}
	if t.Len() == 0 {
		return s
	}

	s.Start = t.Dates[0]
	s.End = t.Dates[t.Len()-1]

	for i := range t.Dates {
		rowTotal := t.RowTotal(i)
		s.Total += rowTotal
		if i == 0 || rowTotal > s.HighestDayTotal {
			s.HighestDay = t.Dates[i]
			s.HighestDayTotal = rowTotal
		}
	}
	s.AverageDaily = s.Total / float64(s.Days)

	s.Breakdown = make([]TypeTotal, len(t.PurchaseTypes))
	for j, pt := range t.PurchaseTypes {
		tt := TypeTotal{PurchaseType: pt, Total: t.ColumnTotal(j)}
		if s.Total > 0 {
			tt.Percent = tt.Total / s.Total * 100
		}
		s.Breakdown[j] = tt
	}
	return s
}
