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

package render

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/nextdoor/costcharts/pkg/cost"
)

// ErrUnknownFormat is returned by Export for an unsupported format.
var ErrUnknownFormat = errors.New("unknown export format")

// ExportRow is one day of the exported table.
type ExportRow struct {
	Date  string             `json:"date" yaml:"date"`
	Costs map[string]float64 `json:"costs" yaml:"costs"`
	Total float64            `json:"total" yaml:"total"`
}

// ExportDocument is the JSON and YAML export layout.
type ExportDocument struct {
	PurchaseTypes []string    `json:"purchaseTypes" yaml:"purchaseTypes"`
	Rows          []ExportRow `json:"rows" yaml:"rows"`
	Total         float64     `json:"total" yaml:"total"`
}

// Extension returns the file extension for an export format.
func Extension(format string) string {
	return "." + format
}

// Export writes the table to w as csv, json or yaml.
func Export(w io.Writer, table *cost.Table, format string) error {
	switch format {
	case "csv":
		return exportCSV(w, table)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(NewExportDocument(table))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewExportDocument(table)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// NewExportDocument converts a table into its export layout.
func NewExportDocument(table *cost.Table) ExportDocument {
	doc := ExportDocument{
		PurchaseTypes: table.PurchaseTypes,
		Rows:          make([]ExportRow, table.Len()),
		Total:         table.Total(),
	}
	labels := table.DateLabels()
	for i := range table.Dates {
		row := ExportRow{
			Date:  labels[i],
			Costs: make(map[string]float64, len(table.PurchaseTypes)),
			Total: table.RowTotal(i),
		}
		for j, pt := range table.PurchaseTypes {
			row.Costs[pt] = table.Cells[i][j]
		}
		doc.Rows[i] = row
	}
	return doc
}

func exportCSV(w io.Writer, table *cost.Table) error {
	cw := csv.NewWriter(w)

	header := append([]string{"date"}, table.PurchaseTypes...)
	header = append(header, "total_cost")
	if err := cw.Write(header); err != nil {
		return err
	}

	labels := table.DateLabels()
	for i := range table.Dates {
		record := make([]string, 0, len(header))
		record = append(record, labels[i])
		for _, v := range table.Cells[i] {
			record = append(record, formatAmount(v))
		}
		record = append(record, formatAmount(table.RowTotal(i)))
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
