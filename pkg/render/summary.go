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
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/nextdoor/costcharts/pkg/aws"
	"github.com/nextdoor/costcharts/pkg/cost"
)

// Commitments lists the active Savings Plans and Reserved Instances shown
// beneath the cost breakdown.
type Commitments struct {
	SavingsPlans      []aws.SavingsPlan
	ReservedInstances []aws.ReservedInstance
}

// HourlyCommitment sums the hourly commitment of all Savings Plans.
func (c *Commitments) HourlyCommitment() float64 {
	var sum float64
	for _, sp := range c.SavingsPlans {
		sum += sp.Commitment
	}
	return sum
}

// InstanceCount sums the instance count of all Reserved Instances.
func (c *Commitments) InstanceCount() int32 {
	var sum int32
	for _, ri := range c.ReservedInstances {
		sum += ri.InstanceCount
	}
	return sum
}

const summaryTemplate = `
{{ repeat 50 "=" }}
AWS COST SUMMARY REPORT
{{ repeat 50 "=" }}
{{- if .Summary.Days }}
Date Range: {{ day .Summary.Start }} to {{ day .Summary.End }}
Total Cost: {{ money .Summary.Total }}
Average Daily Cost: {{ money .Summary.AverageDaily }}

Cost Breakdown by Purchase Type:
{{- range .Summary.Breakdown }}
  {{ .PurchaseType }}: {{ money .Total }} ({{ printf "%.1f" .Percent }}%)
{{- end }}

Highest Cost Day: {{ day .Summary.HighestDay }} ({{ money .Summary.HighestDayTotal }})
{{- else }}
No cost data in range.
{{- end }}
{{- with .Commitments }}

Active Commitments:
  Savings Plans: {{ len .SavingsPlans }} ({{ money .HourlyCommitment }}/hour)
{{- range .SavingsPlans }}
    {{ .SavingsPlanType }} {{ .SavingsPlanID | default .SavingsPlanARN }}: {{ money .Commitment }}/hour
{{- if .Region }} in {{ .Region }}{{ end }}
{{- if not .End.IsZero }}, ends {{ day .End }}{{ end }}
{{- end }}
  Reserved Instances: {{ .InstanceCount }}
{{- range .ReservedInstances }}
    {{ .InstanceCount }}x {{ .InstanceType }} in {{ .Region }}
{{- if .ProductDescription }} ({{ .ProductDescription }}){{ end }}
{{- if not .End.IsZero }}, ends {{ day .End }}{{ end }}
{{- end }}
{{- end }}
{{ repeat 50 "=" }}
`

var summaryTmpl = template.Must(template.New("summary").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap{"money": FormatMoney, "day": formatDay}).
	Parse(summaryTemplate))

// formatDay prints a date as YYYY-MM-DD in UTC.
func formatDay(t time.Time) string {
	return t.UTC().Format(aws.DateLayout)
}

// SummaryRenderer prints the text summary report.
type SummaryRenderer struct{}

// Render writes the report for summary to w. A nil commitments omits the
// Active Commitments section.
func (SummaryRenderer) Render(w io.Writer, summary cost.Summary, commitments *Commitments) error {
	data := struct {
		Summary     cost.Summary
		Commitments *Commitments
	}{summary, commitments}

	if err := summaryTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	return nil
}
