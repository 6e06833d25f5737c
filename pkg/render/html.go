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
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/nextdoor/costcharts/pkg/cost"
)

// HTMLRenderer draws an interactive stacked bar chart as a standalone HTML page.
type HTMLRenderer struct {
	// AssetsHost overrides where the echarts JavaScript is loaded from.
	AssetsHost string
}

// Render writes the HTML chart to w.
func (r HTMLRenderer) Render(w io.Writer, table *cost.Table, summary cost.Summary, info ChartInfo) error {
	if err := r.chart(table, summary, info).Render(w); err != nil {
		return fmt.Errorf("failed to render HTML chart: %w", err)
	}
	return nil
}

func (r HTMLRenderer) chart(table *cost.Table, summary cost.Summary, info ChartInfo) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  info.Title(),
			Width:      "1200px",
			Height:     "600px",
			AssetsHost: r.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    info.Title(),
			Subtitle: info.Subtitle() + "\n" + SummaryText(summary),
			Left:     "center",
		}),
		// Axis trigger shows every purchase type for the hovered day in one box.
		charts.WithTooltipOpts(opts.Tooltip{
			Show:        opts.Bool(true),
			Trigger:     "axis",
			AxisPointer: &opts.AxisPointer{Type: "shadow"},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Orient: "horizontal",
			Top:    "85",
		}),
		charts.WithGridOpts(opts.Grid{Top: "130", Bottom: "110"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Date",
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "Cost ($)",
			AxisLabel: &opts.AxisLabel{Formatter: "${value}"},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)

	bar.SetXAxis(table.DateLabels())
	for j, pt := range table.PurchaseTypes {
		col := table.Column(j)
		data := make([]opts.BarData, len(col))
		for i, v := range col {
			data[i] = opts.BarData{Value: math.Round(v*100) / 100}
		}
		bar.AddSeries(pt, data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "total"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ColorFor(pt)}),
		)
	}
	return bar
}
