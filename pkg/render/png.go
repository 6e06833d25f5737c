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

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/nextdoor/costcharts/pkg/cost"
)

const (
	pngWidth  = 15 * vg.Inch
	pngHeight = 8 * vg.Inch

	// maxTickLabels bounds the number of date labels on the x axis; the
	// rest are blanked so long ranges stay readable.
	maxTickLabels = 30
)

// PNGRenderer draws a stacked daily bar chart as a PNG image.
type PNGRenderer struct {
	// DPI is the output resolution. Zero means 300.
	DPI int
}

// Render draws the chart and writes the PNG to w.
func (r PNGRenderer) Render(w io.Writer, table *cost.Table, summary cost.Summary, info ChartInfo) error {
	p, err := r.plot(table, summary, info)
	if err != nil {
		return err
	}

	dpi := r.DPI
	if dpi <= 0 {
		dpi = 300
	}
	c := vgimg.NewWith(vgimg.UseWH(pngWidth, pngHeight), vgimg.UseDPI(dpi))
	p.Draw(draw.New(c))

	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

func (r PNGRenderer) plot(table *cost.Table, summary cost.Summary, info ChartInfo) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = info.Title() + "\n" + info.Subtitle()
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Cost ($)"
	p.Y.Tick.Marker = dollarTicks{}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.YOffs = -vg.Points(60)

	grid := plotter.NewGrid()
	grid.Vertical.Color = nil
	p.Add(grid)

	n := table.Len()
	barWidth := vg.Points(20)
	if n > 0 {
		barWidth = vg.Length(math.Min(20, float64(pngWidth)*0.7/float64(n)))
	}

	var below *plotter.BarChart
	for j, pt := range table.PurchaseTypes {
		bars, err := plotter.NewBarChart(plotter.Values(table.Column(j)), barWidth)
		if err != nil {
			return nil, fmt.Errorf("failed to build bars for %s: %w", pt, err)
		}
		bars.Color = RGBA(ColorFor(pt))
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}
		p.Add(bars)
		p.Legend.Add(pt, bars)
		below = bars
	}

	if n > 0 {
		p.NominalX(tickLabels(table.DateLabels(), maxTickLabels)...)
	}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	var highest float64
	for i := 0; i < n; i++ {
		highest = math.Max(highest, table.RowTotal(i))
	}
	top := highest * 1.25
	if top <= 0 {
		top = 1
	}

	box, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: 0, Y: top}},
		Labels: []string{SummaryText(summary)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build summary box: %w", err)
	}
	box.TextStyle[0].XAlign = text.XLeft
	box.TextStyle[0].YAlign = text.YTop
	p.Add(box)

	// Set after Add, which widens the ranges to fit the data.
	p.Y.Min = 0
	p.Y.Max = top
	return p, nil
}

// tickLabels keeps at most limit evenly spaced labels and blanks the rest.
func tickLabels(labels []string, limit int) []string {
	if len(labels) <= limit || limit <= 0 {
		return labels
	}
	step := int(math.Ceil(float64(len(labels)) / float64(limit)))
	out := make([]string, len(labels))
	for i := range labels {
		if i%step == 0 {
			out[i] = labels[i]
		}
	}
	return out
}

// dollarTicks formats the default y-axis ticks as whole dollars.
type dollarTicks struct{}

func (dollarTicks) Ticks(lo, hi float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(lo, hi)
	for i, t := range ticks {
		if t.Label == "" {
			continue
		}
		ticks[i].Label = moneyPrinter.Sprintf("$%.0f", t.Value)
	}
	return ticks
}
