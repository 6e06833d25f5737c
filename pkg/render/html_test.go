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
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextdoor/costcharts/pkg/aws"
	"github.com/nextdoor/costcharts/pkg/cost"
)

func TestHTMLRenderer_Render(t *testing.T) {
	table := testTable()
	info := NewChartInfo(&aws.AccountInfo{AccountID: "123456789012", Profile: "prod"}, "", "")

	var buf bytes.Buffer
	require.NoError(t, HTMLRenderer{}.Render(&buf, table, cost.Summarize(table), info))

	out := buf.String()
	assert.True(t, strings.Contains(out, "<html"), "standalone page")
	assert.Contains(t, out, "echarts")
	assert.Contains(t, out, "AWS EC2 Daily Costs by Purchase Type")
	assert.Contains(t, out, "123456789012")
	for _, pt := range table.PurchaseTypes {
		assert.Contains(t, out, pt)
	}
	assert.Contains(t, out, "2025-01-02")
}

func TestHTMLRenderer_SeriesAreStacked(t *testing.T) {
	table := testTable()
	bar := HTMLRenderer{}.chart(table, cost.Summarize(table), NewChartInfo(nil, "", ""))

	require.Len(t, bar.MultiSeries, len(table.PurchaseTypes))
	for j, s := range bar.MultiSeries {
		assert.Equal(t, table.PurchaseTypes[j], s.Name)
		assert.Equal(t, "total", s.Stack)
		require.NotNil(t, s.ItemStyle)
		assert.Equal(t, ColorFor(s.Name), s.ItemStyle.Color)
	}
	assert.Equal(t, "1200px", bar.Initialization.Width)
	assert.Equal(t, "600px", bar.Initialization.Height)
	assert.Equal(t, "axis", bar.Tooltip.Trigger)
}

func TestHTMLRenderer_AssetsHost(t *testing.T) {
	var buf bytes.Buffer
	r := HTMLRenderer{AssetsHost: "http://assets.internal/echarts/"}
	require.NoError(t, r.Render(&buf, testTable(), cost.Summary{}, NewChartInfo(nil, "", "")))
	assert.Contains(t, buf.String(), "http://assets.internal/echarts/")
}
