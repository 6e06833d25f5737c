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

// Package render draws the cost table as a PNG chart and an interactive HTML
// chart, prints the text summary report, and exports the table as CSV, JSON
// or YAML.
package render

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nextdoor/costcharts/pkg/aws"
	"github.com/nextdoor/costcharts/pkg/cost"
)

// Chart colours keyed by purchase type. Cost Explorer returns the long
// names; the short ones are kept for hand-built tables.
const (
	ColorSpot         = "#3498db"
	ColorOnDemand     = "#e74c3c"
	ColorSavingsPlans = "#27ae60"
	ColorReserved     = "#f39c12"
	ColorDefault      = "#95a5a6"
)

var palette = map[string]string{
	"Spot":                        ColorSpot,
	cost.PurchaseTypeSpot:         ColorSpot,
	"On Demand":                   ColorOnDemand,
	cost.PurchaseTypeOnDemand:     ColorOnDemand,
	cost.PurchaseTypeSavingsPlans: ColorSavingsPlans,
	cost.PurchaseTypeReserved:     ColorReserved,
}

// ColorFor returns the hex colour used for a purchase type.
// Any Reserved Instance variant shares the Reserved colour.
func ColorFor(purchaseType string) string {
	if c, ok := palette[purchaseType]; ok {
		return c
	}
	if strings.Contains(purchaseType, "Reserved") {
		return ColorReserved
	}
	return ColorDefault
}

// RGBA converts a #rrggbb colour to an opaque color.RGBA.
// Malformed input yields the default grey.
func RGBA(hex string) color.RGBA {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return RGBA(ColorDefault)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGBA(ColorDefault)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// ChartRenderer renders a cost table to a chart artifact.
type ChartRenderer interface {
	Render(w io.Writer, table *cost.Table, summary cost.Summary, info ChartInfo) error
}

// ChartInfo carries the labels drawn on both charts.
type ChartInfo struct {
	Profile   string
	AccountID string
	Alias     string
	Service   string
	Metric    string
}

// NewChartInfo builds chart labels. A nil account renders as Unknown.
func NewChartInfo(account *aws.AccountInfo, service, metric string) ChartInfo {
	info := ChartInfo{
		Profile:   aws.DefaultProfileName,
		AccountID: "Unknown",
		Service:   service,
		Metric:    metric,
	}
	if account != nil {
		if account.Profile != "" {
			info.Profile = account.Profile
		}
		if account.AccountID != "" {
			info.AccountID = account.AccountID
		}
		info.Alias = account.Alias
	}
	return info
}

// Title is the first title line, e.g. "AWS EC2 Daily Costs by Purchase Type".
func (i ChartInfo) Title() string {
	return fmt.Sprintf("AWS %s Daily Costs by Purchase Type", serviceLabel(i.Service))
}

// Subtitle identifies where the data came from.
func (i ChartInfo) Subtitle() string {
	account := i.AccountID
	if i.Alias != "" {
		account = fmt.Sprintf("%s (%s)", i.AccountID, i.Alias)
	}
	return fmt.Sprintf("Profile: %s | Account: %s", i.Profile, account)
}

func serviceLabel(service string) string {
	switch service {
	case "", aws.DefaultService:
		return "EC2"
	default:
		return service
	}
}

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney formats a dollar amount with thousands separators and cents.
func FormatMoney(v float64) string {
	if v < 0 {
		return "-" + moneyPrinter.Sprintf("$%.2f", -v)
	}
	return moneyPrinter.Sprintf("$%.2f", v)
}

// SummaryText is the short summary drawn on the charts.
func SummaryText(s cost.Summary) string {
	return fmt.Sprintf("Total Cost: %s\nAvg Daily Cost: %s", FormatMoney(s.Total), FormatMoney(s.AverageDaily))
}
