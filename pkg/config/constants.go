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

package config

import "time"

const (
	DefaultMonths         = 12
	DefaultOutputPrefix   = "aws_costs"
	DefaultDPI            = 300
	DefaultMaxRetries     = 3
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultCacheTTL       = 6 * time.Hour
	DefaultPushJob        = "costcharts"
	DefaultPreviewAddress = "127.0.0.1:8050"
)

// ExportFormats are the accepted values of Config.Export.
var ExportFormats = []string{"csv", "json", "yaml"}

// DefaultRegions is the fallback list of AWS regions to query for Reserved
// Instances when no regions are explicitly configured. These are the most
// commonly used US regions.
//
// Savings Plans are account-wide and need no region list.
var DefaultRegions = []string{"us-west-2", "us-east-1"}
