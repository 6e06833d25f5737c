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

package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
)

// costExplorerAPI is the subset of the Cost Explorer SDK client we call.
// Tests substitute a fake implementation.
type costExplorerAPI interface {
	GetCostAndUsage(
		ctx context.Context,
		params *costexplorer.GetCostAndUsageInput,
		optFns ...func(*costexplorer.Options),
	) (*costexplorer.GetCostAndUsageOutput, error)
}

// RealCostExplorerClient is a production implementation of CostExplorerClient
// that makes real API calls to AWS Cost Explorer using the AWS SDK v2.
type RealCostExplorerClient struct {
	client costExplorerAPI
}

// NewRealCostExplorerClient creates a Cost Explorer client from a loaded AWS config.
func NewRealCostExplorerClient(cfg aws.Config, endpointURL string) *RealCostExplorerClient {
	ceOpts := []func(*costexplorer.Options){}
	if endpointURL != "" {
		// Override endpoint for LocalStack testing
		ceOpts = append(ceOpts, func(o *costexplorer.Options) {
			o.BaseEndpoint = aws.String(endpointURL) // coverage:ignore - LocalStack only
		})
	}
	return &RealCostExplorerClient{
		client: costexplorer.NewFromConfig(cfg, ceOpts...),
	}
}

// GetCostAndUsage fetches daily costs for the query, following NextPageToken
// until the API reports no further pages.
//
// Any page error aborts the fetch. The SDK error is wrapped with %w so callers
// can still inspect it (throttling, AccessDenied, InvalidNextToken, ...).
func (c *RealCostExplorerClient) GetCostAndUsage(ctx context.Context, query CostQuery) (*CostResponse, error) {
	input, err := buildCostAndUsageInput(query)
	if err != nil {
		return nil, err
	}

	resp := &CostResponse{}
	seenTokens := make(map[string]bool)
	for {
		out, err := c.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("GetCostAndUsage page %d failed: %w", resp.Pages+1, err)
		}
		resp.Pages++

		for _, r := range out.ResultsByTime {
			resp.Results = append(resp.Results, convertResultByTime(r, query.Metric))
		}

		token := aws.ToString(out.NextPageToken)
		if token == "" {
			return resp, nil
		}
		if seenTokens[token] {
			return nil, fmt.Errorf("GetCostAndUsage returned repeated page token after %d pages", resp.Pages)
		}
		seenTokens[token] = true
		input.NextPageToken = aws.String(token)
	}
}

// buildCostAndUsageInput translates a CostQuery into the SDK request.
func buildCostAndUsageInput(query CostQuery) (*costexplorer.GetCostAndUsageInput, error) {
	if query.Start.IsZero() || query.End.IsZero() {
		return nil, fmt.Errorf("cost query requires both start and end dates")
	}
	if !query.End.After(query.Start) {
		return nil, fmt.Errorf("cost query end %s must be after start %s",
			query.End.Format(DateLayout), query.Start.Format(DateLayout))
	}
	if query.Metric == "" {
		query.Metric = DefaultMetric
	}
	if query.GroupBy == "" {
		query.GroupBy = DimensionPurchaseType
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &cetypes.DateInterval{
			Start: aws.String(query.Start.Format(DateLayout)),
			End:   aws.String(query.End.Format(DateLayout)),
		},
		Granularity: cetypes.GranularityDaily,
		Metrics:     []string{query.Metric},
		GroupBy: []cetypes.GroupDefinition{
			{
				Type: cetypes.GroupDefinitionTypeDimension,
				Key:  aws.String(query.GroupBy),
			},
		},
	}
	if query.Service != "" {
		input.Filter = &cetypes.Expression{
			Dimensions: &cetypes.DimensionValues{
				Key:    cetypes.DimensionService,
				Values: []string{query.Service},
			},
		}
	}
	return input, nil
}

// convertResultByTime converts an SDK ResultByTime to our representation,
// keeping only the requested metric.
func convertResultByTime(r cetypes.ResultByTime, metric string) ResultByTime {
	if metric == "" {
		metric = DefaultMetric
	}

	out := ResultByTime{
		Estimated: r.Estimated,
		Groups:    make([]Group, 0, len(r.Groups)),
	}
	if r.TimePeriod != nil {
		out.Start = aws.ToString(r.TimePeriod.Start)
		out.End = aws.ToString(r.TimePeriod.End)
	}

	for _, g := range r.Groups {
		group := Group{Keys: g.Keys}
		if mv, ok := g.Metrics[metric]; ok {
			group.Amount = aws.ToString(mv.Amount)
			group.Unit = aws.ToString(mv.Unit)
		}
		out.Groups = append(out.Groups, group)
	}
	return out
}
