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
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/savingsplans"
	sptypes "github.com/aws/aws-sdk-go-v2/service/savingsplans/types"
)

type savingsPlansAPI interface {
	DescribeSavingsPlans(
		ctx context.Context,
		params *savingsplans.DescribeSavingsPlansInput,
		optFns ...func(*savingsplans.Options),
	) (*savingsplans.DescribeSavingsPlansOutput, error)
}

// RealSPClient is a production implementation of SavingsPlansClient that makes
// real API calls to AWS Savings Plans using the AWS SDK v2.
type RealSPClient struct {
	client savingsPlansAPI
}

// NewRealSPClient creates a new Savings Plans client from a loaded AWS config.
func NewRealSPClient(cfg aws.Config, endpointURL string) *RealSPClient {
	spOpts := []func(*savingsplans.Options){}
	if endpointURL != "" {
		// Override endpoint for LocalStack testing
		spOpts = append(spOpts, func(o *savingsplans.Options) {
			o.BaseEndpoint = aws.String(endpointURL) // coverage:ignore - LocalStack only
		})
	}
	return &RealSPClient{
		client: savingsplans.NewFromConfig(cfg, spOpts...),
	}
}

// DescribeActiveSavingsPlans returns all active Savings Plans for the account.
// The API paginates with NextToken; all pages are collected.
func (c *RealSPClient) DescribeActiveSavingsPlans(ctx context.Context) ([]SavingsPlan, error) {
	input := &savingsplans.DescribeSavingsPlansInput{
		States: []sptypes.SavingsPlanState{sptypes.SavingsPlanStateActive},
	}

	var plans []SavingsPlan
	for {
		out, err := c.client.DescribeSavingsPlans(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("DescribeSavingsPlans failed: %w", err)
		}
		for _, sp := range out.SavingsPlans {
			plans = append(plans, convertSavingsPlan(sp))
		}
		if aws.ToString(out.NextToken) == "" {
			return plans, nil
		}
		input.NextToken = out.NextToken
	}
}

// convertSavingsPlan converts an SDK Savings Plan to our representation.
// Compute plans apply to every region, so their region is left empty.
func convertSavingsPlan(sp sptypes.SavingsPlan) SavingsPlan {
	plan := SavingsPlan{
		SavingsPlanARN:  aws.ToString(sp.SavingsPlanArn),
		SavingsPlanID:   aws.ToString(sp.SavingsPlanId),
		SavingsPlanType: string(sp.SavingsPlanType),
		State:           string(sp.State),
		InstanceFamily:  aws.ToString(sp.Ec2InstanceFamily),
	}
	if sp.SavingsPlanType != sptypes.SavingsPlanTypeCompute {
		plan.Region = aws.ToString(sp.Region)
	}
	if sp.Commitment != nil {
		if v, err := strconv.ParseFloat(*sp.Commitment, 64); err == nil {
			plan.Commitment = v
		}
	}
	if sp.Start != nil {
		if t, err := time.Parse(time.RFC3339, *sp.Start); err == nil {
			plan.Start = t
		}
	}
	if sp.End != nil {
		if t, err := time.Parse(time.RFC3339, *sp.End); err == nil {
			plan.End = t
		}
	}
	return plan
}
