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
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

type ec2API interface {
	DescribeReservedInstances(
		ctx context.Context,
		params *ec2.DescribeReservedInstancesInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeReservedInstancesOutput, error)
}

// RealEC2Client is a production implementation of EC2Client that makes
// real API calls to AWS EC2 using the AWS SDK v2.
type RealEC2Client struct {
	client ec2API
	region string
}

// NewRealEC2Client creates a new EC2 client for the region.
func NewRealEC2Client(cfg aws.Config, region string, endpointURL string) *RealEC2Client {
	ec2Opts := []func(*ec2.Options){
		func(o *ec2.Options) {
			o.Region = region
		},
	}
	if endpointURL != "" {
		// Override endpoint for LocalStack testing
		ec2Opts = append(ec2Opts, func(o *ec2.Options) {
			o.BaseEndpoint = aws.String(endpointURL) // coverage:ignore - LocalStack only
		})
	}
	return &RealEC2Client{
		client: ec2.NewFromConfig(cfg, ec2Opts...),
		region: region,
	}
}

// DescribeActiveReservedInstances returns all active Reserved Instances in
// the client's region. DescribeReservedInstances is not paginated.
func (c *RealEC2Client) DescribeActiveReservedInstances(ctx context.Context) ([]ReservedInstance, error) {
	out, err := c.client.DescribeReservedInstances(ctx, &ec2.DescribeReservedInstancesInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("state"),
				Values: []string{string(ec2types.ReservedInstanceStateActive)},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("DescribeReservedInstances in %s failed: %w", c.region, err)
	}

	ris := make([]ReservedInstance, 0, len(out.ReservedInstances))
	for _, ri := range out.ReservedInstances {
		ris = append(ris, ReservedInstance{
			ReservedInstanceID: aws.ToString(ri.ReservedInstancesId),
			InstanceType:       string(ri.InstanceType),
			InstanceCount:      aws.ToInt32(ri.InstanceCount),
			Region:             c.region,
			AvailabilityZone:   aws.ToString(ri.AvailabilityZone),
			ProductDescription: string(ri.ProductDescription),
			OfferingType:       string(ri.OfferingType),
			End:                aws.ToTime(ri.End),
		})
	}
	return ris, nil
}
