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
	"io"
	"time"
)

// Client is the main interface for interacting with AWS services.
// It provides access to Cost Explorer, account identity, commitment
// inventory (Savings Plans and Reserved Instances) and S3.
type Client interface {
	// CostExplorer returns a client for the Cost Explorer API.
	CostExplorer(ctx context.Context) (CostExplorerClient, error)

	// Identity returns a client that resolves the caller's account.
	Identity(ctx context.Context) (IdentityClient, error)

	// SavingsPlans returns a SavingsPlansClient for the configured account.
	SavingsPlans(ctx context.Context) (SavingsPlansClient, error)

	// EC2 returns an EC2Client bound to the given region.
	EC2(ctx context.Context, region string) (EC2Client, error)

	// S3 returns a client used to upload generated artifacts.
	S3(ctx context.Context) (S3Client, error)
}

// CostExplorerClient provides access to the Cost Explorer operations used to
// build cost charts.
type CostExplorerClient interface {
	// GetCostAndUsage returns daily costs for the query, grouped by the
	// query's dimension. It follows NextPageToken until the result set is
	// exhausted and returns every page's results in API order.
	GetCostAndUsage(ctx context.Context, query CostQuery) (*CostResponse, error)
}

// IdentityClient resolves which AWS account the credentials belong to.
type IdentityClient interface {
	// GetAccountInfo returns the account ID and, when available, the account alias.
	GetAccountInfo(ctx context.Context) (*AccountInfo, error)
}

// SavingsPlansClient provides access to AWS Savings Plans API operations.
type SavingsPlansClient interface {
	// DescribeActiveSavingsPlans returns all active Savings Plans for the account.
	// This API is not region-specific.
	DescribeActiveSavingsPlans(ctx context.Context) ([]SavingsPlan, error)
}

// EC2Client provides access to the EC2 API operations needed for commitment reporting.
type EC2Client interface {
	// DescribeActiveReservedInstances returns all active Reserved Instances
	// in the client's region.
	DescribeActiveReservedInstances(ctx context.Context) ([]ReservedInstance, error)
}

// S3Client uploads objects to S3.
type S3Client interface {
	// PutObject uploads body to bucket/key.
	PutObject(
		ctx context.Context,
		bucket string,
		key string,
		contentType string,
		body io.Reader,
		metadata map[string]string,
	) error
}

// ClientConfig configures the AWS client creation.
type ClientConfig struct {
	// Profile is the shared config profile to load credentials from.
	// Empty uses the default credential chain.
	Profile string

	// Region is the region for Cost Explorer, STS, IAM and Savings Plans calls.
	// Default: us-east-1 (the only Cost Explorer endpoint)
	Region string

	// MaxRetries is the maximum number of attempts the SDK retryer makes
	// for each API call. Throttling errors are retried by the SDK; errors that
	// remain after the last attempt are returned unchanged.
	// Default: 3 (SDK default)
	MaxRetries int

	// HTTPTimeout is the timeout for HTTP requests to AWS APIs
	// Default: 30 seconds
	HTTPTimeout time.Duration

	// EndpointURL overrides the service endpoint (LocalStack testing).
	// When set, static test credentials are used.
	EndpointURL string
}

// NewClient creates a new AWS client with the specified configuration.
//
// For production use, this creates a RealClient that connects to actual AWS APIs.
// For testing, use MockClient instead.
func NewClient(ctx context.Context, config ClientConfig) (Client, error) {
	return NewRealClient(ctx, config)
}
