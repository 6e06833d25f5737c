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
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

const (
	defaultHTTPTimeout = 30 * time.Second

	// localStackAccessKey is the static credential LocalStack accepts.
	localStackAccessKey = "test"
)

// RealClient is a production implementation of the Client interface that
// makes real calls to AWS APIs using the AWS SDK v2.
//
// This implementation handles:
//   - Credential management using the AWS SDK default credential chain
//     (optionally pinned to a shared config profile)
//   - Automatic retries through the SDK's standard retryer
//   - Per-service and per-region client caching
//
// For testing, use MockClient instead.
type RealClient struct {
	config      ClientConfig
	awsCfg      aws.Config
	endpointURL string // Optional endpoint URL (for LocalStack testing)

	mu         sync.Mutex
	ceClient   *RealCostExplorerClient
	idClient   *RealIdentityClient
	spClient   *RealSPClient
	s3Client   *RealS3Client
	ec2Clients map[string]*RealEC2Client // Cached per-region EC2 clients
}

// NewRealClient creates a new RealClient with the specified configuration.
// The client uses the AWS SDK default credential chain for authentication:
//  1. Environment variables (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)
//  2. Shared credentials/config files (~/.aws), honoring cfg.Profile
//  3. IAM role (if running on EC2 or ECS)
//
// For LocalStack testing, set cfg.EndpointURL to "http://localhost:4566".
func NewRealClient(ctx context.Context, cfg ClientConfig) (*RealClient, error) {
	if cfg.Region == "" {
		cfg.Region = CostExplorerRegion
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions(cfg)...)
	if err != nil { // coverage:ignore - AWS SDK config loading errors are difficult to trigger in unit tests
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return &RealClient{
		config:      cfg,
		awsCfg:      awsCfg,
		endpointURL: cfg.EndpointURL,
		ec2Clients:  make(map[string]*RealEC2Client),
	}, nil
}

// loadOptions translates a ClientConfig into LoadDefaultConfig options.
func loadOptions(cfg ClientConfig) []func(*awsconfig.LoadOptions) error {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(cfg.HTTPTimeout)),
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, awsconfig.WithRetryMaxAttempts(cfg.MaxRetries))
	}
	if cfg.EndpointURL != "" {
		// LocalStack accepts any credentials; pin static ones so tests never
		// pick up real keys from the environment.
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(localStackAccessKey, localStackAccessKey, ""),
		))
	}
	return opts
}

// CostExplorer returns the Cost Explorer client, creating it on first use.
func (c *RealClient) CostExplorer(_ context.Context) (CostExplorerClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ceClient == nil {
		c.ceClient = NewRealCostExplorerClient(c.awsCfg, c.endpointURL)
	}
	return c.ceClient, nil
}

// Identity returns the STS/IAM identity client, creating it on first use.
func (c *RealClient) Identity(_ context.Context) (IdentityClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.idClient == nil {
		c.idClient = NewRealIdentityClient(c.awsCfg, c.config.Profile, c.endpointURL)
	}
	return c.idClient, nil
}

// SavingsPlans returns the Savings Plans client, creating it on first use.
func (c *RealClient) SavingsPlans(_ context.Context) (SavingsPlansClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.spClient == nil {
		c.spClient = NewRealSPClient(c.awsCfg, c.endpointURL)
	}
	return c.spClient, nil
}

// EC2 returns an EC2Client for the region. Clients are cached per region.
func (c *RealClient) EC2(_ context.Context, region string) (EC2Client, error) {
	if region == "" {
		return nil, fmt.Errorf("region is required for EC2 client")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.ec2Clients[region]; ok {
		return client, nil
	}
	client := NewRealEC2Client(c.awsCfg, region, c.endpointURL)
	c.ec2Clients[region] = client
	return client, nil
}

// S3 returns the S3 upload client, creating it on first use.
func (c *RealClient) S3(_ context.Context) (S3Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.s3Client == nil {
		c.s3Client = NewRealS3Client(c.awsCfg, c.endpointURL)
	}
	return c.s3Client, nil
}
