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
	"io"
	"sync"
)

// MockClient is a mock implementation of the Client interface for testing.
// It provides configurable responses and tracks method calls.
type MockClient struct {
	mu sync.RWMutex

	// CostExplorerClientInstance is the mock Cost Explorer client
	CostExplorerClientInstance *MockCostExplorerClient

	// IdentityClientInstance is the mock identity client
	IdentityClientInstance *MockIdentityClient

	// SavingsPlansClientInstance is the mock Savings Plans client
	SavingsPlansClientInstance *MockSavingsPlansClient

	// EC2Clients maps region to MockEC2Client
	EC2Clients map[string]*MockEC2Client

	// S3ClientInstance is the mock S3 client
	S3ClientInstance *MockS3Client

	// Errors can be set to simulate client construction failures
	CostExplorerError error
	IdentityError     error
	SavingsPlansError error
	EC2Error          error
	S3Error           error
}

// NewMockClient creates a new MockClient with initialized sub-clients.
func NewMockClient() *MockClient {
	return &MockClient{
		CostExplorerClientInstance: NewMockCostExplorerClient(),
		IdentityClientInstance:     NewMockIdentityClient(),
		SavingsPlansClientInstance: NewMockSavingsPlansClient(),
		EC2Clients:                 make(map[string]*MockEC2Client),
		S3ClientInstance:           NewMockS3Client(),
	}
}

// CostExplorer returns the mock Cost Explorer client.
func (m *MockClient) CostExplorer(_ context.Context) (CostExplorerClient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.CostExplorerError != nil {
		return nil, m.CostExplorerError
	}
	return m.CostExplorerClientInstance, nil
}

// Identity returns the mock identity client.
func (m *MockClient) Identity(_ context.Context) (IdentityClient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.IdentityError != nil {
		return nil, m.IdentityError
	}
	return m.IdentityClientInstance, nil
}

// SavingsPlans returns the mock Savings Plans client.
func (m *MockClient) SavingsPlans(_ context.Context) (SavingsPlansClient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.SavingsPlansError != nil {
		return nil, m.SavingsPlansError
	}
	return m.SavingsPlansClientInstance, nil
}

// EC2 returns the mock EC2 client for the region, creating an empty one
// if none was configured.
func (m *MockClient) EC2(_ context.Context, region string) (EC2Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EC2Error != nil {
		return nil, m.EC2Error
	}

	client, exists := m.EC2Clients[region]
	if !exists {
		client = NewMockEC2Client()
		m.EC2Clients[region] = client
	}
	return client, nil
}

// S3 returns the mock S3 client.
func (m *MockClient) S3(_ context.Context) (S3Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.S3Error != nil {
		return nil, m.S3Error
	}
	return m.S3ClientInstance, nil
}

// MockCostExplorerClient is a mock implementation of CostExplorerClient.
type MockCostExplorerClient struct {
	mu sync.Mutex

	// Response is returned from GetCostAndUsage
	Response *CostResponse

	// GetCostAndUsageError is returned instead of Response when set
	GetCostAndUsageError error

	// Queries records every query received
	Queries []CostQuery
}

// NewMockCostExplorerClient creates a MockCostExplorerClient with an empty response.
func NewMockCostExplorerClient() *MockCostExplorerClient {
	return &MockCostExplorerClient{
		Response: &CostResponse{Pages: 1},
	}
}

// GetCostAndUsage records the query and returns the configured response.
func (m *MockCostExplorerClient) GetCostAndUsage(_ context.Context, query CostQuery) (*CostResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries = append(m.Queries, query)
	if m.GetCostAndUsageError != nil {
		return nil, m.GetCostAndUsageError
	}
	return m.Response, nil
}

// CallCount returns how many times GetCostAndUsage was called.
func (m *MockCostExplorerClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

// MockIdentityClient is a mock implementation of IdentityClient.
type MockIdentityClient struct {
	// Info is returned from GetAccountInfo
	Info *AccountInfo

	// GetAccountInfoError is returned instead of Info when set
	GetAccountInfoError error
}

// NewMockIdentityClient creates a MockIdentityClient for a fixed test account.
func NewMockIdentityClient() *MockIdentityClient {
	return &MockIdentityClient{
		Info: &AccountInfo{
			AccountID: "123456789012",
			ARN:       "arn:aws:iam::123456789012:user/test",
			Profile:   DefaultProfileName,
		},
	}
}

// GetAccountInfo returns the configured account info.
func (m *MockIdentityClient) GetAccountInfo(_ context.Context) (*AccountInfo, error) {
	if m.GetAccountInfoError != nil {
		return nil, m.GetAccountInfoError
	}
	info := *m.Info
	return &info, nil
}

// MockSavingsPlansClient is a mock implementation of SavingsPlansClient.
type MockSavingsPlansClient struct {
	mu sync.Mutex

	// SavingsPlans is the mock Savings Plans data
	SavingsPlans []SavingsPlan

	// DescribeSavingsPlansError is returned when set
	DescribeSavingsPlansError error

	// DescribeSavingsPlansCallCount tracks method calls
	DescribeSavingsPlansCallCount int
}

// NewMockSavingsPlansClient creates a new MockSavingsPlansClient.
func NewMockSavingsPlansClient() *MockSavingsPlansClient {
	return &MockSavingsPlansClient{
		SavingsPlans: []SavingsPlan{},
	}
}

// DescribeActiveSavingsPlans returns the mock Savings Plans data.
func (m *MockSavingsPlansClient) DescribeActiveSavingsPlans(_ context.Context) ([]SavingsPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DescribeSavingsPlansCallCount++

	if m.DescribeSavingsPlansError != nil {
		return nil, m.DescribeSavingsPlansError
	}
	return m.SavingsPlans, nil
}

// MockEC2Client is a mock implementation of EC2Client for testing.
type MockEC2Client struct {
	mu sync.Mutex

	// ReservedInstances is the mock RI data
	ReservedInstances []ReservedInstance

	// DescribeReservedInstancesError is returned when set
	DescribeReservedInstancesError error

	// DescribeReservedInstancesCallCount tracks method calls
	DescribeReservedInstancesCallCount int
}

// NewMockEC2Client creates a new MockEC2Client.
func NewMockEC2Client() *MockEC2Client {
	return &MockEC2Client{
		ReservedInstances: []ReservedInstance{},
	}
}

// DescribeActiveReservedInstances returns the mock RI data.
func (m *MockEC2Client) DescribeActiveReservedInstances(_ context.Context) ([]ReservedInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DescribeReservedInstancesCallCount++

	if m.DescribeReservedInstancesError != nil {
		return nil, m.DescribeReservedInstancesError
	}
	return m.ReservedInstances, nil
}

// MockS3Client is a mock implementation of S3Client that keeps uploads in memory.
type MockS3Client struct {
	mu sync.Mutex

	// Objects maps "bucket/key" to the uploaded bytes
	Objects map[string][]byte

	// ContentTypes maps "bucket/key" to the uploaded content type
	ContentTypes map[string]string

	// PutObjectError is returned when set
	PutObjectError error
}

// NewMockS3Client creates a new MockS3Client.
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

// PutObject stores the body in memory.
func (m *MockS3Client) PutObject(
	_ context.Context,
	bucket string,
	key string,
	contentType string,
	body io.Reader,
	_ map[string]string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutObjectError != nil {
		return m.PutObjectError
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}
	m.Objects[bucket+"/"+key] = data
	m.ContentTypes[bucket+"/"+key] = contentType
	return nil
}
