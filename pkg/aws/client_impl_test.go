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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLocalStackEndpoint = "http://localhost:4566"

func newTestRealClient(t *testing.T) *RealClient {
	t.Helper()
	client, err := NewRealClient(context.Background(), ClientConfig{
		EndpointURL: testLocalStackEndpoint,
		MaxRetries:  5,
	})
	require.NoError(t, err)
	return client
}

func TestNewRealClient_Defaults(t *testing.T) {
	client := newTestRealClient(t)

	assert.Equal(t, CostExplorerRegion, client.config.Region)
	assert.Equal(t, defaultHTTPTimeout, client.config.HTTPTimeout)
	assert.Equal(t, CostExplorerRegion, client.awsCfg.Region)
	assert.Equal(t, 5, client.awsCfg.RetryMaxAttempts)
}

func TestNewRealClient_StaticCredentialsForEndpoint(t *testing.T) {
	client := newTestRealClient(t)

	creds, err := client.awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, localStackAccessKey, creds.AccessKeyID)
}

func TestLoadOptions(t *testing.T) {
	base := len(loadOptions(ClientConfig{Region: "us-east-1", HTTPTimeout: time.Second}))
	assert.Equal(t, 2, base)

	full := loadOptions(ClientConfig{
		Region:      "us-east-1",
		Profile:     "billing",
		MaxRetries:  3,
		HTTPTimeout: time.Second,
		EndpointURL: testLocalStackEndpoint,
	})
	assert.Len(t, full, 5)
}

func TestRealClient_CachesServiceClients(t *testing.T) {
	ctx := context.Background()
	client := newTestRealClient(t)

	ce1, err := client.CostExplorer(ctx)
	require.NoError(t, err)
	ce2, err := client.CostExplorer(ctx)
	require.NoError(t, err)
	assert.Same(t, ce1, ce2)

	id1, err := client.Identity(ctx)
	require.NoError(t, err)
	id2, err := client.Identity(ctx)
	require.NoError(t, err)
	assert.Same(t, id1, id2)

	sp1, err := client.SavingsPlans(ctx)
	require.NoError(t, err)
	sp2, err := client.SavingsPlans(ctx)
	require.NoError(t, err)
	assert.Same(t, sp1, sp2)

	s31, err := client.S3(ctx)
	require.NoError(t, err)
	s32, err := client.S3(ctx)
	require.NoError(t, err)
	assert.Same(t, s31, s32)
}

func TestRealClient_EC2PerRegion(t *testing.T) {
	ctx := context.Background()
	client := newTestRealClient(t)

	west, err := client.EC2(ctx, "us-west-2")
	require.NoError(t, err)
	westAgain, err := client.EC2(ctx, "us-west-2")
	require.NoError(t, err)
	east, err := client.EC2(ctx, "us-east-1")
	require.NoError(t, err)

	assert.Same(t, west, westAgain)
	assert.NotSame(t, west, east)
	assert.Equal(t, "us-west-2", west.(*RealEC2Client).region)

	_, err = client.EC2(ctx, "")
	assert.Error(t, err)
}

func TestDisplayProfile(t *testing.T) {
	assert.Equal(t, DefaultProfileName, displayProfile(""))
	assert.Equal(t, "billing", displayProfile("billing"))
}
