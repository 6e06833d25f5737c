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
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultProfileName is shown in chart titles when no profile is configured.
const DefaultProfileName = "default"

type stsAPI interface {
	GetCallerIdentity(
		ctx context.Context,
		params *sts.GetCallerIdentityInput,
		optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

type iamAPI interface {
	ListAccountAliases(
		ctx context.Context,
		params *iam.ListAccountAliasesInput,
		optFns ...func(*iam.Options),
	) (*iam.ListAccountAliasesOutput, error)
}

// RealIdentityClient resolves the caller's account using STS, and the
// account alias using IAM.
type RealIdentityClient struct {
	sts     stsAPI
	iam     iamAPI
	profile string
}

// NewRealIdentityClient creates an identity client from a loaded AWS config.
func NewRealIdentityClient(cfg aws.Config, profile string, endpointURL string) *RealIdentityClient {
	stsOpts := []func(*sts.Options){}
	iamOpts := []func(*iam.Options){}
	if endpointURL != "" {
		stsOpts = append(stsOpts, func(o *sts.Options) {
			o.BaseEndpoint = aws.String(endpointURL) // coverage:ignore - LocalStack only
		})
		iamOpts = append(iamOpts, func(o *iam.Options) {
			o.BaseEndpoint = aws.String(endpointURL) // coverage:ignore - LocalStack only
		})
	}
	return &RealIdentityClient{
		sts:     sts.NewFromConfig(cfg, stsOpts...),
		iam:     iam.NewFromConfig(cfg, iamOpts...),
		profile: profile,
	}
}

// GetAccountInfo returns the account ID from STS GetCallerIdentity.
//
// The IAM alias lookup is best effort: many roles lack iam:ListAccountAliases,
// and the alias only decorates chart titles, so its failure leaves Alias empty
// instead of failing the call.
func (c *RealIdentityClient) GetAccountInfo(ctx context.Context) (*AccountInfo, error) {
	info := &AccountInfo{Profile: displayProfile(c.profile)}

	identity, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("GetCallerIdentity failed: %w", err)
	}
	info.AccountID = aws.ToString(identity.Account)
	info.ARN = aws.ToString(identity.Arn)

	aliases, err := c.iam.ListAccountAliases(ctx, &iam.ListAccountAliasesInput{})
	if err == nil && len(aliases.AccountAliases) > 0 {
		info.Alias = aliases.AccountAliases[0]
	}

	return info, nil
}

// displayProfile returns the profile name as shown to users.
func displayProfile(profile string) string {
	if profile == "" {
		return DefaultProfileName
	}
	return profile
}
