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

package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nextdoor/costcharts/pkg/aws"
	"github.com/nextdoor/costcharts/pkg/render"
)

// fetchCommitments queries active Savings Plans and, per configured region,
// active Reserved Instances in parallel. Any failure fails the whole lookup.
func (r *Runner) fetchCommitments(ctx context.Context) (*render.Commitments, error) {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	c := &render.Commitments{}

	// Savings Plans are account-wide, so one query covers every region.
	g.Go(func() error {
		sp, err := r.AWSClient.SavingsPlans(gctx)
		if err != nil {
			return fmt.Errorf("failed to create Savings Plans client: %w", err)
		}
		plans, err := sp.DescribeActiveSavingsPlans(gctx)
		if err != nil {
			return err
		}
		mu.Lock()
		c.SavingsPlans = plans
		mu.Unlock()
		return nil
	})

	for _, region := range r.Config.GetCommitmentRegions() {
		g.Go(func() error {
			ec2Client, err := r.AWSClient.EC2(gctx, region)
			if err != nil {
				return fmt.Errorf("failed to create EC2 client for %s: %w", region, err)
			}
			ris, err := ec2Client.DescribeActiveReservedInstances(gctx)
			if err != nil {
				return err
			}
			mu.Lock()
			c.ReservedInstances = append(c.ReservedInstances, ris...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Goroutines finish in any order.
	sortReservedInstances(c.ReservedInstances)
	return c, nil
}

func sortReservedInstances(ris []aws.ReservedInstance) {
	sort.SliceStable(ris, func(i, j int) bool {
		if ris[i].Region != ris[j].Region {
			return ris[i].Region < ris[j].Region
		}
		if ris[i].InstanceType != ris[j].InstanceType {
			return ris[i].InstanceType < ris[j].InstanceType
		}
		return ris[i].ReservedInstanceID < ris[j].ReservedInstanceID
	})
}
