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

// Package cache stores Cost Explorer responses between runs.
//
// Cost Explorer bills every GetCostAndUsage request, so repeated runs over
// the same window reuse the stored response until it expires. Responses are
// keyed by the query that produced them.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/nextdoor/costcharts/pkg/aws"
)

// KeyPrefix namespaces cache keys in a shared Redis.
const KeyPrefix = "costcharts:ce:"

// ResponseCache stores Cost Explorer responses by query.
type ResponseCache interface {
	// Get returns the stored response and true, or false on a miss.
	Get(ctx context.Context, query aws.CostQuery) (*aws.CostResponse, bool, error)

	// Set stores a response for query.
	Set(ctx context.Context, query aws.CostQuery, resp *aws.CostResponse) error
}

// Key returns the cache key for a query. Queries that produce the same API
// request produce the same key.
func Key(query aws.CostQuery) string {
	metric := query.Metric
	if metric == "" {
		metric = aws.DefaultMetric
	}
	groupBy := query.GroupBy
	if groupBy == "" {
		groupBy = aws.DimensionPurchaseType
	}

	canonical := strings.Join([]string{
		query.Start.UTC().Format(aws.DateLayout),
		query.End.UTC().Format(aws.DateLayout),
		query.Service,
		metric,
		groupBy,
	}, "\x00")

	sum := sha256.Sum256([]byte(canonical))
	return KeyPrefix + hex.EncodeToString(sum[:])
}

// NopCache never stores anything.
type NopCache struct{}

func (NopCache) Get(context.Context, aws.CostQuery) (*aws.CostResponse, bool, error) {
	return nil, false, nil
}

func (NopCache) Set(context.Context, aws.CostQuery, *aws.CostResponse) error {
	return nil
}
