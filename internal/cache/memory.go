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

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/nextdoor/costcharts/pkg/aws"
)

// MemoryCache is an in-process ResponseCache. The CLI runs once per process
// and uses RedisCache or NopCache; MemoryCache serves embedders and tests that
// run the pipeline repeatedly in one process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

type memoryEntry struct {
	resp     aws.CostResponse
	storedAt time.Time
}

// NewMemoryCache creates an empty cache. A zero ttl never expires entries.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get implements ResponseCache. Expired entries are treated as misses.
func (c *MemoryCache) Get(_ context.Context, query aws.CostQuery) (*aws.CostResponse, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[Key(query)]
	if !ok {
		return nil, false, nil
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		return nil, false, nil
	}
	resp := e.resp
	return &resp, true, nil
}

// Set implements ResponseCache. The response is copied.
func (c *MemoryCache) Set(_ context.Context, query aws.CostQuery, resp *aws.CostResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[Key(query)] = memoryEntry{resp: *resp, storedAt: c.now()}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
