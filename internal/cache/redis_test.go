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
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), fmt.Sprintf("redis://%s", mr.Addr()), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Hour)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, testQuery())
	require.NoError(t, err)
	assert.False(t, ok, "empty cache misses")

	require.NoError(t, c.Set(ctx, testQuery(), testResponse()))
	assert.True(t, mr.Exists(Key(testQuery())))
	assert.Equal(t, time.Hour, mr.TTL(Key(testQuery())))

	resp, ok, err := c.Get(ctx, testQuery())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testResponse(), resp)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testQuery(), testResponse()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, testQuery())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_CorruptValue(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Hour)
	require.NoError(t, mr.Set(Key(testQuery()), "not json"))

	_, ok, err := c.Get(context.Background(), testQuery())
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "corrupt cached response")
}

func TestRedisCache_ServerDown(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Hour)
	mr.Close()

	_, _, err := c.Get(context.Background(), testQuery())
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), testQuery(), testResponse()))
}

func TestNewRedisCache_Errors(t *testing.T) {
	t.Run("bad url", func(t *testing.T) {
		_, err := NewRedisCache(context.Background(), "http://localhost:6379", time.Hour)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse Redis URL")
	})

	t.Run("unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewRedisCache(context.Background(), fmt.Sprintf("redis://%s", addr), time.Hour)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to connect to Redis")
	})
}

func TestNewRedisCacheFromClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c := NewRedisCacheFromClient(client, 0)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Set(context.Background(), testQuery(), testResponse()))
	assert.Equal(t, time.Duration(0), mr.TTL(Key(testQuery())), "zero TTL stores without expiry")
}
