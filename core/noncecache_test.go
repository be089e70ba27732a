package core

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paygate-labs/x402-verify-go/types"
)

func TestNonceCacheRecord(t *testing.T) {
	cache := NewNonceCache()
	now := time.Unix(1740672100, 0)
	expiry := now.Add(time.Minute)

	assert.True(t, cache.Record(now, types.NetworkBaseSepolia, "0xaa", expiry), "first use wins")
	assert.False(t, cache.Record(now, types.NetworkBaseSepolia, "0xaa", expiry), "replay is rejected")

	// The same nonce on a different network is a different pair.
	assert.True(t, cache.Record(now, types.NetworkBase, "0xaa", expiry))

	// Hex case does not make a new nonce.
	assert.False(t, cache.Record(now, types.NetworkBaseSepolia, "0xAA", expiry))
}

func TestNonceCacheExpiry(t *testing.T) {
	cache := NewNonceCache()
	now := time.Unix(1740672100, 0)
	expiry := now.Add(time.Minute)

	require.True(t, cache.Record(now, types.NetworkBaseSepolia, "0xaa", expiry))

	// Once the authorization expires, the pair no longer blocks: the
	// time-window check rejects any replay regardless of the cache.
	later := expiry.Add(time.Second)
	assert.True(t, cache.Record(later, types.NetworkBaseSepolia, "0xaa", later.Add(time.Minute)))
}

func TestNonceCacheSweep(t *testing.T) {
	cache := NewNonceCache()
	now := time.Unix(1740672100, 0)

	for i := 0; i < 10; i++ {
		require.True(t, cache.Record(now, types.NetworkBaseSepolia, fmt.Sprintf("0x%02x", i), now.Add(time.Minute)))
	}
	require.Equal(t, 10, cache.Len())

	cache.Sweep(now.Add(2 * time.Minute))
	assert.Equal(t, 0, cache.Len())
}

func TestNonceCacheBoundedGrowth(t *testing.T) {
	cache := NewNonceCache()
	now := time.Unix(1740672100, 0)

	// Fill with entries that expire immediately; the sweep triggered at
	// the threshold must keep the map from growing without bound.
	for i := 0; i < sweepThreshold*3; i++ {
		cache.Record(now.Add(time.Duration(i)*time.Second), types.NetworkBaseSepolia,
			fmt.Sprintf("0x%08x", i), now.Add(time.Duration(i)*time.Second).Add(time.Millisecond))
	}
	assert.LessOrEqual(t, cache.Len(), sweepThreshold+1)
}

func TestNonceCacheConcurrentSingleWinner(t *testing.T) {
	cache := NewNonceCache()
	now := time.Unix(1740672100, 0)
	expiry := now.Add(time.Minute)

	const goroutines = 64
	var wg sync.WaitGroup
	results := make(chan bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- cache.Record(now, types.NetworkBaseSepolia, "0xcontested", expiry)
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for won := range results {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent verification may record a nonce")
}
