package core

import (
	"strings"
	"sync"
	"time"

	"github.com/paygate-labs/x402-verify-go/types"
)

// NonceCache is a process-lifetime set of seen (network, nonce) pairs used
// to reject replayed authorizations. Entries expire at the authorization's
// validBefore instant: an expired authorization can never be replayed
// successfully, so keeping it recorded buys nothing.
//
// The cache is shared by every concurrent verification and is explicit
// dependency-injected state, not a hidden global. Record is
// insert-if-absent under one lock, so two simultaneous verifications of
// the same nonce see exactly one winner.
type NonceCache struct {
	mu   sync.Mutex
	seen map[nonceKey]time.Time
}

// sweepThreshold is the cache size at which expired entries are swept
// during Record, keeping growth bounded without a background task.
const sweepThreshold = 1024

type nonceKey struct {
	network types.Network
	nonce   string
}

// NewNonceCache creates an empty cache.
func NewNonceCache() *NonceCache {
	return &NonceCache{seen: make(map[nonceKey]time.Time)}
}

// Record marks (network, nonce) as seen until expiry. It returns false if
// the pair was already recorded and has not expired, meaning the caller
// must treat the authorization as a replay.
func (c *NonceCache) Record(now time.Time, network types.Network, nonce string, expiry time.Time) bool {
	key := nonceKey{network: network, nonce: strings.ToLower(nonce)}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.seen) >= sweepThreshold {
		c.evictLocked(now)
	}

	if existing, ok := c.seen[key]; ok && existing.After(now) {
		return false
	}
	c.seen[key] = expiry
	return true
}

// Sweep drops all entries whose authorizations expired before now.
func (c *NonceCache) Sweep(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked(now)
}

// Len returns the number of live entries.
func (c *NonceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// evictLocked drops entries whose authorizations have expired.
func (c *NonceCache) evictLocked(now time.Time) {
	for key, expiry := range c.seen {
		if !expiry.After(now) {
			delete(c.seen, key)
		}
	}
}
