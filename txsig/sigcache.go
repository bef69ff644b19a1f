// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txsig

import (
	"bytes"
	"crypto/rand"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// sigCacheEntry represents an entry in the SigCache.  Entries within the
// SigCache are keyed by a 3-tuple of the signature hash, the serialized
// signature and the serialized public key.
type sigCacheEntry struct {
	sigHash chainhash.Hash
	sig     string
	pubKey  string
}

// SigCache implements an ECDSA signature verification cache with a randomized
// entry eviction policy.  Only valid signatures will be added to the cache.
// Usage of SigCache speeds up repeated validation of the same transaction,
// which the fixpoint commit algorithms do on every pass over a batch, and it
// avoids re-verifying signatures already checked while evaluating a
// conflict-resolution trial.
type SigCache struct {
	sync.RWMutex
	validSigs  map[sigCacheEntry]struct{}
	maxEntries uint
}

// NewSigCache creates and initializes a new instance of SigCache.  Its sole
// parameter 'maxEntries' represents the maximum number of entries allowed to
// exist in the SigCache at any particular moment.  Random entries are evicted
// to make room for new entries that would cause the number of entries in the
// cache to exceed the max.
func NewSigCache(maxEntries uint) *SigCache {
	return &SigCache{
		validSigs:  make(map[sigCacheEntry]struct{}, maxEntries),
		maxEntries: maxEntries,
	}
}

// Exists returns true if an existing entry of 'sig' over 'sigHash' for public
// key 'pubKey' is found within the SigCache.  Otherwise, false is returned.
//
// NOTE: This function is safe for concurrent access.  Readers won't be
// blocked unless there exists a writer, adding an entry to the SigCache.
func (s *SigCache) Exists(sigHash chainhash.Hash, sig, pubKey []byte) bool {
	entry := sigCacheEntry{sigHash, string(sig), string(pubKey)}

	s.RLock()
	_, ok := s.validSigs[entry]
	s.RUnlock()
	return ok
}

// Add adds an entry for a signature over 'sigHash' under public key 'pubKey'
// to the signature cache.  In the event that the SigCache is 'full', an
// existing entry is randomly chosen to be evicted in order to make space for
// the new entry.
//
// NOTE: This function is safe for concurrent access.  Writers will block
// simultaneous readers until function execution has concluded.
func (s *SigCache) Add(sigHash chainhash.Hash, sig, pubKey []byte) {
	s.Lock()
	defer s.Unlock()

	if s.maxEntries == 0 {
		return
	}

	// If adding this new entry will put us over the max number of allowed
	// entries, then evict an entry.
	if uint(len(s.validSigs))+1 > s.maxEntries {
		// Generate a cryptographically random hash.
		randHashBytes := make([]byte, chainhash.HashSize)
		if _, err := rand.Read(randHashBytes); err != nil {
			// Failure to read a random hash results in the proposed
			// entry not being added to the cache since we are unable
			// to evict any existing entries.
			return
		}

		// Try to find the first entry that is greater than the random
		// hash.  Use the first entry (which is already pseudo-random due
		// to Go's range statement over maps) as a fallback if none of
		// the hashes in the cache are larger than the random hash.
		var (
			foundEntry sigCacheEntry
			found      bool
		)
		for entry := range s.validSigs {
			if !found {
				foundEntry = entry
				found = true
			}
			if bytes.Compare(entry.sigHash[:], randHashBytes) > 0 {
				foundEntry = entry
				break
			}
		}
		if found {
			delete(s.validSigs, foundEntry)
		}
	}

	entry := sigCacheEntry{sigHash, string(sig), string(pubKey)}
	s.validSigs[entry] = struct{}{}
}
