// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txsig implements signing and verification of ledger transaction
// input signatures using secp256k1 ECDSA.
package txsig

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Verifier checks DER encoded ECDSA signatures over the double SHA-256 digest
// of a transaction's per-input signature payload.  Verification is
// deterministic and has no side effects beyond the optional cache of known
// good signatures.
//
// The zero value verifies without caching; use NewVerifier to attach a
// SigCache.
type Verifier struct {
	cache *SigCache
}

// NewVerifier returns a Verifier backed by the passed signature cache.  The
// cache may be nil, in which case every signature is verified from scratch.
func NewVerifier(cache *SigCache) *Verifier {
	return &Verifier{cache: cache}
}

// VerifySignature returns whether sig is a valid DER encoded ECDSA signature
// over payload for the compressed or uncompressed secp256k1 public key
// serialized in pubKey.
//
// This satisfies the ledger.SigVerifier interface.
func (v *Verifier) VerifySignature(pubKey, payload, sig []byte) bool {
	sigHash := chainhash.DoubleHashH(payload)

	if v.cache != nil && v.cache.Exists(sigHash, sig, pubKey) {
		return true
	}

	parsedPubKey, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		log.Debugf("Unparsable public key: %v", err)
		return false
	}
	parsedSig, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		log.Debugf("Unparsable signature: %v", err)
		return false
	}

	if !parsedSig.Verify(sigHash[:], parsedPubKey) {
		return false
	}

	// Only valid signatures are cached.
	if v.cache != nil {
		v.cache.Add(sigHash, sig, pubKey)
	}
	return true
}
