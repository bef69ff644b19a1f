// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txsig

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/viswanathkgp12/scrooge.coin/wire"
)

// RawSignature computes the DER encoded ECDSA signature that authorizes
// input idx of the passed transaction with the provided private key.  The
// signature commits to the transaction's signature payload for that input
// (see wire.MsgTx.SignaturePayload).
func RawSignature(privKey *btcec.PrivateKey, tx *wire.MsgTx, idx int) ([]byte, error) {
	payload, err := tx.SignaturePayload(idx)
	if err != nil {
		return nil, err
	}

	sigHash := chainhash.DoubleHashH(payload)
	return ecdsa.Sign(privKey, sigHash[:]).Serialize(), nil
}

// SignInput signs input idx of the passed transaction with the provided
// private key and stores the resulting signature on the input.
//
// Inputs may be signed in any order, but only once every input and output
// has been added: adding to the transaction afterwards changes the signature
// payload and invalidates every signature already made.
func SignInput(privKey *btcec.PrivateKey, tx *wire.MsgTx, idx int) error {
	if idx < 0 || idx >= len(tx.TxIn) {
		return fmt.Errorf("transaction input index %d is out of "+
			"range [0, %d)", idx, len(tx.TxIn))
	}

	sig, err := RawSignature(privKey, tx, idx)
	if err != nil {
		return err
	}
	tx.TxIn[idx].Signature = sig
	return nil
}
