// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"

	"github.com/viswanathkgp12/scrooge.coin/wire"
)

// SigVerifier abstracts the cryptographic check that an input signature is
// authentic.  Implementations must be deterministic and side-effect free:
// the same (pubKey, payload, sig) triple always yields the same answer.
type SigVerifier interface {
	// VerifySignature returns whether sig is a valid signature over
	// payload for the public key serialized in pubKey.
	VerifySignature(pubKey, payload, sig []byte) bool
}

// CheckTransaction performs a series of checks on a transaction to ensure it
// can be spent against the passed unspent output pool.  A transaction is
// valid when:
//
//   - every input references an output present in the pool
//   - no output is claimed more than once within the transaction
//   - every input signature verifies against the public key recorded for the
//     referenced output and the transaction's signature payload for that
//     input
//   - every output value is within the valid range
//   - the total input value is positive and no smaller than the total output
//     value
//
// The pool is only read, never modified, so repeated calls with the same
// arguments yield the same result.
//
// The returned error is a RuleError carrying the specific rejection reason
// when the transaction is invalid.
func CheckTransaction(tx *wire.MsgTx, pool *UtxoPool, sigVerifier SigVerifier) error {
	seenOutPoints := make(map[wire.OutPoint]struct{}, len(tx.TxIn))

	var totalIn btcutil.Amount
	for txInIdx, txIn := range tx.TxIn {
		prevOut := txIn.PreviousOutPoint

		entry := pool.LookupEntry(prevOut)
		if entry == nil {
			str := fmt.Sprintf("output %v referenced from "+
				"transaction input %d either does not exist or "+
				"has already been spent", prevOut, txInIdx)
			return ruleError(ErrMissingTxOut, str)
		}

		if _, exists := seenOutPoints[prevOut]; exists {
			str := fmt.Sprintf("transaction input %d claims "+
				"output %v which is already claimed by an "+
				"earlier input", txInIdx, prevOut)
			return ruleError(ErrDuplicateTxInputs, str)
		}
		seenOutPoints[prevOut] = struct{}{}

		if len(txIn.Signature) == 0 {
			str := fmt.Sprintf("transaction input %d has no "+
				"signature", txInIdx)
			return ruleError(ErrBadSignature, str)
		}
		payload, err := tx.SignaturePayload(txInIdx)
		if err != nil {
			return ruleError(ErrBadSignature, err.Error())
		}
		if !sigVerifier.VerifySignature(entry.PubKey(), payload,
			txIn.Signature) {

			str := fmt.Sprintf("transaction input %d signature "+
				"does not verify for output %v", txInIdx,
				prevOut)
			return ruleError(ErrBadSignature, str)
		}

		totalIn += entry.Amount()
	}

	var totalOut btcutil.Amount
	for txOutIdx, txOut := range tx.TxOut {
		if txOut.Value < 0 {
			str := fmt.Sprintf("transaction output %d has "+
				"negative value %d", txOutIdx, txOut.Value)
			return ruleError(ErrBadTxOutValue, str)
		}
		if txOut.Value > btcutil.MaxSatoshi {
			str := fmt.Sprintf("transaction output %d has value "+
				"of %d which is higher than the max allowed "+
				"value of %d", txOutIdx, txOut.Value,
				int64(btcutil.MaxSatoshi))
			return ruleError(ErrBadTxOutValue, str)
		}

		totalOut += btcutil.Amount(txOut.Value)
	}

	if totalIn <= 0 {
		str := fmt.Sprintf("transaction consumes a total input value "+
			"of %v so no real funds are being spent", totalIn)
		return ruleError(ErrNoInputValue, str)
	}
	if totalIn < totalOut {
		str := fmt.Sprintf("total value of all transaction inputs %v "+
			"is less than the value of all outputs %v", totalIn,
			totalOut)
		return ruleError(ErrSpendTooHigh, str)
	}

	return nil
}

// IsValidTx returns whether the passed transaction is individually valid
// against the passed unspent output pool per the CheckTransaction rules.
// The rejection reason, if any, is logged at debug level.
func IsValidTx(tx *wire.MsgTx, pool *UtxoPool, sigVerifier SigVerifier) bool {
	if err := CheckTransaction(tx, pool, sigVerifier); err != nil {
		log.Debugf("Rejected transaction: %v", err)
		return false
	}
	return true
}

// CalcFee returns the fee the passed transaction pays: the total value of
// the outputs it consumes, resolved against the passed pool, minus the total
// value of the outputs it creates.  The fee must be resolved against the
// same pool state the transaction was validated against for the amounts to
// be meaningful.
func CalcFee(tx *wire.MsgTx, pool *UtxoPool) (btcutil.Amount, error) {
	var totalIn btcutil.Amount
	for txInIdx, txIn := range tx.TxIn {
		entry := pool.LookupEntry(txIn.PreviousOutPoint)
		if entry == nil {
			str := fmt.Sprintf("output %v referenced from "+
				"transaction input %d is not in the pool",
				txIn.PreviousOutPoint, txInIdx)
			return 0, ruleError(ErrMissingTxOut, str)
		}
		totalIn += entry.Amount()
	}

	var totalOut btcutil.Amount
	for _, txOut := range tx.TxOut {
		totalOut += btcutil.Amount(txOut.Value)
	}

	return totalIn - totalOut, nil
}
