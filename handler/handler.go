// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handler

import (
	"github.com/viswanathkgp12/scrooge.coin/ledger"
	"github.com/viswanathkgp12/scrooge.coin/wire"
)

// Config is a descriptor containing the transaction handler configuration.
type Config struct {
	// Pool is the unspent output set the handler starts from.  The
	// handler clones it on creation and evolves the clone, so the
	// caller's pool is never mutated.
	Pool *ledger.UtxoPool

	// SigVerifier defines the checker to use for input signature
	// authenticity.  It must be deterministic and side-effect free.
	SigVerifier ledger.SigVerifier
}

// TxHandler processes batches of candidate ledger transactions with a
// first-valid-wins acceptance policy.  It is safe for use from a single
// goroutine only; a batch runs to completion within one HandleTxs call with
// no suspension points.
type TxHandler struct {
	cfg  Config
	pool *ledger.UtxoPool
}

// New returns a new transaction handler operating on a private copy of the
// unspent output pool in the passed configuration.
func New(cfg *Config) *TxHandler {
	return &TxHandler{
		cfg:  *cfg,
		pool: cfg.Pool.Clone(),
	}
}

// IsValidTx returns whether the passed transaction is individually valid
// against the handler's current unspent output pool.  The pool is not
// modified.
func (h *TxHandler) IsValidTx(tx *wire.MsgTx) bool {
	return ledger.IsValidTx(tx, h.pool, h.cfg.SigVerifier)
}

// UtxoPool returns the handler's working unspent output pool as evolved by
// the batches handled so far.  The returned pool is owned by the handler and
// must not be modified while further batches are handled.
func (h *TxHandler) UtxoPool() *ledger.UtxoPool {
	return h.pool
}

// HandleTxs checks each candidate transaction for correctness against the
// current unspent output pool, returns the mutually valid subset that was
// accepted, and updates the pool accordingly.
//
// Candidates are scanned repeatedly in their given order.  A transaction is
// accepted when it is valid against the current pool state and none of its
// inputs has been consumed by a previously accepted transaction; acceptance
// immediately removes its consumed outputs from the pool and adds the
// outputs it creates, which can make candidates rejected earlier in the
// batch valid on a later pass.  Scanning stops once a full pass accepts
// nothing.
//
// The result is in acceptance order.  Invalid and conflicting transactions
// are silently dropped; the rejection reasons are only logged.
func (h *TxHandler) HandleTxs(candidates []*wire.MsgTx) []*wire.MsgTx {
	var accepted []*wire.MsgTx
	spent := make(map[wire.OutPoint]struct{})

	for progress := true; progress; {
		progress = false

		for _, tx := range candidates {
			if !ledger.IsValidTx(tx, h.pool, h.cfg.SigVerifier) {
				continue
			}

			if spendsFrom(tx, spent) {
				log.Debugf("Rejected transaction %v: input "+
					"already consumed by an accepted "+
					"transaction", tx.TxHash())
				continue
			}

			accepted = append(accepted, tx)
			markSpent(tx, spent)
			h.pool.ApplyTransaction(tx)
			progress = true

			log.Debugf("Accepted transaction %v (pool now %d "+
				"unspent outputs)", tx.TxHash(), h.pool.Len())
		}
	}

	return accepted
}

// spendsFrom returns whether any input of the passed transaction consumes an
// outpoint contained in the passed spent set.
func spendsFrom(tx *wire.MsgTx, spent map[wire.OutPoint]struct{}) bool {
	for _, txIn := range tx.TxIn {
		if _, exists := spent[txIn.PreviousOutPoint]; exists {
			return true
		}
	}
	return false
}

// markSpent adds every outpoint consumed by the passed transaction to the
// passed spent set.
func markSpent(tx *wire.MsgTx, spent map[wire.OutPoint]struct{}) {
	for _, txIn := range tx.TxIn {
		spent[txIn.PreviousOutPoint] = struct{}{}
	}
}
