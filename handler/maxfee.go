// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package handler

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/viswanathkgp12/scrooge.coin/ledger"
	"github.com/viswanathkgp12/scrooge.coin/wire"
)

// TxDesc pairs an accepted transaction with the fee it pays.  The fee is the
// total value of the outputs the transaction consumes minus the total value
// of the outputs it creates, resolved against the pool state at the moment
// the transaction was accepted.
type TxDesc struct {
	// Tx is the transaction associated with the entry.
	Tx *wire.MsgTx

	// Fee is the total fee the transaction associated with the entry
	// pays.
	Fee btcutil.Amount
}

// MaxFeeTxHandler processes batches of candidate ledger transactions like
// TxHandler, but resolves conflicts by profitability instead of
// first-valid-wins: when a candidate double-spends against transactions that
// were already accepted, the conflicting transactions are swapped out
// whenever the replacement strictly increases the aggregate fee of the
// accepted set.
//
// The resolution is greedy and considers one incoming transaction at a time
// against the current accepted set, so the selected subset depends on the
// batch order and is not guaranteed to be the globally fee-optimal one.
// Finding that subset is a weighted independent-set problem, and the local
// comparison is the deliberate trade-off made here.
type MaxFeeTxHandler struct {
	cfg       Config
	pool      *ledger.UtxoPool
	totalFees btcutil.Amount
}

// NewMaxFee returns a new fee-maximizing transaction handler operating on a
// private copy of the unspent output pool in the passed configuration.
func NewMaxFee(cfg *Config) *MaxFeeTxHandler {
	return &MaxFeeTxHandler{
		cfg:  *cfg,
		pool: cfg.Pool.Clone(),
	}
}

// IsValidTx returns whether the passed transaction is individually valid
// against the handler's current unspent output pool.  The pool is not
// modified.
func (h *MaxFeeTxHandler) IsValidTx(tx *wire.MsgTx) bool {
	return ledger.IsValidTx(tx, h.pool, h.cfg.SigVerifier)
}

// UtxoPool returns the handler's working unspent output pool as evolved by
// the batches handled so far.  The returned pool is owned by the handler and
// must not be modified while further batches are handled.
func (h *MaxFeeTxHandler) UtxoPool() *ledger.UtxoPool {
	return h.pool
}

// TotalFees returns the aggregate fee paid by the transactions accepted from
// the most recently handled batch.
func (h *MaxFeeTxHandler) TotalFees() btcutil.Amount {
	return h.totalFees
}

// HandleTxs checks each candidate transaction for correctness against the
// current unspent output pool, returns the accepted subset, and updates the
// pool accordingly.
//
// The scan structure is the same fixpoint over repeated passes used by
// TxHandler.HandleTxs.  The difference is the treatment of a candidate whose
// inputs collide with outputs already consumed by accepted transactions:
// rather than dropping it outright, the handler builds a trial accepted set
// with every conflicting transaction removed, re-derives the trial pool by
// replaying the remaining transactions over the pool the batch started from,
// and re-validates the candidate against that trial pool.  The trial replaces
// the current state only when its aggregate fee is strictly higher.
//
// The result is in acceptance order.  Dropped and rejected transactions are
// only logged.
func (h *MaxFeeTxHandler) HandleTxs(candidates []*wire.MsgTx) []*wire.MsgTx {
	// The starting pool is kept intact for the duration of the batch so
	// conflict-resolution trials can be replayed from it.  All regular
	// acceptance work happens on a fresh clone.
	base := h.pool
	pool := base.Clone()

	var (
		accepted  []TxDesc
		totalFees btcutil.Amount
	)
	spent := make(map[wire.OutPoint]struct{})
	acceptedHashes := make(map[chainhash.Hash]struct{})

	for progress := true; progress; {
		progress = false

		for _, tx := range candidates {
			txHash := tx.TxHash()
			if _, exists := acceptedHashes[txHash]; exists {
				continue
			}

			// A candidate that wants an outpoint some accepted
			// transaction has already consumed can never validate
			// against the working pool, so conflicts are detected
			// against the spent set and evaluated on their own
			// trial state.
			if spendsFrom(tx, spent) {
				trial, adopted := h.resolveConflict(base, tx,
					accepted, totalFees)
				if !adopted {
					continue
				}

				accepted = trial.accepted
				spent = trial.spent
				pool = trial.pool
				totalFees = trial.totalFees

				acceptedHashes = make(map[chainhash.Hash]struct{},
					len(accepted))
				for _, desc := range accepted {
					acceptedHashes[desc.Tx.TxHash()] = struct{}{}
				}

				// Adopting the trial changed the accepted set
				// and the pool, either of which can unlock
				// other candidates.
				progress = true

				log.Debugf("Swapped in conflicting transaction "+
					"%v (total fees now %v)", txHash,
					totalFees)
				continue
			}

			if !ledger.IsValidTx(tx, pool, h.cfg.SigVerifier) {
				continue
			}

			fee, err := ledger.CalcFee(tx, pool)
			if err != nil {
				// Unreachable: the validity check above resolved
				// every input against the same pool.
				continue
			}

			accepted = append(accepted, TxDesc{Tx: tx, Fee: fee})
			acceptedHashes[txHash] = struct{}{}
			markSpent(tx, spent)
			pool.ApplyTransaction(tx)
			totalFees += fee
			progress = true

			log.Debugf("Accepted transaction %v with fee %v "+
				"(total fees now %v)", txHash, fee, totalFees)
		}
	}

	h.pool = pool
	h.totalFees = totalFees

	txns := make([]*wire.MsgTx, 0, len(accepted))
	for _, desc := range accepted {
		txns = append(txns, desc.Tx)
	}
	return txns
}

// trialResult holds the replacement state produced by an adopted
// conflict-resolution trial.
type trialResult struct {
	accepted  []TxDesc
	spent     map[wire.OutPoint]struct{}
	pool      *ledger.UtxoPool
	totalFees btcutil.Amount
}

// resolveConflict evaluates whether swapping out the accepted transactions
// that conflict with tx in favor of tx itself yields a strictly higher
// aggregate fee.  It returns the replacement state and true when the trial
// should be adopted, or nil and false when the status quo wins and tx is to
// be dropped.
//
// The trial pool is re-derived from the batch starting pool by replaying the
// surviving accepted transactions.  Patching the working pool incrementally
// would be unsound: a transaction accepted after a removed one may spend
// outputs the removed transaction created, so only a full replay produces a
// consistent trial state.
func (h *MaxFeeTxHandler) resolveConflict(base *ledger.UtxoPool, tx *wire.MsgTx,
	accepted []TxDesc, totalFees btcutil.Amount) (*trialResult, bool) {

	wanted := make(map[wire.OutPoint]struct{}, len(tx.TxIn))
	for _, txIn := range tx.TxIn {
		wanted[txIn.PreviousOutPoint] = struct{}{}
	}

	// Build the trial accepted set copy-on-write: every accepted
	// transaction sharing an outpoint with the incoming transaction is
	// left out.  The current accepted set stays untouched in case the
	// trial is not adopted.
	trial := make([]TxDesc, 0, len(accepted))
	for _, desc := range accepted {
		if spendsFrom(desc.Tx, wanted) {
			log.Debugf("Trial for transaction %v drops accepted "+
				"transaction %v", tx.TxHash(), desc.Tx.TxHash())
			continue
		}
		trial = append(trial, desc)
	}

	trialPool := base.Clone()
	trialSpent := make(map[wire.OutPoint]struct{})
	for _, desc := range trial {
		markSpent(desc.Tx, trialSpent)
		trialPool.ApplyTransaction(desc.Tx)
	}

	// The incoming transaction was never individually validated, so the
	// trial pool is the first state it can be checked against.
	if !ledger.IsValidTx(tx, trialPool, h.cfg.SigVerifier) {
		return nil, false
	}

	fee, err := ledger.CalcFee(tx, trialPool)
	if err != nil {
		return nil, false
	}

	var trialFees btcutil.Amount
	for _, desc := range trial {
		trialFees += desc.Fee
	}
	trialFees += fee

	if trialFees <= totalFees {
		log.Debugf("Rejected conflicting transaction %v: trial fees "+
			"%v do not beat current fees %v", tx.TxHash(),
			trialFees, totalFees)
		return nil, false
	}

	markSpent(tx, trialSpent)
	trialPool.ApplyTransaction(tx)
	trial = append(trial, TxDesc{Tx: tx, Fee: fee})

	return &trialResult{
		accepted:  trial,
		spent:     trialSpent,
		pool:      trialPool,
		totalFees: trialFees,
	}, true
}
