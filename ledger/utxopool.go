// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/btcsuite/btcd/btcutil"

	"github.com/viswanathkgp12/scrooge.coin/wire"
)

// UtxoEntry houses details about an individual unspent transaction output
// such as how much it pays and the public key that must sign to spend it.
type UtxoEntry struct {
	amount btcutil.Amount // The amount of the output.
	pubKey []byte         // The public key required to spend the output.
}

// Amount returns the amount of the output the entry represents.
func (entry *UtxoEntry) Amount() btcutil.Amount {
	return entry.amount
}

// PubKey returns the serialized public key that authorizes spending the
// output the entry represents.
func (entry *UtxoEntry) PubKey() []byte {
	return entry.pubKey
}

// Clone returns a deep copy of the utxo entry.
func (entry *UtxoEntry) Clone() *UtxoEntry {
	if entry == nil {
		return nil
	}

	newEntry := &UtxoEntry{amount: entry.amount}
	if entry.pubKey != nil {
		newEntry.pubKey = make([]byte, len(entry.pubKey))
		copy(newEntry.pubKey, entry.pubKey)
	}
	return newEntry
}

// NewUtxoEntry returns a new UtxoEntry built from the arguments.
func NewUtxoEntry(amount btcutil.Amount, pubKey []byte) *UtxoEntry {
	return &UtxoEntry{
		amount: amount,
		pubKey: pubKey,
	}
}

// UtxoPool represents a set of unspent transaction outputs keyed by the
// outpoint that created them.
//
// The set is the mutable working state the commit algorithms evolve: at all
// times it holds exactly the starting set minus the outputs consumed by
// transactions committed so far plus the outputs they created.
//
// The zero value is not usable; use NewUtxoPool.
type UtxoPool struct {
	entries map[wire.OutPoint]*UtxoEntry
}

// Contains returns whether or not the provided outpoint is unspent according
// to the pool.
func (pool *UtxoPool) Contains(outpoint wire.OutPoint) bool {
	_, ok := pool.entries[outpoint]
	return ok
}

// LookupEntry returns information about a given unspent transaction output
// according to the pool.  It will return nil if the outpoint does not exist
// in the pool.
func (pool *UtxoPool) LookupEntry(outpoint wire.OutPoint) *UtxoEntry {
	return pool.entries[outpoint]
}

// AddEntry adds the given entry to the pool, replacing any entry already
// present for the outpoint.
func (pool *UtxoPool) AddEntry(outpoint wire.OutPoint, entry *UtxoEntry) {
	pool.entries[outpoint] = entry
}

// RemoveEntry removes the entry for the given outpoint from the pool.
// Removing an outpoint that is not present is a no-op.
func (pool *UtxoPool) RemoveEntry(outpoint wire.OutPoint) {
	delete(pool.entries, outpoint)
}

// AddTxOuts adds all outputs in the passed transaction to the pool, keyed by
// the transaction hash and output position.
func (pool *UtxoPool) AddTxOuts(tx *wire.MsgTx) {
	txHash := tx.TxHash()
	for txOutIdx, txOut := range tx.TxOut {
		outpoint := wire.OutPoint{Hash: txHash, Index: uint32(txOutIdx)}
		pool.entries[outpoint] = NewUtxoEntry(
			btcutil.Amount(txOut.Value), txOut.PubKey)
	}
}

// ApplyTransaction updates the pool by removing every output consumed by the
// passed transaction and adding every output it creates.  Inputs referencing
// outpoints not present in the pool are ignored, which keeps replaying a
// transaction sequence a pure function of the sequence itself.
func (pool *UtxoPool) ApplyTransaction(tx *wire.MsgTx) {
	for _, txIn := range tx.TxIn {
		delete(pool.entries, txIn.PreviousOutPoint)
	}
	pool.AddTxOuts(tx)
}

// Entries returns the underlying map that stores all utxo entries in the
// pool.  The returned map must be treated as read only.
func (pool *UtxoPool) Entries() map[wire.OutPoint]*UtxoEntry {
	return pool.entries
}

// Len returns the number of unspent outputs in the pool.
func (pool *UtxoPool) Len() int {
	return len(pool.entries)
}

// Clone returns a deep copy of the pool.  A commit invocation clones the
// caller-supplied pool and works on the clone, so the caller's pool is only
// observed, never mutated.
func (pool *UtxoPool) Clone() *UtxoPool {
	newPool := &UtxoPool{
		entries: make(map[wire.OutPoint]*UtxoEntry, len(pool.entries)),
	}
	for outpoint, entry := range pool.entries {
		newPool.entries[outpoint] = entry.Clone()
	}
	return newPool
}

// NewUtxoPool returns a new empty unspent transaction output pool.
func NewUtxoPool() *UtxoPool {
	return &UtxoPool{
		entries: make(map[wire.OutPoint]*UtxoEntry),
	}
}
