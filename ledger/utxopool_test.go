// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/viswanathkgp12/scrooge.coin/wire"
)

// testOutPoint returns a deterministic outpoint derived from the passed
// seed.
func testOutPoint(seed string, index uint32) wire.OutPoint {
	return wire.OutPoint{Hash: chainhash.HashH([]byte(seed)), Index: index}
}

// TestUtxoPoolBasics exercises adding, looking up and removing entries.
func TestUtxoPoolBasics(t *testing.T) {
	pool := NewUtxoPool()
	require.Zero(t, pool.Len())

	op := testOutPoint("tx a", 0)
	pubKey := []byte{0x02, 0x11, 0x22}
	pool.AddEntry(op, NewUtxoEntry(10, pubKey))

	require.Equal(t, 1, pool.Len())
	require.True(t, pool.Contains(op))

	entry := pool.LookupEntry(op)
	require.NotNil(t, entry)
	require.Equal(t, btcutil.Amount(10), entry.Amount())
	require.Equal(t, pubKey, entry.PubKey())

	require.Nil(t, pool.LookupEntry(testOutPoint("tx a", 1)),
		"lookup of an absent outpoint should return nil")

	pool.RemoveEntry(op)
	require.False(t, pool.Contains(op))
	require.Zero(t, pool.Len())

	// Removing an absent outpoint is a no-op.
	pool.RemoveEntry(op)
}

// TestUtxoPoolClone ensures cloned pools evolve independently of their
// source.
func TestUtxoPoolClone(t *testing.T) {
	pool := NewUtxoPool()
	opA := testOutPoint("tx a", 0)
	opB := testOutPoint("tx b", 3)
	pool.AddEntry(opA, NewUtxoEntry(5, []byte{0x02, 0xaa}))
	pool.AddEntry(opB, NewUtxoEntry(7, []byte{0x03, 0xbb}))

	clone := pool.Clone()
	require.Equal(t, pool.Len(), clone.Len())

	clone.RemoveEntry(opA)
	clone.AddEntry(testOutPoint("tx c", 0), NewUtxoEntry(1, []byte{0x02}))

	require.True(t, pool.Contains(opA),
		"removal from the clone should not affect the source")
	require.False(t, pool.Contains(testOutPoint("tx c", 0)),
		"addition to the clone should not affect the source")

	// Entries are deep copied too.
	cloneEntry := clone.LookupEntry(opB)
	cloneEntry.PubKey()[0] ^= 0xff
	require.Equal(t, byte(0x03), pool.LookupEntry(opB).PubKey()[0],
		"mutating a cloned entry should not affect the source entry")
}

// TestUtxoPoolApplyTransaction ensures applying a transaction consumes its
// inputs and creates its outputs keyed by the transaction hash.
func TestUtxoPoolApplyTransaction(t *testing.T) {
	pool := NewUtxoPool()
	opA := testOutPoint("tx a", 0)
	pool.AddEntry(opA, NewUtxoEntry(10, []byte{0x02, 0xaa}))

	tx := wire.NewMsgTx()
	tx.AddTxIn(wire.NewTxIn(&opA, []byte{0x30}))
	tx.AddTxOut(wire.NewTxOut(4, []byte{0x02, 0xcc}))
	tx.AddTxOut(wire.NewTxOut(5, []byte{0x02, 0xdd}))

	pool.ApplyTransaction(tx)

	require.False(t, pool.Contains(opA), "input should be consumed")
	require.Equal(t, 2, pool.Len())

	txHash := tx.TxHash()
	for i, txOut := range tx.TxOut {
		entry := pool.LookupEntry(wire.OutPoint{
			Hash:  txHash,
			Index: uint32(i),
		})
		require.NotNil(t, entry, "created output %d should be present", i)
		require.Equal(t, btcutil.Amount(txOut.Value), entry.Amount())
		require.Equal(t, txOut.PubKey, entry.PubKey())
	}

	// Applying a transaction whose input is already gone only adds the
	// outputs again, so replaying a sequence is a function of the
	// sequence alone.
	pool.ApplyTransaction(tx)
	require.Equal(t, 2, pool.Len())
}
