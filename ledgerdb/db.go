// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledgerdb provides persistence for unspent output pool snapshots
// between batch commits, backed by leveldb.
package ledgerdb

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/syndtr/goleveldb/leveldb"
	ldbutil "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/viswanathkgp12/scrooge.coin/ledger"
	"github.com/viswanathkgp12/scrooge.coin/wire"
)

var (
	// utxoSetKeyPrefix is the prefix under which every unspent output
	// entry is stored.
	utxoSetKeyPrefix = []byte("utxo-")
)

const (
	// utxoKeySize is the size of a serialized unspent output key without
	// its prefix: the originating transaction hash followed by the big
	// endian output index.  Big endian keeps the outputs of one
	// transaction adjacent and ordered under leveldb's byte-wise key
	// ordering.
	utxoKeySize = chainhash.HashSize + 4

	// minUtxoValueSize is the minimum size of a serialized unspent output
	// value: the little endian amount followed by the raw public key.
	minUtxoValueSize = 8
)

// Store persists unspent output pool snapshots in a leveldb database.  A
// snapshot is the full pool: saving replaces whatever snapshot was stored
// before.
//
// Store methods are not safe for concurrent use.  The commit algorithms are
// single threaded and the store is meant to be driven by the same caller.
type Store struct {
	db *leveldb.DB
}

// Open opens the database at the provided path, creating it when it does not
// exist yet.
func Open(dbPath string) (*Store, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("error opening ledger database: %w", err)
	}

	log.Debugf("Opened ledger database %s", dbPath)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// utxoKey returns the database key for the passed outpoint.
func utxoKey(outpoint wire.OutPoint) []byte {
	key := make([]byte, 0, len(utxoSetKeyPrefix)+utxoKeySize)
	key = append(key, utxoSetKeyPrefix...)
	key = append(key, outpoint.Hash[:]...)
	key = binary.BigEndian.AppendUint32(key, outpoint.Index)
	return key
}

// utxoValue returns the database value for the passed entry.
func utxoValue(entry *ledger.UtxoEntry) []byte {
	pubKey := entry.PubKey()
	value := make([]byte, 0, minUtxoValueSize+len(pubKey))
	value = binary.LittleEndian.AppendUint64(value,
		uint64(entry.Amount()))
	value = append(value, pubKey...)
	return value
}

// SavePool atomically replaces the stored snapshot with the contents of the
// passed pool.
func (s *Store) SavePool(pool *ledger.UtxoPool) error {
	batch := new(leveldb.Batch)

	// Drop the previous snapshot.  The deletes and puts go into a single
	// batch so a crash mid-save cannot leave a half-replaced snapshot.
	iter := s.db.NewIterator(ldbutil.BytesPrefix(utxoSetKeyPrefix), nil)
	for iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		batch.Delete(key)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return fmt.Errorf("error iterating stored snapshot: %w", err)
	}

	for outpoint, entry := range pool.Entries() {
		batch.Put(utxoKey(outpoint), utxoValue(entry))
	}

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("error saving snapshot: %w", err)
	}

	log.Debugf("Saved snapshot of %d unspent outputs", pool.Len())
	return nil
}

// LoadPool reconstructs the stored snapshot into a new unspent output pool.
// An empty pool is returned when no snapshot has been saved yet.
func (s *Store) LoadPool() (*ledger.UtxoPool, error) {
	pool := ledger.NewUtxoPool()

	iter := s.db.NewIterator(ldbutil.BytesPrefix(utxoSetKeyPrefix), nil)
	for iter.Next() {
		key := iter.Key()[len(utxoSetKeyPrefix):]
		if len(key) != utxoKeySize {
			iter.Release()
			return nil, fmt.Errorf("malformed snapshot key of "+
				"length %d", len(key))
		}

		var outpoint wire.OutPoint
		copy(outpoint.Hash[:], key[:chainhash.HashSize])
		outpoint.Index = binary.BigEndian.Uint32(key[chainhash.HashSize:])

		value := iter.Value()
		if len(value) < minUtxoValueSize {
			iter.Release()
			return nil, fmt.Errorf("malformed snapshot value of "+
				"length %d for output %v", len(value), outpoint)
		}

		amount := btcutil.Amount(binary.LittleEndian.Uint64(
			value[:8]))
		pubKey := make([]byte, len(value)-8)
		copy(pubKey, value[8:])

		pool.AddEntry(outpoint, ledger.NewUtxoEntry(amount, pubKey))
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("error loading snapshot: %w", err)
	}

	log.Debugf("Loaded snapshot of %d unspent outputs", pool.Len())
	return pool, nil
}
