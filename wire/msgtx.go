// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion int32 = 1

	// MaxOutputIndex is the maximum index the index field of an outpoint
	// can be.
	MaxOutputIndex uint32 = 0xffffffff

	// maxTxInPerTx is the maximum number of inputs a deserialized
	// transaction is allowed to have.
	maxTxInPerTx = 1 << 16

	// maxTxOutPerTx is the maximum number of outputs a deserialized
	// transaction is allowed to have.
	maxTxOutPerTx = 1 << 16

	// maxSignatureSize is the maximum serialized size of an input
	// signature.  DER encoded ECDSA signatures are at most 72 bytes, so
	// this provides ample headroom.
	maxSignatureSize = 80

	// maxPubKeySize is the maximum serialized size of an output public
	// key.  Both compressed (33 byte) and uncompressed (65 byte)
	// secp256k1 keys fit.
	maxPubKeySize = 65

	// defaultTxInOutAlloc is the default size used for the backing array
	// for transaction inputs and outputs.  The array will dynamically
	// grow as needed, but this figure is intended to provide enough space
	// for the number of inputs and outputs in a typical transaction
	// without needing to grow the backing array multiple times.
	defaultTxInOutAlloc = 8
)

// OutPoint defines a ledger data type that is used to track previous
// transaction outputs.  It references one output of one transaction by the
// originating transaction hash and the output position within it.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new transaction outpoint point with the provided
// hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  *hash,
		Index: index,
	}
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	// Allocate enough for hash string, colon, and 10 decimal digits,
	// which will fit any uint32 index.
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = strconv.AppendUint(buf, uint64(o.Index), 10)
	return string(buf)
}

// TxIn defines a ledger transaction input.  The signature authorizes the
// spend of the referenced previous output and covers the transaction's
// signature payload for this input (see SignaturePayload).
type TxIn struct {
	PreviousOutPoint OutPoint
	Signature        []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction input.
func (t *TxIn) SerializeSize() int {
	// PreviousOutPoint.Hash 32 bytes + PreviousOutPoint.Index 4 bytes +
	// serialized varint size for the length of Signature + Signature
	// bytes.
	return chainhash.HashSize + 4 +
		varIntSerializeSize(uint64(len(t.Signature))) + len(t.Signature)
}

// NewTxIn returns a new ledger transaction input with the provided previous
// outpoint and signature.
func NewTxIn(prevOut *OutPoint, signature []byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		Signature:        signature,
	}
}

// TxOut defines a ledger transaction output.  The public key is the spending
// authority a later input must satisfy to consume the output.
type TxOut struct {
	Value  int64
	PubKey []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction output.
func (t *TxOut) SerializeSize() int {
	// Value 8 bytes + serialized varint size for the length of PubKey +
	// PubKey bytes.
	return 8 + varIntSerializeSize(uint64(len(t.PubKey))) + len(t.PubKey)
}

// NewTxOut returns a new ledger transaction output with the provided
// transaction value and public key.
func NewTxOut(value int64, pubKey []byte) *TxOut {
	return &TxOut{
		Value:  value,
		PubKey: pubKey,
	}
}

// MsgTx implements the ledger transaction representation.  A transaction is
// an ordered list of inputs, each spending one previous output, and an
// ordered list of newly created outputs.
//
// Use the AddTxIn and AddTxOut functions to build up the list of transaction
// inputs and outputs.  Transactions handed to the validation and commit code
// are treated as immutable.
type MsgTx struct {
	Version int32
	TxIn    []*TxIn
	TxOut   []*TxOut
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// TxHash generates the hash for the transaction.  The hash is computed over
// the full canonical serialization, signatures included, so it serves as the
// content-derived transaction identity outputs are referenced by.
func (msg *MsgTx) TxHash() chainhash.Hash {
	// Ignore the error returns since the only way the encode can fail
	// is being out of memory or due to nil pointers, both of which would
	// cause a run-time panic.
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	_ = msg.Serialize(buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Copy creates a deep copy of a transaction so that the original does not get
// modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	// Create new tx and start by copying primitive values and making space
	// for the transaction inputs and outputs.
	newTx := MsgTx{
		Version: msg.Version,
		TxIn:    make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:   make([]*TxOut, 0, len(msg.TxOut)),
	}

	// Deep copy the old TxIn data.
	for _, oldTxIn := range msg.TxIn {
		// Deep copy the old previous outpoint.
		oldOutPoint := oldTxIn.PreviousOutPoint
		newOutPoint := OutPoint{}
		newOutPoint.Hash.SetBytes(oldOutPoint.Hash[:])
		newOutPoint.Index = oldOutPoint.Index

		// Deep copy the old signature.
		var newSig []byte
		if oldTxIn.Signature != nil {
			newSig = make([]byte, len(oldTxIn.Signature))
			copy(newSig, oldTxIn.Signature)
		}

		newTxIn := TxIn{
			PreviousOutPoint: newOutPoint,
			Signature:        newSig,
		}
		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}

	// Deep copy the old TxOut data.
	for _, oldTxOut := range msg.TxOut {
		var newPubKey []byte
		if oldTxOut.PubKey != nil {
			newPubKey = make([]byte, len(oldTxOut.PubKey))
			copy(newPubKey, oldTxOut.PubKey)
		}

		newTxOut := TxOut{
			Value:  oldTxOut.Value,
			PubKey: newPubKey,
		}
		newTx.TxOut = append(newTx.TxOut, &newTxOut)
	}

	return &newTx
}

// SignaturePayload returns the canonical bytes the signer of input idx
// commits to: the transaction serialized with every input signature cleared,
// followed by the little endian index of the input being signed.  Clearing
// all signatures rather than just the one belonging to idx keeps the payload
// independent of the order inputs are signed in, and the appended index ties
// each signature to one specific input.  The signature stored on input idx
// must verify over exactly these bytes against the public key recorded for
// the referenced output.
func (msg *MsgTx) SignaturePayload(idx int) ([]byte, error) {
	if idx < 0 || idx >= len(msg.TxIn) {
		return nil, fmt.Errorf("transaction input index %d is out of "+
			"range [0, %d)", idx, len(msg.TxIn))
	}

	txCopy := msg.Copy()
	for _, txIn := range txCopy.TxIn {
		txIn.Signature = nil
	}

	buf := bytes.NewBuffer(make([]byte, 0, txCopy.SerializeSize()+4))
	if err := txCopy.Serialize(buf); err != nil {
		return nil, err
	}
	if err := writeElement(buf, uint32(idx)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Serialize encodes the transaction to w using the canonical format: the
// version, the varint-prefixed input list, then the varint-prefixed output
// list, all integers little endian.  This single format defines both the
// transaction identity (TxHash) and the per-input signature payload, so any
// change to it invalidates every existing signature and outpoint.
func (msg *MsgTx) Serialize(w io.Writer) error {
	if err := writeElement(w, msg.Version); err != nil {
		return err
	}

	if err := writeVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if _, err := w.Write(ti.PreviousOutPoint.Hash[:]); err != nil {
			return err
		}
		if err := writeElement(w, ti.PreviousOutPoint.Index); err != nil {
			return err
		}
		if err := writeVarBytes(w, ti.Signature); err != nil {
			return err
		}
	}

	if err := writeVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeElement(w, to.Value); err != nil {
			return err
		}
		if err := writeVarBytes(w, to.PubKey); err != nil {
			return err
		}
	}

	return nil
}

// Deserialize decodes a transaction from r using the canonical format
// described by Serialize.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	if err := readElement(r, &msg.Version); err != nil {
		return err
	}

	count, err := readVarInt(r)
	if err != nil {
		return err
	}
	if count > maxTxInPerTx {
		return fmt.Errorf("MsgTx.Deserialize: too many input "+
			"transactions to fit into a transaction [count %d, "+
			"max %d]", count, maxTxInPerTx)
	}

	msg.TxIn = make([]*TxIn, 0, count)
	for i := uint64(0); i < count; i++ {
		ti := TxIn{}
		if _, err := io.ReadFull(r, ti.PreviousOutPoint.Hash[:]); err != nil {
			return err
		}
		if err := readElement(r, &ti.PreviousOutPoint.Index); err != nil {
			return err
		}
		ti.Signature, err = readVarBytes(r, maxSignatureSize,
			"transaction input signature")
		if err != nil {
			return err
		}
		msg.TxIn = append(msg.TxIn, &ti)
	}

	count, err = readVarInt(r)
	if err != nil {
		return err
	}
	if count > maxTxOutPerTx {
		return fmt.Errorf("MsgTx.Deserialize: too many output "+
			"transactions to fit into a transaction [count %d, "+
			"max %d]", count, maxTxOutPerTx)
	}

	msg.TxOut = make([]*TxOut, 0, count)
	for i := uint64(0); i < count; i++ {
		to := TxOut{}
		if err := readElement(r, &to.Value); err != nil {
			return err
		}
		to.PubKey, err = readVarBytes(r, maxPubKeySize,
			"transaction output public key")
		if err != nil {
			return err
		}
		msg.TxOut = append(msg.TxOut, &to)
	}

	return nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction.
func (msg *MsgTx) SerializeSize() int {
	// Version 4 bytes + serialized varint size for the number of
	// transaction inputs and outputs.
	n := 4 + varIntSerializeSize(uint64(len(msg.TxIn))) +
		varIntSerializeSize(uint64(len(msg.TxOut)))

	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}

	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}

	return n
}

// Bytes returns the serialized form of the transaction in bytes.
func (msg *MsgTx) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	if err := msg.Serialize(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewMsgTx returns a new ledger transaction that conforms to the canonical
// serialization format.  The return instance has a default version of
// TxVersion and there are no transaction inputs or outputs.
func NewMsgTx() *MsgTx {
	return &MsgTx{
		Version: TxVersion,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}
