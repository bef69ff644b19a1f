// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"

	"github.com/viswanathkgp12/scrooge.coin/txsig"
	"github.com/viswanathkgp12/scrooge.coin/wire"
)

// testKey holds a generated key pair used to create and claim test outputs.
type testKey struct {
	priv   *btcec.PrivateKey
	pubKey []byte
}

func genTestKey(t *testing.T) *testKey {
	t.Helper()
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err, "failed to generate private key")
	return &testKey{
		priv:   privKey,
		pubKey: privKey.PubKey().SerializeCompressed(),
	}
}

// harness bundles a pool seeded with one spendable output and the verifier
// the validation tests run against.
type harness struct {
	pool     *UtxoPool
	verifier SigVerifier
	key      *testKey
	outpoint wire.OutPoint
}

// newHarness returns a harness whose pool contains a single output of the
// passed amount spendable by the harness key.
func newHarness(t *testing.T, amount btcutil.Amount) *harness {
	t.Helper()

	key := genTestKey(t)
	outpoint := testOutPoint("genesis", 0)

	pool := NewUtxoPool()
	pool.AddEntry(outpoint, NewUtxoEntry(amount, key.pubKey))

	return &harness{
		pool:     pool,
		verifier: txsig.NewVerifier(nil),
		key:      key,
		outpoint: outpoint,
	}
}

// spendTx returns a transaction spending the harness output to a fresh key,
// creating one output per passed value, signed by the passed key.
func (h *harness) spendTx(t *testing.T, signWith *testKey, values ...int64) *wire.MsgTx {
	t.Helper()

	dest := genTestKey(t)
	tx := wire.NewMsgTx()
	tx.AddTxIn(wire.NewTxIn(&h.outpoint, nil))
	for _, value := range values {
		tx.AddTxOut(wire.NewTxOut(value, dest.pubKey))
	}
	require.NoError(t, txsig.SignInput(signWith.priv, tx, 0))
	return tx
}

// TestCheckTransactionValid ensures a correctly signed transaction spending
// a live output within its value passes validation.
func TestCheckTransactionValid(t *testing.T) {
	h := newHarness(t, 10)
	tx := h.spendTx(t, h.key, 7)

	require.NoError(t, CheckTransaction(tx, h.pool, h.verifier))
	require.True(t, IsValidTx(tx, h.pool, h.verifier))
}

// TestCheckTransactionRejections runs the rejection taxonomy: each case
// builds a transaction violating exactly one rule and asserts the returned
// rule error identifies it.
func TestCheckTransactionRejections(t *testing.T) {
	tests := []struct {
		name string
		tx   func(t *testing.T, h *harness) *wire.MsgTx
		code ErrorCode
	}{{
		name: "dangling reference",
		tx: func(t *testing.T, h *harness) *wire.MsgTx {
			tx := h.spendTx(t, h.key, 7)
			tx.TxIn[0].PreviousOutPoint = testOutPoint("unknown", 0)
			require.NoError(t, txsig.SignInput(h.key.priv, tx, 0))
			return tx
		},
		code: ErrMissingTxOut,
	}, {
		name: "intra transaction double spend",
		tx: func(t *testing.T, h *harness) *wire.MsgTx {
			tx := wire.NewMsgTx()
			tx.AddTxIn(wire.NewTxIn(&h.outpoint, nil))
			tx.AddTxIn(wire.NewTxIn(&h.outpoint, nil))
			tx.AddTxOut(wire.NewTxOut(7, h.key.pubKey))
			require.NoError(t, txsig.SignInput(h.key.priv, tx, 0))
			require.NoError(t, txsig.SignInput(h.key.priv, tx, 1))
			return tx
		},
		code: ErrDuplicateTxInputs,
	}, {
		name: "missing signature",
		tx: func(t *testing.T, h *harness) *wire.MsgTx {
			tx := h.spendTx(t, h.key, 7)
			tx.TxIn[0].Signature = nil
			return tx
		},
		code: ErrBadSignature,
	}, {
		name: "wrong key signature",
		tx: func(t *testing.T, h *harness) *wire.MsgTx {
			return h.spendTx(t, genTestKey(t), 7)
		},
		code: ErrBadSignature,
	}, {
		name: "signature over different content",
		tx: func(t *testing.T, h *harness) *wire.MsgTx {
			tx := h.spendTx(t, h.key, 7)
			// Changing an output after signing invalidates the
			// signature.
			tx.TxOut[0].Value = 1
			return tx
		},
		code: ErrBadSignature,
	}, {
		name: "negative output",
		tx: func(t *testing.T, h *harness) *wire.MsgTx {
			return h.spendTx(t, h.key, 5, -1)
		},
		code: ErrBadTxOutValue,
	}, {
		name: "output above max amount",
		tx: func(t *testing.T, h *harness) *wire.MsgTx {
			return h.spendTx(t, h.key, btcutil.MaxSatoshi+1)
		},
		code: ErrBadTxOutValue,
	}, {
		name: "outputs exceed inputs",
		tx: func(t *testing.T, h *harness) *wire.MsgTx {
			return h.spendTx(t, h.key, 11)
		},
		code: ErrSpendTooHigh,
	}, {
		name: "no inputs",
		tx: func(t *testing.T, h *harness) *wire.MsgTx {
			tx := wire.NewMsgTx()
			tx.AddTxOut(wire.NewTxOut(0, h.key.pubKey))
			return tx
		},
		code: ErrNoInputValue,
	}}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := newHarness(t, 10)
			tx := test.tx(t, h)

			err := CheckTransaction(tx, h.pool, h.verifier)
			require.Error(t, err)
			require.True(t, IsErrorCode(err, test.code),
				"got %v, want %v", err, test.code)
			require.False(t, IsValidTx(tx, h.pool, h.verifier))
		})
	}
}

// TestCheckTransactionZeroValueInput ensures spending only zero value
// outputs is rejected since no real funds move.
func TestCheckTransactionZeroValueInput(t *testing.T) {
	h := newHarness(t, 0)
	tx := h.spendTx(t, h.key, 0)

	err := CheckTransaction(tx, h.pool, h.verifier)
	require.True(t, IsErrorCode(err, ErrNoInputValue), "got %v", err)
}

// TestValidationIsReadOnly ensures validation does not mutate the pool and
// repeated runs return the same result.
func TestValidationIsReadOnly(t *testing.T) {
	h := newHarness(t, 10)
	tx := h.spendTx(t, h.key, 7)

	wantLen := h.pool.Len()
	for i := 0; i < 5; i++ {
		require.NoError(t, CheckTransaction(tx, h.pool, h.verifier))
		require.Equal(t, wantLen, h.pool.Len(),
			"validation should not modify the pool")
		require.True(t, h.pool.Contains(h.outpoint))
	}
}

// TestCalcFee ensures the fee is the input total minus the output total
// resolved against the passed pool.
func TestCalcFee(t *testing.T) {
	h := newHarness(t, 10)
	tx := h.spendTx(t, h.key, 7)

	fee, err := CalcFee(tx, h.pool)
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(3), fee)

	// Fee resolution against a pool missing the input fails.
	empty := NewUtxoPool()
	_, err = CalcFee(tx, empty)
	require.True(t, IsErrorCode(err, ErrMissingTxOut), "got %v", err)
}

// TestRuleErrorString sanity checks error code formatting used in logs.
func TestRuleErrorString(t *testing.T) {
	// Every defined code must have a name.
	for code := ErrorCode(0); code < numErrorCodes; code++ {
		require.NotContains(t, code.String(), "Unknown",
			"error code %d is missing a string", int(code))
	}

	require.Equal(t, "ErrMissingTxOut", ErrMissingTxOut.String())
	require.Equal(t, "Unknown ErrorCode (9999)", ErrorCode(9999).String())

	err := ruleError(ErrDoubleSpend, "spent twice")
	require.Equal(t, "spent twice", err.Error())
	require.True(t, IsErrorCode(err, ErrDoubleSpend))
	require.False(t, IsErrorCode(err, ErrMissingTxOut))
}
