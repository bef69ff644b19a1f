// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package handler selects a mutually consistent subset of a batch of candidate
ledger transactions and commits it against an unspent output pool.

Two acceptance policies are provided.  TxHandler accepts every transaction
that is valid and non-conflicting on a first-valid-wins basis.
MaxFeeTxHandler additionally tracks the fee each accepted transaction pays
and, when a later candidate conflicts with transactions already accepted,
swaps the conflicting transactions out whenever doing so strictly increases
the aggregate fee of the accepted set.

Both policies run repeated full passes over the candidate batch until a pass
accepts nothing new.  The repetition matters because a transaction may spend
an output created by another transaction in the same batch that is only
accepted in a later position or a later pass; each pass either grows the
accepted set or terminates the loop, so the fixpoint is reached after at
most one pass per candidate.

Each handler owns a private working copy of the unspent output pool it was
configured with.  The caller's pool is never mutated; the evolved pool can
be retrieved with UtxoPool once a batch has been handled.
*/
package handler
