// Copyright (c) 2024 The scroogecoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrMissingTxOut indicates a transaction input references an output
	// that is not present in the unspent output set, either because it
	// never existed or because it has already been spent.
	ErrMissingTxOut ErrorCode = iota

	// ErrDuplicateTxInputs indicates a transaction references the same
	// unspent output more than once from within its own input list.
	ErrDuplicateTxInputs

	// ErrBadSignature indicates an input signature is missing or does not
	// verify against the public key recorded for the referenced output.
	ErrBadSignature

	// ErrBadTxOutValue indicates an output value is not within the valid
	// range, which means it is either negative or larger than the maximum
	// representable amount.
	ErrBadTxOutValue

	// ErrNoInputValue indicates the total value consumed by a
	// transaction's inputs is not positive, so no real funds are being
	// spent.
	ErrNoInputValue

	// ErrSpendTooHigh indicates the total value of a transaction's
	// outputs exceeds the total value of its inputs, which would create
	// value out of nothing.
	ErrSpendTooHigh

	// ErrDoubleSpend indicates a transaction consumes an unspent output
	// that has already been consumed by a previously accepted transaction
	// in the same batch.
	ErrDoubleSpend

	// numErrorCodes is the maximum error code number used in tests.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrMissingTxOut:      "ErrMissingTxOut",
	ErrDuplicateTxInputs: "ErrDuplicateTxInputs",
	ErrBadSignature:      "ErrBadSignature",
	ErrBadTxOutValue:     "ErrBadTxOutValue",
	ErrNoInputValue:      "ErrNoInputValue",
	ErrSpendTooHigh:      "ErrSpendTooHigh",
	ErrDoubleSpend:       "ErrDoubleSpend",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a transaction failed due to one of the many validation
// rules.  The caller can use type assertions to determine if a failure was
// specifically due to a rule violation and access the ErrorCode field to
// ascertain the specific reason for the rule violation.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether err is a RuleError with the provided error
// code.
func IsErrorCode(err error, c ErrorCode) bool {
	ruleErr, ok := err.(RuleError)
	return ok && ruleErr.ErrorCode == c
}
