package psn

import "errors"

var (
	// ErrInvalidN is returned when n is less than 1.
	ErrInvalidN = errors.New("psn: n must be at least 1")

	// ErrTooLarge is returned when n exceeds MaxN.
	ErrTooLarge = errors.New("psn: n too large")

	// ErrInvariant reports an internal defect: the enumeration reached a state that valid input cannot produce.
	ErrInvariant = errors.New("psn: internal invariant violated")

	// ErrUnstable is returned by Verify when adding a modulus changes the reconstructed count,
	// meaning the original moduli were too small for the answer.
	ErrUnstable = errors.New("psn: result changed when a modulus was added")
)
