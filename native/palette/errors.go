package palette

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks operations on tokens that do not exist.
	ErrNotFound = errors.New("palette: unknown token")
	// ErrSelfSwap rejects swapping a token with itself.
	ErrSelfSwap = errors.New("palette: cannot swap a token with itself")
	// ErrUnauthorized marks callers without custody or delegation rights on
	// one of the tokens involved.
	ErrUnauthorized = errors.New("palette: caller is not token owner nor swap delegate")
	// ErrInvalidPayment is the parent of both payment failures so callers can
	// match the category or the exact reason.
	ErrInvalidPayment = errors.New("palette: invalid payment")

	// ErrPaymentNotExpected rejects attached value on a same-owner swap.
	ErrPaymentNotExpected = fmt.Errorf("%w: owner of both tokens should not pay to swap", ErrInvalidPayment)
	// ErrPaymentMismatch rejects attached value that does not exactly match
	// the combined swap price. This is an exact-match contract: overpaying
	// fails the same way underpaying does.
	ErrPaymentMismatch = fmt.Errorf("%w: transaction value did not equal the swap price", ErrInvalidPayment)
)
