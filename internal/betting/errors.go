package betting

import "errors"

// Every failure below aborts the whole operation with no state change;
// the host rolls back the surrounding transaction.
var (
	ErrInvalidOutcomes    = errors.New("invalid outcome count")
	ErrInvalidOutcome     = errors.New("invalid winning outcome")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrInvalidStake       = errors.New("invalid stake")
	ErrInvalidBetSequence = errors.New("invalid bet sequence")
	ErrInvalidOdds        = errors.New("invalid odds")
	ErrInvalidLine        = errors.New("invalid line")
	ErrInvalidName        = errors.New("name too long")

	ErrUnauthorized = errors.New("unauthorized")

	ErrMarketClosed     = errors.New("market closed")
	ErrMarketSettled    = errors.New("market settled")
	ErrMarketOpen       = errors.New("market still open")
	ErrMarketNotSettled = errors.New("market not settled")
	ErrBetSettled       = errors.New("bet already settled")
	ErrBetMismatch      = errors.New("bet belongs to a different market")

	ErrStakeTooHigh = errors.New("stake too high")

	// ErrInsufficientEscrow means a declared win cannot be covered by the
	// market's escrow. Correct accounting never produces it; it is surfaced
	// instead of paying out partially.
	ErrInsufficientEscrow = errors.New("insufficient escrow")
)
