package engine

import (
	"errors"

	"FanPredix/internal/book"
	"FanPredix/internal/market"
	"FanPredix/internal/registry"
	"FanPredix/internal/settle"
)

var (
	// ErrUnauthorized rejects a caller lacking the role or ownership an
	// operation requires.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrEscrowFailed wraps a token-ledger rejection during order
	// placement. The order is never created.
	ErrEscrowFailed = errors.New("escrow transfer rejected")

	// ErrPayoutFailed wraps a token-ledger rejection during refund or
	// redemption. No engine state is mutated.
	ErrPayoutFailed = errors.New("payout transfer rejected")
)

// rejectReason maps an operation error to a stable metrics label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrEscrowFailed):
		return "escrow_failed"
	case errors.Is(err, ErrPayoutFailed):
		return "payout_failed"
	case errors.Is(err, registry.ErrDuplicateTeam):
		return "duplicate_team"
	case errors.Is(err, registry.ErrUnknownTeam):
		return "unknown_team"
	case errors.Is(err, market.ErrInvalidWindow):
		return "invalid_window"
	case errors.Is(err, market.ErrInvalidOutcomes):
		return "invalid_outcomes"
	case errors.Is(err, market.ErrMarketNotFound):
		return "market_not_found"
	case errors.Is(err, market.ErrMarketNotOpen):
		return "market_not_open"
	case errors.Is(err, market.ErrInvalidOutcomeIndex):
		return "invalid_outcome_index"
	case errors.Is(err, market.ErrNotYetClosed):
		return "not_yet_closed"
	case errors.Is(err, market.ErrAlreadyResolved):
		return "already_resolved"
	case errors.Is(err, market.ErrNotResolved):
		return "not_resolved"
	case errors.Is(err, book.ErrInvalidStake):
		return "invalid_stake"
	case errors.Is(err, book.ErrInvalidOdds):
		return "invalid_odds"
	case errors.Is(err, book.ErrOrderNotFound):
		return "order_not_found"
	case errors.Is(err, book.ErrNotCancellable):
		return "not_cancellable"
	case errors.Is(err, settle.ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, settle.ErrNothingToRedeem):
		return "nothing_to_redeem"
	case errors.Is(err, settle.ErrNothingToReclaim):
		return "nothing_to_reclaim"
	default:
		return "other"
	}
}
