package settle

import (
	"errors"

	"FanPredix/internal/book"
	"FanPredix/internal/odds"

	"github.com/google/uuid"
)

var (
	ErrAlreadyClaimed   = errors.New("winnings already claimed for this market")
	ErrNothingToRedeem  = errors.New("no winning positions to redeem")
	ErrNothingToReclaim = errors.New("no unmatched escrow to reclaim")
)

// Position is the immutable record of one side of a completed match. Each
// matching event produces two: one Back, one Lay, both at the resting
// order's odds. Liability is the lay-side escrow consumed by the match;
// it is zero on Back positions.
type Position struct {
	Owner         uuid.UUID
	MarketID      uint64
	OutcomeIndex  int
	Side          book.Side
	MatchedAmount int64
	Odds          int64
	Liability     int64
}

type ownerKey struct {
	Owner    uuid.UUID
	MarketID uint64
}

// Store accumulates positions, indexed by (owner, market) for settlement.
type Store struct {
	byOwner map[ownerKey][]Position
}

func NewStore() *Store {
	return &Store{byOwner: make(map[ownerKey][]Position)}
}

// Record appends the two positions produced by one match.
func (s *Store) Record(marketID uint64, outcome int, backOwner, layOwner uuid.UUID, m book.Match) {
	backKey := ownerKey{Owner: backOwner, MarketID: marketID}
	s.byOwner[backKey] = append(s.byOwner[backKey], Position{
		Owner:         backOwner,
		MarketID:      marketID,
		OutcomeIndex:  outcome,
		Side:          book.SideBack,
		MatchedAmount: m.Amount,
		Odds:          m.Odds,
	})

	layKey := ownerKey{Owner: layOwner, MarketID: marketID}
	s.byOwner[layKey] = append(s.byOwner[layKey], Position{
		Owner:         layOwner,
		MarketID:      marketID,
		OutcomeIndex:  outcome,
		Side:          book.SideLay,
		MatchedAmount: m.Amount,
		Odds:          m.Odds,
		Liability:     m.Liability,
	})
}

// ByOwner returns an owner's positions in a market, in match order.
func (s *Store) ByOwner(owner uuid.UUID, marketID uint64) []Position {
	return s.byOwner[ownerKey{Owner: owner, MarketID: marketID}]
}

// Payout is the settlement result for one owner in one resolved market.
// Gross includes returned principal; Profit is the component the platform
// fee applies to.
type Payout struct {
	Gross  int64
	Profit int64
}

// ComputePayout settles an owner's positions against the winning outcome.
//
// A Back position wins when its outcome won: gross is matched * odds / base
// (stake back plus profit taken from the lay side's liability). A Lay
// position wins when its outcome lost: gross is the consumed liability
// returned plus the matched back stake as profit. Losing positions pay
// nothing; their escrow funds the winners.
func ComputePayout(positions []Position, winningOutcome int, base int64) Payout {
	var p Payout
	for _, pos := range positions {
		switch {
		case pos.Side == book.SideBack && pos.OutcomeIndex == winningOutcome:
			gross := odds.BackPayout(pos.MatchedAmount, pos.Odds, base)
			p.Gross += gross
			p.Profit += gross - pos.MatchedAmount
		case pos.Side == book.SideLay && pos.OutcomeIndex != winningOutcome:
			p.Gross += pos.Liability + pos.MatchedAmount
			p.Profit += pos.MatchedAmount
		}
	}
	return p
}

// RedemptionLedger guarantees at-most-once redemption per (owner, market).
type RedemptionLedger struct {
	claimed map[ownerKey]bool
}

func NewRedemptionLedger() *RedemptionLedger {
	return &RedemptionLedger{claimed: make(map[ownerKey]bool)}
}

func (rl *RedemptionLedger) Claimed(owner uuid.UUID, marketID uint64) bool {
	return rl.claimed[ownerKey{Owner: owner, MarketID: marketID}]
}

// MarkClaimed records a successful redemption. It fails if one was already
// recorded, which callers must treat as a hard stop.
func (rl *RedemptionLedger) MarkClaimed(owner uuid.UUID, marketID uint64) error {
	key := ownerKey{Owner: owner, MarketID: marketID}
	if rl.claimed[key] {
		return ErrAlreadyClaimed
	}
	rl.claimed[key] = true
	return nil
}
