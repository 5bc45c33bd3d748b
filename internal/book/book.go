package book

import (
	"errors"

	"FanPredix/internal/odds"

	"github.com/google/uuid"
)

var (
	ErrInvalidStake   = errors.New("stake below minimum bet")
	ErrInvalidOdds    = errors.New("odds below minimum multiplier")
	ErrOrderNotFound  = errors.New("order not found")
	ErrNotCancellable = errors.New("only fully-unmatched orders can be cancelled")
)

// Side of an order: Back bets an outcome occurs, Lay bets it does not.
type Side int32

const (
	SideBack Side = iota
	SideLay
)

func (s Side) String() string {
	if s == SideBack {
		return "back"
	}
	return "lay"
}

func (s Side) Opposite() Side {
	if s == SideBack {
		return SideLay
	}
	return SideBack
}

// Status of an order. Orders are mutated only by the matching algorithm
// (Remaining decreases) and by cancellation.
type Status int32

const (
	StatusOpen Status = iota
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusPartiallyFilled:
		return "partially_filled"
	case StatusFilled:
		return "filled"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Order is a back or lay bet resting on (or passing through) the book.
// Stake is denominated in back-stake units for both sides; a lay order's
// Stake is the amount of back money it is willing to match.
type Order struct {
	ID           uint64
	MarketID     uint64
	OutcomeIndex int
	Side         Side
	Owner        uuid.UUID
	Stake        int64
	Odds         int64
	Remaining    int64
	Status       Status

	// Escrow is the total amount debited from the owner at placement.
	// EscrowRemaining is the portion not yet consumed by matches; it is
	// what a cancellation or post-resolution reclaim refunds.
	Escrow          int64
	EscrowRemaining int64
}

// PlannedMatch is one step of a match plan, priced at the resting order's
// quoted odds. Liability is the lay-side escrow the match consumes.
type PlannedMatch struct {
	RestingID uint64
	Amount    int64
	Odds      int64
	Liability int64
}

// Plan is the deterministic outcome of matching an incoming order against
// the current book, computed without mutating anything. Escrow is the exact
// transfer the incoming order's owner must fund before the plan commits:
// for a back order the full stake; for a lay order the liability at the
// actually-matched odds plus the remainder's liability at its own odds.
type Plan struct {
	Matches   []PlannedMatch
	Remainder int64
	Escrow    int64
}

// Match is the committed record of one matching event.
type Match struct {
	BackOrderID uint64
	LayOrderID  uint64
	Amount      int64
	Odds        int64
	Liability   int64
}

type queueKey struct {
	MarketID uint64
	Outcome  int
	Side     Side
}

// OrderBook maintains per-market, per-outcome, per-side queues of open
// orders in strict arrival order. It is not safe for concurrent use; the
// engine serializes all access.
type OrderBook struct {
	base   int64
	nextID uint64
	orders map[uint64]*Order
	queues map[queueKey][]*Order
}

func NewOrderBook(base int64) *OrderBook {
	return &OrderBook{
		base:   base,
		nextID: 1,
		orders: make(map[uint64]*Order),
		queues: make(map[queueKey][]*Order),
	}
}

// Compatible reports whether an incoming order at incomingOdds may match a
// resting order at restingOdds. A back accepts lay odds at or below its
// quote; a lay accepts back odds at or above its quote. Every compatible
// match executes at the resting quote.
func Compatible(incoming Side, incomingOdds, restingOdds int64) bool {
	if incoming == SideBack {
		return restingOdds <= incomingOdds
	}
	return restingOdds >= incomingOdds
}

// BuildPlan scans the opposite-side queue oldest-first and plans matches
// until the incoming amount is exhausted or no compatible candidate
// remains. Price-then-time priority is deliberately NOT used: every
// compatible candidate is acceptable at its own quote, so strict arrival
// order keeps matching deterministic and replayable.
func (ob *OrderBook) BuildPlan(marketID uint64, outcome int, side Side, stake, oddsVal int64) Plan {
	plan := Plan{Remainder: stake}

	queue := ob.queues[queueKey{MarketID: marketID, Outcome: outcome, Side: side.Opposite()}]
	for _, resting := range queue {
		if plan.Remainder == 0 {
			break
		}
		if !Compatible(side, oddsVal, resting.Odds) {
			continue
		}

		amount := plan.Remainder
		if resting.Remaining < amount {
			amount = resting.Remaining
		}

		plan.Matches = append(plan.Matches, PlannedMatch{
			RestingID: resting.ID,
			Amount:    amount,
			Odds:      resting.Odds,
			Liability: odds.Liability(amount, resting.Odds, ob.base),
		})
		plan.Remainder -= amount
	}

	if side == SideBack {
		plan.Escrow = stake
	} else {
		for _, m := range plan.Matches {
			plan.Escrow += m.Liability
		}
		plan.Escrow += odds.Liability(plan.Remainder, oddsVal, ob.base)
	}

	return plan
}

// Commit applies a plan built against the current book state: it creates
// the incoming order, decrements both sides of every match, and rests any
// unmatched remainder on the incoming side's queue. The caller must have
// escrowed plan.Escrow already; Commit itself cannot fail.
func (ob *OrderBook) Commit(
	marketID uint64,
	outcome int,
	side Side,
	owner uuid.UUID,
	stake, oddsVal int64,
	plan Plan,
) (*Order, []Match) {
	incoming := &Order{
		ID:              ob.nextID,
		MarketID:        marketID,
		OutcomeIndex:    outcome,
		Side:            side,
		Owner:           owner,
		Stake:           stake,
		Odds:            oddsVal,
		Remaining:       stake,
		Status:          StatusOpen,
		Escrow:          plan.Escrow,
		EscrowRemaining: plan.Escrow,
	}
	ob.nextID++
	ob.orders[incoming.ID] = incoming

	matches := make([]Match, 0, len(plan.Matches))
	for _, pm := range plan.Matches {
		resting := ob.orders[pm.RestingID]

		resting.Remaining -= pm.Amount
		incoming.Remaining -= pm.Amount

		// The back side consumes stake; the lay side consumes liability
		// at the match odds (the resting quote).
		if side == SideBack {
			incoming.EscrowRemaining -= pm.Amount
			resting.EscrowRemaining -= pm.Liability
		} else {
			incoming.EscrowRemaining -= pm.Liability
			resting.EscrowRemaining -= pm.Amount
		}

		if resting.Remaining == 0 {
			resting.Status = StatusFilled
			ob.removeFromQueue(resting)
		} else {
			resting.Status = StatusPartiallyFilled
		}

		match := Match{
			Amount:    pm.Amount,
			Odds:      pm.Odds,
			Liability: pm.Liability,
		}
		if side == SideBack {
			match.BackOrderID = incoming.ID
			match.LayOrderID = resting.ID
		} else {
			match.BackOrderID = resting.ID
			match.LayOrderID = incoming.ID
		}
		matches = append(matches, match)
	}

	switch {
	case incoming.Remaining == 0:
		incoming.Status = StatusFilled
	case len(matches) > 0:
		incoming.Status = StatusPartiallyFilled
		ob.enqueue(incoming)
	default:
		incoming.Status = StatusOpen
		ob.enqueue(incoming)
	}

	return incoming, matches
}

func (ob *OrderBook) enqueue(o *Order) {
	key := queueKey{MarketID: o.MarketID, Outcome: o.OutcomeIndex, Side: o.Side}
	ob.queues[key] = append(ob.queues[key], o)
}

func (ob *OrderBook) removeFromQueue(o *Order) {
	key := queueKey{MarketID: o.MarketID, Outcome: o.OutcomeIndex, Side: o.Side}
	queue := ob.queues[key]
	for i, q := range queue {
		if q.ID == o.ID {
			ob.queues[key] = append(queue[:i], queue[i+1:]...)
			return
		}
	}
}

// Get resolves an order by id.
func (ob *OrderBook) Get(id uint64) (*Order, error) {
	o, ok := ob.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// Cancel removes a fully-unmatched order from the book and returns the
// escrow to refund. Partially filled orders are not cancellable: their
// matched portion is already committed to positions. Ownership is the
// caller's concern.
func (ob *OrderBook) Cancel(id uint64) (int64, error) {
	o, err := ob.Get(id)
	if err != nil {
		return 0, err
	}
	if o.Status != StatusOpen {
		return 0, ErrNotCancellable
	}

	refund := o.EscrowRemaining
	o.EscrowRemaining = 0
	o.Status = StatusCancelled
	ob.removeFromQueue(o)
	return refund, nil
}

// Orders returns the resting queue for one (market, outcome, side) in
// arrival order. The slice is a copy; the orders are live.
func (ob *OrderBook) Orders(marketID uint64, outcome int, side Side) []*Order {
	queue := ob.queues[queueKey{MarketID: marketID, Outcome: outcome, Side: side}]
	return append([]*Order(nil), queue...)
}

// ReclaimableEscrow sums the unconsumed escrow of an owner's orders in a
// market without mutating anything. The engine funds the refund transfer
// from this figure before committing the drain.
func (ob *OrderBook) ReclaimableEscrow(marketID uint64, owner uuid.UUID) int64 {
	var total int64
	for _, o := range ob.orders {
		if ob.reclaimable(o, marketID, owner) {
			total += o.EscrowRemaining
		}
	}
	return total
}

// ReclaimEscrow drains the unconsumed escrow of an owner's orders in a
// market and returns the total drained. Used after market resolution,
// when resting remainders can never match again.
func (ob *OrderBook) ReclaimEscrow(marketID uint64, owner uuid.UUID) int64 {
	var total int64
	for _, o := range ob.orders {
		if ob.reclaimable(o, marketID, owner) {
			total += o.EscrowRemaining
			o.EscrowRemaining = 0
		}
	}
	return total
}

// reclaimable admits any order still holding escrow for this owner in
// this market. Filled lay orders qualify too: each match's liability
// rounds down, so a lay filled across several matches can consume less
// than it escrowed, and that residue stays refundable.
func (ob *OrderBook) reclaimable(o *Order, marketID uint64, owner uuid.UUID) bool {
	if o.MarketID != marketID || o.Owner != owner {
		return false
	}
	return o.Status != StatusCancelled && o.EscrowRemaining > 0
}

// RestingCount reports how many orders are resting across every queue.
func (ob *OrderBook) RestingCount() int {
	n := 0
	for _, queue := range ob.queues {
		n += len(queue)
	}
	return n
}
