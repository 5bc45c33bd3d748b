package event

import "github.com/google/uuid"

// TeamAdded is emitted when the registry accepts a new team.
type TeamAdded struct {
	TeamID   uint64    `json:"team_id"`
	Manager  uuid.UUID `json:"manager"`
	Name     string    `json:"name"`
	TokenRef string    `json:"token_ref"`
}

func (e *TeamAdded) EventType() Type    { return TypeTeamAdded }
func (e *TeamAdded) MarketRef() *uint64 { return nil }

// TeamUpdated is emitted when a manager mutates its team.
type TeamUpdated struct {
	TeamID   uint64 `json:"team_id"`
	Name     string `json:"name"`
	TokenRef string `json:"token_ref"`
}

func (e *TeamUpdated) EventType() Type    { return TypeTeamUpdated }
func (e *TeamUpdated) MarketRef() *uint64 { return nil }

// MarketCreated is emitted when a market is allocated in Scheduled state.
type MarketCreated struct {
	MarketID uint64   `json:"market_id"`
	TeamID   uint64   `json:"team_id"`
	Title    string   `json:"title"`
	Outcomes []string `json:"outcomes"`
	StartUs  int64    `json:"start_us"`
	EndUs    int64    `json:"end_us"`
}

func (e *MarketCreated) EventType() Type    { return TypeMarketCreated }
func (e *MarketCreated) MarketRef() *uint64 { return &e.MarketID }

// OrderPlaced is emitted for every accepted order, after matching.
// Remaining is the unmatched remainder resting on the book.
type OrderPlaced struct {
	OrderID      uint64    `json:"order_id"`
	MarketID     uint64    `json:"market_id"`
	OutcomeIndex int       `json:"outcome_index"`
	Side         string    `json:"side"`
	Owner        uuid.UUID `json:"owner"`
	Stake        int64     `json:"stake"`
	Odds         int64     `json:"odds"`
	Remaining    int64     `json:"remaining"`
	Escrow       int64     `json:"escrow"`
}

func (e *OrderPlaced) EventType() Type    { return TypeOrderPlaced }
func (e *OrderPlaced) MarketRef() *uint64 { return &e.MarketID }

// OrdersMatched is emitted once per matching event, at the resting quote.
type OrdersMatched struct {
	MarketID    uint64 `json:"market_id"`
	BackOrderID uint64 `json:"back_order_id"`
	LayOrderID  uint64 `json:"lay_order_id"`
	Amount      int64  `json:"amount"`
	Odds        int64  `json:"odds"`
}

func (e *OrdersMatched) EventType() Type    { return TypeOrdersMatched }
func (e *OrdersMatched) MarketRef() *uint64 { return &e.MarketID }

// OrderCancelled is emitted when an unmatched order is cancelled and its
// escrow refunded.
type OrderCancelled struct {
	OrderID  uint64    `json:"order_id"`
	MarketID uint64    `json:"market_id"`
	Owner    uuid.UUID `json:"owner"`
	Refund   int64     `json:"refund"`
}

func (e *OrderCancelled) EventType() Type    { return TypeOrderCancelled }
func (e *OrderCancelled) MarketRef() *uint64 { return &e.MarketID }

// MarketResolved is emitted exactly once per market.
type MarketResolved struct {
	MarketID       uint64 `json:"market_id"`
	WinningOutcome int    `json:"winning_outcome"`
}

func (e *MarketResolved) EventType() Type    { return TypeMarketResolved }
func (e *MarketResolved) MarketRef() *uint64 { return &e.MarketID }

// WinningsRedeemed is emitted on a successful redemption. Amount is the
// net payout; Fee went to the treasury.
type WinningsRedeemed struct {
	MarketID uint64    `json:"market_id"`
	Owner    uuid.UUID `json:"owner"`
	Amount   int64     `json:"amount"`
	Fee      int64     `json:"fee"`
}

func (e *WinningsRedeemed) EventType() Type    { return TypeWinningsRedeemed }
func (e *WinningsRedeemed) MarketRef() *uint64 { return &e.MarketID }

// UnmatchedReclaimed is emitted when resting escrow is refunded after
// market resolution.
type UnmatchedReclaimed struct {
	MarketID uint64    `json:"market_id"`
	Owner    uuid.UUID `json:"owner"`
	Amount   int64     `json:"amount"`
}

func (e *UnmatchedReclaimed) EventType() Type    { return TypeUnmatchedReclaimed }
func (e *UnmatchedReclaimed) MarketRef() *uint64 { return &e.MarketID }
