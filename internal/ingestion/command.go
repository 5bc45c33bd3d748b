package ingestion

import (
	"time"

	"FanPredix/internal/book"
	"FanPredix/internal/engine"

	"github.com/google/uuid"
)

// Command is a typed, validated instruction for the exchange core. The
// ingestion shell parses raw NATS payloads into Commands and applies them
// on the single engine goroutine, supplying the shell's clock.
type Command interface {
	CommandName() string
	Apply(ex *engine.Exchange, now time.Time) error
}

// AddTeam registers a team. Admin-issued.
type AddTeam struct {
	Admin    uuid.UUID
	Manager  uuid.UUID
	Name     string
	TokenRef string
}

func (c *AddTeam) CommandName() string { return "add_team" }

func (c *AddTeam) Apply(ex *engine.Exchange, now time.Time) error {
	_, err := ex.AddTeam(c.Admin, c.Manager, c.Name, c.TokenRef, now)
	return err
}

// UpdateTeam mutates the caller's team.
type UpdateTeam struct {
	Caller   uuid.UUID
	Name     string
	TokenRef string
}

func (c *UpdateTeam) CommandName() string { return "update_team" }

func (c *UpdateTeam) Apply(ex *engine.Exchange, now time.Time) error {
	_, err := ex.UpdateTeam(c.Caller, c.Name, c.TokenRef, now)
	return err
}

// CreateMarket opens a market under the caller's team.
type CreateMarket struct {
	Caller      uuid.UUID
	Category    string
	Title       string
	Description string
	Outcomes    []string
	StartTime   time.Time
	EndTime     time.Time
}

func (c *CreateMarket) CommandName() string { return "create_market" }

func (c *CreateMarket) Apply(ex *engine.Exchange, now time.Time) error {
	_, err := ex.CreateMarket(c.Caller, c.Category, c.Title, c.Description,
		c.Outcomes, c.StartTime, c.EndTime, now)
	return err
}

// PlaceOrder submits a back or lay order.
type PlaceOrder struct {
	Caller       uuid.UUID
	MarketID     uint64
	OutcomeIndex int
	Side         book.Side
	Stake        int64
	Odds         int64
}

func (c *PlaceOrder) CommandName() string { return "place_order" }

func (c *PlaceOrder) Apply(ex *engine.Exchange, now time.Time) error {
	_, _, err := ex.PlaceOrder(c.Caller, c.MarketID, c.OutcomeIndex, c.Side, c.Stake, c.Odds, now)
	return err
}

// CancelOrder withdraws an unmatched order.
type CancelOrder struct {
	Caller  uuid.UUID
	OrderID uint64
}

func (c *CancelOrder) CommandName() string { return "cancel_order" }

func (c *CancelOrder) Apply(ex *engine.Exchange, now time.Time) error {
	_, err := ex.CancelOrder(c.Caller, c.OrderID, now)
	return err
}

// ResolveMarket records the winning outcome.
type ResolveMarket struct {
	Caller         uuid.UUID
	MarketID       uint64
	WinningOutcome int
}

func (c *ResolveMarket) CommandName() string { return "resolve_market" }

func (c *ResolveMarket) Apply(ex *engine.Exchange, now time.Time) error {
	return ex.ResolveMarket(c.Caller, c.MarketID, c.WinningOutcome, now)
}

// RedeemWinnings settles the caller's winning positions in a resolved market.
type RedeemWinnings struct {
	Caller   uuid.UUID
	MarketID uint64
}

func (c *RedeemWinnings) CommandName() string { return "redeem_winnings" }

func (c *RedeemWinnings) Apply(ex *engine.Exchange, now time.Time) error {
	_, err := ex.RedeemWinnings(c.Caller, c.MarketID, now)
	return err
}

// ReclaimUnmatched refunds the caller's resting escrow in a resolved market.
type ReclaimUnmatched struct {
	Caller   uuid.UUID
	MarketID uint64
}

func (c *ReclaimUnmatched) CommandName() string { return "reclaim_unmatched" }

func (c *ReclaimUnmatched) Apply(ex *engine.Exchange, now time.Time) error {
	_, err := ex.ReclaimUnmatched(c.Caller, c.MarketID, now)
	return err
}
