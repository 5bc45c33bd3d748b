package engine

import (
	"fmt"
	"time"

	"FanPredix/internal/auth"
	"FanPredix/internal/book"
	"FanPredix/internal/event"
	"FanPredix/internal/market"
	"FanPredix/internal/observability"
	"FanPredix/internal/odds"
	"FanPredix/internal/registry"
	"FanPredix/internal/settle"
	"FanPredix/internal/token"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Params are the immutable exchange parameters fixed at construction.
type Params struct {
	// PlatformFeeBps is the fee in basis points taken on redemption.
	PlatformFeeBps int64
	// MinBetAmount is the smallest accepted stake, in token smallest units.
	MinBetAmount int64
	// OddsBase is the fixed-point denominator for odds; OddsBase means 1.0x.
	OddsBase int64
	// Treasury receives platform fees.
	Treasury uuid.UUID
	// FeeOnGross charges the fee on the gross payout instead of profit only.
	FeeOnGross bool
}

func (p Params) Validate() error {
	if p.PlatformFeeBps < 0 || p.PlatformFeeBps >= odds.FeeDenominator {
		return fmt.Errorf("platform fee %d bps out of range [0, %d)", p.PlatformFeeBps, odds.FeeDenominator)
	}
	if p.MinBetAmount <= 0 {
		return fmt.Errorf("min bet amount must be positive, got %d", p.MinBetAmount)
	}
	if p.OddsBase <= 0 {
		return fmt.Errorf("odds base must be positive, got %d", p.OddsBase)
	}
	if p.Treasury == uuid.Nil {
		return fmt.Errorf("treasury identity is required")
	}
	return nil
}

// Output carries one sequenced event out of the engine.
type Output struct {
	Envelope *event.Envelope
}

// Exchange is the deterministic core of the prediction market. It owns all
// trading state and must be driven from a single goroutine; it never reads
// the wall clock, every operation takes the caller's `now`. Events go to
// persistChan with backpressure (a full persistence pipeline stalls the
// engine rather than losing audit data) and to projectionChan best-effort
// (a slow subscriber drops events, never blocks trading).
type Exchange struct {
	params Params
	roles  auth.RoleChecker
	tokens token.Ledger

	teams       *registry.Registry
	markets     *market.Manager
	book        *book.OrderBook
	positions   *settle.Store
	redemptions *settle.RedemptionLedger

	// escrowHeld tracks, per market, tokens debited into escrow and not yet
	// paid back out. It must never go negative.
	escrowHeld map[uint64]int64

	sequence       int64
	persistChan    chan<- Output
	projectionChan chan<- Output

	logger  zerolog.Logger
	metrics *observability.Metrics
}

func NewExchange(
	params Params,
	roles auth.RoleChecker,
	tokens token.Ledger,
	persistChan chan<- Output,
	projectionChan chan<- Output,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) (*Exchange, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid exchange params: %w", err)
	}
	return &Exchange{
		params:         params,
		roles:          roles,
		tokens:         tokens,
		teams:          registry.NewRegistry(),
		markets:        market.NewManager(),
		book:           book.NewOrderBook(params.OddsBase),
		positions:      settle.NewStore(),
		redemptions:    settle.NewRedemptionLedger(),
		escrowHeld:     make(map[uint64]int64),
		persistChan:    persistChan,
		projectionChan: projectionChan,
		logger:         logger,
		metrics:        metrics,
	}, nil
}

// Params returns the exchange parameters.
func (e *Exchange) Params() Params { return e.params }

// Sequence returns the next event sequence number to be assigned.
func (e *Exchange) Sequence() int64 { return e.sequence }

// AddTeam registers a team for a manager identity. Admin only.
func (e *Exchange) AddTeam(admin, manager uuid.UUID, name, tokenRef string, now time.Time) (*registry.Team, error) {
	defer e.observe("add_team", time.Now())

	if !e.roles.HasRole(admin, auth.RoleAdmin) {
		return nil, e.reject("add_team", ErrUnauthorized)
	}
	team, err := e.teams.Add(manager, name, tokenRef)
	if err != nil {
		return nil, e.reject("add_team", err)
	}

	e.applied("add_team")
	e.emit(&event.TeamAdded{
		TeamID:   team.ID,
		Manager:  team.Manager,
		Name:     team.Name,
		TokenRef: team.TokenRef,
	}, now)
	return team, nil
}

// UpdateTeam mutates the caller's own team. Empty fields are left unchanged.
// Markets already created keep the token reference they were created with.
func (e *Exchange) UpdateTeam(caller uuid.UUID, name, tokenRef string, now time.Time) (*registry.Team, error) {
	defer e.observe("update_team", time.Now())

	team, err := e.teams.Update(caller, name, tokenRef)
	if err != nil {
		// Only a team's own manager may touch it; an unknown manager is
		// indistinguishable from a foreign one.
		return nil, e.reject("update_team", ErrUnauthorized)
	}

	e.applied("update_team")
	e.emit(&event.TeamUpdated{
		TeamID:   team.ID,
		Name:     team.Name,
		TokenRef: team.TokenRef,
	}, now)
	return team, nil
}

// CreateMarket opens a new market under the caller's team. The market
// snapshots the team's current token reference.
func (e *Exchange) CreateMarket(
	caller uuid.UUID,
	category, title, description string,
	outcomes []string,
	startTime, endTime time.Time,
	now time.Time,
) (*market.Market, error) {
	defer e.observe("create_market", time.Now())

	if !e.roles.HasRole(caller, auth.RoleTeamManager) {
		return nil, e.reject("create_market", ErrUnauthorized)
	}
	team, err := e.teams.ByManager(caller)
	if err != nil {
		return nil, e.reject("create_market", ErrUnauthorized)
	}

	m, err := e.markets.Create(team.ID, caller, team.TokenRef, category, title, description, outcomes, startTime, endTime, now)
	if err != nil {
		return nil, e.reject("create_market", err)
	}

	e.applied("create_market")
	e.emit(&event.MarketCreated{
		MarketID: m.ID,
		TeamID:   m.TeamID,
		Title:    m.Title,
		Outcomes: m.Outcomes,
		StartUs:  m.StartTime.UnixMicro(),
		EndUs:    m.EndTime.UnixMicro(),
	}, now)
	return m, nil
}

// PlaceOrder validates, escrows, and matches a back or lay order in one
// atomic step. The escrow transfer happens strictly before any book
// mutation: if the token ledger rejects it, no order exists and no match
// occurred. Matches execute at the resting order's odds, oldest first.
func (e *Exchange) PlaceOrder(
	caller uuid.UUID,
	marketID uint64,
	outcomeIndex int,
	side book.Side,
	stake, oddsVal int64,
	now time.Time,
) (*book.Order, []book.Match, error) {
	defer e.observe("place_order", time.Now())

	m, err := e.markets.GetOpen(marketID, now)
	if err != nil {
		return nil, nil, e.reject("place_order", err)
	}
	if !m.ValidOutcome(outcomeIndex) {
		return nil, nil, e.reject("place_order", market.ErrInvalidOutcomeIndex)
	}
	if stake < e.params.MinBetAmount {
		return nil, nil, e.reject("place_order", book.ErrInvalidStake)
	}
	if !odds.Valid(oddsVal, e.params.OddsBase) {
		return nil, nil, e.reject("place_order", book.ErrInvalidOdds)
	}

	plan := e.book.BuildPlan(marketID, outcomeIndex, side, stake, oddsVal)
	if plan.Escrow > 0 {
		if err := e.tokens.TransferIn(m.TokenRef, caller, plan.Escrow); err != nil {
			return nil, nil, e.reject("place_order", fmt.Errorf("%w: %w", ErrEscrowFailed, err))
		}
	}

	order, matches := e.book.Commit(marketID, outcomeIndex, side, caller, stake, oddsVal, plan)
	e.escrowHeld[marketID] += plan.Escrow

	for _, match := range matches {
		backOwner := e.mustOrder(match.BackOrderID).Owner
		layOwner := e.mustOrder(match.LayOrderID).Owner
		e.positions.Record(marketID, outcomeIndex, backOwner, layOwner, match)
	}

	e.applied("place_order")
	if e.metrics != nil {
		e.metrics.OrdersPlaced.WithLabelValues(side.String()).Inc()
		e.metrics.EscrowHeld.WithLabelValues(fmt.Sprint(marketID)).Set(float64(e.escrowHeld[marketID]))
		e.metrics.OrdersResting.Set(float64(e.book.RestingCount()))
		for _, match := range matches {
			e.metrics.OrdersMatched.Inc()
			e.metrics.MatchedVolume.Add(float64(match.Amount))
		}
	}

	e.emit(&event.OrderPlaced{
		OrderID:      order.ID,
		MarketID:     marketID,
		OutcomeIndex: outcomeIndex,
		Side:         side.String(),
		Owner:        caller,
		Stake:        stake,
		Odds:         oddsVal,
		Remaining:    order.Remaining,
		Escrow:       order.Escrow,
	}, now)
	for _, match := range matches {
		e.emit(&event.OrdersMatched{
			MarketID:    marketID,
			BackOrderID: match.BackOrderID,
			LayOrderID:  match.LayOrderID,
			Amount:      match.Amount,
			Odds:        match.Odds,
		}, now)
	}
	return order, matches, nil
}

// CancelOrder withdraws a fully-unmatched order and refunds its escrow.
// Partially filled orders cannot be cancelled. The refund transfer happens
// before the book mutation so a ledger failure leaves the order resting.
func (e *Exchange) CancelOrder(caller uuid.UUID, orderID uint64, now time.Time) (int64, error) {
	defer e.observe("cancel_order", time.Now())

	order, err := e.book.Get(orderID)
	if err != nil {
		return 0, e.reject("cancel_order", err)
	}
	if order.Owner != caller {
		return 0, e.reject("cancel_order", ErrUnauthorized)
	}
	if order.Status != book.StatusOpen {
		return 0, e.reject("cancel_order", book.ErrNotCancellable)
	}

	m, err := e.markets.Get(order.MarketID)
	if err != nil {
		return 0, e.reject("cancel_order", err)
	}

	refund := order.EscrowRemaining
	if refund > 0 {
		if err := e.tokens.TransferOut(m.TokenRef, caller, refund); err != nil {
			return 0, e.reject("cancel_order", fmt.Errorf("%w: %w", ErrPayoutFailed, err))
		}
	}
	if _, err := e.book.Cancel(orderID); err != nil {
		// Status was checked above; the book cannot refuse now.
		panic(fmt.Sprintf("FATAL: cancel rejected after refund paid: order=%d err=%v", orderID, err))
	}
	e.debitEscrow(order.MarketID, refund)

	e.applied("cancel_order")
	if e.metrics != nil {
		e.metrics.EscrowHeld.WithLabelValues(fmt.Sprint(order.MarketID)).Set(float64(e.escrowHeld[order.MarketID]))
		e.metrics.OrdersResting.Set(float64(e.book.RestingCount()))
	}
	e.emit(&event.OrderCancelled{
		OrderID:  orderID,
		MarketID: order.MarketID,
		Owner:    caller,
		Refund:   refund,
	}, now)
	return refund, nil
}

// ResolveMarket records the winning outcome. Only the market's own manager
// may resolve, only after the trading window ended, exactly once.
func (e *Exchange) ResolveMarket(caller uuid.UUID, marketID uint64, winningOutcome int, now time.Time) error {
	defer e.observe("resolve_market", time.Now())

	m, err := e.markets.Get(marketID)
	if err != nil {
		return e.reject("resolve_market", err)
	}
	if m.Manager != caller {
		return e.reject("resolve_market", ErrUnauthorized)
	}
	if _, err := e.markets.Resolve(marketID, winningOutcome, now); err != nil {
		return e.reject("resolve_market", err)
	}

	e.applied("resolve_market")
	if e.metrics != nil {
		e.metrics.MarketsResolved.Inc()
	}
	e.emit(&event.MarketResolved{
		MarketID:       marketID,
		WinningOutcome: winningOutcome,
	}, now)
	return nil
}

// HasClaimableWinnings reports whether RedeemWinnings would pay the owner
// anything right now. Read-only.
func (e *Exchange) HasClaimableWinnings(owner uuid.UUID, marketID uint64, now time.Time) bool {
	m, err := e.markets.Get(marketID)
	if err != nil || m.State(now) != market.StateResolved {
		return false
	}
	if e.redemptions.Claimed(owner, marketID) {
		return false
	}
	payout := settle.ComputePayout(e.positions.ByOwner(owner, marketID), m.WinningOutcome, e.params.OddsBase)
	return payout.Gross > 0
}

// RedeemWinnings settles all of the caller's winning positions in a
// resolved market in one shot and returns the net payout. The platform fee
// goes to the treasury first; if the net transfer then fails the fee is
// clawed back so the ledger nets to zero. At most one redemption per
// (owner, market) ever succeeds.
func (e *Exchange) RedeemWinnings(caller uuid.UUID, marketID uint64, now time.Time) (int64, error) {
	defer e.observe("redeem", time.Now())

	m, err := e.markets.Get(marketID)
	if err != nil {
		return 0, e.reject("redeem", err)
	}
	if m.State(now) != market.StateResolved {
		return 0, e.reject("redeem", market.ErrNotResolved)
	}
	if e.redemptions.Claimed(caller, marketID) {
		return 0, e.reject("redeem", settle.ErrAlreadyClaimed)
	}

	payout := settle.ComputePayout(e.positions.ByOwner(caller, marketID), m.WinningOutcome, e.params.OddsBase)
	if payout.Gross == 0 {
		return 0, e.reject("redeem", settle.ErrNothingToRedeem)
	}

	feeBase := payout.Profit
	if e.params.FeeOnGross {
		feeBase = payout.Gross
	}
	fee := odds.Fee(feeBase, e.params.PlatformFeeBps)
	net := payout.Gross - fee

	if fee > 0 {
		if err := e.tokens.TransferOut(m.TokenRef, e.params.Treasury, fee); err != nil {
			return 0, e.reject("redeem", fmt.Errorf("%w: %w", ErrPayoutFailed, err))
		}
	}
	if err := e.tokens.TransferOut(m.TokenRef, caller, net); err != nil {
		if fee > 0 {
			if cerr := e.tokens.TransferIn(m.TokenRef, e.params.Treasury, fee); cerr != nil {
				panic(fmt.Sprintf("FATAL: fee clawback failed, ledger out of balance: market=%d fee=%d err=%v", marketID, fee, cerr))
			}
		}
		return 0, e.reject("redeem", fmt.Errorf("%w: %w", ErrPayoutFailed, err))
	}

	if err := e.redemptions.MarkClaimed(caller, marketID); err != nil {
		panic(fmt.Sprintf("FATAL: double redemption slipped through: owner=%s market=%d", caller, marketID))
	}
	e.debitEscrow(marketID, payout.Gross)

	e.applied("redeem")
	if e.metrics != nil {
		e.metrics.RedeemedGross.Add(float64(payout.Gross))
		e.metrics.FeesCollected.Add(float64(fee))
		e.metrics.EscrowHeld.WithLabelValues(fmt.Sprint(marketID)).Set(float64(e.escrowHeld[marketID]))
	}
	e.emit(&event.WinningsRedeemed{
		MarketID: marketID,
		Owner:    caller,
		Amount:   net,
		Fee:      fee,
	}, now)

	e.logger.Info().
		Uint64("market_id", marketID).
		Str("owner", caller.String()).
		Int64("gross", payout.Gross).
		Int64("fee", fee).
		Int64("net", net).
		Msg("winnings redeemed")
	return net, nil
}

// ReclaimUnmatched refunds the caller's unconsumed resting escrow in a
// resolved market. Resting remainders can never match once the market is
// resolved, so the tokens are simply returned, fee-free.
func (e *Exchange) ReclaimUnmatched(caller uuid.UUID, marketID uint64, now time.Time) (int64, error) {
	defer e.observe("reclaim", time.Now())

	m, err := e.markets.Get(marketID)
	if err != nil {
		return 0, e.reject("reclaim", err)
	}
	if m.State(now) != market.StateResolved {
		return 0, e.reject("reclaim", market.ErrNotResolved)
	}

	amount := e.book.ReclaimableEscrow(marketID, caller)
	if amount == 0 {
		return 0, e.reject("reclaim", settle.ErrNothingToReclaim)
	}
	if err := e.tokens.TransferOut(m.TokenRef, caller, amount); err != nil {
		return 0, e.reject("reclaim", fmt.Errorf("%w: %w", ErrPayoutFailed, err))
	}
	if drained := e.book.ReclaimEscrow(marketID, caller); drained != amount {
		panic(fmt.Sprintf("FATAL: reclaim drained %d after funding %d: market=%d", drained, amount, marketID))
	}
	e.debitEscrow(marketID, amount)

	e.applied("reclaim")
	e.emit(&event.UnmatchedReclaimed{
		MarketID: marketID,
		Owner:    caller,
		Amount:   amount,
	}, now)
	return amount, nil
}

// --- Read surface ---

// Team returns the team registered for a manager identity.
func (e *Exchange) Team(manager uuid.UUID) (*registry.Team, error) {
	return e.teams.ByManager(manager)
}

// Market returns a market by id.
func (e *Exchange) Market(id uint64) (*market.Market, error) {
	return e.markets.Get(id)
}

// Order returns an order by id.
func (e *Exchange) Order(id uint64) (*book.Order, error) {
	return e.book.Get(id)
}

// RestingOrders returns the live queue for one (market, outcome, side) in
// arrival order.
func (e *Exchange) RestingOrders(marketID uint64, outcome int, side book.Side) []*book.Order {
	return e.book.Orders(marketID, outcome, side)
}

// Positions returns an owner's matched positions in a market.
func (e *Exchange) Positions(owner uuid.UUID, marketID uint64) []settle.Position {
	return e.positions.ByOwner(owner, marketID)
}

// EscrowHeld returns the tokens currently held in escrow for a market.
func (e *Exchange) EscrowHeld(marketID uint64) int64 {
	return e.escrowHeld[marketID]
}

// --- Internals ---

func (e *Exchange) mustOrder(id uint64) *book.Order {
	o, err := e.book.Get(id)
	if err != nil {
		panic(fmt.Sprintf("FATAL: committed match references unknown order %d", id))
	}
	return o
}

// debitEscrow reduces a market's held escrow, enforcing the conservation
// invariant that payouts never exceed what was escrowed.
func (e *Exchange) debitEscrow(marketID uint64, amount int64) {
	e.escrowHeld[marketID] -= amount
	if e.escrowHeld[marketID] < 0 {
		panic(fmt.Sprintf("FATAL: market %d escrow went negative (%d), conservation violated",
			marketID, e.escrowHeld[marketID]))
	}
}

func (e *Exchange) emit(payload event.Payload, now time.Time) {
	env := &event.Envelope{
		Sequence:  e.sequence,
		Type:      payload.EventType(),
		MarketID:  payload.MarketRef(),
		Timestamp: now,
		Payload:   payload,
	}
	e.sequence++
	if e.metrics != nil {
		e.metrics.Sequence.Set(float64(e.sequence))
	}

	out := Output{Envelope: env}
	if e.persistChan != nil {
		e.persistChan <- out
	}
	if e.projectionChan != nil {
		select {
		case e.projectionChan <- out:
		default:
			if e.metrics != nil {
				e.metrics.PublishDrops.Inc()
			}
			e.logger.Warn().
				Int64("sequence", env.Sequence).
				Str("type", env.Type.String()).
				Msg("projection channel full, event dropped")
		}
	}
}

func (e *Exchange) applied(op string) {
	if e.metrics != nil {
		e.metrics.OpsApplied.WithLabelValues(op).Inc()
	}
}

func (e *Exchange) reject(op string, err error) error {
	if e.metrics != nil {
		e.metrics.OpsRejected.WithLabelValues(op, rejectReason(err)).Inc()
	}
	e.logger.Debug().Str("op", op).Err(err).Msg("operation rejected")
	return err
}

func (e *Exchange) observe(op string, start time.Time) {
	if e.metrics != nil {
		e.metrics.OpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}
