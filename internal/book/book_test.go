package book_test

import (
	"FanPredix/internal/book"
	"errors"
	"testing"

	"github.com/google/uuid"
)

const base = 1000

// place builds the plan for an order and commits it, the way the engine
// drives the book.
func place(ob *book.OrderBook, owner uuid.UUID, side book.Side, stake, odds int64) (*book.Order, []book.Match) {
	plan := ob.BuildPlan(1, 0, side, stake, odds)
	return ob.Commit(1, 0, side, owner, stake, odds, plan)
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name     string
		incoming book.Side
		in, rest int64
		want     bool
	}{
		{"back accepts lower lay odds", book.SideBack, 1500, 1200, true},
		{"back accepts equal odds", book.SideBack, 1500, 1500, true},
		{"back rejects higher lay odds", book.SideBack, 1500, 1600, false},
		{"lay accepts higher back odds", book.SideLay, 1200, 1500, true},
		{"lay accepts equal odds", book.SideLay, 1200, 1200, true},
		{"lay rejects lower back odds", book.SideLay, 1200, 1100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := book.Compatible(tt.incoming, tt.in, tt.rest); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlace_NoMatchRestsOnBook(t *testing.T) {
	ob := book.NewOrderBook(base)
	o, matches := place(ob, uuid.New(), book.SideBack, 100, 1200)

	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
	if o.Status != book.StatusOpen || o.Remaining != 100 {
		t.Errorf("order should rest open with full remaining: %+v", o)
	}
	if got := len(ob.Orders(1, 0, book.SideBack)); got != 1 {
		t.Errorf("back queue length: got %d, want 1", got)
	}
	if o.Escrow != 100 {
		t.Errorf("back escrow: got %d, want full stake 100", o.Escrow)
	}
}

func TestPlace_FullMatch(t *testing.T) {
	ob := book.NewOrderBook(base)
	backer := uuid.New()
	layer := uuid.New()

	backOrder, _ := place(ob, backer, book.SideBack, 100, 1200)
	layOrder, matches := place(ob, layer, book.SideLay, 100, 1200)

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.BackOrderID != backOrder.ID || m.LayOrderID != layOrder.ID {
		t.Errorf("match ids: %+v", m)
	}
	if m.Amount != 100 || m.Odds != 1200 || m.Liability != 20 {
		t.Errorf("match terms: %+v", m)
	}

	if backOrder.Status != book.StatusFilled || layOrder.Status != book.StatusFilled {
		t.Errorf("both orders should be filled: %v / %v", backOrder.Status, layOrder.Status)
	}
	if len(ob.Orders(1, 0, book.SideBack)) != 0 || len(ob.Orders(1, 0, book.SideLay)) != 0 {
		t.Error("queues should be empty after full match")
	}
	if backOrder.EscrowRemaining != 0 || layOrder.EscrowRemaining != 0 {
		t.Errorf("escrow fully consumed: back=%d lay=%d", backOrder.EscrowRemaining, layOrder.EscrowRemaining)
	}
}

func TestPlace_PartialFill(t *testing.T) {
	ob := book.NewOrderBook(base)

	// Resting lay for 60, incoming back for 100 -> match 60, rest 40.
	layOrder, _ := place(ob, uuid.New(), book.SideLay, 60, 1200)
	backOrder, matches := place(ob, uuid.New(), book.SideBack, 100, 1200)

	if len(matches) != 1 || matches[0].Amount != 60 {
		t.Fatalf("expected one match of 60, got %+v", matches)
	}
	if layOrder.Status != book.StatusFilled {
		t.Errorf("resting lay should be filled: %v", layOrder.Status)
	}
	if backOrder.Status != book.StatusPartiallyFilled || backOrder.Remaining != 40 {
		t.Errorf("incoming back should rest 40: %+v", backOrder)
	}

	queue := ob.Orders(1, 0, book.SideBack)
	if len(queue) != 1 || queue[0].ID != backOrder.ID {
		t.Errorf("back remainder should rest on book: %+v", queue)
	}
	// Back escrow is the full stake regardless of fill ratio; 60 consumed.
	if backOrder.Escrow != 100 || backOrder.EscrowRemaining != 40 {
		t.Errorf("back escrow: %d remaining of %d", backOrder.EscrowRemaining, backOrder.Escrow)
	}
}

func TestPlace_MatchesInArrivalOrderNotBestPrice(t *testing.T) {
	ob := book.NewOrderBook(base)

	// Older lay quotes higher odds than the newer one; arrival order wins
	// over price priority.
	first, _ := place(ob, uuid.New(), book.SideLay, 50, 1400)
	second, _ := place(ob, uuid.New(), book.SideLay, 50, 1100)

	_, matches := place(ob, uuid.New(), book.SideBack, 80, 1500)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].LayOrderID != first.ID || matches[0].Amount != 50 || matches[0].Odds != 1400 {
		t.Errorf("first match must consume the oldest resting order: %+v", matches[0])
	}
	if matches[1].LayOrderID != second.ID || matches[1].Amount != 30 || matches[1].Odds != 1100 {
		t.Errorf("second match terms: %+v", matches[1])
	}
}

func TestPlace_SkipsIncompatibleCandidates(t *testing.T) {
	ob := book.NewOrderBook(base)

	tooHigh, _ := place(ob, uuid.New(), book.SideLay, 50, 2000)
	ok, _ := place(ob, uuid.New(), book.SideLay, 50, 1200)

	_, matches := place(ob, uuid.New(), book.SideBack, 50, 1300)
	if len(matches) != 1 || matches[0].LayOrderID != ok.ID {
		t.Fatalf("back@1300 must skip lay@2000 and match lay@1200: %+v", matches)
	}
	if tooHigh.Remaining != 50 {
		t.Errorf("incompatible order touched: %+v", tooHigh)
	}
}

func TestPlace_PositionsUseRestingOdds(t *testing.T) {
	ob := book.NewOrderBook(base)

	place(ob, uuid.New(), book.SideBack, 100, 1800)
	_, matches := place(ob, uuid.New(), book.SideLay, 100, 1200)

	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Odds != 1800 {
		t.Errorf("match must execute at resting back quote 1800, got %d", matches[0].Odds)
	}
}

func TestPlan_IncomingLayEscrowCoversMatchedOdds(t *testing.T) {
	ob := book.NewOrderBook(base)

	// Resting back quotes 1800; incoming lay quotes 1200 and matches 60 at
	// the resting quote. The escrow must cover liability at 1800 for the
	// matched part and at 1200 for the remainder.
	place(ob, uuid.New(), book.SideBack, 60, 1800)
	plan := ob.BuildPlan(1, 0, book.SideLay, 100, 1200)

	wantEscrow := int64(60*800/1000 + 40*200/1000) // 48 + 8
	if plan.Escrow != wantEscrow {
		t.Errorf("lay escrow: got %d, want %d", plan.Escrow, wantEscrow)
	}

	layOrder, _ := ob.Commit(1, 0, book.SideLay, uuid.New(), 100, 1200, plan)
	if layOrder.EscrowRemaining != 8 {
		t.Errorf("remainder escrow: got %d, want 8", layOrder.EscrowRemaining)
	}
}

func TestCancel_OnlyUnmatchedOrders(t *testing.T) {
	ob := book.NewOrderBook(base)
	owner := uuid.New()

	o, _ := place(ob, owner, book.SideBack, 100, 1200)
	refund, err := ob.Cancel(o.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if refund != 100 {
		t.Errorf("refund: got %d, want full stake 100", refund)
	}
	if o.Status != book.StatusCancelled {
		t.Errorf("status: got %v", o.Status)
	}
	if len(ob.Orders(1, 0, book.SideBack)) != 0 {
		t.Error("cancelled order still on book")
	}

	// Cancelled orders stay done.
	if _, err := ob.Cancel(o.ID); !errors.Is(err, book.ErrNotCancellable) {
		t.Errorf("double cancel: got %v", err)
	}
}

func TestCancel_PartiallyFilledRejected(t *testing.T) {
	ob := book.NewOrderBook(base)

	place(ob, uuid.New(), book.SideLay, 60, 1200)
	backOrder, _ := place(ob, uuid.New(), book.SideBack, 100, 1200)

	if _, err := ob.Cancel(backOrder.ID); !errors.Is(err, book.ErrNotCancellable) {
		t.Errorf("partially filled cancel: got %v", err)
	}
}

func TestCancel_MissingOrder(t *testing.T) {
	ob := book.NewOrderBook(base)
	if _, err := ob.Cancel(42); !errors.Is(err, book.ErrOrderNotFound) {
		t.Errorf("got %v, want ErrOrderNotFound", err)
	}
}

func TestReclaimEscrow(t *testing.T) {
	ob := book.NewOrderBook(base)
	owner := uuid.New()

	// Partially filled back: 60 matched, 40 resting.
	place(ob, uuid.New(), book.SideLay, 60, 1200)
	place(ob, owner, book.SideBack, 100, 1200)
	// Untouched lay: liability 30 escrowed.
	place(ob, owner, book.SideLay, 150, 1200)

	// The peek must agree with the drain and must not mutate.
	if got := ob.ReclaimableEscrow(1, owner); got != 70 {
		t.Errorf("reclaimable: got %d, want 70", got)
	}
	got := ob.ReclaimEscrow(1, owner)
	if got != 40+30 {
		t.Errorf("reclaim: got %d, want 70", got)
	}
	// Second reclaim finds nothing.
	if got := ob.ReclaimEscrow(1, owner); got != 0 {
		t.Errorf("second reclaim: got %d, want 0", got)
	}
}

func TestReclaimEscrow_FilledLayRoundingResidue(t *testing.T) {
	ob := book.NewOrderBook(base)
	layer := uuid.New()

	// Lay 10 @ 1333 escrows floor(10*333/1000) = 3. Two backs of 5 each
	// consume floor(5*333/1000) = 1, so the filled lay keeps 1 unit of
	// escrow that no match ever used. It must stay reclaimable.
	layOrder, _ := place(ob, layer, book.SideLay, 10, 1333)
	place(ob, uuid.New(), book.SideBack, 5, 1333)
	place(ob, uuid.New(), book.SideBack, 5, 1333)

	if layOrder.Status != book.StatusFilled {
		t.Fatalf("lay status: got %v, want filled", layOrder.Status)
	}
	if layOrder.EscrowRemaining != 1 {
		t.Fatalf("escrow remaining: got %d, want 1", layOrder.EscrowRemaining)
	}

	if got := ob.ReclaimableEscrow(1, layer); got != 1 {
		t.Errorf("reclaimable: got %d, want 1", got)
	}
	if got := ob.ReclaimEscrow(1, layer); got != 1 {
		t.Errorf("reclaim: got %d, want 1", got)
	}
	if got := ob.ReclaimEscrow(1, layer); got != 0 {
		t.Errorf("second reclaim: got %d, want 0", got)
	}
}

func TestRestingCount(t *testing.T) {
	ob := book.NewOrderBook(base)
	if got := ob.RestingCount(); got != 0 {
		t.Fatalf("empty book: got %d resting", got)
	}

	// Back @1200 and lay @1500 are incompatible, so both rest.
	o, _ := place(ob, uuid.New(), book.SideBack, 100, 1200)
	place(ob, uuid.New(), book.SideLay, 100, 1500)
	if got := ob.RestingCount(); got != 2 {
		t.Fatalf("got %d resting, want 2", got)
	}

	if _, err := ob.Cancel(o.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := ob.RestingCount(); got != 1 {
		t.Fatalf("after cancel: got %d resting, want 1", got)
	}
}
