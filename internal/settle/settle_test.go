package settle_test

import (
	"FanPredix/internal/book"
	"FanPredix/internal/settle"
	"errors"
	"testing"

	"github.com/google/uuid"
)

const base = 1000

func TestStore_RecordProducesPositionPair(t *testing.T) {
	s := settle.NewStore()
	backer := uuid.New()
	layer := uuid.New()

	s.Record(1, 0, backer, layer, book.Match{Amount: 100, Odds: 1200, Liability: 20})

	backPos := s.ByOwner(backer, 1)
	if len(backPos) != 1 {
		t.Fatalf("back positions: got %d", len(backPos))
	}
	if backPos[0].Side != book.SideBack || backPos[0].MatchedAmount != 100 || backPos[0].Odds != 1200 {
		t.Errorf("back position: %+v", backPos[0])
	}
	if backPos[0].Liability != 0 {
		t.Errorf("back position carries no liability: %+v", backPos[0])
	}

	layPos := s.ByOwner(layer, 1)
	if len(layPos) != 1 {
		t.Fatalf("lay positions: got %d", len(layPos))
	}
	if layPos[0].Side != book.SideLay || layPos[0].Liability != 20 {
		t.Errorf("lay position: %+v", layPos[0])
	}
}

func TestComputePayout_BackWins(t *testing.T) {
	positions := []settle.Position{
		{Side: book.SideBack, OutcomeIndex: 0, MatchedAmount: 100_000_000, Odds: 1200},
	}
	p := settle.ComputePayout(positions, 0, base)
	if p.Gross != 120_000_000 {
		t.Errorf("gross: got %d, want 120000000", p.Gross)
	}
	if p.Profit != 20_000_000 {
		t.Errorf("profit: got %d, want 20000000", p.Profit)
	}
}

func TestComputePayout_BackLoses(t *testing.T) {
	positions := []settle.Position{
		{Side: book.SideBack, OutcomeIndex: 0, MatchedAmount: 100, Odds: 1200},
	}
	p := settle.ComputePayout(positions, 1, base)
	if p.Gross != 0 || p.Profit != 0 {
		t.Errorf("losing back must pay nothing: %+v", p)
	}
}

func TestComputePayout_LayWinsWhenOutcomeLoses(t *testing.T) {
	positions := []settle.Position{
		{Side: book.SideLay, OutcomeIndex: 0, MatchedAmount: 100, Odds: 1200, Liability: 20},
	}
	// Outcome 1 won, so laying outcome 0 pays: liability back plus the
	// matched back stake as profit.
	p := settle.ComputePayout(positions, 1, base)
	if p.Gross != 120 {
		t.Errorf("gross: got %d, want 120", p.Gross)
	}
	if p.Profit != 100 {
		t.Errorf("profit: got %d, want 100", p.Profit)
	}

	// And pays nothing when its outcome won.
	p = settle.ComputePayout(positions, 0, base)
	if p.Gross != 0 {
		t.Errorf("lay on winning outcome must pay nothing: %+v", p)
	}
}

func TestComputePayout_PairConservation(t *testing.T) {
	// For any matched pair the winner's gross equals exactly the combined
	// escrow of the match (back stake + lay liability), whichever side wins.
	for _, o := range []int64{1000, 1150, 1200, 1999, 2500} {
		amount := int64(99_999_937)
		m := book.Match{Amount: amount, Odds: o}
		m.Liability = amount * (o - base) / base

		backWin := settle.ComputePayout([]settle.Position{
			{Side: book.SideBack, OutcomeIndex: 0, MatchedAmount: amount, Odds: o},
		}, 0, base)
		layWin := settle.ComputePayout([]settle.Position{
			{Side: book.SideLay, OutcomeIndex: 0, MatchedAmount: amount, Odds: o, Liability: m.Liability},
		}, 1, base)

		escrowed := amount + m.Liability
		if backWin.Gross != escrowed {
			t.Errorf("odds %d: back win gross %d != escrowed %d", o, backWin.Gross, escrowed)
		}
		if layWin.Gross != escrowed {
			t.Errorf("odds %d: lay win gross %d != escrowed %d", o, layWin.Gross, escrowed)
		}
	}
}

func TestRedemptionLedger_AtMostOnce(t *testing.T) {
	rl := settle.NewRedemptionLedger()
	owner := uuid.New()

	if rl.Claimed(owner, 1) {
		t.Error("fresh ledger reports claimed")
	}
	if err := rl.MarkClaimed(owner, 1); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if !rl.Claimed(owner, 1) {
		t.Error("claim not recorded")
	}
	if err := rl.MarkClaimed(owner, 1); !errors.Is(err, settle.ErrAlreadyClaimed) {
		t.Errorf("second claim: got %v, want ErrAlreadyClaimed", err)
	}

	// Other markets and owners are unaffected.
	if rl.Claimed(owner, 2) || rl.Claimed(uuid.New(), 1) {
		t.Error("claim leaked across keys")
	}
}
