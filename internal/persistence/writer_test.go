package persistence

import (
	"context"
	"testing"
	"time"

	"FanPredix/internal/event"
	"FanPredix/internal/testutil"

	"github.com/google/uuid"
)

func TestEventLogRoundTrip(t *testing.T) {
	testutil.RequireIntegration(t)
	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	if err := NewMigrator(db, "../../migrations").Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	marketID := uint64(1)
	writer := NewEventLogWriter(db)
	rows := []EventRow{
		RowFromEnvelope(&event.Envelope{
			Sequence:  0,
			Type:      event.TypeMarketCreated,
			MarketID:  &marketID,
			Timestamp: time.Now().UTC(),
			Payload: &event.MarketCreated{
				MarketID: marketID,
				TeamID:   1,
				Title:    "Derby",
				Outcomes: []string{"home", "away"},
			},
		}),
		RowFromEnvelope(&event.Envelope{
			Sequence:  1,
			Type:      event.TypeOrderPlaced,
			MarketID:  &marketID,
			Timestamp: time.Now().UTC(),
			Payload: &event.OrderPlaced{
				OrderID:  1,
				MarketID: marketID,
				Side:     "back",
				Owner:    uuid.New(),
				Stake:    10_000_000,
				Odds:     1200,
			},
		}),
	}

	write := func() {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin: %v", err)
		}
		if err := writer.WriteEventBatch(ctx, tx, rows); err != nil {
			tx.Rollback()
			t.Fatalf("write batch: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}

	write()
	write() // Idempotent on sequence: the replay must not duplicate rows.

	var count int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_log.events WHERE market_id = $1`, marketID,
	).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}

	var eventType string
	if err := db.QueryRowContext(ctx,
		`SELECT event_type FROM event_log.events WHERE sequence = 1`,
	).Scan(&eventType); err != nil {
		t.Fatalf("select: %v", err)
	}
	if eventType != "OrderPlaced" {
		t.Fatalf("event_type = %q, want OrderPlaced", eventType)
	}
}
