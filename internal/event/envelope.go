package event

import "time"

// Type discriminator for event payloads.
type Type int32

const (
	TypeUnknown Type = iota
	TypeTeamAdded
	TypeTeamUpdated
	TypeMarketCreated
	TypeOrderPlaced
	TypeOrdersMatched
	TypeOrderCancelled
	TypeMarketResolved
	TypeWinningsRedeemed
	TypeUnmatchedReclaimed
)

func (t Type) String() string {
	switch t {
	case TypeTeamAdded:
		return "TeamAdded"
	case TypeTeamUpdated:
		return "TeamUpdated"
	case TypeMarketCreated:
		return "MarketCreated"
	case TypeOrderPlaced:
		return "OrderPlaced"
	case TypeOrdersMatched:
		return "OrdersMatched"
	case TypeOrderCancelled:
		return "OrderCancelled"
	case TypeMarketResolved:
		return "MarketResolved"
	case TypeWinningsRedeemed:
		return "WinningsRedeemed"
	case TypeUnmatchedReclaimed:
		return "UnmatchedReclaimed"
	default:
		return "Unknown"
	}
}

// Envelope wraps every event the engine emits. Sequence is the engine's
// global monotonic counter; Timestamp is the caller-supplied operation
// time, never wall clock read by the core.
type Envelope struct {
	Sequence  int64
	Type      Type
	MarketID  *uint64
	Timestamp time.Time
	Payload   Payload
}

// Payload is implemented by all event payloads.
type Payload interface {
	EventType() Type

	// MarketRef returns the market context, nil for global events.
	MarketRef() *uint64
}
