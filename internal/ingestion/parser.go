package ingestion

import (
	"encoding/json"
	"fmt"
	"time"

	"FanPredix/internal/book"

	"github.com/google/uuid"
)

// ParseRawCommand converts a RawCommand (JSON bytes + command type string)
// into a typed Command. The shell validates and converts before anything
// reaches the exchange core.
func ParseRawCommand(raw RawCommand, commandType string) (Command, error) {
	switch commandType {
	case "AddTeam":
		return parseAddTeam(raw.Data)
	case "UpdateTeam":
		return parseUpdateTeam(raw.Data)
	case "CreateMarket":
		return parseCreateMarket(raw.Data)
	case "PlaceOrder":
		return parsePlaceOrder(raw.Data)
	case "CancelOrder":
		return parseCancelOrder(raw.Data)
	case "ResolveMarket":
		return parseResolveMarket(raw.Data)
	case "RedeemWinnings":
		return parseRedeemWinnings(raw.Data)
	case "ReclaimUnmatched":
		return parseReclaimUnmatched(raw.Data)
	default:
		return nil, fmt.Errorf("unknown command type: %s", commandType)
	}
}

// --- JSON wire formats ---
// These structs represent the JSON payloads received from NATS.
// Field names use snake_case to match upstream producers.

type addTeamJSON struct {
	Admin    string `json:"admin"`
	Manager  string `json:"manager"`
	Name     string `json:"name"`
	TokenRef string `json:"token_ref"`
}

func parseAddTeam(data []byte) (*AddTeam, error) {
	var j addTeamJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse AddTeam: %w", err)
	}
	admin, err := uuid.Parse(j.Admin)
	if err != nil {
		return nil, fmt.Errorf("parse admin: %w", err)
	}
	manager, err := uuid.Parse(j.Manager)
	if err != nil {
		return nil, fmt.Errorf("parse manager: %w", err)
	}
	return &AddTeam{
		Admin:    admin,
		Manager:  manager,
		Name:     j.Name,
		TokenRef: j.TokenRef,
	}, nil
}

type updateTeamJSON struct {
	Caller   string `json:"caller"`
	Name     string `json:"name,omitempty"`
	TokenRef string `json:"token_ref,omitempty"`
}

func parseUpdateTeam(data []byte) (*UpdateTeam, error) {
	var j updateTeamJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse UpdateTeam: %w", err)
	}
	caller, err := uuid.Parse(j.Caller)
	if err != nil {
		return nil, fmt.Errorf("parse caller: %w", err)
	}
	return &UpdateTeam{
		Caller:   caller,
		Name:     j.Name,
		TokenRef: j.TokenRef,
	}, nil
}

type createMarketJSON struct {
	Caller      string   `json:"caller"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Outcomes    []string `json:"outcomes"`
	StartUs     int64    `json:"start_us"`
	EndUs       int64    `json:"end_us"`
}

func parseCreateMarket(data []byte) (*CreateMarket, error) {
	var j createMarketJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse CreateMarket: %w", err)
	}
	caller, err := uuid.Parse(j.Caller)
	if err != nil {
		return nil, fmt.Errorf("parse caller: %w", err)
	}
	return &CreateMarket{
		Caller:      caller,
		Category:    j.Category,
		Title:       j.Title,
		Description: j.Description,
		Outcomes:    j.Outcomes,
		StartTime:   time.UnixMicro(j.StartUs),
		EndTime:     time.UnixMicro(j.EndUs),
	}, nil
}

type placeOrderJSON struct {
	Caller       string `json:"caller"`
	MarketID     uint64 `json:"market_id"`
	OutcomeIndex int    `json:"outcome_index"`
	Side         string `json:"side"` // "back" or "lay"
	Stake        int64  `json:"stake"`
	Odds         int64  `json:"odds"`
}

func parsePlaceOrder(data []byte) (*PlaceOrder, error) {
	var j placeOrderJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse PlaceOrder: %w", err)
	}
	caller, err := uuid.Parse(j.Caller)
	if err != nil {
		return nil, fmt.Errorf("parse caller: %w", err)
	}

	var side book.Side
	switch j.Side {
	case "back":
		side = book.SideBack
	case "lay":
		side = book.SideLay
	default:
		return nil, fmt.Errorf("parse side: %q is not back or lay", j.Side)
	}

	return &PlaceOrder{
		Caller:       caller,
		MarketID:     j.MarketID,
		OutcomeIndex: j.OutcomeIndex,
		Side:         side,
		Stake:        j.Stake,
		Odds:         j.Odds,
	}, nil
}

type cancelOrderJSON struct {
	Caller  string `json:"caller"`
	OrderID uint64 `json:"order_id"`
}

func parseCancelOrder(data []byte) (*CancelOrder, error) {
	var j cancelOrderJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse CancelOrder: %w", err)
	}
	caller, err := uuid.Parse(j.Caller)
	if err != nil {
		return nil, fmt.Errorf("parse caller: %w", err)
	}
	return &CancelOrder{Caller: caller, OrderID: j.OrderID}, nil
}

type resolveMarketJSON struct {
	Caller         string `json:"caller"`
	MarketID       uint64 `json:"market_id"`
	WinningOutcome int    `json:"winning_outcome"`
}

func parseResolveMarket(data []byte) (*ResolveMarket, error) {
	var j resolveMarketJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse ResolveMarket: %w", err)
	}
	caller, err := uuid.Parse(j.Caller)
	if err != nil {
		return nil, fmt.Errorf("parse caller: %w", err)
	}
	return &ResolveMarket{
		Caller:         caller,
		MarketID:       j.MarketID,
		WinningOutcome: j.WinningOutcome,
	}, nil
}

type settlementJSON struct {
	Caller   string `json:"caller"`
	MarketID uint64 `json:"market_id"`
}

func parseRedeemWinnings(data []byte) (*RedeemWinnings, error) {
	var j settlementJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse RedeemWinnings: %w", err)
	}
	caller, err := uuid.Parse(j.Caller)
	if err != nil {
		return nil, fmt.Errorf("parse caller: %w", err)
	}
	return &RedeemWinnings{Caller: caller, MarketID: j.MarketID}, nil
}

func parseReclaimUnmatched(data []byte) (*ReclaimUnmatched, error) {
	var j settlementJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("parse ReclaimUnmatched: %w", err)
	}
	caller, err := uuid.Parse(j.Caller)
	if err != nil {
		return nil, fmt.Errorf("parse caller: %w", err)
	}
	return &ReclaimUnmatched{Caller: caller, MarketID: j.MarketID}, nil
}
