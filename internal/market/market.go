package market

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidWindow       = errors.New("market window must satisfy now < start < end")
	ErrInvalidOutcomes     = errors.New("market needs at least two distinct non-empty outcomes")
	ErrMarketNotFound      = errors.New("market not found")
	ErrMarketNotOpen       = errors.New("market is not open for trading")
	ErrInvalidOutcomeIndex = errors.New("outcome index out of range")
	ErrNotYetClosed        = errors.New("market has not closed yet")
	ErrAlreadyResolved     = errors.New("market already resolved")
	ErrNotResolved         = errors.New("market not resolved")
)

// State is derived from the stored timestamps and the caller-supplied
// current time. It is never stored: the engine keeps no scheduler, so
// Scheduled->Open->Closed happen lazily on access. Only Resolved is a
// stored, irreversible fact.
type State int32

const (
	StateScheduled State = iota
	StateOpen
	StateClosed
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateScheduled:
		return "scheduled"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Market is a multi-outcome prediction market opened by a team manager.
type Market struct {
	ID          uint64
	TeamID      uint64
	Manager     uuid.UUID
	TokenRef    string
	Category    string
	Title       string
	Description string
	Outcomes    []string
	StartTime   time.Time
	EndTime     time.Time

	Resolved       bool
	WinningOutcome int
}

// State derives the lifecycle state at the supplied time.
func (m *Market) State(now time.Time) State {
	switch {
	case m.Resolved:
		return StateResolved
	case now.Before(m.StartTime):
		return StateScheduled
	case now.Before(m.EndTime):
		return StateOpen
	default:
		return StateClosed
	}
}

// ValidOutcome reports whether idx addresses one of the market's outcomes.
func (m *Market) ValidOutcome(idx int) bool {
	return idx >= 0 && idx < len(m.Outcomes)
}

// Manager tracks markets in an arena keyed by monotonic id.
type Manager struct {
	nextID  uint64
	markets map[uint64]*Market
}

func NewManager() *Manager {
	return &Manager{
		nextID:  1,
		markets: make(map[uint64]*Market),
	}
}

// Create validates the window and outcome labels and allocates a market in
// Scheduled state. Both timestamps must be strictly in the future.
func (mm *Manager) Create(
	teamID uint64,
	manager uuid.UUID,
	tokenRef, category, title, description string,
	outcomes []string,
	startTime, endTime time.Time,
	now time.Time,
) (*Market, error) {
	if !now.Before(startTime) || !startTime.Before(endTime) {
		return nil, ErrInvalidWindow
	}
	if err := validateOutcomes(outcomes); err != nil {
		return nil, err
	}

	m := &Market{
		ID:          mm.nextID,
		TeamID:      teamID,
		Manager:     manager,
		TokenRef:    tokenRef,
		Category:    category,
		Title:       title,
		Description: description,
		Outcomes:    append([]string(nil), outcomes...),
		StartTime:   startTime,
		EndTime:     endTime,
	}
	mm.nextID++
	mm.markets[m.ID] = m
	return m, nil
}

func validateOutcomes(outcomes []string) error {
	if len(outcomes) < 2 {
		return ErrInvalidOutcomes
	}
	seen := make(map[string]bool, len(outcomes))
	for _, label := range outcomes {
		if label == "" || seen[label] {
			return ErrInvalidOutcomes
		}
		seen[label] = true
	}
	return nil
}

// Get resolves a market by id.
func (mm *Manager) Get(id uint64) (*Market, error) {
	m, ok := mm.markets[id]
	if !ok {
		return nil, ErrMarketNotFound
	}
	return m, nil
}

// GetOpen resolves a market and verifies it accepts orders at `now`.
func (mm *Manager) GetOpen(id uint64, now time.Time) (*Market, error) {
	m, err := mm.Get(id)
	if err != nil {
		return nil, err
	}
	if m.State(now) != StateOpen {
		return nil, ErrMarketNotOpen
	}
	return m, nil
}

// Resolve records the winning outcome. Allowed only after the market has
// closed, exactly once. Irreversible.
func (mm *Manager) Resolve(id uint64, winningOutcome int, now time.Time) (*Market, error) {
	m, err := mm.Get(id)
	if err != nil {
		return nil, err
	}
	if m.Resolved {
		return nil, ErrAlreadyResolved
	}
	if now.Before(m.EndTime) {
		return nil, ErrNotYetClosed
	}
	if !m.ValidOutcome(winningOutcome) {
		return nil, ErrInvalidOutcomeIndex
	}

	m.Resolved = true
	m.WinningOutcome = winningOutcome
	return m, nil
}
