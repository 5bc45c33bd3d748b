package registry

import (
	"errors"

	"github.com/google/uuid"
)

var (
	ErrDuplicateTeam = errors.New("manager already has a registered team")
	ErrUnknownTeam   = errors.New("no team registered for manager")
)

// Team binds a manager identity to the fan token backing its markets.
// Teams are never deleted; mutation is limited to name and token reference.
type Team struct {
	ID       uint64
	Manager  uuid.UUID
	Name     string
	TokenRef string
}

// Registry holds teams in an arena keyed by monotonic id, with a
// manager-identity index. One team per manager.
type Registry struct {
	nextID    uint64
	teams     map[uint64]*Team
	byManager map[uuid.UUID]uint64
}

func NewRegistry() *Registry {
	return &Registry{
		nextID:    1,
		teams:     make(map[uint64]*Team),
		byManager: make(map[uuid.UUID]uint64),
	}
}

// Add registers a new team and returns it. Authorization is the caller's
// concern; the registry enforces only the one-team-per-manager invariant.
func (r *Registry) Add(manager uuid.UUID, name, tokenRef string) (*Team, error) {
	if _, exists := r.byManager[manager]; exists {
		return nil, ErrDuplicateTeam
	}

	team := &Team{
		ID:       r.nextID,
		Manager:  manager,
		Name:     name,
		TokenRef: tokenRef,
	}
	r.nextID++
	r.teams[team.ID] = team
	r.byManager[manager] = team.ID
	return team, nil
}

// Update mutates only the provided fields of the manager's team.
// Empty strings leave the current value in place.
func (r *Registry) Update(manager uuid.UUID, name, tokenRef string) (*Team, error) {
	team, err := r.ByManager(manager)
	if err != nil {
		return nil, err
	}

	if name != "" {
		team.Name = name
	}
	if tokenRef != "" {
		team.TokenRef = tokenRef
	}
	return team, nil
}

// ByManager resolves the team owned by a manager identity.
func (r *Registry) ByManager(manager uuid.UUID) (*Team, error) {
	id, ok := r.byManager[manager]
	if !ok {
		return nil, ErrUnknownTeam
	}
	return r.teams[id], nil
}

// ByID resolves a team by its arena id.
func (r *Registry) ByID(id uint64) (*Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, ErrUnknownTeam
	}
	return team, nil
}
