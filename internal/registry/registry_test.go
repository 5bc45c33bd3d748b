package registry_test

import (
	"FanPredix/internal/registry"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRegistry_AddAssignsMonotonicIDs(t *testing.T) {
	r := registry.NewRegistry()

	a, err := r.Add(uuid.New(), "Alpha FC", "ALF")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, err := r.Add(uuid.New(), "Bravo FC", "BRV")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if a.ID != 1 || b.ID != 2 {
		t.Errorf("ids: got %d, %d, want 1, 2", a.ID, b.ID)
	}
}

func TestRegistry_DuplicateManagerRejected(t *testing.T) {
	r := registry.NewRegistry()
	manager := uuid.New()

	if _, err := r.Add(manager, "Alpha FC", "ALF"); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := r.Add(manager, "Alpha Reserve", "ALR")
	if !errors.Is(err, registry.ErrDuplicateTeam) {
		t.Errorf("got %v, want ErrDuplicateTeam", err)
	}
}

func TestRegistry_UpdatePartialFields(t *testing.T) {
	r := registry.NewRegistry()
	manager := uuid.New()
	if _, err := r.Add(manager, "Alpha FC", "ALF"); err != nil {
		t.Fatalf("add: %v", err)
	}

	team, err := r.Update(manager, "Alpha United", "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if team.Name != "Alpha United" {
		t.Errorf("name: got %q", team.Name)
	}
	if team.TokenRef != "ALF" {
		t.Errorf("token ref must be untouched, got %q", team.TokenRef)
	}

	team, err = r.Update(manager, "", "ALU")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if team.Name != "Alpha United" || team.TokenRef != "ALU" {
		t.Errorf("got %q/%q, want Alpha United/ALU", team.Name, team.TokenRef)
	}
}

func TestRegistry_UpdateUnknownManager(t *testing.T) {
	r := registry.NewRegistry()
	_, err := r.Update(uuid.New(), "Ghost", "GST")
	if !errors.Is(err, registry.ErrUnknownTeam) {
		t.Errorf("got %v, want ErrUnknownTeam", err)
	}
}

func TestRegistry_Lookups(t *testing.T) {
	r := registry.NewRegistry()
	manager := uuid.New()
	added, err := r.Add(manager, "Alpha FC", "ALF")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	byMgr, err := r.ByManager(manager)
	if err != nil || byMgr.ID != added.ID {
		t.Errorf("ByManager: %v, %+v", err, byMgr)
	}
	byID, err := r.ByID(added.ID)
	if err != nil || byID.Manager != manager {
		t.Errorf("ByID: %v, %+v", err, byID)
	}
	if _, err := r.ByID(99); !errors.Is(err, registry.ErrUnknownTeam) {
		t.Errorf("ByID(99): got %v, want ErrUnknownTeam", err)
	}
}
