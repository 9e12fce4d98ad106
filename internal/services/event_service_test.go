package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/davmoreno/djlink/internal/models"
	"github.com/google/uuid"
)

func acceptedProposal() *models.Proposal {
	return &models.Proposal{
		ID:                 uuid.New(),
		ClientID:           uuid.New(),
		DJID:               uuid.New(),
		Monto:              55000,
		HorasDuracion:      4,
		FechaEvento:        "2026-04-18",
		HoraInicio:         "21:00",
		HoraFin:            "01:00",
		UbicacionEvento:    "Club Nebula, Bogota",
		GenerosSolicitados: []string{"house"},
		Estado:             models.EstadoAceptada,
		UpdatedAt:          time.Now(),
	}
}

func TestMaterializeCreatesEventOnce(t *testing.T) {
	store := newFakeEventStore()
	service := NewEventService(store, testLogger())
	proposal := acceptedProposal()

	event, createdNew, err := service.Materialize(context.Background(), proposal, "token")
	if err != nil {
		t.Fatal(err)
	}
	if !createdNew {
		t.Fatal("first materialization reported as no-op")
	}
	if event.ProposalID != proposal.ID {
		t.Fatal("event does not reference the proposal")
	}
	if event.MontoFinal != 55000 {
		t.Fatalf("MontoFinal = %d, want 55000", event.MontoFinal)
	}

	again, createdNew, err := service.Materialize(context.Background(), proposal, "token")
	if err != nil {
		t.Fatal(err)
	}
	if createdNew {
		t.Fatal("second materialization created a new event")
	}
	if again.ID != event.ID {
		t.Fatal("second materialization returned a different event")
	}
	if store.count() != 1 {
		t.Fatalf("store holds %d events, want 1", store.count())
	}
}

func TestMaterializeUsesCounterOfferAmount(t *testing.T) {
	store := newFakeEventStore()
	service := NewEventService(store, testLogger())

	counter := 48000
	proposal := acceptedProposal()
	proposal.MontoContraoferta = &counter

	event, _, err := service.Materialize(context.Background(), proposal, "token")
	if err != nil {
		t.Fatal(err)
	}
	if event.MontoFinal != 48000 {
		t.Fatalf("MontoFinal = %d, want the counter amount 48000", event.MontoFinal)
	}
}

func TestMaterializeSkipsProposalWithoutLocation(t *testing.T) {
	store := newFakeEventStore()
	service := NewEventService(store, testLogger())

	proposal := acceptedProposal()
	proposal.UbicacionEvento = "  "

	_, createdNew, err := service.Materialize(context.Background(), proposal, "token")
	if !errors.Is(err, models.ErrMissingLocation) {
		t.Fatalf("expected ErrMissingLocation, got %v", err)
	}
	if createdNew {
		t.Fatal("locationless proposal reported as created")
	}
	if store.count() != 0 {
		t.Fatalf("locationless proposal produced %d events", store.count())
	}
}

// duplicateOnCreateStore simulates the check-then-insert race: the existence
// check misses but the insert hits the unique key.
type duplicateOnCreateStore struct {
	*fakeEventStore
	winner *models.Event
	checks int
}

func (d *duplicateOnCreateStore) GetEventByProposalID(ctx context.Context, proposalID uuid.UUID, accessToken string) (*models.Event, error) {
	d.checks++
	if d.checks == 1 {
		return nil, models.ErrEventNotFound
	}
	copy := *d.winner
	return &copy, nil
}

func (d *duplicateOnCreateStore) CreateEvent(ctx context.Context, event *models.Event, accessToken string) (*models.Event, error) {
	return nil, fmt.Errorf("%w: duplicate key value violates unique constraint %q", models.ErrEventExists, "events_proposal_id_key")
}

func TestMaterializeFoldsDuplicateKeyIntoNoOp(t *testing.T) {
	proposal := acceptedProposal()
	winner := &models.Event{ID: uuid.New(), ProposalID: proposal.ID, MontoFinal: 55000}
	store := &duplicateOnCreateStore{fakeEventStore: newFakeEventStore(), winner: winner}
	service := NewEventService(store, testLogger())

	event, createdNew, err := service.Materialize(context.Background(), proposal, "token")
	if err != nil {
		t.Fatal(err)
	}
	if createdNew {
		t.Fatal("losing side of the race reported a new event")
	}
	if event.ID != winner.ID {
		t.Fatal("losing side did not return the winning event")
	}
}
