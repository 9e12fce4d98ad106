package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/davmoreno/djlink/internal/models"
	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProposalStore is an in-memory stand-in for the proposals table. The
// mutex mirrors the store's row-level atomicity: resolve and counter only
// apply against a still-pending row.
type fakeProposalStore struct {
	mu        sync.Mutex
	proposals map[uuid.UUID]*models.Proposal
	creates   int
}

func newFakeProposalStore() *fakeProposalStore {
	return &fakeProposalStore{proposals: make(map[uuid.UUID]*models.Proposal)}
}

func (f *fakeProposalStore) CreateProposal(ctx context.Context, proposal *models.Proposal, accessToken string) (*models.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	stored := *proposal
	f.proposals[stored.ID] = &stored
	copy := stored
	return &copy, nil
}

func (f *fakeProposalStore) GetProposal(ctx context.Context, id uuid.UUID, accessToken string) (*models.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.proposals[id]
	if !ok {
		return nil, models.ErrProposalNotFound
	}
	copy := *stored
	return &copy, nil
}

func (f *fakeProposalStore) ListProposalsForUser(ctx context.Context, userID uuid.UUID, role string, offset, limit int, accessToken string) ([]*models.Proposal, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Proposal
	for _, p := range f.proposals {
		if (role == models.RoleDJ && p.DJID == userID) || (role != models.RoleDJ && p.ClientID == userID) {
			copy := *p
			out = append(out, &copy)
		}
	}
	return out, len(out), nil
}

func (f *fakeProposalStore) ResolveProposal(ctx context.Context, id uuid.UUID, decision string, accessToken string) (*models.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.proposals[id]
	if !ok {
		return nil, models.ErrProposalNotFound
	}
	if stored.Estado != models.EstadoPendiente {
		return nil, models.ErrAlreadyResolved
	}
	stored.Estado = decision
	stored.UpdatedAt = time.Now()
	copy := *stored
	return &copy, nil
}

func (f *fakeProposalStore) CounterProposal(ctx context.Context, id uuid.UUID, newAmount, newRound int, accessToken string) (*models.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.proposals[id]
	if !ok {
		return nil, models.ErrProposalNotFound
	}
	if stored.Estado != models.EstadoPendiente {
		return nil, models.ErrAlreadyResolved
	}
	stored.Estado = models.EstadoContraoferta
	stored.MontoContraoferta = &newAmount
	stored.RondaContrapropuesta = newRound
	stored.UpdatedAt = time.Now()
	copy := *stored
	return &copy, nil
}

// fakeEventStore enforces the one-event-per-proposal unique key.
type fakeEventStore struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*models.Event
	byPropID map[uuid.UUID]*models.Event
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{
		byID:     make(map[uuid.UUID]*models.Event),
		byPropID: make(map[uuid.UUID]*models.Event),
	}
}

func (f *fakeEventStore) CreateEvent(ctx context.Context, event *models.Event, accessToken string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.byPropID[event.ProposalID]; exists {
		return nil, fmt.Errorf("%w: duplicate key value violates unique constraint", models.ErrEventExists)
	}
	stored := *event
	f.byID[stored.ID] = &stored
	f.byPropID[stored.ProposalID] = &stored
	copy := stored
	return &copy, nil
}

func (f *fakeEventStore) GetEventByProposalID(ctx context.Context, proposalID uuid.UUID, accessToken string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byPropID[proposalID]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	copy := *stored
	return &copy, nil
}

func (f *fakeEventStore) ListEventsForUser(ctx context.Context, userID uuid.UUID, role string, offset, limit int, accessToken string) ([]*models.Event, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Event
	for _, e := range f.byID {
		if (role == models.RoleDJ && e.DJID == userID) || (role != models.RoleDJ && e.ClientID == userID) {
			copy := *e
			out = append(out, &copy)
		}
	}
	return out, len(out), nil
}

func (f *fakeEventStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// fakeMessageStore records inserted chat envelopes.
type fakeMessageStore struct {
	mu       sync.Mutex
	messages []*models.Message
}

func (f *fakeMessageStore) InsertMessage(ctx context.Context, message *models.Message, accessToken string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *message
	f.messages = append(f.messages, &stored)
	copy := stored
	return &copy, nil
}

func (f *fakeMessageStore) ListConversation(ctx context.Context, userID, peerID uuid.UUID, offset, limit int, accessToken string) ([]*models.Message, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Message, 0, len(f.messages))
	for _, m := range f.messages {
		copy := *m
		out = append(out, &copy)
	}
	return out, len(out), nil
}

func (f *fakeMessageStore) MarkConversationRead(ctx context.Context, readerID, senderID uuid.UUID, accessToken string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated []*models.Message
	for _, m := range f.messages {
		if m.ReceiverID == readerID && m.SenderID == senderID && !m.IsRead {
			m.IsRead = true
			copy := *m
			updated = append(updated, &copy)
		}
	}
	return updated, nil
}

func (f *fakeMessageStore) all() []*models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Message, len(f.messages))
	copy(out, f.messages)
	return out
}

// fakeHistoryStore keeps negotiation rounds per proposal.
type fakeHistoryStore struct {
	mu     sync.Mutex
	rounds map[uuid.UUID][]models.RoundTerms
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{rounds: make(map[uuid.UUID][]models.RoundTerms)}
}

func (f *fakeHistoryStore) AppendRound(ctx context.Context, proposalID uuid.UUID, round models.RoundTerms) (*models.NegotiationHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rounds[proposalID] = append(f.rounds[proposalID], round)
	return &models.NegotiationHistory{ProposalID: proposalID, Rounds: f.rounds[proposalID]}, nil
}

func (f *fakeHistoryStore) GetHistory(ctx context.Context, proposalID uuid.UUID) (*models.NegotiationHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.NegotiationHistory{ProposalID: proposalID, Rounds: f.rounds[proposalID]}, nil
}

// fakeBridge counts published changes per type.
type fakeBridge struct {
	mu      sync.Mutex
	inserts int
	updates int
}

func (f *fakeBridge) PublishInsert(ctx context.Context, userID uuid.UUID, table string, row interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	return nil
}

func (f *fakeBridge) PublishUpdate(ctx context.Context, userID uuid.UUID, table string, row interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	return nil
}

// fakeNotifier counts booking confirmations.
type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []*models.Event
}

func (f *fakeNotifier) BookingConfirmed(ctx context.Context, event *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed = append(f.confirmed, event)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.confirmed)
}
