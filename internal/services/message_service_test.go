package services

import (
	"context"
	"testing"
	"time"

	"github.com/davmoreno/djlink/internal/feed"
	"github.com/davmoreno/djlink/internal/models"
	"github.com/google/uuid"
)

func TestSendTextFansOutToBothParties(t *testing.T) {
	store := &fakeMessageStore{}
	bridge := &fakeBridge{}
	service := NewMessageService(store, bridge, testLogger())

	sender, receiver := uuid.New(), uuid.New()
	sent, err := service.SendText(context.Background(), sender, receiver, "hola", "token")
	if err != nil {
		t.Fatal(err)
	}
	if sent.ID == "" {
		t.Fatal("message has no id")
	}
	if sent.ContentType != models.ContentTypeText {
		t.Fatalf("content type = %s, want %s", sent.ContentType, models.ContentTypeText)
	}
	if bridge.inserts != 2 {
		t.Fatalf("published %d inserts, want one per party", bridge.inserts)
	}
}

func TestSendTextRejectsEmptyContent(t *testing.T) {
	store := &fakeMessageStore{}
	service := NewMessageService(store, &fakeBridge{}, testLogger())

	if _, err := service.SendText(context.Background(), uuid.New(), uuid.New(), "   ", "token"); err == nil {
		t.Fatal("expected empty content to fail")
	}
	if len(store.all()) != 0 {
		t.Fatal("empty message still reached the store")
	}
}

func TestMessageIDsAreMonotonic(t *testing.T) {
	store := &fakeMessageStore{}
	service := NewMessageService(store, &fakeBridge{}, testLogger())

	sender, receiver := uuid.New(), uuid.New()
	var previous string
	for i := 0; i < 5; i++ {
		sent, err := service.SendText(context.Background(), sender, receiver, "hola", "token")
		if err != nil {
			t.Fatal(err)
		}
		if sent.ID <= previous {
			t.Fatalf("id %q does not sort after %q", sent.ID, previous)
		}
		previous = sent.ID
	}
}

func TestMarkReadPublishesReceiptsToSender(t *testing.T) {
	store := &fakeMessageStore{}
	bridge := &fakeBridge{}
	service := NewMessageService(store, bridge, testLogger())

	sender, reader := uuid.New(), uuid.New()
	for i := 0; i < 3; i++ {
		if _, err := service.SendText(context.Background(), sender, reader, "hola", "token"); err != nil {
			t.Fatal(err)
		}
	}

	updated, err := service.MarkRead(context.Background(), reader, sender, "token")
	if err != nil {
		t.Fatal(err)
	}
	if updated != 3 {
		t.Fatalf("marked %d messages, want 3", updated)
	}
	if bridge.updates != 3 {
		t.Fatalf("published %d receipts, want 3", bridge.updates)
	}

	// Already-read messages are not re-flipped.
	updated, err = service.MarkRead(context.Background(), reader, sender, "token")
	if err != nil {
		t.Fatal(err)
	}
	if updated != 0 {
		t.Fatalf("second pass marked %d messages, want 0", updated)
	}
}

func TestBuildConversationExposesCardAffordances(t *testing.T) {
	store := &fakeMessageStore{}
	bridge := &fakeBridge{}
	service := NewMessageService(store, bridge, testLogger())

	clientID, djID := uuid.New(), uuid.New()
	proposal := &models.Proposal{
		ID:              uuid.New(),
		ClientID:        clientID,
		DJID:            djID,
		Monto:           55000,
		FechaEvento:     "2026-04-18",
		UbicacionEvento: "Club Nebula, Bogota",
		Estado:          models.EstadoPendiente,
		UpdatedAt:       time.Now(),
	}
	if _, err := service.SendProposalCard(context.Background(), proposal, "token"); err != nil {
		t.Fatal(err)
	}

	conversation, err := service.BuildConversation(context.Background(), djID, models.RoleDJ, clientID, 0, 50, "token")
	if err != nil {
		t.Fatal(err)
	}

	bubbles := conversation.Bubbles()
	if len(bubbles) != 1 {
		t.Fatalf("expected 1 bubble, got %d", len(bubbles))
	}
	if bubbles[0].Kind != feed.KindProposal {
		t.Fatalf("bubble kind = %s, want %s", bubbles[0].Kind, feed.KindProposal)
	}

	affordances := conversation.AffordancesFor(bubbles[0])
	if !affordances.CanAccept || !affordances.CanReject || !affordances.CanCounter {
		t.Fatalf("DJ affordances on pending card = %+v", affordances)
	}
}
