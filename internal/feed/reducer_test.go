package feed

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/davmoreno/djlink/internal/models"
	"github.com/davmoreno/djlink/internal/realtime"
	"github.com/google/uuid"
)

var (
	testClientID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	testDJID     = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func textMessage(id string, sender, receiver uuid.UUID, content string) *models.Message {
	return &models.Message{
		ID:          id,
		SenderID:    sender,
		ReceiverID:  receiver,
		Content:     content,
		ContentType: models.ContentTypeText,
	}
}

func proposalCard(id string, proposal *models.Proposal) *models.Message {
	return &models.Message{
		ID:          id,
		SenderID:    proposal.ClientID,
		ReceiverID:  proposal.DJID,
		Content:     "Nueva propuesta",
		ContentType: models.ContentTypeProposal,
		Metadata: &models.MessageMetadata{
			IsProposal: true,
			Proposal:   proposal,
		},
	}
}

func responseMessage(id string, proposal *models.Proposal, content string) *models.Message {
	return &models.Message{
		ID:          id,
		SenderID:    proposal.DJID,
		ReceiverID:  proposal.ClientID,
		Content:     content,
		ContentType: models.ContentTypeProposal,
		Metadata: &models.MessageMetadata{
			IsProposalResponse: true,
			Response:           proposal.Estado,
			Proposal:           proposal,
		},
	}
}

func pendingProposal(updatedAt time.Time) *models.Proposal {
	return &models.Proposal{
		ID:              uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		ClientID:        testClientID,
		DJID:            testDJID,
		Monto:           55000,
		FechaEvento:     "2026-04-18",
		HoraInicio:      "21:00",
		UbicacionEvento: "Club Nebula, Bogota",
		Estado:          models.EstadoPendiente,
		UpdatedAt:       updatedAt,
	}
}

func insertChange(t *testing.T, m *models.Message) realtime.Change {
	t.Helper()
	row, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal message: %v", err)
	}
	return realtime.Change{Table: models.MessagesTable, Type: realtime.ChangeInsert, Row: row}
}

func updateChange(t *testing.T, table string, row interface{}) realtime.Change {
	t.Helper()
	raw, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("failed to marshal row: %v", err)
	}
	return realtime.Change{Table: table, Type: realtime.ChangeUpdate, Row: raw}
}

func TestDuplicateInsertIsDeduplicated(t *testing.T) {
	conv := NewConversation(testDJID, models.RoleDJ)
	msg := textMessage("01ARZ3NDEKTSV4RRFFQ69G5FAV", testClientID, testDJID, "hola")

	change := insertChange(t, msg)
	if err := conv.Apply(change); err != nil {
		t.Fatal(err)
	}
	if err := conv.Apply(change); err != nil {
		t.Fatal(err)
	}

	if got := len(conv.Bubbles()); got != 1 {
		t.Fatalf("expected 1 bubble after duplicate delivery, got %d", got)
	}
}

func TestOutOfOrderInsertsSortByID(t *testing.T) {
	conv := NewConversation(testDJID, models.RoleDJ)

	later := textMessage("01BX5ZZKBKACTAV9WEVGEMMVS0", testClientID, testDJID, "second")
	earlier := textMessage("01ARZ3NDEKTSV4RRFFQ69G5FAV", testClientID, testDJID, "first")

	if err := conv.Apply(insertChange(t, later)); err != nil {
		t.Fatal(err)
	}
	if err := conv.Apply(insertChange(t, earlier)); err != nil {
		t.Fatal(err)
	}

	bubbles := conv.Bubbles()
	if len(bubbles) != 2 {
		t.Fatalf("expected 2 bubbles, got %d", len(bubbles))
	}
	if bubbles[0].Content != "first" || bubbles[1].Content != "second" {
		t.Fatalf("bubbles out of order: %q then %q", bubbles[0].Content, bubbles[1].Content)
	}
}

func TestResponseSynthesizesSystemBubbleAndPatchesCard(t *testing.T) {
	conv := NewConversation(testClientID, models.RoleClient)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	pending := pendingProposal(base)
	card := proposalCard("01ARZ3NDEKTSV4RRFFQ69G5FAV", pending)
	conv.Load([]*models.Message{card})

	accepted := *pending
	accepted.Estado = models.EstadoAceptada
	accepted.UpdatedAt = base.Add(time.Minute)
	response := responseMessage("01BX5ZZKBKACTAV9WEVGEMMVS0", &accepted, "Propuesta aceptada")

	change := insertChange(t, response)
	if err := conv.Apply(change); err != nil {
		t.Fatal(err)
	}
	// At-least-once delivery: replaying the response must not double the
	// system bubble.
	if err := conv.Apply(change); err != nil {
		t.Fatal(err)
	}

	bubbles := conv.Bubbles()
	if len(bubbles) != 3 {
		t.Fatalf("expected card + response + system bubble, got %d bubbles", len(bubbles))
	}

	if bubbles[0].Kind != KindProposal {
		t.Fatalf("first bubble kind = %s, want %s", bubbles[0].Kind, KindProposal)
	}
	if bubbles[0].Proposal.Estado != models.EstadoAceptada {
		t.Fatalf("original card estado = %s, want %s", bubbles[0].Proposal.Estado, models.EstadoAceptada)
	}

	if bubbles[2].Kind != KindSystem {
		t.Fatalf("last bubble kind = %s, want %s", bubbles[2].Kind, KindSystem)
	}
	if bubbles[2].Content != "Propuesta aceptada" {
		t.Fatalf("system bubble content = %q", bubbles[2].Content)
	}
}

func TestProposalUpdatePatchesEveryCardAndDropsStale(t *testing.T) {
	conv := NewConversation(testClientID, models.RoleClient)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	pending := pendingProposal(base)
	conv.Load([]*models.Message{
		proposalCard("01ARZ3NDEKTSV4RRFFQ69G5FAV", pending),
		proposalCard("01BX5ZZKBKACTAV9WEVGEMMVS0", pending),
	})

	counter := 48000
	countered := *pending
	countered.Estado = models.EstadoContraoferta
	countered.MontoContraoferta = &counter
	countered.RondaContrapropuesta = 1
	countered.UpdatedAt = base.Add(2 * time.Minute)

	if err := conv.Apply(updateChange(t, models.ProposalsTable, &countered)); err != nil {
		t.Fatal(err)
	}

	for i, b := range conv.Bubbles() {
		if b.Proposal.Estado != models.EstadoContraoferta {
			t.Fatalf("bubble %d estado = %s, want %s", i, b.Proposal.Estado, models.EstadoContraoferta)
		}
	}

	// A stale update delivered late must not roll the cards back.
	stale := *pending
	stale.UpdatedAt = base.Add(time.Minute)
	if err := conv.Apply(updateChange(t, models.ProposalsTable, &stale)); err != nil {
		t.Fatal(err)
	}

	for i, b := range conv.Bubbles() {
		if b.Proposal.Estado != models.EstadoContraoferta {
			t.Fatalf("bubble %d rolled back to %s after stale update", i, b.Proposal.Estado)
		}
	}
}

func TestReadReceiptOnlyFlipsIsRead(t *testing.T) {
	conv := NewConversation(testClientID, models.RoleClient)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	pending := pendingProposal(base)
	card := proposalCard("01ARZ3NDEKTSV4RRFFQ69G5FAV", pending)
	conv.Load([]*models.Message{card})

	// Receipt carries a mutated proposal snapshot; only is_read may move.
	receipt := *card
	receipt.IsRead = true
	tampered := *pending
	tampered.Estado = models.EstadoAceptada
	receipt.Metadata = &models.MessageMetadata{IsProposal: true, Proposal: &tampered}

	if err := conv.Apply(updateChange(t, models.MessagesTable, &receipt)); err != nil {
		t.Fatal(err)
	}

	bubble := conv.Bubbles()[0]
	if !bubble.IsRead {
		t.Fatal("read receipt did not flip IsRead")
	}
	if bubble.Proposal.Estado != models.EstadoPendiente {
		t.Fatalf("read receipt mutated proposal state to %s", bubble.Proposal.Estado)
	}
}

func TestAffordancesFollowStateAndRole(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	pending := pendingProposal(base)
	card := proposalCard("01ARZ3NDEKTSV4RRFFQ69G5FAV", pending)

	djView := NewConversation(testDJID, models.RoleDJ)
	djView.Load([]*models.Message{card})
	got := djView.AffordancesFor(djView.Bubbles()[0])
	if !got.CanAccept || !got.CanReject || !got.CanCounter || got.CanResend {
		t.Fatalf("DJ affordances on pendiente = %+v", got)
	}

	clientView := NewConversation(testClientID, models.RoleClient)
	clientView.Load([]*models.Message{card})
	got = clientView.AffordancesFor(clientView.Bubbles()[0])
	if got.CanAccept || got.CanReject || got.CanCounter || got.CanResend {
		t.Fatalf("client affordances on pendiente = %+v", got)
	}

	rejected := *pending
	rejected.Estado = models.EstadoRechazada
	rejected.UpdatedAt = base.Add(time.Minute)
	if err := djView.Apply(updateChange(t, models.ProposalsTable, &rejected)); err != nil {
		t.Fatal(err)
	}
	got = djView.AffordancesFor(djView.Bubbles()[0])
	if got.CanAccept || got.CanReject || got.CanCounter {
		t.Fatalf("rechazada card still actionable: %+v", got)
	}
}

func TestCounteredCardOffersClientResend(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	counter := 48000
	countered := pendingProposal(base)
	countered.Estado = models.EstadoContraoferta
	countered.MontoContraoferta = &counter
	countered.HorasDuracion = 4
	card := proposalCard("01ARZ3NDEKTSV4RRFFQ69G5FAV", countered)

	clientView := NewConversation(testClientID, models.RoleClient)
	clientView.Load([]*models.Message{card})
	got := clientView.AffordancesFor(clientView.Bubbles()[0])
	if !got.CanResend || got.CanAccept || got.CanReject || got.CanCounter {
		t.Fatalf("client affordances on contraoferta = %+v", got)
	}

	djView := NewConversation(testDJID, models.RoleDJ)
	djView.Load([]*models.Message{card})
	if a := djView.AffordancesFor(djView.Bubbles()[0]); a.CanResend {
		t.Fatalf("DJ offered resend on contraoferta: %+v", a)
	}

	draft, err := DraftFromCounter(countered)
	if err != nil {
		t.Fatal(err)
	}
	if draft.MontoBase != 48000 {
		t.Fatalf("draft MontoBase = %d, want the counter amount 48000", draft.MontoBase)
	}
	if draft.UbicacionEvento != countered.UbicacionEvento || draft.HorasDuracion != countered.HorasDuracion {
		t.Fatal("draft did not carry over the original terms")
	}
}

func TestDraftFromCounterRequiresCounterOffer(t *testing.T) {
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if _, err := DraftFromCounter(pendingProposal(base)); err == nil {
		t.Fatal("expected error drafting from a proposal without a counter-offer")
	}
}
