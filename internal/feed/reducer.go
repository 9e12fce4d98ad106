// Package feed builds the view-model for one chat conversation. It is a pure
// projection: state is rebuilt from the message store on load and kept
// current by folding bridge changes in. Nothing here is a source of truth.
package feed

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/davmoreno/djlink/internal/models"
	"github.com/davmoreno/djlink/internal/realtime"
	"github.com/google/uuid"
)

type Kind string

const (
	KindText     Kind = "text"
	KindProposal Kind = "proposal"
	KindSystem   Kind = "system"
)

// Bubble is one rendered entry in the transcript. Proposal cards carry the
// latest known proposal state; system bubbles are local annotations that are
// never persisted.
type Bubble struct {
	ID         string
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Content    string
	Kind       Kind
	Proposal   *models.Proposal
	IsRead     bool
}

// Affordances are the actions a viewer may take on a proposal card.
type Affordances struct {
	CanAccept  bool
	CanReject  bool
	CanCounter bool
	CanResend  bool
}

// Conversation folds messages and bridge changes into an ordered transcript
// for a single viewer.
type Conversation struct {
	viewerID   uuid.UUID
	viewerRole string
	bubbles    []*Bubble
	byID       map[string]*Bubble
}

func NewConversation(viewerID uuid.UUID, viewerRole string) *Conversation {
	return &Conversation{
		viewerID:   viewerID,
		viewerRole: viewerRole,
		byID:       make(map[string]*Bubble),
	}
}

// Load replaces the transcript with the stored messages.
func (c *Conversation) Load(messages []*models.Message) {
	c.bubbles = c.bubbles[:0]
	c.byID = make(map[string]*Bubble, len(messages))
	for _, m := range messages {
		c.appendMessage(m)
	}
}

// Apply folds one bridge change into the transcript.
func (c *Conversation) Apply(change realtime.Change) error {
	switch {
	case change.Table == models.MessagesTable && change.Type == realtime.ChangeInsert:
		var message models.Message
		if err := json.Unmarshal(change.Row, &message); err != nil {
			return fmt.Errorf("failed to decode message insert: %v", err)
		}
		c.applyMessageInsert(&message)
	case change.Table == models.MessagesTable && change.Type == realtime.ChangeUpdate:
		var message models.Message
		if err := json.Unmarshal(change.Row, &message); err != nil {
			return fmt.Errorf("failed to decode read receipt: %v", err)
		}
		c.applyReadReceipt(&message)
	case change.Table == models.ProposalsTable && change.Type == realtime.ChangeUpdate:
		var proposal models.Proposal
		if err := json.Unmarshal(change.Row, &proposal); err != nil {
			return fmt.Errorf("failed to decode proposal update: %v", err)
		}
		c.applyProposalUpdate(&proposal)
	}
	return nil
}

// Bubbles returns the transcript in creation order.
func (c *Conversation) Bubbles() []*Bubble {
	return c.bubbles
}

// applyMessageInsert appends a message delivered over the bridge. Delivery is
// at-least-once, so a duplicate id is a no-op. A proposal-response message
// additionally synthesizes a system bubble and resolves the matching cards.
func (c *Conversation) applyMessageInsert(m *models.Message) {
	if _, seen := c.byID[m.ID]; seen {
		return
	}

	bubble := c.appendMessage(m)

	if m.Metadata != nil && m.Metadata.IsProposalResponse && m.Metadata.Proposal != nil {
		c.patchCards(m.Metadata.Proposal)
		c.insertSystemBubble(bubble, m.Metadata.Proposal)
	}
}

func (c *Conversation) appendMessage(m *models.Message) *Bubble {
	kind := KindText
	var proposal *models.Proposal
	if m.Metadata != nil && m.Metadata.Proposal != nil {
		if m.Metadata.IsProposal {
			kind = KindProposal
		}
		snapshot := *m.Metadata.Proposal
		proposal = &snapshot
	}

	bubble := &Bubble{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Kind:       kind,
		Proposal:   proposal,
		IsRead:     m.IsRead,
	}

	c.byID[bubble.ID] = bubble

	// Message ids are ULIDs: lexicographic order is creation order, so an
	// out-of-order push still lands in the right transcript position.
	at := sort.Search(len(c.bubbles), func(i int) bool { return c.bubbles[i].ID > bubble.ID })
	c.bubbles = append(c.bubbles, nil)
	copy(c.bubbles[at+1:], c.bubbles[at:])
	c.bubbles[at] = bubble

	return bubble
}

// insertSystemBubble places a local annotation right after the triggering
// message. It carries a synthetic id so duplicate deliveries of the trigger
// cannot double it.
func (c *Conversation) insertSystemBubble(trigger *Bubble, proposal *models.Proposal) {
	id := trigger.ID + ":system"
	if _, seen := c.byID[id]; seen {
		return
	}

	var content string
	switch proposal.Estado {
	case models.EstadoAceptada:
		content = "Propuesta aceptada"
	case models.EstadoRechazada:
		content = "Propuesta rechazada"
	case models.EstadoContraoferta:
		content = fmt.Sprintf("Contraoferta: %d", proposal.MontoFinal())
	default:
		return
	}

	snapshot := *proposal
	bubble := &Bubble{
		ID:       id,
		Content:  content,
		Kind:     KindSystem,
		Proposal: &snapshot,
	}
	c.byID[id] = bubble

	for i, b := range c.bubbles {
		if b == trigger {
			c.bubbles = append(c.bubbles, nil)
			copy(c.bubbles[i+2:], c.bubbles[i+1:])
			c.bubbles[i+1] = bubble
			return
		}
	}
}

// applyProposalUpdate patches every card carrying the proposal, however old,
// so a resolved outcome re-renders on the original bubble. Updates apply
// last-writer-wins on the server timestamp; stale deliveries are dropped.
func (c *Conversation) applyProposalUpdate(p *models.Proposal) {
	c.patchCards(p)
}

func (c *Conversation) patchCards(p *models.Proposal) {
	for _, b := range c.bubbles {
		if b.Proposal == nil || b.Proposal.ID != p.ID {
			continue
		}
		if p.UpdatedAt.Before(b.Proposal.UpdatedAt) {
			continue
		}
		snapshot := *p
		b.Proposal = &snapshot
	}
}

// applyReadReceipt only ever flips is_read; proposal state never moves
// through this channel.
func (c *Conversation) applyReadReceipt(m *models.Message) {
	if bubble, ok := c.byID[m.ID]; ok {
		bubble.IsRead = m.IsRead
	}
}

// AffordancesFor reports which actions the viewer gets on a bubble's card.
// Only the DJ acts on a pending proposal; a countered one offers the client
// an edit-and-resend draft.
func (c *Conversation) AffordancesFor(b *Bubble) Affordances {
	if b.Proposal == nil {
		return Affordances{}
	}

	switch b.Proposal.Estado {
	case models.EstadoPendiente:
		isDJ := c.viewerRole == models.RoleDJ
		return Affordances{CanAccept: isDJ, CanReject: isDJ, CanCounter: isDJ}
	case models.EstadoContraoferta:
		return Affordances{CanResend: c.viewerRole == models.RoleClient}
	default:
		return Affordances{}
	}
}

// DraftFromCounter seeds a new proposal draft from a countered card so the
// client re-enters the creation flow with the agreed numbers filled in.
func DraftFromCounter(p *models.Proposal) (*models.ProposalTerms, error) {
	if p.Estado != models.EstadoContraoferta || p.MontoContraoferta == nil {
		return nil, fmt.Errorf("proposal %s has no counter-offer to resend", p.ID)
	}

	return &models.ProposalTerms{
		MontoBase:          *p.MontoContraoferta,
		HorasDuracion:      p.HorasDuracion,
		FechaEvento:        p.FechaEvento,
		HoraInicio:         p.HoraInicio,
		HoraFin:            p.HoraFin,
		UbicacionEvento:    p.UbicacionEvento,
		GenerosSolicitados: p.GenerosSolicitados,
		Detalles:           p.Detalles,
	}, nil
}
