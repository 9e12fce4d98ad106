package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ContentTypeText     = "text"
	ContentTypeProposal = "proposal"
)

// MessageMetadata distinguishes a plain bubble from a proposal card. A card
// carries a snapshot of the proposal at send time; the authoritative state
// lives in the proposals table.
type MessageMetadata struct {
	IsProposal         bool      `json:"isProposal,omitempty"`
	IsProposalResponse bool      `json:"isProposalResponse,omitempty"`
	Response           string    `json:"response,omitempty"`
	Proposal           *Proposal `json:"proposal,omitempty"`
}

// Message is the chat envelope. IDs are ULIDs, so lexicographic id order is
// creation order regardless of delivery order.
type Message struct {
	ID          string           `db:"id" json:"id"`
	SenderID    uuid.UUID        `db:"sender_id" json:"sender_id"`
	ReceiverID  uuid.UUID        `db:"receiver_id" json:"receiver_id"`
	Content     string           `db:"content" json:"content"`
	ContentType string           `db:"content_type" json:"content_type"`
	Metadata    *MessageMetadata `db:"metadata" json:"metadata,omitempty"`
	IsRead      bool             `db:"is_read" json:"is_read"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// ProposalID returns the id of the embedded proposal, if any.
func (m *Message) ProposalID() (uuid.UUID, bool) {
	if m.Metadata == nil || m.Metadata.Proposal == nil {
		return uuid.Nil, false
	}
	return m.Metadata.Proposal.ID, true
}
