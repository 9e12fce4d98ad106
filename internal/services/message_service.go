package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/davmoreno/djlink/internal/feed"
	"github.com/davmoreno/djlink/internal/models"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type MessageService struct {
	messageRepo models.MessageRepo
	bridge      ChangePublisher
	logger      *slog.Logger
}

func NewMessageService(messageRepo models.MessageRepo, bridge ChangePublisher, logger *slog.Logger) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		bridge:      bridge,
		logger:      logger,
	}
}

// SendText persists a plain chat bubble and fans it out to both parties.
func (ms *MessageService) SendText(ctx context.Context, senderID, receiverID uuid.UUID, content, accessToken string) (*models.Message, error) {
	if senderID == uuid.Nil || receiverID == uuid.Nil {
		return nil, fmt.Errorf("invalid sender or receiver ID")
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message content cannot be empty")
	}

	message := &models.Message{
		ID:          ulid.Make().String(),
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Content:     content,
		ContentType: models.ContentTypeText,
		CreatedAt:   time.Now(),
	}

	return ms.insertAndPublish(ctx, message, accessToken)
}

// SendProposalCard wraps a fresh proposal in a chat envelope. The snapshot in
// metadata is for rendering only; the proposals table stays authoritative.
func (ms *MessageService) SendProposalCard(ctx context.Context, proposal *models.Proposal, accessToken string) (*models.Message, error) {
	if proposal == nil {
		return nil, fmt.Errorf("proposal is nil")
	}

	message := &models.Message{
		ID:          ulid.Make().String(),
		SenderID:    proposal.ClientID,
		ReceiverID:  proposal.DJID,
		Content:     fmt.Sprintf("Propuesta para %s en %s", proposal.FechaEvento, proposal.UbicacionEvento),
		ContentType: models.ContentTypeProposal,
		Metadata: &models.MessageMetadata{
			IsProposal: true,
			Proposal:   proposal,
		},
		CreatedAt: time.Now(),
	}

	return ms.insertAndPublish(ctx, message, accessToken)
}

// SendProposalResponse carries a decision or counter-offer back over chat.
func (ms *MessageService) SendProposalResponse(ctx context.Context, proposal *models.Proposal, accessToken string) (*models.Message, error) {
	if proposal == nil {
		return nil, fmt.Errorf("proposal is nil")
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
		return nil, fmt.Errorf("proposal %s has no response to send", proposal.ID)
	}

	message := &models.Message{
		ID:          ulid.Make().String(),
		SenderID:    proposal.DJID,
		ReceiverID:  proposal.ClientID,
		Content:     content,
		ContentType: models.ContentTypeProposal,
		Metadata: &models.MessageMetadata{
			IsProposalResponse: true,
			Response:           proposal.Estado,
			Proposal:           proposal,
		},
		CreatedAt: time.Now(),
	}

	return ms.insertAndPublish(ctx, message, accessToken)
}

func (ms *MessageService) insertAndPublish(ctx context.Context, message *models.Message, accessToken string) (*models.Message, error) {
	created, err := ms.messageRepo.InsertMessage(ctx, message, accessToken)
	if err != nil {
		return nil, err
	}

	if ms.bridge != nil {
		// Fan out to both parties so every device of each user converges.
		for _, userID := range []uuid.UUID{created.SenderID, created.ReceiverID} {
			if err := ms.bridge.PublishInsert(ctx, userID, models.MessagesTable, created); err != nil {
				ms.logger.Error("failed to publish message insert", "message_id", created.ID, "user_id", userID, "error", err)
			}
		}
	}

	return created, nil
}

func (ms *MessageService) ListConversation(ctx context.Context, userID, peerID uuid.UUID, offset, limit int, accessToken string) ([]*models.Message, int, error) {
	if userID == uuid.Nil || peerID == uuid.Nil {
		return nil, 0, fmt.Errorf("invalid user or peer ID")
	}
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit")
	}
	return ms.messageRepo.ListConversation(ctx, userID, peerID, offset, limit, accessToken)
}

// BuildConversation loads the stored transcript and folds it through the feed
// reducer, producing the card states and affordances a client renders.
func (ms *MessageService) BuildConversation(ctx context.Context, viewerID uuid.UUID, viewerRole string, peerID uuid.UUID, offset, limit int, accessToken string) (*feed.Conversation, error) {
	messages, _, err := ms.ListConversation(ctx, viewerID, peerID, offset, limit, accessToken)
	if err != nil {
		return nil, err
	}

	conversation := feed.NewConversation(viewerID, viewerRole)
	conversation.Load(messages)
	return conversation, nil
}

// MarkRead flips is_read on everything the reader received from the sender
// and pushes read receipts back to the sender's devices.
func (ms *MessageService) MarkRead(ctx context.Context, readerID, senderID uuid.UUID, accessToken string) (int, error) {
	if readerID == uuid.Nil || senderID == uuid.Nil {
		return 0, fmt.Errorf("invalid reader or sender ID")
	}

	updated, err := ms.messageRepo.MarkConversationRead(ctx, readerID, senderID, accessToken)
	if err != nil {
		return 0, err
	}

	if ms.bridge != nil {
		for _, message := range updated {
			if err := ms.bridge.PublishUpdate(ctx, senderID, models.MessagesTable, message); err != nil {
				ms.logger.Error("failed to publish read receipt", "message_id", message.ID, "error", err)
			}
		}
	}

	return len(updated), nil
}
