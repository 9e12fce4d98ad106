package models

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

type MessageRepo interface {
	InsertMessage(ctx context.Context, message *Message, accessToken string) (*Message, error)
	ListConversation(ctx context.Context, userID, peerID uuid.UUID, offset, limit int, accessToken string) ([]*Message, int, error)
	MarkConversationRead(ctx context.Context, readerID, senderID uuid.UUID, accessToken string) ([]*Message, error)
}

func (su *SupabaseRepo) InsertMessage(ctx context.Context, message *Message, accessToken string) (*Message, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	messageData := map[string]interface{}{
		"id":           message.ID,
		"sender_id":    message.SenderID,
		"receiver_id":  message.ReceiverID,
		"content":      message.Content,
		"content_type": message.ContentType,
		"metadata":     message.Metadata,
		"is_read":      message.IsRead,
		"created_at":   message.CreatedAt,
	}

	data, _, err := client.From(MessagesTable).
		Insert(messageData, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %v", err)
	}

	var created []Message
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal created message: %v", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("no message data returned after insert")
	}

	return &created[0], nil
}

func (su *SupabaseRepo) ListConversation(ctx context.Context, userID, peerID uuid.UUID, offset, limit int, accessToken string) ([]*Message, int, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, 0, err
	}

	pair := fmt.Sprintf(
		"and(sender_id.eq.%s,receiver_id.eq.%s),and(sender_id.eq.%s,receiver_id.eq.%s)",
		userID, peerID, peerID, userID,
	)

	data, count, err := client.From(MessagesTable).
		Select("*", "exact", false).
		Or(pair, "").
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list conversation: %v", err)
	}

	var rows []Message
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal messages: %v", err)
	}

	messages := make([]*Message, 0, len(rows))
	for i := range rows {
		messages = append(messages, &rows[i])
	}

	return messages, int(count), nil
}

// MarkConversationRead flips is_read on every unread message the reader
// received from the sender and returns the affected rows so read receipts can
// be pushed to the sender's devices.
func (su *SupabaseRepo) MarkConversationRead(ctx context.Context, readerID, senderID uuid.UUID, accessToken string) ([]*Message, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(MessagesTable).
		Update(map[string]interface{}{"is_read": true}, "representation", "exact").
		Eq("receiver_id", readerID.String()).
		Eq("sender_id", senderID.String()).
		Eq("is_read", "false").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to mark conversation read: %v", err)
	}

	var rows []Message
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal read messages: %v", err)
	}

	updated := make([]*Message, 0, len(rows))
	for i := range rows {
		updated = append(updated, &rows[i])
	}

	return updated, nil
}
