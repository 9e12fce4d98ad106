// Package realtime fans row-change events out to subscribed clients over
// Redis pub/sub. Delivery is at-least-once and unordered; consumers are
// expected to deduplicate by row id.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
)

// Change is one row mutation as delivered to a client. Row holds the full row
// encoded as JSON; Table says how to decode it.
type Change struct {
	Table string          `json:"table"`
	Type  string          `json:"type"`
	Row   json.RawMessage `json:"row"`
	At    time.Time       `json:"at"`
}

func insertChannel(userID uuid.UUID) string {
	return fmt.Sprintf("bridge:%s:insert", userID)
}

func updateChannel(userID uuid.UUID) string {
	return fmt.Sprintf("bridge:%s:update", userID)
}

// Publisher pushes row changes to every device a user has subscribed.
type Publisher struct {
	client *redis.Client
	logger *slog.Logger
}

func NewPublisher(client *redis.Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) publish(ctx context.Context, channel, table, changeType string, row interface{}) error {
	rowBytes, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal row change: %v", err)
	}

	change := Change{
		Table: table,
		Type:  changeType,
		Row:   rowBytes,
		At:    time.Now(),
	}

	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %v", err)
	}

	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %v", err)
	}
	return nil
}

func (p *Publisher) PublishInsert(ctx context.Context, userID uuid.UUID, table string, row interface{}) error {
	return p.publish(ctx, insertChannel(userID), table, ChangeInsert, row)
}

func (p *Publisher) PublishUpdate(ctx context.Context, userID uuid.UUID, table string, row interface{}) error {
	return p.publish(ctx, updateChannel(userID), table, ChangeUpdate, row)
}

// Subscriber delivers a user's row changes to callbacks until unsubscribed.
type Subscriber struct {
	client *redis.Client
	logger *slog.Logger
}

func NewSubscriber(client *redis.Client, logger *slog.Logger) *Subscriber {
	return &Subscriber{client: client, logger: logger}
}

// Subscribe attaches onInsert/onUpdate to the user's channels and returns the
// teardown function. Teardown closes the pubsub connection and the delivery
// goroutine exits when the message channel drains.
func (s *Subscriber) Subscribe(ctx context.Context, userID uuid.UUID, onInsert, onUpdate func(Change)) (func(), error) {
	insertCh := insertChannel(userID)
	updateCh := updateChannel(userID)

	pubsub := s.client.Subscribe(ctx, insertCh, updateCh)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe for user %s: %v", userID, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				s.logger.Error("dropping malformed bridge payload",
					"channel", msg.Channel,
					"error", err,
				)
				continue
			}

			switch msg.Channel {
			case insertCh:
				if onInsert != nil {
					onInsert(change)
				}
			case updateCh:
				if onUpdate != nil {
					onUpdate(change)
				}
			}
		}
	}()

	unsubscribe := func() {
		if err := pubsub.Close(); err != nil {
			s.logger.Error("failed to close bridge subscription", "user_id", userID, "error", err)
		}
	}

	return unsubscribe, nil
}
