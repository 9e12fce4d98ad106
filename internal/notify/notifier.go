// Package notify queues transactional email jobs for a downstream mailer
// worker. Publishing is best effort: a lost notification never blocks or
// rolls back a booking.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/davmoreno/djlink/internal/models"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultQueueName = "booking-emails"

// EmailJob is the payload the mailer worker consumes.
type EmailJob struct {
	EventID     uuid.UUID `json:"event_id"`
	ProposalID  uuid.UUID `json:"proposal_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Subject     string    `json:"subject"`
	HTML        string    `json:"html"`
	QueuedAt    time.Time `json:"queued_at"`
}

type Notifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

func NewNotifier(conn *amqp.Connection, queueName string, logger *slog.Logger) (*Notifier, error) {
	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queue, err := channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Notifier{
		conn:    conn,
		channel: channel,
		queue:   queue,
		logger:  logger,
	}, nil
}

// BookingConfirmed queues the confirmation email for both parties.
func (n *Notifier) BookingConfirmed(ctx context.Context, event *models.Event) error {
	recipients := []struct {
		id   uuid.UUID
		role string
	}{
		{event.ClientID, models.RoleClient},
		{event.DJID, models.RoleDJ},
	}

	for _, r := range recipients {
		html, err := RenderBookingConfirmed(event, r.role)
		if err != nil {
			return fmt.Errorf("failed to render confirmation email: %v", err)
		}

		job := EmailJob{
			EventID:     event.ID,
			ProposalID:  event.ProposalID,
			RecipientID: r.id,
			Subject:     bookingConfirmedSubject(r.role),
			HTML:        html,
			QueuedAt:    time.Now(),
		}

		if err := n.publish(ctx, job); err != nil {
			return err
		}
	}

	return nil
}

func (n *Notifier) publish(ctx context.Context, job EmailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal email job: %w", err)
	}

	err = n.channel.PublishWithContext(
		ctx,
		"",           // exchange
		n.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish email job: %w", err)
	}

	n.logger.Info("queued booking email",
		"event_id", job.EventID,
		"recipient_id", job.RecipientID,
	)
	return nil
}

func (n *Notifier) Close() error {
	if n.channel != nil {
		return n.channel.Close()
	}
	return nil
}
