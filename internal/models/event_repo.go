package models

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event, accessToken string) (*Event, error)
	GetEventByProposalID(ctx context.Context, proposalID uuid.UUID, accessToken string) (*Event, error)
	ListEventsForUser(ctx context.Context, userID uuid.UUID, role string, offset, limit int, accessToken string) ([]*Event, int, error)
}

func (su *SupabaseRepo) CreateEvent(ctx context.Context, event *Event, accessToken string) (*Event, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	eventData := map[string]interface{}{
		"id":                  event.ID,
		"proposal_id":         event.ProposalID,
		"client_id":           event.ClientID,
		"dj_id":               event.DJID,
		"monto_final":         event.MontoFinal,
		"fecha":               event.Fecha,
		"hora_inicio":         event.HoraInicio,
		"hora_fin":            event.HoraFin,
		"ubicacion":           event.Ubicacion,
		"generos_confirmados": event.GenerosConfirmados,
		"descripcion":         event.Descripcion,
		"created_at":          event.CreatedAt,
	}

	data, _, err := client.From(EventsTable).
		Insert(eventData, false, "", "representation", "exact").
		Execute()
	if err != nil {
		// The unique key on proposal_id is the backstop for racing
		// acceptances; surface it as the duplicate it is.
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
			return nil, fmt.Errorf("%w: %v", ErrEventExists, err)
		}
		return nil, fmt.Errorf("failed to create event: %v", err)
	}

	var created []Event
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal created event: %v", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("no event data returned after insert")
	}

	return &created[0], nil
}

func (su *SupabaseRepo) GetEventByProposalID(ctx context.Context, proposalID uuid.UUID, accessToken string) (*Event, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(EventsTable).
		Select("*", "", false).
		Eq("proposal_id", proposalID.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get event by proposal: %v", err)
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event rows: %v", err)
	}
	if len(events) == 0 {
		return nil, ErrEventNotFound
	}

	return &events[0], nil
}

func (su *SupabaseRepo) ListEventsForUser(ctx context.Context, userID uuid.UUID, role string, offset, limit int, accessToken string) ([]*Event, int, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, 0, err
	}

	column := "client_id"
	if role == "dj" {
		column = "dj_id"
	}

	data, count, err := client.From(EventsTable).
		Select("*", "exact", false).
		Eq(column, userID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %v", err)
	}

	var rows []Event
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal events: %v", err)
	}

	events := make([]*Event, 0, len(rows))
	for i := range rows {
		events = append(events, &rows[i])
	}

	return events, int(count), nil
}
