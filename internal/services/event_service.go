package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/davmoreno/djlink/internal/models"
	"github.com/google/uuid"
)

type EventService struct {
	eventRepo models.EventRepo
	logger    *slog.Logger
}

func NewEventService(eventRepo models.EventRepo, logger *slog.Logger) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		logger:    logger,
	}
}

// Materialize creates the booking event for an accepted proposal. The bool
// reports whether a new event was inserted; a pre-existing event for the
// proposal id is the idempotent no-op case. The check-then-insert is not
// atomic, so a duplicate-key insert from a racing acceptance is also folded
// into the no-op path.
func (es *EventService) Materialize(ctx context.Context, proposal *models.Proposal, accessToken string) (*models.Event, bool, error) {
	if proposal == nil {
		return nil, false, fmt.Errorf("proposal is nil")
	}

	existing, err := es.eventRepo.GetEventByProposalID(ctx, proposal.ID, accessToken)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrEventNotFound) {
		return nil, false, err
	}

	if strings.TrimSpace(proposal.UbicacionEvento) == "" {
		es.logger.Warn("skipping event materialization: proposal has no location",
			"proposal_id", proposal.ID,
		)
		return nil, false, models.ErrMissingLocation
	}

	event := &models.Event{
		ID:                 uuid.New(),
		ProposalID:         proposal.ID,
		ClientID:           proposal.ClientID,
		DJID:               proposal.DJID,
		MontoFinal:         proposal.MontoFinal(),
		Fecha:              proposal.FechaEvento,
		HoraInicio:         proposal.HoraInicio,
		HoraFin:            proposal.HoraFin,
		Ubicacion:          proposal.UbicacionEvento,
		GenerosConfirmados: proposal.GenerosSolicitados,
		Descripcion:        proposal.Detalles,
		CreatedAt:          time.Now(),
	}

	created, err := es.eventRepo.CreateEvent(ctx, event, accessToken)
	if err != nil {
		if errors.Is(err, models.ErrEventExists) {
			winner, getErr := es.eventRepo.GetEventByProposalID(ctx, proposal.ID, accessToken)
			if getErr != nil {
				return nil, false, getErr
			}
			return winner, false, nil
		}
		return nil, false, err
	}

	return created, true, nil
}

func (es *EventService) GetEventByProposal(ctx context.Context, proposalID uuid.UUID, accessToken string) (*models.Event, error) {
	if proposalID == uuid.Nil {
		return nil, fmt.Errorf("invalid proposal ID")
	}
	return es.eventRepo.GetEventByProposalID(ctx, proposalID, accessToken)
}

func (es *EventService) ListEventsForUser(ctx context.Context, userID uuid.UUID, role string, offset, limit int, accessToken string) ([]*models.Event, int, error) {
	if userID == uuid.Nil {
		return nil, 0, fmt.Errorf("invalid user ID")
	}
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit")
	}
	return es.eventRepo.ListEventsForUser(ctx, userID, role, offset, limit, accessToken)
}
