package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/davmoreno/djlink/internal/models"
	"github.com/google/uuid"
)

// ChangePublisher pushes row changes onto the realtime bridge so subscribed
// devices can fold them into their local transcript.
type ChangePublisher interface {
	PublishInsert(ctx context.Context, userID uuid.UUID, table string, row interface{}) error
	PublishUpdate(ctx context.Context, userID uuid.UUID, table string, row interface{}) error
}

// BookingNotifier queues transactional emails once a booking exists.
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, event *models.Event) error
}

// ProposalService owns the negotiation lifecycle: create, respond, counter,
// and the accept-side materialization of a booking event.
type ProposalService struct {
	proposalRepo models.ProposalRepo
	historyRepo  models.NegotiationHistoryRepo
	events       *EventService
	messages     *MessageService
	bridge       ChangePublisher
	notifier     BookingNotifier
	logger       *slog.Logger
}

func NewProposalService(
	proposalRepo models.ProposalRepo,
	historyRepo models.NegotiationHistoryRepo,
	events *EventService,
	messages *MessageService,
	bridge ChangePublisher,
	notifier BookingNotifier,
	logger *slog.Logger,
) *ProposalService {
	return &ProposalService{
		proposalRepo: proposalRepo,
		historyRepo:  historyRepo,
		events:       events,
		messages:     messages,
		bridge:       bridge,
		notifier:     notifier,
		logger:       logger,
	}
}

// CreateProposal validates terms locally, computes the commission-inclusive
// total, and persists a pendiente proposal. Role comes in as an explicit
// parameter so the "only clients propose" rule is enforced here rather than
// read from ambient state.
func (ps *ProposalService) CreateProposal(ctx context.Context, clientID, djID uuid.UUID, role string, terms *models.ProposalTerms, accessToken string) (*models.Proposal, error) {
	if clientID == uuid.Nil || djID == uuid.Nil {
		return nil, fmt.Errorf("invalid client or dj ID")
	}
	if role != models.RoleClient {
		return nil, fmt.Errorf("only clients can create proposals")
	}
	if err := models.Validate.Struct(terms); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidTerms, err)
	}
	if err := terms.Validate(time.Now()); err != nil {
		return nil, err
	}

	now := time.Now()
	proposal := &models.Proposal{
		ID:                   uuid.New(),
		ClientID:             clientID,
		DJID:                 djID,
		Monto:                models.TotalConComision(terms.MontoBase),
		HorasDuracion:        terms.HorasDuracion,
		Detalles:             terms.Detalles,
		FechaEvento:          terms.FechaEvento,
		HoraInicio:           terms.HoraInicio,
		HoraFin:              terms.HoraFin,
		UbicacionEvento:      terms.UbicacionEvento,
		GenerosSolicitados:   terms.GenerosSolicitados,
		Estado:               models.EstadoPendiente,
		RondaContrapropuesta: 0,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	created, err := ps.proposalRepo.CreateProposal(ctx, proposal, accessToken)
	if err != nil {
		return nil, err
	}

	ps.appendRound(ctx, created, models.RoleClient)

	// The proposal card travels over chat; losing it is survivable because
	// every client rebuilds the transcript from the store on load.
	if ps.messages != nil {
		if _, err := ps.messages.SendProposalCard(ctx, created, accessToken); err != nil {
			ps.logger.Error("failed to send proposal card", "proposal_id", created.ID, "error", err)
		}
	}

	ps.publishInsert(ctx, created)

	return created, nil
}

// Respond applies aceptada or rechazada to a pendiente proposal. Acceptance
// triggers event materialization synchronously but best effort: a failure is
// logged and the acceptance stands.
func (ps *ProposalService) Respond(ctx context.Context, proposalID uuid.UUID, decision, role, accessToken string) (*models.Proposal, error) {
	if proposalID == uuid.Nil {
		return nil, fmt.Errorf("invalid proposal ID")
	}
	if decision != models.EstadoAceptada && decision != models.EstadoRechazada {
		return nil, fmt.Errorf("decision must be %s or %s", models.EstadoAceptada, models.EstadoRechazada)
	}
	if role != models.RoleDJ {
		return nil, fmt.Errorf("only DJs can respond to proposals")
	}

	proposal, err := ps.proposalRepo.ResolveProposal(ctx, proposalID, decision, accessToken)
	if err != nil {
		return nil, err
	}

	ps.appendRound(ctx, proposal, models.RoleDJ)

	if ps.messages != nil {
		if _, err := ps.messages.SendProposalResponse(ctx, proposal, accessToken); err != nil {
			ps.logger.Error("failed to send proposal response message", "proposal_id", proposal.ID, "error", err)
		}
	}

	ps.publishUpdate(ctx, proposal)

	if decision == models.EstadoAceptada {
		event, createdNew, err := ps.events.Materialize(ctx, proposal, accessToken)
		if err != nil {
			ps.logger.Error("event materialization failed after acceptance",
				"proposal_id", proposal.ID,
				"error", err,
			)
		} else if createdNew && ps.notifier != nil {
			if err := ps.notifier.BookingConfirmed(ctx, event); err != nil {
				ps.logger.Error("failed to queue booking confirmation",
					"event_id", event.ID,
					"error", err,
				)
			}
		}
	}

	return proposal, nil
}

// Counter opens the next negotiation round on the same proposal row and
// records the round in the history collection.
func (ps *ProposalService) Counter(ctx context.Context, proposalID uuid.UUID, newAmount int, role, accessToken string) (*models.Proposal, error) {
	if proposalID == uuid.Nil {
		return nil, fmt.Errorf("invalid proposal ID")
	}
	if newAmount <= 0 {
		return nil, fmt.Errorf("%w: counter amount must be greater than zero", models.ErrInvalidTerms)
	}
	if role != models.RoleDJ {
		return nil, fmt.Errorf("only DJs can counter proposals")
	}

	current, err := ps.proposalRepo.GetProposal(ctx, proposalID, accessToken)
	if err != nil {
		return nil, err
	}
	if current.IsResolved() {
		return nil, models.ErrAlreadyResolved
	}

	proposal, err := ps.proposalRepo.CounterProposal(ctx, proposalID, newAmount, current.RondaContrapropuesta+1, accessToken)
	if err != nil {
		return nil, err
	}

	ps.appendRound(ctx, proposal, models.RoleDJ)

	if ps.messages != nil {
		if _, err := ps.messages.SendProposalResponse(ctx, proposal, accessToken); err != nil {
			ps.logger.Error("failed to send counter-offer message", "proposal_id", proposal.ID, "error", err)
		}
	}

	ps.publishUpdate(ctx, proposal)

	return proposal, nil
}

func (ps *ProposalService) GetProposal(ctx context.Context, proposalID uuid.UUID, accessToken string) (*models.Proposal, error) {
	if proposalID == uuid.Nil {
		return nil, fmt.Errorf("invalid proposal ID")
	}
	return ps.proposalRepo.GetProposal(ctx, proposalID, accessToken)
}

func (ps *ProposalService) ListProposalsForUser(ctx context.Context, userID uuid.UUID, role string, offset, limit int, accessToken string) ([]*models.Proposal, int, error) {
	if userID == uuid.Nil {
		return nil, 0, fmt.Errorf("invalid user ID")
	}
	if offset < 0 || limit <= 0 {
		return nil, 0, fmt.Errorf("invalid offset or limit")
	}
	return ps.proposalRepo.ListProposalsForUser(ctx, userID, role, offset, limit, accessToken)
}

func (ps *ProposalService) GetHistory(ctx context.Context, proposalID uuid.UUID) (*models.NegotiationHistory, error) {
	if proposalID == uuid.Nil {
		return nil, fmt.Errorf("invalid proposal ID")
	}
	return ps.historyRepo.GetHistory(ctx, proposalID)
}

func (ps *ProposalService) appendRound(ctx context.Context, p *models.Proposal, actor string) {
	if ps.historyRepo == nil {
		return
	}
	round := models.RoundTerms{
		Ronda:             p.RondaContrapropuesta,
		Monto:             p.Monto,
		MontoContraoferta: p.MontoContraoferta,
		Actor:             actor,
		EstadoResultante:  p.Estado,
		At:                time.Now(),
	}
	if _, err := ps.historyRepo.AppendRound(ctx, p.ID, round); err != nil {
		ps.logger.Error("failed to append negotiation round", "proposal_id", p.ID, "error", err)
	}
}

func (ps *ProposalService) publishInsert(ctx context.Context, p *models.Proposal) {
	if ps.bridge == nil {
		return
	}
	for _, userID := range []uuid.UUID{p.ClientID, p.DJID} {
		if err := ps.bridge.PublishInsert(ctx, userID, models.ProposalsTable, p); err != nil {
			ps.logger.Error("failed to publish proposal insert", "proposal_id", p.ID, "user_id", userID, "error", err)
		}
	}
}

func (ps *ProposalService) publishUpdate(ctx context.Context, p *models.Proposal) {
	if ps.bridge == nil {
		return
	}
	for _, userID := range []uuid.UUID{p.ClientID, p.DJID} {
		if err := ps.bridge.PublishUpdate(ctx, userID, models.ProposalsTable, p); err != nil {
			ps.logger.Error("failed to publish proposal update", "proposal_id", p.ID, "user_id", userID, "error", err)
		}
	}
}
