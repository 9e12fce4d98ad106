package models

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
)

type ProposalRepo interface {
	CreateProposal(ctx context.Context, proposal *Proposal, accessToken string) (*Proposal, error)
	GetProposal(ctx context.Context, id uuid.UUID, accessToken string) (*Proposal, error)
	ListProposalsForUser(ctx context.Context, userID uuid.UUID, role string, offset, limit int, accessToken string) ([]*Proposal, int, error)
	ResolveProposal(ctx context.Context, id uuid.UUID, decision string, accessToken string) (*Proposal, error)
	CounterProposal(ctx context.Context, id uuid.UUID, newAmount, newRound int, accessToken string) (*Proposal, error)
}

func (su *SupabaseRepo) CreateProposal(ctx context.Context, proposal *Proposal, accessToken string) (*Proposal, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	proposalData := map[string]interface{}{
		"id":                    proposal.ID,
		"client_id":             proposal.ClientID,
		"dj_id":                 proposal.DJID,
		"monto":                 proposal.Monto,
		"horas_duracion":        proposal.HorasDuracion,
		"detalles":              proposal.Detalles,
		"fecha_evento":          proposal.FechaEvento,
		"hora_inicio":           proposal.HoraInicio,
		"hora_fin":              proposal.HoraFin,
		"ubicacion_evento":      proposal.UbicacionEvento,
		"generos_solicitados":   proposal.GenerosSolicitados,
		"estado":                proposal.Estado,
		"ronda_contrapropuesta": proposal.RondaContrapropuesta,
		"created_at":            proposal.CreatedAt,
		"updated_at":            proposal.UpdatedAt,
	}

	data, _, err := client.From(ProposalsTable).
		Insert(proposalData, false, "", "representation", "exact").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to create proposal: %v", err)
	}

	var created []Proposal
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal created proposal: %v", err)
	}
	if len(created) == 0 {
		return nil, fmt.Errorf("no proposal data returned after insert")
	}

	return &created[0], nil
}

func (su *SupabaseRepo) GetProposal(ctx context.Context, id uuid.UUID, accessToken string) (*Proposal, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	data, _, err := client.From(ProposalsTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %v", err)
	}

	var proposals []Proposal
	if err := json.Unmarshal(data, &proposals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal proposal rows: %v", err)
	}
	if len(proposals) == 0 {
		return nil, ErrProposalNotFound
	}

	return &proposals[0], nil
}

func (su *SupabaseRepo) ListProposalsForUser(ctx context.Context, userID uuid.UUID, role string, offset, limit int, accessToken string) ([]*Proposal, int, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, 0, err
	}

	column := "client_id"
	if role == "dj" {
		column = "dj_id"
	}

	data, count, err := client.From(ProposalsTable).
		Select("*", "exact", false).
		Eq(column, userID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Range(offset, offset+limit-1, "").
		Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list proposals: %v", err)
	}

	var rows []Proposal
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal proposals: %v", err)
	}

	proposals := make([]*Proposal, 0, len(rows))
	for i := range rows {
		proposals = append(proposals, &rows[i])
	}

	return proposals, int(count), nil
}

// ResolveProposal applies aceptada/rechazada with a conditional update: the
// row only changes while estado is still pendiente, so a racing second
// decision loses at the store instead of overwriting the recorded outcome.
func (su *SupabaseRepo) ResolveProposal(ctx context.Context, id uuid.UUID, decision string, accessToken string) (*Proposal, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	update := map[string]interface{}{
		"estado":           decision,
		"estado_respuesta": decision,
		"updated_at":       time.Now(),
	}

	data, _, err := client.From(ProposalsTable).
		Update(update, "representation", "exact").
		Eq("id", id.String()).
		Eq("estado", EstadoPendiente).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve proposal: %v", err)
	}

	var updated []Proposal
	if err := json.Unmarshal(data, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resolved proposal: %v", err)
	}

	if len(updated) == 0 {
		// Nothing matched the pendiente filter; distinguish a missing row
		// from one that was already resolved.
		current, getErr := su.GetProposal(ctx, id, accessToken)
		if getErr != nil {
			return nil, getErr
		}
		if current.IsResolved() {
			return nil, ErrAlreadyResolved
		}
		return nil, fmt.Errorf("proposal %s was not updated", id)
	}

	return &updated[0], nil
}

// CounterProposal opens a new negotiation round on the same row.
func (su *SupabaseRepo) CounterProposal(ctx context.Context, id uuid.UUID, newAmount, newRound int, accessToken string) (*Proposal, error) {
	client, err := su.clientFor(accessToken)
	if err != nil {
		return nil, err
	}

	update := map[string]interface{}{
		"estado":                EstadoContraoferta,
		"monto_contraoferta":    newAmount,
		"ronda_contrapropuesta": newRound,
		"updated_at":            time.Now(),
	}

	data, _, err := client.From(ProposalsTable).
		Update(update, "representation", "exact").
		Eq("id", id.String()).
		Eq("estado", EstadoPendiente).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to counter proposal: %v", err)
	}

	var updated []Proposal
	if err := json.Unmarshal(data, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal countered proposal: %v", err)
	}

	if len(updated) == 0 {
		current, getErr := su.GetProposal(ctx, id, accessToken)
		if getErr != nil {
			return nil, getErr
		}
		if current.IsResolved() {
			return nil, ErrAlreadyResolved
		}
		return nil, fmt.Errorf("proposal %s was not updated", id)
	}

	return &updated[0], nil
}
