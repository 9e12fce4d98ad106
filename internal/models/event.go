package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is the confirmed booking materialized exactly once from an accepted
// proposal. ProposalID is unique in the store; the subsystem never mutates an
// event after creation.
type Event struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	ProposalID         uuid.UUID `db:"proposal_id" json:"proposal_id"`
	ClientID           uuid.UUID `db:"client_id" json:"client_id"`
	DJID               uuid.UUID `db:"dj_id" json:"dj_id"`
	MontoFinal         int       `db:"monto_final" json:"monto_final"`
	Fecha              string    `db:"fecha" json:"fecha"`
	HoraInicio         string    `db:"hora_inicio" json:"hora_inicio"`
	HoraFin            string    `db:"hora_fin" json:"hora_fin,omitempty"`
	Ubicacion          string    `db:"ubicacion" json:"ubicacion"`
	GenerosConfirmados []string  `db:"generos_confirmados" json:"generos_confirmados,omitempty"`
	Descripcion        string    `db:"descripcion" json:"descripcion,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
