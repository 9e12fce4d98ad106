package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Negotiation states for a proposal. Transitions are one-directional per
// round: pendiente -> aceptada | rechazada | contraoferta.
const (
	EstadoPendiente    = "pendiente"
	EstadoAceptada     = "aceptada"
	EstadoRechazada    = "rechazada"
	EstadoContraoferta = "contraoferta"
)

// ComisionPlataforma is the fixed platform commission applied on top of the
// base amount quoted by the client.
const ComisionPlataforma = 0.10

const (
	FechaLayout = "2006-01-02"
	HoraLayout  = "15:04"
)

// Proposal is a negotiable offer from a client to a DJ for a priced,
// scheduled booking. Monto is the total shown to the payer, commission
// included. A counter-offer mutates the same row and bumps the round number;
// full round history lives in the negotiation history collection.
type Proposal struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	ClientID             uuid.UUID `db:"client_id" json:"client_id"`
	DJID                 uuid.UUID `db:"dj_id" json:"dj_id"`
	Monto                int       `db:"monto" json:"monto"`
	MontoContraoferta    *int      `db:"monto_contraoferta" json:"monto_contraoferta,omitempty"`
	HorasDuracion        int       `db:"horas_duracion" json:"horas_duracion"`
	Detalles             string    `db:"detalles" json:"detalles,omitempty"`
	FechaEvento          string    `db:"fecha_evento" json:"fecha_evento"`
	HoraInicio           string    `db:"hora_inicio" json:"hora_inicio"`
	HoraFin              string    `db:"hora_fin" json:"hora_fin,omitempty"`
	UbicacionEvento      string    `db:"ubicacion_evento" json:"ubicacion_evento"`
	GenerosSolicitados   []string  `db:"generos_solicitados" json:"generos_solicitados,omitempty"`
	Estado               string    `db:"estado" json:"estado"`
	EstadoRespuesta      string    `db:"estado_respuesta" json:"estado_respuesta,omitempty"`
	RondaContrapropuesta int       `db:"ronda_contrapropuesta" json:"ronda_contrapropuesta"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// ProposalTerms is what a client submits; monto_base excludes commission.
type ProposalTerms struct {
	MontoBase          int      `json:"monto_base" validate:"required,gt=0"`
	HorasDuracion      int      `json:"horas_duracion" validate:"required,gt=0"`
	FechaEvento        string   `json:"fecha_evento" validate:"required"`
	HoraInicio         string   `json:"hora_inicio" validate:"required"`
	HoraFin            string   `json:"hora_fin"`
	UbicacionEvento    string   `json:"ubicacion_evento" validate:"required"`
	GenerosSolicitados []string `json:"generos_solicitados"`
	Detalles           string   `json:"detalles"`
}

// Comision returns the platform commission for a base amount, rounded
// half away from zero (base=15 -> 2).
func Comision(montoBase int) int {
	return int(math.Round(float64(montoBase) * ComisionPlataforma))
}

// TotalConComision returns the payer total for a base amount (base=15 -> 17).
func TotalConComision(montoBase int) int {
	return int(math.Round(float64(montoBase) * (1 + ComisionPlataforma)))
}

// Validate runs the local, synchronous term checks. It must be called before
// any store call so malformed proposals never reach the network.
func (t *ProposalTerms) Validate(now time.Time) error {
	if t.MontoBase <= 0 {
		return fmt.Errorf("%w: monto_base must be greater than zero", ErrInvalidTerms)
	}
	if t.HorasDuracion <= 0 {
		return fmt.Errorf("%w: horas_duracion must be greater than zero", ErrInvalidTerms)
	}
	if strings.TrimSpace(t.UbicacionEvento) == "" {
		return fmt.Errorf("%w: ubicacion_evento is required", ErrInvalidTerms)
	}

	fecha, err := time.ParseInLocation(FechaLayout, t.FechaEvento, now.Location())
	if err != nil {
		return fmt.Errorf("%w: fecha_evento must be formatted as %s", ErrInvalidTerms, FechaLayout)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if fecha.Before(today) {
		return fmt.Errorf("%w: fecha_evento cannot be in the past", ErrInvalidTerms)
	}

	hora, err := time.Parse(HoraLayout, t.HoraInicio)
	if err != nil {
		return fmt.Errorf("%w: hora_inicio must be formatted as %s", ErrInvalidTerms, HoraLayout)
	}

	// Same-day bookings need at least one hour of lead time.
	if fecha.Equal(today) {
		start := time.Date(now.Year(), now.Month(), now.Day(), hora.Hour(), hora.Minute(), 0, 0, now.Location())
		if start.Sub(now) < time.Hour {
			return fmt.Errorf("%w: hora_inicio must be at least one hour from now for same-day events", ErrInvalidTerms)
		}
	}

	return nil
}

// MontoFinal resolves the agreed price: the counter-offer amount when one was
// made, otherwise the original total.
func (p *Proposal) MontoFinal() int {
	if p.MontoContraoferta != nil {
		return *p.MontoContraoferta
	}
	return p.Monto
}

// IsResolved reports whether the current round already received a response.
func (p *Proposal) IsResolved() bool {
	return p.Estado != EstadoPendiente
}
