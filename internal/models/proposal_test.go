package models

import (
	"errors"
	"testing"
	"time"
)

func TestComisionRounding(t *testing.T) {
	cases := []struct {
		base     int
		comision int
		total    int
	}{
		{15, 2, 17},
		{50000, 5000, 55000},
		{100, 10, 110},
		{1, 0, 1},
		{25, 3, 28},
	}

	for _, tc := range cases {
		if got := Comision(tc.base); got != tc.comision {
			t.Errorf("Comision(%d) = %d, want %d", tc.base, got, tc.comision)
		}
		if got := TotalConComision(tc.base); got != tc.total {
			t.Errorf("TotalConComision(%d) = %d, want %d", tc.base, got, tc.total)
		}
	}
}

func validTerms(now time.Time) *ProposalTerms {
	return &ProposalTerms{
		MontoBase:       50000,
		HorasDuracion:   4,
		FechaEvento:     now.AddDate(0, 0, 7).Format(FechaLayout),
		HoraInicio:      "21:00",
		HoraFin:         "01:00",
		UbicacionEvento: "Club Nebula, Bogota",
	}
}

func TestTermsValidateAccepts(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if err := validTerms(now).Validate(now); err != nil {
		t.Fatalf("expected valid terms, got %v", err)
	}
}

func TestTermsValidateRejectsNonPositiveAmount(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	terms := validTerms(now)
	terms.MontoBase = 0

	err := terms.Validate(now)
	if !errors.Is(err, ErrInvalidTerms) {
		t.Fatalf("expected ErrInvalidTerms, got %v", err)
	}
}

func TestTermsValidateRejectsNonPositiveDuration(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	terms := validTerms(now)
	terms.HorasDuracion = -1

	if err := terms.Validate(now); !errors.Is(err, ErrInvalidTerms) {
		t.Fatalf("expected ErrInvalidTerms, got %v", err)
	}
}

func TestTermsValidateRejectsBlankLocation(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	terms := validTerms(now)
	terms.UbicacionEvento = "   "

	if err := terms.Validate(now); !errors.Is(err, ErrInvalidTerms) {
		t.Fatalf("expected ErrInvalidTerms for blank location, got %v", err)
	}
}

func TestTermsValidateRejectsPastDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	terms := validTerms(now)
	terms.FechaEvento = "2026-03-09"

	if err := terms.Validate(now); !errors.Is(err, ErrInvalidTerms) {
		t.Fatalf("expected ErrInvalidTerms for past date, got %v", err)
	}
}

func TestTermsValidateRejectsMalformedDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	terms := validTerms(now)
	terms.FechaEvento = "10/03/2026"

	if err := terms.Validate(now); !errors.Is(err, ErrInvalidTerms) {
		t.Fatalf("expected ErrInvalidTerms for malformed date, got %v", err)
	}
}

func TestTermsValidateSameDayLeadTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 30, 0, 0, time.UTC)

	terms := validTerms(now)
	terms.FechaEvento = "2026-03-10"
	terms.HoraInicio = "21:00" // 30 minutes away
	if err := terms.Validate(now); !errors.Is(err, ErrInvalidTerms) {
		t.Fatalf("expected ErrInvalidTerms for under one hour lead, got %v", err)
	}

	terms.HoraInicio = "22:00" // 90 minutes away
	if err := terms.Validate(now); err != nil {
		t.Fatalf("expected same-day booking with enough lead to pass, got %v", err)
	}
}

func TestMontoFinalPrefersCounterOffer(t *testing.T) {
	p := &Proposal{Monto: 55000}
	if got := p.MontoFinal(); got != 55000 {
		t.Fatalf("MontoFinal without counter = %d, want 55000", got)
	}

	counter := 48000
	p.MontoContraoferta = &counter
	if got := p.MontoFinal(); got != 48000 {
		t.Fatalf("MontoFinal with counter = %d, want 48000", got)
	}
}

func TestIsResolved(t *testing.T) {
	p := &Proposal{Estado: EstadoPendiente}
	if p.IsResolved() {
		t.Fatal("pendiente proposal reported as resolved")
	}

	for _, estado := range []string{EstadoAceptada, EstadoRechazada, EstadoContraoferta} {
		p.Estado = estado
		if !p.IsResolved() {
			t.Fatalf("%s proposal reported as unresolved", estado)
		}
	}
}
