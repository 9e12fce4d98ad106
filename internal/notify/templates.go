package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/davmoreno/djlink/internal/models"
)

var bookingConfirmedTmpl = template.Must(template.New("booking_confirmed").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #1f2430;">
    <h2>{{.Heading}}</h2>
    <p>{{.Intro}}</p>
    <table cellpadding="6">
      <tr><td><strong>Fecha</strong></td><td>{{.Event.Fecha}}</td></tr>
      <tr><td><strong>Hora</strong></td><td>{{.Event.HoraInicio}}{{if .Event.HoraFin}} - {{.Event.HoraFin}}{{end}}</td></tr>
      <tr><td><strong>Ubicación</strong></td><td>{{.Event.Ubicacion}}</td></tr>
      <tr><td><strong>Monto final</strong></td><td>${{.Event.MontoFinal}}</td></tr>
      {{if .Event.GenerosConfirmados}}<tr><td><strong>Géneros</strong></td><td>{{range $i, $g := .Event.GenerosConfirmados}}{{if $i}}, {{end}}{{$g}}{{end}}</td></tr>{{end}}
    </table>
    <p style="color: #6a7181; font-size: 12px;">Referencia: {{.Event.ID}}</p>
  </body>
</html>`))

type bookingConfirmedData struct {
	Heading string
	Intro   string
	Event   *models.Event
}

func bookingConfirmedSubject(role string) string {
	if role == models.RoleDJ {
		return "Nueva fecha confirmada"
	}
	return "Tu reserva está confirmada"
}

// RenderBookingConfirmed renders the confirmation email body for one
// recipient role.
func RenderBookingConfirmed(event *models.Event, role string) (string, error) {
	data := bookingConfirmedData{Event: event}
	if role == models.RoleDJ {
		data.Heading = "¡Tienes una nueva fecha!"
		data.Intro = "Un cliente confirmó tu propuesta. Estos son los detalles del evento:"
	} else {
		data.Heading = "¡Reserva confirmada!"
		data.Intro = "El DJ aceptó tu propuesta. Estos son los detalles de tu evento:"
	}

	var buf bytes.Buffer
	if err := bookingConfirmedTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute booking template: %v", err)
	}

	return buf.String(), nil
}
