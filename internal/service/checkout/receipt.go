package checkout

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
)

// buildReceipt derives the receipt of a confirmed session. The caller holds
// the session lock.
func buildReceipt(s *Session, now time.Time) *domain.Receipt {
	r := &domain.Receipt{
		PaymentID:     s.payment.ID,
		FlightID:      s.batch.FlightID,
		PaymentMethod: s.payment.Method,
		TotalPaid:     s.payment.TotalAmount,
		IssuedAt:      now,
	}
	if s.passenger != nil {
		r.Passenger = *s.passenger
	}
	if s.flight != nil {
		r.Airline = s.flight.Airline.Name
		r.FlightNumber = s.flight.FlightNumber
	}

	for _, a := range s.batch.Attempts {
		if r.FlightNumber == "" {
			r.FlightNumber = a.FlightNumber
		}
		if r.FlightDetails.Origin == "" {
			r.FlightDetails = a.FlightDetails
		}
		r.Tickets = append(r.Tickets, domain.Ticket{
			BookingID:  a.BookingID,
			PNR:        a.PNR,
			UniquePIN:  a.UniquePIN,
			SeatNumber: a.SeatNumber,
			Price:      a.Price,
			QRCodeRef:  a.QRCodeRef,
		})
	}
	for _, b := range s.payment.Bookings {
		if !b.BookingDate.IsZero() {
			r.BookingDate = b.BookingDate
			break
		}
	}
	if r.BookingDate.IsZero() {
		r.BookingDate = s.payment.ResolvedAt
	}
	return r
}

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"join":  strings.Join,
	"stamp": func(t time.Time) string { return t.Format("02 Jan 2006 15:04") },
	"money": func(v float64) string { return fmt.Sprintf("INR %.2f", v) },
}).Parse(`BOOKING RECEIPT
===============
Payment:    {{.PaymentID}}
Booked on:  {{stamp .BookingDate}}

Flight:     {{.FlightNumber}}{{if .Airline}} ({{.Airline}}){{end}}
Route:      {{.FlightDetails.Origin}} -> {{.FlightDetails.Destination}}
Departure:  {{stamp .FlightDetails.DepartureTime}}
Arrival:    {{stamp .FlightDetails.ArrivalTime}}

Passenger:  {{.Passenger.Name}}
Email:      {{.Passenger.Email}}
Phone:      {{.Passenger.Phone}}

PNR(s):     {{join .PNRs ", "}}
Seats:      {{join .SeatNumbers ", "}}

Tickets
{{range .Tickets}}  {{.SeatNumber}}  PNR {{.PNR}}  PIN {{.UniquePIN}}  {{money .Price}}
    QR: {{.QRCodeRef}}
{{end}}
Payment method: {{.PaymentMethod}}
Total paid:     {{money .TotalPaid}}

Keep your PNR and PIN safe. You will need them at check-in.
`))

// RenderText returns the printable form of a receipt.
func RenderText(r *domain.Receipt) (string, error) {
	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}
