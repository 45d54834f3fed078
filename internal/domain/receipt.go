package domain

import "time"

type Ticket struct {
	BookingID  int64   `json:"booking_id"`
	PNR        string  `json:"pnr"`
	UniquePIN  string  `json:"unique_pin"`
	SeatNumber string  `json:"seat_number"`
	Price      float64 `json:"price"`
	QRCodeRef  string  `json:"qr_code_ref"`
}

// Receipt is the confirmation artifact of a paid checkout.
type Receipt struct {
	PaymentID     string        `json:"payment_id"`
	FlightID      int64         `json:"flight_id"`
	FlightNumber  string        `json:"flight_number"`
	Airline       string        `json:"airline,omitempty"`
	FlightDetails FlightDetails `json:"flight_details"`
	Passenger     Passenger     `json:"passenger"`
	Tickets       []Ticket      `json:"tickets"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	TotalPaid     float64       `json:"total_paid"`
	BookingDate   time.Time     `json:"booking_date"`
	IssuedAt      time.Time     `json:"issued_at"`
}

func (r *Receipt) PNRs() []string {
	out := make([]string, 0, len(r.Tickets))
	for _, t := range r.Tickets {
		out = append(out, t.PNR)
	}
	return out
}

func (r *Receipt) SeatNumbers() []string {
	out := make([]string, 0, len(r.Tickets))
	for _, t := range r.Tickets {
		out = append(out, t.SeatNumber)
	}
	return out
}
