package domain

import "time"

type AttemptStatus string

const (
	AttemptPending   AttemptStatus = "PENDING"
	AttemptConfirmed AttemptStatus = "CONFIRMED"
	AttemptRejected  AttemptStatus = "REJECTED"
)

type FlightDetails struct {
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
}

// ReservationAttempt is one per selected seat. Once Confirmed or Rejected it
// is never changed in place; payment confirmation produces a new batch.
type ReservationAttempt struct {
	SeatID        int64         `json:"seat_id"`
	SeatNumber    string        `json:"seat_number"`
	Passenger     Passenger     `json:"passenger"`
	Status        AttemptStatus `json:"status"`
	BookingID     int64         `json:"booking_id,omitempty"`
	PNR           string        `json:"pnr,omitempty"`
	UniquePIN     string        `json:"unique_pin,omitempty"`
	QRCodeRef     string        `json:"qr_code_ref,omitempty"`
	Price         float64       `json:"price"`
	FlightNumber  string        `json:"flight_number,omitempty"`
	FlightDetails FlightDetails `json:"flight_details"`
	Failure       *SeatFailure  `json:"failure,omitempty"`
}

func (a ReservationAttempt) Confirmed() bool {
	return a.Status == AttemptConfirmed && a.BookingID != 0
}

// ReservationBatch holds the attempts created for one checkout submission,
// in selection order.
type ReservationBatch struct {
	FlightID    int64                `json:"flight_id"`
	Attempts    []ReservationAttempt `json:"attempts"`
	SubmittedAt time.Time            `json:"submitted_at"`
}

// FullySuccessful reports whether every attempt is Confirmed and carries a
// server-issued booking identity.
func (b *ReservationBatch) FullySuccessful() bool {
	if b == nil || len(b.Attempts) == 0 {
		return false
	}
	for _, a := range b.Attempts {
		if !a.Confirmed() {
			return false
		}
	}
	return true
}

func (b *ReservationBatch) Failures() []SeatFailure {
	var failures []SeatFailure
	for _, a := range b.Attempts {
		if a.Failure != nil {
			failures = append(failures, *a.Failure)
		}
	}
	return failures
}

func (b *ReservationBatch) BookingIDs() []int64 {
	ids := make([]int64, 0, len(b.Attempts))
	for _, a := range b.Attempts {
		if a.BookingID != 0 {
			ids = append(ids, a.BookingID)
		}
	}
	return ids
}

func (b *ReservationBatch) SeatNumbers() []string {
	numbers := make([]string, 0, len(b.Attempts))
	for _, a := range b.Attempts {
		numbers = append(numbers, a.SeatNumber)
	}
	return numbers
}

func (b *ReservationBatch) TotalPrice() float64 {
	var total float64
	for _, a := range b.Attempts {
		total += a.Price
	}
	return total
}

// WithConfirmations returns a copy of the batch where every attempt that has
// a matching confirmed booking takes its PNR, PIN and QR reference.
func (b *ReservationBatch) WithConfirmations(bookings []ConfirmedBooking) *ReservationBatch {
	byID := make(map[int64]ConfirmedBooking, len(bookings))
	for _, cb := range bookings {
		byID[cb.BookingID] = cb
	}

	out := &ReservationBatch{
		FlightID:    b.FlightID,
		SubmittedAt: b.SubmittedAt,
		Attempts:    make([]ReservationAttempt, len(b.Attempts)),
	}
	for i, a := range b.Attempts {
		if cb, ok := byID[a.BookingID]; ok {
			a.PNR = cb.PNR
			a.UniquePIN = cb.UniquePIN
			a.QRCodeRef = cb.QRCodeRef
			if cb.TotalPrice > 0 {
				a.Price = cb.TotalPrice
			}
		}
		out.Attempts[i] = a
	}
	return out
}
