package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "card"
	PaymentMethodUPI        PaymentMethod = "upi"
	PaymentMethodNetBanking PaymentMethod = "netbanking"
	PaymentMethodWallet     PaymentMethod = "wallet"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodNetBanking, PaymentMethodWallet:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentSucceeded PaymentStatus = "SUCCEEDED"
	PaymentFailed    PaymentStatus = "FAILED"
	// PaymentAmbiguous means no definitive answer arrived; the booking status
	// has to be checked before paying again.
	PaymentAmbiguous PaymentStatus = "AMBIGUOUS"
)

type ConfirmedBooking struct {
	BookingID      int64         `json:"id"`
	PNR            string        `json:"pnr"`
	UniquePIN      string        `json:"unique_pin"`
	SeatNumber     string        `json:"seat_number"`
	TotalPrice     float64       `json:"total_price"`
	Status         string        `json:"status"`
	BookingDate    time.Time     `json:"booking_date"`
	FlightNumber   string        `json:"flight_number"`
	PassengerName  string        `json:"passenger_name"`
	PassengerEmail string        `json:"passenger_email"`
	PassengerPhone string        `json:"passenger_phone"`
	FlightDetails  FlightDetails `json:"flight_details"`
	QRCodeRef      string        `json:"qr_code_ref"`
}

type PaymentTransaction struct {
	ID          string             `json:"id"`
	BookingIDs  []int64            `json:"booking_ids"`
	Method      PaymentMethod      `json:"payment_method"`
	Status      PaymentStatus      `json:"status"`
	Bookings    []ConfirmedBooking `json:"bookings,omitempty"`
	TotalAmount float64            `json:"total_amount"`
	Reason      string             `json:"reason,omitempty"`
	SubmittedAt time.Time          `json:"submitted_at"`
	ResolvedAt  time.Time          `json:"resolved_at"`
}
