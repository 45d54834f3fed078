package bookingapi

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
)

// Time accepts RFC 3339 as well as the zone-less ISO timestamps the booking
// API emits; zone-less values are read as UTC.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}

type airportDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

type airlineDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type flightDTO struct {
	ID             int64      `json:"id"`
	FlightNumber   string     `json:"flight_number"`
	Airline        airlineDTO `json:"airline"`
	Origin         airportDTO `json:"origin"`
	Destination    airportDTO `json:"destination"`
	DepartureTime  Time       `json:"departure_time"`
	ArrivalTime    Time       `json:"arrival_time"`
	BasePrice      float64    `json:"base_price"`
	CurrentPrice   float64    `json:"current_price"`
	PriceTrend     string     `json:"price_trend"`
	AvailableSeats int        `json:"available_seats"`
	TotalSeats     int        `json:"total_seats"`
	AircraftType   string     `json:"aircraft_type"`
}

func (f flightDTO) toDomain() domain.Flight {
	return domain.Flight{
		ID:             f.ID,
		FlightNumber:   f.FlightNumber,
		Airline:        domain.Airline{Code: f.Airline.Code, Name: f.Airline.Name},
		Origin:         domain.Airport{Code: f.Origin.Code, Name: f.Origin.Name, City: f.Origin.City},
		Destination:    domain.Airport{Code: f.Destination.Code, Name: f.Destination.Name, City: f.Destination.City},
		DepartureTime:  f.DepartureTime.Time,
		ArrivalTime:    f.ArrivalTime.Time,
		BasePrice:      f.BasePrice,
		CurrentPrice:   f.CurrentPrice,
		PriceTrend:     f.PriceTrend,
		AvailableSeats: f.AvailableSeats,
		TotalSeats:     f.TotalSeats,
		AircraftType:   f.AircraftType,
	}
}

type seatDTO struct {
	ID          int64  `json:"id"`
	SeatNumber  string `json:"seat_number"`
	SeatClass   string `json:"seat_class"`
	IsAvailable bool   `json:"is_available"`
}

func (s seatDTO) toDomain() domain.Seat {
	return domain.Seat{
		ID:         s.ID,
		SeatNumber: s.SeatNumber,
		Class:      domain.SeatClass(s.SeatClass),
		Available:  s.IsAvailable,
	}
}

type FlightDetails struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime Time   `json:"departure_time"`
	ArrivalTime   Time   `json:"arrival_time"`
}

func (d FlightDetails) ToDomain() domain.FlightDetails {
	return domain.FlightDetails{
		Origin:        d.Origin,
		Destination:   d.Destination,
		DepartureTime: d.DepartureTime.Time,
		ArrivalTime:   d.ArrivalTime.Time,
	}
}

type ReservationRequest struct {
	FlightID       int64  `json:"flight_id"`
	SeatID         int64  `json:"seat_id"`
	PassengerName  string `json:"passenger_name"`
	PassengerEmail string `json:"passenger_email"`
	PassengerPhone string `json:"passenger_phone"`
	UserID         *int64 `json:"user_id"`
}

// Reservation is the body of a 2xx POST /bookings. ID is zero when the
// server omitted it.
type Reservation struct {
	ID            int64         `json:"id"`
	PNR           string        `json:"pnr"`
	UniquePIN     string        `json:"unique_pin"`
	Status        string        `json:"status"`
	SeatNumber    string        `json:"seat_number"`
	TotalPrice    float64       `json:"total_price"`
	FlightNumber  string        `json:"flight_number"`
	PassengerName string        `json:"passenger_name"`
	BookingDate   Time          `json:"booking_date"`
	FlightDetails FlightDetails `json:"flight_details"`
}

type PaymentRequest struct {
	BookingIDs     []int64           `json:"booking_ids"`
	PaymentMethod  string            `json:"payment_method"`
	PaymentDetails map[string]string `json:"payment_details"`
}

type ConfirmedBooking struct {
	ID             int64         `json:"id"`
	PNR            string        `json:"pnr"`
	UniquePIN      string        `json:"unique_pin"`
	SeatNumber     string        `json:"seat_number"`
	TotalPrice     float64       `json:"total_price"`
	Status         string        `json:"status"`
	FlightNumber   string        `json:"flight_number"`
	PassengerName  string        `json:"passenger_name"`
	PassengerEmail string        `json:"passenger_email"`
	PassengerPhone string        `json:"passenger_phone"`
	BookingDate    Time          `json:"booking_date"`
	FlightDetails  FlightDetails `json:"flight_details"`
}

type PaymentResult struct {
	Success       bool               `json:"success"`
	Message       string             `json:"message"`
	TotalAmount   float64            `json:"total_amount"`
	PaymentMethod string             `json:"payment_method"`
	Bookings      []ConfirmedBooking `json:"bookings"`
}
