package domain

import "time"

type Airport struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Flight is immutable for the duration of a checkout session.
type Flight struct {
	ID             int64     `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	Airline        Airline   `json:"airline"`
	Origin         Airport   `json:"origin"`
	Destination    Airport   `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	BasePrice      float64   `json:"base_price"`
	CurrentPrice   float64   `json:"current_price"`
	PriceTrend     string    `json:"price_trend,omitempty"`
	AvailableSeats int       `json:"available_seats"`
	TotalSeats     int       `json:"total_seats"`
	AircraftType   string    `json:"aircraft_type,omitempty"`
}

func (f Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

type SortBy string

const (
	SortByPrice     SortBy = "price"
	SortByDuration  SortBy = "duration"
	SortByDeparture SortBy = "departure"
)

type SearchCriteria struct {
	Origin      string `json:"origin,omitempty"`
	Destination string `json:"destination,omitempty"`
	// Date is YYYY-MM-DD.
	Date    string `json:"date,omitempty"`
	Airline string `json:"airline,omitempty"`
	SortBy  SortBy `json:"sort_by,omitempty"`
}
