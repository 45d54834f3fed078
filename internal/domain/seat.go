package domain

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "economy"
	SeatClassBusiness SeatClass = "business"
)

// Seat availability is a snapshot taken at fetch time, not a live lock.
type Seat struct {
	ID         int64     `json:"id"`
	SeatNumber string    `json:"seat_number"`
	Class      SeatClass `json:"seat_class"`
	Available  bool      `json:"is_available"`
}
