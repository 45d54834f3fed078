package checkout

import (
	"fmt"
	"sync"
	"time"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/catalog"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/selection"
)

// Session is the CheckoutSession aggregate: everything one user's booking
// attempt knows. All fields are guarded by mu; while the state is busy the
// lock is released and only the goroutine that entered the busy state may
// change the session.
type Session struct {
	mu sync.Mutex

	id        string
	state     State
	createdAt time.Time
	touchedAt time.Time

	criteria *domain.SearchCriteria
	results  []domain.Flight

	flight    *domain.Flight
	seatCount int
	catalog   *catalog.Catalog
	selection *selection.Manager

	passenger *domain.Passenger
	batch     *domain.ReservationBatch
	payment   *domain.PaymentTransaction
	receipt   *domain.Receipt
	failure   *Failure

	// set after an ambiguous payment; the next payment must be confirmed
	retryNeedsConfirmation bool
}

func newSession(id string, now time.Time) *Session {
	return &Session{id: id, state: StateSearching, createdAt: now, touchedAt: now}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) transition(to State) error {
	if !canTransition(s.state, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, s.state, to)
	}
	s.state = to
	return nil
}

// clearFlight drops everything scoped to the current flight.
func (s *Session) clearFlight() {
	s.flight = nil
	s.seatCount = 0
	s.catalog = nil
	s.selection = nil
	s.clearCheckout()
}

func (s *Session) clearCheckout() {
	s.batch = nil
	s.payment = nil
	s.receipt = nil
	s.failure = nil
	s.retryNeedsConfirmation = false
}

func (s *Session) clearAll() {
	s.criteria = nil
	s.results = nil
	s.passenger = nil
	s.clearFlight()
}

func (s *Session) findResult(flightID int64) (domain.Flight, bool) {
	for _, f := range s.results {
		if f.ID == flightID {
			return f, true
		}
	}
	return domain.Flight{}, false
}

// SessionView is a read-only snapshot of a Session.
type SessionView struct {
	ID                     string                             `json:"id"`
	State                  State                              `json:"state"`
	Criteria               *domain.SearchCriteria             `json:"criteria,omitempty"`
	SearchResults          []domain.Flight                    `json:"search_results,omitempty"`
	Flight                 *domain.Flight                     `json:"flight,omitempty"`
	SeatCount              int                                `json:"seat_count,omitempty"`
	AvailableSeats         int                                `json:"available_seats,omitempty"`
	SeatMap                map[domain.SeatClass][]domain.Seat `json:"seat_map,omitempty"`
	SelectedSeats          []domain.Seat                      `json:"selected_seats,omitempty"`
	SelectionComplete      bool                               `json:"selection_complete"`
	EstimatedTotal         float64                            `json:"estimated_total,omitempty"`
	DroppedSeats           []domain.Seat                      `json:"dropped_seats,omitempty"`
	Passenger              *domain.Passenger                  `json:"passenger,omitempty"`
	Batch                  *domain.ReservationBatch           `json:"batch,omitempty"`
	Payment                *domain.PaymentTransaction         `json:"payment,omitempty"`
	Failure                *Failure                           `json:"failure,omitempty"`
	RetryNeedsConfirmation bool                               `json:"retry_needs_confirmation,omitempty"`
	CatalogFetchedAt       *time.Time                         `json:"catalog_fetched_at,omitempty"`
	UpdatedAt              time.Time                          `json:"updated_at"`
}

func (s *Session) view() *SessionView {
	v := &SessionView{
		ID:                     s.id,
		State:                  s.state,
		Criteria:               s.criteria,
		SearchResults:          append([]domain.Flight(nil), s.results...),
		Flight:                 s.flight,
		SeatCount:              s.seatCount,
		Passenger:              s.passenger,
		Batch:                  s.batch,
		Payment:                s.payment,
		Failure:                s.failure,
		RetryNeedsConfirmation: s.retryNeedsConfirmation,
		UpdatedAt:              s.touchedAt,
	}
	if s.catalog != nil {
		v.AvailableSeats = s.catalog.AvailableCount()
		v.SeatMap = s.catalog.ByClass()
		fetched := s.catalog.FetchedAt()
		v.CatalogFetchedAt = &fetched
	}
	if s.selection != nil {
		v.SelectedSeats = s.selection.Seats()
		v.SelectionComplete = s.selection.IsComplete()
		if s.flight != nil {
			v.EstimatedTotal = s.flight.CurrentPrice * float64(s.selection.Len())
		}
	}
	return v
}
