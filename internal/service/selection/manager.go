package selection

import (
	"fmt"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
)

type ToggleResult string

const (
	Selected   ToggleResult = "selected"
	Deselected ToggleResult = "deselected"
	// Ignored means the seat is unknown or unavailable in the snapshot.
	Ignored ToggleResult = "ignored"
)

// Availability is the part of the seat catalog the manager consults.
type Availability interface {
	Seat(id int64) (domain.Seat, bool)
	AvailableCount() int
}

// Manager keeps an ordered set of distinct seats bounded by a target count.
// It never holds more seats than the target.
type Manager struct {
	avail  Availability
	target int
	seats  []domain.Seat
}

func NewManager(avail Availability, target int) (*Manager, error) {
	m := &Manager{avail: avail}
	if _, err := m.SetTarget(target); err != nil {
		return nil, err
	}
	return m, nil
}

// SetTarget changes the required seat count. When the selection is larger
// than n, the most recently added seats are dropped and returned so the
// caller can refresh its display.
func (m *Manager) SetTarget(n int) ([]domain.Seat, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d, at least one seat is required", domain.ErrInvalidTarget, n)
	}
	if limit := m.avail.AvailableCount(); n > limit {
		return nil, fmt.Errorf("%w: %d, only %d seats available", domain.ErrInvalidTarget, n, limit)
	}

	m.target = n
	if len(m.seats) <= n {
		return nil, nil
	}
	dropped := make([]domain.Seat, len(m.seats)-n)
	copy(dropped, m.seats[n:])
	m.seats = m.seats[:n:n]
	return dropped, nil
}

// Toggle deselects a selected seat, otherwise selects it if it is available
// and there is room. A full selection rejects new seats with
// ErrCapacityReached and stays unchanged.
func (m *Manager) Toggle(seatID int64) (ToggleResult, error) {
	if i := m.indexOf(seatID); i >= 0 {
		m.seats = append(m.seats[:i:i], m.seats[i+1:]...)
		return Deselected, nil
	}

	seat, ok := m.avail.Seat(seatID)
	if !ok || !seat.Available {
		return Ignored, nil
	}
	if len(m.seats) >= m.target {
		return Ignored, fmt.Errorf("%w: you can only select %d seat(s), deselect a seat first", domain.ErrCapacityReached, m.target)
	}

	m.seats = append(m.seats, seat)
	return Selected, nil
}

func (m *Manager) IsComplete() bool {
	return len(m.seats) == m.target
}

func (m *Manager) Reset() {
	m.seats = nil
}

// Rebind points the manager at a fresh snapshot and drops selected seats that
// are no longer available there.
func (m *Manager) Rebind(avail Availability) []domain.Seat {
	m.avail = avail

	var kept, dropped []domain.Seat
	for _, s := range m.seats {
		if fresh, ok := avail.Seat(s.ID); ok && fresh.Available {
			kept = append(kept, fresh)
		} else {
			dropped = append(dropped, s)
		}
	}
	m.seats = kept
	return dropped
}

func (m *Manager) Seats() []domain.Seat {
	out := make([]domain.Seat, len(m.seats))
	copy(out, m.seats)
	return out
}

func (m *Manager) SeatIDs() []int64 {
	ids := make([]int64, 0, len(m.seats))
	for _, s := range m.seats {
		ids = append(ids, s.ID)
	}
	return ids
}

func (m *Manager) Target() int {
	return m.target
}

func (m *Manager) Len() int {
	return len(m.seats)
}

func (m *Manager) indexOf(seatID int64) int {
	for i, s := range m.seats {
		if s.ID == seatID {
			return i
		}
	}
	return -1
}
