package catalog

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
)

// Catalog is a point-in-time snapshot of one flight's seat inventory. It is
// advisory only: the booking API decides availability when a seat is reserved.
type Catalog struct {
	flightID  int64
	seats     []domain.Seat
	index     map[int64]int
	fetchedAt time.Time
}

func New(flightID int64, seats []domain.Seat, fetchedAt time.Time) *Catalog {
	sorted := make([]domain.Seat, len(seats))
	copy(sorted, seats)
	sort.SliceStable(sorted, func(i, j int) bool {
		return seatLess(sorted[i].SeatNumber, sorted[j].SeatNumber)
	})

	index := make(map[int64]int, len(sorted))
	for i, s := range sorted {
		index[s.ID] = i
	}
	return &Catalog{flightID: flightID, seats: sorted, index: index, fetchedAt: fetchedAt}
}

func (c *Catalog) FlightID() int64 {
	return c.flightID
}

func (c *Catalog) FetchedAt() time.Time {
	return c.fetchedAt
}

func (c *Catalog) Seat(id int64) (domain.Seat, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.Seat{}, false
	}
	return c.seats[i], true
}

func (c *Catalog) IsAvailable(id int64) bool {
	s, ok := c.Seat(id)
	return ok && s.Available
}

func (c *Catalog) Seats() []domain.Seat {
	out := make([]domain.Seat, len(c.seats))
	copy(out, c.seats)
	return out
}

func (c *Catalog) Available() []domain.Seat {
	out := make([]domain.Seat, 0, len(c.seats))
	for _, s := range c.seats {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

func (c *Catalog) AvailableCount() int {
	n := 0
	for _, s := range c.seats {
		if s.Available {
			n++
		}
	}
	return n
}

// ByClass groups the seat map for display, each class ordered by seat number.
func (c *Catalog) ByClass() map[domain.SeatClass][]domain.Seat {
	out := make(map[domain.SeatClass][]domain.Seat)
	for _, s := range c.seats {
		out[s.Class] = append(out[s.Class], s)
	}
	return out
}

// seatLess orders "2A" before "10A": numeric row first, then column letters.
func seatLess(a, b string) bool {
	rowA, colA := splitSeatNumber(a)
	rowB, colB := splitSeatNumber(b)
	if rowA != rowB {
		return rowA < rowB
	}
	return colA < colB
}

func splitSeatNumber(n string) (int, string) {
	i := 0
	for i < len(n) && n[i] >= '0' && n[i] <= '9' {
		i++
	}
	row, err := strconv.Atoi(n[:i])
	if err != nil {
		return 1<<31 - 1, strings.ToUpper(n)
	}
	return row, strings.ToUpper(n[i:])
}
