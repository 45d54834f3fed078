package selection

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

const propertySeats = 12

// op encodes one user action: values 1..12 toggle that seat, 0 and negatives
// change the target to -op.
func applyOps(m *Manager, ops []int) bool {
	for _, op := range ops {
		if op > 0 {
			_, _ = m.Toggle(int64(op))
		} else {
			_, _ = m.SetTarget(-op)
		}
		if !invariantsHold(m) {
			return false
		}
	}
	return true
}

func invariantsHold(m *Manager) bool {
	if m.Len() > m.Target() {
		return false
	}
	seen := make(map[int64]bool, m.Len())
	for _, s := range m.Seats() {
		if seen[s.ID] || !s.Available {
			return false
		}
		seen[s.ID] = true
	}
	return true
}

func opGen() gopter.Gen {
	return gen.IntRange(-propertySeats-1, propertySeats)
}

func TestManager_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("selection never exceeds target and holds distinct available seats", prop.ForAll(
		func(target int, ops []int) bool {
			m, err := NewManager(newCatalog(propertySeats, 7, 8), target)
			if err != nil {
				return false
			}
			return applyOps(m, ops)
		},
		gen.IntRange(1, propertySeats-2),
		gen.SliceOf(opGen()),
	))

	properties.Property("toggling a seat twice restores the selection", prop.ForAll(
		func(target int, ops []int, seat int) bool {
			m, err := NewManager(newCatalog(propertySeats), target)
			if err != nil {
				return false
			}
			applyOps(m, ops)
			before := m.SeatIDs()

			// Only meaningful when the first toggle changes something.
			if res, err := m.Toggle(int64(seat)); err != nil || res == Ignored {
				return true
			}
			_, _ = m.Toggle(int64(seat))

			after := m.SeatIDs()
			if len(before) != len(after) {
				return false
			}
			set := make(map[int64]bool, len(before))
			for _, id := range before {
				set[id] = true
			}
			for _, id := range after {
				if !set[id] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, propertySeats),
		gen.SliceOf(opGen()),
		gen.IntRange(1, propertySeats),
	))

	properties.Property("complete exactly when size equals target", prop.ForAll(
		func(target int, ops []int) bool {
			m, err := NewManager(newCatalog(propertySeats), target)
			if err != nil {
				return false
			}
			applyOps(m, ops)
			return m.IsComplete() == (m.Len() == m.Target())
		},
		gen.IntRange(1, propertySeats),
		gen.SliceOf(opGen()),
	))

	properties.Property("a full selection rejects new seats without change", prop.ForAll(
		func(target int) bool {
			m, err := NewManager(newCatalog(propertySeats), target)
			if err != nil {
				return false
			}
			for id := 1; id <= target; id++ {
				if _, err := m.Toggle(int64(id)); err != nil {
					return false
				}
			}
			if target == propertySeats {
				return m.IsComplete()
			}
			before := m.SeatIDs()
			_, err = m.Toggle(int64(target + 1))
			return err != nil && len(m.SeatIDs()) == len(before) && m.IsComplete()
		},
		gen.IntRange(1, propertySeats),
	))

	properties.TestingRun(t)
}
