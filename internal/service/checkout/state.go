package checkout

import (
	"fmt"
	"time"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
)

type State string

const (
	StateSearching      State = "SEARCHING"
	StateFlightSelected State = "FLIGHT_SELECTED"
	StateSeatSelecting  State = "SEAT_SELECTING"
	StateReserving      State = "RESERVING"
	StatePayable        State = "PAYABLE"
	StatePaying         State = "PAYING"
	StateConfirmed      State = "CONFIRMED"
	// StateFailed is left for SeatSelecting or Payable depending on where the
	// failure happened, never forward.
	StateFailed State = "FAILED"
)

// transitions lists the legal targets of each state. Stage changes move
// forward; the only ways back are "back", selecting another flight, failure
// recovery and "new search".
var transitions = map[State][]State{
	StateSearching:      {StateFlightSelected},
	StateFlightSelected: {StateSeatSelecting, StateFlightSelected, StateSearching},
	StateSeatSelecting:  {StateReserving, StateFlightSelected, StateSearching},
	StateReserving:      {StatePayable, StateFailed, StateSeatSelecting},
	StatePayable:        {StatePaying, StateSeatSelecting, StateFlightSelected, StateSearching},
	StatePaying:         {StateConfirmed, StateFailed, StatePayable},
	StateFailed:         {StateSeatSelecting, StatePayable, StateFlightSelected, StateSearching},
	StateConfirmed:      {StateSearching},
}

func canTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// busy states own an in-flight booking API call.
func (s State) busy() bool {
	return s == StateReserving || s == StatePaying
}

// Failure records why the last Reserving or Paying stage did not complete.
type Failure struct {
	From   State                `json:"from"`
	Reason string               `json:"reason"`
	Seats  []domain.SeatFailure `json:"seats,omitempty"`
	At     time.Time            `json:"at"`
}

func invalidTransition(from State, action string) error {
	return fmt.Errorf("%w: cannot %s while %s", domain.ErrInvalidTransition, action, from)
}
