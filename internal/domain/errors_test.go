package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchError_Matching(t *testing.T) {
	err := fmt.Errorf("reserve: %w", &BatchError{
		FlightID: 1,
		Total:    3,
		Failures: []SeatFailure{
			{SeatID: 2, SeatNumber: "1B", Reason: "Seat not available", Err: ErrSeatConflict},
		},
	})

	assert.True(t, errors.Is(err, ErrBatchPartiallyFailed))
	assert.True(t, errors.Is(err, ErrSeatConflict))
	assert.False(t, errors.Is(err, ErrProtocolViolation))
	assert.Contains(t, err.Error(), "1 of 3 seats rejected")
	assert.Contains(t, err.Error(), "seat 1B: Seat not available")

	var batchErr *BatchError
	assert.True(t, errors.As(err, &batchErr))
	assert.Len(t, batchErr.Failures, 1)
}

func TestPaymentError_Matching(t *testing.T) {
	failed := &PaymentError{Reason: "card declined"}
	ambiguous := &PaymentError{Ambiguous: true, Reason: "timeout", Err: errors.New("i/o timeout")}

	assert.ErrorIs(t, failed, ErrPaymentFailed)
	assert.NotErrorIs(t, failed, ErrPaymentAmbiguous)
	assert.ErrorIs(t, ambiguous, ErrPaymentAmbiguous)
	assert.NotErrorIs(t, ambiguous, ErrPaymentFailed)
	assert.Equal(t, "payment failed: card declined", failed.Error())
	assert.EqualError(t, errors.Unwrap(ambiguous), "i/o timeout")
}
