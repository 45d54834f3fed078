package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSelectionIncomplete      = errors.New("seat selection is incomplete")
	ErrCapacityReached          = errors.New("seat selection capacity reached")
	ErrInvalidTarget            = errors.New("invalid seat count")
	ErrSeatConflict             = errors.New("seat could not be reserved")
	ErrBatchPartiallyFailed     = errors.New("reservation batch partially failed")
	ErrBatchNotPayable          = errors.New("reservation batch is not payable")
	ErrPaymentFailed            = errors.New("payment failed")
	ErrPaymentAmbiguous         = errors.New("payment outcome unknown, check booking status")
	ErrProtocolViolation        = errors.New("booking api protocol violation")
	ErrInvalidTransition        = errors.New("invalid checkout transition")
	ErrInvalidPassenger         = errors.New("invalid passenger details")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrFlightNotFound           = errors.New("flight not found")
	ErrInvalidCriteria          = errors.New("invalid search criteria")
	ErrSessionNotFound          = errors.New("checkout session not found")
	ErrReceiptUnavailable       = errors.New("receipt is only available for confirmed checkouts")
	ErrReceiptNotFound          = errors.New("receipt not found")
)

// SeatFailure explains why one seat's reservation was rejected.
type SeatFailure struct {
	SeatID     int64  `json:"seat_id"`
	SeatNumber string `json:"seat_number"`
	Reason     string `json:"reason"`
	Err        error  `json:"-"`
}

func (f SeatFailure) Error() string {
	return fmt.Sprintf("seat %s: %s", f.SeatNumber, f.Reason)
}

func (f SeatFailure) Unwrap() error {
	return f.Err
}

// BatchError is returned when at least one attempt of a batch was rejected.
// It matches ErrBatchPartiallyFailed and every per-seat cause.
type BatchError struct {
	FlightID int64
	Total    int
	Failures []SeatFailure
}

func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%s: %d of %d seats rejected (%s)", ErrBatchPartiallyFailed, len(e.Failures), e.Total, strings.Join(parts, "; "))
}

func (e *BatchError) Is(target error) bool {
	return target == ErrBatchPartiallyFailed
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}

type PaymentError struct {
	Ambiguous bool
	Reason    string
	Err       error
}

func (e *PaymentError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("%s: %s", ErrPaymentAmbiguous, e.Reason)
	}
	return fmt.Sprintf("%s: %s", ErrPaymentFailed, e.Reason)
}

func (e *PaymentError) Is(target error) bool {
	if e.Ambiguous {
		return target == ErrPaymentAmbiguous
	}
	return target == ErrPaymentFailed
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}
