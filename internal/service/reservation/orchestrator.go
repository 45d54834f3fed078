package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/bookingapi"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/metrics"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/pkg/logger"
)

type ReservationUseCase interface {
	Submit(ctx context.Context, flightID int64, sel Selection, passenger domain.Passenger) (*domain.ReservationBatch, error)
}

type ReservationClient interface {
	CreateReservation(ctx context.Context, req bookingapi.ReservationRequest) (*bookingapi.Reservation, error)
}

// Selection is the read side of a seat selection.
type Selection interface {
	IsComplete() bool
	Seats() []domain.Seat
}

type Orchestrator struct {
	client      ReservationClient
	validate    *validator.Validate
	maxParallel int
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

type Option func(*Orchestrator)

// WithMaxParallel bounds the number of in-flight reservation requests.
// Zero or less means unbounded.
func WithMaxParallel(n int) Option {
	return func(o *Orchestrator) {
		o.maxParallel = n
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

func NewOrchestrator(client ReservationClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:   client,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logger.OrNop(o.logger)
	return o
}

// Submit reserves every selected seat concurrently and waits for all of them.
// When any seat is rejected the batch is still returned, together with a
// *domain.BatchError listing each failed seat.
func (o *Orchestrator) Submit(ctx context.Context, flightID int64, sel Selection, passenger domain.Passenger) (*domain.ReservationBatch, error) {
	if sel == nil || !sel.IsComplete() {
		return nil, domain.ErrSelectionIncomplete
	}
	if err := o.validatePassenger(passenger); err != nil {
		return nil, err
	}

	seats := sel.Seats()
	batch := &domain.ReservationBatch{
		FlightID:    flightID,
		Attempts:    make([]domain.ReservationAttempt, len(seats)),
		SubmittedAt: o.now(),
	}

	var g errgroup.Group
	if o.maxParallel > 0 {
		g.SetLimit(o.maxParallel)
	}
	for i, seat := range seats {
		batch.Attempts[i] = domain.ReservationAttempt{
			SeatID:     seat.ID,
			SeatNumber: seat.SeatNumber,
			Passenger:  passenger,
			Status:     domain.AttemptPending,
		}
		// each goroutine owns slot i; failures are recorded on the attempt
		g.Go(func() error {
			batch.Attempts[i] = o.reserveSeat(ctx, flightID, batch.Attempts[i])
			return nil
		})
	}
	_ = g.Wait()

	failures := batch.Failures()
	if len(failures) == 0 {
		o.metrics.BatchSubmitted("complete")
		o.logger.Info("reservation batch confirmed",
			zap.Int64("flight_id", flightID),
			zap.Int64s("booking_ids", batch.BookingIDs()),
		)
		return batch, nil
	}

	o.metrics.BatchSubmitted("partial")
	o.logger.Warn("reservation batch partially failed",
		zap.Int64("flight_id", flightID),
		zap.Int("rejected", len(failures)),
		zap.Int("total", len(seats)),
	)
	return batch, &domain.BatchError{FlightID: flightID, Total: len(seats), Failures: failures}
}

func (o *Orchestrator) reserveSeat(ctx context.Context, flightID int64, attempt domain.ReservationAttempt) domain.ReservationAttempt {
	start := o.now()
	res, err := o.client.CreateReservation(ctx, bookingapi.ReservationRequest{
		FlightID:       flightID,
		SeatID:         attempt.SeatID,
		PassengerName:  attempt.Passenger.Name,
		PassengerEmail: attempt.Passenger.Email,
		PassengerPhone: attempt.Passenger.Phone,
		UserID:         attempt.Passenger.UserID,
	})
	o.metrics.ObserveBookingAPI("reserve", start)

	switch {
	case err != nil:
		o.metrics.SeatReserved("rejected")
		return reject(attempt, classify(err))
	case res == nil || res.ID == 0:
		o.metrics.SeatReserved("protocol_error")
		o.logger.Error("reservation response without booking id",
			zap.Int64("flight_id", flightID),
			zap.Int64("seat_id", attempt.SeatID),
		)
		return reject(attempt, domain.SeatFailure{
			Reason: "booking service confirmed the seat without a booking id",
			Err:    domain.ErrProtocolViolation,
		})
	}

	o.metrics.SeatReserved("confirmed")
	attempt.Status = domain.AttemptConfirmed
	attempt.BookingID = res.ID
	attempt.PNR = res.PNR
	attempt.UniquePIN = res.UniquePIN
	attempt.Price = res.TotalPrice
	attempt.FlightNumber = res.FlightNumber
	attempt.FlightDetails = res.FlightDetails.ToDomain()
	if res.SeatNumber != "" {
		attempt.SeatNumber = res.SeatNumber
	}
	return attempt
}

func reject(attempt domain.ReservationAttempt, failure domain.SeatFailure) domain.ReservationAttempt {
	failure.SeatID = attempt.SeatID
	failure.SeatNumber = attempt.SeatNumber
	attempt.Status = domain.AttemptRejected
	attempt.Failure = &failure
	return attempt
}

// classify turns a client error into a per-seat failure. A definitive
// rejection from the booking API is a seat conflict; anything else, gateway
// errors and timeouts included, is a rejected attempt with the transport cause
// attached.
func classify(err error) domain.SeatFailure {
	var apiErr *bookingapi.APIError
	switch {
	case bookingapi.IsDefinitive(err) && errors.As(err, &apiErr):
		return domain.SeatFailure{Reason: apiErr.Detail, Err: fmt.Errorf("%w: %w", domain.ErrSeatConflict, apiErr)}
	case errors.As(err, &apiErr):
		return domain.SeatFailure{Reason: "booking service unavailable", Err: err}
	case errors.Is(err, domain.ErrProtocolViolation):
		return domain.SeatFailure{Reason: "unreadable response from booking service", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return domain.SeatFailure{Reason: "booking service timed out", Err: err}
	default:
		return domain.SeatFailure{Reason: "booking service unreachable", Err: err}
	}
}

func (o *Orchestrator) validatePassenger(p domain.Passenger) error {
	err := o.validate.Struct(p)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPassenger, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidPassenger, strings.Join(msgs, ", "))
}

var _ ReservationUseCase = (*Orchestrator)(nil)
