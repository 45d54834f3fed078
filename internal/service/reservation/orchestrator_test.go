package reservation

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/bookingapi"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/metrics"
)

type MockReservationClient struct {
	mock.Mock
}

func (m *MockReservationClient) CreateReservation(ctx context.Context, req bookingapi.ReservationRequest) (*bookingapi.Reservation, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingapi.Reservation), args.Error(1)
}

type stubSelection struct {
	complete bool
	seats    []domain.Seat
}

func (s stubSelection) IsComplete() bool     { return s.complete }
func (s stubSelection) Seats() []domain.Seat { return s.seats }

var testPassenger = domain.Passenger{Name: "Asha Rao", Email: "asha@example.com", Phone: "+91 98450 00000"}

func seats(ids ...int64) []domain.Seat {
	out := make([]domain.Seat, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Seat{ID: id, SeatNumber: fmt.Sprintf("%dA", id), Class: domain.SeatClassEconomy, Available: true})
	}
	return out
}

func forSeat(id int64) interface{} {
	return mock.MatchedBy(func(req bookingapi.ReservationRequest) bool { return req.SeatID == id })
}

func confirmed(bookingID int64, seat string) *bookingapi.Reservation {
	return &bookingapi.Reservation{
		ID:           bookingID,
		PNR:          fmt.Sprintf("PNR%d", bookingID),
		Status:       "pending",
		SeatNumber:   seat,
		TotalPrice:   4500,
		FlightNumber: "AI202",
		FlightDetails: bookingapi.FlightDetails{
			Origin:      "BLR",
			Destination: "DEL",
		},
	}
}

func TestOrchestrator_Submit_AllConfirmed(t *testing.T) {
	client := &MockReservationClient{}
	o := NewOrchestrator(client, WithMaxParallel(2))

	client.On("CreateReservation", mock.Anything, forSeat(1)).Return(confirmed(101, "1A"), nil).Once()
	client.On("CreateReservation", mock.Anything, forSeat(2)).Return(confirmed(102, "2A"), nil).Once()

	batch, err := o.Submit(context.Background(), 7, stubSelection{complete: true, seats: seats(1, 2)}, testPassenger)

	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.True(t, batch.FullySuccessful())
	assert.Equal(t, []int64{101, 102}, batch.BookingIDs())
	assert.Equal(t, 9000.0, batch.TotalPrice())
	assert.Equal(t, "BLR", batch.Attempts[0].FlightDetails.Origin)
	assert.Equal(t, testPassenger, batch.Attempts[1].Passenger)

	client.AssertExpectations(t)
}

func TestOrchestrator_Submit_RequestCarriesPassenger(t *testing.T) {
	client := &MockReservationClient{}
	o := NewOrchestrator(client)

	userID := int64(55)
	p := testPassenger
	p.UserID = &userID

	client.On("CreateReservation", mock.Anything, bookingapi.ReservationRequest{
		FlightID:       7,
		SeatID:         3,
		PassengerName:  p.Name,
		PassengerEmail: p.Email,
		PassengerPhone: p.Phone,
		UserID:         &userID,
	}).Return(confirmed(103, "3A"), nil).Once()

	_, err := o.Submit(context.Background(), 7, stubSelection{complete: true, seats: seats(3)}, p)
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestOrchestrator_Submit_IncompleteSelectionMakesNoCalls(t *testing.T) {
	client := &MockReservationClient{}
	o := NewOrchestrator(client)

	batch, err := o.Submit(context.Background(), 7, stubSelection{complete: false, seats: seats(1)}, testPassenger)

	assert.ErrorIs(t, err, domain.ErrSelectionIncomplete)
	assert.Nil(t, batch)
	client.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
}

func TestOrchestrator_Submit_InvalidPassenger(t *testing.T) {
	client := &MockReservationClient{}
	o := NewOrchestrator(client)

	testCases := []struct {
		name        string
		passenger   domain.Passenger
		expectedErr string
	}{
		{name: "missing name", passenger: domain.Passenger{Email: "a@b.co", Phone: "1"}, expectedErr: "name failed on required"},
		{name: "bad email", passenger: domain.Passenger{Name: "A", Email: "nope", Phone: "1"}, expectedErr: "email failed on email"},
		{name: "missing phone", passenger: domain.Passenger{Name: "A", Email: "a@b.co"}, expectedErr: "phone failed on required"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			batch, err := o.Submit(context.Background(), 7, stubSelection{complete: true, seats: seats(1)}, tc.passenger)
			assert.ErrorIs(t, err, domain.ErrInvalidPassenger)
			assert.Contains(t, err.Error(), tc.expectedErr)
			assert.Nil(t, batch)
		})
	}
	client.AssertNotCalled(t, "CreateReservation", mock.Anything, mock.Anything)
}

func TestOrchestrator_Submit_SecondOfThreeRejected(t *testing.T) {
	client := &MockReservationClient{}
	reg := prometheus.NewRegistry()
	o := NewOrchestrator(client, WithMetrics(metrics.NewWithRegistry(reg)))

	client.On("CreateReservation", mock.Anything, forSeat(1)).Return(confirmed(101, "1A"), nil).Once()
	client.On("CreateReservation", mock.Anything, forSeat(2)).
		Return(nil, &bookingapi.APIError{StatusCode: 400, Detail: "Seat is not available"}).Once()
	client.On("CreateReservation", mock.Anything, forSeat(3)).Return(confirmed(103, "3A"), nil).Once()

	batch, err := o.Submit(context.Background(), 7, stubSelection{complete: true, seats: seats(1, 2, 3)}, testPassenger)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBatchPartiallyFailed)
	assert.ErrorIs(t, err, domain.ErrSeatConflict)

	var batchErr *domain.BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, 3, batchErr.Total)
	require.Len(t, batchErr.Failures, 1)
	assert.Equal(t, int64(2), batchErr.Failures[0].SeatID)
	assert.Equal(t, "Seat is not available", batchErr.Failures[0].Reason)

	require.NotNil(t, batch)
	assert.False(t, batch.FullySuccessful())
	assert.Len(t, batch.Attempts, 3)
	assert.Equal(t, domain.AttemptConfirmed, batch.Attempts[0].Status)
	assert.Equal(t, domain.AttemptRejected, batch.Attempts[1].Status)
	assert.Equal(t, domain.AttemptConfirmed, batch.Attempts[2].Status)

	client.AssertExpectations(t)
}

func TestOrchestrator_Submit_MissingIdentityDowngradesBatch(t *testing.T) {
	client := &MockReservationClient{}
	o := NewOrchestrator(client)

	client.On("CreateReservation", mock.Anything, forSeat(1)).Return(confirmed(101, "1A"), nil).Once()
	client.On("CreateReservation", mock.Anything, forSeat(2)).Return(confirmed(0, "2A"), nil).Once()

	batch, err := o.Submit(context.Background(), 7, stubSelection{complete: true, seats: seats(1, 2)}, testPassenger)

	assert.ErrorIs(t, err, domain.ErrBatchPartiallyFailed)
	assert.ErrorIs(t, err, domain.ErrProtocolViolation)
	assert.False(t, batch.FullySuccessful())
	assert.Equal(t, domain.AttemptRejected, batch.Attempts[1].Status)
}

func TestOrchestrator_Submit_TransportErrorsAreRejections(t *testing.T) {
	client := &MockReservationClient{}
	o := NewOrchestrator(client)

	client.On("CreateReservation", mock.Anything, forSeat(1)).
		Return(nil, fmt.Errorf("booking api POST /bookings: %w", context.DeadlineExceeded)).Once()
	client.On("CreateReservation", mock.Anything, forSeat(2)).
		Return(nil, errors.New("connection refused")).Once()

	batch, err := o.Submit(context.Background(), 7, stubSelection{complete: true, seats: seats(1, 2)}, testPassenger)

	assert.ErrorIs(t, err, domain.ErrBatchPartiallyFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, domain.ErrSeatConflict)

	failures := batch.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "booking service timed out", failures[0].Reason)
	assert.Equal(t, "booking service unreachable", failures[1].Reason)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		conflict bool
		reason   string
	}{
		{"seat taken", &bookingapi.APIError{StatusCode: 400, Detail: "Seat is not available"}, true, "Seat is not available"},
		{"explained server error", &bookingapi.APIError{StatusCode: 500, Detail: "Seat already booked", Explained: true}, true, "Seat already booked"},
		{"bare server error", &bookingapi.APIError{StatusCode: 500, Detail: "Internal Server Error"}, false, "booking service unavailable"},
		{"bad gateway", &bookingapi.APIError{StatusCode: 502, Detail: "Bad Gateway"}, false, "booking service unavailable"},
		{"service unavailable", &bookingapi.APIError{StatusCode: 503, Detail: "Service Unavailable"}, false, "booking service unavailable"},
		{"gateway timeout", fmt.Errorf("booking api POST /bookings: %w", &bookingapi.APIError{StatusCode: 504}), false, "booking service unavailable"},
		{"deadline", context.DeadlineExceeded, false, "booking service timed out"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			failure := classify(tc.err)
			assert.Equal(t, tc.conflict, errors.Is(failure.Err, domain.ErrSeatConflict))
			assert.Equal(t, tc.reason, failure.Reason)
			assert.ErrorIs(t, failure.Err, tc.err)
		})
	}
}

func TestOrchestrator_Submit_GatewayErrorIsNotSeatConflict(t *testing.T) {
	client := &MockReservationClient{}
	o := NewOrchestrator(client)

	client.On("CreateReservation", mock.Anything, forSeat(1)).Return(confirmed(101, "1A"), nil).Once()
	client.On("CreateReservation", mock.Anything, forSeat(2)).
		Return(nil, &bookingapi.APIError{StatusCode: 503, Detail: "Service Unavailable"}).Once()

	batch, err := o.Submit(context.Background(), 7, stubSelection{complete: true, seats: seats(1, 2)}, testPassenger)

	assert.ErrorIs(t, err, domain.ErrBatchPartiallyFailed)
	assert.NotErrorIs(t, err, domain.ErrSeatConflict)
	assert.Equal(t, domain.AttemptRejected, batch.Attempts[1].Status)
	require.Len(t, batch.Failures(), 1)
	assert.Equal(t, "booking service unavailable", batch.Failures()[0].Reason)
}

func TestOrchestrator_Submit_WaitsForAllAndRespectsLimit(t *testing.T) {
	client := &MockReservationClient{}
	o := NewOrchestrator(client, WithMaxParallel(2))

	var inFlight, peak int32
	track := func(mock.Arguments) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
	}

	client.On("CreateReservation", mock.Anything, forSeat(1)).
		Return(nil, &bookingapi.APIError{StatusCode: 409, Detail: "taken"}).Run(track).Once()
	for _, id := range []int64{2, 3, 4} {
		client.On("CreateReservation", mock.Anything, forSeat(id)).
			Return(confirmed(100+id, fmt.Sprintf("%dA", id)), nil).Run(track).Once()
	}

	batch, err := o.Submit(context.Background(), 7, stubSelection{complete: true, seats: seats(1, 2, 3, 4)}, testPassenger)

	assert.ErrorIs(t, err, domain.ErrBatchPartiallyFailed)
	assert.Len(t, batch.BookingIDs(), 3)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	client.AssertNumberOfCalls(t, "CreateReservation", 4)
}
