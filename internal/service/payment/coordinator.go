package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/bookingapi"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/metrics"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/pkg/logger"
)

type PaymentUseCase interface {
	Pay(ctx context.Context, batch *domain.ReservationBatch, method domain.PaymentMethod, details map[string]string) (*Result, error)
}

type PaymentClient interface {
	Pay(ctx context.Context, req bookingapi.PaymentRequest) (*bookingapi.PaymentResult, error)
	QRCodeURL(bookingID int64) string
}

// Result is returned whenever a payment request was sent. Batch is the
// confirmed batch on success and the untouched input batch otherwise.
type Result struct {
	Transaction *domain.PaymentTransaction
	Batch       *domain.ReservationBatch
}

type Coordinator struct {
	client  PaymentClient
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewCoordinator(client PaymentClient, m *metrics.Metrics, l *zap.Logger) *Coordinator {
	return &Coordinator{client: client, metrics: m, logger: logger.OrNop(l), now: time.Now}
}

// Pay sends exactly one payment request covering every booking of the batch.
// Preconditions fail without a request and a nil Result. After the request the
// error, if any, is a *domain.PaymentError telling a definitive failure from an
// unknown outcome.
func (c *Coordinator) Pay(ctx context.Context, batch *domain.ReservationBatch, method domain.PaymentMethod, details map[string]string) (*Result, error) {
	if !batch.FullySuccessful() {
		return nil, domain.ErrBatchNotPayable
	}
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedPaymentMethod, method)
	}

	ids := batch.BookingIDs()
	tx := &domain.PaymentTransaction{
		ID:          uuid.NewString(),
		BookingIDs:  ids,
		Method:      method,
		TotalAmount: batch.TotalPrice(),
		SubmittedAt: c.now(),
	}
	log := c.logger.With(zap.String("payment_id", tx.ID), zap.Int64s("booking_ids", ids))

	start := c.now()
	res, err := c.client.Pay(ctx, bookingapi.PaymentRequest{
		BookingIDs:     ids,
		PaymentMethod:  string(method),
		PaymentDetails: details,
	})
	c.metrics.ObserveBookingAPI("pay", start)
	tx.ResolvedAt = c.now()

	if err != nil {
		payErr := classifyError(err)
		return c.settle(tx, batch, payErr, log)
	}
	if !res.Success {
		reason := res.Message
		if reason == "" {
			reason = "payment was declined"
		}
		return c.settle(tx, batch, &domain.PaymentError{Reason: reason}, log)
	}

	bookings, err := c.reconcile(ids, res.Bookings)
	if err != nil {
		return c.settle(tx, batch, &domain.PaymentError{Ambiguous: true, Reason: err.Error(), Err: err}, log)
	}

	tx.Status = domain.PaymentSucceeded
	tx.Bookings = bookings
	if res.TotalAmount > 0 {
		tx.TotalAmount = res.TotalAmount
	}
	c.metrics.PaymentResolved("succeeded")
	log.Info("payment succeeded", zap.Float64("total_amount", tx.TotalAmount))

	return &Result{Transaction: tx, Batch: batch.WithConfirmations(bookings)}, nil
}

func (c *Coordinator) settle(tx *domain.PaymentTransaction, batch *domain.ReservationBatch, payErr *domain.PaymentError, log *zap.Logger) (*Result, error) {
	tx.Reason = payErr.Reason
	if payErr.Ambiguous {
		tx.Status = domain.PaymentAmbiguous
		c.metrics.PaymentResolved("ambiguous")
		log.Warn("payment outcome unknown", zap.String("reason", payErr.Reason), zap.Error(payErr.Err))
	} else {
		tx.Status = domain.PaymentFailed
		c.metrics.PaymentResolved("failed")
		log.Info("payment failed", zap.String("reason", payErr.Reason))
	}
	return &Result{Transaction: tx, Batch: batch}, payErr
}

// reconcile checks that the server confirmed exactly the submitted bookings
// and attaches the QR reference of each.
func (c *Coordinator) reconcile(ids []int64, confirmed []bookingapi.ConfirmedBooking) ([]domain.ConfirmedBooking, error) {
	if len(confirmed) != len(ids) {
		return nil, fmt.Errorf("%w: paid for %d bookings, %d confirmed", domain.ErrProtocolViolation, len(ids), len(confirmed))
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	out := make([]domain.ConfirmedBooking, 0, len(confirmed))
	for _, b := range confirmed {
		if !want[b.ID] {
			return nil, fmt.Errorf("%w: unexpected booking %d in payment response", domain.ErrProtocolViolation, b.ID)
		}
		if b.PNR == "" {
			return nil, fmt.Errorf("%w: booking %d confirmed without a PNR", domain.ErrProtocolViolation, b.ID)
		}
		delete(want, b.ID)
		out = append(out, domain.ConfirmedBooking{
			BookingID:      b.ID,
			PNR:            b.PNR,
			UniquePIN:      b.UniquePIN,
			SeatNumber:     b.SeatNumber,
			TotalPrice:     b.TotalPrice,
			Status:         b.Status,
			BookingDate:    b.BookingDate.Time,
			FlightNumber:   b.FlightNumber,
			PassengerName:  b.PassengerName,
			PassengerEmail: b.PassengerEmail,
			PassengerPhone: b.PassengerPhone,
			FlightDetails:  b.FlightDetails.ToDomain(),
			QRCodeRef:      c.client.QRCodeURL(b.ID),
		})
	}
	return out, nil
}

func classifyError(err error) *domain.PaymentError {
	var apiErr *bookingapi.APIError
	if bookingapi.IsDefinitive(err) && errors.As(err, &apiErr) {
		return &domain.PaymentError{Reason: apiErr.Detail, Err: err}
	}
	if errors.As(err, &apiErr) {
		return &domain.PaymentError{Ambiguous: true, Reason: fmt.Sprintf("booking service answered %d", apiErr.StatusCode), Err: err}
	}
	if errors.Is(err, domain.ErrProtocolViolation) {
		return &domain.PaymentError{Ambiguous: true, Reason: "unreadable answer from booking service", Err: err}
	}
	return &domain.PaymentError{Ambiguous: true, Reason: "no answer from booking service", Err: err}
}

var _ PaymentUseCase = (*Coordinator)(nil)
