package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/kafka"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/metrics"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/pkg/logger"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/catalog"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/payment"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/reservation"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/selection"
)

type UseCase interface {
	CreateSession(ctx context.Context) (*SessionView, error)
	GetSession(ctx context.Context, id string) (*SessionView, error)
	AbandonSession(ctx context.Context, id string) error
	Search(ctx context.Context, id string, criteria domain.SearchCriteria) (*SessionView, error)
	SelectFlight(ctx context.Context, id string, flightID int64, seatCount int) (*SessionView, error)
	RefreshSeats(ctx context.Context, id string) (*SessionView, error)
	SetSeatCount(ctx context.Context, id string, n int) (*SessionView, error)
	ToggleSeat(ctx context.Context, id string, seatID int64) (*SessionView, error)
	SubmitReservations(ctx context.Context, id string, passenger domain.Passenger) (*SessionView, error)
	Back(ctx context.Context, id string) (*SessionView, error)
	Pay(ctx context.Context, id string, in PaymentInput) (*SessionView, error)
	NewSearch(ctx context.Context, id string) (*SessionView, error)
	Receipt(ctx context.Context, id string) (*domain.Receipt, error)
	ReceiptByPNR(ctx context.Context, pnr string) (*domain.Receipt, error)
}

type FlightSearcher interface {
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Flight, error)
}

type SeatCatalogs interface {
	Load(ctx context.Context, flightID int64) (*catalog.Catalog, error)
	Refresh(ctx context.Context, flightID int64) (*catalog.Catalog, error)
}

type ReceiptStore interface {
	Save(ctx context.Context, receipt *domain.Receipt) error
	GetByPNR(ctx context.Context, pnr string) (*domain.Receipt, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type PaymentInput struct {
	Method  domain.PaymentMethod
	Details map[string]string
	// ConfirmRetry acknowledges that an earlier attempt may have charged.
	ConfirmRetry bool
}

type Service struct {
	registry     *Registry
	flights      FlightSearcher
	catalogs     SeatCatalogs
	reservations reservation.ReservationUseCase
	payments     payment.PaymentUseCase

	receipts           ReceiptStore
	publisher          Publisher
	eventsTopic        string
	notificationsTopic string

	// followUpTimeout bounds receipt storage and event publishing once an
	// outcome is settled.
	followUpTimeout time.Duration

	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

const defaultFollowUpTimeout = 5 * time.Second

type Option func(*Service)

func WithReceiptStore(store ReceiptStore) Option {
	return func(s *Service) {
		s.receipts = store
	}
}

// WithPublisher sends checkout events to eventsTopic. Events the passenger
// must hear about are also sent to notificationsTopic when it is set.
func WithPublisher(p Publisher, eventsTopic, notificationsTopic string) Option {
	return func(s *Service) {
		s.publisher = p
		s.eventsTopic = eventsTopic
		s.notificationsTopic = notificationsTopic
	}
}

func WithFollowUpTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.followUpTimeout = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

func NewService(
	registry *Registry,
	flights FlightSearcher,
	catalogs SeatCatalogs,
	reservations reservation.ReservationUseCase,
	payments payment.PaymentUseCase,
	opts ...Option,
) *Service {
	s := &Service{
		registry:     registry,
		flights:      flights,
		catalogs:     catalogs,
		reservations: reservations,
		payments:     payments,
		now:          time.Now,

		followUpTimeout: defaultFollowUpTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.OrNop(s.logger)
	return s
}

func (s *Service) CreateSession(ctx context.Context) (*SessionView, error) {
	sess := s.registry.Create()
	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.logger.Info("checkout session created", zap.String("session_id", sess.id))
	return sess.view(), nil
}

func (s *Service) GetSession(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.view(), nil
}

func (s *Service) AbandonSession(ctx context.Context, id string) error {
	sess, err := s.lock(id)
	if err != nil {
		return err
	}
	busy := sess.state.busy()
	state := sess.state
	sess.mu.Unlock()

	if busy {
		return invalidTransition(state, "abandon the checkout")
	}
	return s.registry.Delete(id)
}

func (s *Service) Search(ctx context.Context, id string, criteria domain.SearchCriteria) (*SessionView, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.state.busy() || sess.state == StateConfirmed {
		return sess.view(), invalidTransition(sess.state, "search flights")
	}

	results, err := s.flights.Search(ctx, criteria)
	if err != nil {
		return sess.view(), err
	}
	sess.criteria = &criteria
	sess.results = results
	return sess.view(), nil
}

// SelectFlight picks a flight from the last search results. Anything scoped to
// a previous flight is discarded.
func (s *Service) SelectFlight(ctx context.Context, id string, flightID int64, seatCount int) (*SessionView, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.state.busy() || sess.state == StateConfirmed {
		return sess.view(), invalidTransition(sess.state, "select a flight")
	}
	flight, ok := sess.findResult(flightID)
	if !ok {
		return sess.view(), fmt.Errorf("%w: %d is not in the search results", domain.ErrFlightNotFound, flightID)
	}
	if seatCount < 1 {
		return sess.view(), fmt.Errorf("%w: %d, at least one seat is required", domain.ErrInvalidTarget, seatCount)
	}

	if sess.batch != nil {
		s.logger.Warn("discarding unpaid reservations on flight change",
			zap.String("session_id", sess.id),
			zap.Int64s("booking_ids", sess.batch.BookingIDs()),
		)
	}
	if err := s.move(sess, StateFlightSelected); err != nil {
		return sess.view(), err
	}
	sess.clearFlight()
	sess.flight = &flight
	sess.seatCount = seatCount

	cat, err := s.catalogs.Load(ctx, flightID)
	if err != nil {
		return sess.view(), err
	}
	if _, err := s.adoptCatalog(sess, cat); err != nil {
		return sess.view(), err
	}
	if err := s.move(sess, StateSeatSelecting); err != nil {
		return sess.view(), err
	}
	return sess.view(), nil
}

// RefreshSeats re-fetches the seat map. It is also the way out of a failed
// reservation stage whose automatic refresh did not succeed.
func (s *Service) RefreshSeats(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	switch {
	case sess.state == StateFlightSelected, sess.state == StateSeatSelecting:
	case sess.state == StateFailed && sess.failure != nil && sess.failure.From == StateReserving:
	default:
		return sess.view(), invalidTransition(sess.state, "refresh the seat map")
	}

	cat, err := s.catalogs.Refresh(ctx, sess.flight.ID)
	if err != nil {
		return sess.view(), err
	}
	if sess.state == StateFailed && sess.selection != nil {
		sess.selection.Reset()
	}
	dropped, err := s.adoptCatalog(sess, cat)
	if err != nil {
		return sess.view(), err
	}
	if sess.state != StateSeatSelecting {
		if err := s.move(sess, StateSeatSelecting); err != nil {
			return sess.view(), err
		}
	}

	v := sess.view()
	v.DroppedSeats = dropped
	return v, nil
}

func (s *Service) SetSeatCount(ctx context.Context, id string, n int) (*SessionView, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	switch sess.state {
	case StateSeatSelecting:
		dropped, err := sess.selection.SetTarget(n)
		if err != nil {
			return sess.view(), err
		}
		sess.seatCount = n
		v := sess.view()
		v.DroppedSeats = dropped
		return v, nil
	case StateFlightSelected:
		// the catalog had fewer seats than first requested
		if sess.catalog == nil {
			return sess.view(), invalidTransition(sess.state, "change the seat count before the seat map is loaded")
		}
		m, err := selection.NewManager(sess.catalog, n)
		if err != nil {
			return sess.view(), err
		}
		sess.selection = m
		sess.seatCount = n
		if err := s.move(sess, StateSeatSelecting); err != nil {
			return sess.view(), err
		}
		return sess.view(), nil
	default:
		return sess.view(), invalidTransition(sess.state, "change the seat count")
	}
}

func (s *Service) ToggleSeat(ctx context.Context, id string, seatID int64) (*SessionView, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.state != StateSeatSelecting {
		return sess.view(), invalidTransition(sess.state, "change seats")
	}
	res, err := sess.selection.Toggle(seatID)
	if err != nil {
		return sess.view(), err
	}
	if res == selection.Ignored {
		s.logger.Debug("ignored toggle of unavailable seat", zap.String("session_id", sess.id), zap.Int64("seat_id", seatID))
	}
	return sess.view(), nil
}

// SubmitReservations reserves the selected seats. The session lock is released
// while the booking API is called; the Reserving state keeps every other
// mutation out. A partial failure discards the batch, clears the selection and
// refreshes the seat map before returning to seat selection. Events go out
// after the lock is released again.
func (s *Service) SubmitReservations(ctx context.Context, id string, passenger domain.Passenger) (*SessionView, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	if sess.state != StateSeatSelecting {
		defer sess.mu.Unlock()
		return sess.view(), invalidTransition(sess.state, "reserve seats")
	}
	if !sess.selection.IsComplete() {
		defer sess.mu.Unlock()
		return sess.view(), fmt.Errorf("%w: %d of %d seats selected", domain.ErrSelectionIncomplete, sess.selection.Len(), sess.selection.Target())
	}

	snapshot := selectionSnapshot{seats: sess.selection.Seats(), complete: true}
	flightID := sess.flight.ID
	if err := s.move(sess, StateReserving); err != nil {
		defer sess.mu.Unlock()
		return sess.view(), err
	}
	sess.mu.Unlock()

	// in-flight reservations are never cancelled; the client timeout bounds them
	callCtx := context.WithoutCancel(ctx)
	batch, submitErr := s.reservations.Submit(callCtx, flightID, snapshot, passenger)

	var batchErr *domain.BatchError
	var fresh *catalog.Catalog
	var refreshErr error
	if errors.As(submitErr, &batchErr) {
		fresh, refreshErr = s.catalogs.Refresh(callCtx, flightID)
	}

	var after followUp
	defer func() { s.dispatch(ctx, after) }()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touchedAt = s.now()

	switch {
	case submitErr == nil:
		sess.passenger = &passenger
		sess.batch = batch
		sess.failure = nil
		if err := s.move(sess, StatePayable); err != nil {
			return sess.view(), err
		}
		after.add(s.event(sess, kafka.EventReservationBatchConfirmed, batch, ""))
		return sess.view(), nil

	case batchErr != nil:
		sess.passenger = &passenger
		sess.batch = nil
		sess.failure = &Failure{From: StateReserving, Reason: batchErr.Error(), Seats: batchErr.Failures, At: s.now()}
		if err := s.move(sess, StateFailed); err != nil {
			return sess.view(), err
		}
		after.add(s.event(sess, kafka.EventReservationBatchFailed, batch, batchErr.Error()))
		sess.selection.Reset()

		if refreshErr != nil {
			s.logger.Error("seat map refresh after partial failure failed",
				zap.String("session_id", sess.id),
				zap.Int64("flight_id", flightID),
				zap.Error(refreshErr),
			)
			sess.failure.Reason += "; seat map could not be refreshed, refresh before selecting again"
			return sess.view(), submitErr
		}
		if _, err := s.adoptCatalog(sess, fresh); err != nil {
			return sess.view(), err
		}
		if err := s.move(sess, StateSeatSelecting); err != nil {
			return sess.view(), err
		}
		return sess.view(), submitErr

	default:
		// nothing was reserved; stay on seat selection
		if err := s.move(sess, StateSeatSelecting); err != nil {
			return sess.view(), err
		}
		return sess.view(), submitErr
	}
}

// Back leaves the payable stage for seat selection. The unpaid reservations
// are abandoned to server-side expiry.
func (s *Service) Back(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.state != StatePayable {
		return sess.view(), invalidTransition(sess.state, "go back to seat selection")
	}

	cat, err := s.catalogs.Refresh(ctx, sess.flight.ID)
	if err != nil {
		return sess.view(), err
	}
	if sess.retryNeedsConfirmation {
		s.logger.Warn("leaving a batch whose payment outcome is unknown",
			zap.String("session_id", sess.id),
			zap.Int64s("booking_ids", sess.batch.BookingIDs()),
		)
	}
	if err := s.move(sess, StateSeatSelecting); err != nil {
		return sess.view(), err
	}
	sess.clearCheckout()
	sess.selection.Reset()
	if _, err := s.adoptCatalog(sess, cat); err != nil {
		return sess.view(), err
	}
	return sess.view(), nil
}

// Pay submits one payment for the whole batch. Like SubmitReservations, the
// session lock is released during the call and again before the receipt is
// stored and events are published. Any failure returns to Payable with the
// batch intact.
func (s *Service) Pay(ctx context.Context, id string, in PaymentInput) (*SessionView, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	if sess.state != StatePayable {
		defer sess.mu.Unlock()
		return sess.view(), invalidTransition(sess.state, "pay")
	}
	if !in.Method.Valid() {
		defer sess.mu.Unlock()
		return sess.view(), fmt.Errorf("%w: %q", domain.ErrUnsupportedPaymentMethod, in.Method)
	}
	if sess.retryNeedsConfirmation && !in.ConfirmRetry {
		defer sess.mu.Unlock()
		return sess.view(), fmt.Errorf("%w: the previous attempt may have been charged, check booking status and confirm the retry", domain.ErrPaymentAmbiguous)
	}

	batch := sess.batch
	if err := s.move(sess, StatePaying); err != nil {
		defer sess.mu.Unlock()
		return sess.view(), err
	}
	sess.mu.Unlock()

	callCtx := context.WithoutCancel(ctx)
	res, payErr := s.payments.Pay(callCtx, batch, in.Method, in.Details)

	var after followUp
	defer func() { s.dispatch(ctx, after) }()
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touchedAt = s.now()

	if res == nil {
		// rejected before anything was sent
		if err := s.move(sess, StatePayable); err != nil {
			return sess.view(), err
		}
		return sess.view(), payErr
	}

	sess.payment = res.Transaction
	if payErr == nil {
		sess.batch = res.Batch
		sess.failure = nil
		sess.retryNeedsConfirmation = false
		if err := s.move(sess, StateConfirmed); err != nil {
			return sess.view(), err
		}
		sess.receipt = buildReceipt(sess, s.now())
		after.receipt = sess.receipt
		after.add(s.event(sess, kafka.EventPaymentSucceeded, sess.batch, ""))
		return sess.view(), nil
	}

	ambiguous := errors.Is(payErr, domain.ErrPaymentAmbiguous)
	sess.retryNeedsConfirmation = sess.retryNeedsConfirmation || ambiguous
	sess.failure = &Failure{From: StatePaying, Reason: res.Transaction.Reason, At: s.now()}
	if err := s.move(sess, StateFailed); err != nil {
		return sess.view(), err
	}
	if ambiguous {
		after.add(s.event(sess, kafka.EventPaymentAmbiguous, batch, res.Transaction.Reason))
	} else {
		after.add(s.event(sess, kafka.EventPaymentFailed, batch, res.Transaction.Reason))
	}
	if err := s.move(sess, StatePayable); err != nil {
		return sess.view(), err
	}
	return sess.view(), payErr
}

// NewSearch clears the session back to an empty search.
func (s *Service) NewSearch(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.state.busy() {
		return sess.view(), invalidTransition(sess.state, "start a new search")
	}
	if sess.state != StateSearching {
		if err := s.move(sess, StateSearching); err != nil {
			return sess.view(), err
		}
	}
	sess.clearAll()
	return sess.view(), nil
}

func (s *Service) Receipt(ctx context.Context, id string) (*domain.Receipt, error) {
	sess, err := s.lock(id)
	if err != nil {
		return nil, err
	}
	defer sess.mu.Unlock()

	if sess.state != StateConfirmed || sess.receipt == nil {
		return nil, domain.ErrReceiptUnavailable
	}
	r := *sess.receipt
	r.Tickets = append([]domain.Ticket(nil), sess.receipt.Tickets...)
	return &r, nil
}

func (s *Service) ReceiptByPNR(ctx context.Context, pnr string) (*domain.Receipt, error) {
	if s.receipts == nil {
		return nil, domain.ErrReceiptNotFound
	}
	return s.receipts.GetByPNR(ctx, pnr)
}

func (s *Service) lock(id string) (*Session, error) {
	sess, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	sess.touchedAt = s.now()
	return sess, nil
}

func (s *Service) move(sess *Session, to State) error {
	from := sess.state
	if err := sess.transition(to); err != nil {
		return err
	}
	s.metrics.Transition(string(from), string(to))
	s.logger.Debug("checkout state changed",
		zap.String("session_id", sess.id),
		zap.String("from", string(from)),
		zap.String("state", string(to)),
	)
	return nil
}

// adoptCatalog installs a fresh seat snapshot, creating the selection on first
// use. It returns the selected seats that are no longer available.
func (s *Service) adoptCatalog(sess *Session, cat *catalog.Catalog) ([]domain.Seat, error) {
	sess.catalog = cat
	if sess.selection == nil {
		m, err := selection.NewManager(cat, sess.seatCount)
		if err != nil {
			return nil, err
		}
		sess.selection = m
		return nil, nil
	}
	return sess.selection.Rebind(cat), nil
}

// followUp is the work left once a session has settled: a receipt to store
// and events to publish. It is collected under the session lock and
// dispatched after the lock is released.
type followUp struct {
	receipt *domain.Receipt
	events  []kafka.CheckoutEvent
}

func (f *followUp) add(event *kafka.CheckoutEvent) {
	if event != nil {
		f.events = append(f.events, *event)
	}
}

func (f followUp) empty() bool {
	return f.receipt == nil && len(f.events) == 0
}

// dispatch runs a followUp detached from the request but bounded by
// followUpTimeout. Failures are logged; the outcome is already settled.
func (s *Service) dispatch(ctx context.Context, f followUp) {
	if f.empty() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.followUpTimeout)
	defer cancel()

	if f.receipt != nil && s.receipts != nil {
		if err := s.receipts.Save(ctx, f.receipt); err != nil {
			s.logger.Error("failed to persist receipt", zap.String("payment_id", f.receipt.PaymentID), zap.Error(err))
		}
	}
	for _, event := range f.events {
		s.publish(ctx, event)
	}
}

// event snapshots the session for a checkout event. It must be called with
// the session lock held and returns nil when no publisher is configured.
func (s *Service) event(sess *Session, eventType string, batch *domain.ReservationBatch, reason string) *kafka.CheckoutEvent {
	if s.publisher == nil || s.eventsTopic == "" {
		return nil
	}

	event := kafka.CheckoutEvent{
		Type:       eventType,
		SessionID:  sess.id,
		Reason:     reason,
		OccurredAt: s.now(),
	}
	if sess.flight != nil {
		event.FlightID = sess.flight.ID
		event.FlightNumber = sess.flight.FlightNumber
	}
	if sess.passenger != nil {
		event.PassengerName = sess.passenger.Name
		event.PassengerEmail = sess.passenger.Email
	}
	if batch != nil {
		event.BookingIDs = batch.BookingIDs()
		event.SeatNumbers = batch.SeatNumbers()
		event.TotalAmount = batch.TotalPrice()
	}
	if sess.payment != nil {
		event.PaymentID = sess.payment.ID
		event.TotalAmount = sess.payment.TotalAmount
	}
	if sess.receipt != nil {
		event.PNRs = sess.receipt.PNRs()
	}
	return &event
}

func (s *Service) publish(ctx context.Context, event kafka.CheckoutEvent) {
	if err := s.publisher.Publish(ctx, s.eventsTopic, event.SessionID, event); err != nil {
		s.logger.Warn("failed to publish checkout event", zap.String("type", event.Type), zap.String("session_id", event.SessionID), zap.Error(err))
	}
	if s.notificationsTopic != "" && (event.Type == kafka.EventPaymentSucceeded || event.Type == kafka.EventPaymentAmbiguous) {
		if err := s.publisher.Publish(ctx, s.notificationsTopic, event.SessionID, event); err != nil {
			s.logger.Warn("failed to publish notification", zap.String("type", event.Type), zap.String("session_id", event.SessionID), zap.Error(err))
		}
	}
}

type selectionSnapshot struct {
	seats    []domain.Seat
	complete bool
}

func (s selectionSnapshot) IsComplete() bool     { return s.complete }
func (s selectionSnapshot) Seats() []domain.Seat { return s.seats }

var _ UseCase = (*Service)(nil)
