package checkout

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/catalog"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/payment"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/reservation"
)

type MockFlightSearcher struct {
	mock.Mock
}

func (m *MockFlightSearcher) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Flight, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

type MockSeatCatalogs struct {
	mock.Mock
}

func (m *MockSeatCatalogs) Load(ctx context.Context, flightID int64) (*catalog.Catalog, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Catalog), args.Error(1)
}

func (m *MockSeatCatalogs) Refresh(ctx context.Context, flightID int64) (*catalog.Catalog, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Catalog), args.Error(1)
}

type MockReservations struct {
	mock.Mock
}

func (m *MockReservations) Submit(ctx context.Context, flightID int64, sel reservation.Selection, passenger domain.Passenger) (*domain.ReservationBatch, error) {
	args := m.Called(ctx, flightID, sel, passenger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReservationBatch), args.Error(1)
}

type MockPayments struct {
	mock.Mock
}

func (m *MockPayments) Pay(ctx context.Context, batch *domain.ReservationBatch, method domain.PaymentMethod, details map[string]string) (*payment.Result, error) {
	args := m.Called(ctx, batch, method, details)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Result), args.Error(1)
}

type MockReceiptStore struct {
	mock.Mock
}

func (m *MockReceiptStore) Save(ctx context.Context, receipt *domain.Receipt) error {
	return m.Called(ctx, receipt).Error(0)
}

func (m *MockReceiptStore) GetByPNR(ctx context.Context, pnr string) (*domain.Receipt, error) {
	args := m.Called(ctx, pnr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, value interface{}) error {
	return m.Called(ctx, topic, key, value).Error(0)
}
