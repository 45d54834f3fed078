package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockFlightSource struct {
	mock.Mock
}

func (m *MockFlightSource) SearchFlights(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Flight, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Flight, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, criteria domain.SearchCriteria, flights []domain.Flight) error {
	args := m.Called(ctx, criteria, flights)
	return args.Error(0)
}

func sampleFlights() []domain.Flight {
	base := time.Date(2026, 11, 1, 6, 0, 0, 0, time.UTC)
	return []domain.Flight{
		{ID: 1, FlightNumber: "AI101", CurrentPrice: 7000, DepartureTime: base.Add(4 * time.Hour), ArrivalTime: base.Add(6 * time.Hour)},
		{ID: 2, FlightNumber: "6E202", CurrentPrice: 4500, DepartureTime: base.Add(8 * time.Hour), ArrivalTime: base.Add(11 * time.Hour)},
		{ID: 3, FlightNumber: "UK303", CurrentPrice: 5200, DepartureTime: base, ArrivalTime: base.Add(90 * time.Minute)},
	}
}

func ids(flights []domain.Flight) []int64 {
	out := make([]int64, 0, len(flights))
	for _, f := range flights {
		out = append(out, f.ID)
	}
	return out
}

func TestFlightService_Search_CacheMiss(t *testing.T) {
	mockSource := &MockFlightSource{}
	mockCache := &MockCache{}
	service := NewFlightService(mockSource, mockCache, nil)

	ctx := context.Background()
	normalized := domain.SearchCriteria{Origin: "DEL", Destination: "BOM", SortBy: domain.SortByPrice}

	mockCache.On("GetFlights", ctx, normalized).Return(nil, nil).Once()
	mockSource.On("SearchFlights", ctx, normalized).Return(sampleFlights(), nil).Once()
	mockCache.On("SetFlights", ctx, normalized, mock.Anything).Return(nil).Once()

	result, err := service.Search(ctx, domain.SearchCriteria{Origin: " del", Destination: "bom"})

	assert.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 1}, ids(result))

	mockCache.AssertExpectations(t)
	mockSource.AssertExpectations(t)
}

func TestFlightService_Search_CacheHit(t *testing.T) {
	mockSource := &MockFlightSource{}
	mockCache := &MockCache{}
	service := NewFlightService(mockSource, mockCache, nil)

	ctx := context.Background()
	criteria := domain.SearchCriteria{SortBy: domain.SortByDeparture}
	cached := sampleFlights()[:1]

	mockCache.On("GetFlights", ctx, criteria).Return(cached, nil).Once()

	result, err := service.Search(ctx, criteria)

	assert.NoError(t, err)
	assert.Equal(t, cached, result)
	mockSource.AssertNotCalled(t, "SearchFlights")
}

func TestFlightService_Search_CacheErrorFallsThrough(t *testing.T) {
	mockSource := &MockFlightSource{}
	mockCache := &MockCache{}
	service := NewFlightService(mockSource, mockCache, nil)

	ctx := context.Background()
	criteria := domain.SearchCriteria{SortBy: domain.SortByDuration}

	mockCache.On("GetFlights", ctx, criteria).Return(nil, errors.New("redis down")).Once()
	mockSource.On("SearchFlights", ctx, criteria).Return(sampleFlights(), nil).Once()
	mockCache.On("SetFlights", ctx, criteria, mock.Anything).Return(errors.New("redis down")).Once()

	result, err := service.Search(ctx, criteria)

	assert.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids(result))
}

func TestFlightService_Search_SourceError(t *testing.T) {
	mockSource := &MockFlightSource{}
	service := NewFlightService(mockSource, nil, nil)

	ctx := context.Background()
	mockSource.On("SearchFlights", ctx, mock.Anything).Return(nil, errors.New("upstream down")).Once()

	result, err := service.Search(ctx, domain.SearchCriteria{})

	assert.Nil(t, result)
	assert.ErrorContains(t, err, "upstream down")
}

func TestFlightService_Search_InvalidCriteria(t *testing.T) {
	service := NewFlightService(&MockFlightSource{}, nil, nil)

	testCases := []struct {
		name        string
		criteria    domain.SearchCriteria
		expectedErr string
	}{
		{name: "bad date", criteria: domain.SearchCriteria{Date: "01/11/2026"}, expectedErr: "invalid date"},
		{name: "bad sort", criteria: domain.SearchCriteria{SortBy: "stops"}, expectedErr: "invalid sort_by"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Search(context.Background(), tc.criteria)
			assert.ErrorIs(t, err, domain.ErrInvalidCriteria)
			assert.ErrorContains(t, err, tc.expectedErr)
		})
	}
}

func TestSortFlights(t *testing.T) {
	testCases := []struct {
		by       domain.SortBy
		expected []int64
	}{
		{by: domain.SortByPrice, expected: []int64{2, 3, 1}},
		{by: domain.SortByDuration, expected: []int64{3, 1, 2}},
		{by: domain.SortByDeparture, expected: []int64{3, 1, 2}},
	}

	for _, tc := range testCases {
		t.Run(string(tc.by), func(t *testing.T) {
			flights := sampleFlights()
			sortFlights(flights, tc.by)
			assert.Equal(t, tc.expected, ids(flights))
		})
	}
}
