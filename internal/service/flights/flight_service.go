package flights

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Flight, error)
}

type FlightSource interface {
	SearchFlights(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Flight, error)
	SetFlights(ctx context.Context, criteria domain.SearchCriteria, flights []domain.Flight) error
}

type FlightService struct {
	source FlightSource
	cache  FlightCache
	logger *zap.Logger
}

func NewFlightService(source FlightSource, cache FlightCache, logger *zap.Logger) *FlightService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlightService{source: source, cache: cache, logger: logger}
}

func (s *FlightService) Search(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Flight, error) {
	criteria, err := normalize(criteria)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx, criteria); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.logger.Warn("flight cache read failed", zap.Error(err))
		}
	}

	flights, err := s.source.SearchFlights(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search flights: %w", err)
	}
	sortFlights(flights, criteria.SortBy)

	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, criteria, flights); err != nil {
			s.logger.Warn("flight cache write failed", zap.Error(err))
		}
	}
	return flights, nil
}

func normalize(criteria domain.SearchCriteria) (domain.SearchCriteria, error) {
	criteria.Origin = strings.ToUpper(strings.TrimSpace(criteria.Origin))
	criteria.Destination = strings.ToUpper(strings.TrimSpace(criteria.Destination))
	criteria.Airline = strings.ToUpper(strings.TrimSpace(criteria.Airline))
	criteria.Date = strings.TrimSpace(criteria.Date)

	if criteria.Date != "" {
		if _, err := time.Parse("2006-01-02", criteria.Date); err != nil {
			return criteria, fmt.Errorf("%w: invalid date %q: expected YYYY-MM-DD", domain.ErrInvalidCriteria, criteria.Date)
		}
	}

	switch criteria.SortBy {
	case "":
		criteria.SortBy = domain.SortByPrice
	case domain.SortByPrice, domain.SortByDuration, domain.SortByDeparture:
	default:
		return criteria, fmt.Errorf("%w: invalid sort_by %q", domain.ErrInvalidCriteria, criteria.SortBy)
	}
	return criteria, nil
}

func sortFlights(flights []domain.Flight, by domain.SortBy) {
	var less func(a, b domain.Flight) bool
	switch by {
	case domain.SortByDuration:
		less = func(a, b domain.Flight) bool { return a.Duration() < b.Duration() }
	case domain.SortByDeparture:
		less = func(a, b domain.Flight) bool { return a.DepartureTime.Before(b.DepartureTime) }
	default:
		less = func(a, b domain.Flight) bool { return a.CurrentPrice < b.CurrentPrice }
	}
	sort.SliceStable(flights, func(i, j int) bool { return less(flights[i], flights[j]) })
}

var _ FlightUseCase = (*FlightService)(nil)
