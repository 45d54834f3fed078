package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/bookingapi"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
	"go.uber.org/zap"
)

type SeatSource interface {
	ListSeats(ctx context.Context, flightID int64) ([]domain.Seat, error)
}

type SeatCache interface {
	GetSeats(ctx context.Context, flightID int64) ([]domain.Seat, error)
	SetSeats(ctx context.Context, flightID int64, seats []domain.Seat) error
	InvalidateSeats(ctx context.Context, flightID int64) error
}

type Service struct {
	source SeatSource
	cache  SeatCache
	logger *zap.Logger
	now    func() time.Time
}

func NewService(source SeatSource, cache SeatCache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, cache: cache, logger: logger, now: time.Now}
}

// Load returns a snapshot, served from cache when a recent one exists.
func (s *Service) Load(ctx context.Context, flightID int64) (*Catalog, error) {
	if s.cache != nil {
		seats, err := s.cache.GetSeats(ctx, flightID)
		if err != nil {
			s.logger.Warn("seat cache read failed", zap.Int64("flight_id", flightID), zap.Error(err))
		} else if seats != nil {
			return New(flightID, seats, s.now()), nil
		}
	}
	return s.fetch(ctx, flightID)
}

// Refresh always goes to the booking API and replaces the cached snapshot.
func (s *Service) Refresh(ctx context.Context, flightID int64) (*Catalog, error) {
	if s.cache != nil {
		if err := s.cache.InvalidateSeats(ctx, flightID); err != nil {
			s.logger.Warn("seat cache invalidation failed", zap.Int64("flight_id", flightID), zap.Error(err))
		}
	}
	return s.fetch(ctx, flightID)
}

func (s *Service) fetch(ctx context.Context, flightID int64) (*Catalog, error) {
	seats, err := s.source.ListSeats(ctx, flightID)
	if err != nil {
		var apiErr *bookingapi.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %d", domain.ErrFlightNotFound, flightID)
		}
		return nil, fmt.Errorf("load seats for flight %d: %w", flightID, err)
	}

	if s.cache != nil {
		if err := s.cache.SetSeats(ctx, flightID, seats); err != nil {
			s.logger.Warn("seat cache write failed", zap.Int64("flight_id", flightID), zap.Error(err))
		}
	}
	return New(flightID, seats, s.now()), nil
}
