package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

// InventoryUseCase is the single source of truth for seat availability.
// All counter mutations go through ReserveSeats and ReleaseSeats.
type InventoryUseCase interface {
	SearchFlights(ctx context.Context, departureAirportID, arrivalAirportID int64, from, to time.Time) ([]domain.Flight, error)
	GetFlight(ctx context.Context, id int64) (*domain.Flight, error)
	UpdateFlightStatus(ctx context.Context, id int64, to domain.FlightStatus) (*domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID int64, class domain.SeatClass, count int) ([]domain.Seat, error)
	ReleaseSeats(ctx context.Context, flightID int64, seatIDs []int64) error
}

type Cache interface {
	GetSearch(ctx context.Context, departureAirportID, arrivalAirportID int64, from, to time.Time) ([]domain.Flight, error)
	SetSearch(ctx context.Context, departureAirportID, arrivalAirportID int64, from, to time.Time, flights []domain.Flight) error
}

type Service struct {
	flights repository.FlightRepository
	cache   Cache
}

func NewService(flights repository.FlightRepository, cache Cache) *Service {
	return &Service{flights: flights, cache: cache}
}

func (s *Service) SearchFlights(ctx context.Context, departureAirportID, arrivalAirportID int64, from, to time.Time) ([]domain.Flight, error) {
	if departureAirportID <= 0 || arrivalAirportID <= 0 {
		return nil, fmt.Errorf("%w: airport references are required", domain.ErrValidation)
	}
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: departure window is empty", domain.ErrValidation)
	}

	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, departureAirportID, arrivalAirportID, from, to); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.flights.Search(ctx, departureAirportID, arrivalAirportID, from, to)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSearch(ctx, departureAirportID, arrivalAirportID, from, to, flights)
	}
	return flights, nil
}

func (s *Service) GetFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.flights.GetByID(ctx, id)
}

func (s *Service) UpdateFlightStatus(ctx context.Context, id int64, to domain.FlightStatus) (*domain.Flight, error) {
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !flight.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: flight %s -> %s", domain.ErrInvalidTransition, flight.Status, to)
	}
	return s.flights.UpdateStatus(ctx, id, flight.Status, to)
}

func (s *Service) ReserveSeats(ctx context.Context, flightID int64, class domain.SeatClass, count int) ([]domain.Seat, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: seat count must be positive", domain.ErrValidation)
	}
	return s.flights.ReserveSeats(ctx, flightID, class, count)
}

func (s *Service) ReleaseSeats(ctx context.Context, flightID int64, seatIDs []int64) error {
	_, err := s.flights.ReleaseSeats(ctx, flightID, seatIDs)
	return err
}

var _ InventoryUseCase = (*Service)(nil)
