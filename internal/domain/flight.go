package domain

import (
	"fmt"
	"time"
)

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "SCHEDULED"
	FlightStatusBoarding  FlightStatus = "BOARDING"
	FlightStatusDeparted  FlightStatus = "DEPARTED"
	FlightStatusArrived   FlightStatus = "ARRIVED"
	FlightStatusDelayed   FlightStatus = "DELAYED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
)

// flightEdges lists the allowed lifecycle transitions. CANCELLED is reachable
// from any non-terminal status; ARRIVED and CANCELLED are terminal.
var flightEdges = map[FlightStatus][]FlightStatus{
	FlightStatusScheduled: {FlightStatusBoarding, FlightStatusDelayed, FlightStatusCancelled},
	FlightStatusBoarding:  {FlightStatusDeparted, FlightStatusDelayed, FlightStatusCancelled},
	FlightStatusDeparted:  {FlightStatusArrived, FlightStatusDelayed, FlightStatusCancelled},
	FlightStatusDelayed:   {FlightStatusBoarding, FlightStatusDeparted, FlightStatusCancelled},
	FlightStatusArrived:   {},
	FlightStatusCancelled: {},
}

func ParseFlightStatus(s string) (FlightStatus, error) {
	switch FlightStatus(s) {
	case FlightStatusScheduled, FlightStatusBoarding, FlightStatusDeparted,
		FlightStatusArrived, FlightStatusDelayed, FlightStatusCancelled:
		return FlightStatus(s), nil
	default:
		return "", fmt.Errorf("%w: unknown flight status %q", ErrValidation, s)
	}
}

func (s FlightStatus) CanTransition(to FlightStatus) bool {
	for _, next := range flightEdges[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s FlightStatus) Terminal() bool {
	return s == FlightStatusArrived || s == FlightStatusCancelled
}

type Flight struct {
	ID                 int64        `json:"id"`
	FlightNumber       string       `json:"flight_number"`
	AirlineID          int64        `json:"airline_id"`
	AircraftTypeID     int64        `json:"aircraft_type_id"`
	DepartureAirportID int64        `json:"departure_airport_id"`
	ArrivalAirportID   int64        `json:"arrival_airport_id"`
	DepartureTime      time.Time    `json:"departure_time"`
	ArrivalTime        time.Time    `json:"arrival_time"`
	BasePriceCents     int64        `json:"base_price_cents"`
	TotalSeats         int          `json:"total_seats"`
	AvailableSeats     int          `json:"available_seats"`
	Status             FlightStatus `json:"status"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// Bookable reports whether seats may be reserved on the flight.
func (f *Flight) Bookable() bool {
	return f.Status == FlightStatusScheduled
}

func (f *Flight) TransitionTo(to FlightStatus) error {
	if !f.Status.CanTransition(to) {
		return fmt.Errorf("%w: flight %s -> %s", ErrInvalidTransition, f.Status, to)
	}
	f.Status = to
	return nil
}
