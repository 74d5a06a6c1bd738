package domain

import (
	"fmt"
	"time"
)

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "ECONOMY"
	SeatClassBusiness SeatClass = "BUSINESS"
	SeatClassFirst    SeatClass = "FIRST"
)

func ParseSeatClass(s string) (SeatClass, error) {
	switch SeatClass(s) {
	case SeatClassEconomy, SeatClassBusiness, SeatClassFirst:
		return SeatClass(s), nil
	default:
		return "", fmt.Errorf("%w: unknown seat class %q", ErrValidation, s)
	}
}

type SeatStatus string

const (
	SeatStatusAvailable   SeatStatus = "AVAILABLE"
	SeatStatusOccupied    SeatStatus = "OCCUPIED"
	SeatStatusMaintenance SeatStatus = "MAINTENANCE"
)

// Seats flip between AVAILABLE and OCCUPIED; MAINTENANCE is only entered
// from AVAILABLE and is absorbing as far as the booking core is concerned.
var seatEdges = map[SeatStatus][]SeatStatus{
	SeatStatusAvailable:   {SeatStatusOccupied, SeatStatusMaintenance},
	SeatStatusOccupied:    {SeatStatusAvailable},
	SeatStatusMaintenance: {},
}

func (s SeatStatus) CanTransition(to SeatStatus) bool {
	for _, next := range seatEdges[s] {
		if next == to {
			return true
		}
	}
	return false
}

type Seat struct {
	ID         int64      `json:"id"`
	FlightID   int64      `json:"flight_id"`
	SeatNumber string     `json:"seat_number"`
	SeatClass  SeatClass  `json:"seat_class"`
	PriceCents int64      `json:"price_cents"`
	Status     SeatStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (s *Seat) TransitionTo(to SeatStatus) error {
	if !s.Status.CanTransition(to) {
		return fmt.Errorf("%w: seat %s %s -> %s", ErrInvalidTransition, s.SeatNumber, s.Status, to)
	}
	s.Status = to
	return nil
}
