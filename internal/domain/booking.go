package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

var bookingEdges = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
	BookingStatusCancelled: {},
	BookingStatusCompleted: {},
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return BookingStatus(s), nil
	default:
		return "", fmt.Errorf("%w: unknown booking status %q", ErrValidation, s)
	}
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingEdges[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

var paymentEdges = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:  {PaymentStatusPaid, PaymentStatusFailed},
	PaymentStatusPaid:     {PaymentStatusRefunded},
	PaymentStatusFailed:   {},
	PaymentStatusRefunded: {},
}

func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, next := range paymentEdges[s] {
		if next == to {
			return true
		}
	}
	return false
}

// BookedSeat is the projection of a seat held by a booking. Relations are
// carried as ids, not back-pointers.
type BookedSeat struct {
	SeatID     int64     `json:"seat_id"`
	SeatNumber string    `json:"seat_number"`
	SeatClass  SeatClass `json:"seat_class"`
	PriceCents int64     `json:"price_cents"`
}

type Booking struct {
	ID              int64         `json:"id"`
	BookingNumber   string        `json:"booking_number"`
	UserID          int64         `json:"user_id"`
	FlightID        int64         `json:"flight_id"`
	Passengers      int           `json:"passengers"`
	TotalPriceCents int64         `json:"total_price_cents"`
	Status          BookingStatus `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	HoldExpiresAt   time.Time     `json:"hold_expires_at"`
	BookingDate     time.Time     `json:"booking_date"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	Seats    []BookedSeat `json:"seats,omitempty"`
	Payments []Payment    `json:"payments,omitempty"`
}

func (b *Booking) TransitionTo(to BookingStatus) error {
	if !b.Status.CanTransition(to) {
		return fmt.Errorf("%w: booking %s %s -> %s", ErrInvalidTransition, b.BookingNumber, b.Status, to)
	}
	b.Status = to
	return nil
}
