package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/service/ledger"
)

// BookingUseCase is the façade controllers talk to. It drives the
// reservation sequence (hold seats, create booking, await settlement) and
// owns every compensating action.
type BookingUseCase interface {
	Reserve(ctx context.Context, input ReserveInput) (*ReserveResult, error)
	ReportPayment(ctx context.Context, number, transactionID, outcome string) (*domain.Booking, error)
	Cancel(ctx context.Context, number string, requesterID int64) (*domain.Booking, error)
	GetBooking(ctx context.Context, number string) (*domain.Booking, error)
	SweepExpired(ctx context.Context) ([]domain.Booking, error)
}

type Inventory interface {
	ReserveSeats(ctx context.Context, flightID int64, class domain.SeatClass, count int) ([]domain.Seat, error)
	ReleaseSeats(ctx context.Context, flightID int64, seatIDs []int64) error
}

type Ledger interface {
	CreateBooking(ctx context.Context, input ledger.CreateBookingInput) (*domain.Booking, error)
	GetByNumber(ctx context.Context, number string) (*domain.Booking, error)
	ListExpired(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
	Confirm(ctx context.Context, number string) (*domain.Booking, error)
	FailPayment(ctx context.Context, number string) (*domain.Booking, error)
	Cancel(ctx context.Context, number string) (*domain.Booking, error)
	Expire(ctx context.Context, number string) (*domain.Booking, error)
	Refund(ctx context.Context, number string) (*domain.Booking, error)
}

type Payments interface {
	RecordAttempt(ctx context.Context, booking *domain.Booking, transactionID string, outcome domain.PaymentStatus) (*domain.Payment, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Service struct {
	inventory          Inventory
	ledger             Ledger
	payments           Payments
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	holdTTL            time.Duration
}

type ServiceOption func(*Service)

func WithNotificationsTopic(topic string) ServiceOption {
	return func(s *Service) {
		s.notificationsTopic = topic
	}
}

func NewService(
	inventory Inventory,
	ledger Ledger,
	payments Payments,
	producer Producer,
	bookingTopic string,
	holdTTL time.Duration,
	opts ...ServiceOption,
) *Service {
	service := &Service{
		inventory:    inventory,
		ledger:       ledger,
		payments:     payments,
		producer:     producer,
		bookingTopic: bookingTopic,
		holdTTL:      holdTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type ReserveInput struct {
	UserID     int64  `json:"user_id"`
	FlightID   int64  `json:"flight_id"`
	SeatClass  string `json:"seat_class"`
	Passengers int    `json:"passengers"`
}

type ReserveResult struct {
	BookingNumber   string              `json:"booking_number"`
	TotalPriceCents int64               `json:"total_price_cents"`
	HoldExpiresAt   time.Time           `json:"hold_expires_at"`
	Seats           []domain.BookedSeat `json:"seats"`
}

// Reserve holds seats, then records the booking against that hold. If the
// booking cannot be recorded the hold is released before the failure is
// surfaced; a failed release is joined with the original error so neither
// is lost.
func (s *Service) Reserve(ctx context.Context, input ReserveInput) (*ReserveResult, error) {
	if input.UserID <= 0 {
		return nil, fmt.Errorf("%w: user reference is required", domain.ErrValidation)
	}
	if input.Passengers <= 0 {
		return nil, fmt.Errorf("%w: passenger count must be positive", domain.ErrValidation)
	}
	class, err := domain.ParseSeatClass(input.SeatClass)
	if err != nil {
		return nil, err
	}

	seats, err := s.inventory.ReserveSeats(ctx, input.FlightID, class, input.Passengers)
	if err != nil {
		return nil, err
	}

	seatIDs := make([]int64, 0, len(seats))
	held := make([]domain.BookedSeat, 0, len(seats))
	var total int64
	for _, seat := range seats {
		seatIDs = append(seatIDs, seat.ID)
		total += seat.PriceCents
		held = append(held, domain.BookedSeat{
			SeatID:     seat.ID,
			SeatNumber: seat.SeatNumber,
			SeatClass:  seat.SeatClass,
			PriceCents: seat.PriceCents,
		})
	}

	booking, err := s.ledger.CreateBooking(ctx, ledger.CreateBookingInput{
		UserID:          input.UserID,
		FlightID:        input.FlightID,
		Passengers:      input.Passengers,
		SeatIDs:         seatIDs,
		TotalPriceCents: total,
		HoldExpiresAt:   time.Now().Add(s.holdTTL),
	})
	if err != nil {
		if relErr := s.inventory.ReleaseSeats(ctx, input.FlightID, seatIDs); relErr != nil {
			return nil, errors.Join(err, fmt.Errorf("release held seats: %w", relErr))
		}
		return nil, err
	}

	s.publish(ctx, "booking_created", booking)

	return &ReserveResult{
		BookingNumber:   booking.BookingNumber,
		TotalPriceCents: booking.TotalPriceCents,
		HoldExpiresAt:   booking.HoldExpiresAt,
		Seats:           held,
	}, nil
}

// ReportPayment records a settlement attempt and finalizes the booking.
// The attempt is recorded first so a duplicate transaction id is rejected
// regardless of booking state; a callback that loses the finalization race
// returns ErrAlreadyFinalized with the booking as it stands, and applies
// nothing.
func (s *Service) ReportPayment(ctx context.Context, number, transactionID, outcome string) (*domain.Booking, error) {
	booking, err := s.ledger.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	status, err := domain.ParsePaymentOutcome(outcome)
	if err != nil {
		return nil, err
	}

	if _, err := s.payments.RecordAttempt(ctx, booking, transactionID, status); err != nil {
		if errors.Is(err, domain.ErrAlreadyFinalized) {
			return booking, domain.ErrAlreadyFinalized
		}
		return nil, err
	}

	switch status {
	case domain.PaymentStatusPaid:
		updated, err := s.ledger.Confirm(ctx, number)
		if errors.Is(err, domain.ErrAlreadyFinalized) {
			return booking, domain.ErrAlreadyFinalized
		}
		if err != nil {
			return nil, err
		}
		s.publish(ctx, "booking_confirmed", updated)
		return updated, nil

	case domain.PaymentStatusFailed:
		updated, err := s.ledger.FailPayment(ctx, number)
		if errors.Is(err, domain.ErrAlreadyFinalized) {
			return booking, domain.ErrAlreadyFinalized
		}
		if err != nil {
			return nil, err
		}
		s.publish(ctx, "booking_cancelled", updated)
		return updated, nil

	default: // REFUNDED, validated by the tracker against a paid booking
		updated, err := s.ledger.Refund(ctx, number)
		if err != nil {
			return nil, err
		}
		s.publish(ctx, "payment_refunded", updated)
		return updated, nil
	}
}

func (s *Service) Cancel(ctx context.Context, number string, requesterID int64) (*domain.Booking, error) {
	booking, err := s.ledger.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if booking.UserID != requesterID {
		// Do not disclose other users' bookings.
		return nil, domain.ErrBookingNotFound
	}

	updated, err := s.ledger.Cancel(ctx, number)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_cancelled", updated)
	return updated, nil
}

func (s *Service) GetBooking(ctx context.Context, number string) (*domain.Booking, error) {
	return s.ledger.GetByNumber(ctx, number)
}

// SweepExpired compensates bookings left unpaid past their hold. Each
// expiry is a conditional transition out of PENDING, so a sweep racing a
// late payment callback finalizes each booking exactly once; losing the
// race is not an error.
func (s *Service) SweepExpired(ctx context.Context) ([]domain.Booking, error) {
	candidates, err := s.ledger.ListExpired(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	expired := make([]domain.Booking, 0, len(candidates))
	for _, b := range candidates {
		updated, err := s.ledger.Expire(ctx, b.BookingNumber)
		if errors.Is(err, domain.ErrAlreadyFinalized) {
			continue
		}
		if err != nil {
			log.Printf("expire booking %s: %v", b.BookingNumber, err)
			continue
		}
		expired = append(expired, *updated)
		s.publish(ctx, "booking_expired", updated)
	}
	return expired, nil
}

func (s *Service) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:            eventType,
		BookingNumber:   booking.BookingNumber,
		UserID:          booking.UserID,
		FlightID:        booking.FlightID,
		Passengers:      booking.Passengers,
		TotalPriceCents: booking.TotalPriceCents,
		Status:          string(booking.Status),
		PaymentStatus:   string(booking.PaymentStatus),
		HoldExpiresAt:   booking.HoldExpiresAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.BookingNumber, event); err != nil {
		log.Printf("WARNING: failed to publish %s event for booking %s: %v", eventType, booking.BookingNumber, err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.BookingNumber, event); err != nil {
			log.Printf("WARNING: failed to publish %s notification for booking %s: %v", eventType, booking.BookingNumber, err)
		}
	}
}

var _ BookingUseCase = (*Service)(nil)
