package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/google/uuid"
)

const defaultNumberAttempts = 3

// LedgerUseCase owns the booking lifecycle. All transitions out of PENDING
// go through conditional updates in the repository, so concurrent
// finalizers (payment callback vs expiry sweep) resolve to exactly one
// winner.
type LedgerUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetByNumber(ctx context.Context, number string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error)
	ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
	ListExpired(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
	Transition(ctx context.Context, number string, target domain.BookingStatus) (*domain.Booking, error)
	Confirm(ctx context.Context, number string) (*domain.Booking, error)
	FailPayment(ctx context.Context, number string) (*domain.Booking, error)
	Cancel(ctx context.Context, number string) (*domain.Booking, error)
	Expire(ctx context.Context, number string) (*domain.Booking, error)
	Complete(ctx context.Context, number string) (*domain.Booking, error)
	Refund(ctx context.Context, number string) (*domain.Booking, error)
}

type CreateBookingInput struct {
	UserID          int64
	FlightID        int64
	Passengers      int
	SeatIDs         []int64
	TotalPriceCents int64
	HoldExpiresAt   time.Time
}

type Service struct {
	bookings       repository.BookingRepository
	numberAttempts int
}

type ServiceOption func(*Service)

func WithNumberAttempts(attempts int) ServiceOption {
	return func(s *Service) {
		if attempts > 0 {
			s.numberAttempts = attempts
		}
	}
}

func NewService(bookings repository.BookingRepository, opts ...ServiceOption) *Service {
	service := &Service{
		bookings:       bookings,
		numberAttempts: defaultNumberAttempts,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// GenerateBookingNumber produces BK + millisecond timestamp + 6 uppercase
// alphanumerics. Collisions are unlikely but not impossible, so callers
// must verify against storage and retry.
func GenerateBookingNumber() string {
	return "BK" + strconv.FormatInt(time.Now().UnixMilli(), 10) + strings.ToUpper(uuid.NewString()[:6])
}

func (s *Service) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.Passengers <= 0 {
		return nil, fmt.Errorf("%w: passenger count must be positive", domain.ErrValidation)
	}
	if len(input.SeatIDs) != input.Passengers {
		return nil, fmt.Errorf("%w: %d seats held for %d passengers", domain.ErrValidation, len(input.SeatIDs), input.Passengers)
	}

	for attempt := 0; attempt < s.numberAttempts; attempt++ {
		booking := &domain.Booking{
			BookingNumber:   GenerateBookingNumber(),
			UserID:          input.UserID,
			FlightID:        input.FlightID,
			Passengers:      input.Passengers,
			TotalPriceCents: input.TotalPriceCents,
			HoldExpiresAt:   input.HoldExpiresAt,
		}
		err := s.bookings.Create(ctx, booking, input.SeatIDs)
		if errors.Is(err, domain.ErrBookingNumberConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return booking, nil
	}
	return nil, fmt.Errorf("%w: gave up after %d attempts", domain.ErrBookingNumberConflict, s.numberAttempts)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	return s.bookings.GetByNumber(ctx, number)
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *Service) ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error) {
	return s.bookings.ListByFlight(ctx, flightID)
}

func (s *Service) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	return s.bookings.ListByStatus(ctx, status)
}

func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	return s.bookings.ListByBookingDateRange(ctx, from, to)
}

func (s *Service) ListExpired(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	return s.bookings.ListExpiredPending(ctx, deadline)
}

// Transition applies a requested status edge after checking it against the
// booking state machine. CONFIRMED additionally requires the payment to be
// settled; use Confirm for the payment callback path.
func (s *Service) Transition(ctx context.Context, number string, target domain.BookingStatus) (*domain.Booking, error) {
	booking, err := s.bookings.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !booking.Status.CanTransition(target) {
		return nil, fmt.Errorf("%w: booking %s %s -> %s", domain.ErrInvalidTransition, number, booking.Status, target)
	}

	switch target {
	case domain.BookingStatusConfirmed:
		if booking.PaymentStatus != domain.PaymentStatusPaid {
			return nil, fmt.Errorf("%w: booking %s is not paid", domain.ErrInvalidPaymentState, number)
		}
		return s.Confirm(ctx, number)
	case domain.BookingStatusCancelled:
		return s.Cancel(ctx, number)
	case domain.BookingStatusCompleted:
		return s.Complete(ctx, number)
	default:
		return nil, fmt.Errorf("%w: booking %s -> %s", domain.ErrInvalidTransition, number, target)
	}
}

func (s *Service) Confirm(ctx context.Context, number string) (*domain.Booking, error) {
	return s.bookings.ConfirmPending(ctx, number)
}

func (s *Service) FailPayment(ctx context.Context, number string) (*domain.Booking, error) {
	return s.bookings.CancelAndRelease(ctx, number, []domain.BookingStatus{domain.BookingStatusPending}, domain.PaymentStatusFailed)
}

// Cancel is valid from PENDING or CONFIRMED. Seats return to the pool and
// the seat associations are removed; refunding a paid booking is a
// separate financial event and is not triggered here.
func (s *Service) Cancel(ctx context.Context, number string) (*domain.Booking, error) {
	booking, err := s.bookings.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if booking.Status.Terminal() {
		return nil, fmt.Errorf("%w: booking %s is %s", domain.ErrBookingTerminal, number, booking.Status)
	}

	updated, err := s.bookings.CancelAndRelease(ctx, number,
		[]domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusConfirmed}, "")
	if errors.Is(err, domain.ErrAlreadyFinalized) {
		// Lost a race with another finalizer between the read and the update.
		return nil, fmt.Errorf("%w: booking %s", domain.ErrBookingTerminal, number)
	}
	return updated, err
}

func (s *Service) Expire(ctx context.Context, number string) (*domain.Booking, error) {
	return s.bookings.CancelAndRelease(ctx, number, []domain.BookingStatus{domain.BookingStatusPending}, "")
}

func (s *Service) Complete(ctx context.Context, number string) (*domain.Booking, error) {
	return s.bookings.CompleteConfirmed(ctx, number)
}

func (s *Service) Refund(ctx context.Context, number string) (*domain.Booking, error) {
	return s.bookings.RefundPaid(ctx, number)
}

var _ LedgerUseCase = (*Service)(nil)
