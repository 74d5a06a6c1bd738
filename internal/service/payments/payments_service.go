package payments

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

// PaymentUseCase records externally reported settlement attempts. Attempts
// are append-only; the orchestrator decides what a recorded outcome means
// for the booking.
type PaymentUseCase interface {
	RecordAttempt(ctx context.Context, booking *domain.Booking, transactionID string, outcome domain.PaymentStatus) (*domain.Payment, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
}

type Service struct {
	payments repository.PaymentRepository
}

func NewService(payments repository.PaymentRepository) *Service {
	return &Service{payments: payments}
}

func (s *Service) RecordAttempt(ctx context.Context, booking *domain.Booking, transactionID string, outcome domain.PaymentStatus) (*domain.Payment, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transaction id is required", domain.ErrValidation)
	}
	// A refund is a financial event against settled money; it never touches
	// seat occupancy and only makes sense for a paid booking.
	if outcome == domain.PaymentStatusRefunded && booking.PaymentStatus != domain.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: refund of booking %s with payment status %s", domain.ErrInvalidPaymentState, booking.BookingNumber, booking.PaymentStatus)
	}
	// A booking settles at most once. A PAID report against a booking whose
	// payment status already left PENDING is a gateway retry with a fresh
	// transaction id; no second success row is recorded.
	if outcome == domain.PaymentStatusPaid && booking.PaymentStatus != domain.PaymentStatusPending {
		return nil, fmt.Errorf("%w: booking %s payment status is %s", domain.ErrAlreadyFinalized, booking.BookingNumber, booking.PaymentStatus)
	}

	payment := &domain.Payment{
		BookingID:     booking.ID,
		TransactionID: transactionID,
		Status:        outcome,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *Service) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	return s.payments.ListByBooking(ctx, bookingID)
}

var _ PaymentUseCase = (*Service)(nil)
