package domain

import (
	"fmt"
	"time"
)

// Payment is one settlement attempt reported against a booking. The
// transaction id is supplied by the external gateway and unique across all
// bookings. Attempts are append-only; the booking's payment status is the
// authoritative outcome.
type Payment struct {
	ID            int64         `json:"id"`
	BookingID     int64         `json:"booking_id"`
	TransactionID string        `json:"transaction_id"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// ParsePaymentOutcome validates an externally reported settlement outcome.
// PENDING is not a reportable outcome.
func ParsePaymentOutcome(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return PaymentStatus(s), nil
	default:
		return "", fmt.Errorf("%w: unknown payment outcome %q", ErrValidation, s)
	}
}
