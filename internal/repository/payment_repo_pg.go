package repository

import (
	"context"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func (r *PGPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	err := r.db.QueryRow(ctx, `INSERT INTO payments (booking_id, transaction_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		payment.BookingID, payment.TransactionID, payment.Status).
		Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateTransaction
		}
		return err
	}
	return nil
}

func (r *PGPaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, transaction_id, status, created_at FROM payments WHERE booking_id=$1 ORDER BY created_at, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.TransactionID, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
