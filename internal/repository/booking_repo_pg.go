package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking, seatIDs []int64) error
	GetByNumber(ctx context.Context, number string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error)
	ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error)
	ListByBookingDateRange(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
	ListExpiredPending(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
	ConfirmPending(ctx context.Context, number string) (*domain.Booking, error)
	CancelAndRelease(ctx context.Context, number string, from []domain.BookingStatus, payment domain.PaymentStatus) (*domain.Booking, error)
	CompleteConfirmed(ctx context.Context, number string) (*domain.Booking, error)
	RefundPaid(ctx context.Context, number string) (*domain.Booking, error)
}

const bookingColumns = `id, booking_number, user_id, flight_id, passengers, total_price_cents, status, payment_status, hold_expires_at, booking_date, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.BookingNumber, &b.UserID, &b.FlightID, &b.Passengers, &b.TotalPriceCents,
		&b.Status, &b.PaymentStatus, &b.HoldExpiresAt, &b.BookingDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts the booking and its seat associations in one transaction.
// A booking-number collision surfaces as ErrBookingNumberConflict so the
// ledger can regenerate and retry.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking, seatIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	booking.Status = domain.BookingStatusPending
	booking.PaymentStatus = domain.PaymentStatusPending
	err = tx.QueryRow(ctx, `INSERT INTO bookings (booking_number, user_id, flight_id, passengers, total_price_cents, status, payment_status, hold_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, booking_date, created_at, updated_at`,
		booking.BookingNumber, booking.UserID, booking.FlightID, booking.Passengers, booking.TotalPriceCents,
		booking.Status, booking.PaymentStatus, booking.HoldExpiresAt).
		Scan(&booking.ID, &booking.BookingDate, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrBookingNumberConflict
		}
		return err
	}

	if _, err := tx.Exec(ctx, `INSERT INTO booking_seats (booking_id, seat_id) SELECT $1, unnest($2::bigint[])`, booking.ID, seatIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_number=$1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	seatRows, err := r.db.Query(ctx, `SELECT s.id, s.seat_number, s.seat_class, s.price_cents
		FROM booking_seats bs JOIN seats s ON s.id = bs.seat_id
		WHERE bs.booking_id=$1 ORDER BY s.seat_number`, b.ID)
	if err != nil {
		return nil, err
	}
	defer seatRows.Close()
	for seatRows.Next() {
		var s domain.BookedSeat
		if err := seatRows.Scan(&s.SeatID, &s.SeatNumber, &s.SeatClass, &s.PriceCents); err != nil {
			return nil, err
		}
		b.Seats = append(b.Seats, s)
	}
	if err := seatRows.Err(); err != nil {
		return nil, err
	}

	payRows, err := r.db.Query(ctx, `SELECT id, booking_id, transaction_id, status, created_at FROM payments WHERE booking_id=$1 ORDER BY created_at, id`, b.ID)
	if err != nil {
		return nil, err
	}
	defer payRows.Close()
	for payRows.Next() {
		var p domain.Payment
		if err := payRows.Scan(&p.ID, &p.BookingID, &p.TransactionID, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		b.Payments = append(b.Payments, p)
	}
	return b, payRows.Err()
}

func (r *PGBookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY booking_date DESC`, userID)
}

func (r *PGBookingRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE flight_id=$1 ORDER BY booking_date DESC`, flightID)
}

func (r *PGBookingRepository) ListByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status=$1 ORDER BY booking_date DESC`, status)
}

func (r *PGBookingRepository) ListByBookingDateRange(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_date >= $1 AND booking_date < $2 ORDER BY booking_date`, from, to)
}

func (r *PGBookingRepository) ListExpiredPending(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE status=$1 AND hold_expires_at <= $2 ORDER BY hold_expires_at`,
		domain.BookingStatusPending, deadline)
}

// ConfirmPending is one side of the finalization race. The conditional
// update only succeeds while the booking is still PENDING, so a concurrent
// expiry sweep and a payment callback can never both win.
func (r *PGBookingRepository) ConfirmPending(ctx context.Context, number string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$2, payment_status=$3, updated_at=now()
		WHERE booking_number=$1 AND status=$4
		RETURNING `+bookingColumns,
		number, domain.BookingStatusConfirmed, domain.PaymentStatusPaid, domain.BookingStatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlreadyFinalized
	}
	return b, err
}

// CancelAndRelease moves the booking to CANCELLED, returns its occupied
// seats to the pool and removes the seat associations, all in one
// transaction. Only bookings currently in one of the from statuses are
// touched; everyone else sees ErrAlreadyFinalized. An empty payment status
// leaves the payment status as is.
func (r *PGBookingRepository) CancelAndRelease(ctx context.Context, number string, from []domain.BookingStatus, payment domain.PaymentStatus) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	statuses := make([]string, 0, len(from))
	for _, s := range from {
		statuses = append(statuses, string(s))
	}

	b, err := scanBooking(tx.QueryRow(ctx, `UPDATE bookings
		SET status=$2, payment_status = COALESCE(NULLIF($3, ''), payment_status), updated_at=now()
		WHERE booking_number=$1 AND status = ANY($4)
		RETURNING `+bookingColumns,
		number, domain.BookingStatusCancelled, string(payment), statuses))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlreadyFinalized
	}
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `UPDATE seats SET status=$2, updated_at=now()
		WHERE status=$3 AND id IN (SELECT seat_id FROM booking_seats WHERE booking_id=$1)`,
		b.ID, domain.SeatStatusAvailable, domain.SeatStatusOccupied)
	if err != nil {
		return nil, err
	}
	if released := tag.RowsAffected(); released > 0 {
		if _, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats + $2, updated_at=now() WHERE id=$1`, b.FlightID, released); err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM booking_seats WHERE booking_id=$1`, b.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) CompleteConfirmed(ctx context.Context, number string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$2, updated_at=now()
		WHERE booking_number=$1 AND status=$3
		RETURNING `+bookingColumns,
		number, domain.BookingStatusCompleted, domain.BookingStatusConfirmed))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidTransition
	}
	return b, err
}

func (r *PGBookingRepository) RefundPaid(ctx context.Context, number string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET payment_status=$2, updated_at=now()
		WHERE booking_number=$1 AND payment_status=$3
		RETURNING `+bookingColumns,
		number, domain.PaymentStatusRefunded, domain.PaymentStatusPaid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInvalidPaymentState
	}
	return b, err
}

var _ BookingRepository = (*PGBookingRepository)(nil)
