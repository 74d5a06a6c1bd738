package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Search(ctx context.Context, departureAirportID, arrivalAirportID int64, from, to time.Time) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.FlightStatus) (*domain.Flight, error)
	ReserveSeats(ctx context.Context, flightID int64, class domain.SeatClass, count int) ([]domain.Seat, error)
	ReleaseSeats(ctx context.Context, flightID int64, seatIDs []int64) (int, error)
}

const flightColumns = `id, flight_number, airline_id, aircraft_type_id, departure_airport_id, arrival_airport_id, departure_time, arrival_time, base_price_cents, total_seats, available_seats, status, created_at, updated_at`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.ID, &f.FlightNumber, &f.AirlineID, &f.AircraftTypeID, &f.DepartureAirportID, &f.ArrivalAirportID,
		&f.DepartureTime, &f.ArrivalTime, &f.BasePriceCents, &f.TotalSeats, &f.AvailableSeats, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) Search(ctx context.Context, departureAirportID, arrivalAirportID int64, from, to time.Time) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE departure_airport_id=$1 AND arrival_airport_id=$2
		  AND departure_time >= $3 AND departure_time < $4
		  AND status=$5 AND available_seats > 0
		ORDER BY departure_time`,
		departureAirportID, arrivalAirportID, from, to, domain.FlightStatusScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	return f, err
}

func (r *PGFlightRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.FlightStatus) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `UPDATE flights SET status=$3, updated_at=now() WHERE id=$1 AND status=$2 RETURNING `+flightColumns, id, from, to))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("%w: flight %d is no longer %s", domain.ErrInvalidTransition, id, from)
	}
	return f, err
}

// ReserveSeats holds exactly count seats of the requested class in a single
// transaction. The flight row is locked first, which serializes reservation
// and release work per flight; the counter decrement re-validates
// availability at commit time so the counter can never go negative.
func (r *PGFlightRepository) ReserveSeats(ctx context.Context, flightID int64, class domain.SeatClass, count int) ([]domain.Seat, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status domain.FlightStatus
	err = tx.QueryRow(ctx, `SELECT status FROM flights WHERE id=$1 FOR UPDATE`, flightID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	if err != nil {
		return nil, err
	}
	if status != domain.FlightStatusScheduled {
		return nil, fmt.Errorf("%w: flight %d is %s", domain.ErrInvalidFlightState, flightID, status)
	}

	// Lowest seat numbers first so the selection is deterministic.
	rows, err := tx.Query(ctx, `SELECT id, flight_id, seat_number, seat_class, price_cents, status, created_at, updated_at
		FROM seats
		WHERE flight_id=$1 AND seat_class=$2 AND status=$3
		ORDER BY seat_number
		LIMIT $4
		FOR UPDATE`, flightID, class, domain.SeatStatusAvailable, count)
	if err != nil {
		return nil, err
	}

	seats := make([]domain.Seat, 0, count)
	for rows.Next() {
		var s domain.Seat
		if err := rows.Scan(&s.ID, &s.FlightID, &s.SeatNumber, &s.SeatClass, &s.PriceCents, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		seats = append(seats, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seats) < count {
		return nil, fmt.Errorf("%w: flight %d has %d %s seats free, need %d", domain.ErrInsufficientCapacity, flightID, len(seats), class, count)
	}

	ids := make([]int64, 0, len(seats))
	for i := range seats {
		seats[i].Status = domain.SeatStatusOccupied
		ids = append(ids, seats[i].ID)
	}
	if _, err := tx.Exec(ctx, `UPDATE seats SET status=$2, updated_at=now() WHERE id = ANY($1)`, ids, domain.SeatStatusOccupied); err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats - $2, updated_at = now() WHERE id=$1 AND available_seats >= $2`, flightID, count)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: flight %d counter below %d", domain.ErrInsufficientCapacity, flightID, count)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return seats, nil
}

// ReleaseSeats flips the given seats back to AVAILABLE and restores the
// counter by the number of seats actually flipped. Releasing seats that are
// already available is a no-op, so the call is safe to repeat. The returned
// count is the number of seats released.
func (r *PGFlightRepository) ReleaseSeats(ctx context.Context, flightID int64, seatIDs []int64) (int, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var known int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM seats WHERE flight_id=$1 AND id = ANY($2)`, flightID, seatIDs).Scan(&known); err != nil {
		return 0, err
	}
	if known != len(seatIDs) {
		return 0, fmt.Errorf("%w: flight %d owns %d of %d seats", domain.ErrSeatNotFound, flightID, known, len(seatIDs))
	}

	tag, err := tx.Exec(ctx, `UPDATE seats SET status=$3, updated_at=now() WHERE flight_id=$1 AND id = ANY($2) AND status=$4`,
		flightID, seatIDs, domain.SeatStatusAvailable, domain.SeatStatusOccupied)
	if err != nil {
		return 0, err
	}
	released := int(tag.RowsAffected())
	if released > 0 {
		if _, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats + $2, updated_at = now() WHERE id=$1`, flightID, released); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return released, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
