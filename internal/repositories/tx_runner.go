package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intdb "carpool/internal/db"
	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

// InRide locks the ride row for the length of one transaction and runs fn
// against it. Deadlocks and lock wait timeouts replay the whole unit.
func (s MySQLStore) InRide(ctx context.Context, rideID int64, fn func(tx Tx) error) error {
	db := s.db()
	if db == nil {
		return domain.InternalError{Msg: "database not connected"}
	}
	return intdb.WithRetryTx(ctx, db, s.MaxRetries, func(sqlTx *sql.Tx) error {
		ride, err := scanRide(sqlTx.QueryRowContext(ctx,
			`SELECT `+rideColumns+` FROM rides WHERE id = ? FOR UPDATE`, rideID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFoundError{Resource: "ride", ID: rideID}
			}
			return fmt.Errorf("lock ride %d: %w", rideID, err)
		}
		return fn(&mysqlTx{tx: sqlTx, ride: ride})
	})
}

type mysqlTx struct {
	tx   *sql.Tx
	ride models.Ride
}

func (t *mysqlTx) RideID() int64 { return t.ride.ID }

func (t *mysqlTx) Ride(context.Context) (models.Ride, error) {
	return t.ride, nil
}

func (t *mysqlTx) UpdateRideSeats(ctx context.Context, available, confirmed int) error {
	now := time.Now().UTC()
	if _, err := t.tx.ExecContext(ctx, `
		UPDATE rides
		SET available_seats = ?, confirmed_seats = ?, updated_at = ?
		WHERE id = ?
	`, available, confirmed, now, t.ride.ID); err != nil {
		return fmt.Errorf("update ride %d seats: %w", t.ride.ID, err)
	}
	t.ride.AvailableSeats = available
	t.ride.ConfirmedSeats = confirmed
	t.ride.UpdatedAt = now
	return nil
}

func (t *mysqlTx) Booking(ctx context.Context, id int64) (models.Booking, error) {
	b, err := scanBooking(t.tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND ride_id = ? FOR UPDATE`, id, t.ride.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
		}
		return models.Booking{}, fmt.Errorf("lock booking %d: %w", id, err)
	}
	return b, nil
}

func (t *mysqlTx) InsertBooking(ctx context.Context, b *models.Booking) error {
	now := time.Now().UTC()
	b.RideID = t.ride.ID
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO bookings (ride_id, passenger_id, seats_booked, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, b.RideID, b.PassengerID, b.SeatsBooked, string(b.Status), now, now)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert booking id: %w", err)
	}
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

func (t *mysqlTx) SetBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE bookings SET status = ?, updated_at = ?
		WHERE id = ? AND ride_id = ?
	`, string(status), time.Now().UTC(), id, t.ride.ID)
	if err != nil {
		return fmt.Errorf("update booking %d status: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundError{Resource: "booking", ID: id}
	}
	return nil
}

func (t *mysqlTx) PendingSeats(ctx context.Context) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(seats_booked), 0)
		FROM bookings
		WHERE ride_id = ? AND status = ?
	`, t.ride.ID, string(models.StatusPending)).Scan(&n); err != nil {
		return 0, fmt.Errorf("sum pending seats of ride %d: %w", t.ride.ID, err)
	}
	return n, nil
}
