package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

const bookingColumns = `id, ride_id, passenger_id, seats_booked, status, created_at, updated_at`

const bookingViewQuery = `
	SELECT
		b.id, b.ride_id, b.passenger_id, b.seats_booked, b.status, b.created_at, b.updated_at,
		r.driver_id, r.source, r.destination,
		DATE_FORMAT(r.trip_date, '%Y-%m-%d'), r.trip_time, r.price_per_seat
	FROM bookings b
	JOIN rides r ON r.id = b.ride_id`

func scanBooking(row rowScanner) (models.Booking, error) {
	var b models.Booking
	var status string
	err := row.Scan(
		&b.ID,
		&b.RideID,
		&b.PassengerID,
		&b.SeatsBooked,
		&status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	b.Status = models.BookingStatus(status)
	return b, err
}

func (s MySQLStore) GetBooking(ctx context.Context, id int64) (models.Booking, error) {
	db := s.db()
	if db == nil {
		return models.Booking{}, domain.InternalError{Msg: "database not connected"}
	}
	b, err := scanBooking(db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
		}
		return models.Booking{}, fmt.Errorf("get booking %d: %w", id, err)
	}
	return b, nil
}

func (s MySQLStore) ListBookingsByPassenger(ctx context.Context, passengerID int64) ([]models.BookingView, error) {
	return s.queryBookingViews(ctx,
		bookingViewQuery+` WHERE b.passenger_id = ? ORDER BY b.created_at DESC, b.id DESC`,
		passengerID,
	)
}

func (s MySQLStore) ListBookingsForDriver(ctx context.Context, driverID int64, status models.BookingStatus) ([]models.BookingView, error) {
	if status == "" {
		return s.queryBookingViews(ctx,
			bookingViewQuery+` WHERE r.driver_id = ? ORDER BY b.created_at ASC, b.id ASC`,
			driverID,
		)
	}
	return s.queryBookingViews(ctx,
		bookingViewQuery+` WHERE r.driver_id = ? AND b.status = ? ORDER BY b.created_at ASC, b.id ASC`,
		driverID, string(status),
	)
}

func (s MySQLStore) queryBookingViews(ctx context.Context, query string, args ...any) ([]models.BookingView, error) {
	db := s.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "database not connected"}
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	out := []models.BookingView{}
	for rows.Next() {
		var (
			v      models.BookingView
			status string
		)
		if err := rows.Scan(
			&v.ID,
			&v.RideID,
			&v.PassengerID,
			&v.SeatsBooked,
			&status,
			&v.CreatedAt,
			&v.UpdatedAt,
			&v.DriverID,
			&v.Source,
			&v.Destination,
			&v.TripDate,
			&v.TripTime,
			&v.PricePerSeat,
		); err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		v.Status = models.BookingStatus(status)
		v.TotalPrice = v.PricePerSeat * int64(v.SeatsBooked)
		out = append(out, v)
	}
	return out, rows.Err()
}
