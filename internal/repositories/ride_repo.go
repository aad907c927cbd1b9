package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "carpool/internal/config"
	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

const rideColumns = `
	id, driver_id, source, destination,
	DATE_FORMAT(trip_date, '%Y-%m-%d'), trip_time,
	price_per_seat, total_capacity, available_seats, confirmed_seats,
	created_at, updated_at`

// MySQLStore implements Store on MySQL. Per-ride serialization relies on
// InnoDB row locks taken with SELECT ... FOR UPDATE.
type MySQLStore struct {
	DB         *sql.DB
	MaxRetries int
}

func (s MySQLStore) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (models.Ride, error) {
	var r models.Ride
	err := row.Scan(
		&r.ID,
		&r.DriverID,
		&r.Source,
		&r.Destination,
		&r.TripDate,
		&r.TripTime,
		&r.PricePerSeat,
		&r.TotalCapacity,
		&r.AvailableSeats,
		&r.ConfirmedSeats,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func (s MySQLStore) CreateRide(ctx context.Context, r *models.Ride) error {
	db := s.db()
	if db == nil {
		return domain.InternalError{Msg: "database not connected"}
	}
	now := time.Now().UTC()
	res, err := db.ExecContext(ctx, `
		INSERT INTO rides
			(driver_id, source, destination, trip_date, trip_time,
			 price_per_seat, total_capacity, available_seats, confirmed_seats,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.DriverID, r.Source, r.Destination, r.TripDate, r.TripTime,
		r.PricePerSeat, r.TotalCapacity, r.AvailableSeats, r.ConfirmedSeats,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert ride id: %w", err)
	}
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

func (s MySQLStore) GetRide(ctx context.Context, id int64) (models.Ride, error) {
	db := s.db()
	if db == nil {
		return models.Ride{}, domain.InternalError{Msg: "database not connected"}
	}
	r, err := scanRide(db.QueryRowContext(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = ? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ride{}, domain.NotFoundError{Resource: "ride", ID: id}
		}
		return models.Ride{}, fmt.Errorf("get ride %d: %w", id, err)
	}
	return r, nil
}

func (s MySQLStore) ListRidesByDriver(ctx context.Context, driverID int64) ([]models.Ride, error) {
	return s.queryRides(ctx, `SELECT `+rideColumns+` FROM rides WHERE driver_id = ? ORDER BY trip_date DESC, trip_time DESC, id DESC`, driverID)
}

// SearchRides matches source and destination case-insensitively and the date
// exactly. Empty filters are ignored.
func (s MySQLStore) SearchRides(ctx context.Context, q models.RideSearch) ([]models.Ride, error) {
	where := []string{}
	args := []any{}
	if v := strings.TrimSpace(q.Source); v != "" {
		where = append(where, "LOWER(source) = LOWER(?)")
		args = append(args, v)
	}
	if v := strings.TrimSpace(q.Destination); v != "" {
		where = append(where, "LOWER(destination) = LOWER(?)")
		args = append(args, v)
	}
	if v := strings.TrimSpace(q.TripDate); v != "" {
		where = append(where, "trip_date = ?")
		args = append(args, v)
	}

	query := `SELECT ` + rideColumns + ` FROM rides`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY trip_date ASC, trip_time ASC, id ASC`
	return s.queryRides(ctx, query, args...)
}

func (s MySQLStore) queryRides(ctx context.Context, query string, args ...any) ([]models.Ride, error) {
	db := s.db()
	if db == nil {
		return nil, domain.InternalError{Msg: "database not connected"}
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rides: %w", err)
	}
	defer rows.Close()

	out := []models.Ride{}
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
