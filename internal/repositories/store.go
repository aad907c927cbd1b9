package repositories

import (
	"context"

	"carpool/internal/domain/models"
)

// Tx is a unit of work holding the exclusive lock of one ride. Reads observe
// the locked state; writes become visible to others only on commit.
type Tx interface {
	RideID() int64
	Ride(ctx context.Context) (models.Ride, error)
	UpdateRideSeats(ctx context.Context, available, confirmed int) error
	// Booking returns a booking of the locked ride. Bookings of other rides
	// read as not found.
	Booking(ctx context.Context, id int64) (models.Booking, error)
	InsertBooking(ctx context.Context, b *models.Booking) error
	SetBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	PendingSeats(ctx context.Context) (int, error)
}

// TxRunner serializes work per ride. fn's error aborts the unit and discards
// every write made through tx.
type TxRunner interface {
	InRide(ctx context.Context, rideID int64, fn func(tx Tx) error) error
}

type RideStore interface {
	CreateRide(ctx context.Context, r *models.Ride) error
	GetRide(ctx context.Context, id int64) (models.Ride, error)
	ListRidesByDriver(ctx context.Context, driverID int64) ([]models.Ride, error)
	SearchRides(ctx context.Context, q models.RideSearch) ([]models.Ride, error)
}

type BookingStore interface {
	GetBooking(ctx context.Context, id int64) (models.Booking, error)
	ListBookingsByPassenger(ctx context.Context, passengerID int64) ([]models.BookingView, error)
	// ListBookingsForDriver lists bookings on the driver's rides; an empty
	// status means every status.
	ListBookingsForDriver(ctx context.Context, driverID int64, status models.BookingStatus) ([]models.BookingView, error)
}

// Store is everything the services need from persistence.
type Store interface {
	RideStore
	BookingStore
	TxRunner
}
