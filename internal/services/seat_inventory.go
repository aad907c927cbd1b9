package services

import (
	"context"
	"fmt"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/repositories"
)

// SeatInventory owns every change to a ride's seat counters. All methods run
// inside the ride's unit of work (repositories.Tx), so reads and writes here
// are never interleaved with another unit on the same ride.
//
// Counters follow
//
//	total == available + confirmed + Σ seats of PENDING bookings
//
// with available and confirmed never negative.
type SeatInventory struct{}

// Reserve takes seats out of available for a new pending booking.
func (SeatInventory) Reserve(ctx context.Context, tx repositories.Tx, seats int) (models.Ride, error) {
	if seats <= 0 {
		return models.Ride{}, domain.ValidationError{Field: "seats", Msg: "must be greater than zero"}
	}
	ride, err := tx.Ride(ctx)
	if err != nil {
		return models.Ride{}, err
	}
	if ride.AvailableSeats < seats {
		return models.Ride{}, domain.CapacityError{RideID: ride.ID, Requested: seats, Available: ride.AvailableSeats}
	}
	if err := tx.UpdateRideSeats(ctx, ride.AvailableSeats-seats, ride.ConfirmedSeats); err != nil {
		return models.Ride{}, err
	}
	return tx.Ride(ctx)
}

// Confirm moves seats of an accepted booking from the pending pool into
// confirmed. Available is untouched; it was decremented at reserve time.
func (SeatInventory) Confirm(ctx context.Context, tx repositories.Tx, seats int) error {
	ride, err := tx.Ride(ctx)
	if err != nil {
		return err
	}
	if seats <= 0 {
		return domain.InvariantError{RideID: ride.ID, Msg: fmt.Sprintf("confirm of %d seat(s)", seats)}
	}
	if ride.Committed()+seats > ride.TotalCapacity {
		return domain.InvariantError{RideID: ride.ID, Msg: fmt.Sprintf(
			"confirm of %d seat(s) exceeds capacity %d (available %d, confirmed %d)",
			seats, ride.TotalCapacity, ride.AvailableSeats, ride.ConfirmedSeats)}
	}
	return tx.UpdateRideSeats(ctx, ride.AvailableSeats, ride.ConfirmedSeats+seats)
}

// Release returns seats of a rejected or cancelled booking to available.
func (SeatInventory) Release(ctx context.Context, tx repositories.Tx, seats int) error {
	ride, err := tx.Ride(ctx)
	if err != nil {
		return err
	}
	if seats <= 0 {
		return domain.InvariantError{RideID: ride.ID, Msg: fmt.Sprintf("release of %d seat(s)", seats)}
	}
	if ride.Committed()+seats > ride.TotalCapacity {
		return domain.InvariantError{RideID: ride.ID, Msg: fmt.Sprintf(
			"release of %d seat(s) exceeds capacity %d (available %d, confirmed %d)",
			seats, ride.TotalCapacity, ride.AvailableSeats, ride.ConfirmedSeats)}
	}
	return tx.UpdateRideSeats(ctx, ride.AvailableSeats+seats, ride.ConfirmedSeats)
}

// Verify audits the ride against its pending bookings as seen by tx.
func (SeatInventory) Verify(ctx context.Context, tx repositories.Tx) error {
	ride, err := tx.Ride(ctx)
	if err != nil {
		return err
	}
	if ride.AvailableSeats < 0 || ride.ConfirmedSeats < 0 {
		return domain.InvariantError{RideID: ride.ID, Msg: fmt.Sprintf(
			"negative counter (available %d, confirmed %d)", ride.AvailableSeats, ride.ConfirmedSeats)}
	}
	pending, err := tx.PendingSeats(ctx)
	if err != nil {
		return err
	}
	if got := ride.AvailableSeats + ride.ConfirmedSeats + pending; got != ride.TotalCapacity {
		return domain.InvariantError{RideID: ride.ID, Msg: fmt.Sprintf(
			"available %d + confirmed %d + pending %d = %d, capacity %d",
			ride.AvailableSeats, ride.ConfirmedSeats, pending, got, ride.TotalCapacity)}
	}
	return nil
}
