package services

import (
	"context"
	"testing"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

// stubTx is an in-memory Tx over a single ride with a fixed pending sum.
type stubTx struct {
	ride    models.Ride
	pending int
}

func (t *stubTx) RideID() int64 { return t.ride.ID }

func (t *stubTx) Ride(context.Context) (models.Ride, error) { return t.ride, nil }

func (t *stubTx) UpdateRideSeats(_ context.Context, available, confirmed int) error {
	t.ride.AvailableSeats = available
	t.ride.ConfirmedSeats = confirmed
	return nil
}

func (t *stubTx) Booking(_ context.Context, id int64) (models.Booking, error) {
	return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
}

func (t *stubTx) InsertBooking(context.Context, *models.Booking) error { return nil }

func (t *stubTx) SetBookingStatus(context.Context, int64, models.BookingStatus) error { return nil }

func (t *stubTx) PendingSeats(context.Context) (int, error) { return t.pending, nil }

func TestReserve(t *testing.T) {
	inv := SeatInventory{}
	tx := &stubTx{ride: models.Ride{ID: 1, TotalCapacity: 4, AvailableSeats: 4}}

	if _, err := inv.Reserve(context.Background(), tx, 0); domain.CodeOf(err) != domain.CodeInvalidSeatCount {
		t.Fatalf("expected INVALID_SEAT_COUNT, got %v", err)
	}
	if _, err := inv.Reserve(context.Background(), tx, 5); !domain.IsInsufficientCapacity(err) {
		t.Fatalf("expected INSUFFICIENT_CAPACITY, got %v", err)
	}
	if tx.ride.AvailableSeats != 4 {
		t.Fatalf("failed reserve changed counters: %+v", tx.ride)
	}

	r, err := inv.Reserve(context.Background(), tx, 4)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if r.AvailableSeats != 0 {
		t.Fatalf("available = %d, want 0", r.AvailableSeats)
	}
}

func TestConfirmLeavesAvailableUntouched(t *testing.T) {
	inv := SeatInventory{}
	tx := &stubTx{ride: models.Ride{ID: 1, TotalCapacity: 4, AvailableSeats: 1, ConfirmedSeats: 1}, pending: 2}

	if err := inv.Confirm(context.Background(), tx, 2); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if tx.ride.AvailableSeats != 1 || tx.ride.ConfirmedSeats != 3 {
		t.Fatalf("unexpected counters: %+v", tx.ride)
	}
}

func TestConfirmBeyondCapacity(t *testing.T) {
	inv := SeatInventory{}
	tx := &stubTx{ride: models.Ride{ID: 1, TotalCapacity: 4, AvailableSeats: 2, ConfirmedSeats: 1}}

	if err := inv.Confirm(context.Background(), tx, 2); !domain.IsInvariantViolation(err) {
		t.Fatalf("expected INVARIANT_VIOLATION, got %v", err)
	}
}

func TestDoubleReleaseIsInvariantViolation(t *testing.T) {
	inv := SeatInventory{}
	tx := &stubTx{ride: models.Ride{ID: 1, TotalCapacity: 4, AvailableSeats: 2}, pending: 2}

	if err := inv.Release(context.Background(), tx, 2); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := inv.Release(context.Background(), tx, 2); !domain.IsInvariantViolation(err) {
		t.Fatalf("expected INVARIANT_VIOLATION on second release, got %v", err)
	}
	if tx.ride.AvailableSeats != 4 {
		t.Fatalf("available = %d, want 4", tx.ride.AvailableSeats)
	}
}

func TestVerify(t *testing.T) {
	inv := SeatInventory{}
	cases := []struct {
		name    string
		ride    models.Ride
		pending int
		ok      bool
	}{
		{"balanced", models.Ride{ID: 1, TotalCapacity: 5, AvailableSeats: 1, ConfirmedSeats: 2}, 2, true},
		{"missing seats", models.Ride{ID: 1, TotalCapacity: 5, AvailableSeats: 1, ConfirmedSeats: 2}, 1, false},
		{"negative available", models.Ride{ID: 1, TotalCapacity: 5, AvailableSeats: -1, ConfirmedSeats: 4}, 2, false},
	}
	for _, tc := range cases {
		err := inv.Verify(context.Background(), &stubTx{ride: tc.ride, pending: tc.pending})
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !domain.IsInvariantViolation(err) {
			t.Fatalf("%s: expected INVARIANT_VIOLATION, got %v", tc.name, err)
		}
	}
}
