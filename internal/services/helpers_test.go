package services

import (
	"context"
	"sync"
	"testing"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/logger"
	"carpool/internal/notify"
	"carpool/internal/repositories"
)

var (
	driver      = domain.Principal{UserID: 100, Role: domain.RoleDriver}
	otherDriver = domain.Principal{UserID: 101, Role: domain.RoleDriver}
	alice       = domain.Principal{UserID: 1, Role: domain.RolePassenger}
	bob         = domain.Principal{UserID: 2, Role: domain.RolePassenger}
)

type recorder struct {
	mu     sync.Mutex
	events []models.BookingEvent
	msgs   []notify.Message
}

func (r *recorder) Publish(_ context.Context, ev models.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) Enqueue(msgs ...notify.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msgs...)
}

func (r *recorder) eventTypes() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	svc   BookingService
	rides RideService
	store *repositories.MemoryStore
	ride  models.Ride
	rec   *recorder
}

func newFixture(t *testing.T, seats int) fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	rec := &recorder{}
	rides := RideService{Store: store}
	ride, err := rides.PostRide(context.Background(), driver, models.RideInput{
		Source:       "Pune",
		Destination:  "Mumbai",
		TripDate:     "2026-11-01",
		TripTime:     "09:30",
		Seats:        seats,
		PricePerSeat: 25000,
	})
	if err != nil {
		t.Fatalf("post ride: %v", err)
	}
	return fixture{
		svc: BookingService{
			Store:    store,
			Events:   rec,
			Notifier: rec,
			Log:      logger.Discard(),
		},
		rides: rides,
		store: store,
		ride:  ride,
		rec:   rec,
	}
}

func (f fixture) currentRide(t *testing.T) models.Ride {
	t.Helper()
	r, err := f.store.GetRide(context.Background(), f.ride.ID)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	return r
}

func (f fixture) request(t *testing.T, p domain.Principal, seats int) models.Booking {
	t.Helper()
	b, err := f.svc.RequestBooking(context.Background(), p, f.ride.ID, seats)
	if err != nil {
		t.Fatalf("request %d seat(s): %v", seats, err)
	}
	return b
}

// assertSeats checks the counters and the full accounting identity.
func (f fixture) assertSeats(t *testing.T, available, confirmed int) {
	t.Helper()
	r := f.currentRide(t)
	if r.AvailableSeats != available || r.ConfirmedSeats != confirmed {
		t.Fatalf("seats = available %d confirmed %d, want %d/%d", r.AvailableSeats, r.ConfirmedSeats, available, confirmed)
	}
	pending, err := f.store.ListBookingsForDriver(context.Background(), r.DriverID, models.StatusPending)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	sum := 0
	for _, v := range pending {
		if v.RideID == r.ID {
			sum += v.SeatsBooked
		}
	}
	if r.AvailableSeats < 0 || r.ConfirmedSeats < 0 || r.AvailableSeats+r.ConfirmedSeats+sum != r.TotalCapacity {
		t.Fatalf("accounting broken: available %d + confirmed %d + pending %d != total %d",
			r.AvailableSeats, r.ConfirmedSeats, sum, r.TotalCapacity)
	}
}
