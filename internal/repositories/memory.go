package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

// MemoryStore is an in-process Store. A mutex per ride serializes InRide
// units; each unit stages its writes and publishes them in one step on
// success.
type MemoryStore struct {
	mu       sync.RWMutex
	rides    map[int64]models.Ride
	bookings map[int64]models.Booking
	rideSeq  int64
	bookSeq  int64

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rides:    map[int64]models.Ride{},
		bookings: map[int64]models.Booking{},
		locks:    map[int64]*sync.Mutex{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) rideLock(id int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *MemoryStore) CreateRide(_ context.Context, r *models.Ride) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rideSeq++
	now := s.now()
	r.ID = s.rideSeq
	r.CreatedAt = now
	r.UpdatedAt = now
	s.rides[r.ID] = *r
	return nil
}

func (s *MemoryStore) GetRide(_ context.Context, id int64) (models.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rides[id]
	if !ok {
		return models.Ride{}, domain.NotFoundError{Resource: "ride", ID: id}
	}
	return r, nil
}

func (s *MemoryStore) ListRidesByDriver(_ context.Context, driverID int64) ([]models.Ride, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Ride{}
	for _, r := range s.rides {
		if r.DriverID == driverID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TripDate != out[j].TripDate {
			return out[i].TripDate > out[j].TripDate
		}
		if out[i].TripTime != out[j].TripTime {
			return out[i].TripTime > out[j].TripTime
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) SearchRides(_ context.Context, q models.RideSearch) ([]models.Ride, error) {
	src := strings.TrimSpace(q.Source)
	dst := strings.TrimSpace(q.Destination)
	date := strings.TrimSpace(q.TripDate)

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Ride{}
	for _, r := range s.rides {
		if src != "" && !strings.EqualFold(r.Source, src) {
			continue
		}
		if dst != "" && !strings.EqualFold(r.Destination, dst) {
			continue
		}
		if date != "" && r.TripDate != date {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TripDate != out[j].TripDate {
			return out[i].TripDate < out[j].TripDate
		}
		if out[i].TripTime != out[j].TripTime {
			return out[i].TripTime < out[j].TripTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id int64) (models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
	}
	return b, nil
}

func (s *MemoryStore) ListBookingsByPassenger(_ context.Context, passengerID int64) ([]models.BookingView, error) {
	views := s.bookingViews(func(b models.Booking, _ models.Ride) bool {
		return b.PassengerID == passengerID
	})
	sort.Slice(views, func(i, j int) bool { return views[i].ID > views[j].ID })
	return views, nil
}

func (s *MemoryStore) ListBookingsForDriver(_ context.Context, driverID int64, status models.BookingStatus) ([]models.BookingView, error) {
	views := s.bookingViews(func(b models.Booking, r models.Ride) bool {
		return r.DriverID == driverID && (status == "" || b.Status == status)
	})
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views, nil
}

func (s *MemoryStore) bookingViews(match func(models.Booking, models.Ride) bool) []models.BookingView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.BookingView{}
	for _, b := range s.bookings {
		r, ok := s.rides[b.RideID]
		if !ok || !match(b, r) {
			continue
		}
		out = append(out, models.NewBookingView(b, r))
	}
	return out
}

func (s *MemoryStore) InRide(ctx context.Context, rideID int64, fn func(tx Tx) error) error {
	lock := s.rideLock(rideID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	ride, err := s.GetRide(ctx, rideID)
	if err != nil {
		return err
	}

	tx := &memoryTx{store: s, ride: ride, staged: map[int64]models.Booking{}}
	if err := fn(tx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.rideDirty {
		s.rides[ride.ID] = tx.ride
	}
	for id, b := range tx.staged {
		s.bookings[id] = b
	}
	return nil
}

type memoryTx struct {
	store     *MemoryStore
	ride      models.Ride
	rideDirty bool
	staged    map[int64]models.Booking
}

func (t *memoryTx) RideID() int64 { return t.ride.ID }

func (t *memoryTx) Ride(context.Context) (models.Ride, error) {
	return t.ride, nil
}

func (t *memoryTx) UpdateRideSeats(_ context.Context, available, confirmed int) error {
	t.ride.AvailableSeats = available
	t.ride.ConfirmedSeats = confirmed
	t.ride.UpdatedAt = t.store.now()
	t.rideDirty = true
	return nil
}

func (t *memoryTx) Booking(_ context.Context, id int64) (models.Booking, error) {
	if b, ok := t.staged[id]; ok {
		return b, nil
	}
	t.store.mu.RLock()
	b, ok := t.store.bookings[id]
	t.store.mu.RUnlock()
	if !ok || b.RideID != t.ride.ID {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
	}
	return b, nil
}

func (t *memoryTx) InsertBooking(_ context.Context, b *models.Booking) error {
	t.store.mu.Lock()
	t.store.bookSeq++
	id := t.store.bookSeq
	t.store.mu.Unlock()

	now := t.store.now()
	b.ID = id
	b.RideID = t.ride.ID
	b.CreatedAt = now
	b.UpdatedAt = now
	t.staged[id] = *b
	return nil
}

func (t *memoryTx) SetBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	b, err := t.Booking(ctx, id)
	if err != nil {
		return err
	}
	b.Status = status
	b.UpdatedAt = t.store.now()
	t.staged[id] = b
	return nil
}

func (t *memoryTx) PendingSeats(context.Context) (int, error) {
	sum := 0
	t.store.mu.RLock()
	for id, b := range t.store.bookings {
		if _, overridden := t.staged[id]; overridden {
			continue
		}
		if b.RideID == t.ride.ID && b.Status == models.StatusPending {
			sum += b.SeatsBooked
		}
	}
	t.store.mu.RUnlock()
	for _, b := range t.staged {
		if b.Status == models.StatusPending {
			sum += b.SeatsBooked
		}
	}
	return sum, nil
}
