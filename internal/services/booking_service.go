package services

import (
	"context"
	"fmt"
	"time"

	"carpool/internal/cache"
	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/logger"
	"carpool/internal/notify"
	"carpool/internal/repositories"
	"carpool/internal/utils"
)

const defaultCacheTTL = 30 * time.Second

// BookingService drives the booking state machine. It is the only writer of
// booking status and the only caller of SeatInventory.
type BookingService struct {
	Store     repositories.Store
	Inventory SeatInventory
	Events    EventPublisher
	Notifier  Notifier
	Cache     cache.Cache
	CacheTTL  time.Duration
	Log       logger.Logger
	Now       func() time.Time
}

func (s BookingService) logger() logger.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logger.Discard()
}

func (s BookingService) cache() cache.Cache {
	if s.Cache != nil {
		return s.Cache
	}
	return cache.Noop{}
}

func (s BookingService) cacheTTL() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return defaultCacheTTL
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s BookingService) RequestBooking(ctx context.Context, p domain.Principal, rideID int64, seats int) (models.Booking, error) {
	return s.Apply(ctx, p, models.RequestBooking{RideID: rideID, Seats: seats})
}

func (s BookingService) AcceptBooking(ctx context.Context, p domain.Principal, bookingID int64) (models.Booking, error) {
	return s.Apply(ctx, p, models.AcceptBooking{BookingID: bookingID})
}

func (s BookingService) RejectBooking(ctx context.Context, p domain.Principal, bookingID int64) (models.Booking, error) {
	return s.Apply(ctx, p, models.RejectBooking{BookingID: bookingID})
}

func (s BookingService) CancelBooking(ctx context.Context, p domain.Principal, bookingID int64) error {
	_, err := s.Apply(ctx, p, models.CancelBooking{BookingID: bookingID})
	return err
}

// Apply runs one action as a single unit on the booking's ride: the status
// write and the seat counter change commit together or not at all. Events,
// notifications and cache invalidation happen only after commit and never
// fail the action.
func (s BookingService) Apply(ctx context.Context, p domain.Principal, action models.Action) (models.Booking, error) {
	if action == nil {
		return models.Booking{}, domain.ValidationError{Field: "action", Msg: "is required"}
	}
	tr, ok := models.Transitions[action.Kind()]
	if !ok {
		return models.Booking{}, domain.InternalError{Msg: fmt.Sprintf("no transition for action %q", action.Kind())}
	}
	log := s.logger().Action(string(tr.Kind) + "_booking").With("user_id", p.UserID)

	if !p.Is(tr.Actor) {
		return models.Booking{}, domain.AuthorizationError{Msg: fmt.Sprintf("%s requires role %s", tr.Kind, tr.Actor)}
	}

	rideID, err := s.rideOf(ctx, action)
	if err != nil {
		return models.Booking{}, err
	}

	var (
		booking models.Booking
		ride    models.Ride
	)
	err = s.Store.InRide(ctx, rideID, func(tx repositories.Tx) error {
		var err error
		booking, err = s.transition(ctx, tx, p, tr, action)
		if err == nil {
			err = s.Inventory.Verify(ctx, tx)
		}
		if err != nil {
			if domain.IsInvariantViolation(err) {
				s.logInvariant(ctx, log, tx, booking, action, err)
			}
			return err
		}
		ride, err = tx.Ride(ctx)
		return err
	})
	if err != nil {
		if !domain.IsInvariantViolation(err) {
			log.Debug("booking action refused", "ride_id", rideID, "code", domain.CodeOf(err), "reason", err.Error())
		}
		return models.Booking{}, err
	}

	log.Info("booking transition committed",
		"booking_id", booking.ID,
		"ride_id", ride.ID,
		"status", booking.Status.String(),
		"seats", booking.SeatsBooked,
		"available_seats", ride.AvailableSeats,
		"confirmed_seats", ride.ConfirmedSeats,
	)
	s.afterCommit(ctx, tr, booking, ride)
	return booking, nil
}

// rideOf resolves the ride whose lock the action needs. A booking's ride
// never changes, so reading it outside the lock is safe.
func (s BookingService) rideOf(ctx context.Context, action models.Action) (int64, error) {
	switch a := action.(type) {
	case models.RequestBooking:
		if a.Seats <= 0 {
			return 0, domain.ValidationError{Field: "seats", Msg: "must be greater than zero"}
		}
		if a.RideID <= 0 {
			return 0, domain.NotFoundError{Resource: "ride", ID: a.RideID}
		}
		return a.RideID, nil
	default:
		id := models.TargetBooking(action)
		if id <= 0 {
			return 0, domain.NotFoundError{Resource: "booking", ID: id}
		}
		b, err := s.Store.GetBooking(ctx, id)
		if err != nil {
			return 0, err
		}
		return b.RideID, nil
	}
}

func (s BookingService) transition(ctx context.Context, tx repositories.Tx, p domain.Principal, tr models.Transition, action models.Action) (models.Booking, error) {
	if a, ok := action.(models.RequestBooking); ok {
		if _, err := s.Inventory.Reserve(ctx, tx, a.Seats); err != nil {
			return models.Booking{}, err
		}
		b := models.Booking{PassengerID: p.UserID, SeatsBooked: a.Seats, Status: tr.To}
		if err := tx.InsertBooking(ctx, &b); err != nil {
			return models.Booking{}, err
		}
		return b, nil
	}

	b, err := tx.Booking(ctx, models.TargetBooking(action))
	if err != nil {
		return models.Booking{}, err
	}
	ride, err := tx.Ride(ctx)
	if err != nil {
		return b, err
	}

	owner := b.PassengerID
	if tr.OwnedByDriver {
		owner = ride.DriverID
	}
	if owner != p.UserID {
		return b, domain.AuthorizationError{Msg: fmt.Sprintf("not allowed to %s booking %d", tr.Kind, b.ID)}
	}
	if b.Status != tr.From {
		return b, domain.TransitionError{BookingID: b.ID, From: b.Status.String(), Action: string(tr.Kind)}
	}

	switch tr.Effect {
	case models.Confirm:
		err = s.Inventory.Confirm(ctx, tx, b.SeatsBooked)
	case models.Release:
		err = s.Inventory.Release(ctx, tx, b.SeatsBooked)
	default:
		err = domain.InternalError{Msg: fmt.Sprintf("unexpected seat effect %s for %s", tr.Effect, tr.Kind)}
	}
	if err != nil {
		return b, err
	}

	if err := tx.SetBookingStatus(ctx, b.ID, tr.To); err != nil {
		return b, err
	}
	b.Status = tr.To
	b.UpdatedAt = s.now()
	return b, nil
}

func (s BookingService) logInvariant(ctx context.Context, log logger.Logger, tx repositories.Tx, b models.Booking, action models.Action, err error) {
	ride, _ := tx.Ride(ctx)
	pending, _ := tx.PendingSeats(ctx)
	log.Error("seat invariant violated, unit rolled back", err,
		"action_kind", string(action.Kind()),
		"ride", ride,
		"pending_seats", pending,
		"booking", b,
	)
}

func (s BookingService) afterCommit(ctx context.Context, tr models.Transition, b models.Booking, r models.Ride) {
	ctx = context.WithoutCancel(ctx)

	s.cache().Del(ctx,
		passengerBookingsKey(b.PassengerID),
		driverPendingKey(r.DriverID),
		driverRidesKey(r.DriverID),
	)

	if s.Events != nil {
		if err := s.Events.Publish(ctx, models.NewBookingEvent(tr.Kind, b, r, s.now())); err != nil {
			s.logger().Error("publish booking event failed", err, "booking_id", b.ID)
		}
	}

	if tr.Kind == models.ActionAccept && s.Notifier != nil {
		s.Notifier.Enqueue(notify.BookingConfirmation(b, r)...)
	}
}

// GetBooking returns a booking to its passenger or to the ride's driver.
func (s BookingService) GetBooking(ctx context.Context, p domain.Principal, id int64) (models.BookingView, error) {
	b, err := s.Store.GetBooking(ctx, id)
	if err != nil {
		return models.BookingView{}, err
	}
	r, err := s.Store.GetRide(ctx, b.RideID)
	if err != nil {
		return models.BookingView{}, err
	}
	if p.UserID != b.PassengerID && p.UserID != r.DriverID && p.Role != domain.RoleAdmin {
		return models.BookingView{}, domain.AuthorizationError{Msg: fmt.Sprintf("not allowed to view booking %d", id)}
	}
	return models.NewBookingView(b, r), nil
}

func (s BookingService) ListForPassenger(ctx context.Context, p domain.Principal) ([]models.BookingView, error) {
	key := passengerBookingsKey(p.UserID)
	var out []models.BookingView
	if s.cache().Get(ctx, key, &out) {
		return out, nil
	}
	out, err := s.Store.ListBookingsByPassenger(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	s.cache().Set(ctx, key, out, s.cacheTTL())
	return out, nil
}

func (s BookingService) PendingForDriver(ctx context.Context, p domain.Principal) ([]models.BookingView, error) {
	key := driverPendingKey(p.UserID)
	var out []models.BookingView
	if s.cache().Get(ctx, key, &out) {
		return out, nil
	}
	out, err := s.Store.ListBookingsForDriver(ctx, p.UserID, models.StatusPending)
	if err != nil {
		return nil, err
	}
	s.cache().Set(ctx, key, out, s.cacheTTL())
	return out, nil
}

func passengerBookingsKey(id int64) string { return cache.Key("passenger", id, "bookings") }
func driverPendingKey(id int64) string     { return cache.Key("driver", id, "pending") }
func driverRidesKey(id int64) string       { return cache.Key("driver", id, "rides") }
