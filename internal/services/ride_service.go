package services

import (
	"context"
	"strings"
	"time"

	"carpool/internal/cache"
	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/logger"
	"carpool/internal/repositories"
	"carpool/internal/utils"
)

type RideService struct {
	Store    repositories.Store
	Cache    cache.Cache
	CacheTTL time.Duration
	Log      logger.Logger
}

// Earnings sums what a driver has been confirmed for.
type Earnings struct {
	DriverID         int64  `json:"driver_id"`
	AcceptedBookings int    `json:"accepted_bookings"`
	SeatsSold        int    `json:"seats_sold"`
	Total            int64  `json:"total"`
	TotalFormatted   string `json:"total_formatted"`
}

func (s RideService) cache() cache.Cache {
	if s.Cache != nil {
		return s.Cache
	}
	return cache.Noop{}
}

func (s RideService) ttl() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return defaultCacheTTL
}

// PostRide publishes a ride with all seats available.
func (s RideService) PostRide(ctx context.Context, p domain.Principal, in models.RideInput) (models.Ride, error) {
	if !p.Is(domain.RoleDriver) {
		return models.Ride{}, domain.AuthorizationError{Msg: "only drivers can post rides"}
	}

	source := utils.NormalizeSpace(in.Source)
	destination := utils.NormalizeSpace(in.Destination)
	switch {
	case source == "":
		return models.Ride{}, domain.ValidationError{Field: "source", Msg: "is required"}
	case destination == "":
		return models.Ride{}, domain.ValidationError{Field: "destination", Msg: "is required"}
	case strings.EqualFold(source, destination):
		return models.Ride{}, domain.ValidationError{Field: "destination", Msg: "must differ from source"}
	case in.Seats <= 0:
		return models.Ride{}, domain.ValidationError{Field: "seats", Msg: "must be greater than zero"}
	case in.PricePerSeat < 0:
		return models.Ride{}, domain.ValidationError{Field: "price_per_seat", Msg: "must not be negative"}
	}
	date, err := utils.ParseDate(in.TripDate)
	if err != nil {
		return models.Ride{}, domain.ValidationError{Field: "trip_date", Msg: "must be YYYY-MM-DD", Err: err}
	}
	clock, err := utils.ParseClock(in.TripTime)
	if err != nil {
		return models.Ride{}, domain.ValidationError{Field: "trip_time", Msg: "must be HH:MM", Err: err}
	}

	r := models.Ride{
		DriverID:       p.UserID,
		Source:         source,
		Destination:    destination,
		TripDate:       utils.FormatDate(date),
		TripTime:       clock,
		PricePerSeat:   in.PricePerSeat,
		TotalCapacity:  in.Seats,
		AvailableSeats: in.Seats,
		ConfirmedSeats: 0,
	}
	if err := s.Store.CreateRide(ctx, &r); err != nil {
		return models.Ride{}, err
	}
	s.cache().Del(ctx, driverRidesKey(p.UserID))

	if s.Log != nil {
		s.Log.Action("post_ride").Info("ride posted",
			"ride_id", r.ID, "driver_id", r.DriverID, "seats", r.TotalCapacity, "trip_date", r.TripDate)
	}
	return r, nil
}

func (s RideService) GetRide(ctx context.Context, id int64) (models.Ride, error) {
	if id <= 0 {
		return models.Ride{}, domain.NotFoundError{Resource: "ride", ID: id}
	}
	return s.Store.GetRide(ctx, id)
}

// Search matches source and destination case-insensitively and the date
// exactly.
func (s RideService) Search(ctx context.Context, q models.RideSearch) ([]models.Ride, error) {
	if strings.TrimSpace(q.Source) == "" && strings.TrimSpace(q.Destination) == "" && strings.TrimSpace(q.TripDate) == "" {
		return nil, domain.ValidationError{Msg: "at least one of source, destination or date is required"}
	}
	if d := strings.TrimSpace(q.TripDate); d != "" {
		if _, err := utils.ParseDate(d); err != nil {
			return nil, domain.ValidationError{Field: "date", Msg: "must be YYYY-MM-DD", Err: err}
		}
	}
	q.Source = utils.NormalizeSpace(q.Source)
	q.Destination = utils.NormalizeSpace(q.Destination)
	return s.Store.SearchRides(ctx, q)
}

func (s RideService) ListByDriver(ctx context.Context, p domain.Principal) ([]models.Ride, error) {
	key := driverRidesKey(p.UserID)
	var out []models.Ride
	if s.cache().Get(ctx, key, &out) {
		return out, nil
	}
	out, err := s.Store.ListRidesByDriver(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	s.cache().Set(ctx, key, out, s.ttl())
	return out, nil
}

// Earnings counts ACCEPTED bookings only; pending seats are not yet owed.
func (s RideService) Earnings(ctx context.Context, p domain.Principal) (Earnings, error) {
	views, err := s.Store.ListBookingsForDriver(ctx, p.UserID, models.StatusAccepted)
	if err != nil {
		return Earnings{}, err
	}
	out := Earnings{DriverID: p.UserID}
	for _, v := range views {
		out.AcceptedBookings++
		out.SeatsSold += v.SeatsBooked
		out.Total += v.TotalPrice
	}
	out.TotalFormatted = utils.FormatPrice(out.Total)
	return out, nil
}
