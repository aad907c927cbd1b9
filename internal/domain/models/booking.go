package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusAccepted  BookingStatus = "ACCEPTED"
	StatusRejected  BookingStatus = "REJECTED"
	StatusCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further action may be applied.
func (s BookingStatus) IsTerminal() bool {
	return s.IsValid() && s != StatusPending
}

func (s BookingStatus) String() string { return string(s) }

// Booking is a passenger's claim on seats of a ride.
type Booking struct {
	ID          int64         `json:"id"`
	RideID      int64         `json:"ride_id"`
	PassengerID int64         `json:"passenger_id"`
	SeatsBooked int           `json:"seats_booked"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// BookingView joins a booking with the trip it belongs to, for listings.
type BookingView struct {
	Booking
	DriverID     int64  `json:"driver_id"`
	Source       string `json:"source"`
	Destination  string `json:"destination"`
	TripDate     string `json:"trip_date"`
	TripTime     string `json:"trip_time"`
	PricePerSeat int64  `json:"price_per_seat"`
	TotalPrice   int64  `json:"total_price"`
}

// NewBookingView builds the listing shape of b on ride r.
func NewBookingView(b Booking, r Ride) BookingView {
	return BookingView{
		Booking:      b,
		DriverID:     r.DriverID,
		Source:       r.Source,
		Destination:  r.Destination,
		TripDate:     r.TripDate,
		TripTime:     r.TripTime,
		PricePerSeat: r.PricePerSeat,
		TotalPrice:   r.PricePerSeat * int64(b.SeatsBooked),
	}
}
