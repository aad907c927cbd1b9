package models

import "time"

// Ride is a published trip offering. Seat counters are only ever changed by
// the seat inventory inside a per-ride transaction.
type Ride struct {
	ID             int64     `json:"id"`
	DriverID       int64     `json:"driver_id"`
	Source         string    `json:"source"`
	Destination    string    `json:"destination"`
	TripDate       string    `json:"trip_date"`
	TripTime       string    `json:"trip_time"`
	PricePerSeat   int64     `json:"price_per_seat"`
	TotalCapacity  int       `json:"total_capacity"`
	AvailableSeats int       `json:"available_seats"`
	ConfirmedSeats int       `json:"confirmed_seats"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Committed is the number of seats not held by pending bookings.
func (r Ride) Committed() int {
	return r.AvailableSeats + r.ConfirmedSeats
}

// RideInput carries the attributes a driver supplies when posting a ride.
type RideInput struct {
	Source       string `json:"source" binding:"required"`
	Destination  string `json:"destination" binding:"required"`
	TripDate     string `json:"trip_date" binding:"required"`
	TripTime     string `json:"trip_time" binding:"required"`
	Seats        int    `json:"seats" binding:"required"`
	PricePerSeat int64  `json:"price_per_seat"`
}

// RideSearch filters published rides.
type RideSearch struct {
	Source      string `form:"source"`
	Destination string `form:"destination"`
	TripDate    string `form:"date"`
}
