package models

import "time"

// EventType is the routing key of a booking lifecycle event.
type EventType string

const (
	EventBookingRequested EventType = "booking.requested"
	EventBookingAccepted  EventType = "booking.accepted"
	EventBookingRejected  EventType = "booking.rejected"
	EventBookingCancelled EventType = "booking.cancelled"
)

var eventByAction = map[ActionKind]EventType{
	ActionRequest: EventBookingRequested,
	ActionAccept:  EventBookingAccepted,
	ActionReject:  EventBookingRejected,
	ActionCancel:  EventBookingCancelled,
}

// BookingEvent is emitted after a lifecycle transition commits.
type BookingEvent struct {
	Type           EventType     `json:"type"`
	BookingID      int64         `json:"booking_id"`
	RideID         int64         `json:"ride_id"`
	PassengerID    int64         `json:"passenger_id"`
	DriverID       int64         `json:"driver_id"`
	Seats          int           `json:"seats"`
	Status         BookingStatus `json:"status"`
	AvailableSeats int           `json:"available_seats"`
	ConfirmedSeats int           `json:"confirmed_seats"`
	OccurredAt     time.Time     `json:"occurred_at"`
}

// NewBookingEvent describes the committed result of kind on b and r.
func NewBookingEvent(kind ActionKind, b Booking, r Ride, at time.Time) BookingEvent {
	return BookingEvent{
		Type:           eventByAction[kind],
		BookingID:      b.ID,
		RideID:         r.ID,
		PassengerID:    b.PassengerID,
		DriverID:       r.DriverID,
		Seats:          b.SeatsBooked,
		Status:         b.Status,
		AvailableSeats: r.AvailableSeats,
		ConfirmedSeats: r.ConfirmedSeats,
		OccurredAt:     at,
	}
}

// Recipients are the users an event concerns.
func (e BookingEvent) Recipients() []int64 {
	return []int64{e.PassengerID, e.DriverID}
}
