package notify

import (
	"context"
	"fmt"

	"carpool/internal/domain/models"
)

// Message is one notification addressed to a user.
type Message struct {
	ID          string `json:"id"`
	RecipientID int64  `json:"recipient_id"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
}

// Sender delivers a single message. Implementations may fail transiently;
// the Dispatcher retries.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// BookingConfirmation builds the messages sent to both parties when a driver
// accepts a booking.
func BookingConfirmation(b models.Booking, r models.Ride) []Message {
	route := fmt.Sprintf("%s → %s", r.Source, r.Destination)
	when := fmt.Sprintf("Date: %s | Time: %s", r.TripDate, r.TripTime)

	return []Message{
		{
			RecipientID: b.PassengerID,
			Subject:     "Booking Confirmed",
			Body: fmt.Sprintf("Your booking is confirmed!\n\nRide: %s\nDriver: #%d\nSeats: %d\n%s",
				route, r.DriverID, b.SeatsBooked, when),
		},
		{
			RecipientID: r.DriverID,
			Subject:     "New Booking Accepted",
			Body: fmt.Sprintf("A passenger booked your ride!\n\nPassenger: #%d\nSeats: %d\nRide: %s\n%s",
				b.PassengerID, b.SeatsBooked, route, when),
		},
	}
}
