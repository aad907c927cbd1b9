package handlers

import (
	"carpool/internal/logger"
	"carpool/internal/services"
)

// Handler serves the booking and ride endpoints.
type Handler struct {
	Bookings services.BookingService
	Rides    services.RideService
	Tickets  services.TicketService
	Log      logger.Logger
}
