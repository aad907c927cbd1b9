package handlers

import (
	"fmt"
	"net/http"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type createBookingRequest struct {
	RideID int64 `json:"ride_id" binding:"required"`
	Seats  int   `json:"seats"`
}

// POST /api/bookings
func (h Handler) CreateBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	b, err := h.Bookings.RequestBooking(c.Request.Context(), p, req.RideID, req.Seats)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// POST /api/bookings/:id/accept and /api/bookings/:id/reject
func (h Handler) DecideBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	action, ok := models.ParseDriverDecision(id, c.Param("decision"))
	if !ok {
		respondError(c, http.StatusNotFound, domain.CodeNotFound, "unknown decision", nil)
		return
	}

	b, err := h.Bookings.Apply(c.Request.Context(), p, action)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DELETE /api/bookings/:id
func (h Handler) CancelBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Bookings.CancelBooking(c.Request.Context(), p, id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/bookings/:id
func (h Handler) GetBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	v, err := h.Bookings.GetBooking(c.Request.Context(), p, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// GET /api/bookings/:id/ticket
func (h Handler) BookingTicket(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	svc := h.Tickets
	svc.RequestID = middleware.GetRequestID(c)
	pdf, filename, err := svc.GenerateETicket(c.Request.Context(), p, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// GET /api/passengers/me/bookings
func (h Handler) MyBookings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Bookings.ListForPassenger(c.Request.Context(), p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/drivers/me/bookings/pending
func (h Handler) MyPendingBookings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Bookings.PendingForDriver(c.Request.Context(), p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
