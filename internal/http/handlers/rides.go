package handlers

import (
	"net/http"

	"carpool/internal/domain"
	"carpool/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// POST /api/rides
func (h Handler) PostRide(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var in models.RideInput
	if !BindJSONOrError(c, &in) {
		return
	}
	r, err := h.Rides.PostRide(c.Request.Context(), p, in)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// GET /api/rides/:id
func (h Handler) GetRide(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	r, err := h.Rides.GetRide(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// GET /api/rides/search?source=&destination=&date=
func (h Handler) SearchRides(c *gin.Context) {
	var q models.RideSearch
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, domain.CodeValidation, "invalid query", err.Error())
		return
	}
	out, err := h.Rides.Search(c.Request.Context(), q)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/drivers/me/rides
func (h Handler) MyRides(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Rides.ListByDriver(c.Request.Context(), p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/drivers/me/earnings
func (h Handler) MyEarnings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	e, err := h.Rides.Earnings(c.Request.Context(), p)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
