package api

import (
	stdhttp "net/http"

	intconfig "carpool/internal/config"
	"carpool/internal/domain"
	h "carpool/internal/http/handlers"
	"carpool/internal/http/middleware"
	"carpool/internal/http/ws"
	"carpool/internal/logger"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the router mounts.
type Deps struct {
	Handler  h.Handler
	Resolver middleware.PrincipalResolver
	Hub      *ws.Hub
	Log      logger.Logger
}

func NewRouter(env intconfig.Env, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(deps.Log), gin.Recovery(), middleware.CORS(env.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		deps.Log.Warn("failed to set trusted proxies", "error", err.Error())
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"code":   domain.CodeNotFound,
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	driver := middleware.RequireRoles(domain.RoleDriver)
	passenger := middleware.RequireRoles(domain.RolePassenger)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		authed := api.Group("", middleware.Auth(deps.Resolver))

		// Bookings
		bookings := authed.Group("/bookings")
		bookings.POST("", passenger, deps.Handler.CreateBooking)
		bookings.GET("/:id", deps.Handler.GetBooking)
		bookings.GET("/:id/ticket", deps.Handler.BookingTicket)
		bookings.POST("/:id/:decision", driver, deps.Handler.DecideBooking)
		bookings.DELETE("/:id", passenger, deps.Handler.CancelBooking)

		// Rides
		rides := authed.Group("/rides")
		rides.POST("", driver, deps.Handler.PostRide)
		rides.GET("/search", deps.Handler.SearchRides)
		rides.GET("/:id", deps.Handler.GetRide)

		// Drivers
		drivers := authed.Group("/drivers/me", driver)
		drivers.GET("/rides", deps.Handler.MyRides)
		drivers.GET("/bookings/pending", deps.Handler.MyPendingBookings)
		drivers.GET("/earnings", deps.Handler.MyEarnings)

		// Passengers
		passengers := authed.Group("/passengers/me", passenger)
		passengers.GET("/bookings", deps.Handler.MyBookings)

		if deps.Hub != nil {
			authed.GET("/ws", deps.Hub.Handler())
		}
	}

	h.SetRouter(r)
	return r
}
