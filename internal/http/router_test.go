package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	intconfig "carpool/internal/config"
	"carpool/internal/domain"
	"carpool/internal/domain/models"
	h "carpool/internal/http/handlers"
	"carpool/internal/logger"
	"carpool/internal/repositories"
	"carpool/internal/services"
)

type tokenResolver map[string]domain.Principal

func (r tokenResolver) Resolve(token string) (domain.Principal, error) {
	if p, ok := r[token]; ok {
		return p, nil
	}
	return domain.Principal{}, errors.New("bad token")
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repositories.NewMemoryStore()
	log := logger.Discard()
	bookings := services.BookingService{Store: store, Log: log}
	handler := h.Handler{
		Bookings: bookings,
		Rides:    services.RideService{Store: store, Log: log},
		Tickets:  services.TicketService{Bookings: bookings, Log: log},
		Log:      log,
	}
	return NewRouter(intconfig.Env{}, Deps{
		Handler: handler,
		Resolver: tokenResolver{
			"driver": {UserID: 100, Role: domain.RoleDriver},
			"alice":  {UserID: 1, Role: domain.RolePassenger},
			"bob":    {UserID: 2, Role: domain.RolePassenger},
		},
		Log: log,
	})
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, w)["code"].(string)
}

func postRide(t *testing.T, r http.Handler, seats int) models.Ride {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/rides", "driver", models.RideInput{
		Source: "Pune", Destination: "Mumbai", TripDate: "2026-11-01", TripTime: "09:30", Seats: seats, PricePerSeat: 25000,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("post ride: %d %s", w.Code, w.Body.String())
	}
	return decode[models.Ride](t, w)
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	ride := postRide(t, r, 3)

	w := do(t, r, http.MethodPost, "/api/bookings", "alice", gin.H{"ride_id": ride.ID, "seats": 2})
	if w.Code != http.StatusCreated {
		t.Fatalf("request: %d %s", w.Code, w.Body.String())
	}
	b := decode[models.Booking](t, w)
	if b.Status != models.StatusPending || b.SeatsBooked != 2 {
		t.Fatalf("unexpected booking %+v", b)
	}

	w = do(t, r, http.MethodPost, "/api/bookings", "bob", gin.H{"ride_id": ride.ID, "seats": 2})
	if w.Code != http.StatusConflict || errorCode(t, w) != domain.CodeInsufficientCapacity {
		t.Fatalf("overbooking: %d %s", w.Code, w.Body.String())
	}

	path := "/api/bookings/" + itoa(b.ID)
	w = do(t, r, http.MethodGet, path+"/ticket", "alice", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("ticket before accept: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, path+"/accept", "driver", nil)
	if w.Code != http.StatusOK || decode[models.Booking](t, w).Status != models.StatusAccepted {
		t.Fatalf("accept: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPost, path+"/reject", "driver", nil)
	if w.Code != http.StatusConflict || errorCode(t, w) != domain.CodeInvalidTransition {
		t.Fatalf("reject after accept: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, path+"/ticket", "alice", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("ticket: %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	w = do(t, r, http.MethodGet, "/api/rides/"+itoa(ride.ID), "bob", nil)
	got := decode[models.Ride](t, w)
	if got.AvailableSeats != 1 || got.ConfirmedSeats != 2 {
		t.Fatalf("seats after accept: %+v", got)
	}

	w = do(t, r, http.MethodGet, "/api/drivers/me/earnings", "driver", nil)
	earn := decode[services.Earnings](t, w)
	if earn.Total != 50000 || earn.SeatsSold != 2 {
		t.Fatalf("earnings: %+v", earn)
	}
}

func TestCancelReturnsNoContent(t *testing.T) {
	r := newTestRouter(t)
	ride := postRide(t, r, 2)

	w := do(t, r, http.MethodPost, "/api/bookings", "alice", gin.H{"ride_id": ride.ID, "seats": 1})
	b := decode[models.Booking](t, w)

	w = do(t, r, http.MethodDelete, "/api/bookings/"+itoa(b.ID), "bob", nil)
	if w.Code != http.StatusForbidden || errorCode(t, w) != domain.CodeNotAuthorized {
		t.Fatalf("cancel by other passenger: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodDelete, "/api/bookings/"+itoa(b.ID), "alice", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("cancel: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/passengers/me/bookings", "alice", nil)
	list := decode[[]models.BookingView](t, w)
	if len(list) != 1 || list[0].Status != models.StatusCancelled {
		t.Fatalf("bookings after cancel: %+v", list)
	}
}

func TestRouteGuards(t *testing.T) {
	r := newTestRouter(t)
	ride := postRide(t, r, 2)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{"no token", http.MethodGet, "/api/passengers/me/bookings", "", nil, http.StatusUnauthorized, domain.CodeUnauthenticated},
		{"bad token", http.MethodGet, "/api/passengers/me/bookings", "nope", nil, http.StatusUnauthorized, domain.CodeUnauthenticated},
		{"passenger accepts", http.MethodPost, "/api/bookings/1/accept", "alice", nil, http.StatusForbidden, domain.CodeNotAuthorized},
		{"driver books", http.MethodPost, "/api/bookings", "driver", gin.H{"ride_id": ride.ID, "seats": 1}, http.StatusForbidden, domain.CodeNotAuthorized},
		{"unknown decision", http.MethodPost, "/api/bookings/1/approve", "driver", nil, http.StatusNotFound, domain.CodeNotFound},
		{"bad id", http.MethodPost, "/api/bookings/abc/accept", "driver", nil, http.StatusBadRequest, domain.CodeValidation},
		{"zero seats", http.MethodPost, "/api/bookings", "alice", gin.H{"ride_id": ride.ID, "seats": 0}, http.StatusBadRequest, domain.CodeInvalidSeatCount},
		{"missing ride", http.MethodPost, "/api/bookings", "alice", gin.H{"ride_id": 999, "seats": 1}, http.StatusNotFound, domain.CodeRideNotFound},
		{"missing booking", http.MethodPost, "/api/bookings/999/accept", "driver", nil, http.StatusNotFound, domain.CodeBookingNotFound},
		{"search without filters", http.MethodGet, "/api/rides/search", "alice", nil, http.StatusBadRequest, domain.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, tc.token, tc.body)
			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.status, w.Body.String())
			}
			if got := errorCode(t, w); got != tc.code {
				t.Fatalf("code = %q, want %q", got, tc.code)
			}
		})
	}
}

func TestSystemRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	w = do(t, r, http.MethodGet, "/api/routes", "", nil)
	routes := decode[map[string][]map[string]any](t, w)["routes"]
	if len(routes) == 0 {
		t.Fatalf("no routes listed")
	}
	w = do(t, r, http.MethodGet, "/api/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("no route: %d", w.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
