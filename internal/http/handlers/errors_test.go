package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
)

func TestRespondDomainErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ValidationError{Field: "seats", Msg: "must be positive"}, http.StatusBadRequest, domain.CodeInvalidSeatCount},
		{domain.ValidationError{Field: "trip_date"}, http.StatusBadRequest, domain.CodeValidation},
		{domain.NotFoundError{Resource: "ride", ID: 4}, http.StatusNotFound, domain.CodeRideNotFound},
		{domain.NotFoundError{Resource: "booking", ID: 4}, http.StatusNotFound, domain.CodeBookingNotFound},
		{domain.AuthorizationError{}, http.StatusForbidden, domain.CodeNotAuthorized},
		{domain.TransitionError{BookingID: 1, From: "ACCEPTED", Action: "reject"}, http.StatusConflict, domain.CodeInvalidTransition},
		{domain.CapacityError{RideID: 1, Requested: 3, Available: 1}, http.StatusConflict, domain.CodeInsufficientCapacity},
		{domain.ConflictError{Resource: "ticket"}, http.StatusConflict, domain.CodeConflict},
		{domain.InvariantError{RideID: 1, Msg: "available < 0"}, http.StatusInternalServerError, domain.CodeInvariantViolation},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError, domain.CodeInternal},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		RespondDomainError(c, tc.err)

		if w.Code != tc.status {
			t.Fatalf("%T: status = %d, want %d", tc.err, w.Code, tc.status)
		}
		var body ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Code != tc.code {
			t.Fatalf("%T: code = %q, want %q", tc.err, body.Code, tc.code)
		}
	}
}

func TestInternalErrorsDoNotLeak(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondDomainError(c, errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}
}
