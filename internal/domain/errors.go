package domain

import (
	"errors"
	"fmt"
)

// Stable machine-readable codes returned to API callers.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeInvalidSeatCount     = "INVALID_SEAT_COUNT"
	CodeRideNotFound         = "RIDE_NOT_FOUND"
	CodeBookingNotFound      = "BOOKING_NOT_FOUND"
	CodeNotFound             = "NOT_FOUND"
	CodeUnauthenticated      = "UNAUTHENTICATED"
	CodeNotAuthorized        = "NOT_AUTHORIZED"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeInsufficientCapacity = "INSUFFICIENT_CAPACITY"
	CodeConflict             = "CONFLICT"
	CodeInvariantViolation   = "INVARIANT_VIOLATION"
	CodeInternal             = "INTERNAL_ERROR"
)

// DomainError keeps backward compatibility for generic codes.
type DomainError struct {
	Code string
	Err  error
}

func (e DomainError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	if e.Code == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e DomainError) Unwrap() error {
	return e.Err
}

type NotFoundError struct {
	Resource string
	ID       int64
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource == "":
		return "not found"
	case e.ID > 0:
		return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
	default:
		return fmt.Sprintf("%s not found", e.Resource)
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

func (e NotFoundError) Code() string {
	switch e.Resource {
	case "ride":
		return CodeRideNotFound
	case "booking":
		return CodeBookingNotFound
	default:
		return CodeNotFound
	}
}

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

func (e ValidationError) Code() string {
	if e.Field == "seats" {
		return CodeInvalidSeatCount
	}
	return CodeValidation
}

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// CapacityError reports that a ride cannot cover the requested seats.
type CapacityError struct {
	RideID    int64
	Requested int
	Available int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("ride %d: %d seat(s) requested, %d available", e.RideID, e.Requested, e.Available)
}

// TransitionError reports an action against a booking that is no longer in the
// state the action requires.
type TransitionError struct {
	BookingID int64
	From      string
	Action    string
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("booking %d: cannot %s a %s booking", e.BookingID, e.Action, e.From)
}

type AuthorizationError struct {
	Msg string
}

func (e AuthorizationError) Error() string {
	if e.Msg == "" {
		return "not authorized"
	}
	return e.Msg
}

// InvariantError signals broken seat accounting. It is never expected in
// correct operation and always aborts the surrounding transaction.
type InvariantError struct {
	RideID int64
	Msg    string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("seat invariant violated on ride %d: %s", e.RideID, e.Msg)
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInsufficientCapacity(err error) bool {
	var target CapacityError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target TransitionError
	return errors.As(err, &target)
}

func IsNotAuthorized(err error) bool {
	var target AuthorizationError
	return errors.As(err, &target)
}

func IsInvariantViolation(err error) bool {
	var target InvariantError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// CodeOf returns the stable API code for err.
func CodeOf(err error) string {
	var (
		nf  NotFoundError
		val ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &val):
		return val.Code()
	case errors.As(err, &nf):
		return nf.Code()
	case IsNotAuthorized(err):
		return CodeNotAuthorized
	case IsInvalidTransition(err):
		return CodeInvalidTransition
	case IsInsufficientCapacity(err):
		return CodeInsufficientCapacity
	case IsConflict(err):
		return CodeConflict
	case IsInvariantViolation(err):
		return CodeInvariantViolation
	default:
		return CodeInternal
	}
}
