package models

import "carpool/internal/domain"

// ActionKind names one row of the booking state machine.
type ActionKind string

const (
	ActionRequest ActionKind = "request"
	ActionAccept  ActionKind = "accept"
	ActionReject  ActionKind = "reject"
	ActionCancel  ActionKind = "cancel"
)

// SeatEffect is the counter change a transition applies to its ride.
type SeatEffect int

const (
	// Reserve moves seats out of available into the implicit pending pool.
	Reserve SeatEffect = iota + 1
	// Confirm moves pending seats into confirmed.
	Confirm
	// Release returns pending seats to available.
	Release
)

func (e SeatEffect) String() string {
	switch e {
	case Reserve:
		return "reserve"
	case Confirm:
		return "confirm"
	case Release:
		return "release"
	default:
		return "unknown"
	}
}

// Transition describes who may perform an action, from which status, and what
// it does to the ride's seat counters.
type Transition struct {
	Kind   ActionKind
	Actor  domain.Role
	From   BookingStatus // empty for actions that create the booking
	To     BookingStatus
	Effect SeatEffect
	// OwnedByDriver is true when the caller must own the ride rather than the booking.
	OwnedByDriver bool
}

// Transitions is the complete booking state machine.
var Transitions = map[ActionKind]Transition{
	ActionRequest: {Kind: ActionRequest, Actor: domain.RolePassenger, To: StatusPending, Effect: Reserve},
	ActionAccept:  {Kind: ActionAccept, Actor: domain.RoleDriver, From: StatusPending, To: StatusAccepted, Effect: Confirm, OwnedByDriver: true},
	ActionReject:  {Kind: ActionReject, Actor: domain.RoleDriver, From: StatusPending, To: StatusRejected, Effect: Release, OwnedByDriver: true},
	ActionCancel:  {Kind: ActionCancel, Actor: domain.RolePassenger, From: StatusPending, To: StatusCancelled, Effect: Release},
}

// Action is the closed set of booking commands. Only the types in this file
// implement it.
type Action interface {
	Kind() ActionKind
	isAction()
}

type RequestBooking struct {
	RideID int64
	Seats  int
}

type AcceptBooking struct {
	BookingID int64
}

type RejectBooking struct {
	BookingID int64
}

type CancelBooking struct {
	BookingID int64
}

func (RequestBooking) Kind() ActionKind { return ActionRequest }
func (AcceptBooking) Kind() ActionKind  { return ActionAccept }
func (RejectBooking) Kind() ActionKind  { return ActionReject }
func (CancelBooking) Kind() ActionKind  { return ActionCancel }

func (RequestBooking) isAction() {}
func (AcceptBooking) isAction()  {}
func (RejectBooking) isAction()  {}
func (CancelBooking) isAction()  {}

// TargetBooking returns the booking an action applies to, or 0 for actions
// that create one.
func TargetBooking(a Action) int64 {
	switch act := a.(type) {
	case AcceptBooking:
		return act.BookingID
	case RejectBooking:
		return act.BookingID
	case CancelBooking:
		return act.BookingID
	default:
		return 0
	}
}

// ParseDriverDecision maps the path segment of a driver decision endpoint.
func ParseDriverDecision(bookingID int64, decision string) (Action, bool) {
	switch ActionKind(decision) {
	case ActionAccept:
		return AcceptBooking{BookingID: bookingID}, true
	case ActionReject:
		return RejectBooking{BookingID: bookingID}, true
	default:
		return nil, false
	}
}
