package models

import (
	"testing"

	"carpool/internal/domain"
)

func TestTransitionsCoverEveryAction(t *testing.T) {
	actions := []Action{
		RequestBooking{RideID: 1, Seats: 2},
		AcceptBooking{BookingID: 1},
		RejectBooking{BookingID: 1},
		CancelBooking{BookingID: 1},
	}
	for _, a := range actions {
		tr, ok := Transitions[a.Kind()]
		if !ok {
			t.Fatalf("no transition for %s", a.Kind())
		}
		if !tr.To.IsValid() {
			t.Fatalf("%s leads to invalid status %q", a.Kind(), tr.To)
		}
	}
	if len(Transitions) != len(actions) {
		t.Fatalf("transition table has %d rows, want %d", len(Transitions), len(actions))
	}
}

func TestOnlyRequestCreatesBookings(t *testing.T) {
	for kind, tr := range Transitions {
		if kind == ActionRequest {
			if tr.From != "" || tr.To != StatusPending || tr.Effect != Reserve {
				t.Fatalf("request row malformed: %+v", tr)
			}
			continue
		}
		if tr.From != StatusPending {
			t.Fatalf("%s must start from PENDING, got %q", kind, tr.From)
		}
		if !tr.To.IsTerminal() {
			t.Fatalf("%s must end in a terminal status, got %q", kind, tr.To)
		}
	}
}

func TestDriverActionsRequireRideOwnership(t *testing.T) {
	for _, kind := range []ActionKind{ActionAccept, ActionReject} {
		tr := Transitions[kind]
		if tr.Actor != domain.RoleDriver || !tr.OwnedByDriver {
			t.Fatalf("%s should be a driver action on an owned ride: %+v", kind, tr)
		}
	}
	if tr := Transitions[ActionCancel]; tr.Actor != domain.RolePassenger || tr.OwnedByDriver {
		t.Fatalf("cancel should be a passenger action: %+v", tr)
	}
}

func TestParseDriverDecision(t *testing.T) {
	a, ok := ParseDriverDecision(7, "accept")
	if !ok || a.Kind() != ActionAccept || TargetBooking(a) != 7 {
		t.Fatalf("accept not parsed: %#v ok=%v", a, ok)
	}
	a, ok = ParseDriverDecision(7, "reject")
	if !ok || a.Kind() != ActionReject {
		t.Fatalf("reject not parsed: %#v ok=%v", a, ok)
	}
	if _, ok := ParseDriverDecision(7, "ACCEPT"); ok {
		t.Fatalf("decision parsing should be exact")
	}
	if _, ok := ParseDriverDecision(7, "cancel"); ok {
		t.Fatalf("cancel is not a driver decision")
	}
}

func TestTerminalStatuses(t *testing.T) {
	if StatusPending.IsTerminal() {
		t.Fatalf("PENDING is not terminal")
	}
	for _, s := range []BookingStatus{StatusAccepted, StatusRejected, StatusCancelled} {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	if BookingStatus("DELETED").IsTerminal() {
		t.Fatalf("unknown status reported terminal")
	}
}
