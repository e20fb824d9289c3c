// Package workflow holds the lifecycle rules for appointments and camps in a
// single transition table, so every handler consults the same source of
// truth before touching the database.
package workflow

import (
	"time"

	"github.com/bloodline/backend/db"
)

// Action is a lifecycle operation requested on an appointment.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
	ActionCollect Action = "collect"
	ActionProcess Action = "process"
	ActionTest    Action = "test"
	ActionLabel   Action = "label"
)

// Policy tunes the rules that are deployment-specific rather than clinical.
type Policy struct {
	// AllowReapproval permits approving a previously rejected appointment.
	AllowReapproval bool
	// SlotCapacity is the maximum number of active bookings per slot.
	// Zero means unlimited.
	SlotCapacity int
}

type transition struct {
	from db.AppointmentStatus
	to   db.AppointmentStatus
}

// transitions is the appointment lifecycle. Cancel is intentionally absent:
// it cuts across several states and is guarded by CanCancel instead.
var transitions = map[Action]transition{
	ActionApprove: {db.AppointmentPending, db.AppointmentApproved},
	ActionReject:  {db.AppointmentPending, db.AppointmentRejected},
	ActionCollect: {db.AppointmentApproved, db.AppointmentCollected},
	ActionProcess: {db.AppointmentCollected, db.AppointmentProcessed},
	ActionTest:    {db.AppointmentProcessed, db.AppointmentTested},
	ActionLabel:   {db.AppointmentTested, db.AppointmentLabelled},
}

// Next returns the status an appointment in the given status moves to under
// the given action. It returns false when the action is not allowed from
// that status.
func (p Policy) Next(current db.AppointmentStatus, action Action) (db.AppointmentStatus, bool) {
	if action == ActionCancel {
		if cancellableStatuses[current] {
			return db.AppointmentCancelled, true
		}
		return "", false
	}
	tr, ok := transitions[action]
	if !ok {
		return "", false
	}
	if tr.from == current {
		return tr.to, true
	}
	// a rejected appointment may be approved again when the policy allows it
	if p.AllowReapproval && action == ActionApprove && current == db.AppointmentRejected {
		return db.AppointmentApproved, true
	}
	return "", false
}

// cancellableStatuses are the statuses a donor may still back out from. Once
// blood is drawn the appointment is bound to a physical unit.
var cancellableStatuses = map[db.AppointmentStatus]bool{
	db.AppointmentPending:  true,
	db.AppointmentApproved: true,
}

// CanCancel reports whether an appointment in the given status, scheduled
// for the given date, may still be cancelled at the given time. Cancellation
// closes at the start of the scheduled day.
func CanCancel(status db.AppointmentStatus, selectedDate, now time.Time) bool {
	if !cancellableStatuses[status] {
		return false
	}
	day := time.Date(selectedDate.UTC().Year(), selectedDate.UTC().Month(), selectedDate.UTC().Day(),
		0, 0, 0, 0, time.UTC)
	return now.UTC().Before(day)
}

// CampAction is a lifecycle operation requested on a camp registration.
type CampAction string

const (
	CampActionApprove CampAction = "approve"
	CampActionReject  CampAction = "reject"
)

var campTransitions = map[CampAction]struct {
	from db.CampStatus
	to   db.CampStatus
}{
	CampActionApprove: {db.CampPending, db.CampApproved},
	CampActionReject:  {db.CampPending, db.CampRejected},
}

// NextCamp returns the status a camp in the given status moves to under the
// given action. It returns false when the action is not allowed from that
// status. Reapproval of rejected camps follows the same policy knob as
// appointments.
func (p Policy) NextCamp(current db.CampStatus, action CampAction) (db.CampStatus, bool) {
	tr, ok := campTransitions[action]
	if !ok {
		return "", false
	}
	if tr.from == current {
		return tr.to, true
	}
	if p.AllowReapproval && action == CampActionApprove && current == db.CampRejected {
		return db.CampApproved, true
	}
	return "", false
}
