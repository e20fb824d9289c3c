package workflow

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/bloodline/backend/db"
)

func TestNext(t *testing.T) {
	c := qt.New(t)
	p := Policy{}
	// the happy path walks the whole chain
	chain := []struct {
		action Action
		from   db.AppointmentStatus
		to     db.AppointmentStatus
	}{
		{ActionApprove, db.AppointmentPending, db.AppointmentApproved},
		{ActionCollect, db.AppointmentApproved, db.AppointmentCollected},
		{ActionProcess, db.AppointmentCollected, db.AppointmentProcessed},
		{ActionTest, db.AppointmentProcessed, db.AppointmentTested},
		{ActionLabel, db.AppointmentTested, db.AppointmentLabelled},
	}
	for _, step := range chain {
		next, ok := p.Next(step.from, step.action)
		c.Assert(ok, qt.IsTrue, qt.Commentf("action %s", step.action))
		c.Assert(next, qt.Equals, step.to)
	}
	// reject only applies to pending appointments
	next, ok := p.Next(db.AppointmentPending, ActionReject)
	c.Assert(ok, qt.IsTrue)
	c.Assert(next, qt.Equals, db.AppointmentRejected)
	_, ok = p.Next(db.AppointmentApproved, ActionReject)
	c.Assert(ok, qt.IsFalse)
	// skipping a stage is not allowed
	_, ok = p.Next(db.AppointmentApproved, ActionProcess)
	c.Assert(ok, qt.IsFalse)
	_, ok = p.Next(db.AppointmentPending, ActionLabel)
	c.Assert(ok, qt.IsFalse)
	// a labelled appointment is terminal
	for _, action := range []Action{ActionApprove, ActionCollect, ActionLabel, ActionCancel} {
		_, ok := p.Next(db.AppointmentLabelled, action)
		c.Assert(ok, qt.IsFalse, qt.Commentf("action %s", action))
	}
}

func TestNextReapproval(t *testing.T) {
	c := qt.New(t)
	// disabled by default
	_, ok := Policy{}.Next(db.AppointmentRejected, ActionApprove)
	c.Assert(ok, qt.IsFalse)
	// enabled by policy
	next, ok := Policy{AllowReapproval: true}.Next(db.AppointmentRejected, ActionApprove)
	c.Assert(ok, qt.IsTrue)
	c.Assert(next, qt.Equals, db.AppointmentApproved)
	// the policy does not open any other transition from rejected
	_, ok = Policy{AllowReapproval: true}.Next(db.AppointmentRejected, ActionCollect)
	c.Assert(ok, qt.IsFalse)
}

func TestCanCancel(t *testing.T) {
	c := qt.New(t)
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	tomorrow := now.AddDate(0, 0, 1)
	// pending and approved cancel before the scheduled day
	c.Assert(CanCancel(db.AppointmentPending, tomorrow, now), qt.IsTrue)
	c.Assert(CanCancel(db.AppointmentApproved, tomorrow, now), qt.IsTrue)
	// the window closes at the start of the scheduled day
	c.Assert(CanCancel(db.AppointmentApproved, now, now), qt.IsFalse)
	c.Assert(CanCancel(db.AppointmentApproved, now.AddDate(0, 0, -1), now), qt.IsFalse)
	// drawn blood cannot be cancelled regardless of date
	c.Assert(CanCancel(db.AppointmentCollected, tomorrow, now), qt.IsFalse)
	c.Assert(CanCancel(db.AppointmentLabelled, tomorrow, now), qt.IsFalse)
}

func TestNextCamp(t *testing.T) {
	c := qt.New(t)
	p := Policy{}
	next, ok := p.NextCamp(db.CampPending, CampActionApprove)
	c.Assert(ok, qt.IsTrue)
	c.Assert(next, qt.Equals, db.CampApproved)
	next, ok = p.NextCamp(db.CampPending, CampActionReject)
	c.Assert(ok, qt.IsTrue)
	c.Assert(next, qt.Equals, db.CampRejected)
	// approved and rejected camps are terminal
	_, ok = p.NextCamp(db.CampApproved, CampActionReject)
	c.Assert(ok, qt.IsFalse)
	_, ok = p.NextCamp(db.CampRejected, CampActionApprove)
	c.Assert(ok, qt.IsFalse)
	// reapproval of a rejected camp follows the policy knob
	next, ok = Policy{AllowReapproval: true}.NextCamp(db.CampRejected, CampActionApprove)
	c.Assert(ok, qt.IsTrue)
	c.Assert(next, qt.Equals, db.CampApproved)
}
