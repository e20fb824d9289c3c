package db

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAppointment(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// test not found appointment
	_, err := testDB.Appointment(primitive.NewObjectID())
	c.Assert(err, qt.Equals, ErrNotFound)
	// create a new appointment and fetch it back
	id, err := testDB.CreateAppointment(testAppointment(7))
	c.Assert(err, qt.IsNil)
	appointment, err := testDB.Appointment(id)
	c.Assert(err, qt.IsNil)
	c.Assert(appointment.Status, qt.Equals, AppointmentPending)
	c.Assert(appointment.DonorInfo.DonorEmail, qt.Equals, testDonorEmail)
	c.Assert(appointment.Questionnaire.FirstForm["feelingWell"], qt.Equals, "yes")
	// an appointment without donor email or slot is invalid
	_, err = testDB.CreateAppointment(&Appointment{SelectedDate: testDate(7)})
	c.Assert(err, qt.Equals, ErrInvalidData)
}

func TestAppointmentsFilter(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// two appointments tomorrow, one next week
	for _, days := range []int{1, 1, 7} {
		_, err := testDB.CreateAppointment(testAppointment(days))
		c.Assert(err, qt.IsNil)
	}
	// filter by day
	appointments, total, err := testDB.Appointments(AppointmentFilter{From: testDate(1), To: testDate(1)})
	c.Assert(err, qt.IsNil)
	c.Assert(total, qt.Equals, int64(2))
	c.Assert(appointments, qt.HasLen, 2)
	// filter by status
	_, total, err = testDB.Appointments(AppointmentFilter{Status: AppointmentPending})
	c.Assert(err, qt.IsNil)
	c.Assert(total, qt.Equals, int64(3))
	// filter by email with pagination
	appointments, total, err = testDB.Appointments(AppointmentFilter{
		Email:    testDonorEmail,
		Page:     1,
		PageSize: 2,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(total, qt.Equals, int64(3))
	c.Assert(appointments, qt.HasLen, 2)
}

func TestAppointmentSlotCounts(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	id1, err := testDB.CreateAppointment(testAppointment(2))
	c.Assert(err, qt.IsNil)
	_, err = testDB.CreateAppointment(testAppointment(2))
	c.Assert(err, qt.IsNil)
	count, err := testDB.CountAppointmentsInSlot(testDate(2), testSlot)
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, int64(2))
	// a cancelled booking releases its slot
	c.Assert(testDB.SetAppointmentStatus(id1, AppointmentPending, AppointmentCancelled), qt.IsNil)
	count, err = testDB.CountAppointmentsInSlot(testDate(2), testSlot)
	c.Assert(err, qt.IsNil)
	c.Assert(count, qt.Equals, int64(1))
	counts, err := testDB.AppointmentSlotCounts(testDate(2))
	c.Assert(err, qt.IsNil)
	c.Assert(counts[testSlot], qt.Equals, 1)
}

func TestSetAppointmentStatus(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	id, err := testDB.CreateAppointment(testAppointment(3))
	c.Assert(err, qt.IsNil)
	// missing appointment
	err = testDB.SetAppointmentStatus(primitive.NewObjectID(), AppointmentPending, AppointmentApproved)
	c.Assert(err, qt.Equals, ErrNotFound)
	// valid transition
	c.Assert(testDB.SetAppointmentStatus(id, AppointmentPending, AppointmentApproved), qt.IsNil)
	// stale compare-and-set, the appointment is no longer pending
	err = testDB.SetAppointmentStatus(id, AppointmentPending, AppointmentRejected)
	c.Assert(err, qt.Equals, ErrBadTransition)
}

func TestAppointmentLifecycle(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	id, err := testDB.CreateAppointment(testAppointment(1))
	c.Assert(err, qt.IsNil)

	// collecting a pending appointment is a stale transition
	draw := &BloodCollection{Volume: 450, StartTime: time.Now(), EndTime: time.Now(), Officer: testUserEmail}
	c.Assert(testDB.CollectAppointment(id, draw), qt.Equals, ErrBadTransition)

	c.Assert(testDB.SetAppointmentStatus(id, AppointmentPending, AppointmentApproved), qt.IsNil)
	c.Assert(testDB.CollectAppointment(id, draw), qt.IsNil)

	steps := []ProcessingStep{{Name: "Centrifugation", Completed: true, Officer: testUserEmail, CompletedAt: time.Now()}}
	c.Assert(testDB.ProcessAppointment(id, steps), qt.IsNil)

	results := []TestResult{{Name: "HIV", Result: "Negative", Officer: testUserEmail, TestedAt: time.Now()}}
	c.Assert(testDB.TestAppointment(id, results), qt.IsNil)

	labelling := &Labelling{
		Officer:    testUserEmail,
		LabelID:    testLabelPrefix + "0001",
		ExpiryDate: time.Now().AddDate(0, 0, 35),
	}
	c.Assert(testDB.LabelAppointment(id, labelling), qt.IsNil)

	appointment, err := testDB.Appointment(id)
	c.Assert(err, qt.IsNil)
	c.Assert(appointment.Status, qt.Equals, AppointmentLabelled)
	c.Assert(appointment.BloodCollection.Volume, qt.Equals, 450)
	c.Assert(appointment.Labelling.Labelled, qt.IsTrue)

	// the unit entered the ledger and credited the level
	unit, err := testDB.StockUnit(labelling.LabelID)
	c.Assert(err, qt.IsNil)
	c.Assert(unit.BloodType, qt.Equals, testBloodGroup)
	c.Assert(unit.Volume, qt.Equals, 450)
	level, err := testDB.StockLevelByType(testBloodGroup)
	c.Assert(err, qt.IsNil)
	c.Assert(level.Units, qt.Equals, 1)
	c.Assert(level.Volume, qt.Equals, 450)
}

func TestLabelAppointmentIdempotent(t *testing.T) {
	defer func() {
		if err := testDB.Reset(); err != nil {
			t.Error(err)
		}
	}()
	c := qt.New(t)
	// walk two appointments to Tested
	var ids []primitive.ObjectID
	for i := 0; i < 2; i++ {
		id, err := testDB.CreateAppointment(testAppointment(1))
		c.Assert(err, qt.IsNil)
		c.Assert(testDB.SetAppointmentStatus(id, AppointmentPending, AppointmentApproved), qt.IsNil)
		draw := &BloodCollection{Volume: 400, StartTime: time.Now(), EndTime: time.Now(), Officer: testUserEmail}
		c.Assert(testDB.CollectAppointment(id, draw), qt.IsNil)
		steps := []ProcessingStep{{Name: "Centrifugation", Completed: true}}
		c.Assert(testDB.ProcessAppointment(id, steps), qt.IsNil)
		results := []TestResult{{Name: "HIV", Result: "Negative"}}
		c.Assert(testDB.TestAppointment(id, results), qt.IsNil)
		ids = append(ids, id)
	}
	labelling := &Labelling{Officer: testUserEmail, LabelID: testLabelPrefix + "0002", ExpiryDate: time.Now().AddDate(0, 0, 35)}
	c.Assert(testDB.LabelAppointment(ids[0], labelling), qt.IsNil)
	// labelling an already labelled appointment is a stale transition
	c.Assert(testDB.LabelAppointment(ids[0], labelling), qt.ErrorIs, ErrBadTransition)
	// reusing the label on another appointment hits the ledger and rolls back
	c.Assert(testDB.LabelAppointment(ids[1], labelling), qt.ErrorIs, ErrAlreadyExists)
	appointment, err := testDB.Appointment(ids[1])
	c.Assert(err, qt.IsNil)
	c.Assert(appointment.Status, qt.Equals, AppointmentTested)
	// the level was credited exactly once
	level, err := testDB.StockLevelByType(testBloodGroup)
	c.Assert(err, qt.IsNil)
	c.Assert(level.Units, qt.Equals, 1)
}
