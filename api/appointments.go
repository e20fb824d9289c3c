package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/bloodline/backend/api/apicommon"
	"github.com/bloodline/backend/db"
	"github.com/bloodline/backend/errors"
	"github.com/bloodline/backend/internal"
	"github.com/bloodline/backend/notifications/mailtemplates"
	"github.com/bloodline/backend/workflow"
)

// createAppointmentHandler books a donation appointment. The status is
// always forced to Pending, and the slot capacity policy is enforced when
// configured.
func (a *API) createAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	req := &apicommon.CreateAppointmentRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if !internal.ValidEmail(req.DonorInfo.DonorEmail) {
		errors.ErrEmailMalformed.Write(w)
		return
	}
	if req.DonorInfo.NIC == "" {
		errors.ErrInvalidDonorData.With("nic is required").Write(w)
		return
	}
	if req.DonorInfo.BloodGroup != "" && !db.IsValidBloodGroup(req.DonorInfo.BloodGroup) {
		errors.ErrInvalidBloodGroup.Write(w)
		return
	}
	if req.DonorInfo.Contact != "" {
		contact, err := internal.SanitizeAndVerifyPhoneNumber(req.DonorInfo.Contact)
		if err != nil {
			errors.ErrInvalidPhoneNumber.Write(w)
			return
		}
		req.DonorInfo.Contact = contact
	}
	day, err := time.Parse(dateParamLayout, req.SelectedDate)
	if err != nil {
		errors.ErrInvalidDate.Withf("selectedDate must be %s", dateParamLayout).Write(w)
		return
	}
	if req.SelectedSlot == "" {
		errors.ErrMalformedBody.With("selectedSlot is required").Write(w)
		return
	}
	// enforce the slot capacity policy over the active bookings of the slot
	if a.policy.SlotCapacity > 0 {
		count, err := a.db.CountAppointmentsInSlot(day, req.SelectedSlot)
		if err != nil {
			errors.ErrGenericInternalServerError.Withf("could not count slot bookings: %v", err).Write(w)
			return
		}
		if count >= int64(a.policy.SlotCapacity) {
			errors.ErrSlotFull.Write(w)
			return
		}
	}
	id, err := a.db.CreateAppointment(&db.Appointment{
		SelectedDate:  day,
		SelectedSlot:  req.SelectedSlot,
		DonorInfo:     req.DonorInfo,
		Questionnaire: req.Questionnaire,
	})
	if err != nil {
		if err == db.ErrInvalidData {
			errors.ErrInvalidDonorData.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.Withf("could not create appointment: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.CreatedResponse{ID: id.Hex()})
}

// appointmentsHandler lists appointments with optional status, email and
// date-range filters, paginated.
func (a *API) appointmentsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := db.AppointmentFilter{
		Status: db.AppointmentStatus(q.Get("status")),
		Email:  q.Get("email"),
	}
	if from := q.Get("from"); from != "" {
		day, err := time.Parse(dateParamLayout, from)
		if err != nil {
			errors.ErrInvalidDate.With("invalid from date").Write(w)
			return
		}
		filter.From = day
	}
	if to := q.Get("to"); to != "" {
		day, err := time.Parse(dateParamLayout, to)
		if err != nil {
			errors.ErrInvalidDate.With("invalid to date").Write(w)
			return
		}
		filter.To = day
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PageSize, _ = strconv.Atoi(q.Get("pageSize"))

	appointments, total, err := a.db.Appointments(filter)
	if err != nil {
		errors.ErrGenericInternalServerError.Withf("could not list appointments: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.AppointmentsResponse{
		Appointments: appointments,
		Total:        total,
		Page:         filter.Page,
	})
}

// appointmentHandler returns the appointment with the given ID.
func (a *API) appointmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(r, "appointmentID")
	if !ok {
		errors.ErrMalformedURLParam.With("invalid appointmentID").Write(w)
		return
	}
	appointment, err := a.db.Appointment(id)
	if err != nil {
		if err == db.ErrNotFound {
			errors.ErrAppointmentNotFound.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.Withf("could not get appointment: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, appointment)
}

// appointmentsByDateHandler lists the appointments of a calendar day.
func (a *API) appointmentsByDateHandler(w http.ResponseWriter, r *http.Request) {
	day, ok := dateParam(r)
	if !ok {
		errors.ErrInvalidDate.Withf("date must be %s", dateParamLayout).Write(w)
		return
	}
	appointments, err := a.db.AppointmentsByDate(day)
	if err != nil {
		errors.ErrGenericInternalServerError.Withf("could not list appointments: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.AppointmentsResponse{
		Appointments: appointments,
		Total:        int64(len(appointments)),
	})
}

// transitionAppointment moves the appointment through the workflow table
// under the given action and returns the updated appointment. The move is a
// compare-and-set on the current status, so two concurrent reviewers cannot
// both win.
func (a *API) transitionAppointment(w http.ResponseWriter, r *http.Request,
	action workflow.Action,
) (*db.Appointment, *apicommon.TransitionRequest, bool) {
	id, ok := objectIDParam(r, "appointmentID")
	if !ok {
		errors.ErrMalformedURLParam.With("invalid appointmentID").Write(w)
		return nil, nil, false
	}
	req := &apicommon.TransitionRequest{}
	if r.Body != nil {
		// the remark body is optional
		_ = json.NewDecoder(r.Body).Decode(req)
	}
	appointment, err := a.db.Appointment(id)
	if err != nil {
		if err == db.ErrNotFound {
			errors.ErrAppointmentNotFound.Write(w)
			return nil, nil, false
		}
		errors.ErrGenericInternalServerError.Withf("could not get appointment: %v", err).Write(w)
		return nil, nil, false
	}
	next, ok := a.policy.Next(appointment.Status, action)
	if !ok {
		errors.ErrInvalidTransition.Withf("%s not allowed from %s", action, appointment.Status).Write(w)
		return nil, nil, false
	}
	if err := a.db.SetAppointmentStatus(id, appointment.Status, next); err != nil {
		a.writeAppointmentError(w, err)
		return nil, nil, false
	}
	appointment.Status = next
	return appointment, req, true
}

// notifyAppointmentStatus emails the donor about the new status of their
// appointment through the dispatch queue.
func (a *API) notifyAppointmentStatus(appointment *db.Appointment, remark string) {
	a.enqueueEmail(mailtemplates.AppointmentStatusNotification, struct {
		DonorName string
		Date      string
		Slot      string
		Status    string
		Remark    string
	}{
		DonorName: appointment.DonorInfo.Name,
		Date:      appointment.SelectedDate.Format(dateParamLayout),
		Slot:      appointment.SelectedSlot,
		Status:    string(appointment.Status),
		Remark:    remark,
	}, appointment.DonorInfo.Name, appointment.DonorInfo.DonorEmail)
}

// approveAppointmentHandler approves a pending booking and notifies the
// donor.
func (a *API) approveAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	appointment, req, ok := a.transitionAppointment(w, r, workflow.ActionApprove)
	if !ok {
		return
	}
	a.notifyAppointmentStatus(appointment, req.Remark)
	apicommon.HTTPWriteJSON(w, appointment)
}

// rejectAppointmentHandler rejects a pending booking and notifies the donor.
func (a *API) rejectAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	appointment, req, ok := a.transitionAppointment(w, r, workflow.ActionReject)
	if !ok {
		return
	}
	a.notifyAppointmentStatus(appointment, req.Remark)
	apicommon.HTTPWriteJSON(w, appointment)
}

// cancelAppointmentHandler cancels a booking. Cancellation closes at the
// start of the scheduled day, and drawn blood can never be cancelled.
func (a *API) cancelAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(r, "appointmentID")
	if !ok {
		errors.ErrMalformedURLParam.With("invalid appointmentID").Write(w)
		return
	}
	appointment, err := a.db.Appointment(id)
	if err != nil {
		if err == db.ErrNotFound {
			errors.ErrAppointmentNotFound.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.Withf("could not get appointment: %v", err).Write(w)
		return
	}
	if !workflow.CanCancel(appointment.Status, appointment.SelectedDate, time.Now()) {
		errors.ErrCancellationDenied.Write(w)
		return
	}
	if err := a.db.SetAppointmentStatus(id, appointment.Status, db.AppointmentCancelled); err != nil {
		a.writeAppointmentError(w, err)
		return
	}
	appointment.Status = db.AppointmentCancelled
	apicommon.HTTPWriteJSON(w, appointment)
}

// collectAppointmentHandler records the blood draw of an approved
// appointment.
func (a *API) collectAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(r, "appointmentID")
	if !ok {
		errors.ErrMalformedURLParam.With("invalid appointmentID").Write(w)
		return
	}
	req := &apicommon.CollectRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if err := a.db.CollectAppointment(id, &req.Collection); err != nil {
		a.writeAppointmentError(w, err)
		return
	}
	apicommon.HTTPWriteOK(w)
}

// processAppointmentHandler records the processing steps of a collected
// unit.
func (a *API) processAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(r, "appointmentID")
	if !ok {
		errors.ErrMalformedURLParam.With("invalid appointmentID").Write(w)
		return
	}
	req := &apicommon.ProcessRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	for _, step := range req.Steps {
		if !db.IsValidProcessingStep(step.Name) {
			errors.ErrMalformedBody.Withf("unknown processing step %q", step.Name).Write(w)
			return
		}
	}
	if err := a.db.ProcessAppointment(id, req.Steps); err != nil {
		a.writeAppointmentError(w, err)
		return
	}
	apicommon.HTTPWriteOK(w)
}

// testAppointmentHandler records the screening results of a processed unit.
func (a *API) testAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(r, "appointmentID")
	if !ok {
		errors.ErrMalformedURLParam.With("invalid appointmentID").Write(w)
		return
	}
	req := &apicommon.TestRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	for _, result := range req.Results {
		if !db.IsValidTestName(result.Name) {
			errors.ErrMalformedBody.Withf("unknown screening test %q", result.Name).Write(w)
			return
		}
	}
	if err := a.db.TestAppointment(id, req.Results); err != nil {
		a.writeAppointmentError(w, err)
		return
	}
	apicommon.HTTPWriteOK(w)
}

// labelAppointmentHandler labels a tested unit into stock. The label
// identifier is generated when absent and the expiry defaults to the
// whole-blood shelf life. The unit enters the ledger and the aggregated
// level in the same transaction as the status move.
func (a *API) labelAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(r, "appointmentID")
	if !ok {
		errors.ErrMalformedURLParam.With("invalid appointmentID").Write(w)
		return
	}
	req := &apicommon.LabelRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.Labelling.LabelID == "" {
		req.Labelling.LabelID = uuid.NewString()
	}
	if req.Labelling.ExpiryDate.IsZero() {
		req.Labelling.ExpiryDate = time.Now().Add(defaultShelfLife)
	}
	if err := a.db.LabelAppointment(id, &req.Labelling); err != nil {
		a.writeAppointmentError(w, err)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.CreatedResponse{ID: req.Labelling.LabelID})
}

// writeAppointmentError maps a storage error of an appointment operation to
// its API error. The storage wraps transactional errors, so the sentinel is
// matched with errors.Is.
func (a *API) writeAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, db.ErrNotFound):
		errors.ErrAppointmentNotFound.Write(w)
	case stderrors.Is(err, db.ErrBadTransition):
		errors.ErrInvalidTransition.Write(w)
	case stderrors.Is(err, db.ErrAlreadyExists):
		errors.ErrDuplicateConflict.With("label already in the ledger").Write(w)
	case stderrors.Is(err, db.ErrInvalidData):
		errors.ErrInvalidBloodGroup.Write(w)
	default:
		errors.ErrGenericInternalServerError.Withf("appointment operation failed: %v", err).Write(w)
	}
}
