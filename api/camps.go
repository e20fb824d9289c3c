package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.vocdoni.io/dvote/log"

	"github.com/bloodline/backend/api/apicommon"
	"github.com/bloodline/backend/db"
	"github.com/bloodline/backend/errors"
	"github.com/bloodline/backend/internal"
	"github.com/bloodline/backend/notifications/mailtemplates"
	"github.com/bloodline/backend/workflow"
)

// createCampHandler registers a donation camp. The status is always forced
// to Pending and no team is allocated yet.
func (a *API) createCampHandler(w http.ResponseWriter, r *http.Request) {
	req := &apicommon.CreateCampRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if !internal.ValidEmail(req.Organizer.Email) {
		errors.ErrEmailMalformed.Write(w)
		return
	}
	if req.Organizer.Contact != "" {
		contact, err := internal.SanitizeAndVerifyPhoneNumber(req.Organizer.Contact)
		if err != nil {
			errors.ErrInvalidPhoneNumber.Write(w)
			return
		}
		req.Organizer.Contact = contact
	}
	day, err := time.Parse(dateParamLayout, req.Date)
	if err != nil {
		errors.ErrInvalidDate.Withf("date must be %s", dateParamLayout).Write(w)
		return
	}
	id, err := a.db.CreateCamp(&db.Camp{
		Organizer:      req.Organizer,
		Organization:   req.Organization,
		Date:           day,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Location:       req.Location,
		ExpectedDonors: req.ExpectedDonors,
	})
	if err != nil {
		if err == db.ErrInvalidData {
			errors.ErrInvalidCampData.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.Withf("could not create camp: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.CreatedResponse{ID: id.Hex()})
}

// campsHandler lists camps, optionally filtered by status.
func (a *API) campsHandler(w http.ResponseWriter, r *http.Request) {
	camps, err := a.db.Camps(db.CampStatus(r.URL.Query().Get("status")))
	if err != nil {
		errors.ErrGenericInternalServerError.Withf("could not list camps: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.CampsResponse{Camps: camps})
}

// campHandler returns the camp with the given ID.
func (a *API) campHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(r, "campID")
	if !ok {
		errors.ErrMalformedURLParam.With("invalid campID").Write(w)
		return
	}
	camp, err := a.db.Camp(id)
	if err != nil {
		if err == db.ErrNotFound {
			errors.ErrCampNotFound.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.Withf("could not get camp: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, camp)
}

// campBookedSlotsHandler lists the time slots already taken by non-rejected
// camps on a calendar day, so organizers avoid double-booking.
func (a *API) campBookedSlotsHandler(w http.ResponseWriter, r *http.Request) {
	day, ok := dateParam(r)
	if !ok {
		errors.ErrInvalidDate.Withf("date must be %s", dateParamLayout).Write(w)
		return
	}
	slots, err := a.db.CampBookedSlots(day)
	if err != nil {
		errors.ErrGenericInternalServerError.Withf("could not list booked slots: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.BookedSlotsResponse{Slots: slots})
}

// transitionCamp moves the camp through the workflow table under the given
// action and returns the updated camp.
func (a *API) transitionCamp(w http.ResponseWriter, r *http.Request,
	action workflow.CampAction,
) (*db.Camp, bool) {
	id, ok := objectIDParam(r, "campID")
	if !ok {
		errors.ErrMalformedURLParam.With("invalid campID").Write(w)
		return nil, false
	}
	camp, err := a.db.Camp(id)
	if err != nil {
		if err == db.ErrNotFound {
			errors.ErrCampNotFound.Write(w)
			return nil, false
		}
		errors.ErrGenericInternalServerError.Withf("could not get camp: %v", err).Write(w)
		return nil, false
	}
	next, ok := a.policy.NextCamp(camp.Status, action)
	if !ok {
		errors.ErrInvalidTransition.Withf("%s not allowed from %s", action, camp.Status).Write(w)
		return nil, false
	}
	if err := a.db.SetCampStatus(id, camp.Status, next); err != nil {
		switch err {
		case db.ErrNotFound:
			errors.ErrCampNotFound.Write(w)
		case db.ErrBadTransition:
			errors.ErrInvalidTransition.Write(w)
		default:
			errors.ErrGenericInternalServerError.Withf("could not update camp: %v", err).Write(w)
		}
		return nil, false
	}
	camp.Status = next
	return camp, true
}

// approveCampHandler approves a camp registration, emails the organizer a
// confirmation with a calendar link and announces the camp to the donors of
// its district.
func (a *API) approveCampHandler(w http.ResponseWriter, r *http.Request) {
	camp, ok := a.transitionCamp(w, r, workflow.CampActionApprove)
	if !ok {
		return
	}
	calendarLink := mailtemplates.GoogleCalendarLink(
		"Blood donation camp: "+camp.Organization,
		"Blood donation camp organized by "+camp.Organization,
		camp.Location.Venue+", "+camp.Location.City,
		camp.Date, camp.StartTime, camp.EndTime)
	a.enqueueEmail(mailtemplates.CampApprovalNotification, struct {
		OrganizerName string
		Organization  string
		Date          string
		StartTime     string
		EndTime       string
		Venue         string
		Team          string
		CalendarLink  string
	}{
		OrganizerName: camp.Organizer.Name,
		Organization:  camp.Organization,
		Date:          camp.Date.Format(dateParamLayout),
		StartTime:     camp.StartTime,
		EndTime:       camp.EndTime,
		Venue:         camp.Location.Venue,
		Team:          camp.Team,
		CalendarLink:  calendarLink,
	}, camp.Organizer.Name, camp.Organizer.Email)
	a.announceCampToDonors(camp, calendarLink)
	apicommon.HTTPWriteJSON(w, camp)
}

// announceCampToDonors emails the donors registered in the camp's district
// about the upcoming camp.
func (a *API) announceCampToDonors(camp *db.Camp, calendarLink string) {
	donors, err := a.db.DonorsByDistrict(camp.Location.District)
	if err != nil {
		log.Warnw("could not list district donors for camp announcement",
			"district", camp.Location.District, "error", err)
		return
	}
	for _, donor := range donors {
		a.enqueueEmail(mailtemplates.DonorCampNotification, struct {
			DonorName    string
			Organization string
			Date         string
			StartTime    string
			EndTime      string
			Venue        string
			City         string
			CalendarLink string
		}{
			DonorName:    donor.Name,
			Organization: camp.Organization,
			Date:         camp.Date.Format(dateParamLayout),
			StartTime:    camp.StartTime,
			EndTime:      camp.EndTime,
			Venue:        camp.Location.Venue,
			City:         camp.Location.City,
			CalendarLink: calendarLink,
		}, donor.Name, donor.Email)
	}
}

// rejectCampHandler rejects a camp registration.
func (a *API) rejectCampHandler(w http.ResponseWriter, r *http.Request) {
	camp, ok := a.transitionCamp(w, r, workflow.CampActionReject)
	if !ok {
		return
	}
	apicommon.HTTPWriteJSON(w, camp)
}

// setCampTeamHandler allocates a response team to an approved camp.
func (a *API) setCampTeamHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := objectIDParam(r, "campID")
	if !ok {
		errors.ErrMalformedURLParam.With("invalid campID").Write(w)
		return
	}
	req := &apicommon.TeamRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if err := a.db.SetCampTeam(id, req.Team); err != nil {
		switch err {
		case db.ErrNotFound:
			errors.ErrCampNotFound.Write(w)
		case db.ErrBadTransition:
			errors.ErrInvalidTransition.With("camp is not approved").Write(w)
		case db.ErrInvalidData:
			errors.ErrMalformedBody.With("team is required").Write(w)
		default:
			errors.ErrGenericInternalServerError.Withf("could not allocate team: %v", err).Write(w)
		}
		return
	}
	apicommon.HTTPWriteOK(w)
}
