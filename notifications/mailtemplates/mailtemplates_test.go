package mailtemplates

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestLoadAndExecTemplate(t *testing.T) {
	c := qt.New(t)
	c.Assert(Load(), qt.IsNil)
	// every defined template must have an embedded asset
	for _, mt := range []MailTemplate{
		CampApprovalNotification,
		DonorCampNotification,
		AppointmentStatusNotification,
	} {
		_, ok := AvailableTemplates[mt.File]
		c.Assert(ok, qt.IsTrue, qt.Commentf("template %s", mt.File))
	}

	n, err := CampApprovalNotification.ExecTemplate(struct {
		OrganizerName string
		Organization  string
		Date          string
		StartTime     string
		EndTime       string
		Venue         string
		Team          string
		CalendarLink  string
	}{
		OrganizerName: "Org Aniser",
		Organization:  "Lions Club",
		Date:          "2026-09-12",
		StartTime:     "09:00",
		EndTime:       "16:00",
		Venue:         "Town Hall",
		Team:          "Team A",
		CalendarLink:  "https://calendar.google.com/calendar/render?action=TEMPLATE",
	})
	c.Assert(err, qt.IsNil)
	c.Assert(n.Subject, qt.Contains, "approved")
	c.Assert(n.Body, qt.Contains, "Lions Club")
	c.Assert(n.Body, qt.Contains, "Team A")
	c.Assert(n.PlainBody, qt.Contains, "Org Aniser")
	c.Assert(n.PlainBody, qt.Contains, "Town Hall")
}

func TestExecTemplateNotFound(t *testing.T) {
	c := qt.New(t)
	c.Assert(Load(), qt.IsNil)
	missing := MailTemplate{File: "no_such_template"}
	_, err := missing.ExecTemplate(nil)
	c.Assert(err, qt.IsNotNil)
}

func TestGoogleCalendarLink(t *testing.T) {
	c := qt.New(t)
	day := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	link := GoogleCalendarLink("Blood donation camp", "Bring your NIC", "Town Hall", day, "09:00", "16:00")
	c.Assert(link, qt.Contains, "action=TEMPLATE")
	c.Assert(link, qt.Contains, "20260912T090000Z%2F20260912T160000Z")
	c.Assert(link, qt.Contains, "Blood+donation+camp")
	// unparseable times fall back to an all-day event
	link = GoogleCalendarLink("Camp", "", "", day, "", "")
	c.Assert(link, qt.Contains, "20260912%2F20260913")
}
