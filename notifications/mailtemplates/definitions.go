// Package mailtemplates provides predefined email templates for camp
// approval and donor camp announcements, along with utilities for rendering
// email content.
package mailtemplates

import (
	"fmt"
	"net/url"
	"time"

	"github.com/bloodline/backend/notifications"
)

// CampApprovalNotification is the notification to be sent to the organizer
// when their camp registration is approved.
var CampApprovalNotification = MailTemplate{
	File: "camp_approval",
	Placeholder: notifications.Notification{
		Subject: "Your blood donation camp has been approved",
		PlainBody: `Dear {{.OrganizerName}},

Your blood donation camp for {{.Organization}} on {{.Date}} ({{.StartTime}} - {{.EndTime}}) at {{.Venue}} has been approved.

Allocated team: {{.Team}}

Add it to your calendar: {{.CalendarLink}}`,
	},
}

// DonorCampNotification is the notification to be sent to registered donors
// announcing an upcoming camp in their district.
var DonorCampNotification = MailTemplate{
	File: "donor_camp_notification",
	Placeholder: notifications.Notification{
		Subject: "Blood donation camp near you",
		PlainBody: `Dear {{.DonorName}},

A blood donation camp organized by {{.Organization}} will take place on {{.Date}} ({{.StartTime}} - {{.EndTime}}) at {{.Venue}}, {{.City}}.

Every donation can save up to three lives. We hope to see you there!

Add it to your calendar: {{.CalendarLink}}`,
	},
}

// AppointmentStatusNotification is the notification to be sent to a donor
// when their appointment is approved or rejected.
var AppointmentStatusNotification = MailTemplate{
	File: "appointment_status",
	Placeholder: notifications.Notification{
		Subject: "Your donation appointment status has changed",
		PlainBody: `Dear {{.DonorName}},

Your blood donation appointment scheduled for {{.Date}} ({{.Slot}}) has been {{.Status}}.

{{.Remark}}`,
	},
}

// GoogleCalendarLink builds an "Add to Google Calendar" render link for an
// event on the given day between the given clock times ("15:04" format).
// Unparseable times fall back to an all-day event.
func GoogleCalendarLink(title, details, location string, day time.Time, startTime, endTime string) string {
	const clockLayout = "15:04"
	day = day.UTC()
	var dates string
	start, errStart := time.Parse(clockLayout, startTime)
	end, errEnd := time.Parse(clockLayout, endTime)
	if errStart != nil || errEnd != nil {
		// all-day event
		dates = fmt.Sprintf("%s/%s", day.Format("20060102"), day.AddDate(0, 0, 1).Format("20060102"))
	} else {
		from := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, time.UTC)
		to := time.Date(day.Year(), day.Month(), day.Day(), end.Hour(), end.Minute(), 0, 0, time.UTC)
		dates = fmt.Sprintf("%s/%s", from.Format("20060102T150405Z"), to.Format("20060102T150405Z"))
	}
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", title)
	q.Set("dates", dates)
	if details != "" {
		q.Set("details", details)
	}
	if location != "" {
		q.Set("location", location)
	}
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}
