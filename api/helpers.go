package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.vocdoni.io/dvote/log"

	"github.com/bloodline/backend/api/apicommon"
	"github.com/bloodline/backend/notifications"
	"github.com/bloodline/backend/notifications/mailtemplates"
)

// buildLoginResponse creates a JWT token for the given user identifier.
// The token is signed with the API secret, following the JWT specification.
// The token is valid for the period specified on jwtExpiration constant.
func (a *API) buildLoginResponse(id string) (*apicommon.LoginResponse, error) {
	j := jwt.New()
	if err := j.Set("userId", id); err != nil {
		return nil, err
	}
	if err := j.Set(jwt.ExpirationKey, time.Now().Add(jwtExpiration).Unix()); err != nil {
		return nil, err
	}
	lr := apicommon.LoginResponse{}
	lr.Expirity = time.Now().Add(jwtExpiration)
	jmap, err := j.AsMap(context.Background())
	if err != nil {
		return nil, err
	}
	_, lr.Token, _ = a.auth.Encode(jmap)
	return &lr, nil
}

// objectIDParam decodes the named URL parameter as a Mongo ObjectID.
func objectIDParam(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// dateParam decodes the {date} URL parameter as a UTC calendar day.
func dateParam(r *http.Request) (time.Time, bool) {
	day, err := time.Parse(dateParamLayout, chi.URLParam(r, "date"))
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// enqueueEmail renders the mail template with the given data and pushes the
// notification to the dispatch queue, addressed to the given recipient. A
// rendering or enqueue error is logged but never fails the API call that
// produced the notification.
func (a *API) enqueueEmail(template mailtemplates.MailTemplate, data any, toName, toAddress string) {
	if a.queue == nil {
		return
	}
	notification, err := template.ExecTemplate(data)
	if err != nil {
		log.Warnw("failed to render mail template",
			"template", string(template.File), "error", err)
		return
	}
	notification.ToName = toName
	notification.ToAddress = toAddress
	request, err := notifications.NewRequest(notifications.EmailChannel, notification)
	if err != nil {
		log.Warnw("failed to build notification request", "error", err)
		return
	}
	if err := a.queue.Push(request); err != nil {
		log.Warnw("failed to enqueue notification", "error", err)
	}
}

// enqueueSMS pushes an SMS to the dispatch queue addressed to the given
// E.164 number.
func (a *API) enqueueSMS(toNumber, body string) error {
	if a.queue == nil {
		return fmt.Errorf("notifications queue is not configured")
	}
	request, err := notifications.NewRequest(notifications.SMSChannel, &notifications.Notification{
		ToNumber: toNumber,
		Body:     body,
	})
	if err != nil {
		return err
	}
	return a.queue.Push(request)
}
