package api

import (
	"encoding/json"
	"net/http"

	"github.com/bloodline/backend/api/apicommon"
	"github.com/bloodline/backend/errors"
	"github.com/bloodline/backend/internal"
)

// sendSMSHandler sends an SMS to a subscriber through the gateway. Delivery
// goes through the dispatch queue, so a transient gateway failure does not
// fail the API call.
func (a *API) sendSMSHandler(w http.ResponseWriter, r *http.Request) {
	req := &apicommon.SMSRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.Message == "" {
		errors.ErrMalformedBody.With("message is required").Write(w)
		return
	}
	toNumber, err := internal.SanitizeAndVerifyPhoneNumber(req.To)
	if err != nil {
		errors.ErrInvalidPhoneNumber.Write(w)
		return
	}
	if err := a.enqueueSMS(toNumber, req.Message); err != nil {
		errors.ErrSMSGatewayFailure.Withf("could not enqueue SMS: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteOK(w)
}
