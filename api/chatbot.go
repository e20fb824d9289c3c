package api

import (
	"encoding/json"
	"net/http"

	"github.com/bloodline/backend/api/apicommon"
	"github.com/bloodline/backend/errors"
)

// chatbotHandler answers a donor message through the rule-based assistant,
// rate-limited per client IP.
func (a *API) chatbotHandler(w http.ResponseWriter, r *http.Request) {
	if !a.chatLimiter.Allow(r.RemoteAddr) {
		errors.ErrTooManyRequests.Write(w)
		return
	}
	req := &apicommon.ChatRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if req.Message == "" {
		errors.ErrMalformedBody.With("message is required").Write(w)
		return
	}
	session, intent, answer, err := a.chatbot.Reply(req.SessionID, req.Message)
	if err != nil {
		errors.ErrGenericInternalServerError.Withf("chatbot failed: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.ChatResponse{
		SessionID: session,
		Intent:    intent,
		Answer:    answer,
	})
}
