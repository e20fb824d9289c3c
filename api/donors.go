package api

import (
	"net/http"
	"strings"
	"time"

	"go.vocdoni.io/dvote/log"

	"github.com/bloodline/backend/api/apicommon"
	"github.com/bloodline/backend/db"
	"github.com/bloodline/backend/errors"
	"github.com/bloodline/backend/internal"
	"github.com/bloodline/backend/oauth"
)

// donorInfoHandler forwards the bearer token of the request to the identity
// provider, upserts the returned profile as the donor record and returns it.
// Repeated calls with the same account converge on the same document.
func (a *API) donorInfoHandler(w http.ResponseWriter, r *http.Request) {
	accessToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if accessToken == "" {
		errors.ErrUnauthorized.With("missing bearer token").Write(w)
		return
	}
	profile, err := a.oauth.UserInfo(r.Context(), accessToken)
	if err != nil {
		if err == oauth.ErrTokenRejected {
			errors.ErrInvalidOAuthToken.Write(w)
			return
		}
		errors.ErrOAuthServerConnectionFailed.Withf("userinfo request failed: %v", err).Write(w)
		return
	}
	donor := &db.Donor{
		Email:      profile.Email,
		NIC:        profile.NIC,
		Name:       profile.Name,
		Address:    profile.Address,
		Province:   profile.Province,
		District:   profile.District,
		BloodGroup: profile.BloodGroup,
		Gender:     profile.Gender,
		AvatarURL:  profile.Picture,
	}
	if profile.Contact != "" {
		contact, err := internal.SanitizeAndVerifyPhoneNumber(profile.Contact)
		if err != nil {
			// the provider is the authority on the profile, so a number it
			// holds in a format we cannot parse is logged and skipped
			log.Warnw("unparseable donor contact from provider", "email", profile.Email, "error", err)
		} else {
			donor.Contact = contact
		}
	}
	if profile.BirthDate != "" {
		birthDate, _, err := internal.ParseBirthDate(profile.BirthDate)
		if err != nil {
			log.Warnw("unparseable donor birthdate from provider", "email", profile.Email, "error", err)
		} else {
			donor.BirthDate = birthDate
			donor.Age = internal.Age(birthDate, time.Now())
		}
	}
	if err := a.db.SetDonor(donor); err != nil {
		if err == db.ErrInvalidData {
			errors.ErrInvalidDonorData.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.Withf("could not upsert donor: %v", err).Write(w)
		return
	}
	// return the stored profile, which keeps fields the provider does not own
	stored, err := a.db.Donor(donor.Email)
	if err != nil {
		errors.ErrGenericInternalServerError.Withf("could not get donor: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteJSON(w, stored)
}
