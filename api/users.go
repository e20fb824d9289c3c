package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.vocdoni.io/dvote/log"

	"github.com/bloodline/backend/api/apicommon"
	"github.com/bloodline/backend/db"
	"github.com/bloodline/backend/errors"
	"github.com/bloodline/backend/internal"
)

// ensureAdminAccount seeds a verified admin so the first deployment can log
// in and verify the rest of the staff. An already registered email is left
// untouched.
func (a *API) ensureAdminAccount(email, password string) error {
	if !internal.ValidEmail(email) {
		return fmt.Errorf("invalid admin email")
	}
	if len(password) < 8 {
		return fmt.Errorf("admin password must be at least 8 characters")
	}
	_, err := a.db.SetUser(&db.User{
		Email:    email,
		Password: internal.HexHashPassword(passwordSalt, password),
		Role:     db.AdminRole,
		Verified: true,
	})
	if err != nil {
		if err == db.ErrAlreadyExists {
			return nil
		}
		return err
	}
	log.Infow("admin account seeded", "email", email)
	return nil
}

// registerHandler registers a new staff account. The account stays
// unverified until an admin verifies it, so it cannot log in yet.
func (a *API) registerHandler(w http.ResponseWriter, r *http.Request) {
	userInfo := &apicommon.UserInfo{}
	if err := json.NewDecoder(r.Body).Decode(userInfo); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if !internal.ValidEmail(userInfo.Email) {
		errors.ErrEmailMalformed.Write(w)
		return
	}
	if len(userInfo.Password) < 8 {
		errors.ErrPasswordTooShort.Write(w)
		return
	}
	role := db.UserRole(userInfo.Role)
	if userInfo.Role == "" {
		role = db.OfficerRole
	}
	userID, err := a.db.SetUser(&db.User{
		Email:     userInfo.Email,
		Password:  internal.HexHashPassword(passwordSalt, userInfo.Password),
		FirstName: userInfo.FirstName,
		LastName:  userInfo.LastName,
		Role:      role,
	})
	if err != nil {
		switch err {
		case db.ErrAlreadyExists:
			errors.ErrDuplicateConflict.With("email already registered").Write(w)
		case db.ErrInvalidData:
			errors.ErrMalformedBody.With("invalid user role").Write(w)
		default:
			errors.ErrGenericInternalServerError.Withf("could not create user: %v", err).Write(w)
		}
		return
	}
	apicommon.HTTPWriteJSON(w, &apicommon.CreatedResponse{ID: strconv.FormatUint(userID, 10)})
}

// userInfoHandler returns the current staff user information, without the
// password hash.
func (a *API) userInfoHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	user.Password = ""
	apicommon.HTTPWriteJSON(w, user)
}

// verifyUserHandler marks a staff account as verified. Only admins may
// verify accounts.
func (a *API) verifyUserHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := apicommon.UserFromContext(r.Context())
	if !ok {
		errors.ErrUnauthorized.Write(w)
		return
	}
	if user.Role != db.AdminRole {
		errors.ErrForbiddenRole.Write(w)
		return
	}
	userID, err := strconv.ParseUint(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		errors.ErrMalformedURLParam.With("invalid userID").Write(w)
		return
	}
	if err := a.db.VerifyUserAccount(&db.User{ID: userID}); err != nil {
		if err == db.ErrNotFound {
			errors.ErrUserNotFound.Write(w)
			return
		}
		errors.ErrGenericInternalServerError.Withf("could not verify user: %v", err).Write(w)
		return
	}
	apicommon.HTTPWriteOK(w)
}
