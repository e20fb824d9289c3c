package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/bloodline/backend/api/apicommon"
	"github.com/bloodline/backend/db"
	"github.com/bloodline/backend/errors"
)

// authenticator is a middleware that authenticates the staff user. It decodes
// the user identifier (its email) from the JWT token, gets the user from the
// database and adds it to the request context for the next handler.
func (a *API) authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			errors.ErrUnauthorized.Write(w)
			return
		}
		if token == nil || jwt.Validate(token, jwt.WithRequiredClaim("userId")) != nil {
			errors.ErrUnauthorized.Withf("userId claim not found in JWT token").Write(w)
			return
		}
		// retrieve the `userId` from the claims and get the user from the
		// database
		userEmail := claims["userId"].(string)
		user, err := a.db.UserByEmail(userEmail)
		if err != nil {
			if err == db.ErrNotFound {
				errors.ErrUnauthorized.Withf("user not found").Write(w)
				return
			}
			errors.ErrGenericInternalServerError.Withf("could not retrieve user from database: %v", err).Write(w)
			return
		}
		if !user.Verified {
			errors.ErrUserNotVerified.Write(w)
			return
		}
		// add the user to the context and pass it through
		ctx := context.WithValue(r.Context(), apicommon.UserMetadataKey, *user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
