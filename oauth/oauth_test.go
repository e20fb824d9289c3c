package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestUserInfo(t *testing.T) {
	c := qt.New(t)

	const validToken = "valid-token"
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"email": "donor@example.com",
			"name": "Test Donor",
			"nic": "991234567V",
			"contact": "+94771234567",
			"district": "Colombo",
			"birthDate": "1999-05-02",
			"bloodGroup": "O+",
			"gender": "Male"
		}`))
	}))
	defer provider.Close()

	client := New(provider.URL)

	profile, err := client.UserInfo(context.Background(), validToken)
	c.Assert(err, qt.IsNil)
	c.Assert(profile.Email, qt.Equals, "donor@example.com")
	c.Assert(profile.Name, qt.Equals, "Test Donor")
	c.Assert(profile.District, qt.Equals, "Colombo")
	c.Assert(profile.BloodGroup, qt.Equals, "O+")

	// a bad token maps to ErrTokenRejected
	_, err = client.UserInfo(context.Background(), "bad-token")
	c.Assert(err, qt.Equals, ErrTokenRejected)
}

func TestUserInfoServerFailure(t *testing.T) {
	c := qt.New(t)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer provider.Close()

	_, err := New(provider.URL).UserInfo(context.Background(), "any")
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(err, qt.Not(qt.Equals), ErrTokenRejected)
}

func TestUserInfoMissingEmail(t *testing.T) {
	c := qt.New(t)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name": "No Email"}`))
	}))
	defer provider.Close()

	_, err := New(provider.URL).UserInfo(context.Background(), "any")
	c.Assert(err, qt.Not(qt.IsNil))
}
