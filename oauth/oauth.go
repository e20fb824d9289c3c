// Package oauth wraps the external identity provider that donors sign in
// with. The provider is the authority on token validity, so the client only
// forwards the bearer token to the userinfo endpoint and decodes the
// returned profile.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.vocdoni.io/dvote/log"
)

// httpClientTimeout is the default timeout for requests to the provider.
const httpClientTimeout = 30 * time.Second

// ErrTokenRejected is returned when the provider refuses the access token.
var ErrTokenRejected = fmt.Errorf("identity provider rejected the access token")

// Profile is the donor profile returned by the provider userinfo endpoint.
type Profile struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	NIC        string `json:"nic"`
	Contact    string `json:"contact"`
	Address    string `json:"address"`
	Province   string `json:"province"`
	District   string `json:"district"`
	BirthDate  string `json:"birthDate"`
	BloodGroup string `json:"bloodGroup"`
	Gender     string `json:"gender"`
	Picture    string `json:"picture"`
}

// Client is a client for the identity provider userinfo API.
type Client struct {
	userInfoURL string
	client      *http.Client
}

// New creates a new identity provider client with the configured userinfo
// endpoint URL.
func New(userInfoURL string) *Client {
	return &Client{
		userInfoURL: userInfoURL,
		client: &http.Client{
			Timeout: httpClientTimeout,
		},
	}
}

// UserInfo fetches the profile of the holder of the given access token. It
// returns ErrTokenRejected when the provider answers with a 4xx status, so
// callers can map it to an authentication failure.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnw("error closing response body", "error", err)
		}
	}()

	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
		return nil, ErrTokenRejected
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	profile := &Profile{}
	if err := json.NewDecoder(resp.Body).Decode(profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("userinfo response has no email")
	}
	return profile, nil
}
