package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrInvalidCredentials reports that the identity API explicitly
// rejected the credential pair. Every other failure (timeout, 5xx,
// malformed response) is an upstream error and wraps the cause.
var ErrInvalidCredentials = errors.New("identity: invalid credentials")

// User is the profile the identity API returns for an authenticated
// member. The fields are repackaged into session tokens untouched; in
// particular ID is never generated on this side.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Client calls the RétroBus identity API. The static API key
// authorizes this service; the member's password only ever travels in
// the login request body.
type Client struct {
	// httpClient carries the bounded per-call timeout.
	httpClient *http.Client
	// baseURL is the identity API base, without a trailing slash.
	baseURL string
	// apiKey is the static bearer credential for the identity API.
	apiKey string
}

// New builds an identity API client. The timeout bounds every call so
// a stalled provider can never hang a login.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// loginRequest is the wire form of a credential pair.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the wire form of the identity API's answer.
type loginResponse struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}

// Login forwards a normalized credential pair to the identity API.
// It returns ErrInvalidCredentials when the API answers with an
// explicit rejection, and a wrapped upstream error otherwise.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	jsonBody, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize login request: %w", err)
	}

	url := c.baseURL + "/auth/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach identity API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("identity API returned status %d", resp.StatusCode)
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode identity API response: %w", err)
	}

	if !body.Success {
		return nil, ErrInvalidCredentials
	}
	if body.User == nil || body.User.ID == "" {
		return nil, fmt.Errorf("identity API response is missing the user")
	}
	return body.User, nil
}
