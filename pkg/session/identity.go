package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/dopoapp/dopo-go/pkg/request"
)

// Identity endpoint suffixes under the auth root.
const (
	passwordGrantPath = "/token?grant_type=password"
	refreshGrantPath  = "/token?grant_type=refresh_token"
	signUpPath        = "/signup"
	whoAmIPath        = "/user"
)

// authResponse is the identity service's response shape. Success carries
// tokens and a user; failure carries one or more of the error fields.
type authResponse struct {
	AccessToken      string `json:"access_token,omitempty"`
	RefreshToken     string `json:"refresh_token,omitempty"`
	User             *User  `json:"user,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
	Msg              string `json:"msg,omitempty"`
}

// message returns the most specific error message the response carries,
// falling back to the given default.
func (r *authResponse) message(fallback string) string {
	switch {
	case r == nil:
		return fallback
	case r.ErrorDescription != "":
		return r.ErrorDescription
	case r.Msg != "":
		return r.Msg
	case r.Error != "":
		return r.Error
	default:
		return fallback
	}
}

// identityClient talks to the identity endpoints directly. It deliberately
// bypasses the gateway: a 401 during session validation must not re-enter the
// unauthorized hook the session manager itself owns.
type identityClient struct {
	http    *http.Client
	builder request.Builder
	authURL string
}

// post sends a JSON body to an identity endpoint and decodes the auth
// response. The response body is decoded for every status: failure payloads
// carry the error message fields.
func (c *identityClient) post(ctx context.Context, path string, body any) (*authResponse, int, error) {
	req, err := c.builder.New(ctx, http.MethodPost, c.authURL+path, body, "")
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("identity response: %w", err)
	}

	var out authResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("identity decode: %w", err)
	}
	return &out, resp.StatusCode, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signIn exchanges credentials for a token pair via the password grant.
func (c *identityClient) signIn(ctx context.Context, email, password string) (*authResponse, int, error) {
	return c.post(ctx, passwordGrantPath, credentials{Email: email, Password: password})
}

// signUp registers a new account. Depending on backend policy the response
// may carry a token pair immediately or require email confirmation first.
func (c *identityClient) signUp(ctx context.Context, email, password string) (*authResponse, int, error) {
	return c.post(ctx, signUpPath, credentials{Email: email, Password: password})
}

// refreshGrant exchanges a refresh token for a new token pair.
func (c *identityClient) refreshGrant(ctx context.Context, refreshToken string) (*authResponse, int, error) {
	body := map[string]string{"refresh_token": refreshToken}
	return c.post(ctx, refreshGrantPath, body)
}

// whoAmI validates an access token against the who-am-I endpoint and returns
// the decoded user on 200.
func (c *identityClient) whoAmI(ctx context.Context, token string) (*User, int, error) {
	req, err := c.builder.New(ctx, http.MethodGet, c.authURL+whoAmIPath, nil, token)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("identity response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("identity decode: %w", err)
	}
	return &user, resp.StatusCode, nil
}
