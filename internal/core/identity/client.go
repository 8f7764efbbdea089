package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mclarke-dev/docuchat/internal/models"
)

var (
	// ErrInvalidCredentials is returned when the provider rejects a sign-in.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a one-time token or access token is
	// expired or malformed.
	ErrInvalidToken = errors.New("invalid token")
)

// Session is the token grant the identity provider returns.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         models.User `json:"user"`
}

// Bundle converts the grant into the cookie-carried token bundle.
func (s *Session) Bundle(now time.Time) models.TokenBundle {
	return models.TokenBundle{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(s.ExpiresIn) * time.Second),
	}
}

// Client talks to a GoTrue-compatible identity provider. It owns no state:
// tokens live in the browser session cookie.
type Client struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewClient(baseURL, anonKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// SignIn performs a password grant.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var sess Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", payload, &sess)
	if err != nil {
		if isStatus(err, http.StatusBadRequest) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return &sess, nil
}

// SignUp registers a new user. When email confirmation is required the
// provider returns a user record without tokens; the caller should then send
// the user to the confirmation flow instead of establishing a session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", payload, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Refresh exchanges a refresh token for a fresh grant.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	payload := map[string]string{"refresh_token": refreshToken}
	var sess Session
	err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", "", payload, &sess)
	if err != nil {
		if isStatus(err, http.StatusBadRequest) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &sess, nil
}

// Verify redeems a one-time email token (signup confirmation, magic link).
func (c *Client) Verify(ctx context.Context, tokenHash, verifyType string) (*Session, error) {
	payload := map[string]string{"token_hash": tokenHash, "type": verifyType}
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/auth/v1/verify", "", payload, &sess); err != nil {
		if isStatus(err, http.StatusForbidden) || isStatus(err, http.StatusUnauthorized) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &sess, nil
}

// User fetches the user record behind an access token.
func (c *Client) User(ctx context.Context, accessToken string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMetadata writes user metadata fields. Existing keys not present in
// data are preserved by the provider.
func (c *Client) UpdateMetadata(ctx context.Context, accessToken string, data map[string]interface{}) (*models.User, error) {
	payload := map[string]interface{}{"data": data}
	var user models.User
	if err := c.do(ctx, http.MethodPut, "/auth/v1/user", accessToken, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SignOut revokes the token server-side. A failed revoke is not fatal; the
// cookie is cleared regardless.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("apikey", c.anonKey)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return &ProviderError{StatusCode: res.StatusCode, Message: readMessage(res.Body)}
	}
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("decode identity response: %w", err)
		}
	}
	return nil
}

// ProviderError carries the provider's status code and message.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("identity provider error: status %d", e.StatusCode)
}

// readMessage handles both GoTrue error envelopes: {"error_description": ...}
// and {"msg": ...}.
func readMessage(r io.Reader) string {
	var env struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
	}
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return ""
	}
	if env.ErrorDescription != "" {
		return env.ErrorDescription
	}
	return env.Msg
}

func isStatus(err error, code int) bool {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.StatusCode == code
	}
	return false
}
