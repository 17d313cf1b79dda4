// Package authapi is the client of the remote account API: login, current
// user, registration and e-mail confirmation.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ecoshop/internal/log"
	"ecoshop/internal/models"

	"github.com/rs/zerolog"
)

const (
	DefaultLoginPath = "/api/users/login"
	MePath           = "/users/me"
	RegisterPath     = "/users/register"
	ConfirmEmailPath = "/users/confirm-email-change"

	maxBodyBytes = 1 << 20
)

var ErrNoToken = errors.New("Unerwartete Serverantwort (kein Token).")

// APIError is a non-2xx answer, or a transport failure with Status 0.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("request failed (%d)", e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

type Client struct {
	baseURL   string
	loginPath string
	http      *http.Client
	log       zerolog.Logger
}

type Option func(*Client)

func WithLoginPath(p string) Option {
	return func(c *Client) {
		if p != "" {
			c.loginPath = "/" + strings.TrimLeft(p, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the request timeout on a copy of the HTTP client, so a
// client passed in with WithHTTPClient keeps its own settings.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		loginPath: DefaultLoginPath,
		http:      &http.Client{Timeout: 10 * time.Second},
		log:       log.WithComponent("authapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type LoginResult struct {
	AccessToken string
	User        *models.User
}

// Login posts {email,password}. Backends that expect {username,password}
// answer 400, 401 or 415; the request is then repeated once in that shape.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	resp, err := c.postJSON(ctx, c.loginPath, map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	switch resp.status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusUnsupportedMediaType:
		c.log.Debug().Int("status", resp.status).Msg("login rejected, retrying with username")
		resp, err = c.postJSON(ctx, c.loginPath, map[string]string{"username": email, "password": password})
		if err != nil {
			return nil, err
		}
	}

	if !resp.ok() {
		return nil, resp.apiError(fmt.Sprintf("Login fehlgeschlagen (%d)", resp.status))
	}

	token := resp.tokenFromBody()
	if token == "" {
		token = bearer(resp.header.Get("Authorization"))
	}
	if token == "" {
		return nil, ErrNoToken
	}

	res := &LoginResult{AccessToken: token}
	if raw, ok := resp.json["user"]; ok && raw != nil {
		var u models.User
		if b, err := json.Marshal(raw); err == nil && json.Unmarshal(b, &u) == nil {
			res.User = &u
		}
	}
	return res, nil
}

// Me returns the profile behind token.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, MePath, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.apiError(fmt.Sprintf("/users/me fehlgeschlagen (%d)", resp.status))
	}
	var u models.User
	if len(resp.raw) > 0 {
		if err := json.Unmarshal(resp.raw, &u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
	}
	return &u, nil
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (c *Client) Register(ctx context.Context, r RegisterRequest) (*models.User, error) {
	resp, err := c.postJSON(ctx, RegisterPath, r)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.apiError(fmt.Sprintf("Registrierung fehlgeschlagen (%d)", resp.status))
	}
	u := &models.User{Email: r.Email, FirstName: r.FirstName, LastName: r.LastName}
	if len(resp.raw) > 0 {
		_ = json.Unmarshal(resp.raw, u) // тело может быть пустым или без user-полей
	}
	return u, nil
}

func (c *Client) ConfirmEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return &APIError{Status: http.StatusBadRequest, Message: "Verification failed"}
	}
	req, err := c.newRequest(ctx, http.MethodGet, ConfirmEmailPath+"?token="+url.QueryEscape(token), nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return resp.apiError("Verification failed")
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
}

func (c *Client) do(req *http.Request) (*response, error) {
	res, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Warn().Err(err).Str("path", req.URL.Path).Msg("request failed")
		return nil, &APIError{Status: 0, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, &APIError{Status: 0, Err: err}
	}
	r := &response{status: res.StatusCode, header: res.Header, raw: raw}
	if len(bytes.TrimSpace(raw)) > 0 {
		_ = json.Unmarshal(raw, &r.json) // не-JSON тело остаётся в raw
	}
	c.log.Debug().Str("method", req.Method).Str("path", req.URL.Path).Int("status", res.StatusCode).Msg("auth api call")
	return r, nil
}

type response struct {
	status int
	header http.Header
	raw    []byte
	json   map[string]any
}

func (r *response) ok() bool { return r.status >= 200 && r.status < 300 }

// apiError picks the message from the body's message or error field, the
// raw body, or fallback, in that order.
func (r *response) apiError(fallback string) *APIError {
	msg := r.str("message")
	if msg == "" {
		msg = r.str("error")
	}
	if msg == "" {
		msg = strings.TrimSpace(string(r.raw))
	}
	if msg == "" {
		msg = fallback
	}
	return &APIError{Status: r.status, Message: msg}
}

func (r *response) tokenFromBody() string {
	for _, key := range []string{"accessToken", "token", "jwt", "access_token"} {
		if v := r.str(key); v != "" {
			return v
		}
	}
	return ""
}

func (r *response) str(key string) string {
	if r.json == nil {
		return ""
	}
	if v, ok := r.json[key].(string); ok {
		return v
	}
	return ""
}

func bearer(header string) string {
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
