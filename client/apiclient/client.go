// Package apiclient talks to the report server's JSON API.
//
// Collections are fetched whole in one round trip; filtering and paging
// happen on the caller's side. Requests are never retried.
package apiclient

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

	"cctv-surveillance-reports/be/models"
)

const DefaultBaseURL = "http://localhost:5000/api"

// TransientError is a failure to reach the server at all.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// APIError is a response with success=false or a non-2xx status.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// ErrDeleteCancelled is returned when the confirmation step declines a delete.
var ErrDeleteCancelled = errors.New("delete cancelled")

// Confirm asks the operator before an irreversible action.
type Confirm func(prompt string) bool

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sends the session token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	User    *Identity       `json:"user"`
	Users   []Identity      `json:"users"`
	Token   string          `json:"token"`
}

// Identity is the username and role returned by the credential endpoints.
type Identity struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Resource addresses one report collection.
type Resource[T any] struct {
	c    *Client
	path string
	noun string
}

func (c *Client) Activities() Resource[models.ActivityReport] {
	return Resource[models.ActivityReport]{c: c, path: "/reports", noun: "report"}
}

func (c *Client) Statuses() Resource[models.StatusReport] {
	return Resource[models.StatusReport]{c: c, path: "/daily-surveillance", noun: "status"}
}

// FetchAll returns the whole collection, newest first.
func (r Resource[T]) FetchAll(ctx context.Context) ([]T, error) {
	env, err := r.c.do(ctx, http.MethodGet, r.path, nil, "fetch "+r.noun+"s")
	if err != nil {
		return nil, err
	}
	var out []T
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func (r Resource[T]) FetchByLocation(ctx context.Context, location string) ([]T, error) {
	env, err := r.c.do(ctx, http.MethodGet, r.path+"/location/"+url.PathEscape(location), nil, "fetch "+r.noun+"s")
	if err != nil {
		return nil, err
	}
	var out []T
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	env, err := r.c.do(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id), nil, "fetch "+r.noun)
	if err != nil {
		return nil, err
	}
	var out T
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T]) Create(ctx context.Context, rec *T) (*T, error) {
	env, err := r.c.do(ctx, http.MethodPost, r.path, rec, "create "+r.noun)
	if err != nil {
		return nil, err
	}
	var out T
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T]) Update(ctx context.Context, id string, rec *T) (*T, error) {
	env, err := r.c.do(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id), rec, "update "+r.noun)
	if err != nil {
		return nil, err
	}
	var out T
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete asks confirm first; a declined confirmation sends nothing.
func (r Resource[T]) Delete(ctx context.Context, id string, confirm Confirm) error {
	if confirm != nil && !confirm(fmt.Sprintf("Are you sure you want to delete this %s?", r.noun)) {
		return ErrDeleteCancelled
	}
	_, err := r.c.do(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, "delete "+r.noun)
	return err
}

// Login returns the identity and session token for valid credentials.
func (c *Client) Login(ctx context.Context, username, password string) (*Identity, string, error) {
	env, err := c.do(ctx, http.MethodPost, "/users/login", map[string]string{
		"username": username,
		"password": password,
	}, "login")
	if err != nil {
		return nil, "", err
	}
	if env.User == nil {
		return nil, "", fmt.Errorf("login: response has no user")
	}
	return env.User, env.Token, nil
}

func (c *Client) Register(ctx context.Context, username, password, role string) (*Identity, error) {
	env, err := c.do(ctx, http.MethodPost, "/users/register", map[string]string{
		"username": username,
		"password": password,
		"role":     role,
	}, "register user")
	if err != nil {
		return nil, err
	}
	return env.User, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]Identity, error) {
	env, err := c.do(ctx, http.MethodGet, "/users", nil, "fetch users")
	if err != nil {
		return nil, err
	}
	return env.Users, nil
}

func (c *Client) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	_, err := c.do(ctx, http.MethodPost, "/users/change-password", map[string]string{
		"username":    username,
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}, "change password")
	return err
}

func (c *Client) AdminChangePassword(ctx context.Context, username, newPassword string) error {
	_, err := c.do(ctx, http.MethodPost, "/users/admin-change-password", map[string]string{
		"username":    username,
		"newPassword": newPassword,
	}, "change password")
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, op string) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Op: op, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("%s: decode response: %w", op, err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}
	return &env, nil
}

func decodeData(env *envelope, dst interface{}) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("response has no data")
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
