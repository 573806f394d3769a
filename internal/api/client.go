// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/qna-tui/internal/model"
)

// Configuration constants for the board backend API.
const (
	// DefaultBaseURL is the board backend base URL.
	DefaultBaseURL = "http://localhost:3001/api"

	// RequestTimeout is the fixed per-request deadline. Deliberately not
	// configurable: the session layer's polling cadence assumes a probe
	// resolves well inside one check interval.
	RequestTimeout = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion attacks.
	MaxResponseSize = 2 * 1024 * 1024 // 2MB limit

	// loginSuccessCode is the backend's result code for a successful login.
	loginSuccessCode = "0000"

	// heartbeatMinInterval caps how often activity heartbeats reach the
	// server, however often the UI reports activity.
	heartbeatMinInterval = 30 * time.Second
)

// Error variables for common backend errors.
var (
	// ErrTimeout indicates the request deadline elapsed before the backend
	// answered. Distinguished from other transport failures so the session
	// layer can report "server not responding" rather than a generic error.
	ErrTimeout = errors.New("request timed out")

	// ErrSessionExpired indicates the backend answered 401: the session
	// cookie is no longer honored.
	ErrSessionExpired = errors.New("session expired")

	// ErrLoginFailed indicates the backend rejected the credentials.
	ErrLoginFailed = errors.New("login failed")
)

// APIError represents a structured error response from the board backend.
type APIError struct {
	Message string
	Status  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// errorBody is the backend's generic error response shape.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the qna board backend.
//
// The session credential is a cookie held in the jar; callers never see or
// pass tokens. Requests are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// onSessionExpired fires once per 401, from whichever call saw it.
	// The session manager makes the teardown itself idempotent.
	mu               sync.RWMutex
	onSessionExpired func()

	// heartbeatLimiter throttles best-effort activity heartbeats.
	heartbeatLimiter *rate.Limiter
}

// New creates a backend client with its own cookie jar.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	// cookiejar.New never fails with a nil options struct.
	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: RequestTimeout,
		},
		heartbeatLimiter: rate.NewLimiter(rate.Every(heartbeatMinInterval), 1),
	}
}

// WithHTTPClient replaces the underlying HTTP client. Intended for tests;
// the jar and timeout of the replacement are taken as-is.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnSessionExpired registers the hook fired when any request sees a 401.
func (c *Client) OnSessionExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSessionExpired = fn
}

// fireSessionExpired invokes the 401 hook, if registered.
func (c *Client) fireSessionExpired() {
	c.mu.RLock()
	fn := c.onSessionExpired
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// setHeaders sets the common headers for backend requests.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "qna/1.0")
	req.Header.Set("X-Request-ID", uuid.NewString())
}

// readResponse reads the response body with a size limit.
//
// SECURITY: Response size limit prevents memory exhaustion attacks.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// do performs one request and decodes the response into out (if non-nil).
//
// Classification order: timeout, transport failure, 401, structured backend
// error, decode failure. No retries at this layer.
func (c *Client) do(ctx context.Context, method, path string, reqBody, out any) error {
	var bodyReader io.Reader
	if reqBody != nil {
		bodyBytes, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s %s", ErrTimeout, method, path)
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.fireSessionExpired()
		return fmt.Errorf("%w: %s %s", ErrSessionExpired, method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// handleErrorResponse converts HTTP error responses to appropriate Go errors.
func (c *Client) handleErrorResponse(statusCode int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		if msg != "" {
			return &APIError{Message: msg, Status: statusCode}
		}
	}
	return &APIError{Message: strings.TrimSpace(string(body)), Status: statusCode}
}

// isTimeout reports whether a transport error was a deadline expiry.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	if errors.As(err, &te) {
		return te.Timeout()
	}
	return false
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// loginRequest is the payload for the login endpoint.
type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// loginResponse is the backend's login response envelope.
type loginResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	MemberID  int64  `json:"mbrId"`
	Point     int    `json:"point"`
	ExpiresAt int64  `json:"expiresAt"`
}

// ValidateResult is the backend's answer to a session validation probe.
type ValidateResult struct {
	Valid     bool   `json:"valid"`
	UserID    string `json:"userId"`
	MemberID  int64  `json:"mbrId"`
	ExpiresAt int64  `json:"expiresAt"`
}

// ExtendResult is the backend's answer to a session extension.
type ExtendResult struct {
	Message   string `json:"message"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Login authenticates with the backend and returns the session user record.
// The session cookie lands in the client's jar as a side effect.
//
// The backend answers login failures with HTTP 200 and a non-zero result
// code, so the code field is the source of truth, not the status line.
func (c *Client) Login(ctx context.Context, userID, password string) (*model.User, error) {
	var resp loginResponse
	if err := c.do(ctx, http.MethodPost, "/login/loginProcess", loginRequest{
		UserID:   userID,
		Password: password,
	}, &resp); err != nil {
		return nil, err
	}

	if resp.Code != loginSuccessCode {
		msg := resp.Message
		if msg == "" {
			msg = "invalid user ID or password"
		}
		return nil, fmt.Errorf("%w: %s", ErrLoginFailed, msg)
	}

	return &model.User{
		UserID:    resp.UserID,
		MemberID:  resp.MemberID,
		SessionID: resp.SessionID,
		Points:    resp.Point,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// Validate asks the backend whether the session cookie is still honored.
//
// A 200 with valid=false and a 401 both mean the session is dead; the 401
// path additionally fires the expiry hook inside do.
func (c *Client) Validate(ctx context.Context) (*ValidateResult, error) {
	var resp ValidateResult
	if err := c.do(ctx, http.MethodGet, "/auth/session/validate", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout tells the backend to destroy the session.
//
// Callers clear local state regardless of the result: a logout that fails on
// the wire must still log the user out locally.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/session/logout", nil, nil)
}

// Extend asks the backend to push the session expiry forward. Used when the
// user answers the timeout warning with "stay logged in".
func (c *Client) Extend(ctx context.Context) (*ExtendResult, error) {
	var resp ExtendResult
	if err := c.do(ctx, http.MethodPost, "/auth/session/extend", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Heartbeat reports user activity to the backend, best-effort.
//
// Rate-limited client-side so a burst of keystrokes does not turn into a
// burst of requests; a suppressed or failed heartbeat is not an error, the
// periodic validate pass is the authoritative liveness signal.
func (c *Client) Heartbeat(ctx context.Context) error {
	if !c.heartbeatLimiter.Allow() {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/auth/session/activity", nil, nil)
	if err != nil && !errors.Is(err, ErrSessionExpired) {
		// Swallow transport noise; the 401 hook already fired if relevant.
		return nil
	}
	return err
}
