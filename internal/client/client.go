// Package client is a typed HTTP client for the fittrack server API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"fittrack/internal/app"
	"fittrack/internal/domain"
)

var (
	// ErrUnavailable wraps transport failures and 5xx responses. Writes that
	// fail this way are safe to retry later.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("not authorized")
)

// Client talks to one fittrack server as one user.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  oauth2.TokenSource
	userID  string
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken authenticates requests with a bearer token issued to userID.
func WithToken(token, userID string) Option {
	return func(c *Client) {
		if token != "" {
			c.tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		}
		c.userID = userID
	}
}

// WithTokenSource authenticates requests with tokens from ts.
func WithTokenSource(ts oauth2.TokenSource, userID string) Option {
	return func(c *Client) {
		c.tokens = ts
		c.userID = userID
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// UserID is the user the client's token was issued to.
func (c *Client) UserID() string { return c.userID }

// BaseURL is the server root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

// Unwrap classifies the status so callers can use errors.Is. A 404 is
// both ErrNotFound and ErrRejected: replaying it cannot succeed.
func (e *APIError) Unwrap() []error {
	switch {
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return []error{ErrUnauthorized}
	case e.Status == http.StatusRequestTimeout || e.Status == http.StatusTooManyRequests || e.Status >= 500:
		return []error{ErrUnavailable}
	case e.Status == http.StatusNotFound:
		return []error{domain.ErrNotFound, domain.ErrRejected}
	default:
		return []error{domain.ErrRejected}
	}
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		tok, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("failed to get token: %w", err)
		}
		tok.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		apiErr.Message = payload.Error
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// Health reports whether the server answers its health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil, nil)
}

// Session is the result of a token login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
}

// Login exchanges credentials for a bearer token. The client keeps using the
// token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	var resp struct {
		Token     string            `json:"token"`
		ExpiresAt time.Time         `json:"expiresAt"`
		User      map[string]string `json:"user"`
	}
	req := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/token", nil, req, &resp); err != nil {
		return Session{}, err
	}
	s := Session{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		UserID:    resp.User["id"],
		Username:  resp.User["username"],
	}
	WithToken(s.Token, s.UserID)(c)
	return s, nil
}

// Register creates an account with an optional display name. It does not
// log in.
func (c *Client) Register(ctx context.Context, email, password, name string) (domain.User, error) {
	var resp map[string]string
	req := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, &resp); err != nil {
		return domain.User{}, err
	}
	return domain.User{ID: resp["id"], Username: resp["username"]}, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var resp map[string]string
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &resp); err != nil {
		return domain.User{}, err
	}
	return domain.User{ID: resp["id"], Username: resp["username"]}, nil
}

// checkOwner rejects calls on behalf of anyone but the token's user.
func (c *Client) checkOwner(ownerID string) error {
	if c.userID != "" && ownerID != c.userID {
		return fmt.Errorf("%w: client is authenticated as %q, not %q", domain.ErrRejected, c.userID, ownerID)
	}
	return nil
}

// CreateMetric stores a metric on the server, which assigns its id and date.
func (c *Client) CreateMetric(ctx context.Context, ownerID string, kind domain.MetricKind, value, unit string) (domain.Metric, error) {
	if err := c.checkOwner(ownerID); err != nil {
		return domain.Metric{}, err
	}
	req := map[string]string{"metricType": string(kind), "value": value}
	if unit != "" {
		req["unit"] = unit
	}
	var m domain.Metric
	if err := c.do(ctx, http.MethodPost, "/api/metrics", nil, req, &m); err != nil {
		return domain.Metric{}, err
	}
	m.Synced = true
	return m, nil
}

// ListMetrics returns every metric of ownerID, newest first.
func (c *Client) ListMetrics(ctx context.Context, ownerID string) ([]domain.Metric, error) {
	if err := c.checkOwner(ownerID); err != nil {
		return nil, err
	}
	var ms []domain.Metric
	if err := c.do(ctx, http.MethodGet, "/api/metrics", nil, nil, &ms); err != nil {
		return nil, err
	}
	for i := range ms {
		ms[i].Synced = true
	}
	return ms, nil
}

// MetricHistory returns the last limit entries of kind, oldest first.
// Weights are converted to unit when it is "kg" or "lb".
func (c *Client) MetricHistory(ctx context.Context, kind domain.MetricKind, limit int, unit string) ([]domain.Metric, error) {
	q := url.Values{"type": {string(kind)}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if unit != "" {
		q.Set("unit", unit)
	}
	var ms []domain.Metric
	err := c.do(ctx, http.MethodGet, "/api/metrics/history", q, nil, &ms)
	return ms, err
}

// LogActivity records an activity for today.
func (c *Client) LogActivity(ctx context.Context, kind domain.ActivityKind, value float64) (domain.Activity, error) {
	var a domain.Activity
	req := map[string]any{"activityType": kind, "value": value}
	err := c.do(ctx, http.MethodPost, "/api/activities", nil, req, &a)
	return a, err
}

// Activities lists the activities of day (YYYY-MM-DD), today when empty.
func (c *Client) Activities(ctx context.Context, day string) ([]domain.Activity, error) {
	var q url.Values
	if day != "" {
		q = url.Values{"date": {day}}
	}
	var as []domain.Activity
	err := c.do(ctx, http.MethodGet, "/api/activities", q, nil, &as)
	return as, err
}

// ActivityHistory lists the most recent entries of kind.
func (c *Client) ActivityHistory(ctx context.Context, kind domain.ActivityKind, limit int) ([]domain.Activity, error) {
	q := url.Values{"type": {string(kind)}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var as []domain.Activity
	err := c.do(ctx, http.MethodGet, "/api/activities/history", q, nil, &as)
	return as, err
}

// Summary is the daily goal progress report.
type Summary struct {
	Goals domain.Goals      `json:"goals"`
	Days  []app.DaySummary `json:"days"`
}

// DailySummary returns goal progress for the last days days.
func (c *Client) DailySummary(ctx context.Context, days int) (Summary, error) {
	var q url.Values
	if days > 0 {
		q = url.Values{"days": {strconv.Itoa(days)}}
	}
	var s Summary
	err := c.do(ctx, http.MethodGet, "/api/summary/daily", q, nil, &s)
	return s, err
}

// Workouts lists the plan for day, or the whole week when day is empty.
func (c *Client) Workouts(ctx context.Context, day string) ([]domain.Workout, error) {
	var q url.Values
	if day != "" {
		q = url.Values{"day": {day}}
	}
	var ws []domain.Workout
	err := c.do(ctx, http.MethodGet, "/api/workouts", q, nil, &ws)
	return ws, err
}

// CompleteWorkout marks a workout as done today.
func (c *Client) CompleteWorkout(ctx context.Context, workoutID string) (domain.WorkoutLog, error) {
	var l domain.WorkoutLog
	err := c.do(ctx, http.MethodPost, "/api/workouts/"+url.PathEscape(workoutID)+"/complete", nil, nil, &l)
	return l, err
}

// Profile returns the caller's profile.
func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	var p domain.Profile
	err := c.do(ctx, http.MethodGet, "/api/profile", nil, nil, &p)
	return p, err
}

// UpdateProfile applies the non-nil fields of u.
func (c *Client) UpdateProfile(ctx context.Context, u domain.ProfileUpdate) (domain.Profile, error) {
	var p domain.Profile
	err := c.do(ctx, http.MethodPut, "/api/profile", nil, u, &p)
	return p, err
}

// Stats returns the caller's training stats.
func (c *Client) Stats(ctx context.Context) (domain.Stats, error) {
	var s domain.Stats
	err := c.do(ctx, http.MethodGet, "/api/profile/stats", nil, nil, &s)
	return s, err
}

// CreateShare creates a share code for recipientEmail.
func (c *Client) CreateShare(ctx context.Context, recipientEmail string) (domain.Share, error) {
	var s domain.Share
	err := c.do(ctx, http.MethodPost, "/api/shares", nil, map[string]string{"recipientEmail": recipientEmail}, &s)
	return s, err
}

// Share looks up a share and the metrics it carries.
func (c *Client) Share(ctx context.Context, code string) (domain.Share, error) {
	var s domain.Share
	err := c.do(ctx, http.MethodGet, "/api/shares/"+url.PathEscape(code), nil, nil, &s)
	return s, err
}

// ImportShare copies a share's metrics into the caller's log.
func (c *Client) ImportShare(ctx context.Context, code string) ([]domain.Metric, error) {
	var resp struct {
		Metrics []domain.Metric `json:"metrics"`
	}
	err := c.do(ctx, http.MethodPost, "/api/shares/"+url.PathEscape(code)+"/import", nil, nil, &resp)
	return resp.Metrics, err
}
