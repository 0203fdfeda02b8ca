package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	adapthttp "fittrack/internal/adapter/http"
	"fittrack/internal/adapter/memory"
	"fittrack/internal/app"
	"fittrack/internal/auth"
	"fittrack/internal/domain"
)

type testEnv struct {
	db     *memory.DB
	svc    adapthttp.Services
	server *adapthttp.Server
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db := memory.New()
	svc := adapthttp.Services{
		Auth:       app.NewAuthService(db, db.NewSessionRepo(), auth.NewTokenIssuer("test-secret", time.Hour)),
		Metrics:    app.NewMetricService(db),
		Activities: app.NewActivityService(db),
		Summary:    app.NewSummaryService(db, domain.Goals{}),
		Workouts:   app.NewWorkoutService(db),
		Profiles:   app.NewProfileService(db, db, db, db),
		Shares:     app.NewShareService(db, db, db),
	}
	if err := svc.Workouts.SeedDefaultPlan(context.Background()); err != nil {
		t.Fatal(err)
	}

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	return &testEnv{
		db:     db,
		svc:    svc,
		server: adapthttp.New(svc, nil).WithWebDir(webDir).WithHeartbeat(20 * time.Millisecond),
	}
}

// newTestServer starts a server that treats every request as user u1.
func newTestServer(t *testing.T) (*httptest.Server, *testEnv) {
	t.Helper()
	env := newEnv(t)
	env.server.WithoutAuth(&domain.User{ID: "u1", Username: "alice@example.com"})
	ts := httptest.NewServer(env.server.Handler())
	t.Cleanup(ts.Close)
	return ts, env
}

func do(t *testing.T, method, url, body string, header http.Header) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() }) //nolint:errcheck
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	decodeBody(t, resp, &body)
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
	if resp.Header.Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store, got %q", resp.Header.Get("Cache-Control"))
	}
}

func TestMetricCreateAndList(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"weight", `{"metricType":"weight","value":"72.5"}`, http.StatusCreated},
		{"blood pressure", `{"metricType":"blood_pressure","value":"120/80","unit":"mmHg"}`, http.StatusCreated},
		{"unknown kind", `{"metricType":"mood","value":"3"}`, http.StatusBadRequest},
		{"bad value", `{"metricType":"steps","value":"lots"}`, http.StatusBadRequest},
		{"unknown field", `{"metricType":"steps","value":"1","extra":true}`, http.StatusBadRequest},
		{"malformed", `{`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, ts.URL+"/api/metrics", tc.body, nil)
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
		})
	}

	resp := do(t, http.MethodGet, ts.URL+"/api/metrics", "", nil)
	var all []domain.Metric
	decodeBody(t, resp, &all)
	if len(all) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(all))
	}
	for _, m := range all {
		if m.ID == "" || m.UserID != "u1" || m.Date == "" {
			t.Errorf("metric missing server fields: %+v", m)
		}
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/metrics?type=weight", "", nil)
	var weights []domain.Metric
	decodeBody(t, resp, &weights)
	if len(weights) != 1 || weights[0].Unit != "kg" {
		t.Fatalf("expected one kg weight, got %+v", weights)
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/metrics?type=nope", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestMetricHistoryConvertsUnit(t *testing.T) {
	ts, _ := newTestServer(t)
	do(t, http.MethodPost, ts.URL+"/api/metrics", `{"metricType":"weight","value":"100","unit":"kg"}`, nil)

	resp := do(t, http.MethodGet, ts.URL+"/api/metrics/history?type=weight&unit=lb&limit=5", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var hist []domain.Metric
	decodeBody(t, resp, &hist)
	if len(hist) != 1 || hist[0].Unit != "lb" || !strings.HasPrefix(hist[0].Value, "220.") {
		t.Fatalf("expected 220.x lb, got %+v", hist)
	}
}

func TestActivitiesAndSummary(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, body := range []string{
		`{"activityType":"pushups","value":30}`,
		`{"activityType":"pushups","value":30}`,
		`{"activityType":"water","value":4}`,
	} {
		resp := do(t, http.MethodPost, ts.URL+"/api/activities", body, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
	}
	resp := do(t, http.MethodPost, ts.URL+"/api/activities", `{"activityType":"pushups","value":-1}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative value, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/activities", "", nil)
	var today []domain.Activity
	decodeBody(t, resp, &today)
	if len(today) != 3 {
		t.Fatalf("expected 3 activities today, got %d", len(today))
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/activities/history?type=pushups&limit=1", "", nil)
	var hist []domain.Activity
	decodeBody(t, resp, &hist)
	if len(hist) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(hist))
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/summary/daily?days=1", "", nil)
	var summary struct {
		Goals domain.Goals      `json:"goals"`
		Days  []app.DaySummary `json:"days"`
	}
	decodeBody(t, resp, &summary)
	if len(summary.Days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(summary.Days))
	}
	d := summary.Days[0]
	if d.Pushups.Total != 60 || d.Pushups.Percent != 100 {
		t.Errorf("expected pushups capped at 100%%, got %+v", d.Pushups)
	}
	if d.Water.Percent != 50 {
		t.Errorf("expected water at 50%%, got %+v", d.Water)
	}
	if summary.Goals != domain.DefaultGoals() {
		t.Errorf("unexpected goals %+v", summary.Goals)
	}
}

func TestWorkoutsAndProfileStats(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/api/workouts?day=Monday", "", nil)
	var monday []domain.Workout
	decodeBody(t, resp, &monday)
	if len(monday) != 2 {
		t.Fatalf("expected 2 monday workouts, got %d", len(monday))
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/workouts?day=someday", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/workouts/mon-pushups/complete", "", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp = do(t, http.MethodPost, ts.URL+"/api/workouts/missing/complete", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/profile/stats", "", nil)
	var stats domain.Stats
	decodeBody(t, resp, &stats)
	if stats.Workouts != 1 || stats.Level != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestProfileGetAndUpdate(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodPut, ts.URL+"/api/profile", `{"fullName":"Alice","heightCm":168}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/profile", "", nil)
	var p domain.Profile
	decodeBody(t, resp, &p)
	if p.FullName != "Alice" || p.HeightCM != 168 {
		t.Errorf("unexpected profile %+v", p)
	}

	resp = do(t, http.MethodPut, ts.URL+"/api/profile", `{"heightCm":-5}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad height, got %d", resp.StatusCode)
	}
}

func TestShareLifecycle(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Metrics.Record(ctx, "sender", domain.KindSteps, "8000", ""); err != nil {
		t.Fatal(err)
	}
	sh, err := env.svc.Shares.Create(ctx, "sender", "bob@example.com")
	if err != nil {
		t.Fatal(err)
	}

	env.server.WithoutAuth(&domain.User{ID: "bob"})
	ts := httptest.NewServer(env.server.Handler())
	defer ts.Close()

	resp := do(t, http.MethodGet, ts.URL+"/api/shares/"+strings.ToLower(sh.Code), "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got domain.Share
	decodeBody(t, resp, &got)
	if len(got.Metrics) != 1 {
		t.Fatalf("expected 1 shared metric, got %d", len(got.Metrics))
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/shares/"+sh.Code+"/import", "", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var imported struct {
		Imported int `json:"imported"`
	}
	decodeBody(t, resp, &imported)
	if imported.Imported != 1 {
		t.Errorf("expected 1 import, got %d", imported.Imported)
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/shares/SHARENOPE00", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/shares", `{"recipientEmail":"carol@example.com"}`, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
}

func TestTokenAuthFlow(t *testing.T) {
	env := newEnv(t)
	ts := httptest.NewServer(env.server.Handler())
	defer ts.Close()

	resp := do(t, http.MethodGet, ts.URL+"/api/metrics", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/auth/register", `{"email":"Dana@Example.com","password":"secret1"}`, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp = do(t, http.MethodPost, ts.URL+"/api/auth/register", `{"email":"dana@example.com","password":"secret1"}`, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", resp.StatusCode)
	}
	resp = do(t, http.MethodPost, ts.URL+"/api/auth/register", `{"email":"eve@example.com","password":"123"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on weak password, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/auth/token", `{"username":"dana@example.com","password":"wrong!"}`, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/auth/token", `{"username":"dana@example.com","password":"secret1"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var tok struct {
		Token string            `json:"token"`
		User  map[string]string `json:"user"`
	}
	decodeBody(t, resp, &tok)
	if tok.Token == "" || tok.User["username"] != "dana@example.com" {
		t.Fatalf("unexpected token response %+v", tok)
	}

	bearer := http.Header{"Authorization": {"Bearer " + tok.Token}}
	resp = do(t, http.MethodGet, ts.URL+"/api/auth/me", "", bearer)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with bearer, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/metrics", "", http.Header{"Authorization": {"Bearer junk"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, ts.URL+"/api/metrics", "", http.Header{"Authorization": {"Basic abc"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for basic auth, got %d", resp.StatusCode)
	}
}

func TestRegisterSeedsProfileAndIgnoresCase(t *testing.T) {
	env := newEnv(t)
	ts := httptest.NewServer(env.server.Handler())
	defer ts.Close()

	resp := do(t, http.MethodPost, ts.URL+"/api/auth/register", `{"email":"Alice@Example.com","password":"secret123","name":"Alice Liddell"}`, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/auth/token", `{"username":"Alice@Example.com","password":"secret123"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for the registered spelling, got %d", resp.StatusCode)
	}
	var tok struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &tok)

	resp = do(t, http.MethodGet, ts.URL+"/api/profile", "", http.Header{"Authorization": {"Bearer " + tok.Token}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var p domain.Profile
	decodeBody(t, resp, &p)
	if p.FullName != "Alice Liddell" || p.Email != "alice@example.com" {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestSessionCookieFlow(t *testing.T) {
	env := newEnv(t)
	ts := httptest.NewServer(env.server.Handler())
	defer ts.Close()

	resp := do(t, http.MethodPost, ts.URL+"/api/auth/setup", `{"username":"admin","password":"hunter22"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp = do(t, http.MethodPost, ts.URL+"/api/auth/setup", `{"username":"other","password":"hunter22"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on second setup, got %d", resp.StatusCode)
	}

	ua := http.Header{"User-Agent": {"test-agent"}}
	resp = do(t, http.MethodPost, ts.URL+"/api/auth/login", `{"username":"admin","password":"hunter22"}`, ua)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			session = c
		}
	}
	if session == nil || !session.HttpOnly {
		t.Fatal("expected an HttpOnly session cookie")
	}

	withCookie := http.Header{"User-Agent": {"test-agent"}, "Cookie": {"session=" + session.Value}}
	resp = do(t, http.MethodGet, ts.URL+"/api/auth/me", "", withCookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	otherAgent := http.Header{"User-Agent": {"someone-else"}, "Cookie": {"session=" + session.Value}}
	resp = do(t, http.MethodGet, ts.URL+"/api/auth/me", "", otherAgent)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a different user agent, got %d", resp.StatusCode)
	}
}

func TestForwardAuthIsOptIn(t *testing.T) {
	env := newEnv(t)
	remote := http.Header{"Remote-User": {"proxy-user"}}

	ts := httptest.NewServer(env.server.Handler())
	resp := do(t, http.MethodGet, ts.URL+"/api/auth/me", "", remote)
	ts.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected header to be ignored, got %d", resp.StatusCode)
	}

	ts = httptest.NewServer(env.server.WithForwardAuth(true).Handler())
	defer ts.Close()
	resp = do(t, http.MethodGet, ts.URL+"/api/auth/me", "", remote)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var me map[string]string
	decodeBody(t, resp, &me)
	if me["username"] != "proxy-user" {
		t.Errorf("unexpected user %v", me)
	}
}

func TestLiveHeartbeat(t *testing.T) {
	ts, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/api/live", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.CloseNow()

	for i := 0; i < 2; i++ {
		_, data, err := c.Read(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg["type"] != "heartbeat" {
			t.Fatalf("expected heartbeat, got %v", msg)
		}
	}
	c.Close(websocket.StatusNormalClosure, "")
}

func TestSPAFallback(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := do(t, http.MethodGet, ts.URL+"/some/client/route", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("<html>")) {
		t.Errorf("expected index.html, got %q", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"DELETE metrics", http.MethodDelete, "/api/metrics"},
		{"PUT activities", http.MethodPut, "/api/activities"},
		{"GET workout complete", http.MethodGet, "/api/workouts/mon-pushups/complete"},
		{"GET auth/token", http.MethodGet, "/api/auth/token"},
		{"POST profile", http.MethodPost, "/api/profile"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, tc.method, ts.URL+tc.path, "", nil)
			if resp.StatusCode != http.StatusMethodNotAllowed {
				t.Fatalf("expected 405, got %d", resp.StatusCode)
			}
		})
	}
}
