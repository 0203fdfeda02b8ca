package adapthttp

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"fittrack/internal/app"
	"fittrack/internal/domain"
)

// Services are the application services the HTTP adapter drives.
type Services struct {
	Auth       *app.AuthService
	Metrics    *app.MetricService
	Activities *app.ActivityService
	Summary    *app.SummaryService
	Workouts   *app.WorkoutService
	Profiles   *app.ProfileService
	Shares     *app.ShareService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc    *app.AuthService
	metrics    *app.MetricService
	activities *app.ActivityService
	summary    *app.SummaryService
	workouts   *app.WorkoutService
	profiles   *app.ProfileService
	shares     *app.ShareService

	logger      *slog.Logger
	oidcConfig  OIDCConfig
	webDir      string
	forwardAuth bool
	heartbeat   time.Duration

	disableAuth bool
	testUser    *domain.User
}

// New creates a Server wired to the given application services.
func New(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		authSvc:    svc.Auth,
		metrics:    svc.Metrics,
		activities: svc.Activities,
		summary:    svc.Summary,
		workouts:   svc.Workouts,
		profiles:   svc.Profiles,
		shares:     svc.Shares,
		logger:     logger,
		heartbeat:  10 * time.Second,
	}
}

// WithOIDC enables SSO login through cfg.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithWebDir serves static files from dir for non-API paths.
func (s *Server) WithWebDir(dir string) *Server {
	s.webDir = dir
	return s
}

// WithForwardAuth trusts the Remote-User header set by a fronting proxy.
func (s *Server) WithForwardAuth(enabled bool) *Server {
	s.forwardAuth = enabled
	return s
}

// WithHeartbeat sets the interval of /api/live heartbeats.
func (s *Server) WithHeartbeat(d time.Duration) *Server {
	if d > 0 {
		s.heartbeat = d
	}
	return s
}

// WithoutAuth skips authentication and acts as user on every request (for tests).
func (s *Server) WithoutAuth(user *domain.User) *Server {
	s.disableAuth = true
	s.testUser = user
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	root := mux.NewRouter()
	api := root.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}).Methods(http.MethodGet, http.MethodHead)
	api.HandleFunc("/live", s.handleLive).Methods(http.MethodGet)

	api.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/auth/setup", s.handleSetupUser).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/token", s.handleToken).Methods(http.MethodPost)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin).Methods(http.MethodGet)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(s.authMiddleware)

	protected.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)

	protected.HandleFunc("/metrics", s.handleMetricCreate).Methods(http.MethodPost)
	protected.HandleFunc("/metrics", s.handleMetricList).Methods(http.MethodGet)
	protected.HandleFunc("/metrics/history", s.handleMetricHistory).Methods(http.MethodGet)

	protected.HandleFunc("/activities", s.handleActivityCreate).Methods(http.MethodPost)
	protected.HandleFunc("/activities", s.handleActivityList).Methods(http.MethodGet)
	protected.HandleFunc("/activities/history", s.handleActivityHistory).Methods(http.MethodGet)
	protected.HandleFunc("/summary/daily", s.handleSummaryDaily).Methods(http.MethodGet)

	protected.HandleFunc("/workouts", s.handleWorkoutList).Methods(http.MethodGet)
	protected.HandleFunc("/workouts/{id}/complete", s.handleWorkoutComplete).Methods(http.MethodPost)

	protected.HandleFunc("/profile", s.handleProfileGet).Methods(http.MethodGet)
	protected.HandleFunc("/profile", s.handleProfileUpdate).Methods(http.MethodPut)
	protected.HandleFunc("/profile/stats", s.handleProfileStats).Methods(http.MethodGet)

	protected.HandleFunc("/shares", s.handleShareCreate).Methods(http.MethodPost)
	protected.HandleFunc("/shares/{code}", s.handleShareGet).Methods(http.MethodGet)
	protected.HandleFunc("/shares/{code}/import", s.handleShareImport).Methods(http.MethodPost)

	if s.webDir != "" {
		// Unknown /api paths stay 404/405 instead of falling through to the SPA.
		root.PathPrefix("/").MatcherFunc(func(r *http.Request, _ *mux.RouteMatch) bool {
			return !strings.HasPrefix(r.URL.Path, "/api/")
		}).Handler(spaFromDisk(s.webDir))
	}

	return s.loggingMiddleware(withNoCache(root))
}
