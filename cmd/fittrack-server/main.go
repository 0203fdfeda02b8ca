package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	adapthttp "fittrack/internal/adapter/http"
	"fittrack/internal/adapter/memory"
	"fittrack/internal/adapter/postgres"
	"fittrack/internal/app"
	"fittrack/internal/auth"
	"fittrack/internal/config"
	"fittrack/internal/domain"
	"fittrack/internal/logging"
)

// repos is the storage backing the services.
type repos struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	metrics    domain.MetricRepository
	activities domain.ActivityRepository
	workouts   domain.WorkoutRepository
	profiles   domain.ProfileRepository
	shares     domain.ShareRepository
	close      func() error
}

func main() {
	var configFile string
	root := &cobra.Command{
		Use:           "fittrack-server",
		Short:         "Serve the fittrack API",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configFile)
		},
	}
	root.Flags().StringVar(&configFile, "config", "", "YAML config file (settings can also come from FITTRACK_* variables)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string) error {
	v, err := config.NewServerViper(configFile)
	if err != nil {
		return err
	}
	cfg, err := config.LoadServer(v)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close() //nolint:errcheck
	slog.SetDefault(logger)

	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.close() //nolint:errcheck

	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			return err
		}
		logger.Warn("jwt_secret not set; API tokens will not survive a restart")
	}

	svc := adapthttp.Services{
		Auth:       app.NewAuthService(store.users, store.sessions, auth.NewTokenIssuer(secret, cfg.TokenTTL)),
		Metrics:    app.NewMetricService(store.metrics),
		Activities: app.NewActivityService(store.activities),
		Summary:    app.NewSummaryService(store.activities, cfg.Goals),
		Workouts:   app.NewWorkoutService(store.workouts),
		Profiles:   app.NewProfileService(store.profiles, store.users, store.activities, store.workouts),
		Shares:     app.NewShareService(store.shares, store.metrics, store.profiles),
	}

	if err := svc.Workouts.SeedDefaultPlan(ctx); err != nil {
		return fmt.Errorf("seed workouts: %w", err)
	}
	if cfg.InitialUser != "" {
		if err := svc.Auth.CreateInitialUser(ctx, cfg.InitialUser, cfg.InitialPassword); err != nil {
			logger.Debug("initial user not created", "error", err)
		} else {
			logger.Info("created initial user", "username", cfg.InitialUser)
		}
	}

	srv := adapthttp.New(svc, logger).
		WithWebDir(cfg.WebDir).
		WithForwardAuth(cfg.ForwardAuth).
		WithHeartbeat(cfg.Heartbeat)
	if cfg.OIDC.Enabled() {
		oc, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
		if err != nil {
			return fmt.Errorf("oidc: %w", err)
		}
		srv.WithOIDC(oc)
	}

	go expireSessions(ctx, store.sessions, logger)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func openStore(cfg config.Server, logger *slog.Logger) (*repos, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("database_url not set; using in-memory storage")
		db := memory.New()
		return &repos{
			users: db, sessions: db.NewSessionRepo(), metrics: db, activities: db,
			workouts: db, profiles: db, shares: db,
			close: func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return &repos{
		users: db, sessions: postgres.NewSessionRepo(db), metrics: db, activities: db,
		workouts: db, profiles: db, shares: db,
		close: db.Close,
	}, nil
}

func expireSessions(ctx context.Context, sessions domain.SessionRepository, logger *slog.Logger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := sessions.DeleteExpired(ctx); err != nil {
				logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
