package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fittrack/internal/config"
	"fittrack/internal/offline"
)

func (rt *runtime) syncCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay queued metrics to the server",
		Long: `Replay queued metrics to the server in the order they were recorded and
refresh the local snapshot. With --watch, keep running and sync every time
the server becomes reachable again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return rt.watch(cmd.Context())
			}
			coord, err := rt.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			if coord.Status(rt.cfg.UserID) == offline.StatusOffline {
				n := len(coord.Pending(rt.cfg.UserID))
				return rt.emit(offline.DrainReport{Remaining: n}, func() error {
					rt.printf("%s, %d pending\n", rt.indicator(offline.StatusOffline), n)
					return nil
				})
			}
			rep := coord.Drain(cmd.Context(), rt.cfg.UserID)
			return rt.emit(rep, func() error {
				rt.printf("Synced %d of %d, %d failed, %d pending\n", rep.Synced, rep.Attempted, rep.Failed, rep.Remaining)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and sync on every reconnect")
	return cmd
}

// watch runs the configured probe until interrupted and drains on each
// reconnect.
func (rt *runtime) watch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var run func(context.Context)
	if rt.probe == nil && !rt.offline {
		switch rt.cfg.Probe {
		case config.ProbeLive:
			p := offline.NewLiveProbe(rt.cfg.ServerURL, rt.cfg.BackoffMin, rt.cfg.BackoffMax, rt.logger).
				WithIdleTimeout(rt.cfg.LiveIdle)
			rt.probe, run = p, p.Run
		default:
			p := offline.NewPollProbe(rt.cfg.ServerURL, rt.cfg.ProbeInterval, nil, rt.logger)
			rt.probe, run = p, p.Run
		}
	}

	coord, err := rt.coordinator(ctx)
	if err != nil {
		return err
	}

	config.Watch(rt.v, rt.configDir, func(c config.Client) {
		if c.UserID != rt.cfg.UserID || c.ServerURL != rt.cfg.ServerURL {
			rt.logger.Warn("config changed; restart 'fittrack sync --watch' to apply", "server_url", c.ServerURL)
		}
	}, func(err error) {
		rt.logger.Warn("ignoring invalid config change", "error", err)
	})

	unwatch := coord.Watch(ctx, rt.cfg.UserID)
	defer unwatch()

	rt.printf("Watching %s for %s (Ctrl-C to stop)\n", rt.cfg.ServerURL, rt.cfg.Username)
	if run != nil {
		run(ctx)
	} else {
		<-ctx.Done()
	}
	rt.printf("Stopped, %d pending\n", len(coord.Pending(rt.cfg.UserID)))
	return nil
}

func (rt *runtime) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity and pending writes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := rt.coordinator(cmd.Context())
			if err != nil {
				return err
			}
			st := coord.Status(rt.cfg.UserID)
			pending := len(coord.Pending(rt.cfg.UserID))
			out := map[string]any{
				"status":  st.String(),
				"server":  rt.cfg.ServerURL,
				"user":    rt.cfg.Username,
				"pending": pending,
			}
			return rt.emit(out, func() error {
				rt.printf("%s  %s\n", rt.indicator(st), rt.cfg.ServerURL)
				rt.printf("user:    %s\n", rt.cfg.Username)
				rt.printf("pending: %d\n", pending)
				return nil
			})
		},
	}
}
