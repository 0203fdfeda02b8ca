// Package cli implements the fittrack command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fittrack/internal/adapter/sqlitekv"
	"fittrack/internal/client"
	"fittrack/internal/config"
	"fittrack/internal/logging"
	"fittrack/internal/offline"
)

// Exit codes.
const (
	ExitSuccess   = 0
	ExitUserError = 1
	ExitSysError  = 2
)

// errNotLoggedIn is returned by commands that need stored credentials.
var errNotLoggedIn = errors.New("not logged in; run 'fittrack login' first")

// IO bundles the streams a command reads and writes.
type IO struct {
	In    io.Reader
	Out   io.Writer
	Err   io.Writer
	Stdin *os.File // nil when In is not a terminal-capable file
}

// runtime is the per-invocation state shared by all commands.
type runtime struct {
	io IO

	configDir string
	jsonOut   bool
	offline   bool

	v       *viper.Viper
	cfg     config.Client
	logger  *slog.Logger
	closers []io.Closer

	// Set lazily by remote() and coordinator().
	api   *client.Client
	store *sqlitekv.Store
	probe offline.Probe
	coord *offline.Coordinator

	now          func() time.Time
	readPassword func(prompt string) (string, error)
}

// Run executes one fittrack invocation. Resources opened by the command are
// released even when it fails.
func Run(ctx context.Context, stdio IO, args []string) error {
	rt := &runtime{io: stdio, now: time.Now}
	rt.readPassword = rt.promptPassword

	root := rt.rootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, rt.close())
}

func (rt *runtime) rootCommand() *cobra.Command {
	stdio := rt.io
	root := &cobra.Command{
		Use:   "fittrack",
		Short: "Offline-first health and fitness tracker",
		Long: `fittrack records health metrics, activities and workouts against a
fittrack server. Metric writes made while the server is unreachable are
queued locally and replayed when it comes back.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.load()
		},
	}
	root.SetIn(stdio.In)
	root.SetOut(stdio.Out)
	root.SetErr(stdio.Err)

	root.PersistentFlags().StringVar(&rt.configDir, "config-dir", "", "configuration directory (default: $HOME/.fittrack)")
	root.PersistentFlags().BoolVar(&rt.jsonOut, "json", false, "output as JSON")
	root.PersistentFlags().BoolVar(&rt.offline, "offline", false, "treat the server as unreachable")

	root.AddCommand(
		rt.loginCmd(),
		rt.logoutCmd(),
		rt.registerCmd(),
		rt.metricCmd(),
		rt.syncCmd(),
		rt.statusCmd(),
		rt.activityCmd(),
		rt.summaryCmd(),
		rt.workoutCmd(),
		rt.profileCmd(),
		rt.shareCmd(),
	)
	return root
}

// Execute runs the CLI with os streams and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	stdio := IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr, Stdin: os.Stdin}
	if err := Run(ctx, stdio, args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if isUserError(err) {
			return ExitUserError
		}
		return ExitSysError
	}
	return ExitSuccess
}

func (rt *runtime) load() error {
	if rt.configDir == "" {
		rt.configDir = config.DefaultClientDir()
	}
	v, err := config.OpenClient(rt.configDir)
	if err != nil {
		return err
	}
	cfg, err := config.LoadClient(v, rt.configDir)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Log, rt.io.Err)
	if err != nil {
		return err
	}
	rt.v, rt.cfg, rt.logger = v, cfg, logger
	rt.closers = append(rt.closers, closer)
	return nil
}

func (rt *runtime) close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i].Close())
	}
	rt.closers = nil
	return errors.Join(errs...)
}

// remote returns the API client, authenticated when credentials are stored.
func (rt *runtime) remote() *client.Client {
	if rt.api == nil {
		rt.api = client.New(rt.cfg.ServerURL,
			client.WithToken(rt.cfg.Token, rt.cfg.UserID),
			client.WithLogger(rt.logger),
		)
	}
	return rt.api
}

// authed returns the API client or errNotLoggedIn.
func (rt *runtime) authed() (*client.Client, error) {
	if !rt.cfg.LoggedIn() {
		return nil, errNotLoggedIn
	}
	return rt.remote(), nil
}

// coordinator opens the local store and wires the offline coordinator. The
// probe starts in the state found by a single health check, or unreachable
// with --offline.
func (rt *runtime) coordinator(ctx context.Context) (*offline.Coordinator, error) {
	if rt.coord != nil {
		return rt.coord, nil
	}
	if !rt.cfg.LoggedIn() {
		return nil, errNotLoggedIn
	}

	store, err := sqlitekv.Open(rt.cfg.DataFile, rt.cfg.StorageQuota)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errLocalStore, err)
	}
	rt.store = store
	rt.closers = append(rt.closers, store)

	if rt.probe == nil {
		if rt.offline {
			rt.probe = offline.NewManualProbe(false)
		} else {
			p := offline.NewPollProbe(rt.cfg.ServerURL, rt.cfg.ProbeInterval, nil, rt.logger)
			p.Check(ctx)
			rt.probe = p
		}
	}

	coord, err := offline.NewCoordinator(offline.Options{
		Remote: rt.remote(),
		Queue:  offline.NewLocalQueue(store, rt.logger),
		Probe:  rt.probe,
		Logger: rt.logger,
		Now:    rt.now,
	})
	if err != nil {
		return nil, err
	}
	rt.coord = coord
	return coord, nil
}
