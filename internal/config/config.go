// Package config loads fittrack server and client settings with viper.
//
// Values come from, in increasing precedence: built-in defaults, a YAML
// config file, and FITTRACK_* environment variables (dots become
// underscores, so oidc.issuer is FITTRACK_OIDC_ISSUER).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"fittrack/internal/domain"
	"fittrack/internal/logging"
	"fittrack/internal/offline"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FITTRACK"

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"
)

// Config keys.
const (
	KeyAddr          = "addr"
	KeyDatabaseURL   = "database_url"
	KeyWebDir        = "web_dir"
	KeyJWTSecret     = "jwt_secret"
	KeyTokenTTL      = "token_ttl"
	KeyForwardAuth   = "forward_auth"
	KeyHeartbeat     = "heartbeat"
	KeyInitialUser   = "initial_user"
	KeyInitialPass   = "initial_password"
	KeyOIDCIssuer    = "oidc.issuer"
	KeyOIDCClientID  = "oidc.client_id"
	KeyOIDCSecret    = "oidc.client_secret"
	KeyOIDCRedirect  = "oidc.redirect_url"
	KeyGoalPushups   = "goals.pushups"
	KeyGoalDistance  = "goals.distance_km"
	KeyGoalWater     = "goals.water_glasses"
	KeyServerURL     = "server_url"
	KeyDataFile      = "data_file"
	KeyStorageQuota  = "storage_quota_bytes"
	KeyProbe         = "probe"
	KeyProbeInterval = "probe_interval"
	KeyBackoffMin    = "backoff_min"
	KeyBackoffMax    = "backoff_max"
	KeyLiveIdle      = "live_idle"
	KeyToken         = "token"
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyLogLevel      = "log.level"
	KeyLogFormat     = "log.format"
	KeyLogFile       = "log.file"
	KeyLogMaxSizeMB  = "log.max_size_mb"
	KeyLogMaxBackups = "log.max_backups"
	KeyLogMaxAgeDays = "log.max_age_days"
)

// Probe kinds.
const (
	ProbePoll = "poll"
	ProbeLive = "live"
)

// defaultClientYAML is written to config.yaml on first run.
const defaultClientYAML = `# fittrack client configuration
# Every key can be overridden with a FITTRACK_ environment variable.

server_url: http://localhost:8080

# Connectivity probe: poll (GET /api/health) or live (websocket /api/live)
probe: poll
probe_interval: 10s

# Local store for the offline snapshot and pending queue.
# data_file: ~/.fittrack/offline.db
storage_quota_bytes: 5242880

log:
  level: warn
`

// OIDC holds single sign-on settings. SSO is disabled when Issuer is empty.
type OIDC struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO is configured.
func (o OIDC) Enabled() bool { return o.Issuer != "" }

// Server is the API server configuration.
type Server struct {
	Addr string
	// DatabaseURL selects postgres; empty runs on the in-memory store.
	DatabaseURL string
	WebDir      string
	// JWTSecret enables bearer tokens for API clients when set.
	JWTSecret       string
	TokenTTL        time.Duration
	ForwardAuth     bool
	Heartbeat       time.Duration
	InitialUser     string
	InitialPassword string
	Goals           domain.Goals
	OIDC            OIDC
	Log             logging.Config
}

// Client is the offline-first CLI configuration.
type Client struct {
	Dir          string
	ServerURL    string
	DataFile     string
	StorageQuota int64
	Probe        string
	// ProbeInterval is the poll period for the poll probe.
	ProbeInterval time.Duration
	// BackoffMin and BackoffMax bound the live probe's reconnect delay.
	BackoffMin time.Duration
	BackoffMax time.Duration
	// LiveIdle is how long the live probe waits for a heartbeat.
	LiveIdle time.Duration
	Token    string
	UserID   string
	Username string
	Log      logging.Config
}

// LoggedIn reports whether credentials are stored.
func (c Client) LoggedIn() bool { return c.Token != "" && c.UserID != "" }

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	return v
}

// NewServerViper returns a viper for server settings. file is optional; when
// set it must exist.
func NewServerViper(file string) (*viper.Viper, error) {
	v := newViper()
	v.SetDefault(KeyAddr, ":8080")
	v.SetDefault(KeyWebDir, "")
	v.SetDefault(KeyTokenTTL, 30*24*time.Hour)
	v.SetDefault(KeyHeartbeat, 10*time.Second)
	def := domain.DefaultGoals()
	v.SetDefault(KeyGoalPushups, def.Pushups)
	v.SetDefault(KeyGoalDistance, def.DistanceKm)
	v.SetDefault(KeyGoalWater, def.WaterGlasses)

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// LoadServer reads and validates the server settings from v.
func LoadServer(v *viper.Viper) (Server, error) {
	s := Server{
		Addr:            v.GetString(KeyAddr),
		DatabaseURL:     v.GetString(KeyDatabaseURL),
		WebDir:          v.GetString(KeyWebDir),
		JWTSecret:       v.GetString(KeyJWTSecret),
		TokenTTL:        v.GetDuration(KeyTokenTTL),
		ForwardAuth:     v.GetBool(KeyForwardAuth),
		Heartbeat:       v.GetDuration(KeyHeartbeat),
		InitialUser:     v.GetString(KeyInitialUser),
		InitialPassword: v.GetString(KeyInitialPass),
		Goals: domain.Goals{
			Pushups:      v.GetInt(KeyGoalPushups),
			DistanceKm:   v.GetFloat64(KeyGoalDistance),
			WaterGlasses: v.GetInt(KeyGoalWater),
		},
		OIDC: OIDC{
			Issuer:       v.GetString(KeyOIDCIssuer),
			ClientID:     v.GetString(KeyOIDCClientID),
			ClientSecret: v.GetString(KeyOIDCSecret),
			RedirectURL:  v.GetString(KeyOIDCRedirect),
		},
		Log: logConfig(v),
	}

	var errs []error
	if s.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	// Live clients drop connections that miss DefaultLiveIdle; allow one lost beat.
	if s.Heartbeat <= 0 || 2*s.Heartbeat > offline.DefaultLiveIdle {
		errs = append(errs, fmt.Errorf("heartbeat must be positive and at most %s", offline.DefaultLiveIdle/2))
	}
	if s.JWTSecret != "" && len(s.JWTSecret) < 16 {
		errs = append(errs, errors.New("jwt_secret must be at least 16 characters"))
	}
	if s.OIDC.Enabled() && (s.OIDC.ClientID == "" || s.OIDC.RedirectURL == "") {
		errs = append(errs, errors.New("oidc.client_id and oidc.redirect_url are required with oidc.issuer"))
	}
	if (s.InitialUser == "") != (s.InitialPassword == "") {
		errs = append(errs, errors.New("initial_user and initial_password must be set together"))
	}
	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return s, errors.Join(errs...)
}

// DefaultClientDir is $HOME/.fittrack, or .fittrack when HOME is unknown.
func DefaultClientDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fittrack"
	}
	return filepath.Join(home, ".fittrack")
}

// OpenClient reads config.yaml from dir, creating the directory and a default
// file on first run. A missing file is not an error.
func OpenClient(dir string) (*viper.Viper, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultFile(dir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := newViper()
	v.SetDefault(KeyServerURL, "http://localhost:8080")
	v.SetDefault(KeyDataFile, filepath.Join(dir, "offline.db"))
	v.SetDefault(KeyStorageQuota, 5<<20)
	v.SetDefault(KeyProbe, ProbePoll)
	v.SetDefault(KeyProbeInterval, 10*time.Second)
	v.SetDefault(KeyBackoffMin, time.Second)
	v.SetDefault(KeyBackoffMax, 30*time.Second)
	v.SetDefault(KeyLiveIdle, offline.DefaultLiveIdle)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFile, filepath.Join(dir, "fittrack.log"))

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

func ensureDefaultFile(dir string) error {
	path := filepath.Join(dir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultClientYAML), 0o600)
}

// LoadClient reads and validates the client settings from v.
func LoadClient(v *viper.Viper, dir string) (Client, error) {
	c := Client{
		Dir:           dir,
		ServerURL:     strings.TrimRight(v.GetString(KeyServerURL), "/"),
		DataFile:      expandHome(v.GetString(KeyDataFile)),
		StorageQuota:  v.GetInt64(KeyStorageQuota),
		Probe:         strings.ToLower(v.GetString(KeyProbe)),
		ProbeInterval: v.GetDuration(KeyProbeInterval),
		BackoffMin:    v.GetDuration(KeyBackoffMin),
		BackoffMax:    v.GetDuration(KeyBackoffMax),
		LiveIdle:      v.GetDuration(KeyLiveIdle),
		Token:         v.GetString(KeyToken),
		UserID:        v.GetString(KeyUserID),
		Username:      v.GetString(KeyUsername),
		Log:           logConfig(v),
	}
	c.Log.File = expandHome(c.Log.File)

	var errs []error
	if c.ServerURL == "" {
		errs = append(errs, errors.New("server_url is required"))
	}
	if c.Probe != ProbePoll && c.Probe != ProbeLive {
		errs = append(errs, fmt.Errorf("probe must be %q or %q, got %q", ProbePoll, ProbeLive, c.Probe))
	}
	if c.ProbeInterval <= 0 {
		errs = append(errs, errors.New("probe_interval must be positive"))
	}
	if c.BackoffMin <= 0 || c.BackoffMax < c.BackoffMin {
		errs = append(errs, errors.New("backoff_min must be positive and not above backoff_max"))
	}
	if c.LiveIdle <= 0 {
		errs = append(errs, errors.New("live_idle must be positive"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return c, errors.Join(errs...)
}

// SaveCredentials stores a login in the client config file.
func SaveCredentials(v *viper.Viper, token, userID, username string) error {
	v.Set(KeyToken, token)
	v.Set(KeyUserID, userID)
	v.Set(KeyUsername, username)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Watch calls fn with the reloaded client settings whenever the config file
// changes. Invalid edits are reported to onErr and otherwise ignored.
func Watch(v *viper.Viper, dir string, fn func(Client), onErr func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		c, err := LoadClient(v, dir)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		fn(c)
	})
	v.WatchConfig()
}

func logConfig(v *viper.Viper) logging.Config {
	return logging.Config{
		Level:      v.GetString(KeyLogLevel),
		Format:     v.GetString(KeyLogFormat),
		File:       v.GetString(KeyLogFile),
		MaxSizeMB:  v.GetInt(KeyLogMaxSizeMB),
		MaxBackups: v.GetInt(KeyLogMaxBackups),
		MaxAgeDays: v.GetInt(KeyLogMaxAgeDays),
	}
}

func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}
