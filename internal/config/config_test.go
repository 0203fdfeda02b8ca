package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/offline"
)

func TestOpenClient_CreatesDefaultFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")

	v, err := OpenClient(dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	c, err := LoadClient(v, dir)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.ServerURL)
	assert.Equal(t, ProbePoll, c.Probe)
	assert.Equal(t, 10*time.Second, c.ProbeInterval)
	assert.Equal(t, filepath.Join(dir, "offline.db"), c.DataFile)
	assert.EqualValues(t, 5<<20, c.StorageQuota)
	assert.Equal(t, "warn", c.Log.Level)
	assert.False(t, c.LoggedIn())
}

func TestOpenClient_KeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "server_url: https://fit.example.com/\nprobe: live\nbackoff_min: 2s\nbackoff_max: 1m\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	v, err := OpenClient(dir)
	require.NoError(t, err)
	c, err := LoadClient(v, dir)
	require.NoError(t, err)
	assert.Equal(t, "https://fit.example.com", c.ServerURL)
	assert.Equal(t, ProbeLive, c.Probe)
	assert.Equal(t, 2*time.Second, c.BackoffMin)
	assert.Equal(t, time.Minute, c.BackoffMax)
}

func TestLoadClient_EnvOverridesAndValidation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FITTRACK_PROBE", "carrier-pigeon")
	t.Setenv("FITTRACK_LOG_LEVEL", "debug")

	v, err := OpenClient(dir)
	require.NoError(t, err)
	c, err := LoadClient(v, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probe must be")
	assert.Equal(t, "debug", c.Log.Level)
}

func TestSaveCredentials(t *testing.T) {
	dir := t.TempDir()
	v, err := OpenClient(dir)
	require.NoError(t, err)
	require.NoError(t, SaveCredentials(v, "tok", "u1", "ann"))

	reopened, err := OpenClient(dir)
	require.NoError(t, err)
	c, err := LoadClient(reopened, dir)
	require.NoError(t, err)
	assert.True(t, c.LoggedIn())
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, "ann", c.Username)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	v, err := OpenClient(dir)
	require.NoError(t, err)

	var got atomic.Value
	Watch(v, dir, func(c Client) { got.Store(c.ServerURL) }, nil)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server_url: http://other:9000\n"), 0o600))
	assert.Eventually(t, func() bool {
		s, _ := got.Load().(string)
		return s == "http://other:9000"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestLoadServer(t *testing.T) {
	t.Setenv("FITTRACK_DATABASE_URL", "postgres://localhost/fit")
	t.Setenv("FITTRACK_OIDC_ISSUER", "https://id.example.com")
	t.Setenv("FITTRACK_OIDC_CLIENT_ID", "fittrack")
	t.Setenv("FITTRACK_OIDC_REDIRECT_URL", "https://fit.example.com/api/auth/sso/callback")
	t.Setenv("FITTRACK_GOALS_PUSHUPS", "80")

	v, err := NewServerViper("")
	require.NoError(t, err)
	s, err := LoadServer(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", s.Addr)
	assert.Equal(t, "postgres://localhost/fit", s.DatabaseURL)
	assert.True(t, s.OIDC.Enabled())
	assert.Equal(t, 80, s.Goals.Pushups)
	assert.Equal(t, 8, s.Goals.WaterGlasses)
	assert.Equal(t, 10*time.Second, s.Heartbeat)
}

func TestLoadServer_Invalid(t *testing.T) {
	file := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(file, []byte("jwt_secret: short\ninitial_user: admin\noidc:\n  issuer: https://id\n"), 0o600))

	v, err := NewServerViper(file)
	require.NoError(t, err)
	_, err = LoadServer(v)
	require.Error(t, err)
	for _, want := range []string{"jwt_secret", "oidc.client_id", "initial_user"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadServer_HeartbeatMustFitLiveIdle(t *testing.T) {
	for _, hb := range []string{"0s", "16s", "45s"} {
		t.Run(hb, func(t *testing.T) {
			t.Setenv("FITTRACK_HEARTBEAT", hb)
			v, err := NewServerViper("")
			require.NoError(t, err)
			_, err = LoadServer(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "heartbeat")
		})
	}

	t.Setenv("FITTRACK_HEARTBEAT", "15s")
	v, err := NewServerViper("")
	require.NoError(t, err)
	s, err := LoadServer(v)
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, s.Heartbeat)
}

func TestLoadClient_LiveIdle(t *testing.T) {
	dir := t.TempDir()
	v, err := OpenClient(dir)
	require.NoError(t, err)
	c, err := LoadClient(v, dir)
	require.NoError(t, err)
	assert.Equal(t, offline.DefaultLiveIdle, c.LiveIdle)

	t.Setenv("FITTRACK_LIVE_IDLE", "-1s")
	_, err = LoadClient(v, dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "live_idle")
}

func TestNewServerViper_MissingFile(t *testing.T) {
	_, err := NewServerViper(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
