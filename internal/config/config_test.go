package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so a developer .env is not
// picked up, and clears variables Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		"PMBOT_CONFIG_PATH", "PMBOT_ROADMAP_ID", "PMBOT_ADMIN_EMAIL", "PMBOT_TEAMS", "PMBOT_STATES",
		"PMBOT_REPORT_CUTOFF", "PMBOT_REPORT_CONCURRENCY", "PMBOT_HIGHLIGHT_WORDS",
		"LINEAR_API_KEY", "PMBOT_LINEAR_API_KEY", "PMBOT_LINEAR_API_URL", "PMBOT_LINEAR_PAGE_SIZE",
		"PMBOT_ORACLE_PROVIDER", "PMBOT_ORACLE_MODEL", "PMBOT_ORACLE_API_KEY", "PMBOT_ORACLE_BASE_URL",
		"PMBOT_ORACLE_TIMEOUT", "PMBOT_ORACLE_MAX_RETRIES", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"SLACK_BOT_TOKEN", "PMBOT_SLACK_TOKEN", "PMBOT_SLACK_CHANNEL", "PMBOT_SLACK_API_URL", "PMBOT_SINK",
		"PMBOT_CACHE_DRIVER", "PMBOT_CACHE_PATH", "PMBOT_CACHE_DSN",
		"PMBOT_SERVER_HOST", "PMBOT_SERVER_PORT", "PMBOT_SERVER_AUTH_TOKEN", "PMBOT_TRANSPORT_MODE", "PMBOT_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, Duration(96*time.Hour), cfg.Report.Cutoff)
	require.Equal(t, 4, cfg.Report.Concurrency)
	require.Equal(t, []string{"Engineering", "Product", "Design"}, cfg.Roadmap.Teams)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "pmbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
roadmap:
  id: roadmap-file
  admin_email: admin@example.com
  teams: [Platform]
report:
  cutoff: 48h
  concurrency: 8
oracle:
  provider: openai
  model: gpt-4o-mini
sink: console
cache:
  driver: none
`), 0o644))

	t.Setenv("PMBOT_CONFIG_PATH", path)
	t.Setenv("PMBOT_ROADMAP_ID", "roadmap-env")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LINEAR_API_KEY", "lin-test")
	t.Setenv("PMBOT_REPORT_CONCURRENCY", "2")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "roadmap-env", cfg.Roadmap.ID)
	require.Equal(t, "admin@example.com", cfg.Roadmap.AdminEmail)
	require.Equal(t, []string{"Platform"}, cfg.Roadmap.Teams)
	require.Equal(t, Duration(48*time.Hour), cfg.Report.Cutoff)
	require.Equal(t, 2, cfg.Report.Concurrency)
	require.Equal(t, "openai", cfg.Oracle.Provider)
	require.Equal(t, "sk-test", cfg.Oracle.APIKey)
	require.Equal(t, "lin-test", cfg.Tracker.APIKey)
	require.Equal(t, SinkConsole, cfg.Sink)
	require.Equal(t, CacheNone, cfg.Cache.Driver)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitPathWins(t *testing.T) {
	dir := isolate(t)
	explicit := filepath.Join(dir, "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("roadmap:\n  id: explicit\n"), 0o644))
	t.Setenv("PMBOT_CONFIG_PATH", filepath.Join(dir, "missing.yaml"))

	cfg, err := Load(explicit)
	require.NoError(t, err)
	require.Equal(t, "explicit", cfg.Roadmap.ID)
}

func TestLoad_DayDurationsInFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "pmbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("report:\n  cutoff: 4d\noracle:\n  timeout: 90s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Duration(96*time.Hour), cfg.Report.Cutoff)
	require.Equal(t, Duration(90*time.Second), cfg.Oracle.Timeout)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("PMBOT_ROADMAP_ID=from-dotenv\nPMBOT_SLACK_CHANNEL=C-DOTENV\n"), 0o644))
	t.Setenv("PMBOT_ROADMAP_ID", "from-env")
	// An empty but present variable still blocks the .env entry.
	require.NoError(t, os.Unsetenv("PMBOT_SLACK_CHANNEL"))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Roadmap.ID)
	require.Equal(t, "C-DOTENV", cfg.Slack.Channel)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		dir := isolate(t)
		_, err := Load(filepath.Join(dir, "nope.yaml"))
		require.ErrorContains(t, err, "read config file")
	})
	t.Run("bad yaml", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("roadmap: [\n"), 0o644))
		_, err := Load(path)
		require.ErrorContains(t, err, "parse config file")
	})
	t.Run("bad yaml duration", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("report:\n  cutoff: soon\n"), 0o644))
		_, err := Load(path)
		require.ErrorContains(t, err, "parse config file")
	})
	t.Run("bad int", func(t *testing.T) {
		isolate(t)
		t.Setenv("PMBOT_REPORT_CONCURRENCY", "many")
		_, err := Load("")
		require.ErrorContains(t, err, "PMBOT_REPORT_CONCURRENCY")
	})
	t.Run("bad cutoff", func(t *testing.T) {
		isolate(t)
		t.Setenv("PMBOT_REPORT_CUTOFF", "soon")
		_, err := Load("")
		require.ErrorContains(t, err, "PMBOT_REPORT_CUTOFF")
	})
}

func valid() Config {
	cfg := Default()
	cfg.Roadmap.ID = "roadmap-1"
	cfg.Tracker.APIKey = "lin"
	cfg.Oracle.APIKey = "key"
	cfg.Slack.Token = "xoxb"
	cfg.Slack.Channel = "C1"
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"roadmap", func(c *Config) { c.Roadmap.ID = "" }, "roadmap.id"},
		{"tracker key", func(c *Config) { c.Tracker.APIKey = "" }, "tracker.api_key"},
		{"oracle key", func(c *Config) { c.Oracle.APIKey = "" }, "oracle.api_key"},
		{"provider", func(c *Config) { c.Oracle.Provider = "claude" }, "oracle.provider"},
		{"slack token", func(c *Config) { c.Slack.Token = "" }, "slack.token"},
		{"slack channel", func(c *Config) { c.Slack.Channel = "" }, "slack.channel"},
		{"sink", func(c *Config) { c.Sink = "email" }, "unknown sink"},
		{"cutoff", func(c *Config) { c.Report.Cutoff = 0 }, "report.cutoff"},
		{"concurrency", func(c *Config) { c.Report.Concurrency = -1 }, "report.concurrency"},
		{"cache driver", func(c *Config) { c.Cache.Driver = "redis" }, "cache.driver"},
		{"postgres dsn", func(c *Config) { c.Cache.Driver = CachePostgres }, "cache.dsn"},
		{"transport", func(c *Config) { c.Transport.Mode = "grpc" }, "transport.mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrInvalid)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestValidate_ConsoleSinkNeedsNoSlack(t *testing.T) {
	cfg := valid()
	cfg.Sink = SinkConsole
	cfg.Slack = SlackConfig{}
	require.NoError(t, cfg.Validate())
}

func TestValidateCache_IgnoresCredentials(t *testing.T) {
	cfg := Default()
	cfg.Roadmap.ID = "roadmap-1"
	require.NoError(t, cfg.ValidateCache())
	require.Error(t, cfg.Validate())
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("4d")
	require.NoError(t, err)
	require.Equal(t, 96*time.Hour, d)

	d, err = ParseDuration("90m")
	require.NoError(t, err)
	require.Equal(t, 90*time.Minute, d)

	_, err = ParseDuration("xd")
	require.Error(t, err)
}
