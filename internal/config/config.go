package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid indicates a configuration that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config defines application configuration.
type Config struct {
	Roadmap   RoadmapConfig   `yaml:"roadmap"`
	Report    ReportConfig    `yaml:"report"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Slack     SlackConfig     `yaml:"slack"`
	Sink      string          `yaml:"sink"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Log       LogConfig       `yaml:"log"`
}

type RoadmapConfig struct {
	ID         string   `yaml:"id"`
	AdminEmail string   `yaml:"admin_email"`
	Teams      []string `yaml:"teams"`
	States     []string `yaml:"states"`
}

type ReportConfig struct {
	Cutoff         Duration `yaml:"cutoff"`
	Concurrency    int      `yaml:"concurrency"`
	HighlightWords int      `yaml:"highlight_words"`
}

type TrackerConfig struct {
	APIURL   string `yaml:"api_url"`
	APIKey   string `yaml:"api_key"`
	PageSize int    `yaml:"page_size"`
}

type OracleConfig struct {
	Provider   string   `yaml:"provider"`
	Model      string   `yaml:"model"`
	APIKey     string   `yaml:"api_key"`
	BaseURL    string   `yaml:"base_url"`
	Timeout    Duration `yaml:"timeout"`
	MaxRetries int      `yaml:"max_retries"`
}

type SlackConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
	APIURL  string `yaml:"api_url"`
}

type CacheConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	DSN    string `yaml:"dsn"`
}

type ServerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

const (
	SinkSlack   = "slack"
	SinkConsole = "console"

	CacheNone     = "none"
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Default returns the configuration used before any file or environment
// overrides are applied.
func Default() Config {
	return Config{
		Roadmap: RoadmapConfig{
			Teams:  []string{"Engineering", "Product", "Design"},
			States: []string{"planned", "started"},
		},
		Report: ReportConfig{
			Cutoff:         Duration(4 * 24 * time.Hour),
			Concurrency:    4,
			HighlightWords: 40,
		},
		Tracker: TrackerConfig{
			APIURL:   "https://api.linear.app/graphql",
			PageSize: 50,
		},
		Oracle: OracleConfig{
			Provider:   "gemini",
			Timeout:    Duration(2 * time.Minute),
			MaxRetries: 3,
		},
		Sink: SinkSlack,
		Cache: CacheConfig{
			Driver: CacheSQLite,
			Path:   "data/pmbot.db",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: TransportStdio,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from defaults, an optional YAML file, a .env file
// in the working directory and PMBOT_* environment variables, in that order.
// path overrides PMBOT_CONFIG_PATH. Variables already set in the environment
// win over .env entries.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("PMBOT_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Roadmap.ID, "PMBOT_ROADMAP_ID")
	setString(&cfg.Roadmap.AdminEmail, "PMBOT_ADMIN_EMAIL")
	if teams := os.Getenv("PMBOT_TEAMS"); teams != "" {
		cfg.Roadmap.Teams = splitList(teams)
	}
	if states := os.Getenv("PMBOT_STATES"); states != "" {
		cfg.Roadmap.States = splitList(states)
	}

	if v := os.Getenv("PMBOT_REPORT_CUTOFF"); v != "" {
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PMBOT_REPORT_CUTOFF: %w", err)
		}
		cfg.Report.Cutoff = Duration(d)
	}
	if err := setInt(&cfg.Report.Concurrency, "PMBOT_REPORT_CONCURRENCY"); err != nil {
		return err
	}
	if err := setInt(&cfg.Report.HighlightWords, "PMBOT_HIGHLIGHT_WORDS"); err != nil {
		return err
	}

	setString(&cfg.Tracker.APIURL, "PMBOT_LINEAR_API_URL")
	setString(&cfg.Tracker.APIKey, "LINEAR_API_KEY")
	setString(&cfg.Tracker.APIKey, "PMBOT_LINEAR_API_KEY")
	if err := setInt(&cfg.Tracker.PageSize, "PMBOT_LINEAR_PAGE_SIZE"); err != nil {
		return err
	}

	setString(&cfg.Oracle.Provider, "PMBOT_ORACLE_PROVIDER")
	setString(&cfg.Oracle.Model, "PMBOT_ORACLE_MODEL")
	setString(&cfg.Oracle.BaseURL, "PMBOT_ORACLE_BASE_URL")
	if cfg.Oracle.APIKey == "" {
		switch strings.ToLower(cfg.Oracle.Provider) {
		case "gemini":
			setString(&cfg.Oracle.APIKey, "GEMINI_API_KEY")
		case "openai":
			setString(&cfg.Oracle.APIKey, "OPENAI_API_KEY")
		}
	}
	setString(&cfg.Oracle.APIKey, "PMBOT_ORACLE_API_KEY")
	if v := os.Getenv("PMBOT_ORACLE_TIMEOUT"); v != "" {
		d, err := ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PMBOT_ORACLE_TIMEOUT: %w", err)
		}
		cfg.Oracle.Timeout = Duration(d)
	}
	if err := setInt(&cfg.Oracle.MaxRetries, "PMBOT_ORACLE_MAX_RETRIES"); err != nil {
		return err
	}

	setString(&cfg.Slack.Token, "SLACK_BOT_TOKEN")
	setString(&cfg.Slack.Token, "PMBOT_SLACK_TOKEN")
	setString(&cfg.Slack.Channel, "PMBOT_SLACK_CHANNEL")
	setString(&cfg.Slack.APIURL, "PMBOT_SLACK_API_URL")
	setString(&cfg.Sink, "PMBOT_SINK")

	setString(&cfg.Cache.Driver, "PMBOT_CACHE_DRIVER")
	setString(&cfg.Cache.Path, "PMBOT_CACHE_PATH")
	setString(&cfg.Cache.DSN, "PMBOT_CACHE_DSN")

	setString(&cfg.Server.Host, "PMBOT_SERVER_HOST")
	if err := setInt(&cfg.Server.Port, "PMBOT_SERVER_PORT"); err != nil {
		return err
	}
	setString(&cfg.Server.AuthToken, "PMBOT_SERVER_AUTH_TOKEN")
	setString(&cfg.Transport.Mode, "PMBOT_TRANSPORT_MODE")
	setString(&cfg.Log.Level, "PMBOT_LOG_LEVEL")
	return nil
}

// Validate checks everything a report or reminder run needs.
func (c Config) Validate() error {
	var errs []error
	if err := c.ValidateCache(); err != nil {
		errs = append(errs, err)
	}
	if c.Tracker.APIKey == "" {
		errs = append(errs, errors.New("tracker.api_key is required"))
	}
	switch strings.ToLower(c.Oracle.Provider) {
	case "gemini", "openai":
	default:
		errs = append(errs, fmt.Errorf("unknown oracle.provider %q", c.Oracle.Provider))
	}
	if c.Oracle.APIKey == "" {
		errs = append(errs, errors.New("oracle.api_key is required"))
	}
	switch c.Sink {
	case SinkSlack:
		if c.Slack.Token == "" {
			errs = append(errs, errors.New("slack.token is required for the slack sink"))
		}
		if c.Slack.Channel == "" {
			errs = append(errs, errors.New("slack.channel is required for the slack sink"))
		}
	case SinkConsole:
	default:
		errs = append(errs, fmt.Errorf("unknown sink %q", c.Sink))
	}
	if c.Report.Cutoff <= 0 {
		errs = append(errs, errors.New("report.cutoff must be positive"))
	}
	if c.Report.Concurrency <= 0 {
		errs = append(errs, errors.New("report.concurrency must be positive"))
	}
	if c.Report.HighlightWords < 0 {
		errs = append(errs, errors.New("report.highlight_words must not be negative"))
	}
	switch c.Transport.Mode {
	case TransportStdio, TransportHTTP:
	default:
		errs = append(errs, fmt.Errorf("unknown transport.mode %q", c.Transport.Mode))
	}
	return wrap(errs)
}

// ValidateCache checks what reading a cached report needs.
func (c Config) ValidateCache() error {
	var errs []error
	if c.Roadmap.ID == "" {
		errs = append(errs, errors.New("roadmap.id is required"))
	}
	switch c.Cache.Driver {
	case CacheNone:
	case CacheSQLite:
		if c.Cache.Path == "" {
			errs = append(errs, errors.New("cache.path is required for the sqlite cache"))
		}
	case CachePostgres:
		if c.Cache.DSN == "" {
			errs = append(errs, errors.New("cache.dsn is required for the postgres cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.driver %q", c.Cache.Driver))
	}
	return wrap(errs)
}

func wrap(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Duration is a time.Duration that reads the same forms as ParseDuration
// from YAML, so "4d" works in the file as well as the environment.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// ParseDuration accepts Go durations plus a whole-day form such as "4d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
