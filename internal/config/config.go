package config

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/vuey/internal/errors"
	"github.com/vango-dev/vuey/pkg/store"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vuey.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "VUEY_"

	// DefaultInspectAddr is the default inspector listen address.
	DefaultInspectAddr = "localhost:7070"

	// DefaultTimeout bounds each call to a network backend.
	DefaultTimeout = "5s"

	// DefaultTable is the SQL table records are kept in.
	DefaultTable = "vuey_records"
)

// Backend kinds.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindS3     = "s3"
)

// Config represents the complete vuey.json configuration.
type Config struct {
	// Session is the backend for session-scoped stores.
	Session BackendConfig `json:"session" envPrefix:"SESSION_"`

	// Durable is the backend for durable stores.
	Durable BackendConfig `json:"durable" envPrefix:"DURABLE_"`

	Inspect InspectConfig `json:"inspect" envPrefix:"INSPECT_"`
	Log     LogConfig     `json:"log" envPrefix:"LOG_"`

	// Stores declares stores the inspector serves even before they have a
	// persisted record.
	Stores []StoreConfig `json:"stores,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// BackendConfig selects and configures one persistence backend.
type BackendConfig struct {
	// Kind is one of memory, file, sqlite or s3.
	Kind string `json:"kind,omitempty" env:"KIND"`

	// Dir is the record directory for the file kind.
	Dir string `json:"dir,omitempty" env:"DIR"`

	// DSN is the database source name for the sqlite kind.
	DSN string `json:"dsn,omitempty" env:"DSN"`

	// Table is the record table for the sqlite kind.
	Table string `json:"table,omitempty" env:"TABLE"`

	Bucket   string `json:"bucket,omitempty" env:"BUCKET"`
	Prefix   string `json:"prefix,omitempty" env:"PREFIX"`
	Region   string `json:"region,omitempty" env:"REGION"`
	Endpoint string `json:"endpoint,omitempty" env:"ENDPOINT"`

	// Timeout bounds each backend call, e.g. "5s".
	Timeout string `json:"timeout,omitempty" env:"TIMEOUT"`
}

// InspectConfig configures the inspector server started by "vuey serve".
type InspectConfig struct {
	Addr    string `json:"addr,omitempty" env:"ADDR"`
	Metrics bool   `json:"metrics,omitempty" env:"METRICS"`
	Tracing bool   `json:"tracing,omitempty" env:"TRACING"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" env:"LEVEL"`

	// Format is text or json.
	Format string `json:"format,omitempty" env:"FORMAT"`
}

// StoreConfig declares one store.
type StoreConfig struct {
	Name     string          `json:"name"`
	Strategy string          `json:"strategy,omitempty"`
	Initial  json.RawMessage `json:"initial,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads vuey.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// Find loads the nearest vuey.json in dir or one of its parents.
func Find(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.New("V041").Wrap(err)
	}
	for d := abs; ; {
		path := filepath.Join(d, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
		parent := filepath.Dir(d)
		if parent == d {
			break
		}
		d = parent
	}
	return nil, errors.New("V041").
		WithDetail("No vuey.json found in " + abs + " or its parents").
		WithSuggestion("Create vuey.json or pass --config")
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("V041").
				WithDetail("No vuey.json found in " + filepath.Dir(path)).
				WithSuggestion("Create vuey.json or pass --config")
		}
		return nil, errors.New("V040").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		verr := errors.New("V040").
			WithDetail("Failed to parse vuey.json: " + err.Error()).
			WithSuggestion("Check that vuey.json is valid JSON")
		var syn *json.SyntaxError
		var typ *json.UnmarshalTypeError
		switch {
		case stderrors.As(err, &syn):
			verr.WithOffset(path, data, syn.Offset)
		case stderrors.As(err, &typ):
			verr.WithOffset(path, data, typ.Offset)
		}
		return nil, verr
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// ApplyEnv overrides fields from VUEY_ variables. A nil environ reads the
// process environment.
func (c *Config) ApplyEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return errors.New("V040").
			WithDetail("Invalid environment override: " + err.Error()).
			Wrap(err)
	}
	c.applyDefaults()
	return nil
}

// Save writes the configuration back to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("V040").Wrap(err)
	}

	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("V040").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// ResolvePath resolves p against the config directory.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

func (c *Config) applyDefaults() {
	c.Session.applyDefaults()
	c.Durable.applyDefaults()

	if c.Inspect.Addr == "" {
		c.Inspect.Addr = DefaultInspectAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (b *BackendConfig) applyDefaults() {
	if b.Kind == "" {
		b.Kind = KindMemory
	}
	b.Kind = strings.ToLower(b.Kind)
	if b.Kind == KindSQLite && b.Table == "" {
		b.Table = DefaultTable
	}
	if b.Timeout == "" {
		b.Timeout = DefaultTimeout
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Session.validate("session"); err != nil {
		return err
	}
	if err := c.Durable.validate("durable"); err != nil {
		return err
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("V040").
			WithDetail("log.format must be \"text\" or \"json\", got " + strconv.Quote(c.Log.Format))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return errors.New("V040").WithDetail(err.Error())
	}

	seen := make(map[string]bool, len(c.Stores))
	for _, s := range c.Stores {
		if s.Name == "" {
			return errors.New("V040").WithDetail("stores: every store needs a name")
		}
		if seen[s.Name] {
			return errors.New("V001").WithDetail("stores: " + strconv.Quote(s.Name) + " is declared twice")
		}
		seen[s.Name] = true
		if _, err := store.ParseSaveStrategy(s.Strategy); err != nil {
			return errors.New("V040").WithDetail(err.Error())
		}
		if len(s.Initial) > 0 && !json.Valid(s.Initial) {
			return errors.New("V009").WithDetail("stores: initial value of " + strconv.Quote(s.Name) + " is not valid JSON")
		}
	}
	return nil
}

func (b *BackendConfig) validate(section string) error {
	missing := func(field string) error {
		return errors.New("V042").
			WithDetail(section + ": kind " + strconv.Quote(b.Kind) + " requires " + strconv.Quote(field))
	}
	switch b.Kind {
	case KindMemory:
	case KindFile:
		if b.Dir == "" {
			return missing("dir")
		}
	case KindSQLite:
		if b.DSN == "" {
			return missing("dsn")
		}
	case KindS3:
		if b.Bucket == "" {
			return missing("bucket")
		}
		if b.Region == "" {
			return missing("region")
		}
	default:
		return errors.New("V042").
			WithDetail(section + ": unknown kind " + strconv.Quote(b.Kind)).
			WithSuggestion("Use one of memory, file, sqlite, s3")
	}
	if _, err := b.TimeoutDuration(); err != nil {
		return errors.New("V042").WithDetail(section + ": " + err.Error())
	}
	return nil
}

// TimeoutDuration parses Timeout.
func (b BackendConfig) TimeoutDuration() (time.Duration, error) {
	if b.Timeout == "" {
		return time.ParseDuration(DefaultTimeout)
	}
	return time.ParseDuration(b.Timeout)
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}

// Handler builds the slog handler the config describes.
func (l LogConfig) Handler(w io.Writer) slog.Handler {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
