package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vuey/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Durable.Kind != KindMemory || cfg.Session.Kind != KindMemory {
		t.Errorf("default kinds = %q, %q; want memory", cfg.Session.Kind, cfg.Durable.Kind)
	}
	if cfg.Inspect.Addr != DefaultInspectAddr {
		t.Errorf("Inspect.Addr = %q, want %q", cfg.Inspect.Addr, DefaultInspectAddr)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `{
  "durable": {"kind": "SQLite", "dsn": "file:vuey.db"},
  "session": {"kind": "file", "dir": "sessions"},
  "inspect": {"addr": ":9000", "metrics": true},
  "stores": [{"name": "cart", "strategy": "durable", "initial": {"items": []}}]
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Durable.Kind != KindSQLite || cfg.Durable.Table != DefaultTable {
		t.Errorf("Durable = %+v", cfg.Durable)
	}
	if cfg.Session.Timeout != DefaultTimeout {
		t.Errorf("Session.Timeout = %q", cfg.Session.Timeout)
	}
	if !cfg.Inspect.Metrics || cfg.Inspect.Addr != ":9000" {
		t.Errorf("Inspect = %+v", cfg.Inspect)
	}
	if len(cfg.Stores) != 1 || string(cfg.Stores[0].Initial) != `{"items": []}` {
		t.Errorf("Stores = %+v", cfg.Stores)
	}
	if cfg.Path() != path || cfg.Dir() != dir {
		t.Errorf("Path() = %q, Dir() = %q", cfg.Path(), cfg.Dir())
	}
	if got := cfg.ResolvePath(cfg.Session.Dir); got != filepath.Join(dir, "sessions") {
		t.Errorf("ResolvePath = %q", got)
	}
	if got := cfg.ResolvePath("/abs"); got != "/abs" {
		t.Errorf("ResolvePath(/abs) = %q", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	var ve *errors.VuError
	if !stderrors.As(err, &ve) || ve.Code != "V041" {
		t.Errorf("error = %v, want V041", err)
	}
}

func TestLoadFile_SyntaxErrorLocation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte("{\n  \"log\": {\n    \"level\": ,\n  }\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	var ve *errors.VuError
	if !stderrors.As(err, &ve) || ve.Code != "V040" {
		t.Fatalf("error = %v, want V040", err)
	}
	if ve.Location == nil || ve.Location.Line != 3 {
		t.Errorf("Location = %+v, want line 3", ve.Location)
	}
}

func TestLoadFile_TypeError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte("{\n  \"inspect\": {\"addr\": 7070}\n}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(path)
	var ve *errors.VuError
	if !stderrors.As(err, &ve) || ve.Location == nil || ve.Location.Line != 2 {
		t.Errorf("error = %v, want V040 at line 2", err)
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := New().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	cfg, err := Find(nested)
	if err != nil {
		t.Fatalf("Find() error: %v", err)
	}
	if cfg.Dir() != root {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), root)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.Durable = BackendConfig{Kind: KindFile, Dir: "records"}
	if err := cfg.SaveTo(filepath.Join(dir, ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	cfg.Log.Level = "debug"
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Durable.Kind != KindFile || loaded.Durable.Dir != "records" || loaded.Log.Level != "debug" {
		t.Errorf("loaded = %+v", loaded)
	}

	if err := New().Save(); err == nil {
		t.Error("Save() without a path succeeded")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := New()
	cfg.Durable.Dir = "keep"
	err := cfg.ApplyEnv(map[string]string{
		"VUEY_DURABLE_KIND":    "s3",
		"VUEY_DURABLE_BUCKET":  "state",
		"VUEY_DURABLE_REGION":  "eu-west-1",
		"VUEY_INSPECT_METRICS": "true",
		"VUEY_LOG_FORMAT":      "json",
		"UNRELATED":            "x",
	})
	if err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}
	if cfg.Durable.Kind != KindS3 || cfg.Durable.Bucket != "state" || cfg.Durable.Region != "eu-west-1" {
		t.Errorf("Durable = %+v", cfg.Durable)
	}
	if cfg.Durable.Dir != "keep" {
		t.Errorf("unset variable cleared Dir: %q", cfg.Durable.Dir)
	}
	if !cfg.Inspect.Metrics || cfg.Log.Format != "json" {
		t.Errorf("Inspect = %+v, Log = %+v", cfg.Inspect, cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}

	if err := New().ApplyEnv(map[string]string{"VUEY_INSPECT_METRICS": "maybe"}); err == nil {
		t.Error("ApplyEnv accepted a bad bool")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		code   string
	}{
		{"file without dir", func(c *Config) { c.Durable.Kind = KindFile }, "V042"},
		{"sqlite without dsn", func(c *Config) { c.Session.Kind = KindSQLite }, "V042"},
		{"s3 without bucket", func(c *Config) { c.Durable = BackendConfig{Kind: KindS3, Region: "x", Timeout: "1s"} }, "V042"},
		{"s3 without region", func(c *Config) { c.Durable = BackendConfig{Kind: KindS3, Bucket: "b", Timeout: "1s"} }, "V042"},
		{"unknown kind", func(c *Config) { c.Durable.Kind = "redis" }, "V042"},
		{"bad timeout", func(c *Config) { c.Durable.Timeout = "soon" }, "V042"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "V040"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "V040"},
		{"unnamed store", func(c *Config) { c.Stores = []StoreConfig{{}} }, "V040"},
		{"duplicate store", func(c *Config) { c.Stores = []StoreConfig{{Name: "a"}, {Name: "a"}} }, "V001"},
		{"bad strategy", func(c *Config) { c.Stores = []StoreConfig{{Name: "a", Strategy: "cloud"}} }, "V040"},
		{"bad initial", func(c *Config) { c.Stores = []StoreConfig{{Name: "a", Initial: []byte("{")}} }, "V009"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			var ve *errors.VuError
			if !stderrors.As(err, &ve) || ve.Code != tt.code {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBackendTimeout(t *testing.T) {
	d, err := BackendConfig{Timeout: "250ms"}.TimeoutDuration()
	if err != nil || d != 250*time.Millisecond {
		t.Errorf("TimeoutDuration() = %v, %v", d, err)
	}
	if d, _ := (BackendConfig{}).TimeoutDuration(); d != 5*time.Second {
		t.Errorf("default timeout = %v", d)
	}
}

func TestLogHandler(t *testing.T) {
	var b strings.Builder
	h := LogConfig{Level: "warn", Format: "json"}.Handler(&b)
	logger := slog.New(h)
	logger.Info("hidden")
	logger.Warn("shown", "store", "cart")

	out := b.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"store":"cart"`) {
		t.Errorf("json output = %s", out)
	}
}
