package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/layout"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Layout.RowThreshold != 140 || cfg.Layout.CompactRowThreshold != 95 {
		t.Errorf("row thresholds = %v/%v", cfg.Layout.RowThreshold, cfg.Layout.CompactRowThreshold)
	}
	if cfg.Session.Debounce != 500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Session.Debounce)
	}
}

func TestDecode(t *testing.T) {
	in := `
dataset = "/tmp/data.yaml"

[viewport]
width = 1440.0

[layout]
compact_row_threshold = 80.0

[session]
backend = "redis"
redis_url = "redis://localhost:6379/1"
debounce = "250ms"
`
	cfg, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Dataset != "/tmp/data.yaml" || cfg.Viewport.Width != 1440 {
		t.Errorf("fields not decoded: %+v", cfg)
	}
	if cfg.Viewport.Height != 700 {
		t.Errorf("unset height should keep default, got %v", cfg.Viewport.Height)
	}
	if cfg.Layout.CompactRowThreshold != 80 || cfg.Layout.RowThreshold != 140 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Session.Debounce != 250*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Session.Debounce)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"syntax", "viewport = ["},
		{"unknown key", "colour = \"red\""},
		{"bad theme", "[render]\ntheme = \"sepia\""},
		{"bad backend", "[session]\nbackend = \"etcd\""},
		{"redis without url", "[session]\nbackend = \"redis\""},
		{"mongo without uri", "[session]\nbackend = \"mongo\""},
		{"negative width", "[viewport]\nwidth = -1.0"},
		{"bad rasterizer", "[render]\nrasterizer = \"gdi\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Decode(%q) = %v, want INVALID_CONFIG", tt.in, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load without file: %v", err)
	}
	if cfg != Default() {
		t.Error("missing default file should yield Default()")
	}

	if _, err := Load(filepath.Join(dir, "nope.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing explicit) = %v", err)
	}

	path, _ := Path()
	if path != filepath.Join(dir, "deeptime", "config.toml") {
		t.Errorf("Path() = %q", path)
	}
	os.MkdirAll(filepath.Dir(path), 0o755)
	os.WriteFile(path, []byte("[render]\ntheme = \"light\"\n"), 0o644)
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Render.Theme != "light" {
		t.Errorf("theme = %q", cfg.Render.Theme)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Session.TTL = time.Hour
	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v\n%s", err, buf.String())
	}
	if got != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestLayoutEngine(t *testing.T) {
	cfg := Default()
	cfg.Layout.CompactRowThreshold = 70
	m, err := cfg.LayoutEngine().Compute(400, 700, 3)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if m.Class != layout.Compact || m.RowThreshold != 70 {
		t.Errorf("metrics class=%v threshold=%v", m.Class, m.RowThreshold)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvSessionBackend: "redis",
		EnvRedisURL:       "redis://cache:6379/1",
		EnvDebounce:       "250ms",
		EnvNoCache:        "true",
		EnvAddr:           ":9090",
	}
	cfg := Default()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Session.Backend != "redis" || cfg.Session.RedisURL != "redis://cache:6379/1" {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Session.Debounce != 250*time.Millisecond || !cfg.Cache.Disabled || cfg.Server.Addr != ":9090" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad debounce", map[string]string{EnvDebounce: "soon"}},
		{"bad bool", map[string]string{EnvNoCache: "maybe"}},
		{"redis without url", map[string]string{EnvSessionBackend: "redis"}},
		{"unknown backend", map[string]string{EnvSessionBackend: "etcd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := cfg.ApplyEnv(func(k string) string { return tt.env[k] })
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("DEEPTIME_TEST_DOTENV=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEEPTIME_TEST_DOTENV", "")
	os.Unsetenv("DEEPTIME_TEST_DOTENV")

	if LoadDotenv(filepath.Join(dir, "missing.env")) {
		t.Error("missing file reported as loaded")
	}
	if !LoadDotenv(path) {
		t.Fatal("LoadDotenv returned false")
	}
	if got := os.Getenv("DEEPTIME_TEST_DOTENV"); got != "loaded" {
		t.Errorf("env = %q", got)
	}
}
