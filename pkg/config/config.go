// Package config loads deeptime settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/deeptime/config.toml (falling back to
// ~/.config/deeptime/config.toml). Every field is optional; missing fields
// keep the values from [Default].
//
//	dataset = "/data/timeline.yaml"
//
//	[viewport]
//	width = 1440
//	height = 800
//
//	[layout]
//	row_threshold = 140
//	compact_row_threshold = 95
//
//	[session]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	debounce = "500ms"
package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/layout"
	"github.com/matzehuels/deeptime/pkg/render/sink"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the accepted session backends.
var Backends = []string{BackendMemory, BackendFile, BackendRedis, BackendMongo}

// Config is the complete application configuration.
type Config struct {
	Dataset  string         `toml:"dataset"`
	Viewport ViewportConfig `toml:"viewport"`
	Layout   LayoutConfig   `toml:"layout"`
	Render   RenderConfig   `toml:"render"`
	Server   ServerConfig   `toml:"server"`
	Session  SessionConfig  `toml:"session"`
	Cache    CacheConfig    `toml:"cache"`
}

// ViewportConfig is the default drawing surface size.
type ViewportConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// LayoutConfig overrides layout constants.
type LayoutConfig struct {
	RowThreshold        float64 `toml:"row_threshold"`
	CompactRowThreshold float64 `toml:"compact_row_threshold"`
}

// RenderConfig holds artifact defaults.
type RenderConfig struct {
	Theme      string  `toml:"theme"`
	Rasterizer string  `toml:"rasterizer"`
	Scale      float64 `toml:"scale"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	PassTimeout  time.Duration `toml:"pass_timeout"`
}

// SessionConfig selects and configures the saved-view store.
type SessionConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	RedisURL      string        `toml:"redis_url"`
	MongoURI      string        `toml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database"`
	Debounce      time.Duration `toml:"debounce"`
	TTL           time.Duration `toml:"ttl"`
}

// CacheConfig controls the snapshot cache.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Viewport: ViewportConfig{Width: 1200, Height: 700},
		Layout: LayoutConfig{
			RowThreshold:        layout.DefaultProfiles[layout.Regular].RowThreshold,
			CompactRowThreshold: layout.DefaultProfiles[layout.Compact].RowThreshold,
		},
		Render: RenderConfig{Theme: "dark", Rasterizer: string(sink.RasterChrome), Scale: 2},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			PassTimeout:  5 * time.Second,
		},
		Session: SessionConfig{
			Backend:  BackendFile,
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "deeptime", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "deeptime", "config.toml"), nil
}

// Load reads the config file at path. An empty path selects [Path]; a
// missing default file yields [Default], while a missing explicit path is
// an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if os.IsNotExist(err) {
		return Config{}, errors.New(errors.ErrCodeFileNotFound, "config file %s not found", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open %s", path)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Decode reads TOML on top of [Default] and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undec[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport must be positive, got %vx%v", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Layout.RowThreshold <= 0 || c.Layout.CompactRowThreshold <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "row thresholds must be positive")
	}
	if c.Render.Theme != "dark" && c.Render.Theme != "light" {
		return errors.New(errors.ErrCodeInvalidConfig, "render.theme must be dark or light, got %q", c.Render.Theme)
	}
	switch sink.Rasterizer(c.Render.Rasterizer) {
	case sink.RasterChrome, sink.RasterRSVG:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "render.rasterizer must be chrome or rsvg, got %q", c.Render.Rasterizer)
	}
	if c.Render.Scale <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render.scale must be positive")
	}
	if !slices.Contains(Backends, c.Session.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "session.backend must be one of %v, got %q", Backends, c.Session.Backend)
	}
	if c.Session.Backend == BackendRedis && c.Session.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "session.redis_url is required for the redis backend")
	}
	if c.Session.Backend == BackendMongo && c.Session.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "session.mongo_uri is required for the mongo backend")
	}
	if c.Session.Debounce < 0 || c.Session.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "session durations must not be negative")
	}
	return nil
}

// LayoutEngine returns a layout engine with the configured row thresholds.
func (c Config) LayoutEngine() *layout.Engine {
	return layout.New(layout.WithRowThresholds(c.Layout.RowThreshold, c.Layout.CompactRowThreshold))
}
