package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deeptime/pkg/buildinfo"
	"github.com/matzehuels/deeptime/pkg/cache"
	"github.com/matzehuels/deeptime/pkg/config"
	"github.com/matzehuels/deeptime/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "deeptime"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
	getenv     func(string) string
	hooks      *logHooks
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	logger := newLogger(w, level)
	return &CLI{
		Logger: logger,
		cfg:    config.Default(),
		getenv: os.Getenv,
		hooks:  &logHooks{logger: logger},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the configuration loaded for the running command.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Deeptime renders the 4.54 billion year history of Earth",
		Long: `Deeptime is a zoomable geological timeline engine. It lays out eons, eras,
periods, species lifespans and events on a square-root time scale and
renders them to SVG, PNG, PDF or JSON, in the terminal, or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(commandContext(cmd), c.Logger))
			installHooks(c.hooks)
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/deeptime/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.lanesCommand())
	root.AddCommand(c.zoomCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies environment overrides.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(c.getenv); err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "backend", cfg.Session.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(noCache || c.cfg.Cache.Disabled)
	if err != nil {
		return nil, err
	}
	// Geometry can change between releases, so each version gets its own keys.
	r := pipeline.NewRunner(ch, cache.NewScopedKeyer(nil, buildinfo.Version+":"), c.Logger)
	r.Engine = c.cfg.LayoutEngine()
	return r, nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir := c.cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// baseOptions returns pipeline options seeded from the config.
func (c *CLI) baseOptions() pipeline.Options {
	return pipeline.Options{
		Dataset:    c.cfg.Dataset,
		Width:      c.cfg.Viewport.Width,
		Height:     c.cfg.Viewport.Height,
		K:          1,
		Theme:      c.cfg.Render.Theme,
		Scale:      c.cfg.Render.Scale,
		Rasterizer: c.cfg.Render.Rasterizer,
		Logger:     c.Logger,
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/deeptime/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// commandContext returns the command's context, or Background when cobra
// was invoked without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
