package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roomgraph/pkg/buildinfo"
	"github.com/matzehuels/roomgraph/pkg/editor"
	"github.com/matzehuels/roomgraph/pkg/roomtype"
	"github.com/matzehuels/roomgraph/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "roomgraph"

	// shortIDLen is how many ID characters the CLI prints.
	shortIDLen = 8
)

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

	// Persistent flag values; see resolveConfig for precedence.
	configPath string
	storeKind  string
	storeURL   string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Roomgraph edits dungeon room graphs",
		Long:         `Roomgraph builds and checks dungeon layouts as graphs of rooms and corridors, enforcing a single entrance, room/corridor alternation, bounded branching and a single boss room.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/roomgraph/config.toml)")
	flags.StringVar(&c.storeKind, "store", "", "store backend: memory, file, sqlite, redis, mongo")
	flags.StringVar(&c.storeURL, "store-url", "", "store location: directory, database path or server URL")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.typesCommand())
	root.AddCommand(c.nodeCommand())
	root.AddCommand(c.connectCommand())
	root.AddCommand(c.disconnectCommand())
	root.AddCommand(c.unlinkCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Service Factory
// =============================================================================

// session bundles what a command needs to edit graphs.
type session struct {
	cfg   Config
	svc   *editor.Service
	store store.Store
}

func (s *session) Close() error { return s.store.Close() }

// openSession resolves configuration and opens the store, type catalog and
// editor service. Callers must Close the session.
func (c *CLI) openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := c.resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return c.openSessionWith(cmd.Context(), cfg)
}

func (c *CLI) openSessionWith(ctx context.Context, cfg Config) (*session, error) {
	types, err := loadTypes(cfg.Types)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, store.Config{Backend: cfg.Store, URL: cfg.StoreURL})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	c.Logger.Debug("opened store", "backend", cfg.Store, "url", cfg.StoreURL)

	svc := editor.New(store.Instrument(st, cfg.Store), types, c.Logger,
		editor.WithMaxChildCorridors(cfg.MaxChildCorridors))
	return &session{cfg: cfg, svc: svc, store: st}, nil
}

func loadTypes(path string) (*roomtype.Registry, error) {
	if path == "" {
		return roomtype.Default(), nil
	}
	types, err := roomtype.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load type catalog: %w", err)
	}
	return types, nil
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/roomgraph/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// shortID trims an ID for display.
func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}
