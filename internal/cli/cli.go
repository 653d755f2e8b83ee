package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/treeseq/pkg/buildinfo"
	"github.com/matzehuels/treeseq/pkg/cache"
	"github.com/matzehuels/treeseq/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

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

	out     io.Writer // command results
	errOut  io.Writer // status lines, spinners and the dashboard
	cfgFile string
	verbose bool
}

// New creates a new CLI instance. Logs and status lines go to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
		errOut: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command results (not logs) to w.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

func (c *CLI) ui() console {
	return console{w: c.errOut}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "treeseq searches for long bad sequences of labeled trees",
		Long: `treeseq explores the TREE(n) problem: it enumerates labeled rooted trees by
size and searches depth first for long sequences in which no earlier tree
topologically embeds into a later one.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default "+config.Dir()+"/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.enumCommand())
	root.AddCommand(c.embedsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// binding maps a config key onto the flag that overrides it.
type binding struct {
	key  string
	flag string
}

// loadConfig reads defaults, the config file and the environment, then
// applies the given flags on top.
func (c *CLI) loadConfig(flags *pflag.FlagSet, bindings ...binding) (*config.Config, error) {
	v, err := config.New(c.cfgFile)
	if err != nil {
		return nil, err
	}
	for _, b := range bindings {
		f := flags.Lookup(b.flag)
		if f == nil {
			return nil, fmt.Errorf("unknown flag %q for %s", b.flag, b.key)
		}
		if err := v.BindPFlag(b.key, f); err != nil {
			return nil, fmt.Errorf("bind %s: %w", b.key, err)
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if !c.verbose && cfg.Log.Level != "" {
		level, err := parseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		c.SetLogLevel(level)
	}
	return cfg, nil
}

// =============================================================================
// Tree Store Factory
// =============================================================================

// openStore opens the configured cache backend and wraps it in a tree store.
// The returned function closes the backend.
func (c *CLI) openStore(ctx context.Context, cfg *config.CacheConfig) (*cache.TreeStore, func(), error) {
	opts := cfg.CacheOptions()
	opts.Logger = c.Logger
	backend, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("opened tree cache", "backend", cfg.Backend, "namespace", cfg.Namespace)

	store := cache.NewTreeStore(backend, cache.NewScopedKeyer(nil, cfg.Namespace), c.Logger)
	closeFn := func() {
		if err := backend.Close(); err != nil {
			c.Logger.Warn("close tree cache", "error", err)
		}
	}
	return store, closeFn, nil
}
