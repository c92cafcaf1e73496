// Package cli implements the aura command-line interface.
//
// Commands cover dependency resolution (resolve), graph rendering (graph),
// AUR search with interactive selection (search), and metadata cache
// management (cache). All commands share a --verbose flag for debug-level
// logging and a --config flag pointing at an aura.toml file.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/th3gh0s8/aura/internal/config"
	"github.com/th3gh0s8/aura/pkg/alpm"
	"github.com/th3gh0s8/aura/pkg/aur"
	"github.com/th3gh0s8/aura/pkg/buildinfo"
	"github.com/th3gh0s8/aura/pkg/cache"
	"github.com/th3gh0s8/aura/pkg/integrations/faur"
	"github.com/th3gh0s8/aura/pkg/resolve"
)

const appName = "aura"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands
// registered. The logger is attached to the command context so every
// subcommand can retrieve it with loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Aura resolves AUR dependency graphs",
		Long:         `Aura recursively resolves package dependencies across the official repositories and the AUR, classifying each package as already satisfied, installable, or buildable from source, and computes a tiered build order.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", config.DefaultPath(), "config file")

	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newCache builds the metadata cache backend the config selects. Backend
// construction failures degrade to no caching rather than aborting the
// command.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) cache.Cache {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache()
	}
	switch cfg.Cache.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, continuing uncached", "err", err)
			return cache.NewNullCache()
		}
		return rc
	default:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			c.Logger.Warn("file cache unavailable, continuing uncached", "err", err)
			return cache.NewNullCache()
		}
		return fc
	}
}

// newFetcher builds the AUR metadata client over the configured cache.
func (c *CLI) newFetcher(ctx context.Context, cfg config.Config, noCache bool) *faur.Client {
	backend := c.newCache(ctx, cfg, noCache)
	return faur.NewClient(backend, cfg.Cache.TTL.Std()).WithBaseURL(cfg.AURBaseURL)
}

// newResolver wires the full collaborator set: pacman-backed handle pool,
// metadata fetcher, and git cloner. The returned cleanup closes the pool.
func (c *CLI) newResolver(ctx context.Context, cfg config.Config, opts resolverOptions) (*resolve.Resolver, func(), error) {
	pool, err := alpm.NewPool(func() (alpm.DB, error) {
		return alpm.NewPacmanDB(), nil
	}, cfg.PoolSize, cfg.LeaseTimeout.Std())
	if err != nil {
		return nil, nil, err
	}

	cloner := aur.NewCloner(cfg.CloneRoot)
	cloner.Refresh = cfg.RefreshClones || opts.refreshClones

	logger := c.Logger
	resolver := resolve.New(pool, c.newFetcher(ctx, cfg, opts.noCache), cloner, resolve.Options{
		Refresh:       opts.refresh,
		RefreshClones: cfg.RefreshClones || opts.refreshClones,
		Logger: func(format string, args ...any) {
			logger.Debugf(format, args...)
			if opts.events != nil {
				opts.events(format, args...)
			}
		},
	})

	cleanup := func() { _ = pool.Close() }
	return resolver, cleanup, nil
}

// resolverOptions carries per-command overrides for resolver wiring.
type resolverOptions struct {
	noCache       bool
	refresh       bool
	refreshClones bool

	// events mirrors resolver log lines to a progress consumer.
	events func(format string, args ...any)
}

// resolveWithProgress runs a resolution, under the live progress display
// when an event channel is supplied.
func (c *CLI) resolveWithProgress(ctx context.Context, resolver *resolve.Resolver, names []string, events chan progressEvent) (*resolve.Resolution, error) {
	if events == nil {
		return resolver.Resolve(ctx, names)
	}
	return runProgressTUI(ctx, resolver, names, events)
}
