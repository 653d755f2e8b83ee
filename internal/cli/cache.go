package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treeseq/pkg/cache"
	"github.com/matzehuels/treeseq/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the tree enumeration cache",
	}

	cmd.PersistentFlags().String("cache-backend", cache.BackendFile, "tree cache backend: "+strings.Join(cache.Backends, ", "))

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheStatCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached tree list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Flags(), binding{"cache.backend", "cache-backend"})
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, closeStore, err := c.openStore(ctx, &cfg.Cache)
			if err != nil {
				return err
			}
			defer closeStore()

			count, err := store.Clear(ctx)
			if errors.Is(err, errors.ErrCodeUnsupported) {
				c.ui().warning("The %s backend cannot list its entries", cfg.Cache.Backend)
				return nil
			}
			if err != nil {
				return err
			}
			if count == 0 {
				c.ui().info("Cache is empty")
				return nil
			}

			c.ui().success("Cleared %d cached entries", count)
			c.ui().detail("Backend: %s, namespace %q", cfg.Cache.Backend, cfg.Cache.Namespace)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Flags(), binding{"cache.backend", "cache-backend"})
			if err != nil {
				return err
			}
			switch cfg.Cache.Backend {
			case cache.BackendFile, cache.BackendBadger:
				fmt.Fprintln(c.out, cacheLocation(cfg.Cache.Backend, cfg.Cache.Dir))
				return nil
			default:
				return errors.New(errors.ErrCodeInvalidInput, "the %s backend has no local directory", cfg.Cache.Backend)
			}
		},
	}
}

// cacheStatCommand creates the "cache stat" subcommand.
func (c *CLI) cacheStatCommand() *cobra.Command {
	var labels int

	cmd := &cobra.Command{
		Use:   "stat",
		Short: "Show which tree sizes are cached",
		Long: `Show the largest cached tree size for every label count. With --labels only
that label count's largest cached size is printed; search --no-resume
ignores it, otherwise cursors start there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Flags(), binding{"cache.backend", "cache-backend"})
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, closeStore, err := c.openStore(ctx, &cfg.Cache)
			if err != nil {
				return err
			}
			defer closeStore()

			if cmd.Flags().Changed("labels") {
				if err := errors.ValidateLabels(labels); err != nil {
					return err
				}
				size, err := store.MaxCachedSize(ctx, labels)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.out, size)
				return nil
			}

			entries, ok, err := store.Entries(ctx)
			if err != nil {
				return err
			}
			if !ok {
				c.ui().warning("The %s backend cannot list its entries", cfg.Cache.Backend)
				return nil
			}
			if len(entries) == 0 {
				c.ui().info("Cache is empty")
				return nil
			}
			for _, line := range summarizeEntries(entries) {
				fmt.Fprintln(c.out, line)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&labels, "labels", "n", 0, "print only the largest cached size for this label count")

	return cmd
}

// summarizeEntries renders one line per label count, ordered by label count:
// "n=2  sizes 1-5  (5 entries)".
func summarizeEntries(entries []cache.Entry) []string {
	type span struct{ min, max, count int }
	byLabels := make(map[int]*span)
	for _, e := range entries {
		s, ok := byLabels[e.Labels]
		if !ok {
			byLabels[e.Labels] = &span{min: e.Size, max: e.Size, count: 1}
			continue
		}
		s.min = min(s.min, e.Size)
		s.max = max(s.max, e.Size)
		s.count++
	}

	labels := make([]int, 0, len(byLabels))
	for n := range byLabels {
		labels = append(labels, n)
	}
	slices.Sort(labels)

	lines := make([]string, len(labels))
	for i, n := range labels {
		s := byLabels[n]
		lines[i] = fmt.Sprintf("n=%d  sizes %d-%d  (%d entries)", n, s.min, s.max, s.count)
	}
	return lines
}

func cacheLocation(backend, dir string) string {
	if backend == cache.BackendBadger {
		return filepath.Join(dir, "badger")
	}
	return dir
}
