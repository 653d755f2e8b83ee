package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treeseq/pkg/cache"
	"github.com/matzehuels/treeseq/pkg/config"
	"github.com/matzehuels/treeseq/pkg/enum"
	"github.com/matzehuels/treeseq/pkg/errors"
	"github.com/matzehuels/treeseq/pkg/tree"
)

// enumFlags holds the enum command's output switches.
type enumFlags struct {
	count   bool
	json    bool
	noCache bool
}

// enumCommand creates the enum command.
func (c *CLI) enumCommand() *cobra.Command {
	var f enumFlags

	cmd := &cobra.Command{
		Use:   "enum SIZE",
		Short: "Print every labeled tree of one size",
		Long: `Print every rooted ordered tree with SIZE nodes and labels drawn from 1..n,
in bracket notation and in enumeration order. Results are cached, so later
searches over the same labels start from them.`,
		Example: `  treeseq enum 3 --labels 1
  treeseq enum 5 -n 2 --count`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.New(errors.ErrCodeInvalidInput, "size must be an integer, got %q", args[0])
			}
			cfg, err := c.loadConfig(cmd.Flags(),
				binding{"search.labels", "labels"},
				binding{"cache.backend", "cache-backend"},
			)
			if err != nil {
				return err
			}
			if f.noCache {
				cfg.Cache.Backend = cache.BackendNone
			}
			return c.runEnum(cmd.Context(), cfg, size, f)
		},
	}

	flags := cmd.Flags()
	flags.IntP("labels", "n", 3, "number of labels n")
	flags.String("cache-backend", cache.BackendFile, "tree cache backend")
	flags.BoolVar(&f.count, "count", false, "print only the number of trees")
	flags.BoolVar(&f.json, "json", false, "print the trees as a JSON array")
	flags.BoolVar(&f.noCache, "no-cache", false, "do not read or write the tree cache")

	return cmd
}

func (c *CLI) runEnum(ctx context.Context, cfg *config.Config, size int, f enumFlags) error {
	logger := loggerFromContext(ctx)
	n := cfg.Search.Labels
	if err := errors.ValidateSize(size); err != nil {
		return err
	}

	store, closeStore, err := c.openStore(ctx, &cfg.Cache)
	if err != nil {
		return err
	}
	defer closeStore()

	// Smaller sizes are always stored before larger ones, so the largest
	// cached size tells whether this one is cached.
	maxCached, err := store.MaxCachedSize(ctx, n)
	if err != nil {
		return err
	}
	cached := maxCached >= size

	engine := enum.NewEngine(store, logger)
	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Enumerating trees of size %d over %d labels...", size, n))
	spinner.w = c.errOut
	spinner.Start()
	trees, err := engine.TreesOfSize(ctx, size, n)
	if err != nil {
		spinner.StopWithError("Enumeration failed")
		return err
	}
	spinner.Stop()

	switch {
	case f.count:
		fmt.Fprintln(c.out, len(trees))
	case f.json:
		data, err := tree.MarshalList(trees)
		if err != nil {
			return fmt.Errorf("encode trees: %w", err)
		}
		fmt.Fprintln(c.out, string(data))
	default:
		for _, t := range trees {
			fmt.Fprintln(c.out, t.Key())
		}
		c.ui().stats(len(trees), size, cached)
	}
	prog.done("Enumerated trees", "count", len(trees), "size", size, "labels", n)
	return nil
}
