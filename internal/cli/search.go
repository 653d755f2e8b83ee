package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/treeseq/pkg/cache"
	"github.com/matzehuels/treeseq/pkg/checkpoint"
	"github.com/matzehuels/treeseq/pkg/config"
	"github.com/matzehuels/treeseq/pkg/enum"
	"github.com/matzehuels/treeseq/pkg/observability"
	"github.com/matzehuels/treeseq/pkg/pool"
	"github.com/matzehuels/treeseq/pkg/search"
	"github.com/matzehuels/treeseq/pkg/tree"
)

// Profile modes accepted by --profile.
var profileModes = map[string]func(*profile.Profile){
	"cpu":   profile.CPUProfile,
	"mem":   profile.MemProfile,
	"mutex": profile.MutexProfile,
	"block": profile.BlockProfile,
	"trace": profile.TraceProfile,
}

// searchFlags holds flags that do not map one-to-one onto config keys.
type searchFlags struct {
	noResume    bool
	noCache     bool
	checkpoint  string
	profile     string
	profilePath string
	tui         bool
}

// apply folds the negated and path flags into cfg.
func (f *searchFlags) apply(cfg *config.Config) {
	if f.noResume {
		cfg.Search.Resume = false
	}
	if f.noCache {
		cfg.Cache.Backend = cache.BackendNone
	}
	if f.checkpoint != "" {
		cfg.Checkpoint.Enabled = true
		cfg.Checkpoint.Path = f.checkpoint
	}
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search for a long bad sequence of labeled trees",
		Long: `Search depth first for a long sequence of labeled trees in which no earlier
tree embeds into a later one. Candidates are enumerated by increasing size and
checked against the current sequence on a pool of workers.

Without --max-size the search space is infinite: stop it with Ctrl-C and the
best sequence found so far is printed.`,
		Example: `  # Unbounded search over two labels with a live dashboard
  treeseq search --labels 2 --tui

  # Exhaustive search over small trees, saving every improvement
  treeseq search -n 2 --max-size 4 --checkpoint best.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd.Flags(),
				binding{"search.labels", "labels"},
				binding{"search.workers", "workers"},
				binding{"search.max_size", "max-size"},
				binding{"search.max_depth", "max-depth"},
				binding{"cache.backend", "cache-backend"},
				binding{"metrics.addr", "metrics-addr"},
			)
			if err != nil {
				return err
			}
			f.apply(cfg)
			return c.runSearch(cmd.Context(), cfg, f)
		},
	}

	flags := cmd.Flags()
	flags.IntP("labels", "n", 3, "number of labels n")
	flags.IntP("workers", "w", 0, "embedding workers (default: number of CPUs)")
	flags.Int("max-size", 0, "largest candidate tree size (0 = unbounded)")
	flags.Int("max-depth", 0, "longest sequence to explore (0 = unbounded)")
	flags.String("cache-backend", cache.BackendFile, "tree cache backend: "+strings.Join(cache.Backends, ", "))
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	flags.BoolVar(&f.noResume, "no-resume", false, "start every cursor at size 1 instead of the largest cached size")
	flags.BoolVar(&f.noCache, "no-cache", false, "do not read or write the tree cache")
	flags.StringVar(&f.checkpoint, "checkpoint", "", "save every new best sequence to this TOML file")
	flags.StringVar(&f.profile, "profile", "", "write a runtime profile: cpu, mem, mutex, block or trace")
	flags.StringVar(&f.profilePath, "profile-path", ".", "directory for profile output")
	flags.BoolVar(&f.tui, "tui", false, "show a live dashboard instead of log lines")

	return cmd
}

// runSearch wires the cache, enumerator, pool and controller together and
// runs the search until it finishes or ctx ends.
func (c *CLI) runSearch(ctx context.Context, cfg *config.Config, f searchFlags) error {
	logger := loggerFromContext(ctx)

	if f.profile != "" {
		mode, ok := profileModes[f.profile]
		if !ok {
			return fmt.Errorf("unknown profile mode %q (want cpu, mem, mutex, block or trace)", f.profile)
		}
		defer profile.Start(mode, profile.ProfilePath(f.profilePath), profile.NoShutdownHook, profile.Quiet).Stop()
	}

	store, closeStore, err := c.openStore(ctx, &cfg.Cache)
	if err != nil {
		return err
	}
	defer closeStore()

	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		metrics = observability.NewMetrics()
		observability.SetSearchHooks(metrics)
		observability.SetPoolHooks(metrics)
		observability.SetCacheHooks(metrics)
		observability.SetEnumHooks(metrics)
		defer observability.Reset()
	}

	// The dashboard owns the terminal; only warnings are logged.
	runLogger := logger
	if f.tui {
		runLogger = muted(logger)
	}

	engine := enum.NewEngine(store, runLogger)
	workers := pool.New(pool.Config{Workers: cfg.Search.Workers, Logger: runLogger})
	defer workers.Terminate()

	saver := newCheckpointSaver(&cfg.Checkpoint, cfg.Search.Labels, runLogger)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var prog *tea.Program
	if f.tui {
		model := NewDashboardModel(cfg.Search.Labels, cfg.Search.MaxSize, workers.Stats, stop)
		prog = tea.NewProgram(model, tea.WithContext(runCtx), tea.WithOutput(c.errOut))
	}

	ctrl, err := search.New(engine, workers, search.Options{
		Labels:   cfg.Search.Labels,
		MaxSize:  cfg.Search.MaxSize,
		MaxDepth: cfg.Search.MaxDepth,
		Resume:   cfg.Search.Resume,
		Logger:   runLogger,
		OnBest: func(p search.Progress) {
			saver.save(p)
			if prog != nil {
				prog.Send(bestMsg(p))
			}
		},
	})
	if err != nil {
		return err
	}

	logger.Info("starting search",
		"labels", cfg.Search.Labels,
		"workers", workers.Stats().Workers,
		"max_size", cfg.Search.MaxSize,
		"cache", cfg.Cache.Backend,
		"resume", cfg.Search.Resume)

	var res search.Result
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		defer stop()
		var err error
		res, err = ctrl.Run(gctx)
		if prog != nil {
			prog.Send(finishedMsg{result: res, err: err})
		}
		return err
	})
	if metrics != nil {
		serveMetrics(gctx, g, cfg.Metrics.Addr, metrics.Handler(), logger)
	}
	if prog != nil {
		if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			logger.Warn("dashboard exited", "error", err)
		}
		stop()
	}
	err = g.Wait()

	printSearchSummary(c.ui(), res, saver)

	// Quitting the dashboard cancels only the run context; that is a normal stop.
	if err != nil && ctx.Err() == nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serveMetrics runs the Prometheus endpoint inside g until ctx ends.
func serveMetrics(ctx context.Context, g *errgroup.Group, addr string, h http.Handler, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		logger.Info("serving metrics", "addr", addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

func printSearchSummary(ui console, res search.Result, saver *checkpointSaver) {
	ui.newline()
	ui.keyValue("Best", StyleNumber.Render(fmt.Sprint(res.Best)))
	ui.keyValue("Candidates", fmt.Sprint(res.Tested))
	ui.keyValue("Elapsed", res.Elapsed.Round(time.Millisecond).String())
	if len(res.Sequence) > 0 {
		ui.newline()
		ui.sequence(tree.Keys(res.Sequence))
	}
	if saver != nil && saver.saved {
		ui.newline()
		ui.file(saver.store.Path())
		ui.nextStep("Render it", appName+" render --from-checkpoint "+saver.store.Path())
	}
}

// =============================================================================
// Checkpoints
// =============================================================================

// checkpointSaver persists every new best. A nil saver does nothing.
type checkpointSaver struct {
	store  *checkpoint.FileStore
	cp     *checkpoint.Checkpoint
	logger *log.Logger
	saved  bool
}

func newCheckpointSaver(cfg *config.CheckpointConfig, labels int, logger *log.Logger) *checkpointSaver {
	if !cfg.Enabled {
		return nil
	}
	return &checkpointSaver{
		store:  checkpoint.NewFileStore(cfg.Path),
		cp:     checkpoint.New(labels),
		logger: logger,
	}
}

func (s *checkpointSaver) save(p search.Progress) {
	if s == nil {
		return
	}
	s.cp.Best = p.Length
	s.cp.Sequence = p.Sequence
	s.cp.Tested = p.Tested
	s.cp.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(s.cp); err != nil {
		s.logger.Warn("save checkpoint", "path", s.store.Path(), "error", err)
		return
	}
	s.saved = true
	s.logger.Debug("saved checkpoint", "path", s.store.Path(), "best", p.Length, "run_id", s.cp.RunID)
}
