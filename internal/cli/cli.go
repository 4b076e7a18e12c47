package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pfrederiksen/deetlist/internal/cache"
	"github.com/pfrederiksen/deetlist/internal/config"
	"github.com/pfrederiksen/deetlist/internal/dragon"
	"github.com/pfrederiksen/deetlist/internal/filter"
	"github.com/pfrederiksen/deetlist/internal/logger"
	"github.com/pfrederiksen/deetlist/internal/pipeline"
	"github.com/pfrederiksen/deetlist/internal/scraper"
	"github.com/pfrederiksen/deetlist/internal/storage"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitPartial = 2
)

// exitError carries an exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}

// app holds flag values and the collaborators built from them.
type app struct {
	configPath  string
	format      string
	outDir      string
	verbose     bool
	concurrency int
	timeout     time.Duration

	cfg     *config.Config
	outFmt  OutputFormat
	log     *logger.Logger
	metrics *logger.Metrics
	runID   string

	stdout io.Writer
	stderr io.Writer

	// fetcher replaces the HTTP fetcher when set.
	fetcher scraper.Fetcher
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{stdout: os.Stdout, stderr: os.Stderr})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deets",
		Short: "Extract Dragon City data from deetlist.com",
		Long: `A CLI tool to extract structured Dragon City data from deetlist.com.
Reads heroic race events, the new dragons listing, the all-dragons index and
individual dragon pages, and prints them as text or JSON.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default ~/.deets/config.yaml)")
	flags.StringVar(&a.format, "format", "text", "Output format: text or json")
	flags.StringVar(&a.outDir, "out-dir", "", "Save each run as JSON in this directory")
	flags.BoolVar(&a.verbose, "verbose", false, "Enable verbose logging and detailed output")
	flags.IntVar(&a.concurrency, "concurrency", 0, "Maximum pages extracted at once (default from config)")
	flags.DurationVar(&a.timeout, "timeout", 0, "Timeout for each page extraction (default from config)")

	cmd.AddCommand(
		newRaceCmd(a),
		newNewDragonsCmd(a),
		newDragonsCmd(a),
		newDragonCmd(a),
		newRunsCmd(a),
	)

	return cmd
}

// setup loads config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	format, err := parseFormat(a.format)
	if err != nil {
		return err
	}
	a.outFmt = format

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = a.concurrency
	}
	if cmd.Flags().Changed("timeout") {
		cfg.UnitTimeout = config.Duration(a.timeout)
	}
	if a.outDir != "" {
		cfg.DataDir = a.outDir
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	a.cfg = cfg

	level := logger.LevelDebug
	if !a.verbose {
		if level, err = logger.ParseLevel(cfg.LogLevel); err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
	}

	a.runID = storage.NewRunID()
	a.log = logger.New(level, a.stderr).With(logger.Fields{"run_id": a.runID})
	logger.SetDefault(a.log)
	a.metrics = logger.NewMetrics()

	a.log.Debug("settings loaded", logger.Fields{
		"command":     cmd.Name(),
		"concurrency": cfg.Concurrency,
		"cache":       cfg.Cache.Type,
		"data_dir":    cfg.DataDir,
	})
	return nil
}

// newFetcher builds the HTTP client and wraps it in the configured cache.
// The returned func releases cache connections.
func (a *app) newFetcher(ctx context.Context) (scraper.Fetcher, func(), error) {
	noop := func() {}
	if a.fetcher != nil {
		return a.fetcher, noop, nil
	}

	client := scraper.New(
		scraper.WithTimeout(time.Duration(a.cfg.Timeout)),
		scraper.WithUserAgent(a.cfg.UserAgent),
		scraper.WithRetries(uint64(a.cfg.Retries)),
		scraper.WithLogger(a.log),
		scraper.WithMetrics(a.metrics),
	)
	ttl := time.Duration(a.cfg.Cache.TTL)

	switch a.cfg.Cache.Type {
	case config.CacheMemory:
		return scraper.NewCachingFetcher(client, cache.NewMemoryCache(), ttl, a.log, a.metrics), noop, nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, a.cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to page cache: %w", err)
		}
		closeFn := func() {
			if err := rc.Close(); err != nil {
				a.log.Warn("closing page cache", logger.Fields{"error": err.Error()})
			}
		}
		return scraper.NewCachingFetcher(client, rc, ttl, a.log, a.metrics), closeFn, nil
	default:
		return client, noop, nil
	}
}

// newDriver returns a pipeline driver over a fresh fetcher.
func (a *app) newDriver(ctx context.Context, resolveDragons bool) (*pipeline.Driver, func(), error) {
	fetcher, closeFn, err := a.newFetcher(ctx)
	if err != nil {
		return nil, nil, err
	}
	drv := pipeline.New(fetcher, pipeline.Options{
		Concurrency:    a.cfg.Concurrency,
		UnitTimeout:    time.Duration(a.cfg.UnitTimeout),
		ResolveDragons: resolveDragons,
		Logger:         a.log,
		Metrics:        a.metrics,
	})
	return drv, closeFn, nil
}

// entries builds one entry per URL, falling back to def when urls is empty.
func entries(kind pipeline.Kind, urls []string, def string) []pipeline.Entry {
	if len(urls) == 0 {
		urls = []string{def}
	}
	out := make([]pipeline.Entry, len(urls))
	for i, u := range urls {
		out[i] = pipeline.Entry{Kind: kind, URL: u}
	}
	return out
}

// finish saves and prints the result and turns failures into an exit code.
func (a *app) finish(kind pipeline.Kind, result *OutputResult) error {
	if a.cfg.DataDir != "" {
		store, err := storage.New(a.cfg.DataDir)
		if err != nil {
			return fmt.Errorf("initializing storage: %w", err)
		}
		path, err := store.Save(string(kind), a.runID, result)
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		result.SavedTo = path
		a.log.Debug("saved run", logger.Fields{"path": path})
	}

	if err := WriteOutput(a.stdout, result, a.outFmt, a.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if a.verbose {
		a.writeMetrics()
	}

	failed := len(result.Failures)
	if failed == 0 {
		return nil
	}
	err := fmt.Errorf("%d of %d pages failed", failed, result.pages)
	if result.RecordCount == 0 {
		return &exitError{code: ExitError, err: err}
	}
	return &exitError{code: ExitPartial, err: err}
}

func (a *app) writeMetrics() {
	data, err := json.MarshalIndent(a.metrics.GetSnapshot(), "", "  ")
	if err != nil {
		a.log.Warn("encoding metrics", logger.Fields{"error": err.Error()})
		return
	}
	fmt.Fprintf(a.stderr, "Metrics:\n%s\n", data)
}

func newRaceCmd(a *app) *cobra.Command {
	var resolveDragons bool

	cmd := &cobra.Command{
		Use:   "race [url...]",
		Short: "Extract heroic race events",
		Long:  "Extract heroic race events. Defaults to the configured race page.",
		RunE: func(cmd *cobra.Command, args []string) error {
			drv, closeFn, err := a.newDriver(cmd.Context(), resolveDragons)
			if err != nil {
				return err
			}
			defer closeFn()

			batch := drv.ExtractAll(cmd.Context(), entries(pipeline.KindHeroicRace, args, a.cfg.RaceURL))
			return a.finish(pipeline.KindHeroicRace, newOutputResult(a.runID, cmd.Name(), batch))
		},
	}
	cmd.Flags().BoolVar(&resolveDragons, "resolve-dragons", false, "Also extract every dragon the event references")
	return cmd
}

func newNewDragonsCmd(a *app) *cobra.Command {
	var sortFlag, filterFlag string

	cmd := &cobra.Command{
		Use:   "new-dragons [url]",
		Short: "Extract the new dragons listing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := parseSortOrder(sortFlag)
			if err != nil {
				return err
			}
			f, err := filter.Parse(filterFlag)
			if err != nil {
				return err
			}
			drv, closeFn, err := a.newDriver(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeFn()

			batch := drv.ExtractAll(cmd.Context(), entries(pipeline.KindNewDragons, args, a.cfg.NewDragonsURL))
			for _, r := range batch.Results {
				if l, ok := r.Record.(*dragon.Listing); ok {
					l.Entries = f.ApplyListing(l.Entries)
					sortListing(l.Entries, order)
				}
			}
			return a.finish(pipeline.KindNewDragons, newOutputResult(a.runID, cmd.Name(), batch))
		},
	}
	cmd.Flags().StringVar(&sortFlag, "sort", "", "Sort entries by: name, rarity, released")
	cmd.Flags().StringVar(&filterFlag, "filter", "", "Keep matching entries, e.g. 'rarity:legendary,heroic name:flame'")
	return cmd
}

func newDragonsCmd(a *app) *cobra.Command {
	var (
		resolve    bool
		limit      int
		sortFlag   string
		filterFlag string
	)

	cmd := &cobra.Command{
		Use:   "dragons [url]",
		Short: "Extract the all-dragons index",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := parseSortOrder(sortFlag)
			if err != nil {
				return err
			}
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			f, err := filter.Parse(filterFlag)
			if err != nil {
				return err
			}
			drv, closeFn, err := a.newDriver(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeFn()

			batch := drv.ExtractAll(cmd.Context(), entries(pipeline.KindDragonIndex, args, a.cfg.AllDragonsURL))
			result := newOutputResult(a.runID, cmd.Name(), batch)

			if resolve && len(batch.Results) > 0 {
				refs := batch.Results[0].Record.(*dragon.Index).Refs()
				if limit > 0 && limit < len(refs) {
					refs = refs[:limit]
				}
				a.log.Info("resolving dragons", logger.Fields{"count": len(refs)})

				dragons, failures := drv.ResolveDragons(cmd.Context(), refs)
				dragons = f.Apply(dragons)
				sortDragons(dragons, order)
				result.Dragons = dragons
				result.Failures = append(result.Failures, failures...)
				result.pages += len(refs)
			}
			return a.finish(pipeline.KindDragonIndex, result)
		},
	}
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Also extract each listed dragon page")
	cmd.Flags().IntVar(&limit, "limit", 0, "Resolve at most this many dragons (0 means all)")
	cmd.Flags().StringVar(&sortFlag, "sort", "", "Sort resolved dragons by: name, rarity")
	cmd.Flags().StringVar(&filterFlag, "filter", "", "Keep matching resolved dragons, e.g. 'element:fire rarity:l'")
	return cmd
}

func newDragonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dragon <url...>",
		Short: "Extract individual dragon pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			drv, closeFn, err := a.newDriver(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeFn()

			batch := drv.ExtractAll(cmd.Context(), entries(pipeline.KindDragon, args, ""))
			return a.finish(pipeline.KindDragon, newOutputResult(a.runID, cmd.Name(), batch))
		},
	}
}

func newRunsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "runs <kind> [run-id]",
		Short: "List saved runs, or print one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.DataDir == "" {
				return fmt.Errorf("no data directory: set data_dir in the config or pass --out-dir")
			}
			kind, err := pipeline.ParseKind(args[0])
			if err != nil {
				return err
			}
			store, err := storage.New(a.cfg.DataDir)
			if err != nil {
				return fmt.Errorf("initializing storage: %w", err)
			}

			if len(args) == 1 {
				ids, err := store.Runs(string(kind))
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					fmt.Fprintf(a.stdout, "No saved %s runs.\n", kind)
					return nil
				}
				for _, id := range ids {
					fmt.Fprintln(a.stdout, id)
				}
				return nil
			}

			run, err := store.Load(string(kind), args[1])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		},
	}
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(ExitCode(err))
}
