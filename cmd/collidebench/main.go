// Command collidebench runs batches of random narrow-phase queries across a
// worker pool and serves the engine metrics while it runs.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akmonengine/narrowphase"
	"github.com/akmonengine/narrowphase/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

type options struct {
	configPath  string
	envFile     string
	listen      string
	pairs       int
	rounds      int
	workers     int
	seed        uint64
	spread      float64
	maxDistance float64
	verbose     bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := options{}
	cmd := &cobra.Command{
		Use:          "collidebench",
		Short:        "Run random narrow-phase query batches",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnv(cmd, &opts); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML engine configuration")
	flags.StringVar(&opts.envFile, "env", ".env", "optional environment file")
	flags.StringVar(&opts.listen, "listen", "", "serve /metrics on this address, e.g. 127.0.0.1:9090")
	flags.IntVarP(&opts.pairs, "pairs", "n", 10000, "query pairs per round")
	flags.IntVarP(&opts.rounds, "rounds", "r", 10, "rounds to run")
	flags.IntVarP(&opts.workers, "workers", "w", 4, "worker goroutines")
	flags.Uint64Var(&opts.seed, "seed", 1, "random scene seed")
	flags.Float64Var(&opts.spread, "spread", 6, "edge of the cube bodies are placed in")
	flags.Float64Var(&opts.maxDistance, "max-distance", 0.5, "distance query reach")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log engine debug records")
	return cmd
}

// loadEnv reads the optional env file; COLLIDEBENCH_CONFIG and
// COLLIDEBENCH_LISTEN fill the flags left unset.
func loadEnv(cmd *cobra.Command, opts *options) error {
	if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", opts.envFile, err)
	}
	if v := os.Getenv("COLLIDEBENCH_CONFIG"); v != "" && !cmd.Flags().Changed("config") {
		opts.configPath = v
	}
	if v := os.Getenv("COLLIDEBENCH_LISTEN"); v != "" && !cmd.Flags().Changed("listen") {
		opts.listen = v
	}
	return nil
}

func run(ctx context.Context, opts options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := narrowphase.DefaultConfig()
	if opts.configPath != "" {
		var err error
		if cfg, err = narrowphase.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cfg.Logger = logger
	cfg.Metrics = metrics.NewRecorder(reg)

	engine, err := narrowphase.New(cfg)
	if err != nil {
		return err
	}

	var server *http.Server
	if opts.listen != "" {
		server = &http.Server{
			Addr:              opts.listen,
			Handler:           newRouter(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("serving metrics", slog.String("addr", opts.listen))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	s, err := newScene(opts.seed, opts.spread)
	if err != nil {
		return err
	}
	for round := 0; round < opts.rounds; round++ {
		pairs := s.pairs(opts.pairs, opts.maxDistance)

		start := time.Now()
		results, err := engine.DistanceBatch(ctx, pairs, opts.workers)
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted", slog.Int("round", round))
			break
		}
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		hits := 0
		for _, r := range results {
			if r.Hit {
				hits++
			}
		}
		logger.Info("round done",
			slog.Int("round", round),
			slog.Int("pairs", len(pairs)),
			slog.Int("hits", hits),
			slog.Duration("elapsed", elapsed),
			slog.Float64("pairs_per_second", float64(len(pairs))/elapsed.Seconds()),
		)
	}

	if server == nil {
		return nil
	}
	logger.Info("batches done, serving until interrupted")
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdown)
}

func newRouter(reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
