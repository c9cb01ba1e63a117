package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vuey/internal/config"
	vuerrors "github.com/vango-dev/vuey/internal/errors"
	"github.com/vango-dev/vuey/pkg/inspect"
	"github.com/vango-dev/vuey/pkg/persist"
	"github.com/vango-dev/vuey/pkg/store"
	"github.com/vango-dev/vuey/pkg/telemetry"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the store inspector over HTTP",
		Long: `Start the HTTP inspector.

Every store declared in vuey.json and every store with a persisted record
is registered as an untyped JSON store and exposed under /stores.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspect.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides inspect.addr)")

	return cmd
}

// inspector is everything runServe assembles before it starts listening.
type inspector struct {
	registry *store.Registry
	handler  http.Handler
	closers  []func() error
}

func (in *inspector) Close() error {
	var errs []error
	for _, c := range in.closers {
		errs = append(errs, c())
	}
	return stderrors.Join(errs...)
}

// buildInspector opens both backends, registers the known stores and wires
// the optional telemetry observers.
func buildInspector(cfg *config.Config, logger *slog.Logger) (*inspector, error) {
	in := &inspector{}

	session, closeSession, err := openBackend(cfg, "session", cfg.Session)
	if err != nil {
		return nil, err
	}
	in.closers = append(in.closers, closeSession)

	durable, closeDurable, err := openBackend(cfg, "durable", cfg.Durable)
	if err != nil {
		in.Close()
		return nil, err
	}
	in.closers = append(in.closers, closeDurable)

	var observers []store.Observer
	var serverOpts []inspect.Option
	if cfg.Inspect.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		observers = append(observers, telemetry.NewMetrics(telemetry.WithRegistry(reg)))
		serverOpts = append(serverOpts, inspect.WithMetricsHandler(
			promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		))
	}
	if cfg.Inspect.Tracing {
		observers = append(observers, telemetry.NewTracer(telemetry.WithTraceWrites(true)))
	}

	in.registry = store.NewRegistry(
		store.WithLogger(logger),
		store.WithSessionBackend(session),
		store.WithDurableBackend(durable),
		store.WithObserver(store.Observers(observers...)),
	)

	entries, err := discover(cfg, session, durable, logger)
	if err != nil {
		in.Close()
		return nil, err
	}
	if err := in.registry.RegisterAll(entries...); err != nil {
		in.Close()
		return nil, err
	}

	serverOpts = append(serverOpts, inspect.WithLogger(logger))
	in.handler = inspect.New(in.registry, serverOpts...)
	return in, nil
}

// discover returns the configured stores followed by any store that only
// exists as a record, durable before session.
func discover(cfg *config.Config, session, durable persist.Backend, logger *slog.Logger) ([]store.Entry, error) {
	var entries []store.Entry
	seen := make(map[string]bool)

	for _, sc := range cfg.Stores {
		strategy, err := store.ParseSaveStrategy(sc.Strategy)
		if err != nil {
			return nil, vuerrors.New("V040").Wrap(err)
		}
		var initial any
		if len(sc.Initial) > 0 {
			if err := json.Unmarshal(sc.Initial, &initial); err != nil {
				return nil, vuerrors.New("V009").Wrap(err)
			}
		}
		entries = append(entries, store.New[any](sc.Name, initial, strategy))
		seen[sc.Name] = true
	}

	for _, src := range []struct {
		section  string
		backend  persist.Backend
		strategy store.SaveStrategy
	}{
		{"durable", durable, store.Durable},
		{"session", session, store.Session},
	} {
		names, err := listNames(src.section, src.backend)
		if err != nil {
			logger.Warn("cannot discover records", "backend", src.section, "error", err)
			continue
		}
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			entries = append(entries, store.New[any](name, nil, src.strategy))
		}
	}
	return entries, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := slog.New(cfg.Log.Handler(os.Stderr))

	in, err := buildInspector(cfg, logger)
	if err != nil {
		return err
	}
	defer in.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Inspect.Addr,
		Handler:           in.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printBanner()
	success("Inspector listening on http://%s", cfg.Inspect.Addr)
	info("%d store(s): %v", in.registry.Len(), in.registry.Names())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return vuerrors.New("V061").Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return vuerrors.New("V061").Wrap(err)
	}
	return nil
}
