package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/buildconf/internal/config"
	"git.home.luguber.info/inful/buildconf/internal/logfields"
	"git.home.luguber.info/inful/buildconf/internal/metrics"
	"git.home.luguber.info/inful/buildconf/internal/retry"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	MetricsAddr   string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)"`
	Debounce      time.Duration `default:"300ms" help:"Quiet period before reloading after a change"`
	Format        string        `short:"f" enum:"json,yaml" default:"json" help:"Output format for each new configuration (json, yaml)"`
	ReloadRetries int           `name:"reload-retries" default:"4" help:"Retries while a replaced configuration file is briefly missing"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.RunWatch(ctx, g, root)
}

// RunWatch resolves the configuration, prints it, and prints every changed
// configuration until ctx is canceled. Reload failures are logged and the
// last good configuration stays in effect.
func (w *WatchCmd) RunWatch(ctx context.Context, g *Global, root *CLI) error {
	path, err := root.ConfigPath()
	if err != nil {
		return err
	}

	reg := prom.NewRegistry()
	resolver := root.resolver(g, config.WithRecorder(metrics.NewPrometheusRecorder(reg)))

	cfg, err := resolver.Load(path)
	if err != nil {
		return err
	}
	if err := WriteConfiguration(g.Stdout, cfg, w.Format); err != nil {
		return err
	}

	var mu sync.Mutex
	lastSnapshot := cfg.Snapshot()
	watcher, err := config.NewWatcher(path, resolver, func(next *config.BuildConfiguration, err error) {
		if err != nil {
			g.Logger.Warn("Keeping previous configuration", logfields.ConfigPath(path), logfields.Error(err))
			return
		}
		mu.Lock()
		defer mu.Unlock()
		snap := next.Snapshot()
		if snap == lastSnapshot {
			g.Logger.Debug("Configuration unchanged", logfields.ConfigPath(path))
			return
		}
		lastSnapshot = snap
		if err := WriteConfiguration(g.Stdout, next, w.Format); err != nil {
			g.Logger.Error("Failed to write configuration", logfields.Error(err))
		}
	})
	if err != nil {
		return err
	}
	if w.Debounce > 0 {
		watcher.SetDebounce(w.Debounce)
	}
	if err := watcher.SetRetryPolicy(retry.NewPolicy(retry.BackoffExponential, 0, 0, w.ReloadRetries)); err != nil {
		_ = watcher.Stop()
		return err
	}

	var ln net.Listener
	if w.MetricsAddr != "" {
		ln, err = net.Listen("tcp", w.MetricsAddr)
		if err != nil {
			_ = watcher.Stop()
			return fmt.Errorf("listen on %s: %w", w.MetricsAddr, err)
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := watcher.Start(egCtx); err != nil {
			_ = watcher.Stop()
			return err
		}
		<-egCtx.Done()
		return watcher.Stop()
	})

	if ln != nil {
		srv := &http.Server{Handler: metricsMux(reg), ReadHeaderTimeout: 5 * time.Second}
		g.Logger.Info("Serving metrics", slog.String("addr", ln.Addr().String()))

		eg.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-egCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Logger.Info("Watching configuration, press Ctrl+C to stop", logfields.ConfigPath(path))
	if err := eg.Wait(); err != nil {
		return err
	}
	g.Logger.Info("Watcher stopped")
	return nil
}

func metricsMux(reg *prom.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	return mux
}
