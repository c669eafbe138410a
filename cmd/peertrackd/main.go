// Command peertrackd runs a standalone peer tracker: it polls the configured
// resolver for service membership and logs endpoint additions and removals.
// It is mostly useful for observing a mesh and as a wiring example for
// embedding the tracker library.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/peertrack/component"
	"github.com/kbukum/peertrack/config"
	"github.com/kbukum/peertrack/logger"
	"github.com/kbukum/peertrack/resolver"
	consulresolver "github.com/kbukum/peertrack/resolver/consul"
	"github.com/kbukum/peertrack/resolver/dnssrv"
	"github.com/kbukum/peertrack/resolver/static"
	"github.com/kbukum/peertrack/telemetry"
	"github.com/kbukum/peertrack/tracker"
	"github.com/kbukum/peertrack/version"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml")
	envFile := flag.String("env", "", "path to .env file")
	flag.Parse()

	var opts []config.LoaderOption
	if *configFile != "" {
		opts = append(opts, config.WithConfigFile(*configFile))
	}
	if *envFile != "" {
		opts = append(opts, config.WithEnvFile(*envFile))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "peertrackd: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&cfg.Logging, "peertrackd")

	build := version.Get()
	telemetry.SetBuildInfo(build.Version, build.GitCommit)
	log.Info("peertrackd starting", map[string]interface{}{"version": build.String()})

	res, err := buildResolver(cfg)
	if err != nil {
		log.Fatal("failed to build resolver", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}

	tr, err := tracker.New(cfg.Tracker, res, &loggingListener{log: log}, log)
	if err != nil {
		log.Fatal("failed to create tracker", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}

	registry := component.NewRegistry(log)
	if err := registry.Register(tr); err != nil {
		log.Fatal("failed to register tracker", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}

	ctx := context.Background()
	if err := registry.StartAll(ctx); err != nil {
		log.Fatal("startup failed", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		for _, h := range registry.Health(r.Context()) {
			if h.Status != component.StatusHealthy {
				http.Error(w, fmt.Sprintf("%s: %s", h.Name, h.Status), http.StatusServiceUnavailable)
				return
			}
		}
		fmt.Fprintln(w, "ok")
	})

	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		log.Info("metrics listening", map[string]interface{}{"addr": cfg.MetricsAddr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", map[string]interface{}{"signal": sig.String()})

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	registry.StopAll(shutdownCtx)
}

func buildResolver(cfg *config.Config) (resolver.Resolver, error) {
	switch cfg.Resolver.Provider {
	case config.ProviderStatic:
		s := cfg.Resolver.Static
		return static.New(s.Service, s.Port, s.Addresses...), nil
	case config.ProviderDNS:
		return dnssrv.New(cfg.Resolver.DNS)
	case config.ProviderConsul:
		return consulresolver.New(cfg.Resolver.Consul)
	default:
		return nil, fmt.Errorf("unsupported resolver provider %q", cfg.Resolver.Provider)
	}
}

// loggingListener logs membership changes. A real embedding would open and
// close transport connections here instead.
type loggingListener struct {
	log *logger.Logger
}

func (l *loggingListener) OnEndpointAdd(ep *tracker.Endpoint) {
	l.log.Info("endpoint available", map[string]interface{}{
		logger.FieldEndpoint: ep.URI(),
	})
}

func (l *loggingListener) OnEndpointRemove(ep *tracker.Endpoint) {
	l.log.Info("endpoint unavailable", map[string]interface{}{
		logger.FieldEndpoint: ep.URI(),
	})
}
