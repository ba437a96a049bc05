// Package app wires configuration, logging, persistence, the HTTP client and
// the session store into one value both binaries share.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Makepad-fr/nexo/internal/api"
	"github.com/Makepad-fr/nexo/internal/config"
	"github.com/Makepad-fr/nexo/internal/logger"
	"github.com/Makepad-fr/nexo/internal/resource"
	"github.com/Makepad-fr/nexo/internal/session"
	"github.com/Makepad-fr/nexo/internal/store/jsonstore"
	"github.com/Makepad-fr/nexo/internal/store/redisstore"
)

type Options struct {
	// BaseURL overrides the configured API root (the -server flag).
	BaseURL string
	// LogOutput replaces the log file; tests pass io.Discard.
	LogOutput  io.Writer
	HTTPClient *http.Client
}

type App struct {
	Config    *config.Config
	Log       zerolog.Logger
	Session   *session.Store
	API       *api.Client
	Resources *resource.Set
	Registry  *prometheus.Registry
	Metrics   *api.Metrics

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg}

	home, err := cfg.HomeDir()
	if err != nil {
		return nil, err
	}

	out, pretty := opts.LogOutput, false
	if out == nil && cfg.LogToStderr() {
		out, pretty = os.Stderr, true
	}
	if out == nil {
		path, err := cfg.LogPath()
		if err != nil {
			return nil, err
		}
		f, err := logger.OpenFile(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, f.Close)
		out = f
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: pretty, Output: out})
	a.Log = logger.Get()

	persister, err := a.persister(ctx, home)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector())
	a.Metrics = api.NewMetrics(a.Registry)

	base := opts.BaseURL
	if base == "" {
		base = cfg.BaseURL()
	} else {
		base = config.ResolveBaseURL(base, "", "", 0)
	}

	var store *session.Store
	a.API = api.New(api.Options{
		BaseURL:        base,
		HTTPClient:     opts.HTTPClient,
		Tokens:         api.TokenFunc(func() string { return store.Token() }),
		OnUnauthorized: func() { store.ForceLogout() },
		Logger:         a.Log,
		Metrics:        a.Metrics,
	})
	a.Resources = resource.NewSet(a.API)
	store = session.NewStore(session.Options{
		Persister:     persister,
		Authenticator: a.Resources.Auth,
		Logger:        a.Log,
		EnvToken:      cfg.Token,
	})
	a.Session = store

	if err := store.Restore(ctx); err != nil {
		a.Log.Warn().Err(err).Msg("could not restore session")
	}
	a.Log.Debug().Str("base_url", base).Str("backend", cfg.SessionBackend).Msg("client ready")

	if cfg.MetricsAddr != "" {
		if err := a.serveMetrics(cfg.MetricsAddr); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) persister(ctx context.Context, home string) (session.Persister, error) {
	if a.Config.SessionBackend != "redis" {
		return jsonstore.NewSessions(home, a.Config.Profile), nil
	}
	rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: a.Config.Redis.Addr, DB: a.Config.Redis.DB})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rdb.Close)
	return redisstore.NewSessions(redis.Cmdable(rdb), a.Config.Profile), nil
}

func (a *App) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics listen %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Error().Err(err).Msg("metrics server")
		}
	}()
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
	a.Log.Info().Str("addr", ln.Addr().String()).Msg("serving metrics")
	return nil
}

// RefreshUser fills in the profile for sessions that only carry a token
// (NEXO_TOKEN) and keeps the stored profile current otherwise.
func (a *App) RefreshUser(ctx context.Context) error {
	if _, ok := a.Session.Current(); !ok {
		return nil
	}
	u, err := a.Resources.Auth.Me(ctx)
	if err != nil {
		return err
	}
	return a.Session.SetUser(ctx, u)
}

// Close releases the log file, redis connection and metrics listener.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
