package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/api"
	"github.com/user/offer-scraper/internal/config"
	"github.com/user/offer-scraper/internal/crawler"
	"github.com/user/offer-scraper/internal/domain"
	"github.com/user/offer-scraper/internal/extract"
	"github.com/user/offer-scraper/internal/fetch"
	"github.com/user/offer-scraper/internal/monitoring"
	"github.com/user/offer-scraper/internal/proxy"
	"github.com/user/offer-scraper/internal/storage"
)

type sink interface {
	crawler.Sink
	api.StatsSource
	api.Pinger
	Close()
}

// app holds the dependencies shared by the run and serve commands.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	categories config.Categories
	registry   *prometheus.Registry
	metrics    *monitoring.Metrics
	sink       sink
	documents  crawler.DocumentStore
	fetcher    fetch.Fetcher
	checks     map[string]api.Pinger
	closers    []func()
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadFrom(envFile)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("could not build logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, checks: make(map[string]api.Pinger)}
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	if a.categories, err = config.LoadCategories(cfg.CategoriesFile); err != nil {
		a.close()
		return nil, err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = monitoring.NewMetrics(a.registry)

	if err := a.openSink(ctx); err != nil {
		a.close()
		return nil, err
	}
	if err := a.openDocuments(ctx); err != nil {
		a.close()
		return nil, err
	}
	a.openFetcher()
	return a, nil
}

func (a *app) openSink(ctx context.Context) error {
	switch a.cfg.DBDriver {
	case "postgres":
		pg, err := storage.NewPostgresStore(ctx, a.cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return err
		}
		a.sink = pg
	case "sqlite":
		lite, err := storage.OpenSQLite(ctx, a.cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite: %w", err)
		}
		a.sink = lite
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", a.cfg.DBDriver)
	}
	a.closers = append(a.closers, a.sink.Close)
	a.checks[a.cfg.DBDriver] = a.sink
	return nil
}

func (a *app) openDocuments(ctx context.Context) error {
	switch a.cfg.DocumentStore {
	case "fs":
		a.documents = storage.NewFileStore(a.cfg.DocumentDir, a.logger)
	case "redis":
		if a.cfg.RedisAddr == "" {
			return fmt.Errorf("DOCUMENT_STORE=redis requires REDIS_ADDR")
		}
		rs := storage.NewRedisStore(a.cfg.RedisAddr, a.cfg.DocumentTTL(), a.logger)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.documents = rs
		a.checks["redis"] = rs
		a.closers = append(a.closers, func() { _ = rs.Close() })
	default:
		return fmt.Errorf("unknown DOCUMENT_STORE %q", a.cfg.DocumentStore)
	}
	return nil
}

func (a *app) openFetcher() {
	pm := proxy.NewManager(a.cfg.ProxyList(), a.cfg.UserAgentList())

	var f fetch.Fetcher
	if a.cfg.Fetcher == "browser" {
		f = fetch.NewBrowserFetcher(a.cfg.Timeout(), pm, a.logger)
	} else {
		f = fetch.NewHTTPFetcher(a.cfg.Timeout(), pm, a.logger)
	}
	a.fetcher = fetch.WithRetry(f, a.cfg.MaxRetries, a.cfg.RetryBackoff(), a.logger)
}

// newCampaign wires the provider and extractor of portal p to the shared sink.
func (a *app) newCampaign(_ context.Context, p domain.Portal) (*crawler.Campaign, error) {
	provider, err := crawler.NewProvider(a.cfg.Provider, p, crawler.ProviderOptions{
		BaseURL:   a.cfg.BaseURL(p),
		Fetcher:   a.fetcher,
		Documents: a.documents,
		Save:      a.cfg.SaveDocuments,
		Metrics:   a.metrics,
	}, a.logger)
	if err != nil {
		return nil, err
	}
	extractor, err := extract.New(p, a.logger)
	if err != nil {
		return nil, err
	}
	return crawler.NewCampaign(p, provider, extractor, a.sink, a.categories, a.metrics, a.logger), nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
