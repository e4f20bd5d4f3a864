package app

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/fantasy-cricket/internal/config"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/tournament"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/commentary"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/notify"
	cacherepo "github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/guard"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-cricket/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/fantasy-cricket/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/fantasy-cricket/internal/platform/cache"
	idgen "github.com/riskibarqy/fantasy-cricket/internal/platform/id"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

// App is the wired service: HTTP server, live match engine and feed.
type App struct {
	Server  *http.Server
	Matches *usecase.MatchService
	Auto    *usecase.AutoSimulator
	Feed    *httpapi.LiveFeedHub
	Webhook *notify.ResultWebhook

	logger      *logging.Logger
	db          *sqlx.DB
	unsubscribe []func()
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	repo, db, err := newTournamentRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{logger: logger, db: db}

	var standingsCache *basecache.Store
	if cfg.CacheEnabled {
		repo = cacherepo.NewTournamentRepository(repo, basecache.NewStore(cfg.CacheTTL))
		standingsCache = basecache.NewStore(cfg.CacheTTL)
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("simulation seed selected", "seed", seed, "fixed", cfg.Simulation.Seed != 0)

	stats := usecase.NewStatsService(repo, standingsCache, logger)
	a.Matches = usecase.NewMatchService(
		repo,
		stats,
		match.NewSampler(rand.New(rand.NewSource(seed))),
		rand.New(rand.NewSource(seed+1)),
		commentary.NewGenerator(seed),
		idgen.NewRandomGenerator("match"),
		usecase.MatchServiceConfig{
			DefaultOvers: cfg.Simulation.DefaultOvers,
			BatchWorkers: cfg.Simulation.BatchWorkers,
			Seed:         cfg.Simulation.Seed,
		},
		logger,
	)
	if err := a.Matches.LoadState(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("load match state: %w", err)
	}

	a.Auto = usecase.NewAutoSimulator(a.Matches, cfg.Simulation.BaseInterval, nil, logger)
	a.Feed = httpapi.NewLiveFeedHub(cfg.CORSAllowedOrigins, logger)
	a.unsubscribe = append(a.unsubscribe,
		a.Matches.Subscribe(a.Auto.HandleMatchEvent),
		a.Matches.Subscribe(a.Feed.Publish),
	)
	if cfg.Webhook.Enabled() {
		a.Webhook = notify.NewResultWebhook(notify.ResultWebhookConfig{
			URL:            cfg.Webhook.URL,
			Token:          cfg.Webhook.Token,
			Timeout:        cfg.Webhook.Timeout,
			Retries:        cfg.Webhook.Retries,
			QueueSize:      cfg.Webhook.QueueSize,
			CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
		}, logger.With("component", "result_webhook"))
		a.unsubscribe = append(a.unsubscribe, a.Matches.Subscribe(a.Webhook.HandleMatchEvent))
	}

	handler := httpapi.NewHandler(usecase.NewTournamentService(repo), a.Matches, stats, a.Auto, logger)
	router := httpapi.NewRouter(handler, a.Feed, logger, httpapi.RouterOptions{
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		CaptureRequestBody:  cfg.UptraceEnabled && cfg.UptraceCaptureRequestBody,
		RequestBodyMaxBytes: cfg.UptraceRequestBodyMaxBytes,
	})

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

// Start runs the live feed and the result webhook until ctx is done.
func (a *App) Start(ctx context.Context) {
	go a.Feed.Run(ctx)
	if a.Webhook != nil {
		go a.Webhook.Run(ctx)
	}
}

// Close stops auto simulation and releases storage. The HTTP server is shut
// down by the caller.
func (a *App) Close() error {
	if a.Auto != nil {
		a.Auto.Stop()
	}
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil

	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return crerr.Wrap(err, "close database")
	}
	return nil
}

func newTournamentRepository(ctx context.Context, cfg config.Config, logger *logging.Logger) (tournament.Repository, *sqlx.DB, error) {
	if cfg.StorageBackend != config.StoragePostgres {
		var seed []tournament.Tournament
		if cfg.Simulation.SeedData {
			seed = memory.SeedTournaments(time.Now().UTC())
		}
		logger.Info("storage backend selected", "backend", config.StorageMemory, "tournaments", len(seed))
		return memory.NewTournamentRepository(seed), nil, nil
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Simulation.SeedData {
		if err := postgres.BootstrapSeed(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("bootstrap seed: %w", err)
		}
	}
	logger.Info("storage backend selected",
		"backend", config.StoragePostgres,
		"db_name", dbNameFromURL(cfg.DBURL),
		"circuit_breaker", cfg.DBCircuitEnabled,
	)

	repo := guard.NewTournamentRepository(postgres.NewTournamentRepository(db), resilience.CircuitBreakerConfig{
		Enabled:          cfg.DBCircuitEnabled,
		FailureThreshold: cfg.DBCircuitFailureCount,
		OpenTimeout:      cfg.DBCircuitOpenTimeout,
		HalfOpenMaxReq:   cfg.DBCircuitHalfOpenMaxReq,
	})
	return repo, db, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "open postgres")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", usecase.ErrDependencyUnavailable, err)
	}
	return db, nil
}
