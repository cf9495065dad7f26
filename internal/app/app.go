package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/auth/jwt"
	"github.com/gokatarajesh/quiz-api/internal/config"
	"github.com/gokatarajesh/quiz-api/internal/db/postgres"
	"github.com/gokatarajesh/quiz-api/internal/db/queries"
	"github.com/gokatarajesh/quiz-api/internal/db/repository"
	"github.com/gokatarajesh/quiz-api/internal/history"
	"github.com/gokatarajesh/quiz-api/internal/leaderboard"
	"github.com/gokatarajesh/quiz-api/internal/logging"
	"github.com/gokatarajesh/quiz-api/internal/metrics"
	"github.com/gokatarajesh/quiz-api/internal/quiz"
	"github.com/gokatarajesh/quiz-api/internal/server"
	ws "github.com/gokatarajesh/quiz-api/pkg/http/ws"
)

// worker is a background job that runs until its context is cancelled.
type worker struct {
	name string
	run  func(ctx context.Context) error
}

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	hub   *ws.Hub
	http  *http.Server

	workers []worker
}

// New bootstraps logger, Postgres, optional Redis, services and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	pool, err := postgres.NewPool(ctx, cfg.Postgres.DSN(), postgres.PoolConfig{
		MaxConns:        cfg.Postgres.MaxConns,
		MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			pool.Close()
			redisClient.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; question cache and live leaderboard disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	q := queries.New(pool)
	userRepo := repository.NewUserRepository(q)
	quizRepo := repository.NewQuizRepository(q, postgres.NewTransactor(pool))
	questionRepo := repository.NewQuestionRepository(q)
	attemptRepo := repository.NewAttemptRepository(q)

	authSvc := auth.NewService(userRepo, auth.ServiceOptions{
		TokenConfig: jwt.TokenConfig{
			Secret:    []byte(cfg.Security.JWTSecret),
			AccessTTL: cfg.Security.AccessTokenTTL,
			Issuer:    cfg.Name,
		},
	}, logger)

	quizOpts := quiz.ServiceOptions{Metrics: m}
	if redisClient != nil {
		quizOpts.Cache = quiz.NewRedisCache(redisClient, cfg.Redis.QuestionCacheTTL)
	}
	quizSvc := quiz.NewService(quizRepo, questionRepo, quizOpts, logger)

	historyOpts := history.ServiceOptions{Metrics: m}
	hub := ws.NewHub(logger)
	var (
		lbHTTP   *leaderboard.HTTPHandler
		lbStream *leaderboard.StreamHandler
		workers  []worker
	)
	if redisClient != nil {
		lbSvc := leaderboard.NewService(redisClient, logger, leaderboard.ServiceOptions{
			TopN:          cfg.Leaderboard.TopN,
			PubSubChannel: cfg.Leaderboard.Channel,
		})
		historyOpts.Leaderboard = lbSvc
		lbHTTP = leaderboard.NewHTTPHandler(lbSvc, quizSvc, logger)
		lbStream = leaderboard.NewStreamHandler(lbSvc, quizSvc, hub, authSvc, lbSvc.TopN(), cfg.CORS.AllowedOrigins, logger)

		broadcaster := leaderboard.NewBroadcaster(redisClient, hub, lbSvc.Channel(), logger)
		workers = append(workers, worker{name: "leaderboard broadcaster", run: broadcaster.Run})
	} else {
		// untyped nils: the handlers answer 503
		lbHTTP = leaderboard.NewHTTPHandler(nil, quizSvc, logger)
		lbStream = leaderboard.NewStreamHandler(nil, quizSvc, nil, authSvc, cfg.Leaderboard.TopN, cfg.CORS.AllowedOrigins, logger)
	}

	historySvc := history.NewService(quizSvc, attemptRepo, userRepo, historyOpts, logger)

	sweeper := quiz.NewSweeper(quizRepo, cfg.Maintenance.OrphanSweepSchedule, cfg.Maintenance.OrphanGracePeriod, m, logger)
	workers = append(workers, worker{name: "orphan sweeper", run: sweeper.Run})

	checks := []server.ReadinessCheck{{Name: "postgres", Check: pool.Ping}}
	if redisClient != nil {
		checks = append(checks, server.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	router := server.NewRouter(cfg, logger, m, server.Handlers{
		Auth:        auth.NewHTTPHandlers(authSvc, logger),
		RequireAuth: auth.RequireAuth(authSvc, logger),
		Quizzes:     quiz.NewHTTPHandler(quizSvc, logger),
		History:     history.NewHTTPHandler(historySvc, logger),
		Leaderboard: lbHTTP,
		Stream:      lbStream,
	}, checks)

	return &Application{
		cfg:     cfg,
		logger:  logger,
		pool:    pool,
		redis:   redisClient,
		hub:     hub,
		http:    server.NewHTTPServer(cfg, router),
		workers: workers,
	}, nil
}

// Run starts the HTTP server and background workers and waits for
// termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	bgCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	var wg sync.WaitGroup
	a.startBackgroundWorkers(bgCtx, &wg)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	// hijacked WebSocket connections are not tracked by Shutdown
	a.hub.CloseAll()
	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	stopWorkers()
	wg.Wait()

	a.pool.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func (a *Application) startBackgroundWorkers(ctx context.Context, wg *sync.WaitGroup) {
	for _, w := range a.workers {
		wg.Add(1)
		go func(w worker) {
			defer wg.Done()
			if err := w.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Str("worker", w.name).Msg("background worker stopped")
			}
		}(w)
	}
}
