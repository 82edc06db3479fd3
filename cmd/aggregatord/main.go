package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	hhttp "feedcore/internal/handler/http"
	"feedcore/internal/handler/http/job"
	"feedcore/internal/handler/http/node"
	"feedcore/internal/handler/http/requestid"
	"feedcore/internal/handler/http/searchfolder"
	"feedcore/internal/handler/http/subscription"
	"feedcore/internal/infra/adapter/persistence/memory"
	pgRepo "feedcore/internal/infra/adapter/persistence/postgres"
	"feedcore/internal/infra/db"
	"feedcore/internal/infra/parser"
	"feedcore/internal/infra/runner"
	infraScheduler "feedcore/internal/infra/scheduler"
	"feedcore/internal/infra/transport"
	"feedcore/internal/infra/worker"
	"feedcore/internal/pkg/config"
	"feedcore/internal/repository"
	"feedcore/internal/usecase/favicon"
	"feedcore/internal/usecase/feedlist"
	"feedcore/internal/usecase/merge"
	"feedcore/internal/usecase/rules"
	usecaseScheduler "feedcore/internal/usecase/scheduler"
	sigemit "feedcore/internal/usecase/signal"
	"feedcore/internal/usecase/update"
)

// store bundles every repository this daemon depends on, satisfied either
// by the postgres adapters or the in-memory facades depending on whether
// DATABASE_URL is set.
type store struct {
	nodes         repository.NodeRepository
	subscriptions repository.SubscriptionRepository
	items         repository.ItemRepository
	favicons      repository.FaviconRepository
	searchFolders repository.SearchFolderRepository
}

func main() {
	logger := initLogger()

	workerMetrics := worker.NewWorkerMetrics()
	workerMetrics.MustRegister()

	workerConfig, err := worker.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("favicon_max_concurrent", workerConfig.FaviconMaxConcurrent),
		slog.Duration("crawl_timeout", workerConfig.CrawlTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	st, closeStore := initStore(logger)
	defer closeStore()

	transportClient := transport.New(workerConfig.CrawlTimeout, "feedcore-aggregatord/1.0")
	jobRunner := runner.New(transportClient, workerConfig.CrawlTimeout)
	defer jobRunner.Close()

	p := parser.New("feedcore-aggregatord/1.0")
	mergeEngine := merge.New(st.items, merge.SourceIDThenTitleLink{})
	defaultCacheLimit := config.LoadEnvInt("DEFAULT_CACHE_LIMIT", 200, func(v int) error {
		if v <= 0 {
			return errors.New("must be positive")
		}
		return nil
	}).Value.(int)

	updater := update.New(p, mergeEngine, st.subscriptions, defaultCacheLimit)
	updater.SetSignalEmitter(sigemit.New(nil, 4, logger))

	globalDefaultInterval := config.LoadEnvInt("DEFAULT_UPDATE_INTERVAL", 60, func(v int) error {
		if v <= 0 {
			return errors.New("must be positive")
		}
		return nil
	}).Value.(int)

	sched := usecaseScheduler.New(st.subscriptions, jobRunner, updater, logger, globalDefaultInterval)
	sched.SetFaviconGate(favicon.NewGate(st.favicons, st.subscriptions, jobRunner, logger))

	tree := feedlist.New(st.nodes)
	rulesEngine := rules.New(st.nodes, st.items, st.searchFolders)

	cronDriver, err := infraScheduler.New(workerConfig.CronSchedule, workerConfig.Timezone, workerConfig.CrawlTimeout, workerMetrics, sched.Tick)
	if err != nil {
		logger.Error("failed to build scheduler cron driver", slog.Any("error", err))
		os.Exit(1)
	}

	healthAddr := ":" + strconv.Itoa(workerConfig.HealthPort)
	healthServer := worker.NewHealthServer(healthAddr, logger)
	healthCtx, healthCancel := context.WithCancel(context.Background())
	defer healthCancel()
	go func() {
		if err := healthServer.Start(healthCtx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	cronDriver.Start()
	healthServer.SetReady(true)
	logger.Info("scheduler cron started", slog.String("schedule", workerConfig.CronSchedule), slog.String("timezone", workerConfig.Timezone))

	adminHandler := setupAdminMux(logger, tree, rulesEngine, st, jobRunner, updater)
	adminAddr := config.LoadEnvString("ADMIN_ADDR", ":8090")
	runAdminServer(logger, adminHandler, adminAddr, healthCancel, cronDriver)
}

func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// initStore wires either the postgres repositories (when DATABASE_URL is
// set) or the in-memory facades, and returns a cleanup func to close the
// underlying *sql.DB, if any.
func initStore(logger *slog.Logger) (store, func()) {
	if os.Getenv("DATABASE_URL") == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		mem := memory.New()
		return store{
			nodes:         mem.Nodes(),
			subscriptions: mem.Subscriptions(),
			items:         mem.Items(),
			favicons:      mem.Favicons(),
			searchFolders: mem.SearchFolders(),
		}, func() {}
	}

	conn := db.Open()
	if err := db.MigrateUp(conn); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	return store{
			nodes:         pgRepo.NewNodeRepo(conn),
			subscriptions: pgRepo.NewSubscriptionRepo(conn),
			items:         pgRepo.NewItemRepo(conn),
			favicons:      pgRepo.NewFaviconRepo(conn),
			searchFolders: pgRepo.NewSearchFolderRepo(conn),
		}, func() {
			if err := conn.Close(); err != nil {
				logger.Error("failed to close database", slog.Any("error", err))
			}
		}
}

// setupAdminMux registers the read-only introspection and job-control
// routes an out-of-process control surface (a desktop shell, an ops CLI)
// would drive, wrapped in the standard logging/recovery/metrics chain.
func setupAdminMux(logger *slog.Logger, tree *feedlist.Tree, rulesEngine *rules.Engine, st store, r *runner.Runner, updater *update.Updater) http.Handler {
	mux := http.NewServeMux()

	node.Register(mux, tree)
	searchfolder.Register(mux, tree, rulesEngine)
	subscription.Register(mux, st.subscriptions, st.items)
	job.Register(mux, st.subscriptions, r, updater)

	var handler http.Handler = mux
	handler = hhttp.MetricsMiddleware(handler)
	handler = hhttp.Logging(logger)(handler)
	handler = hhttp.Recover(logger)(handler)
	handler = requestid.Middleware(handler)
	return handler
}

func runAdminServer(logger *slog.Logger, handler http.Handler, addr string, cancelHealth context.CancelFunc, cronDriver *infraScheduler.CronDriver) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("admin server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("admin server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	ossignal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down aggregatord...")

	cancel()
	cancelHealth()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cronDriver.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", slog.Any("error", err))
	}
	logger.Info("aggregatord stopped")
}
