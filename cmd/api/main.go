package main

import (
	"context"
	"time"

	"github.com/abhishek622/interviewflow/internal/cache"
	"github.com/abhishek622/interviewflow/internal/config"
	"github.com/abhishek622/interviewflow/internal/database"
	"github.com/abhishek622/interviewflow/internal/handler"
	"github.com/abhishek622/interviewflow/internal/jobs"
	"github.com/abhishek622/interviewflow/internal/logger"
	"github.com/abhishek622/interviewflow/internal/metrics"
	"github.com/abhishek622/interviewflow/internal/notify"
	"github.com/abhishek622/interviewflow/internal/ratelimit"
	"github.com/abhishek622/interviewflow/internal/repository"
	"github.com/abhishek622/interviewflow/internal/scheduling"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

type application struct {
	Config   *config.Config
	Logger   *zap.Logger
	Handler  *handler.Handler
	Registry *prometheus.Registry
	HTTP     *metrics.HTTP
	Limiter  *ratelimit.KeyLimiter
	Reminder *jobs.ReminderJob
	Ready    func(ctx context.Context) error

	cleanup []func()
}

// backend is what a store driver provides to the engine.
type backend struct {
	store repository.Store
	apps  scheduling.ApplicationLookup
	dir   scheduling.Directory
	ready func(ctx context.Context) error
	close func()
}

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, _ := logger.NewLogger(cfg.Env)
	defer log.Sync()
	log.Info("config loaded", zap.Stringer("config", cfg))

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer app.close()

	if err := app.serve(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func newApplication(ctx context.Context, cfg *config.Config, log *zap.Logger) (*application, error) {
	app := &application{Config: cfg, Logger: log}

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app.cleanup = append(app.cleanup, b.close)
	app.Ready = b.ready

	var (
		notifier scheduling.Notifier = notify.LogNotifier{Logger: log}
		feed     handler.EventFeed
	)
	if cfg.Redis.Addr != "" {
		rdb := cache.NewRedisClient(cfg.Redis)
		if err := cache.Ping(ctx, rdb, 5*time.Second); err != nil {
			app.close()
			return nil, err
		}
		app.cleanup = append(app.cleanup, func() { _ = rdb.Close() })
		redisNotifier := notify.NewRedisNotifier(rdb, cfg.Notify.Channel, cfg.Notify.KeepLast)
		notifier, feed = redisNotifier, redisNotifier
		log.Info("publishing interview events to redis", zap.String("channel", cfg.Notify.Channel))
	}

	app.Registry = prometheus.NewRegistry()
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.HTTP = metrics.NewHTTP(app.Registry)
	domain := metrics.NewDomain(app.Registry)

	policy, err := cfg.Scheduling.Policy()
	if err != nil {
		app.close()
		return nil, err
	}

	engine := scheduling.New(b.store, b.apps, b.dir, notifier,
		scheduling.WithLogger(log),
		scheduling.WithMetrics(domain),
		scheduling.WithPolicy(policy),
	)
	app.Handler = handler.New(log, engine)
	app.Handler.Events = feed

	if cfg.Limiter.Enabled {
		app.Limiter = ratelimit.New(cfg.Limiter.RPS, cfg.Limiter.Burst)
	}

	app.Reminder = jobs.NewReminderJob(b.store, notifier, jobs.ReminderConfig{
		Enabled:  cfg.Reminder.Enabled,
		Schedule: cfg.Reminder.Schedule,
		LeadTime: cfg.Reminder.LeadTime,
	}, log, domain)

	return app, nil
}

func openBackend(ctx context.Context, cfg *config.Config, log *zap.Logger) (*backend, error) {
	if cfg.StoreDriver == config.DriverMemory {
		apps, dir := repository.NewMemoryApplications(), repository.NewMemoryDirectory()
		if cfg.SeedFile != "" {
			n, err := repository.LoadSeed(cfg.SeedFile, apps, dir)
			if err != nil {
				return nil, err
			}
			log.Info("memory store seeded", zap.String("file", cfg.SeedFile), zap.Int("records", n))
		} else {
			log.Warn("memory store started without seed data; every schedule request will miss its application")
		}
		return &backend{
			store: repository.NewMemory(),
			apps:  apps,
			dir:   dir,
			ready: func(context.Context) error { return nil },
			close: func() {},
		}, nil
	}

	pool, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("database connected and migrated")

	repo := repository.NewRepository(pool)
	return &backend{
		store: repo,
		apps:  &repo.Applications,
		dir:   &repo.Users,
		ready: pool.Ping,
		close: pool.Close,
	}, nil
}

func (app *application) close() {
	for i := len(app.cleanup) - 1; i >= 0; i-- {
		app.cleanup[i]()
	}
}
