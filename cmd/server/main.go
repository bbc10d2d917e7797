package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/iliyamo/classroom-seating/internal/app"
	"github.com/iliyamo/classroom-seating/internal/config"
	"github.com/iliyamo/classroom-seating/internal/database"
	"github.com/iliyamo/classroom-seating/internal/handler"
	"github.com/iliyamo/classroom-seating/internal/metrics"
	"github.com/iliyamo/classroom-seating/internal/middleware"
	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/queue"
	"github.com/iliyamo/classroom-seating/internal/repository"
	"github.com/iliyamo/classroom-seating/internal/reveal"
	"github.com/iliyamo/classroom-seating/internal/router"
	"github.com/iliyamo/classroom-seating/internal/seating"
	"github.com/iliyamo/classroom-seating/internal/service"
)

func main() {
	cfg, err := config.Load()
	log := app.NewLogger(cfg.Env)
	defer func() { _ = log.Sync() }()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, db := openBackend(ctx, cfg, log)
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	cacheCfg := config.LoadCacheConfig()
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable, caching and rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}
	latest := repository.NewRecordCache(rdb, cacheCfg.LatestTTL)

	m, err := metrics.NewPrometheus(prometheus.DefaultRegisterer, "")
	if err != nil {
		log.Fatal("register metrics", zap.Error(err))
	}

	students := repository.NewCollection[model.Student](repository.CollectionStudents, backend)
	grids := repository.NewCollection[model.Grid](repository.CollectionGrids, backend)
	groups := repository.NewCollection[model.DeskMateGroup](repository.CollectionGroups, backend)
	records := repository.NewCollection[model.SeatingRecord](repository.CollectionRecords, backend)
	sh := seating.NewShuffler(nil)

	deps := service.FillDeps{
		Grids: grids, Students: students, Groups: groups, Records: records,
		Cache: latest, Metrics: m, Shuffler: sh,
	}
	if pub := queue.NewPublisher(cfg.AMQPURL, log); pub != nil {
		deps.Events = pub
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.EventLogDir, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("event consumer stopped", zap.Error(err))
			}
		}()
	} else {
		log.Info("RABBITMQ_URL not set, seating events disabled")
	}
	fills := service.NewFillService(deps, log)

	rc := config.LoadRevealConfig()
	reveals := service.NewRevealService(fills, grids, students, reveal.Config{
		Speed:             rc.Speed,
		ShuffleCount:      rc.ShuffleCount,
		PauseBetweenSeats: rc.PauseBetweenSeats,
		SpeedMultiplier:   rc.SpeedMultiplier,
	}, sh, m, log)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, log),
		Grids:    handler.NewGridHandler(service.NewGridService(grids, latest, log), log),
		Students: handler.NewStudentHandler(service.NewStudentService(students, groups, log), log),
		Groups:   handler.NewGroupHandler(service.NewGroupService(groups, students, sh, log), log),
		Seating:  handler.NewSeatingHandler(fills, log),
		Reveal:   handler.NewRevealHandler(reveals, log),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log.Named("http")))
	opt := router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.NewRedisCache(cacheCfg, rdb, log),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
	}
	router.RegisterRoutes(e, h, opt)
	router.RegisterTeacher(e, h, opt)

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	reveals.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
}

// openBackend picks the document store.  MySQL runs pending migrations
// first when MIGRATE_ON_START is set.
func openBackend(ctx context.Context, cfg config.Config, log *zap.Logger) (repository.Backend, *sql.DB) {
	if cfg.StoreDriver != config.DriverMySQL {
		log.Info("using in-memory store")
		return repository.NewMemoryBackend(), nil
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	if cfg.MigrateOnStart {
		mig, err := database.NewMigrator(db, log)
		if err != nil {
			log.Fatal("init migrations", zap.Error(err))
		}
		if err := mig.Run(ctx); err != nil {
			log.Fatal("run migrations", zap.Error(err))
		}
		if v, err := mig.Version(ctx); err == nil {
			log.Info("schema ready", zap.Int64("version", v))
		}
	}
	return repository.NewMySQLBackend(db), db
}
