package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	httpadp "pension-ledger/internal/adapter/http"
	"pension-ledger/internal/adapter/middleware"
	"pension-ledger/internal/adapter/repository/gormdb"
	"pension-ledger/internal/adapter/repository/memory"
	"pension-ledger/internal/config"
	"pension-ledger/internal/domain/uow"
	"pension-ledger/internal/infrastructure/cache"
	"pension-ledger/internal/infrastructure/db"
	"pension-ledger/internal/infrastructure/logging"
	"pension-ledger/internal/infrastructure/metrics"
	"pension-ledger/internal/usecase/admin"
	"pension-ledger/internal/usecase/disbursement"
	docuc "pension-ledger/internal/usecase/document"
	"pension-ledger/internal/usecase/enrollment"
	"pension-ledger/internal/usecase/fund"
	"pension-ledger/internal/usecase/ledger"
	"pension-ledger/internal/usecase/succession"
	"pension-ledger/pkg/clock"
	"pension-ledger/pkg/money"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	checks := map[string]httpadp.Check{}

	store, err := openStore(cfg, logger, checks)
	if err != nil {
		logger.Fatal("ledger store", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()
	checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx, rdb) }

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	conv, err := money.NewRateConverter(cfg.RateNum, cfg.RateDen)
	if err != nil {
		logger.Fatal("conversion rate", zap.Error(err))
	}

	run := ledger.NewRunner(store, clock.System(), logger, m)
	enroll := enrollment.NewUsecase(run, conv)
	docs := docuc.NewUsecase(run)
	succ := succession.NewUsecase(run, succession.Policy{FamilyPensionMonths: cfg.FamilyPensionMonths})
	funds := fund.NewUsecase(run, conv)
	disb := disbursement.NewUsecase(run, conv, m)
	adm := admin.NewUsecase(run)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover(), middleware.RequestLogger(logger))

	httpadp.Register(e, httpadp.Deps{
		Health:       httpadp.NewHandler(checks),
		Participants: httpadp.NewParticipantHandler(enroll, adm),
		Documents:    httpadp.NewDocumentHandler(docs),
		Succession:   httpadp.NewSuccessionHandler(succ),
		Pension:      httpadp.NewPensionHandler(funds, disb),
		JWTSecret:    []byte(cfg.JWTSecret),
		Redis:        rdb,
		IdempTTL:     time.Duration(cfg.IdempTTLSecs) * time.Second,
		Gatherer:     reg,
		Logger:       logger,
	})

	addr := ":" + cfg.AppPort
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", addr), zap.String("driver", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}

// openStore picks the ledger backend and registers its health probe.
func openStore(cfg *config.Config, logger *zap.Logger, checks map[string]httpadp.Check) (uow.UnitOfWork, error) {
	if cfg.DBDriver == config.DriverMemory {
		logger.Warn("ledger is in-memory; state is lost on restart")
		return memory.NewStore(), nil
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), logger)
	if err != nil {
		return nil, err
	}
	if err := gormdb.AutoMigrate(gdb); err != nil {
		return nil, err
	}
	checks["database"] = pingDB(gdb)
	return gormdb.NewGormUoW(gdb), nil
}

func pingDB(gdb *gorm.DB) httpadp.Check {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
