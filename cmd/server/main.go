package main

import (
	"context"
	"log"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/learner-portal/api/handler"
	"github.com/fastygo/learner-portal/internal/config"
	"github.com/fastygo/learner-portal/internal/infrastructure/metrics"
	"github.com/fastygo/learner-portal/internal/infrastructure/monitor"
	redisInfra "github.com/fastygo/learner-portal/internal/infrastructure/redis"
	"github.com/fastygo/learner-portal/internal/infrastructure/upstream"
	"github.com/fastygo/learner-portal/internal/middleware"
	"github.com/fastygo/learner-portal/internal/router"
	"github.com/fastygo/learner-portal/internal/services"
	"github.com/fastygo/learner-portal/internal/services/lifecycle"
	"github.com/fastygo/learner-portal/pkg/httpcontext"
	"github.com/fastygo/learner-portal/pkg/logger"
	"github.com/fastygo/learner-portal/repository"
	boltRepo "github.com/fastygo/learner-portal/repository/bolt"
	"github.com/fastygo/learner-portal/repository/memory"
	"github.com/fastygo/learner-portal/repository/platform"
	redisRepo "github.com/fastygo/learner-portal/repository/redis"
	courseUC "github.com/fastygo/learner-portal/usecase/course"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	appMetrics := metrics.Default()

	var (
		responseCache repository.ResponseCache
		monitorOpts   = monitor.Options{
			Targets: []monitor.Target{
				{Name: platform.ServiceDiscovery, URL: cfg.Upstream.DiscoveryBaseURL},
				{Name: platform.ServiceLMS, URL: cfg.Upstream.LMSBaseURL},
				{Name: platform.ServiceEnterpriseCatalog, URL: cfg.Upstream.EnterpriseCatalogBaseURL},
				{Name: platform.ServiceLicenseManager, URL: cfg.Upstream.LicenseManagerBaseURL},
			},
			CacheBackend: cfg.Cache.Backend,
			Interval:     cfg.Upstream.MonitorInterval,
			Logger:       zapLogger,
		}
	)

	if cfg.Cache.Enabled {
		switch cfg.Cache.Backend {
		case config.CacheBackendRedis:
			redisClient, err := redisInfra.NewClient(cfg.Redis, zapLogger)
			if err != nil {
				zapLogger.Fatal("redis connection failed", zap.Error(err))
			}
			manager.Register("redis", func(ctx context.Context) error {
				return redisClient.Close()
			})
			responseCache = redisRepo.NewResponseCache(redisClient, "")
			monitorOpts.Redis = redisClient
		case config.CacheBackendBolt:
			boltCache, err := boltRepo.Open(cfg.Cache.Path)
			if err != nil {
				zapLogger.Fatal("response cache open failed", zap.Error(err), zap.String("path", cfg.Cache.Path))
			}
			manager.Register("bolt", func(ctx context.Context) error {
				return boltCache.Close()
			})
			janitor := services.NewCacheJanitor(boltCache, cfg.Cache.PruneInterval, zapLogger)
			janitor.Start()
			manager.Register("cache_janitor", func(ctx context.Context) error {
				janitor.Stop(ctx)
				return nil
			})
			responseCache = boltCache
		default:
			responseCache, err = memory.NewResponseCache(cfg.Cache.Size)
			if err != nil {
				zapLogger.Fatal("response cache init failed", zap.Error(err))
			}
		}
		zapLogger.Info("api response cache enabled",
			zap.String("backend", cfg.Cache.Backend),
			zap.Duration("ttl", cfg.Cache.TTL),
		)
	} else {
		monitorOpts.CacheBackend = "disabled"
	}

	mon := monitor.New(monitorOpts)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop(ctx)
		return nil
	})

	client := upstream.NewClient(upstream.Options{
		Name:    cfg.AppName,
		Timeout: cfg.Upstream.Timeout,
		Retry: upstream.RetryConfig{
			MaxAttempts: cfg.Upstream.MaxAttempts,
			BaseDelay:   cfg.Upstream.RetryBaseDelay,
			MaxDelay:    cfg.Upstream.RetryMaxDelay,
		},
		Tokens:   httpcontext.BearerToken,
		Cache:    responseCache,
		CacheTTL: cfg.Cache.TTL,
		Metrics:  appMetrics,
		Logger:   zapLogger,
	})

	courseUseCase := courseUC.New(courseUC.Dependencies{
		Courses:     platform.NewCourseRepository(client, cfg.Upstream.DiscoveryBaseURL),
		Enrollments: platform.NewEnrollmentRepository(client, cfg.Upstream.LMSBaseURL),
		Catalogs:    platform.NewCatalogRepository(client, cfg.Upstream.EnterpriseCatalogBaseURL),
		Licenses:    platform.NewLicenseRepository(client, cfg.Upstream.LicenseManagerBaseURL),
		Metrics:     appMetrics,
	}, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Course: apiHandler.NewCourseHandler(courseUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	auth := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	limit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimit.PerMinute,
		Burst:             cfg.RateLimit.Burst,
	})
	protect := func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return auth(limit(next))
	}
	r := router.New(handlers, protect, router.Options{
		EnableMetrics: cfg.HTTP.EnableMetrics,
		EnablePprof:   cfg.HTTP.EnablePprof,
	})

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
