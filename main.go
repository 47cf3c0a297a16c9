package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"feedadmin/config"
	"feedadmin/database"
	_ "feedadmin/docs" // Swagger 문서
	"feedadmin/logger"
	"feedadmin/models"
	"feedadmin/scheduler"
	"feedadmin/services"
	"feedadmin/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// @title Feed Admin API
// @version 1.0
// @description 인스타그램 피드 관리 화면 백엔드 (라이선스, 지원 세션, 진단 API 중계)

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT 토큰을 입력하세요. 형식: Bearer {token}

const (
	supportSweepJob   = "support_session_sweep"
	licenseRecheckJob = "license_recheck"
	redisCachePrefix  = "feedadmin:cache:"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 로거 초기화
	logConfig := logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		LogDir:     cfg.Log.Dir,
		MaxSize:    cfg.Log.MaxSizeMB * 1024 * 1024,
		MaxAge:     cfg.Log.MaxAgeDays,
		UseColor:   cfg.Log.UseColor,
		ShowCaller: cfg.Log.ShowCaller,
	}
	if err := logger.Initialize(logConfig); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}

	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Info("🚀 Feed Admin Server Starting")
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Initialize(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := database.EnsureAdmin(ctx, database.DB, cfg.Security.AdminLogin, cfg.Security.AdminPassword, cfg.Security.AdminEmail); err != nil {
		logger.Fatal("Failed to ensure administrator: %v", err)
	}

	jwtSecret := ensureSecret("jwt", cfg.Security.JWTSecret)
	nonceSecret := ensureSecret("nonce", cfg.Security.NonceSecret)

	// 메트릭 레지스트리
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := services.NewMetrics(registry)
	if err != nil {
		logger.Fatal("Failed to register metrics: %v", err)
	}

	// 서비스 계층 초기화
	sqlExecutor := services.NewSQLExecutor(database.DB)
	options := services.NewOptionsStore(sqlExecutor)
	notices := services.NewNoticeService(options)
	users := services.NewIdentityStore(sqlExecutor)
	activity := services.NewActivityLogger(sqlExecutor)
	sources := services.NewSourceStore(sqlExecutor)
	feeds := services.NewFeedStore(sqlExecutor)
	checker := services.NewCapabilityChecker(users)

	feedCache := services.NewSQLFeedCache(sqlExecutor)
	if cfg.Redis.Addr != "" {
		client, err := services.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		feedCache = services.NewRedisFeedCache(client, redisCachePrefix)
		logger.Info("Feed cache backend: redis (%s)", cfg.Redis.Addr)
	}

	sched := scheduler.New()
	cacheService := services.NewCacheService(feedCache, options, sched, activity)
	settingsService := services.NewSettingsService(options, feeds)

	licenseClient := services.NewLicenseClient(services.LicenseClientConfig{
		StoreURL: cfg.License.StoreURL,
		SiteURL:  cfg.License.SiteURL,
		Timeout:  cfg.License.Timeout,
	}, nil, metrics)
	licenseService := services.NewLicenseService(licenseClient, options, notices, services.LicenseServiceConfig{
		ItemName:   cfg.License.ItemName,
		RecheckTTL: cfg.License.RecheckTTL,
	})

	supportService := services.NewSupportService(users, checker, metrics, services.SupportServiceConfig{
		AdminURL: strings.TrimSuffix(cfg.Server.PublicURL, "/") + "/admin",
		TTL:      cfg.Support.SessionTTL,
	})

	diagnosticsService := services.NewDiagnosticsService(services.DiagnosticsConfig{
		BasicDisplayURL: cfg.Graph.BasicDisplayURL,
		GraphURL:        cfg.Graph.GraphURL,
		Timeout:         cfg.Graph.Timeout,
	}, nil, metrics)

	// 스케줄러 작업 등록
	if err := sched.Register(scheduler.Job{
		Name:     supportSweepJob,
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			swept, err := supportService.Sweep(ctx)
			if swept {
				activity.Log(ctx, 0, "system", models.ActionExpireSupportUser, "expired by scheduler")
			}
			return err
		},
	}); err != nil {
		logger.Fatal("Failed to register %s: %v", supportSweepJob, err)
	}
	if err := sched.Register(scheduler.Job{
		Name:     licenseRecheckJob,
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			_, err := licenseService.EnsureFresh(ctx)
			return err
		},
	}); err != nil {
		logger.Fatal("Failed to register %s: %v", licenseRecheckJob, err)
	}

	settings, err := settingsService.Get(ctx)
	if err != nil {
		logger.Fatal("Failed to load settings: %v", err)
	}
	if err := cacheService.ApplySchedule(settings); err != nil {
		logger.Fatal("Failed to schedule cache clearing: %v", err)
	}
	sched.Start(ctx)

	app := &application{
		cfg:         cfg,
		registry:    registry,
		tokens:      utils.NewTokenIssuer(jwtSecret, cfg.Security.TokenTTL),
		nonces:      utils.NewNonceSigner(nonceSecret, cfg.Security.NonceTTL),
		checker:     checker,
		users:       users,
		activity:    activity,
		notices:     notices,
		sources:     sources,
		feeds:       feeds,
		cache:       cacheService,
		settings:    settingsService,
		license:     licenseService,
		support:     supportService,
		diagnostics: diagnosticsService,
	}

	// 서버 설정
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown 설정
	go func() {
		<-ctx.Done()
		logger.Warn("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed: %v", err)
		}
	}()

	logger.Info("Server listening on http://localhost:%d", cfg.Server.Port)
	logger.Info("Admin Panel: %s/web/", cfg.Server.PublicURL)
	logger.Info("Swagger UI: %s/swagger/index.html", cfg.Server.PublicURL)
	logger.Info("Log directory: %s", cfg.Log.Dir)
	logger.Info("Database: %s", cfg.Database.Driver)
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed to start: %v", err)
	}
	logger.Info("Server stopped")
}

// ensureSecret 비밀 키가 설정되지 않았으면 임시 키를 만든다 (재시작하면 세션이 끊긴다)
func ensureSecret(name, value string) string {
	if value != "" {
		return value
	}
	generated, err := utils.GeneratePassword(48)
	if err != nil {
		logger.Fatal("Failed to generate %s secret: %v", name, err)
	}
	logger.Warn("No %s secret configured; using a random one for this process", name)
	return generated
}
