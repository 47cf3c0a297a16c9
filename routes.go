package main

import (
	"encoding/json"
	"net/http"

	"feedadmin/config"
	"feedadmin/database"
	"feedadmin/handlers"
	"feedadmin/middleware"
	"feedadmin/models"
	"feedadmin/services"
	"feedadmin/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// application 라우팅에 필요한 의존성 묶음
type application struct {
	cfg      *config.Config
	registry *prometheus.Registry
	tokens   *utils.TokenIssuer
	nonces   *utils.NonceSigner
	checker  services.CapabilityChecker

	users       services.IdentityStore
	activity    services.ActivityLogger
	notices     services.NoticeService
	sources     services.SourceStore
	feeds       services.FeedStore
	cache       services.CacheService
	settings    services.SettingsService
	license     services.LicenseService
	support     services.SupportService
	diagnostics services.DiagnosticsService
}

func (app *application) routes() http.Handler {
	authH := handlers.NewAuthHandler(app.users, app.tokens, app.activity, app.cfg.Security.CookieSecure)
	licenseH := handlers.NewLicenseHandler(app.license, app.activity)
	settingsH := handlers.NewSettingsHandler(app.settings, app.license, app.cache, app.activity)
	supportH := handlers.NewSupportHandler(app.support, app.activity)
	diagnosticsH := handlers.NewDiagnosticsHandler(app.diagnostics, app.sources)
	sourceH := handlers.NewSourceHandler(app.sources, app.feeds, app.cache, app.activity)
	activityH := handlers.NewActivityHandler(app.activity)
	pageH := handlers.NewPageHandler(handlers.PageDeps{
		License:  app.license,
		Notices:  app.notices,
		Settings: app.settings,
		Support:  app.support,
		Sources:  app.sources,
		Feeds:    app.feeds,
		Cache:    app.cache,
		Users:    app.users,
		Activity: app.activity,
		Nonces:   app.nonces,
	})

	loginLimiter := middleware.NewIPRateLimiter(app.cfg.Support.LoginRPS, app.cfg.Support.LoginBurst)
	supportLimiter := middleware.NewIPRateLimiter(app.cfg.Support.LoginRPS, app.cfg.Support.LoginBurst)

	cors := middleware.CORS(app.cfg.Server.AllowedOrigins...)

	// 조회용: 인증 + manage_options
	read := func(action handlers.Action) http.HandlerFunc {
		return middleware.ChainMiddleware(
			handlers.Handle(action),
			middleware.LoggingMiddleware,
			cors,
			middleware.AuthMiddleware(app.tokens),
			middleware.RequireCapability(app.checker, models.CapManageOptions),
		)
	}
	// 변경용: 조회 조건 + nonce
	write := func(action handlers.Action) http.HandlerFunc {
		return middleware.ChainMiddleware(
			handlers.Handle(action),
			middleware.LoggingMiddleware,
			cors,
			middleware.AuthMiddleware(app.tokens),
			middleware.RequireCapability(app.checker, models.CapManageOptions),
			middleware.RequireNonce(app.nonces, middleware.NonceAction),
		)
	}

	mux := http.NewServeMux()

	// 정적 파일 서빙 (웹 프론트엔드)
	fs := http.FileServer(http.Dir(app.cfg.Server.WebDir))
	mux.Handle("/web/", http.StripPrefix("/web/", fs))

	// Swagger 문서
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// 다른 출처의 preflight 요청
	mux.HandleFunc("OPTIONS /api/", cors(func(http.ResponseWriter, *http.Request) {}))

	// Public 엔드포인트
	mux.HandleFunc("GET /health", app.healthHandler)
	mux.Handle("GET /metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	// support_token 링크는 관리 화면을 여는 모든 요청에서 인증 검사보다 먼저 가로챈다
	supportLogin := middleware.SupportLogin(middleware.SupportLoginConfig{
		Support:        app.support,
		Tokens:         app.tokens,
		Limiter:        supportLimiter,
		Activity:       app.activity,
		DiagnosticsURL: app.cfg.Support.DiagnosticsURL,
		CookieSecure:   app.cfg.Security.CookieSecure,
	})
	mux.HandleFunc("GET /admin",
		middleware.ChainMiddleware(
			func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/web/", http.StatusFound)
			},
			middleware.LoggingMiddleware,
			middleware.OptionalAuth(app.tokens),
			supportLogin,
		))

	// 인증 API
	mux.HandleFunc("POST /api/admin/login",
		middleware.ChainMiddleware(
			handlers.Handle(authH.Login),
			middleware.LoggingMiddleware,
			cors,
			loginLimiter.Handler,
		))
	mux.HandleFunc("POST /api/admin/logout",
		middleware.ChainMiddleware(
			handlers.Handle(authH.Logout),
			middleware.LoggingMiddleware,
			cors,
		))
	mux.HandleFunc("GET /api/admin/me",
		middleware.ChainMiddleware(
			handlers.Handle(authH.Me),
			middleware.LoggingMiddleware,
			cors,
			middleware.AuthMiddleware(app.tokens),
		))

	// 설정 화면
	mux.HandleFunc("GET /api/admin/settings/page",
		middleware.ChainMiddleware(
			handlers.Handle(pageH.Settings),
			middleware.LoggingMiddleware,
			cors,
			middleware.OptionalAuth(app.tokens),
			supportLogin,
			middleware.AuthMiddleware(app.tokens),
			middleware.RequireCapability(app.checker, models.CapManageOptions),
		))
	mux.HandleFunc("POST /api/admin/settings", write(settingsH.Save))
	mux.HandleFunc("GET /api/admin/settings/export", read(settingsH.Export))
	mux.HandleFunc("POST /api/admin/settings/import", write(settingsH.Import))
	mux.HandleFunc("POST /api/admin/cache/clear", write(settingsH.ClearCache))

	// 라이선스
	mux.HandleFunc("POST /api/admin/license/activate", write(licenseH.Activate))
	mux.HandleFunc("POST /api/admin/license/deactivate", write(licenseH.Deactivate))
	mux.HandleFunc("POST /api/admin/license/recheck", write(licenseH.Recheck))
	mux.HandleFunc("POST /api/admin/license/test-connection", write(licenseH.TestConnection))

	// 진단 / 지원 계정
	mux.HandleFunc("POST /api/admin/diagnostics", write(diagnosticsH.Relay))
	mux.HandleFunc("POST /api/admin/support", write(supportH.Create))
	mux.HandleFunc("POST /api/admin/support/delete", write(supportH.Delete))

	// 연결 계정 / 피드 / 활동 내역
	mux.HandleFunc("GET /api/admin/sources", read(sourceH.List))
	mux.HandleFunc("POST /api/admin/sources", write(sourceH.Save))
	mux.HandleFunc("POST /api/admin/sources/delete", write(sourceH.Delete))
	mux.HandleFunc("GET /api/admin/feeds", read(sourceH.Feeds))
	mux.HandleFunc("GET /api/admin/activity", read(activityH.Recent))

	return mux
}

// healthHandler 헬스체크 핸들러
func (app *application) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := database.DB.PingContext(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(models.ErrorResponse("Database unavailable", nil))
		return
	}
	json.NewEncoder(w).Encode(models.SuccessResponse("Server is healthy", nil))
}
