package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedadmin/config"
	"feedadmin/database"
	"feedadmin/middleware"
	"feedadmin/models"
	"feedadmin/scheduler"
	"feedadmin/services"
	"feedadmin/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLicenseClient 원격 스토어 호출이 없어야 하는 라우팅 테스트용
type stubLicenseClient struct{}

func (stubLicenseClient) Do(context.Context, string, string, string) (models.LicensePayload, error) {
	return models.LicensePayload{Success: true, License: models.LicenseStatusValid}, nil
}

func (stubLicenseClient) Ping(context.Context) error { return nil }

func newTestApplication(t *testing.T) (*application, services.SupportService, int64) {
	t.Helper()

	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, "sqlite"))
	t.Cleanup(func() { db.Close() })

	exec := services.NewSQLExecutor(db)
	options := services.NewOptionsStore(exec)
	notices := services.NewNoticeService(options)
	users := services.NewIdentityStore(exec)
	activity := services.NewActivityLogger(exec)
	feeds := services.NewFeedStore(exec)
	checker := services.NewCapabilityChecker(users)
	support := services.NewSupportService(users, checker, nil, services.SupportServiceConfig{AdminURL: "http://feeds.test/admin"})

	admin, err := users.Create(context.Background(), models.NewUser{
		Login:    "admin",
		Role:     models.RoleAdministrator,
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Support.LoginRPS = 10
	cfg.Support.LoginBurst = 10
	cfg.Support.DiagnosticsURL = "/web/#/support"

	return &application{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		tokens:   utils.NewTokenIssuer("jwt-secret", time.Hour),
		nonces:   utils.NewNonceSigner("nonce-secret", time.Hour),
		checker:  checker,
		users:    users,
		activity: activity,
		notices:  notices,
		sources:  services.NewSourceStore(exec),
		feeds:    feeds,
		cache:    services.NewCacheService(services.NewSQLFeedCache(exec), options, scheduler.New(), activity),
		settings: services.NewSettingsService(options, feeds),
		license: services.NewLicenseService(stubLicenseClient{}, options, notices,
			services.LicenseServiceConfig{ItemName: "Feed Pro"}),
		support:     support,
		diagnostics: services.NewDiagnosticsService(services.DiagnosticsConfig{}, nil, nil),
	}, support, admin.ID
}

func TestSettingsPageAcceptsSupportLink(t *testing.T) {
	app, support, adminID := newTestApplication(t)
	handler := app.routes()

	session, err := support.Create(context.Background(), adminID)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/settings/page", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/settings/page?support_token="+session.Token, nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/web/#/support", rec.Header().Get("Location"))

	var auth *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.AuthCookieName && c.Value != "" {
			auth = c
		}
	}
	require.NotNil(t, auth)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/settings/page", nil)
	req.AddCookie(auth)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSettingsPageRejectsUnknownSupportToken(t *testing.T) {
	app, _, _ := newTestApplication(t)

	rec := httptest.NewRecorder()
	app.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/settings/page?support_token=bogus", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}
