package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"feedadmin/database"
	"feedadmin/middleware"
	"feedadmin/models"
	"feedadmin/scheduler"
	"feedadmin/services"
	"feedadmin/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLicenseClient 원격 스토어 대역
type fakeLicenseClient struct {
	respond func(action, key string) (models.LicensePayload, error)
	calls   int
}

func (f *fakeLicenseClient) Do(_ context.Context, action, key, _ string) (models.LicensePayload, error) {
	f.calls++
	return f.respond(action, key)
}

func (f *fakeLicenseClient) Ping(context.Context) error { return nil }

type testEnv struct {
	users       services.IdentityStore
	options     services.OptionsStore
	sources     services.SourceStore
	client      *fakeLicenseClient
	graphCalls  *int32
	graphTokens chan string
	nonces      *utils.NonceSigner
	adminID     int64

	license     *LicenseHandler
	settings    *SettingsHandler
	support     *SupportHandler
	diagnostics *DiagnosticsHandler
	page        *PageHandler
	sourceH     *SourceHandler
	activityH   *ActivityHandler
	checker     services.CapabilityChecker
}

func newTestEnv(t *testing.T) *testEnv {
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
	sources := services.NewSourceStore(exec)
	feeds := services.NewFeedStore(exec)
	checker := services.NewCapabilityChecker(users)
	cache := services.NewCacheService(services.NewSQLFeedCache(exec), options, scheduler.New(), activity)

	client := &fakeLicenseClient{respond: func(action, key string) (models.LicensePayload, error) {
		return models.LicensePayload{Success: true, License: models.LicenseStatusValid}, nil
	}}
	license := services.NewLicenseService(client, options, notices, services.LicenseServiceConfig{ItemName: "Feed Pro"})

	var graphCalls int32
	graphTokens := make(chan string, 8)
	graph := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&graphCalls, 1)
		graphTokens <- r.URL.Query().Get("access_token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"m1"}],"paging":{"next":"https://graph.test/next?access_token=SECRET"}}`))
	}))
	t.Cleanup(graph.Close)
	diagnostics := services.NewDiagnosticsService(services.DiagnosticsConfig{
		BasicDisplayURL: graph.URL,
		GraphURL:        graph.URL,
		Timeout:         5 * time.Second,
	}, graph.Client(), nil)

	support := services.NewSupportService(users, checker, nil, services.SupportServiceConfig{AdminURL: "http://feeds.test/admin"})
	settings := services.NewSettingsService(options, feeds)
	nonces := utils.NewNonceSigner("nonce-secret", time.Hour)

	admin, err := users.Create(context.Background(), models.NewUser{
		Login:    "admin",
		Email:    "admin@example.com",
		Role:     models.RoleAdministrator,
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	return &testEnv{
		users:       users,
		options:     options,
		sources:     sources,
		client:      client,
		graphCalls:  &graphCalls,
		graphTokens: graphTokens,
		nonces:      nonces,
		adminID:     admin.ID,
		checker:     checker,
		license:     NewLicenseHandler(license, activity),
		settings:    NewSettingsHandler(settings, license, cache, activity),
		support:     NewSupportHandler(support, activity),
		diagnostics: NewDiagnosticsHandler(diagnostics, sources),
		sourceH:     NewSourceHandler(sources, feeds, cache, activity),
		activityH:   NewActivityHandler(activity),
		page: NewPageHandler(PageDeps{
			License:  license,
			Notices:  notices,
			Settings: settings,
			Support:  support,
			Sources:  sources,
			Feeds:    feeds,
			Cache:    cache,
			Users:    users,
			Activity: activity,
			Nonces:   nonces,
		}),
	}
}

// call 인증된 관리자로 Action 을 실행하고 응답을 디코딩한다
func call(t *testing.T, action Action, userID int64, body string) (int, models.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/test", strings.NewReader(body))
	req = req.WithContext(context.WithValue(req.Context(), models.CtxUserID, userID))
	rec := httptest.NewRecorder()

	Handle(action)(rec, req)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHandleMapsErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"permission", &services.PermissionError{Capability: "manage_options"}, http.StatusForbidden},
		{"validation", services.NewValidationError("license_key", "is required"), http.StatusBadRequest},
		{"missing parameter", &services.MissingParameterError{Parameter: "access_token"}, http.StatusBadRequest},
		{"not found", &services.NotFoundError{Resource: "support session"}, http.StatusNotFound},
		{"source not found", services.ErrSourceNotFound, http.StatusNotFound},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"transport", &services.TransportError{Service: "license", Op: "check", Err: errors.New("dial tcp: timeout")}, http.StatusBadGateway},
		{"remote", &services.RemoteApplicationError{Service: "graph", Op: "media", Message: "Invalid OAuth access token"}, http.StatusBadGateway},
		{"unknown", errors.New("db is gone"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := call(t, func(*http.Request) (*Result, error) { return nil, tt.err }, 1, "")
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
		})
	}
}

func TestHandleErrorBodies(t *testing.T) {
	_, resp := call(t, func(*http.Request) (*Result, error) {
		return nil, &services.RemoteApplicationError{Service: "graph", Op: "media", Message: "Invalid OAuth access token"}
	}, 1, "")
	assert.Equal(t, "Invalid OAuth access token", resp.Message)

	_, resp = call(t, func(*http.Request) (*Result, error) { return nil, errors.New("secret internal detail") }, 1, "")
	assert.Empty(t, resp.Error)
	assert.NotContains(t, resp.Message, "secret")
}

func TestHandleFailedResult(t *testing.T) {
	status, resp := call(t, func(*http.Request) (*Result, error) {
		return failed("rejected", map[string]string{"status": "invalid"}), nil
	}, 1, "")
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, resp.Success)
	assert.Equal(t, "invalid", resp.Data.(map[string]interface{})["status"])
}

func TestDecodeRequestRejectsBadBody(t *testing.T) {
	env := newTestEnv(t)

	status, _ := call(t, env.license.Activate, env.adminID, `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, resp := call(t, env.license.Activate, env.adminID, `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, resp.Data, "license_key")
	assert.Equal(t, 0, env.client.calls)
}

func TestActivateRejectedByStore(t *testing.T) {
	env := newTestEnv(t)
	env.client.respond = func(string, string) (models.LicensePayload, error) {
		return models.LicensePayload{License: models.LicenseStatusInvalid, Error: models.LicenseErrorNoActivationsLeft, SiteCount: "3", MaxSites: "1"}, nil
	}

	status, resp := call(t, env.license.Activate, env.adminID, `{"license_key":"KEY-1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "3 of 1")

	stored, err := env.options.Get(context.Background(), models.OptLicenseKey, "")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestActivateTransportFailure(t *testing.T) {
	env := newTestEnv(t)
	env.client.respond = func(string, string) (models.LicensePayload, error) {
		return models.LicensePayload{}, &services.TransportError{Service: "license", Op: "activate_license", Err: errors.New("timeout")}
	}

	status, resp := call(t, env.license.Activate, env.adminID, `{"license_key":"KEY-1"}`)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.False(t, resp.Success)

	stored, err := env.options.Get(context.Background(), models.OptLicenseKey, "")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestActivateThenDeactivate(t *testing.T) {
	env := newTestEnv(t)
	env.client.respond = func(action, _ string) (models.LicensePayload, error) {
		if action == models.LicenseActionDeactivate {
			return models.LicensePayload{Success: true, License: models.LicenseStatusDeactivated}, nil
		}
		return models.LicensePayload{Success: true, License: models.LicenseStatusValid}, nil
	}

	_, resp := call(t, env.license.Activate, env.adminID, `{"license_key":"KEY-1"}`)
	require.True(t, resp.Success)

	_, resp = call(t, env.license.Deactivate, env.adminID, ``)
	require.True(t, resp.Success)
	assert.Equal(t, "inactive", resp.Data.(map[string]interface{})["status"])
}

func TestDeactivateRejectedForInactiveKeyReportsFailure(t *testing.T) {
	env := newTestEnv(t)
	env.client.respond = func(action, _ string) (models.LicensePayload, error) {
		return models.LicensePayload{Success: false, License: "failed"}, nil
	}
	ctx := context.Background()
	require.NoError(t, env.options.Set(ctx, models.OptLicenseKey, "KEY-1"))
	require.NoError(t, env.options.Set(ctx, models.OptLicenseStatus, string(models.LicenseStatusInactive)))

	status, resp := call(t, env.license.Deactivate, env.adminID, ``)
	assert.Equal(t, http.StatusOK, status)
	assert.False(t, resp.Success)

	stored, err := env.options.Get(ctx, models.OptLicenseKey, "")
	require.NoError(t, err)
	assert.Equal(t, "KEY-1", stored)
}

func TestDiagnosticsMissingTokenMakesNoRemoteCall(t *testing.T) {
	env := newTestEnv(t)

	status, resp := call(t, env.diagnostics.Relay, env.adminID, `{"account_id":"1784","operation":"media"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, resp.Error, "access_token")
	assert.EqualValues(t, 0, atomic.LoadInt32(env.graphCalls))
}

func TestDiagnosticsUsesStoredSourceToken(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.sources.Save(context.Background(), models.Source{
		AccountID:   "1784",
		AccountType: models.AccountTypeBusiness,
		Username:    "feeds",
		AccessToken: "SECRET",
	})
	require.NoError(t, err)

	status, resp := call(t, env.diagnostics.Relay, env.adminID, `{"account_id":"1784","operation":"media"}`)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)
	assert.Equal(t, "SECRET", <-env.graphTokens)

	encoded, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "SECRET")
	assert.Equal(t, true, resp.Data.(map[string]interface{})["paging"].(map[string]interface{})["next"])
}

func TestSettingsSaveValidation(t *testing.T) {
	env := newTestEnv(t)

	body := `{"settings":{"caching_type":"sometimes","cache_time":1,"cache_time_unit":"hours","cache_cron_interval":"1hour","cache_cron_time":1,"cache_cron_am_pm":"am","gdpr":"auto"}}`
	status, resp := call(t, env.settings.Save, env.adminID, body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, resp.Data, "caching_type")
}

func TestSettingsSaveClearsInactiveLicense(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.options.Set(ctx, models.OptLicenseKey, "OLD"))
	require.NoError(t, env.options.Set(ctx, models.OptLicenseStatus, "expired"))

	body := `{"settings":{"caching_type":"background","cache_time":1,"cache_time_unit":"hours","cache_cron_interval":"1hour","cache_cron_time":1,"cache_cron_am_pm":"am","gdpr":"auto"},"license_key":""}`
	status, resp := call(t, env.settings.Save, env.adminID, body)
	require.Equal(t, http.StatusOK, status, resp.Message)

	key, err := env.options.Get(ctx, models.OptLicenseKey, "")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestSupportCreateAndDelete(t *testing.T) {
	env := newTestEnv(t)

	status, resp := call(t, env.support.Create, env.adminID, ``)
	require.Equal(t, http.StatusOK, status, resp.Message)
	view := resp.Data.(map[string]interface{})
	assert.Equal(t, true, view["exists"])
	assert.Contains(t, view["login_url"], "http://feeds.test/admin?support_token=")

	supportUserID := int64(view["user_id"].(float64))
	status, _ = call(t, env.support.Delete, env.adminID, `{"user_id":`+jsonInt(supportUserID)+`}`)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, env.support.Delete, env.adminID, `{"user_id":`+jsonInt(supportUserID)+`}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestActivityRecentListsAdminActions(t *testing.T) {
	env := newTestEnv(t)

	status, resp := call(t, env.support.Create, env.adminID, ``)
	require.Equal(t, http.StatusOK, status, resp.Message)
	supportUserID := int64(resp.Data.(map[string]interface{})["user_id"].(float64))
	status, _ = call(t, env.support.Delete, env.adminID, `{"user_id":`+jsonInt(supportUserID)+`}`)
	require.Equal(t, http.StatusOK, status)

	status, resp = call(t, env.activityH.Recent, env.adminID, ``)
	require.Equal(t, http.StatusOK, status)

	var actions []string
	for _, item := range resp.Data.([]interface{}) {
		actions = append(actions, item.(map[string]interface{})["action"].(string))
	}
	assert.ElementsMatch(t, []string{models.ActionCreateSupportUser, models.ActionDeleteSupportUser}, actions)
}

func TestSupportCreateRequiresCapability(t *testing.T) {
	env := newTestEnv(t)
	helper, err := env.users.Create(context.Background(), models.NewUser{
		Login:    "helper",
		Role:     models.RoleFeedSupport,
		Password: "another long password",
	})
	require.NoError(t, err)

	status, _ := call(t, env.support.Create, helper.ID, ``)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSettingsPageViewModel(t *testing.T) {
	env := newTestEnv(t)

	status, resp := call(t, env.page.Settings, env.adminID, ``)
	require.Equal(t, http.StatusOK, status, resp.Message)

	page := resp.Data.(map[string]interface{})
	assert.Equal(t, "inactive", page["license"].(map[string]interface{})["status"])
	assert.Equal(t, false, page["support"].(map[string]interface{})["exists"])
	assert.Equal(t, "admin", page["current_user"].(map[string]interface{})["login"])

	nonce := page["nonce"].(string)
	assert.NoError(t, env.nonces.Verify(nonce, middleware.NonceAction, env.adminID))
	assert.Error(t, env.nonces.Verify(nonce, middleware.NonceAction, env.adminID+1))
}

func TestMutatingRouteRequiresNonce(t *testing.T) {
	env := newTestEnv(t)
	h := middleware.ChainMiddleware(
		Handle(env.settings.ClearCache),
		middleware.RequireCapability(env.checker, models.CapManageOptions),
		middleware.RequireNonce(env.nonces, middleware.NonceAction),
	)

	send := func(nonce string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/cache/clear", nil)
		req = req.WithContext(context.WithValue(req.Context(), models.CtxUserID, env.adminID))
		if nonce != "" {
			req.Header.Set(middleware.NonceHeader, nonce)
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, send(""))
	assert.Equal(t, http.StatusForbidden, send("1.2.3"))

	nonce, err := env.nonces.Create(middleware.NonceAction, env.adminID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, send(nonce))
}

func TestSourceDelete(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.sources.Save(context.Background(), models.Source{AccountID: "42", AccountType: models.AccountTypeBasic, AccessToken: "t"})
	require.NoError(t, err)

	status, _ := call(t, env.sourceH.Delete, env.adminID, `{"account_id":"42"}`)
	assert.Equal(t, http.StatusOK, status)

	_, err = env.sources.Get(context.Background(), "42")
	assert.ErrorIs(t, err, services.ErrSourceNotFound)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
