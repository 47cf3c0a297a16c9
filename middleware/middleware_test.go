package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedadmin/models"
	"feedadmin/services"
	"feedadmin/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSupport 지원 세션 서비스 대역 (Login 만 사용)
type fakeSupport struct {
	services.SupportService
	session    models.SupportSession
	switchUser bool
	err        error
	logins     int
}

func (f *fakeSupport) Login(_ context.Context, _ int64, token string) (models.SupportSession, bool, error) {
	f.logins++
	if f.err != nil {
		return models.SupportSession{}, false, f.err
	}
	return f.session, f.switchUser, nil
}

type fakeActivity struct {
	actions []string
}

func (f *fakeActivity) Log(_ context.Context, _ int64, _, action, _ string) {
	f.actions = append(f.actions, action)
}

func (f *fakeActivity) Recent(context.Context, int) ([]models.ActivityLog, error) {
	return nil, nil
}

type fakeChecker struct {
	allowed bool
}

func (f fakeChecker) Can(context.Context, int64, models.Capability) (bool, error) {
	return f.allowed, nil
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestIPRateLimiter(t *testing.T) {
	l := NewIPRateLimiter(0.001, 2)
	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestIPRateLimiterHandler(t *testing.T) {
	h := NewIPRateLimiter(0.001, 1).Handler(okHandler)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.RemoteAddr = "192.0.2.7:5555"
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestAuthMiddleware(t *testing.T) {
	tokens := utils.NewTokenIssuer("jwt-secret", time.Hour)
	token, _, err := tokens.Issue(7, "admin", string(models.RoleAdministrator))
	require.NoError(t, err)

	var seen int64
	h := AuthMiddleware(tokens)(func(w http.ResponseWriter, r *http.Request) {
		seen = UserID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 7, seen)

	seen = 0
	req = httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: token})
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.EqualValues(t, 7, seen)

	for _, header := range []string{"", "Bearer nope", "Token " + token} {
		req = httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec = httptest.NewRecorder()
		h(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestRequireCapability(t *testing.T) {
	send := func(checker services.CapabilityChecker, userID int64) int {
		h := RequireCapability(checker, models.CapManageOptions)(okHandler)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/settings", nil)
		if userID != 0 {
			req = req.WithContext(context.WithValue(req.Context(), models.CtxUserID, userID))
		}
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, send(fakeChecker{allowed: true}, 0))
	assert.Equal(t, http.StatusForbidden, send(fakeChecker{allowed: false}, 3))
	assert.Equal(t, http.StatusOK, send(fakeChecker{allowed: true}, 3))
}

func TestSupportLoginPassesThroughWithoutToken(t *testing.T) {
	support := &fakeSupport{}
	h := SupportLogin(SupportLoginConfig{Support: support})(okHandler)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, support.logins)
}

func TestSupportLoginInvalidTokenTerminates(t *testing.T) {
	support := &fakeSupport{err: &services.NotFoundError{Resource: "support session"}}
	activity := &fakeActivity{}
	called := false
	h := SupportLogin(SupportLoginConfig{
		Support:  support,
		Tokens:   utils.NewTokenIssuer("jwt-secret", time.Hour),
		Activity: activity,
	})(func(w http.ResponseWriter, r *http.Request) { called = true })

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/admin?support_token=bogus", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, called)
	assert.Empty(t, rec.Result().Cookies())
	assert.Empty(t, activity.actions)
}

func TestSupportLoginSwitchesIdentity(t *testing.T) {
	tokens := utils.NewTokenIssuer("jwt-secret", 24*time.Hour)
	session := models.SupportSession{UserID: 12, Login: "feed_support_ab12cd34", ExpiresAt: time.Now().Add(10 * time.Minute).Unix()}
	support := &fakeSupport{session: session, switchUser: true}
	activity := &fakeActivity{}
	h := SupportLogin(SupportLoginConfig{
		Support:        support,
		Tokens:         tokens,
		Activity:       activity,
		DiagnosticsURL: "/web/#/support",
	})(okHandler)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/admin?support_token=good", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/web/#/support", rec.Header().Get("Location"))
	assert.Equal(t, []string{models.ActionSupportLogin}, activity.actions)

	var issued string
	for _, c := range rec.Result().Cookies() {
		if c.Name == AuthCookieName && c.Value != "" {
			issued = c.Value
		}
	}
	require.NotEmpty(t, issued)
	claims, err := tokens.Validate(issued)
	require.NoError(t, err)
	assert.EqualValues(t, 12, claims.UserID)
	assert.Equal(t, session.Login, claims.Login)
	assert.Equal(t, string(models.RoleFeedSupport), claims.Role)
	// 세션 만료 시각을 넘어 유효한 토큰은 발급하지 않는다
	assert.LessOrEqual(t, claims.ExpiresAt.Unix(), session.ExpiresAt)
}

func TestSupportLoginAlreadySignedIn(t *testing.T) {
	support := &fakeSupport{session: models.SupportSession{UserID: 12}, switchUser: false}
	h := SupportLogin(SupportLoginConfig{Support: support, DiagnosticsURL: "/web/#/support"})(okHandler)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/admin?support_token=good", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSupportLoginRateLimited(t *testing.T) {
	support := &fakeSupport{err: &services.NotFoundError{Resource: "support session"}}
	h := SupportLogin(SupportLoginConfig{Support: support, Limiter: NewIPRateLimiter(0.001, 1)})(okHandler)

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/admin?support_token=guess", nil)
		req.RemoteAddr = "198.51.100.4:1234"
		rec := httptest.NewRecorder()
		h(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusForbidden, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
	assert.Equal(t, 1, support.logins)
}

func TestRedactQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin?support_token=abcdefghijklmnop&page=2", nil)
	out := redactQuery(req)
	assert.NotContains(t, out, "abcdefghijklmnop")
	assert.Contains(t, out, "page=2")
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4000"
	assert.Equal(t, "203.0.113.9", GetClientIP(req))

	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	assert.Equal(t, "198.51.100.1", GetClientIP(req))
}

func TestCORSReflectsAllowedOriginOnly(t *testing.T) {
	h := CORS("https://admin.example.com/")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, "https://admin.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/admin/settings", nil)
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
