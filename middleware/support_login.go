package middleware

import (
	"errors"
	"net/http"
	"time"

	"feedadmin/logger"
	"feedadmin/models"
	"feedadmin/services"
	"feedadmin/utils"
)

// SupportLoginConfig 지원 로그인 링크 처리 설정
type SupportLoginConfig struct {
	Support        services.SupportService
	Tokens         *utils.TokenIssuer
	Limiter        *IPRateLimiter
	Activity       services.ActivityLogger
	DiagnosticsURL string
	CookieSecure   bool
}

// SupportLogin 관리 페이지 요청에 support_token 이 있으면 다른 처리보다 먼저 가로챈다.
// 토큰이 유효하면 지원 계정으로 로그인시키고 진단 페이지로 보낸다. OptionalAuth 뒤에 둔다.
func SupportLogin(cfg SupportLoginConfig) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := r.URL.Query().Get(models.SupportLoginParam)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			requestID := r.Context().Value(models.CtxRequestID)
			ip := GetClientIP(r)
			if cfg.Limiter != nil && !cfg.Limiter.Allow(ip) {
				logger.WithFields(map[string]interface{}{
					"request_id": requestID,
					"ip":         ip,
				}).Warn("Support login rate limited")
				http.Error(w, "Too many support login attempts. Try again later.", http.StatusTooManyRequests)
				return
			}

			session, switchUser, err := cfg.Support.Login(r.Context(), UserID(r.Context()), token)
			if err != nil {
				var notFound *services.NotFoundError
				if errors.As(err, &notFound) {
					logger.WithFields(map[string]interface{}{
						"request_id": requestID,
						"ip":         ip,
					}).Warn("Support login with invalid token")
					http.Error(w, "This support link is invalid or has expired.", http.StatusForbidden)
					return
				}
				logger.WithFields(map[string]interface{}{
					"request_id": requestID,
					"error":      err.Error(),
				}).Error("Support login failed")
				http.Error(w, "Support login failed.", http.StatusInternalServerError)
				return
			}

			if switchUser {
				// 기존 세션을 먼저 끊는다
				http.SetCookie(w, ExpiredAuthCookie(cfg.CookieSecure))

				jwtToken, expiresAt, err := cfg.Tokens.IssueUntil(session.UserID, session.Login, string(models.RoleFeedSupport),
					time.Unix(session.ExpiresAt, 0))
				if err != nil {
					logger.WithFields(map[string]interface{}{
						"request_id": requestID,
						"error":      err.Error(),
					}).Error("Failed to issue support token")
					http.Error(w, "Support login failed.", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, AuthCookie(jwtToken, time.Unix(expiresAt, 0), cfg.CookieSecure))

				if cfg.Activity != nil {
					cfg.Activity.Log(r.Context(), session.UserID, session.Login, models.ActionSupportLogin, "ip="+ip)
				}
				logger.WithFields(map[string]interface{}{
					"request_id": requestID,
					"user_id":    session.UserID,
					"ip":         ip,
				}).Info("Support session login")
			}

			http.Redirect(w, r, cfg.DiagnosticsURL, http.StatusFound)
		}
	}
}

// AuthCookie 관리자 세션 쿠키 생성
func AuthCookie(token string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredAuthCookie 세션 쿠키를 지우는 쿠키
func ExpiredAuthCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
