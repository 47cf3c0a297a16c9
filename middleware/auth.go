package middleware

import (
	"context"
	"net/http"
	"strings"

	"feedadmin/logger"
	"feedadmin/models"
	"feedadmin/utils"
)

// AuthCookieName 관리자 세션 쿠키 이름
const AuthCookieName = "feed_admin_token"

// tokenFromRequest Authorization 헤더를 우선하고 없으면 쿠키를 본다
func tokenFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", false
		}
		return parts[1], true
	}
	if c, err := r.Cookie(AuthCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", true
}

func withClaims(ctx context.Context, claims *utils.Claims) context.Context {
	ctx = context.WithValue(ctx, models.CtxUserID, claims.UserID)
	ctx = context.WithValue(ctx, models.CtxLogin, claims.Login)
	ctx = context.WithValue(ctx, models.CtxRole, claims.Role)
	return ctx
}

// AuthMiddleware JWT 인증 미들웨어 (Bearer 헤더 또는 쿠키)
func AuthMiddleware(tokens *utils.TokenIssuer) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Context().Value(models.CtxRequestID)

			token, wellFormed := tokenFromRequest(r)
			if !wellFormed {
				logger.WithFields(map[string]interface{}{
					"request_id": requestID,
					"ip":         GetClientIP(r),
				}).Warn("Invalid authorization header format")
				writeJSONError(w, http.StatusUnauthorized, "Invalid authorization header format", nil)
				return
			}
			if token == "" {
				logger.WithFields(map[string]interface{}{
					"request_id": requestID,
					"ip":         GetClientIP(r),
				}).Warn("Missing authorization")
				writeJSONError(w, http.StatusUnauthorized, "Authorization required", nil)
				return
			}

			// 토큰 검증
			claims, err := tokens.Validate(token)
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"request_id": requestID,
					"ip":         GetClientIP(r),
					"error":      err.Error(),
				}).Warn("Invalid or expired token")
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token", err)
				return
			}

			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"user_id":    claims.UserID,
				"login":      claims.Login,
			}).Debug("User authenticated")

			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		}
	}
}

// OptionalAuth 토큰이 유효하면 컨텍스트에 사용자 정보를 넣고, 아니면 그대로 통과시킨다
func OptionalAuth(tokens *utils.TokenIssuer) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if token, ok := tokenFromRequest(r); ok && token != "" {
				if claims, err := tokens.Validate(token); err == nil {
					r = r.WithContext(withClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		}
	}
}

// UserID 컨텍스트의 인증된 사용자 ID (없으면 0)
func UserID(ctx context.Context) int64 {
	id, _ := ctx.Value(models.CtxUserID).(int64)
	return id
}

// Login 컨텍스트의 인증된 로그인 이름
func Login(ctx context.Context) string {
	login, _ := ctx.Value(models.CtxLogin).(string)
	return login
}
