package middleware

import (
	"net/http"

	"feedadmin/logger"
	"feedadmin/models"
	"feedadmin/utils"
)

const (
	// NonceHeader 위조 방지 토큰 헤더
	NonceHeader = "X-Feed-Nonce"
	// NonceAction 설정 화면 요청에 공통으로 묶이는 액션 이름
	NonceAction = "feed_admin_settings"
)

// RequireNonce 사용자/액션에 묶인 위조 방지 토큰을 검증한다. AuthMiddleware 뒤에 둔다.
func RequireNonce(signer *utils.NonceSigner, action string) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if err := signer.Verify(r.Header.Get(NonceHeader), action, UserID(r.Context())); err != nil {
				logger.WithFields(map[string]interface{}{
					"request_id": r.Context().Value(models.CtxRequestID),
					"user_id":    UserID(r.Context()),
					"path":       r.URL.Path,
					"error":      err.Error(),
				}).Warn("Nonce check failed")
				writeJSONError(w, http.StatusForbidden, "Security check failed. Reload the page and try again.", err)
				return
			}
			next.ServeHTTP(w, r)
		}
	}
}
