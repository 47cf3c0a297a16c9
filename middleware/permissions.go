package middleware

import (
	"net/http"

	"feedadmin/logger"
	"feedadmin/models"
	"feedadmin/services"
)

// RequireCapability 호출자에게 모든 권한이 있을 때만 통과시킨다.
// JWT 의 역할을 믿지 않고 매번 저장소에서 다시 확인한다.
func RequireCapability(checker services.CapabilityChecker, caps ...models.Capability) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			userID := UserID(r.Context())
			if userID == 0 {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized", nil)
				return
			}
			for _, c := range caps {
				ok, err := checker.Can(r.Context(), userID, c)
				if err != nil {
					logger.WithFields(map[string]interface{}{
						"request_id": r.Context().Value(models.CtxRequestID),
						"user_id":    userID,
						"error":      err.Error(),
					}).Error("Capability lookup failed")
					writeJSONError(w, http.StatusInternalServerError, "Failed to verify permissions", nil)
					return
				}
				if !ok {
					logger.WithFields(map[string]interface{}{
						"request_id": r.Context().Value(models.CtxRequestID),
						"user_id":    userID,
						"capability": c,
					}).Warn("Forbidden: missing capability")
					writeJSONError(w, http.StatusForbidden, "Forbidden: insufficient permission", nil)
					return
				}
			}
			next.ServeHTTP(w, r)
		}
	}
}
