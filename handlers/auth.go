package handlers

import (
	"net/http"
	"time"

	"feedadmin/logger"
	"feedadmin/middleware"
	"feedadmin/models"
	"feedadmin/services"
	"feedadmin/utils"
)

// AuthHandler 관리자 로그인/로그아웃
type AuthHandler struct {
	users        services.IdentityStore
	tokens       *utils.TokenIssuer
	activity     services.ActivityLogger
	cookieSecure bool
}

// NewAuthHandler 인증 핸들러 생성
func NewAuthHandler(users services.IdentityStore, tokens *utils.TokenIssuer, activity services.ActivityLogger, cookieSecure bool) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, activity: activity, cookieSecure: cookieSecure}
}

// Login 관리자 로그인
// @Summary 관리자 로그인
// @Description 관리자 계정으로 로그인하여 JWT 토큰을 발급받습니다 (쿠키에도 저장)
// @Tags 인증
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "로그인 정보"
// @Success 200 {object} models.APIResponse{data=models.LoginResponse} "로그인 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Router /api/admin/login [post]
func (h *AuthHandler) Login(r *http.Request) (*Result, error) {
	var req models.LoginRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}

	user, err := h.users.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := h.tokens.Issue(user.ID, user.Login, string(user.Role))
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"request_id": r.Context().Value(models.CtxRequestID),
		"user_id":    user.ID,
		"login":      user.Login,
	}).Info("Login successful")
	h.activity.Log(r.Context(), user.ID, user.Login, models.ActionLogin, "ip="+middleware.GetClientIP(r))

	result := ok("Login successful", models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      &user,
	})
	result.Cookies = append(result.Cookies, middleware.AuthCookie(token, time.Unix(expiresAt, 0), h.cookieSecure))
	return result, nil
}

// Logout 세션 쿠키 제거
func (h *AuthHandler) Logout(r *http.Request) (*Result, error) {
	result := ok("Logged out", nil)
	result.Cookies = append(result.Cookies, middleware.ExpiredAuthCookie(h.cookieSecure))
	return result, nil
}

// Me 현재 로그인한 계정
// @Summary 현재 계정 조회
// @Tags 인증
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.User}
// @Failure 401 {object} models.APIResponse "인증 필요"
// @Router /api/admin/me [get]
func (h *AuthHandler) Me(r *http.Request) (*Result, error) {
	user, err := h.users.Get(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		return nil, err
	}
	return ok("", user), nil
}
