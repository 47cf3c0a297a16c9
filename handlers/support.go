package handlers

import (
	"fmt"
	"net/http"

	"feedadmin/middleware"
	"feedadmin/models"
	"feedadmin/services"
)

// SupportHandler 임시 지원 계정 생성/삭제
type SupportHandler struct {
	support  services.SupportService
	activity services.ActivityLogger
}

// NewSupportHandler 지원 계정 핸들러 생성
func NewSupportHandler(support services.SupportService, activity services.ActivityLogger) *SupportHandler {
	return &SupportHandler{support: support, activity: activity}
}

// Create 지원 계정 생성
// @Summary 임시 지원 계정 생성
// @Description 15일간 유효한 지원 계정과 로그인 링크를 만듭니다. 이미 있으면 새 계정으로 교체합니다.
// @Tags 지원
// @Produce json
// @Security BearerAuth
// @Param X-Feed-Nonce header string true "위조 방지 토큰"
// @Success 200 {object} models.APIResponse{data=models.SupportSessionView}
// @Failure 403 {object} models.APIResponse "권한 없음"
// @Router /api/admin/support [post]
func (h *SupportHandler) Create(r *http.Request) (*Result, error) {
	ctx := r.Context()
	session, err := h.support.Create(ctx, middleware.UserID(ctx))
	if err != nil {
		return nil, err
	}
	view, err := h.support.View(ctx)
	if err != nil {
		return nil, err
	}

	h.activity.Log(ctx, middleware.UserID(ctx), middleware.Login(ctx), models.ActionCreateSupportUser,
		fmt.Sprintf("user_id=%d expires_at=%d", session.UserID, session.ExpiresAt))
	return ok("Support user created", view), nil
}

// Delete 지원 계정 삭제
// @Summary 임시 지원 계정 삭제
// @Tags 지원
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Feed-Nonce header string true "위조 방지 토큰"
// @Param request body models.DeleteSupportUserRequest true "삭제할 계정"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse "지원 계정 아님"
// @Router /api/admin/support/delete [post]
func (h *SupportHandler) Delete(r *http.Request) (*Result, error) {
	var req models.DeleteSupportUserRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}
	ctx := r.Context()

	if err := h.support.Delete(ctx, middleware.UserID(ctx), req.UserID); err != nil {
		return nil, err
	}

	h.activity.Log(ctx, middleware.UserID(ctx), middleware.Login(ctx), models.ActionDeleteSupportUser,
		fmt.Sprintf("user_id=%d", req.UserID))
	return ok("Support user deleted", nil), nil
}
