package handlers

import (
	"net/http"
	"strconv"

	"feedadmin/services"
)

// ActivityHandler 관리자 활동 내역 조회
type ActivityHandler struct {
	activity services.ActivityLogger
}

// NewActivityHandler 활동 내역 핸들러 생성
func NewActivityHandler(activity services.ActivityLogger) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// Recent 최근 활동 내역
// @Summary 최근 관리자 활동
// @Tags 활동
// @Produce json
// @Security BearerAuth
// @Param limit query int false "최대 개수 (1-100, 기본 20)"
// @Success 200 {object} models.APIResponse{data=[]models.ActivityLog}
// @Router /api/admin/activity [get]
func (h *ActivityHandler) Recent(r *http.Request) (*Result, error) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	logs, err := h.activity.Recent(r.Context(), limit)
	if err != nil {
		return nil, err
	}
	return ok("", logs), nil
}
