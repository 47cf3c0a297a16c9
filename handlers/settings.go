package handlers

import (
	"fmt"
	"net/http"

	"feedadmin/logger"
	"feedadmin/middleware"
	"feedadmin/models"
	"feedadmin/services"
)

// SettingsHandler 설정 저장/내보내기/가져오기와 캐시 비우기
type SettingsHandler struct {
	settings services.SettingsService
	license  services.LicenseService
	cache    services.CacheService
	activity services.ActivityLogger
}

// NewSettingsHandler 설정 핸들러 생성
func NewSettingsHandler(settings services.SettingsService, license services.LicenseService, cache services.CacheService, activity services.ActivityLogger) *SettingsHandler {
	return &SettingsHandler{settings: settings, license: license, cache: cache, activity: activity}
}

// Save 설정 저장
// @Summary 설정 저장
// @Description 설정을 저장하고 캐시 비우기 일정을 다시 등록합니다. license_key 가 오면 비활성 키를 정리합니다.
// @Tags 설정
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Feed-Nonce header string true "위조 방지 토큰"
// @Param request body models.SaveSettingsRequest true "설정"
// @Success 200 {object} models.APIResponse{data=models.Settings}
// @Failure 400 {object} models.APIResponse "검증 실패"
// @Router /api/admin/settings [post]
func (h *SettingsHandler) Save(r *http.Request) (*Result, error) {
	var req models.SaveSettingsRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}
	ctx := r.Context()

	if err := h.settings.Save(ctx, req.Settings); err != nil {
		return nil, err
	}
	if req.LicenseKey != nil {
		cleared, err := h.license.ClearIfInactive(ctx, *req.LicenseKey)
		if err != nil {
			return nil, err
		}
		if cleared {
			logger.WithFields(map[string]interface{}{
				"request_id": ctx.Value(models.CtxRequestID),
			}).Info("Stored license reset on settings save")
		}
	}
	if err := h.cache.ApplySchedule(req.Settings); err != nil {
		return nil, err
	}

	h.log(r, models.ActionSaveSettings, "caching_type="+req.Settings.CachingType)
	return ok("Settings saved", req.Settings), nil
}

// Export 설정과 피드를 JSON 으로 내보낸다
// @Summary 설정 내보내기
// @Tags 설정
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.SettingsExport}
// @Router /api/admin/settings/export [get]
func (h *SettingsHandler) Export(r *http.Request) (*Result, error) {
	export, err := h.settings.Export(r.Context())
	if err != nil {
		return nil, err
	}
	return ok("", export), nil
}

// Import 내보낸 JSON 으로 설정을 덮어쓴다
func (h *SettingsHandler) Import(r *http.Request) (*Result, error) {
	var req models.ImportSettingsRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}

	result, err := h.settings.Import(r.Context(), req.Payload)
	if err != nil {
		return nil, err
	}
	if err := h.cache.ApplySchedule(result.Settings); err != nil {
		return nil, err
	}

	h.log(r, models.ActionImportSettings, fmt.Sprintf("feeds=%d", result.FeedsImported))
	return ok("Settings imported", result), nil
}

// ClearCache 피드 캐시 전체 비우기
// @Summary 피드 캐시 비우기
// @Tags 캐시
// @Produce json
// @Security BearerAuth
// @Param X-Feed-Nonce header string true "위조 방지 토큰"
// @Success 200 {object} models.APIResponse
// @Router /api/admin/cache/clear [post]
func (h *SettingsHandler) ClearCache(r *http.Request) (*Result, error) {
	n, err := h.cache.Clear(r.Context())
	if err != nil {
		return nil, err
	}
	h.log(r, models.ActionClearCache, fmt.Sprintf("%d entries", n))
	return ok("Feed cache cleared", map[string]int64{"cleared": n}), nil
}

func (h *SettingsHandler) log(r *http.Request, action, details string) {
	ctx := r.Context()
	h.activity.Log(ctx, middleware.UserID(ctx), middleware.Login(ctx), action, details)
}
