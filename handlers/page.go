package handlers

import (
	"net/http"

	"feedadmin/logger"
	"feedadmin/middleware"
	"feedadmin/models"
	"feedadmin/services"
	"feedadmin/utils"
)

// PageDeps 설정 화면 뷰 모델에 필요한 저장소/서비스 묶음
type PageDeps struct {
	License  services.LicenseService
	Notices  services.NoticeService
	Settings services.SettingsService
	Support  services.SupportService
	Sources  services.SourceStore
	Feeds    services.FeedStore
	Cache    services.CacheService
	Users    services.IdentityStore
	Activity services.ActivityLogger
	Nonces   *utils.NonceSigner
}

// PageHandler 설정 화면 진입점
type PageHandler struct {
	deps PageDeps
}

// NewPageHandler 설정 화면 핸들러 생성
func NewPageHandler(deps PageDeps) *PageHandler {
	return &PageHandler{deps: deps}
}

// Settings 설정 화면 뷰 모델
// @Summary 설정 화면 데이터
// @Description 화면 렌더링 전에 만료된 지원 계정을 정리하고, 오래된 라이선스를 재확인한 뒤 뷰 모델과 새 nonce 를 돌려줍니다.
// @Tags 설정
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.SettingsPage}
// @Router /api/admin/settings/page [get]
func (h *PageHandler) Settings(r *http.Request) (*Result, error) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)
	d := h.deps

	// 화면을 열 때마다 만료된 지원 계정을 정리한다
	swept, err := d.Support.Sweep(ctx)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": ctx.Value(models.CtxRequestID),
			"error":      err.Error(),
		}).Warn("Support session sweep failed")
	} else if swept {
		d.Activity.Log(ctx, userID, middleware.Login(ctx), models.ActionExpireSupportUser, "expired on page load")
	}

	page := models.SettingsPage{}

	if page.License, err = d.License.EnsureFresh(ctx); err != nil {
		return nil, err
	}
	if page.CheckWhenExpires, page.CheckPostGrace, err = d.License.RecheckFlags(ctx); err != nil {
		return nil, err
	}
	if page.Notices, err = d.Notices.List(ctx); err != nil {
		return nil, err
	}
	if page.Settings, err = d.Settings.Get(ctx); err != nil {
		return nil, err
	}
	if page.Support, err = d.Support.View(ctx); err != nil {
		return nil, err
	}
	if page.Sources, err = d.Sources.List(ctx); err != nil {
		return nil, err
	}
	if page.Feeds, err = d.Feeds.List(ctx); err != nil {
		return nil, err
	}
	if next, scheduled := d.Cache.NextClear(); scheduled {
		page.NextCacheClear = next.Unix()
	}
	if page.CacheLastClearedAt, err = d.Cache.LastCleared(ctx); err != nil {
		return nil, err
	}
	if page.CacheEntries, err = d.Cache.Entries(ctx); err != nil {
		return nil, err
	}
	if page.Nonce, err = d.Nonces.Create(middleware.NonceAction, userID); err != nil {
		return nil, err
	}

	user, err := d.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	page.CurrentUser = &user

	return ok("", page), nil
}
