package handlers

import (
	"fmt"
	"net/http"

	"feedadmin/logger"
	"feedadmin/middleware"
	"feedadmin/models"
	"feedadmin/services"
)

// SourceHandler 연결 계정과 피드 조회/관리
type SourceHandler struct {
	sources  services.SourceStore
	feeds    services.FeedStore
	cache    services.CacheService
	activity services.ActivityLogger
}

// NewSourceHandler 연결 계정 핸들러 생성
func NewSourceHandler(sources services.SourceStore, feeds services.FeedStore, cache services.CacheService, activity services.ActivityLogger) *SourceHandler {
	return &SourceHandler{sources: sources, feeds: feeds, cache: cache, activity: activity}
}

// List 연결 계정 목록 (토큰 제외)
func (h *SourceHandler) List(r *http.Request) (*Result, error) {
	sources, err := h.sources.List(r.Context())
	if err != nil {
		return nil, err
	}
	return ok("", sources), nil
}

// Save 연결 계정 등록/갱신
func (h *SourceHandler) Save(r *http.Request) (*Result, error) {
	var req models.SaveSourceRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}

	src, err := h.sources.Save(r.Context(), models.Source{
		AccountID:   req.AccountID,
		AccountType: req.AccountType,
		Username:    req.Username,
		AccessToken: req.AccessToken,
		Expires:     req.Expires,
	})
	if err != nil {
		return nil, err
	}
	return ok("Source saved", src), nil
}

// Delete 연결 계정 삭제. 해당 계정의 피드 캐시도 함께 비운다.
func (h *SourceHandler) Delete(r *http.Request) (*Result, error) {
	var req models.DeleteSourceRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}
	ctx := r.Context()

	if err := h.sources.Delete(ctx, req.AccountID); err != nil {
		return nil, err
	}
	cleared, err := h.cache.ClearAccount(ctx, req.AccountID)
	if err != nil {
		// 계정은 이미 지워졌으므로 캐시는 만료에 맡긴다
		logger.WithFields(map[string]interface{}{
			"request_id": ctx.Value(models.CtxRequestID),
			"account_id": req.AccountID,
			"error":      err.Error(),
		}).Warn("Failed to clear cache for deleted source")
	}

	h.activity.Log(ctx, middleware.UserID(ctx), middleware.Login(ctx), models.ActionDeleteSource,
		fmt.Sprintf("account_id=%s cache_entries=%d", req.AccountID, cleared))
	return ok("Source deleted", nil), nil
}

// Feeds 저장된 피드 목록
func (h *SourceHandler) Feeds(r *http.Request) (*Result, error) {
	feeds, err := h.feeds.List(r.Context())
	if err != nil {
		return nil, err
	}
	return ok("", feeds), nil
}
