package handlers

import (
	"errors"
	"net/http"

	"feedadmin/models"
	"feedadmin/services"
)

// DiagnosticsHandler 연결 계정으로 Graph API 를 대신 호출하는 진단 요청
type DiagnosticsHandler struct {
	diagnostics services.DiagnosticsService
	sources     services.SourceStore
}

// NewDiagnosticsHandler 진단 핸들러 생성
func NewDiagnosticsHandler(diagnostics services.DiagnosticsService, sources services.SourceStore) *DiagnosticsHandler {
	return &DiagnosticsHandler{diagnostics: diagnostics, sources: sources}
}

// Relay 진단 API 중계
// @Summary 진단 API 중계
// @Description access_token 이 없으면 저장된 연결 계정의 토큰을 사용합니다. 페이지 링크는 true 로 바뀌어 토큰이 노출되지 않습니다.
// @Tags 진단
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Feed-Nonce header string true "위조 방지 토큰"
// @Param request body models.DiagnosticsRequest true "진단 요청"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse "필수 파라미터 누락"
// @Failure 502 {object} models.APIResponse "원격 API 에러"
// @Router /api/admin/diagnostics [post]
func (h *DiagnosticsHandler) Relay(r *http.Request) (*Result, error) {
	var req models.DiagnosticsRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}

	if req.AccountID != "" && (req.AccessToken == "" || req.AccountType == "") {
		src, err := h.sources.Get(r.Context(), req.AccountID)
		switch {
		case err == nil:
			if req.AccessToken == "" {
				req.AccessToken = src.AccessToken
			}
			if req.AccountType == "" {
				req.AccountType = src.AccountType
			}
		case errors.Is(err, services.ErrSourceNotFound):
			// 토큰이 없으면 아래 호출이 누락 파라미터로 거절한다
		default:
			return nil, err
		}
	}

	data, err := h.diagnostics.Call(r.Context(), req)
	if err != nil {
		return nil, err
	}
	return ok("", data), nil
}
