package handlers

import (
	"fmt"
	"net/http"

	"feedadmin/middleware"
	"feedadmin/models"
	"feedadmin/services"
)

// LicenseHandler 라이선스 활성화/비활성화/재확인 요청 처리
type LicenseHandler struct {
	license  services.LicenseService
	activity services.ActivityLogger
}

// NewLicenseHandler 라이선스 핸들러 생성
func NewLicenseHandler(license services.LicenseService, activity services.ActivityLogger) *LicenseHandler {
	return &LicenseHandler{license: license, activity: activity}
}

// Activate 라이선스 활성화
// @Summary 라이선스 활성화
// @Description 원격 스토어에 라이선스 키를 활성화합니다. 스토어가 거절하면 success=false 와 함께 상태를 돌려줍니다.
// @Tags 라이선스
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Feed-Nonce header string true "위조 방지 토큰"
// @Param request body models.ActivateLicenseRequest true "라이선스 키"
// @Success 200 {object} models.APIResponse{data=models.LicenseRecord}
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 403 {object} models.APIResponse "권한 없음"
// @Failure 502 {object} models.APIResponse "원격 스토어 연결 실패"
// @Router /api/admin/license/activate [post]
func (h *LicenseHandler) Activate(r *http.Request) (*Result, error) {
	var req models.ActivateLicenseRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}

	record, err := h.license.Activate(r.Context(), req.LicenseKey)
	if err != nil {
		return nil, err
	}
	h.log(r, models.ActionActivateLicense, fmt.Sprintf("status=%s", record.Status))

	if !record.IsValid() {
		return failed(licenseMessage(record, "License activation failed"), record), nil
	}
	return ok("License activated", record), nil
}

// Deactivate 저장된 라이선스 비활성화
// @Summary 라이선스 비활성화
// @Tags 라이선스
// @Produce json
// @Security BearerAuth
// @Param X-Feed-Nonce header string true "위조 방지 토큰"
// @Success 200 {object} models.APIResponse{data=models.LicenseRecord}
// @Failure 502 {object} models.APIResponse "원격 스토어 연결 실패"
// @Router /api/admin/license/deactivate [post]
func (h *LicenseHandler) Deactivate(r *http.Request) (*Result, error) {
	record, deactivated, err := h.license.Deactivate(r.Context())
	if err != nil {
		return nil, err
	}
	h.log(r, models.ActionDeactivateLicense, fmt.Sprintf("status=%s deactivated=%t", record.Status, deactivated))

	if !deactivated {
		return failed(licenseMessage(record, "License deactivation failed"), record), nil
	}
	return ok("License deactivated", record), nil
}

// Recheck 메인 또는 확장 라이선스 재확인
// @Summary 라이선스 재확인
// @Tags 라이선스
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Feed-Nonce header string true "위조 방지 토큰"
// @Param request body models.RecheckLicenseRequest true "재확인 대상"
// @Success 200 {object} models.APIResponse{data=models.RecheckLicenseResponse}
// @Router /api/admin/license/recheck [post]
func (h *LicenseHandler) Recheck(r *http.Request) (*Result, error) {
	var req models.RecheckLicenseRequest
	if err := decodeRequest(r, &req); err != nil {
		return nil, err
	}

	record, changed, err := h.license.Recheck(r.Context(), req.LicenseKey, req.ItemName, req.OptionName)
	if err != nil {
		return nil, err
	}
	h.log(r, models.ActionRecheckLicense, fmt.Sprintf("option=%s status=%s changed=%t", req.OptionName, record.Status, changed))

	return ok("License rechecked", models.RecheckLicenseResponse{Record: record, Changed: changed}), nil
}

// TestConnection 라이선스 스토어 연결 확인
func (h *LicenseHandler) TestConnection(r *http.Request) (*Result, error) {
	if err := h.license.TestConnection(r.Context()); err != nil {
		return nil, err
	}
	return ok("Connection to the license store succeeded", map[string]bool{"connected": true}), nil
}

func (h *LicenseHandler) log(r *http.Request, action, details string) {
	ctx := r.Context()
	h.activity.Log(ctx, middleware.UserID(ctx), middleware.Login(ctx), action, details)
}

// licenseMessage 원격 스토어가 준 안내 문구가 있으면 그것을 쓴다
func licenseMessage(record models.LicenseRecord, fallback string) string {
	if record.Data != nil && record.Data.ErrorMsg != "" {
		return record.Data.ErrorMsg
	}
	return fallback
}
