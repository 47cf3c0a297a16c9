package models

// 옵션 저장소 키
const (
	OptLicenseKey         = "license_key"
	OptLicenseStatus      = "license_status"
	OptLicenseData        = "license_data"
	OptLicenseLastCheck   = "license_last_check_timestamp"
	OptCheckWhenExpires   = "check_license_api_when_expires"
	OptCheckPostGrace     = "check_license_api_post_grace_period"
	OptAdminNotices       = "admin_notices"
	OptSettings           = "feed_settings"
	OptCacheLastClearedAt = "cache_last_cleared_at"
)

// 확장 라이선스 키 접미사
const (
	ExtensionKeySuffix    = "_license_key"
	ExtensionStatusSuffix = "_license_status"
	ExtensionDataSuffix   = "_license_data"
)

// 관리자 알림 ID
const (
	NoticeLicenseInactive = "license_inactive"
	NoticeLicenseExpired  = "license_expired"
)

// Notice 관리자 화면 알림
type Notice struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"created_at"`
}
