package models

// SettingsPage 설정 화면 뷰 모델 (클라이언트 템플릿에서 사용)
type SettingsPage struct {
	License            LicenseRecord      `json:"license"`
	CheckWhenExpires   bool               `json:"check_license_api_when_expires"`
	CheckPostGrace     bool               `json:"check_license_api_post_grace_period"`
	Notices            []Notice           `json:"notices"`
	Settings           Settings           `json:"settings"`
	Support            SupportSessionView `json:"support"`
	Sources            []Source           `json:"sources"`
	Feeds              []Feed             `json:"feeds"`
	NextCacheClear     int64              `json:"next_cache_clear,omitempty"`
	CacheLastClearedAt int64              `json:"cache_last_cleared_at,omitempty"`
	CacheEntries       int64              `json:"cache_entries"`
	Nonce              string             `json:"nonce"`
	CurrentUser        *User              `json:"current_user,omitempty"`
}
