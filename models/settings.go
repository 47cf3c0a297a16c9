package models

// 캐시 방식
const (
	CachingTypePage       = "page"
	CachingTypeBackground = "background"
)

// Settings 관리 화면 설정 값
type Settings struct {
	CachingType       string `json:"caching_type" yaml:"caching_type" validate:"oneof=page background"`
	CacheTime         int    `json:"cache_time" yaml:"cache_time" validate:"min=1,max=999"`
	CacheTimeUnit     string `json:"cache_time_unit" yaml:"cache_time_unit" validate:"oneof=minutes hours days"`
	CacheCronInterval string `json:"cache_cron_interval" yaml:"cache_cron_interval" validate:"oneof=30mins 1hour 12hours 24hours"`
	CacheCronTime     int    `json:"cache_cron_time" yaml:"cache_cron_time" validate:"min=1,max=12"`
	CacheCronAmPm     string `json:"cache_cron_am_pm" yaml:"cache_cron_am_pm" validate:"oneof=am pm"`
	GDPR              string `json:"gdpr" yaml:"gdpr" validate:"oneof=auto yes no"`
	CustomCSS         string `json:"custom_css" yaml:"custom_css" validate:"max=65535"`
	CustomJS          string `json:"custom_js" yaml:"custom_js" validate:"max=65535"`
	OptimizeImages    bool   `json:"optimize_images" yaml:"optimize_images"`
	UsageTracking     bool   `json:"usage_tracking" yaml:"usage_tracking"`
	PreserveSettings  bool   `json:"preserve_settings" yaml:"preserve_settings"`
}

// DefaultSettings 기본 설정
func DefaultSettings() Settings {
	return Settings{
		CachingType:       CachingTypePage,
		CacheTime:         1,
		CacheTimeUnit:     "hours",
		CacheCronInterval: "12hours",
		CacheCronTime:     1,
		CacheCronAmPm:     "am",
		GDPR:              "auto",
		OptimizeImages:    true,
	}
}

// SaveSettingsRequest 설정 저장 요청
type SaveSettingsRequest struct {
	Settings   Settings `json:"settings" validate:"required"`
	LicenseKey *string  `json:"license_key,omitempty" validate:"omitempty,max=255"`
}

// ImportSettingsRequest 설정 가져오기 요청
type ImportSettingsRequest struct {
	Payload string `json:"payload" validate:"required,json"`
}

// SettingsExport 설정 내보내기 전문
type SettingsExport struct {
	Version    int      `json:"version"`
	ExportedAt string   `json:"exported_at"`
	Settings   Settings `json:"settings"`
	Feeds      []Feed   `json:"feeds"`
}

// ImportSettingsResult 설정 가져오기 결과
type ImportSettingsResult struct {
	Settings      Settings `json:"settings"`
	FeedsImported int      `json:"feeds_imported"`
}
