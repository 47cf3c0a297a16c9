package models

// ActivityLog 관리자 활동 로그
type ActivityLog struct {
	ID        string `json:"id" db:"id"`
	UserID    int64  `json:"user_id" db:"user_id"`
	Login     string `json:"login" db:"login"`
	Action    string `json:"action" db:"action"`
	Details   string `json:"details" db:"details"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// 관리자 활동 액션 상수
const (
	ActionLogin              = "login"
	ActionActivateLicense    = "activate_license"
	ActionDeactivateLicense  = "deactivate_license"
	ActionRecheckLicense     = "recheck_license"
	ActionSaveSettings       = "save_settings"
	ActionImportSettings     = "import_settings"
	ActionClearCache         = "clear_cache"
	ActionDeleteSource       = "delete_source"
	ActionCreateSupportUser  = "create_support_user"
	ActionDeleteSupportUser  = "delete_support_user"
	ActionSupportLogin       = "support_login"
	ActionExpireSupportUser  = "expire_support_user"
	ActionScheduledCacheWipe = "scheduled_cache_clear"
)
