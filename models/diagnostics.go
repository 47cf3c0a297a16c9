package models

// 진단 API 작업
const (
	DiagUserInfo       = "user_info"
	DiagMedia          = "media"
	DiagTagged         = "tagged"
	DiagRecentHashtags = "recently_searched_hashtags"
	DiagTestHashtags   = "test_hashtags"
	DiagStories        = "stories"
)

// DiagnosticsOperations 허용된 작업 목록
var DiagnosticsOperations = []string{
	DiagUserInfo,
	DiagMedia,
	DiagTagged,
	DiagRecentHashtags,
	DiagTestHashtags,
	DiagStories,
}

// DiagnosticsRequest 진단 API 중계 요청
type DiagnosticsRequest struct {
	AccountID   string            `json:"account_id" validate:"max=100"`
	AccessToken string            `json:"access_token" validate:"max=1024"`
	AccountType string            `json:"account_type" validate:"omitempty,oneof=basic personal business"`
	Operation   string            `json:"operation" validate:"required,oneof=user_info media tagged recently_searched_hashtags test_hashtags stories"`
	Params      map[string]string `json:"params"`
}
