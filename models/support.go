package models

import "time"

// 임시 지원 계정 고정 값
const (
	// SupportUserLogin 지원 계정 로그인 접두사 (세션마다 고유 접미사가 붙는다)
	SupportUserLogin       = "feed_support"
	SupportUserDisplayName = "Feed Support"
	SupportUserEmail       = "support@feed-admin.invalid"

	SupportMetaToken     = "support_token"
	SupportMetaCreatedAt = "support_created_at"
	SupportMetaExpiresAt = "support_expires_at"

	// SupportLoginParam 지원 로그인 링크의 쿼리 파라미터
	SupportLoginParam = "support_token"
)

// SupportSessionTTL 지원 세션 유효 기간
const SupportSessionTTL = 15 * 24 * time.Hour

// SupportSession 원격 진단용 임시 계정 세션
type SupportSession struct {
	UserID    int64  `json:"user_id"`
	Login     string `json:"login"`
	Token     string `json:"-"`
	CreatedAt int64  `json:"created_at"`
	ExpiresAt int64  `json:"expires_at"`
}

// IsExpired 만료 여부 확인
func (s SupportSession) IsExpired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}

// SupportSessionView 설정 화면에 노출되는 세션 정보
type SupportSessionView struct {
	Exists    bool   `json:"exists"`
	UserID    int64  `json:"user_id,omitempty"`
	LoginURL  string `json:"login_url,omitempty"`
	CreatedAt int64  `json:"created_at,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
	DaysLeft  int    `json:"days_left,omitempty"`
}

// DeleteSupportUserRequest 지원 계정 삭제 요청
type DeleteSupportUserRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}
