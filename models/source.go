package models

// 연결 계정 유형
const (
	AccountTypeBasic    = "basic"
	AccountTypePersonal = "personal"
	AccountTypeBusiness = "business"
)

// Source 연결된 인스타그램 계정
type Source struct {
	AccountID   string `json:"account_id" db:"account_id"`
	AccountType string `json:"account_type" db:"account_type"`
	Username    string `json:"username" db:"username"`
	AccessToken string `json:"-" db:"access_token"`
	Expires     int64  `json:"expires" db:"expires"`
	CreatedAt   string `json:"created_at" db:"created_at"`
	UpdatedAt   string `json:"updated_at" db:"updated_at"`
}

// IsBasicDisplay reports whether the account talks to the basic display endpoint.
func (s Source) IsBasicDisplay() bool {
	return IsBasicAccountType(s.AccountType)
}

// IsBasicAccountType 기본 디스플레이 API 대상 계정 유형인지 확인
func IsBasicAccountType(accountType string) bool {
	return accountType == AccountTypeBasic || accountType == AccountTypePersonal
}

// Feed 저장된 피드
type Feed struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Settings  string `json:"settings" db:"settings"` // JSON 문자열
	CreatedAt string `json:"created_at" db:"created_at"`
	UpdatedAt string `json:"updated_at" db:"updated_at"`
}

// DeleteSourceRequest 연결 계정 삭제 요청
type DeleteSourceRequest struct {
	AccountID string `json:"account_id" validate:"required,max=100"`
}

// SaveSourceRequest 연결 계정 등록/갱신 요청
type SaveSourceRequest struct {
	AccountID   string `json:"account_id" validate:"required,max=100"`
	AccountType string `json:"account_type" validate:"required,oneof=basic personal business"`
	Username    string `json:"username" validate:"max=255"`
	AccessToken string `json:"access_token" validate:"required,max=1024"`
	Expires     int64  `json:"expires" validate:"gte=0"`
}
