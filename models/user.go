package models

// User 관리 화면에 접근하는 계정 (관리자 또는 임시 지원 계정)
type User struct {
	ID          int64  `json:"id" db:"id"`
	Login       string `json:"login" db:"login"`
	DisplayName string `json:"display_name" db:"display_name"`
	Email       string `json:"email" db:"email"`
	Role        Role   `json:"role" db:"role"`
	Password    string `json:"-" db:"password"` // bcrypt 해시
	CreatedAt   string `json:"created_at" db:"created_at"`
	UpdatedAt   string `json:"updated_at" db:"updated_at"`
}

// NewUser 신규 계정 생성 입력
type NewUser struct {
	Login       string
	DisplayName string
	Email       string
	Role        Role
	Password    string // 평문, 저장 전 해시됨
}

// LoginRequest 로그인 요청
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=60"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse 로그인 응답
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      *User  `json:"user"`
}
