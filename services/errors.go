package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound는 계정이 존재하지 않을 때 반환됩니다.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserLoginConflict는 동일한 로그인 이름이 이미 존재할 때 반환됩니다.
	ErrUserLoginConflict = errors.New("user login already exists")
	// ErrSourceNotFound는 연결 계정이 존재하지 않을 때 반환됩니다.
	ErrSourceNotFound = errors.New("source not found")
	// ErrInvalidCredentials는 로그인 정보가 맞지 않을 때 반환됩니다.
	ErrInvalidCredentials = errors.New("invalid login or password")
)

// PermissionError 호출자에게 필요한 권한이 없음
type PermissionError struct {
	Capability string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s capability required", e.Capability)
}

// ValidationError 필수 입력 누락 또는 형식 오류
type ValidationError struct {
	Field   string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError 단일 필드 검증 실패 생성
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// MissingParameterError 진단 호출에 필요한 파라미터 누락 (ValidationError 의 일종)
type MissingParameterError struct {
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Parameter)
}

// Unwrap lets errors.As match *ValidationError.
func (e *MissingParameterError) Unwrap() error {
	return &ValidationError{Field: e.Parameter, Message: "is required"}
}

// TransportError 원격 호출이 네트워크/HTTP 계층에서 실패함
type TransportError struct {
	Service string
	Op      string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: transport failure: %v", e.Service, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteApplicationError 원격 엔드포인트가 구조화된 에러 응답을 돌려줌
type RemoteApplicationError struct {
	Service    string
	Op         string
	StatusCode int
	Code       string
	Message    string
	Body       map[string]interface{}
}

func (e *RemoteApplicationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "remote error"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %s (%s)", e.Service, e.Op, msg, e.Code)
	}
	return fmt.Sprintf("%s %s: %s", e.Service, e.Op, msg)
}

// NotFoundError 토큰/레코드 조회 실패
type NotFoundError struct {
	Resource string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}
