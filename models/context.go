package models

// ContextKey 요청 컨텍스트 키 타입
type ContextKey string

const (
	CtxRequestID ContextKey = "request_id"
	CtxUserID    ContextKey = "user_id"
	CtxLogin     ContextKey = "login"
	CtxRole      ContextKey = "role"
)
