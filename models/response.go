package models

// APIResponse 모든 JSON 엔드포인트의 공통 봉투 ({success, message, data})
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SuccessResponse 성공 응답
func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

// FailureResponse 원격 스토어 등이 거절한 결과. 판단 근거 데이터를 함께 싣는다
func FailureResponse(message string, data interface{}) APIResponse {
	return APIResponse{Message: message, Data: data}
}

// ErrorResponse 요청 자체가 처리되지 못했을 때
func ErrorResponse(message string, err error) APIResponse {
	resp := APIResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
