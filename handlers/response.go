package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"feedadmin/logger"
	"feedadmin/models"
	"feedadmin/services"
	"feedadmin/utils"
)

// maxBodyBytes 요청 본문 최대 크기 (설정 가져오기 전문 포함)
const maxBodyBytes = 4 << 20

// Result 핸들러가 돌려주는 응답 내용
type Result struct {
	Status  int
	Message string
	Data    interface{}
	// Failed 는 원격 스토어가 요청을 거절한 것처럼 오류는 아니지만 실패인 결과
	Failed  bool
	Cookies []*http.Cookie
}

// Action 요청 하나를 처리하는 함수. 에러는 Handle 에서만 응답으로 바뀐다.
type Action func(r *http.Request) (*Result, error)

func ok(message string, data interface{}) *Result {
	return &Result{Status: http.StatusOK, Message: message, Data: data}
}

func failed(message string, data interface{}) *Result {
	return &Result{Status: http.StatusOK, Message: message, Data: data, Failed: true}
}

// Handle Action 을 http.HandlerFunc 로 감싸 {success, message, data} 로 응답한다
func Handle(action Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := action(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if result == nil {
			result = ok("", nil)
		}

		status := result.Status
		if status == 0 {
			status = http.StatusOK
		}
		for _, c := range result.Cookies {
			http.SetCookie(w, c)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if result.Failed {
			json.NewEncoder(w).Encode(models.FailureResponse(result.Message, result.Data))
			return
		}
		json.NewEncoder(w).Encode(models.SuccessResponse(result.Message, result.Data))
	}
}

// statusFor 에러 종류를 HTTP 상태와 사용자 메시지로 변환
func statusFor(err error) (int, string) {
	var (
		permErr    *services.PermissionError
		missingErr *services.MissingParameterError
		validErr   *services.ValidationError
		notFound   *services.NotFoundError
		remoteErr  *services.RemoteApplicationError
		transErr   *services.TransportError
	)

	switch {
	case errors.As(err, &permErr):
		return http.StatusForbidden, "You do not have permission to perform this action"
	case errors.As(err, &missingErr):
		return http.StatusBadRequest, missingErr.Error()
	case errors.As(err, &validErr):
		return http.StatusBadRequest, validErr.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrSourceNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, services.ErrUserLoginConflict):
		return http.StatusConflict, err.Error()
	case errors.As(err, &remoteErr):
		if remoteErr.Message != "" {
			return http.StatusBadGateway, remoteErr.Message
		}
		return http.StatusBadGateway, "Remote service returned an error"
	case errors.As(err, &transErr):
		return http.StatusBadGateway, "Could not reach the remote service. Please try again later."
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusFor(err)

	fields := map[string]interface{}{
		"request_id": r.Context().Value(models.CtxRequestID),
		"path":       r.URL.Path,
		"status":     status,
		"error":      err.Error(),
	}
	if status >= http.StatusInternalServerError {
		logger.WithFields(fields).Error("Request failed")
	} else {
		logger.WithFields(fields).Warn("Request rejected")
	}

	resp := models.APIResponse{Success: false, Message: message}
	var validErr *services.ValidationError
	if errors.As(err, &validErr) && len(validErr.Fields) > 0 {
		resp.Data = validErr.Fields
	}
	// 500 은 내부 에러 문자열을 노출하지 않는다
	if status < http.StatusInternalServerError {
		resp.Error = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// decodeRequest JSON 본문을 읽고 구조체 태그로 검증한다
func decodeRequest(r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return services.NewValidationError("body", "request body is empty")
		}
		return services.NewValidationError("body", "invalid request body: "+err.Error())
	}
	return validateRequest(dst)
}

func validateRequest(v interface{}) error {
	fields, err := utils.ValidateStruct(v)
	if err != nil {
		if fields == nil {
			return err
		}
		return &services.ValidationError{Message: err.Error(), Fields: fields}
	}
	return nil
}
