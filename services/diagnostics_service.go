package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"feedadmin/logger"
	"feedadmin/models"
)

const diagnosticsClientName = "graph"

const (
	maxDiagnosticsBody     = 8 << 20
	defaultDiagnosticsHash = "instagram"
	defaultMediaLimit      = "20"
)

const (
	mediaFields     = "media_url,thumbnail_url,caption,id,media_type,timestamp,username,permalink,children{media_url,id,media_type,timestamp,permalink,thumbnail_url}"
	graphUserFields = "biography,id,username,website,followers_count,media_count,profile_picture_url,name"
	basicUserFields = "id,username,media_count,account_type"
	hashtagFields   = "media_url,caption,id,media_type,timestamp,permalink,children{media_url,id,media_type,permalink}"
	storyFields     = "media_url,caption,id,media_type,permalink,children{media_url,id,media_type,permalink}"
)

// DiagnosticsService는 지원 세션이 계정 상태를 확인할 수 있도록 Graph API 읽기 호출을 중계합니다.
type DiagnosticsService interface {
	Call(ctx context.Context, req models.DiagnosticsRequest) (map[string]interface{}, error)
}

// DiagnosticsConfig Graph API 엔드포인트 설정
type DiagnosticsConfig struct {
	BasicDisplayURL string
	GraphURL        string
	Timeout         time.Duration
}

type diagnosticsService struct {
	cfg     DiagnosticsConfig
	http    HTTPDoer
	metrics *Metrics
}

// NewDiagnosticsService는 DiagnosticsService 구현체를 생성합니다.
func NewDiagnosticsService(cfg DiagnosticsConfig, doer HTTPDoer, metrics *Metrics) DiagnosticsService {
	if cfg.BasicDisplayURL == "" {
		cfg.BasicDisplayURL = "https://graph.instagram.com/"
	}
	if cfg.GraphURL == "" {
		cfg.GraphURL = "https://graph.facebook.com/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	return &diagnosticsService{cfg: cfg, http: doer, metrics: metrics}
}

func (s *diagnosticsService) Call(ctx context.Context, req models.DiagnosticsRequest) (map[string]interface{}, error) {
	if strings.TrimSpace(req.AccountID) == "" {
		return nil, &MissingParameterError{Parameter: "account_id"}
	}
	if strings.TrimSpace(req.AccessToken) == "" {
		return nil, &MissingParameterError{Parameter: "access_token"}
	}

	base := s.cfg.GraphURL
	if models.IsBasicAccountType(req.AccountType) {
		base = s.cfg.BasicDisplayURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	var (
		result map[string]interface{}
		err    error
	)
	if req.Operation == models.DiagTestHashtags {
		result, err = s.testHashtags(ctx, base, req)
	} else {
		var path string
		var query url.Values
		path, query, err = s.endpoint(req)
		if err != nil {
			return nil, err
		}
		result, err = s.get(ctx, req.Operation, base, path, query, req.AccessToken)
	}
	if err != nil {
		return nil, err
	}

	rewritePaging(result)
	return result, nil
}

// endpoint는 단일 호출 작업의 경로와 쿼리를 만듭니다.
func (s *diagnosticsService) endpoint(req models.DiagnosticsRequest) (string, url.Values, error) {
	q := url.Values{}
	limit := param(req.Params, "limit", defaultMediaLimit)
	basic := models.IsBasicAccountType(req.AccountType)

	switch req.Operation {
	case models.DiagUserInfo:
		if basic {
			q.Set("fields", basicUserFields)
			return "me", q, nil
		}
		q.Set("fields", graphUserFields)
		return url.PathEscape(req.AccountID), q, nil
	case models.DiagMedia:
		q.Set("fields", mediaFields)
		q.Set("limit", limit)
		return url.PathEscape(req.AccountID) + "/media", q, nil
	case models.DiagTagged:
		q.Set("user_id", req.AccountID)
		q.Set("fields", mediaFields)
		q.Set("limit", limit)
		return url.PathEscape(req.AccountID) + "/tags", q, nil
	case models.DiagRecentHashtags:
		q.Set("limit", "40")
		return url.PathEscape(req.AccountID) + "/recently_searched_hashtags", q, nil
	case models.DiagStories:
		q.Set("fields", storyFields)
		q.Set("limit", "100")
		return url.PathEscape(req.AccountID) + "/stories", q, nil
	default:
		return "", nil, NewValidationError("operation", fmt.Sprintf("unsupported operation %q", req.Operation))
	}
}

// testHashtags는 해시태그 ID 를 찾은 뒤 그 ID 의 인기 게시물을 가져옵니다.
func (s *diagnosticsService) testHashtags(ctx context.Context, base string, req models.DiagnosticsRequest) (map[string]interface{}, error) {
	hashtag := strings.TrimPrefix(param(req.Params, "hashtag", defaultDiagnosticsHash), "#")

	search := url.Values{}
	search.Set("user_id", req.AccountID)
	search.Set("q", hashtag)
	found, err := s.get(ctx, "ig_hashtag_search", base, "ig_hashtag_search", search, req.AccessToken)
	if err != nil {
		return nil, err
	}

	hashtagID := firstDataID(found)
	if hashtagID == "" {
		return nil, &RemoteApplicationError{
			Service: diagnosticsClientName,
			Op:      "ig_hashtag_search",
			Message: fmt.Sprintf("no hashtag id found for #%s", hashtag),
			Body:    found,
		}
	}

	media := url.Values{}
	media.Set("user_id", req.AccountID)
	media.Set("fields", hashtagFields)
	media.Set("limit", param(req.Params, "limit", defaultMediaLimit))
	return s.get(ctx, "top_media", base, url.PathEscape(hashtagID)+"/top_media", media, req.AccessToken)
}

func (s *diagnosticsService) get(ctx context.Context, op, base, path string, query url.Values, accessToken string) (result map[string]interface{}, err error) {
	started := time.Now()
	defer func() { s.metrics.observeRemote(diagnosticsClientName, op, started, err) }()

	// 로그에는 토큰을 뺀 주소만 남긴다
	logged := base + path + "?" + query.Encode()
	query.Set("access_token", accessToken)
	target := base + path + "?" + query.Encode()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &TransportError{Service: diagnosticsClientName, Op: op, Err: err}
	}
	resp, err := s.http.Do(req)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"op":    op,
			"url":   logged,
			"error": redactURLError(err),
		}).Warn("Graph API request failed")
		return nil, &TransportError{Service: diagnosticsClientName, Op: op, Err: fmt.Errorf("%s", redactURLError(err))}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticsBody))
	if err != nil {
		return nil, &TransportError{Service: diagnosticsClientName, Op: op, Err: err}
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &TransportError{Service: diagnosticsClientName, Op: op, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
		}
		return nil, &TransportError{Service: diagnosticsClientName, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	if remote := remoteGraphError(op, resp.StatusCode, decoded); remote != nil {
		logger.WithFields(map[string]interface{}{
			"op":      op,
			"url":     logged,
			"status":  resp.StatusCode,
			"code":    remote.Code,
			"message": remote.Message,
		}).Info("Graph API returned an error")
		return nil, remote
	}

	logger.WithFields(map[string]interface{}{
		"op":     op,
		"url":    logged,
		"status": resp.StatusCode,
	}).Debug("Graph API call succeeded")
	return decoded, nil
}

// remoteGraphError는 {"error":{...}} 응답이나 2xx 가 아닌 응답을 RemoteApplicationError 로 바꿉니다.
func remoteGraphError(op string, status int, body map[string]interface{}) *RemoteApplicationError {
	errObj, hasError := body["error"].(map[string]interface{})
	if !hasError && status >= 200 && status <= 299 {
		return nil
	}

	remote := &RemoteApplicationError{
		Service:    diagnosticsClientName,
		Op:         op,
		StatusCode: status,
		Message:    http.StatusText(status),
	}
	if hasError {
		scrubbed := map[string]interface{}{"error": errObj}
		rewritePaging(scrubbed)
		remote.Body = scrubbed
		if msg, ok := errObj["message"].(string); ok && msg != "" {
			remote.Message = msg
		}
		switch code := errObj["code"].(type) {
		case float64:
			remote.Code = fmt.Sprintf("%d", int64(code))
		case string:
			remote.Code = code
		}
		if remote.Code == "" {
			if typ, ok := errObj["type"].(string); ok {
				remote.Code = typ
			}
		}
	}
	return remote
}

// rewritePaging은 응답 어디에 있든 paging.next / paging.previous 링크를 true 로 바꿉니다.
// 원본 링크에는 호출자의 access token 이 들어 있다.
func rewritePaging(v interface{}) {
	switch t := v.(type) {
	case map[string]interface{}:
		for key, child := range t {
			if key == "paging" {
				if paging, ok := child.(map[string]interface{}); ok {
					for _, link := range []string{"next", "previous"} {
						if _, present := paging[link]; present {
							paging[link] = true
						}
					}
				}
			}
			rewritePaging(child)
		}
	case []interface{}:
		for _, child := range t {
			rewritePaging(child)
		}
	}
}

func firstDataID(body map[string]interface{}) string {
	data, ok := body["data"].([]interface{})
	if !ok || len(data) == 0 {
		return ""
	}
	first, ok := data[0].(map[string]interface{})
	if !ok {
		return ""
	}
	switch id := first["id"].(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%d", int64(id))
	}
	return ""
}

func param(params map[string]string, key, def string) string {
	if v := strings.TrimSpace(params[key]); v != "" {
		return v
	}
	return def
}

// redactURLError는 *url.Error 에 담긴 요청 주소(토큰 포함)를 빼고 원인만 남깁니다.
func redactURLError(err error) string {
	if uerr, ok := err.(*url.Error); ok {
		return uerr.Op + ": " + uerr.Err.Error()
	}
	return err.Error()
}
