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
	"feedadmin/utils"
)

const licenseClientName = "license"

// maxLicenseBody 원격 스토어 응답 최대 크기
const maxLicenseBody = 1 << 20

// LicenseClient는 원격 라이선스 스토어 API 호출을 추상화합니다.
type LicenseClient interface {
	Do(ctx context.Context, action, licenseKey, itemName string) (models.LicensePayload, error)
	Ping(ctx context.Context) error
}

// HTTPDoer는 테스트에서 교체 가능한 HTTP 클라이언트입니다.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// LicenseClientConfig 원격 스토어 접속 정보
type LicenseClientConfig struct {
	StoreURL string
	SiteURL  string
	Timeout  time.Duration
}

type httpLicenseClient struct {
	cfg     LicenseClientConfig
	http    HTTPDoer
	metrics *Metrics
}

// NewLicenseClient는 HTTP 기반 LicenseClient를 생성합니다. doer 가 nil 이면 기본 http.Client 를 사용합니다.
func NewLicenseClient(cfg LicenseClientConfig, doer HTTPDoer, metrics *Metrics) LicenseClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	return &httpLicenseClient{cfg: cfg, http: doer, metrics: metrics}
}

func (c *httpLicenseClient) Do(ctx context.Context, action, licenseKey, itemName string) (payload models.LicensePayload, err error) {
	started := time.Now()
	defer func() { c.metrics.observeRemote(licenseClientName, action, started, err) }()

	endpoint, err := url.Parse(c.cfg.StoreURL)
	if err != nil {
		return payload, &TransportError{Service: licenseClientName, Op: action, Err: fmt.Errorf("invalid store url: %w", err)}
	}
	q := endpoint.Query()
	q.Set("edd_action", action)
	q.Set("license", strings.TrimSpace(licenseKey))
	q.Set("item_name", itemName)
	q.Set("url", c.cfg.SiteURL)
	endpoint.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return payload, &TransportError{Service: licenseClientName, Op: action, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"action":  action,
			"license": utils.MaskSecret(licenseKey),
			"error":   err.Error(),
		}).Warn("License store request failed")
		return payload, &TransportError{Service: licenseClientName, Op: action, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLicenseBody))
	if err != nil {
		return payload, &TransportError{Service: licenseClientName, Op: action, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(strings.TrimSpace(string(body))) == 0 {
			return payload, &TransportError{Service: licenseClientName, Op: action, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
		}
		remote := &RemoteApplicationError{
			Service:    licenseClientName,
			Op:         action,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
		var decoded map[string]interface{}
		if json.Unmarshal(body, &decoded) == nil {
			remote.Body = decoded
			if code, ok := decoded["error"].(string); ok {
				remote.Code = code
			}
			if msg, ok := decoded["message"].(string); ok && msg != "" {
				remote.Message = msg
			}
		}
		return payload, remote
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return models.LicensePayload{}, &TransportError{Service: licenseClientName, Op: action, Err: fmt.Errorf("decode response: %w", err)}
	}

	logger.WithFields(map[string]interface{}{
		"action":  action,
		"license": utils.MaskSecret(licenseKey),
		"status":  payload.License,
		"success": payload.Success,
	}).Debug("License store responded")
	return payload, nil
}

// Ping은 스토어 URL 로 단순 GET 을 보내 연결 가능 여부만 확인합니다.
func (c *httpLicenseClient) Ping(ctx context.Context) (err error) {
	started := time.Now()
	defer func() { c.metrics.observeRemote(licenseClientName, "ping", started, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.StoreURL, nil)
	if err != nil {
		return &TransportError{Service: licenseClientName, Op: "ping", Err: err}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Service: licenseClientName, Op: "ping", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxLicenseBody))

	if resp.StatusCode >= 500 {
		return &RemoteApplicationError{
			Service:    licenseClientName,
			Op:         "ping",
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}
	return nil
}
