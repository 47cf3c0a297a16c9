package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"feedadmin/logger"
	"feedadmin/models"
	"feedadmin/utils"

	"golang.org/x/sync/singleflight"
)

// DefaultLicenseRecheckTTL 원격 확인 결과를 신뢰하는 기간
const DefaultLicenseRecheckTTL = 90 * 24 * time.Hour

// LicenseService는 저장된 라이선스 상태와 원격 스토어 상태를 맞춥니다.
type LicenseService interface {
	Activate(ctx context.Context, licenseKey string) (models.LicenseRecord, error)
	Deactivate(ctx context.Context) (record models.LicenseRecord, deactivated bool, err error)
	Recheck(ctx context.Context, licenseKey, itemName, optionName string) (models.LicenseRecord, bool, error)
	Current(ctx context.Context) (models.LicenseRecord, error)
	EnsureFresh(ctx context.Context) (models.LicenseRecord, error)
	TestConnection(ctx context.Context) error
	ClearIfInactive(ctx context.Context, submittedKey string) (bool, error)
	RecheckFlags(ctx context.Context) (whenExpires bool, postGrace bool, err error)
}

// LicenseServiceConfig LicenseService 설정
type LicenseServiceConfig struct {
	ItemName   string
	RecheckTTL time.Duration
	Now        func() time.Time
}

type licenseService struct {
	client  LicenseClient
	options OptionsStore
	notices NoticeService
	cfg     LicenseServiceConfig
	group   singleflight.Group
}

// NewLicenseService는 LicenseService 구현체를 생성합니다.
func NewLicenseService(client LicenseClient, options OptionsStore, notices NoticeService, cfg LicenseServiceConfig) LicenseService {
	if cfg.RecheckTTL <= 0 {
		cfg.RecheckTTL = DefaultLicenseRecheckTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &licenseService{client: client, options: options, notices: notices, cfg: cfg}
}

func (s *licenseService) Activate(ctx context.Context, licenseKey string) (models.LicenseRecord, error) {
	licenseKey = strings.TrimSpace(licenseKey)
	if licenseKey == "" {
		return models.LicenseRecord{}, NewValidationError("license_key", "license key is required")
	}

	payload, err := s.client.Do(ctx, models.LicenseActionActivate, licenseKey, s.cfg.ItemName)
	if err != nil {
		return models.LicenseRecord{}, err
	}

	formatted := FormatLicenseError(payload)
	record := models.LicenseRecord{Key: licenseKey, Status: payload.License, Data: &formatted}

	// 유효하지 않으면 기존 상태를 건드리지 않는다
	if payload.License != models.LicenseStatusValid {
		logger.WithFields(map[string]interface{}{
			"license": utils.MaskSecret(licenseKey),
			"status":  payload.License,
			"error":   payload.Error,
		}).Info("License activation rejected by store")
		return record, nil
	}

	now := s.cfg.Now().Unix()
	if err := s.persistPrimary(ctx, licenseKey, payload, now); err != nil {
		return models.LicenseRecord{}, err
	}
	if err := s.notices.Remove(ctx, models.NoticeLicenseInactive, models.NoticeLicenseExpired); err != nil {
		return models.LicenseRecord{}, err
	}
	record.LastCheck = &now

	logger.WithFields(map[string]interface{}{
		"license": utils.MaskSecret(licenseKey),
		"expires": payload.Expires,
	}).Info("License activated")
	return record, nil
}

// Deactivate는 스토어가 deactivated 로 답했을 때만 저장된 키를 지우고 true 를 돌려줍니다.
func (s *licenseService) Deactivate(ctx context.Context) (models.LicenseRecord, bool, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return models.LicenseRecord{}, false, err
	}
	if current.Key == "" {
		return current, false, NewValidationError("license_key", "no license key is stored")
	}

	payload, err := s.client.Do(ctx, models.LicenseActionDeactivate, current.Key, s.cfg.ItemName)
	if err != nil {
		return models.LicenseRecord{}, false, err
	}

	if payload.License != models.LicenseStatusDeactivated {
		formatted := FormatLicenseError(payload)
		current.Data = &formatted
		logger.WithFields(map[string]interface{}{
			"license": utils.MaskSecret(current.Key),
			"status":  payload.License,
		}).Info("License deactivation rejected by store")
		return current, false, nil
	}

	if err := s.options.Delete(ctx, models.OptLicenseKey, models.OptLicenseData); err != nil {
		return models.LicenseRecord{}, false, err
	}
	if err := s.options.Set(ctx, models.OptLicenseStatus, string(models.LicenseStatusInactive)); err != nil {
		return models.LicenseRecord{}, false, err
	}

	logger.WithFields(map[string]interface{}{
		"license": utils.MaskSecret(current.Key),
	}).Info("License deactivated")
	return models.LicenseRecord{Status: models.LicenseStatusInactive}, true, nil
}

func (s *licenseService) Recheck(ctx context.Context, licenseKey, itemName, optionName string) (models.LicenseRecord, bool, error) {
	licenseKey = strings.TrimSpace(licenseKey)
	if licenseKey == "" {
		return models.LicenseRecord{}, false, NewValidationError("license_key", "license key is required")
	}
	if itemName == "" {
		itemName = s.cfg.ItemName
	}
	primary := optionName == ""

	oldStatus, err := s.storedStatus(ctx, optionName)
	if err != nil {
		return models.LicenseRecord{}, false, err
	}

	payload, err := s.client.Do(ctx, models.LicenseActionCheck, licenseKey, itemName)
	if err != nil {
		return models.LicenseRecord{}, false, err
	}

	newStatus := payload.License
	changed := oldStatus != newStatus
	formatted := FormatLicenseError(payload)
	record := models.LicenseRecord{Key: licenseKey, Status: newStatus, Data: &formatted}

	if primary {
		now := s.cfg.Now().Unix()
		if err := s.persistPrimary(ctx, licenseKey, payload, now); err != nil {
			return models.LicenseRecord{}, false, err
		}
		record.LastCheck = &now
		if err := s.applyNotices(ctx, newStatus); err != nil {
			return models.LicenseRecord{}, false, err
		}
	} else if err := s.persistExtension(ctx, optionName, licenseKey, payload); err != nil {
		return models.LicenseRecord{}, false, err
	}

	logger.WithFields(map[string]interface{}{
		"item":       itemName,
		"option":     optionName,
		"old_status": oldStatus,
		"new_status": newStatus,
		"changed":    changed,
	}).Info("License rechecked")
	return record, changed, nil
}

// applyNotices는 주 라이선스 상태에 맞게 알림과 재확인 플래그를 갱신합니다.
func (s *licenseService) applyNotices(ctx context.Context, status models.LicenseStatus) error {
	switch status {
	case models.LicenseStatusValid:
		if err := s.notices.Remove(ctx, models.NoticeLicenseInactive, models.NoticeLicenseExpired); err != nil {
			return err
		}
		if err := s.options.Set(ctx, models.OptCheckWhenExpires, "true"); err != nil {
			return err
		}
		return s.options.Set(ctx, models.OptCheckPostGrace, "true")
	case models.LicenseStatusExpired:
		if err := s.notices.Remove(ctx, models.NoticeLicenseInactive); err != nil {
			return err
		}
		return s.notices.Add(ctx, models.NoticeLicenseExpired)
	default:
		if err := s.notices.Remove(ctx, models.NoticeLicenseExpired); err != nil {
			return err
		}
		return s.notices.Add(ctx, models.NoticeLicenseInactive)
	}
}

func (s *licenseService) persistPrimary(ctx context.Context, key string, payload models.LicensePayload, checkedAt int64) error {
	if err := s.options.Set(ctx, models.OptLicenseKey, key); err != nil {
		return err
	}
	if err := s.options.Set(ctx, models.OptLicenseStatus, string(payload.License)); err != nil {
		return err
	}
	if err := s.options.SetJSON(ctx, models.OptLicenseData, payload); err != nil {
		return err
	}
	return s.options.Set(ctx, models.OptLicenseLastCheck, strconv.FormatInt(checkedAt, 10))
}

// persistExtension 확장 라이선스는 valid 일 때만 저장하고, 아니면 모두 삭제한다
func (s *licenseService) persistExtension(ctx context.Context, optionName, key string, payload models.LicensePayload) error {
	keyName := optionName + models.ExtensionKeySuffix
	statusName := optionName + models.ExtensionStatusSuffix
	dataName := optionName + models.ExtensionDataSuffix

	if payload.License != models.LicenseStatusValid {
		return s.options.Delete(ctx, keyName, statusName, dataName)
	}
	if err := s.options.Set(ctx, keyName, key); err != nil {
		return err
	}
	if err := s.options.Set(ctx, statusName, string(payload.License)); err != nil {
		return err
	}
	return s.options.SetJSON(ctx, dataName, payload)
}

func (s *licenseService) storedStatus(ctx context.Context, optionName string) (models.LicenseStatus, error) {
	name := models.OptLicenseStatus
	if optionName != "" {
		name = optionName + models.ExtensionStatusSuffix
	}
	raw, err := s.options.Get(ctx, name, "")
	if err != nil {
		return "", err
	}
	return models.ParseLicenseStatus(raw), nil
}

func (s *licenseService) Current(ctx context.Context) (models.LicenseRecord, error) {
	key, err := s.options.Get(ctx, models.OptLicenseKey, "")
	if err != nil {
		return models.LicenseRecord{}, err
	}
	status, err := s.storedStatus(ctx, "")
	if err != nil {
		return models.LicenseRecord{}, err
	}

	record := models.LicenseRecord{Key: key, Status: status}

	var payload models.LicensePayload
	found, err := s.options.GetJSON(ctx, models.OptLicenseData, &payload)
	if err != nil {
		return models.LicenseRecord{}, err
	}
	if found {
		formatted := FormatLicenseError(payload)
		record.Data = &formatted
	}

	lastCheck, ok, err := getInt64Option(ctx, s.options, models.OptLicenseLastCheck)
	if err != nil {
		return models.LicenseRecord{}, err
	}
	if ok {
		record.LastCheck = &lastCheck
	}
	return record.Normalize(), nil
}

// EnsureFresh는 마지막 확인 후 RecheckTTL 이 지났으면 동기적으로 재확인합니다.
// 원격 호출이 실패하면 저장 상태를 그대로 돌려줍니다.
func (s *licenseService) EnsureFresh(ctx context.Context) (models.LicenseRecord, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return models.LicenseRecord{}, err
	}
	if current.Key == "" || !s.isStale(current) {
		return current, nil
	}

	v, err, _ := s.group.Do("license-recheck", func() (interface{}, error) {
		record, _, err := s.Recheck(ctx, current.Key, s.cfg.ItemName, "")
		return record, err
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"license": utils.MaskSecret(current.Key),
			"error":   err.Error(),
		}).Warn("Scheduled license recheck failed; keeping stored state")
		return current, nil
	}
	return v.(models.LicenseRecord), nil
}

func (s *licenseService) isStale(record models.LicenseRecord) bool {
	if record.LastCheck == nil {
		return true
	}
	last := time.Unix(*record.LastCheck, 0)
	return s.cfg.Now().Sub(last) >= s.cfg.RecheckTTL
}

func (s *licenseService) TestConnection(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// ClearIfInactive는 설정 저장 시 제출된 키를 반영합니다.
// 키가 비었고 상태가 valid 가 아니면 키/데이터/상태를 지우고, 다른 키가 제출되면 재활성화가 필요하도록 상태를 지웁니다.
func (s *licenseService) ClearIfInactive(ctx context.Context, submittedKey string) (bool, error) {
	submittedKey = strings.TrimSpace(submittedKey)
	current, err := s.Current(ctx)
	if err != nil {
		return false, err
	}

	if submittedKey == "" {
		if current.Status == models.LicenseStatusValid && current.Key != "" {
			return false, nil
		}
		if err := s.options.Delete(ctx, models.OptLicenseKey, models.OptLicenseData, models.OptLicenseStatus); err != nil {
			return false, err
		}
		return true, nil
	}

	if submittedKey == current.Key {
		return false, nil
	}
	if err := s.options.Set(ctx, models.OptLicenseKey, submittedKey); err != nil {
		return false, err
	}
	if err := s.options.Delete(ctx, models.OptLicenseData, models.OptLicenseStatus); err != nil {
		return false, err
	}
	return true, nil
}

func (s *licenseService) RecheckFlags(ctx context.Context) (bool, bool, error) {
	whenExpires, err := getBoolOption(ctx, s.options, models.OptCheckWhenExpires)
	if err != nil {
		return false, false, err
	}
	postGrace, err := getBoolOption(ctx, s.options, models.OptCheckPostGrace)
	if err != nil {
		return false, false, err
	}
	return whenExpires, postGrace, nil
}

// FormatLicenseError는 사이트 한도 초과와 만료 두 경우에만 errorMsg 를 붙인 사본을 돌려줍니다.
func FormatLicenseError(payload models.LicensePayload) models.LicensePayload {
	out := payload.Clone()

	switch {
	case payload.Error == models.LicenseErrorNoActivationsLeft:
		out.ErrorMsg = fmt.Sprintf(
			"This license key has reached its activation limit: %s of %s sites are already active. Deactivate it on another site or upgrade your license.",
			orUnknown(string(payload.SiteCount)), orUnknown(string(payload.MaxSites)),
		)
	case payload.Error == models.LicenseErrorExpired || payload.License == models.LicenseStatusExpired:
		if strings.TrimSpace(payload.Expires) == "" {
			out.ErrorMsg = "Your license key has expired. Renew it to keep receiving updates and support."
		} else {
			out.ErrorMsg = fmt.Sprintf(
				"Your license key expired on %s. Renew it to keep receiving updates and support.",
				utils.FormatLicenseDate(payload.Expires),
			)
		}
	}
	return out
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "?"
	}
	return v
}
