package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// LicenseStatus 원격 스토어가 돌려주는 라이선스 상태
type LicenseStatus string

// LicenseStatus 상태 상수
const (
	LicenseStatusInactive     LicenseStatus = "inactive"
	LicenseStatusValid        LicenseStatus = "valid"
	LicenseStatusExpired      LicenseStatus = "expired"
	LicenseStatusInvalid      LicenseStatus = "invalid"
	LicenseStatusDeactivated  LicenseStatus = "deactivated"
	LicenseStatusSiteInactive LicenseStatus = "site_inactive"
)

// 원격 라이선스 API 액션
const (
	LicenseActionActivate   = "activate_license"
	LicenseActionDeactivate = "deactivate_license"
	LicenseActionCheck      = "check_license"
)

// 원격 스토어 에러 코드
const (
	LicenseErrorNoActivationsLeft = "no_activations_left"
	LicenseErrorExpired           = "expired"
)

// ParseLicenseStatus normalizes a raw status string. Unknown values map to invalid.
func ParseLicenseStatus(raw string) LicenseStatus {
	switch s := LicenseStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case LicenseStatusInactive, LicenseStatusValid, LicenseStatusExpired,
		LicenseStatusInvalid, LicenseStatusDeactivated, LicenseStatusSiteInactive:
		return s
	case "":
		return LicenseStatusInactive
	default:
		return LicenseStatusInvalid
	}
}

// UnmarshalJSON tolerates non-string status values such as false.
func (s *LicenseStatus) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	raw, _ := v.(string)
	*s = ParseLicenseStatus(raw)
	return nil
}

// FlexString accepts a JSON string, number or bool and keeps its textual form.
// The store reports counts like max_sites as either 3, "3" or "unlimited".
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*f = ""
	case string:
		*f = FlexString(t)
	case float64:
		*f = FlexString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*f = FlexString(strconv.FormatBool(t))
	default:
		*f = FlexString(string(data))
	}
	return nil
}

// LicensePayload 원격 스토어 응답 전문
type LicensePayload struct {
	Success         bool          `json:"success"`
	License         LicenseStatus `json:"license"`
	Error           string        `json:"error,omitempty"`
	Expires         string        `json:"expires,omitempty"`
	ItemName        string        `json:"item_name,omitempty"`
	CustomerName    string        `json:"customer_name,omitempty"`
	CustomerEmail   string        `json:"customer_email,omitempty"`
	LicenseLimit    FlexString    `json:"license_limit,omitempty"`
	SiteCount       FlexString    `json:"site_count,omitempty"`
	MaxSites        FlexString    `json:"max_sites,omitempty"`
	ActivationsLeft FlexString    `json:"activations_left,omitempty"`
	ErrorMsg        string        `json:"errorMsg,omitempty"`

	// Raw keeps the full decoded response so fields we do not model survive a round trip.
	Raw map[string]interface{} `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the rest in Raw.
func (p *LicensePayload) UnmarshalJSON(data []byte) error {
	type alias LicensePayload
	var known alias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	raw := make(map[string]interface{})
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = LicensePayload(known)
	p.Raw = raw
	return nil
}

// MarshalJSON writes Raw first and lets the modelled fields win.
func (p LicensePayload) MarshalJSON() ([]byte, error) {
	type alias LicensePayload
	known, err := json.Marshal(alias(p))
	if err != nil {
		return nil, err
	}
	if len(p.Raw) == 0 {
		return known, nil
	}
	merged := make(map[string]interface{}, len(p.Raw)+8)
	for k, v := range p.Raw {
		merged[k] = v
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Clone returns a deep enough copy for callers that attach messages.
func (p LicensePayload) Clone() LicensePayload {
	out := p
	if p.Raw != nil {
		out.Raw = make(map[string]interface{}, len(p.Raw))
		for k, v := range p.Raw {
			out.Raw[k] = v
		}
	}
	return out
}

// LicenseRecord 저장된 메인 플러그인 라이선스 상태
type LicenseRecord struct {
	Key       string          `json:"key"`
	Status    LicenseStatus   `json:"status"`
	Data      *LicensePayload `json:"data,omitempty"`
	LastCheck *int64          `json:"last_check_timestamp,omitempty"`
}

// Normalize enforces that an empty key always reads as inactive.
func (r LicenseRecord) Normalize() LicenseRecord {
	if strings.TrimSpace(r.Key) == "" {
		r.Key = ""
		r.Status = LicenseStatusInactive
	}
	if r.Status == "" {
		r.Status = LicenseStatusInactive
	}
	return r
}

// IsValid 유효 라이선스 여부
func (r LicenseRecord) IsValid() bool {
	return r.Key != "" && r.Status == LicenseStatusValid
}

// ExtensionLicenseRecord 확장 플러그인 라이선스 (option_name 단위)
type ExtensionLicenseRecord struct {
	OptionName string          `json:"option_name"`
	Key        string          `json:"key"`
	Status     LicenseStatus   `json:"status"`
	Data       *LicensePayload `json:"data,omitempty"`
}

// ActivateLicenseRequest 라이선스 활성화 요청
type ActivateLicenseRequest struct {
	LicenseKey string `json:"license_key" validate:"required,max=255"`
}

// RecheckLicenseRequest 라이선스 재확인 요청
type RecheckLicenseRequest struct {
	LicenseKey string `json:"license_key" validate:"required,max=255"`
	ItemName   string `json:"item_name" validate:"omitempty,max=255"`
	OptionName string `json:"option_name" validate:"omitempty,max=191"`
}

// RecheckLicenseResponse 재확인 결과
type RecheckLicenseResponse struct {
	Record  LicenseRecord `json:"record"`
	Changed bool          `json:"changed"`
}
