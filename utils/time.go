package utils

import (
	"fmt"
	"time"
)

const (
	dbDateTimeLayout = "2006-01-02 15:04:05"
	dateOnlyLayout   = "2006-01-02"
	// licenseDateLayout 라이선스 만료 안내 문구용
	licenseDateLayout = "January 2, 2006"
)

// FormatDateTimeForDB formats a time for DATETIME-like text columns (UTC).
func FormatDateTimeForDB(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dbDateTimeLayout)
}

// ParseDBDate parses date strings retrieved from the database.
func ParseDBDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}
	if ts, err := time.ParseInLocation(dbDateTimeLayout, value, time.UTC); err == nil {
		return ts, nil
	}
	if ts, err := time.ParseInLocation(dateOnlyLayout, value, time.UTC); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unsupported db time format: %s", value)
}

// FormatLicenseDate 원격 스토어 만료일을 사람이 읽는 형식으로 변환.
// "lifetime" 등 날짜가 아닌 값은 그대로 돌려준다.
func FormatLicenseDate(value string) string {
	ts, err := ParseDBDate(value)
	if err != nil {
		return value
	}
	return ts.Format(licenseDateLayout)
}

// DaysUntil returns whole days remaining until the unix timestamp, never negative.
func DaysUntil(now time.Time, unix int64) int {
	d := time.Unix(unix, 0).Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + 24*time.Hour - 1) / (24 * time.Hour))
}
