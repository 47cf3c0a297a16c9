package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonceRoundTrip(t *testing.T) {
	s := NewNonceSigner("secret", time.Hour)
	token, err := s.Create("save_settings", 5)
	require.NoError(t, err)

	assert.NoError(t, s.Verify(token, "save_settings", 5))
	assert.ErrorIs(t, s.Verify(token, "other_action", 5), ErrNonceInvalid)
	assert.ErrorIs(t, s.Verify(token, "save_settings", 6), ErrNonceInvalid)
	assert.ErrorIs(t, s.Verify("", "save_settings", 5), ErrNonceMissing)
	assert.ErrorIs(t, s.Verify("garbage", "save_settings", 5), ErrNonceInvalid)

	other := NewNonceSigner("different", time.Hour)
	assert.ErrorIs(t, other.Verify(token, "save_settings", 5), ErrNonceInvalid)
}

func TestNonceExpires(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewNonceSigner("secret", time.Hour)
	s.now = func() time.Time { return now }

	token, err := s.Create("save_settings", 1)
	require.NoError(t, err)

	now = now.Add(61 * time.Minute)
	assert.ErrorIs(t, s.Verify(token, "save_settings", 1), ErrNonceExpired)
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("jwt-secret", time.Hour)
	token, exp, err := issuer.Issue(9, "admin", "administrator")
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.EqualValues(t, 9, claims.UserID)
	assert.Equal(t, "admin", claims.Login)
	assert.Equal(t, "administrator", claims.Role)

	_, err = NewTokenIssuer("other", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestTokenIssuerIssueUntilCapsExpiry(t *testing.T) {
	issuer := NewTokenIssuer("jwt-secret", 24*time.Hour)
	until := time.Now().Add(5 * time.Minute).Truncate(time.Second)

	token, exp, err := issuer.IssueUntil(4, "feed_support_x", "feed_support", until)
	require.NoError(t, err)
	assert.Equal(t, until.Unix(), exp)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, until.Unix(), claims.ExpiresAt.Unix())

	_, exp, err = issuer.IssueUntil(4, "admin", "administrator", time.Time{})
	require.NoError(t, err)
	assert.Greater(t, exp, until.Unix())
}

func TestGenerateSupportToken(t *testing.T) {
	for i := 0; i < 50; i++ {
		token, err := GenerateSupportToken(32)
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.False(t, strings.ContainsAny(token, `=&"'`), token)
	}
}

func TestGeneratePasswordMinimumLength(t *testing.T) {
	pw, err := GeneratePassword(4)
	require.NoError(t, err)
	assert.Len(t, pw, 16)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "***", MaskSecret("abc"))
	assert.Equal(t, "abcd****", MaskSecret("abcdefgh"))
}

func TestFormatLicenseDate(t *testing.T) {
	assert.Equal(t, "March 5, 2025", FormatLicenseDate("2025-03-05 23:59:59"))
	assert.Equal(t, "lifetime", FormatLicenseDate("lifetime"))
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 15, DaysUntil(now, now.Add(15*24*time.Hour).Unix()))
	assert.Equal(t, 1, DaysUntil(now, now.Add(time.Minute).Unix()))
	assert.Equal(t, 0, DaysUntil(now, now.Add(-time.Hour).Unix()))
}

func TestValidateStructReportsJSONNames(t *testing.T) {
	type req struct {
		LicenseKey string `json:"license_key" validate:"required"`
		Mode       string `json:"mode" validate:"oneof=a b"`
	}
	fields, err := ValidateStruct(req{Mode: "c"})
	require.Error(t, err)
	assert.Contains(t, fields, "license_key")
	assert.Contains(t, fields, "mode")

	fields, err = ValidateStruct(req{LicenseKey: "k", Mode: "a"})
	assert.NoError(t, err)
	assert.Nil(t, fields)
}
