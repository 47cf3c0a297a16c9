package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenCharset    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_.~!*()"
	passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()-_[]{}<>~`+=,.;:/?|'\""
)

// urlUnsafeChars 쿼리 문자열에 그대로 넣을 수 없는 문자
const urlUnsafeChars = "=&\"'"

// GenerateID UUID 기반 ID 생성
func GenerateID(prefix string) string {
	id := uuid.NewString()
	if prefix != "" {
		return fmt.Sprintf("%s-%s", prefix, id)
	}
	return id
}

// randomString 암호학적 난수로 charset 에서 length 글자 추출
func randomString(length int, charset string) (string, error) {
	max := big.NewInt(int64(len(charset)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(charset[n.Int64()])
	}
	return b.String(), nil
}

// StripURLUnsafe 토큰에서 = & " ' 제거
func StripURLUnsafe(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(urlUnsafeChars, r) {
			return -1
		}
		return r
	}, s)
}

// GenerateSupportToken 지원 로그인 링크용 토큰 생성
func GenerateSupportToken(length int) (string, error) {
	if length < 20 {
		length = 20
	}
	token, err := randomString(length, tokenCharset)
	if err != nil {
		return "", fmt.Errorf("failed to generate support token: %w", err)
	}
	return StripURLUnsafe(token), nil
}

// GeneratePassword 강력한 임의 비밀번호 생성
func GeneratePassword(length int) (string, error) {
	if length < 16 {
		length = 16
	}
	return randomString(length, passwordCharset)
}

// HashPassword 비밀번호 해싱
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword 비밀번호 검증
func CheckPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// MaskSecret 로그용 비밀 값 마스킹 (앞 4글자만 노출)
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}
