package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNonceMissing = errors.New("missing nonce")
	ErrNonceExpired = errors.New("nonce has expired")
	ErrNonceInvalid = errors.New("invalid nonce")
)

// NonceSigner 요청 위조 방지 토큰 발급/검증기.
// 토큰 형식: <exp>.<salt>.<sig>, 서명 대상은 action|user|exp|salt
type NonceSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewNonceSigner 비밀 키와 유효 기간으로 서명기 생성
func NewNonceSigner(secret string, ttl time.Duration) *NonceSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &NonceSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Create 특정 액션/사용자에 묶인 토큰 생성
func (s *NonceSigner) Create(action string, userID int64) (string, error) {
	saltBytes := make([]byte, 8)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", fmt.Errorf("failed to generate nonce salt: %w", err)
	}
	salt := hex.EncodeToString(saltBytes)
	expiration := s.now().Add(s.ttl).Unix()

	sig := s.sign(action, userID, expiration, salt)
	return fmt.Sprintf("%d.%s.%s", expiration, salt, sig), nil
}

// Verify 토큰이 해당 액션/사용자에 대해 유효한지 확인
func (s *NonceSigner) Verify(token, action string, userID int64) error {
	if token == "" {
		return ErrNonceMissing
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrNonceInvalid
	}

	expiration, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrNonceInvalid
	}
	if s.now().Unix() > expiration {
		return ErrNonceExpired
	}

	expected := s.sign(action, userID, expiration, parts[1])
	// Compare in constant time
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return ErrNonceInvalid
	}
	return nil
}

func (s *NonceSigner) sign(action string, userID int64, expiration int64, salt string) string {
	payload := strings.Join([]string{
		action,
		strconv.FormatInt(userID, 10),
		strconv.FormatInt(expiration, 10),
		salt,
	}, "|")
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
