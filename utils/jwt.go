package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims JWT 클레임
type Claims struct {
	UserID int64  `json:"uid"`
	Login  string `json:"login"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer 관리자 세션 토큰 발급/검증기
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer 비밀 키와 유효 기간으로 발급기 생성
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue JWT 토큰 생성
func (t *TokenIssuer) Issue(userID int64, login, role string) (string, int64, error) {
	return t.IssueUntil(userID, login, role, time.Time{})
}

// IssueUntil 만료 시각을 until 이전으로 제한해 발급 (zero 면 기본 유효 기간)
func (t *TokenIssuer) IssueUntil(userID int64, login, role string, until time.Time) (string, int64, error) {
	now := time.Now()
	expirationTime := now.Add(t.ttl)
	if !until.IsZero() && until.Before(expirationTime) {
		expirationTime = until
	}

	claims := &Claims{
		UserID: userID,
		Login:  login,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.secret)
	if err != nil {
		return "", 0, err
	}
	return tokenString, expirationTime.Unix(), nil
}

// Validate JWT 토큰 검증
func (t *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
