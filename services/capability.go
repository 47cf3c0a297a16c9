package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"feedadmin/models"
)

// CapabilityChecker는 호출자가 특정 권한을 가졌는지 확인합니다.
type CapabilityChecker interface {
	Can(ctx context.Context, userID int64, c models.Capability) (bool, error)
}

type roleCapabilityChecker struct {
	users IdentityStore
	now   func() time.Time
}

// NewCapabilityChecker는 저장된 역할을 매번 다시 읽어 권한을 판정합니다.
// 만료 시각이 지난 지원 계정은 삭제되기 전이라도 아무 권한이 없습니다.
func NewCapabilityChecker(users IdentityStore) CapabilityChecker {
	return &roleCapabilityChecker{users: users, now: time.Now}
}

func (c *roleCapabilityChecker) Can(ctx context.Context, userID int64, capability models.Capability) (bool, error) {
	if userID <= 0 {
		return false, nil
	}
	u, err := c.users.Get(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	expired, err := c.supportExpired(ctx, userID)
	if err != nil || expired {
		return false, err
	}
	return u.Role.Has(capability), nil
}

// supportExpired 지원 세션 만료 시각이 붙은 계정인지, 그 시각이 지났는지
func (c *roleCapabilityChecker) supportExpired(ctx context.Context, userID int64) (bool, error) {
	raw, ok, err := c.users.GetMeta(ctx, userID, models.SupportMetaExpiresAt)
	if err != nil || !ok {
		return false, err
	}
	// 읽을 수 없는 값은 만료로 본다
	expiresAt, _ := strconv.ParseInt(raw, 10, 64)
	return models.SupportSession{ExpiresAt: expiresAt}.IsExpired(c.now()), nil
}

// RequireCapability는 권한이 없으면 *PermissionError 를 돌려줍니다.
func RequireCapability(ctx context.Context, checker CapabilityChecker, userID int64, capability models.Capability) error {
	ok, err := checker.Can(ctx, userID, capability)
	if err != nil {
		return err
	}
	if !ok {
		return &PermissionError{Capability: string(capability)}
	}
	return nil
}
