package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"feedadmin/logger"
	"feedadmin/models"
	"feedadmin/utils"
)

const (
	supportTokenLength    = 32
	supportPasswordLength = 24
)

// SupportService는 원격 진단용 임시 지원 계정의 수명주기를 관리합니다.
type SupportService interface {
	Create(ctx context.Context, callerID int64) (models.SupportSession, error)
	Exists(ctx context.Context) (*models.SupportSession, error)
	Resolve(ctx context.Context, token string) (*models.SupportSession, error)
	Login(ctx context.Context, currentUserID int64, token string) (models.SupportSession, bool, error)
	Sweep(ctx context.Context) (bool, error)
	Delete(ctx context.Context, callerID, userID int64) error
	LoginURL(session models.SupportSession) string
	View(ctx context.Context) (models.SupportSessionView, error)
}

// SupportServiceConfig SupportService 설정
type SupportServiceConfig struct {
	AdminURL string
	TTL      time.Duration
	Now      func() time.Time
}

type supportService struct {
	users   IdentityStore
	checker CapabilityChecker
	metrics *Metrics
	cfg     SupportServiceConfig
}

// NewSupportService는 SupportService 구현체를 생성합니다.
func NewSupportService(users IdentityStore, checker CapabilityChecker, metrics *Metrics, cfg SupportServiceConfig) SupportService {
	if cfg.TTL <= 0 {
		cfg.TTL = models.SupportSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &supportService{users: users, checker: checker, metrics: metrics, cfg: cfg}
}

// Create는 새 지원 계정과 토큰을 만듭니다. 기존 세션이 남아 있으면 교체됩니다.
func (s *supportService) Create(ctx context.Context, callerID int64) (models.SupportSession, error) {
	if err := RequireCapability(ctx, s.checker, callerID, models.CapCreateUsers); err != nil {
		return models.SupportSession{}, err
	}

	token, err := utils.GenerateSupportToken(supportTokenLength)
	if err != nil {
		return models.SupportSession{}, err
	}
	password, err := utils.GeneratePassword(supportPasswordLength)
	if err != nil {
		return models.SupportSession{}, fmt.Errorf("failed to generate support password: %w", err)
	}

	existing, err := s.Exists(ctx)
	if err != nil {
		return models.SupportSession{}, err
	}

	// 새 계정을 먼저 완성한 뒤에 기존 세션을 지운다. 로그인은 UNIQUE 라 세션마다 접미사를 붙인다
	user, err := s.users.Create(ctx, models.NewUser{
		Login:       models.SupportUserLogin + "_" + utils.GenerateID("")[:8],
		DisplayName: models.SupportUserDisplayName,
		Email:       models.SupportUserEmail,
		Role:        models.RoleFeedSupport,
		Password:    password,
	})
	if err != nil {
		return models.SupportSession{}, err
	}

	now := s.cfg.Now().Unix()
	session := models.SupportSession{
		UserID:    user.ID,
		Login:     user.Login,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now + int64(s.cfg.TTL/time.Second),
	}

	meta := [][2]string{
		{models.SupportMetaToken, session.Token},
		{models.SupportMetaCreatedAt, strconv.FormatInt(session.CreatedAt, 10)},
		{models.SupportMetaExpiresAt, strconv.FormatInt(session.ExpiresAt, 10)},
	}
	for _, kv := range meta {
		if err := s.users.SetMeta(ctx, user.ID, kv[0], kv[1]); err != nil {
			s.rollback(ctx, user.ID, err)
			return models.SupportSession{}, err
		}
	}

	if existing != nil {
		if err := s.users.Delete(ctx, existing.UserID); err != nil && !errors.Is(err, ErrUserNotFound) {
			s.rollback(ctx, user.ID, err)
			return models.SupportSession{}, err
		}
		logger.WithFields(map[string]interface{}{
			"old_user_id": existing.UserID,
			"new_user_id": user.ID,
		}).Warn("Replaced existing support session")
	}

	s.metrics.setSupportActive(true)
	logger.WithFields(map[string]interface{}{
		"user_id":    user.ID,
		"created_by": callerID,
		"expires_at": session.ExpiresAt,
	}).Info("Support session created")
	return session, nil
}

// rollback 만들다 만 지원 계정을 지운다. 기존 세션은 그대로 남는다
func (s *supportService) rollback(ctx context.Context, userID int64, cause error) {
	if err := s.users.Delete(ctx, userID); err != nil && !errors.Is(err, ErrUserNotFound) {
		logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"cause":   cause.Error(),
			"error":   err.Error(),
		}).Error("Failed to roll back partial support user")
	}
}

func (s *supportService) Exists(ctx context.Context) (*models.SupportSession, error) {
	userID, err := s.users.FirstWithMeta(ctx, models.SupportMetaToken)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID)
}

// Resolve는 토큰이 정확히 일치하고 만료되지 않은 세션만 돌려줍니다.
func (s *supportService) Resolve(ctx context.Context, token string) (*models.SupportSession, error) {
	if token == "" {
		return nil, nil
	}
	userID, err := s.users.FindByMeta(ctx, models.SupportMetaToken, token)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	session, err := s.load(ctx, userID)
	if err != nil || session == nil {
		return nil, err
	}
	if session.Token != token || session.IsExpired(s.cfg.Now()) {
		return nil, nil
	}
	return session, nil
}

func (s *supportService) load(ctx context.Context, userID int64) (*models.SupportSession, error) {
	token, ok, err := s.users.GetMeta(ctx, userID, models.SupportMetaToken)
	if err != nil || !ok {
		return nil, err
	}
	user, err := s.users.Get(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	session := &models.SupportSession{UserID: userID, Login: user.Login, Token: token}

	createdAt, _, err := s.users.GetMeta(ctx, userID, models.SupportMetaCreatedAt)
	if err != nil {
		return nil, err
	}
	expiresAt, _, err := s.users.GetMeta(ctx, userID, models.SupportMetaExpiresAt)
	if err != nil {
		return nil, err
	}
	session.CreatedAt, _ = strconv.ParseInt(createdAt, 10, 64)
	// 만료 시각이 깨져 있으면 0 이 되어 즉시 만료로 취급된다
	session.ExpiresAt, _ = strconv.ParseInt(expiresAt, 10, 64)
	return session, nil
}

// Login은 토큰으로 세션을 찾고, 현재 계정을 지원 계정으로 바꿔야 하는지 알려줍니다.
func (s *supportService) Login(ctx context.Context, currentUserID int64, token string) (models.SupportSession, bool, error) {
	session, err := s.Resolve(ctx, token)
	if err != nil {
		return models.SupportSession{}, false, err
	}
	if session == nil {
		logger.Warn("Support login attempted with unknown or expired token")
		return models.SupportSession{}, false, &NotFoundError{Resource: "support session"}
	}
	return *session, currentUserID != session.UserID, nil
}

// Sweep은 만료된 지원 계정을 삭제합니다. 삭제했으면 true.
func (s *supportService) Sweep(ctx context.Context) (bool, error) {
	session, err := s.Exists(ctx)
	if err != nil {
		return false, err
	}
	if session == nil {
		s.metrics.setSupportActive(false)
		return false, nil
	}
	if !session.IsExpired(s.cfg.Now()) {
		s.metrics.setSupportActive(true)
		return false, nil
	}

	if err := s.users.Delete(ctx, session.UserID); err != nil && !errors.Is(err, ErrUserNotFound) {
		return false, err
	}
	s.metrics.setSupportActive(false)
	logger.WithFields(map[string]interface{}{
		"user_id":    session.UserID,
		"expires_at": session.ExpiresAt,
	}).Info("Expired support session removed")
	return true, nil
}

func (s *supportService) Delete(ctx context.Context, callerID, userID int64) error {
	if err := RequireCapability(ctx, s.checker, callerID, models.CapDeleteUsers); err != nil {
		return err
	}

	if _, ok, err := s.users.GetMeta(ctx, userID, models.SupportMetaToken); err != nil {
		return err
	} else if !ok {
		return &NotFoundError{Resource: "support user"}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return &NotFoundError{Resource: "support user", Err: err}
		}
		return err
	}

	s.metrics.setSupportActive(false)
	logger.WithFields(map[string]interface{}{
		"user_id":    userID,
		"deleted_by": callerID,
	}).Info("Support session deleted")
	return nil
}

func (s *supportService) LoginURL(session models.SupportSession) string {
	return s.cfg.AdminURL + "?" + models.SupportLoginParam + "=" + url.QueryEscape(session.Token)
}

func (s *supportService) View(ctx context.Context) (models.SupportSessionView, error) {
	session, err := s.Exists(ctx)
	if err != nil || session == nil {
		return models.SupportSessionView{}, err
	}
	return models.SupportSessionView{
		Exists:    true,
		UserID:    session.UserID,
		LoginURL:  s.LoginURL(*session),
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
		DaysLeft:  utils.DaysUntil(s.cfg.Now(), session.ExpiresAt),
	}, nil
}
