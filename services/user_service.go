package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"feedadmin/models"
	"feedadmin/utils"
)

// IdentityStore는 계정과 계정 메타데이터를 관리합니다.
type IdentityStore interface {
	Create(ctx context.Context, u models.NewUser) (models.User, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (models.User, error)
	GetByLogin(ctx context.Context, login string) (models.User, error)
	Authenticate(ctx context.Context, login, password string) (models.User, error)
	SetMeta(ctx context.Context, userID int64, key, value string) error
	GetMeta(ctx context.Context, userID int64, key string) (string, bool, error)
	FindByMeta(ctx context.Context, key, value string) (int64, error)
	FirstWithMeta(ctx context.Context, key string) (int64, error)
}

type identityStore struct {
	db SQLExecutor
}

// NewIdentityStore는 users/user_meta 테이블 기반 IdentityStore를 생성합니다.
func NewIdentityStore(db SQLExecutor) IdentityStore {
	return &identityStore{db: db}
}

const userColumns = "id, login, display_name, email, role, password, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Login, &u.DisplayName, &u.Email, &u.Role, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrUserNotFound
	}
	return u, err
}

func (s *identityStore) Create(ctx context.Context, nu models.NewUser) (models.User, error) {
	if !nu.Role.IsValid() {
		return models.User{}, NewValidationError("role", fmt.Sprintf("unknown role %q", nu.Role))
	}
	hashed, err := utils.HashPassword(nu.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := utils.FormatDateTimeForDB(time.Now())
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (login, display_name, email, role, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nu.Login, nu.DisplayName, nu.Email, string(nu.Role), hashed, now, now,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return models.User{}, ErrUserLoginConflict
		}
		return models.User{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:          id,
		Login:       nu.Login,
		DisplayName: nu.DisplayName,
		Email:       nu.Email,
		Role:        nu.Role,
		Password:    hashed,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Delete는 계정과 모든 메타데이터를 함께 지웁니다.
func (s *identityStore) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_meta WHERE user_id = ?", id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
		if err != nil {
			return err
		}
		if rows, err := result.RowsAffected(); err == nil && rows == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (s *identityStore) Get(ctx context.Context, id int64) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func (s *identityStore) GetByLogin(ctx context.Context, login string) (models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE login = ?", login))
}

func (s *identityStore) Authenticate(ctx context.Context, login, password string) (models.User, error) {
	u, err := s.GetByLogin(ctx, login)
	if errors.Is(err, ErrUserNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if !utils.CheckPassword(u.Password, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *identityStore) SetMeta(ctx context.Context, userID int64, key, value string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_meta WHERE user_id = ? AND meta_key = ?", userID, key); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO user_meta (user_id, meta_key, meta_value) VALUES (?, ?, ?)", userID, key, value)
		return err
	})
}

func (s *identityStore) GetMeta(ctx context.Context, userID int64, key string) (string, bool, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT meta_value FROM user_meta WHERE user_id = ? AND meta_key = ?", userID, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value.String, true, nil
}

// FindByMeta는 key=value 인 첫 계정 ID 를 돌려줍니다.
func (s *identityStore) FindByMeta(ctx context.Context, key, value string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id FROM user_meta WHERE meta_key = ? AND meta_value = ? ORDER BY user_id ASC LIMIT 1", key, value,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrUserNotFound
	}
	return id, err
}

// FirstWithMeta는 key 메타를 가진 첫 계정 ID 를 돌려줍니다.
func (s *identityStore) FirstWithMeta(ctx context.Context, key string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id FROM user_meta WHERE meta_key = ? ORDER BY user_id ASC LIMIT 1", key,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, ErrUserNotFound
	}
	return id, err
}
