package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
)

// OptionsStore는 이름 기반 키-값 설정 저장소입니다.
type OptionsStore interface {
	Get(ctx context.Context, name, def string) (string, error)
	GetJSON(ctx context.Context, name string, dst interface{}) (bool, error)
	Set(ctx context.Context, name, value string) error
	SetJSON(ctx context.Context, name string, v interface{}) error
	Delete(ctx context.Context, names ...string) error
}

type optionsStore struct {
	db SQLExecutor
}

// NewOptionsStore는 options 테이블 기반 OptionsStore를 생성합니다.
func NewOptionsStore(db SQLExecutor) OptionsStore {
	return &optionsStore{db: db}
}

func (s *optionsStore) Get(ctx context.Context, name, def string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM options WHERE name = ?", name).Scan(&value)
	if err == sql.ErrNoRows {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("get option %s: %w", name, err)
	}
	return value, nil
}

// GetJSON은 값이 없으면 false를 반환하고 dst를 건드리지 않습니다.
func (s *optionsStore) GetJSON(ctx context.Context, name string, dst interface{}) (bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM options WHERE name = ?", name).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get option %s: %w", name, err)
	}
	if value == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return false, fmt.Errorf("decode option %s: %w", name, err)
	}
	return true, nil
}

// Set은 SQLite/MySQL 공통으로 동작하도록 DELETE 후 INSERT 합니다.
func (s *optionsStore) Set(ctx context.Context, name, value string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM options WHERE name = ?", name); err != nil {
			return fmt.Errorf("set option %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO options (name, value) VALUES (?, ?)", name, value); err != nil {
			return fmt.Errorf("set option %s: %w", name, err)
		}
		return nil
	})
}

func (s *optionsStore) SetJSON(ctx context.Context, name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode option %s: %w", name, err)
	}
	return s.Set(ctx, name, string(data))
}

func (s *optionsStore) Delete(ctx context.Context, names ...string) error {
	for _, name := range names {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM options WHERE name = ?", name); err != nil {
			return fmt.Errorf("delete option %s: %w", name, err)
		}
	}
	return nil
}

// getInt64Option은 숫자 옵션을 읽습니다. 값이 없거나 숫자가 아니면 ok=false.
func getInt64Option(ctx context.Context, store OptionsStore, name string) (int64, bool, error) {
	raw, err := store.Get(ctx, name, "")
	if err != nil || raw == "" {
		return 0, false, err
	}
	v, convErr := strconv.ParseInt(raw, 10, 64)
	if convErr != nil {
		return 0, false, nil
	}
	return v, true, nil
}

func getBoolOption(ctx context.Context, store OptionsStore, name string) (bool, error) {
	raw, err := store.Get(ctx, name, "")
	if err != nil {
		return false, err
	}
	b, _ := strconv.ParseBool(raw)
	return b, nil
}
