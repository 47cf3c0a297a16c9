package services

import (
	"context"
	"database/sql"
	"time"

	"feedadmin/models"
	"feedadmin/utils"
)

// SourceStore는 연결된 인스타그램 계정을 관리합니다.
type SourceStore interface {
	List(ctx context.Context) ([]models.Source, error)
	Get(ctx context.Context, accountID string) (models.Source, error)
	Save(ctx context.Context, src models.Source) (models.Source, error)
	Delete(ctx context.Context, accountID string) error
}

type sourceStore struct {
	db SQLExecutor
}

// NewSourceStore는 sources 테이블 기반 SourceStore를 생성합니다.
func NewSourceStore(db SQLExecutor) SourceStore {
	return &sourceStore{db: db}
}

const sourceColumns = "account_id, account_type, username, access_token, expires, created_at, updated_at"

func scanSource(row interface{ Scan(...any) error }) (models.Source, error) {
	var src models.Source
	err := row.Scan(&src.AccountID, &src.AccountType, &src.Username, &src.AccessToken, &src.Expires, &src.CreatedAt, &src.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Source{}, ErrSourceNotFound
	}
	return src, err
}

func (s *sourceStore) List(ctx context.Context) ([]models.Source, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+sourceColumns+" FROM sources ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sources := make([]models.Source, 0)
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func (s *sourceStore) Get(ctx context.Context, accountID string) (models.Source, error) {
	return scanSource(s.db.QueryRowContext(ctx, "SELECT "+sourceColumns+" FROM sources WHERE account_id = ?", accountID))
}

// Save는 같은 account_id 가 있으면 생성 시각을 유지한 채 덮어씁니다.
func (s *sourceStore) Save(ctx context.Context, src models.Source) (models.Source, error) {
	now := utils.FormatDateTimeForDB(time.Now())
	src.UpdatedAt = now
	src.CreatedAt = now

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var createdAt string
		err := tx.QueryRowContext(ctx, "SELECT created_at FROM sources WHERE account_id = ?", src.AccountID).Scan(&createdAt)
		switch {
		case err == sql.ErrNoRows:
		case err != nil:
			return err
		default:
			src.CreatedAt = createdAt
			if _, err := tx.ExecContext(ctx, "DELETE FROM sources WHERE account_id = ?", src.AccountID); err != nil {
				return err
			}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sources (account_id, account_type, username, access_token, expires, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			src.AccountID, src.AccountType, src.Username, src.AccessToken, src.Expires, src.CreatedAt, src.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return models.Source{}, err
	}
	return src, nil
}

func (s *sourceStore) Delete(ctx context.Context, accountID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sources WHERE account_id = ?", accountID)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return ErrSourceNotFound
	}
	return err
}

// FeedStore는 저장된 피드를 관리합니다.
type FeedStore interface {
	List(ctx context.Context) ([]models.Feed, error)
	Create(ctx context.Context, name, settings string) (models.Feed, error)
}

type feedStore struct {
	db SQLExecutor
}

// NewFeedStore는 feeds 테이블 기반 FeedStore를 생성합니다.
func NewFeedStore(db SQLExecutor) FeedStore {
	return &feedStore{db: db}
}

func (s *feedStore) List(ctx context.Context) ([]models.Feed, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, settings, created_at, updated_at FROM feeds ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	feeds := make([]models.Feed, 0)
	for rows.Next() {
		var (
			feed     models.Feed
			settings sql.NullString
		)
		if err := rows.Scan(&feed.ID, &feed.Name, &settings, &feed.CreatedAt, &feed.UpdatedAt); err != nil {
			return nil, err
		}
		feed.Settings = settings.String
		feeds = append(feeds, feed)
	}
	return feeds, rows.Err()
}

func (s *feedStore) Create(ctx context.Context, name, settings string) (models.Feed, error) {
	now := utils.FormatDateTimeForDB(time.Now())
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO feeds (name, settings, created_at, updated_at) VALUES (?, ?, ?, ?)",
		name, settings, now, now,
	)
	if err != nil {
		return models.Feed{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Feed{}, err
	}
	return models.Feed{ID: id, Name: name, Settings: settings, CreatedAt: now, UpdatedAt: now}, nil
}
