package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"feedadmin/utils"

	"github.com/redis/go-redis/v9"
)

// FeedCache는 피드별 원격 응답 캐시 저장소입니다.
// Get/Set 은 피드를 표시하는 쪽의 fetcher 가 쓰고, 관리 화면은 ClearAll/ClearAccount/Count 만 씁니다.
type FeedCache interface {
	Get(ctx context.Context, feedID int64, accountID, name string) (string, bool, error)
	Set(ctx context.Context, feedID int64, accountID, name, value string, ttl time.Duration) error
	ClearAll(ctx context.Context) (int64, error)
	ClearAccount(ctx context.Context, accountID string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

func cacheKey(feedID int64, accountID, name string) string {
	return strconv.FormatInt(feedID, 10) + ":" + accountID + ":" + name
}

// sqlFeedCache feed_caches 테이블 기반 구현
type sqlFeedCache struct {
	db  SQLExecutor
	now func() time.Time
}

// NewSQLFeedCache는 데이터베이스 기반 FeedCache를 생성합니다.
func NewSQLFeedCache(db SQLExecutor) FeedCache {
	return &sqlFeedCache{db: db, now: time.Now}
}

func (c *sqlFeedCache) Get(ctx context.Context, feedID int64, accountID, name string) (string, bool, error) {
	var (
		value     sql.NullString
		expiresAt string
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT cache_value, expires_at FROM feed_caches WHERE cache_key = ?", cacheKey(feedID, accountID, name),
	).Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	expires, parseErr := utils.ParseDBDate(expiresAt)
	if parseErr == nil && !c.now().Before(expires) {
		return "", false, nil
	}
	return value.String, true, nil
}

func (c *sqlFeedCache) Set(ctx context.Context, feedID int64, accountID, name, value string, ttl time.Duration) error {
	key := cacheKey(feedID, accountID, name)
	expires := utils.FormatDateTimeForDB(c.now().Add(ttl))
	return withTx(ctx, c.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM feed_caches WHERE cache_key = ?", key); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO feed_caches (cache_key, feed_id, account_id, cache_value, expires_at)
			VALUES (?, ?, ?, ?, ?)`,
			key, feedID, accountID, value, expires,
		)
		return err
	})
}

func (c *sqlFeedCache) ClearAll(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM feed_caches")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (c *sqlFeedCache) ClearAccount(ctx context.Context, accountID string) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM feed_caches WHERE account_id = ?", accountID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (c *sqlFeedCache) Count(ctx context.Context) (int64, error) {
	var n int64
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM feed_caches").Scan(&n)
	return n, err
}

// redisFeedCache Redis 기반 구현. 키 형식: <prefix><feed>:<account>:<name>
type redisFeedCache struct {
	client *redis.Client
	prefix string
}

// ConnectRedis는 URL(redis://) 또는 host:port 로 클라이언트를 만들고 연결을 확인합니다.
func ConnectRedis(addr, password string, db int) (*redis.Client, error) {
	opt := &redis.Options{Addr: addr, Password: password, DB: db}
	if strings.HasPrefix(addr, "redis://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opt = parsed
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opt.Addr, err)
	}
	return client, nil
}

// NewRedisFeedCache는 Redis 기반 FeedCache를 생성합니다.
func NewRedisFeedCache(client *redis.Client, prefix string) FeedCache {
	if prefix == "" {
		prefix = "feedadmin:cache:"
	}
	return &redisFeedCache{client: client, prefix: prefix}
}

func (c *redisFeedCache) Get(ctx context.Context, feedID int64, accountID, name string) (string, bool, error) {
	v, err := c.client.Get(ctx, c.prefix+cacheKey(feedID, accountID, name)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *redisFeedCache) Set(ctx context.Context, feedID int64, accountID, name, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+cacheKey(feedID, accountID, name), value, ttl).Err()
}

func (c *redisFeedCache) ClearAll(ctx context.Context) (int64, error) {
	return c.deleteMatching(ctx, c.prefix+"*")
}

func (c *redisFeedCache) ClearAccount(ctx context.Context, accountID string) (int64, error) {
	return c.deleteMatching(ctx, c.prefix+"*:"+accountID+":*")
}

func (c *redisFeedCache) Count(ctx context.Context) (int64, error) {
	var n int64
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}

func (c *redisFeedCache) deleteMatching(ctx context.Context, pattern string) (int64, error) {
	var deleted int64
	iter := c.client.Scan(ctx, 0, pattern, 200).Iterator()
	batch := make([]string, 0, 200)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := c.client.Del(ctx, batch...).Result()
		deleted += n
		batch = batch[:0]
		return err
	}
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, err
	}
	return deleted, flush()
}
