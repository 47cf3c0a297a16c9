package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"feedadmin/logger"
	"feedadmin/utils"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

var DB *sql.DB
var dbType string // 데이터베이스 타입 저장

// Initialize 데이터베이스 초기화
// driver: "sqlite" 또는 "mysql"
// dsn: SQLite 파일 경로 또는 MySQL DSN
func Initialize(driver, dsn string) error {
	db, err := Open(driver, dsn)
	if err != nil {
		return err
	}

	if err := Migrate(db, driver); err != nil {
		db.Close()
		return fmt.Errorf("failed to create tables: %w", err)
	}

	DB = db
	dbType = driver
	logger.Info("Database initialized successfully (%s)", driver)
	return nil
}

// Open 연결을 열고 드라이버별 설정을 적용한다
func Open(driver, dsn string) (*sql.DB, error) {
	// 기본값 설정
	if driver == "" {
		driver = "sqlite"
	}
	if dsn == "" && driver == "sqlite" {
		dsn = "./feed-admin.db"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite 는 단일 writer 이므로 연결 하나로 직렬화 (메모리 DB 공유도 보장)
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// 연결 테스트
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == "sqlite" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// Migrate 테이블과 인덱스 생성 (SQLite / MySQL 공용 스키마)
func Migrate(db *sql.DB, driver string) error {
	autoID := "INTEGER PRIMARY KEY AUTOINCREMENT"
	suffix := ""
	if driver == "mysql" {
		autoID = "BIGINT AUTO_INCREMENT PRIMARY KEY"
		suffix = " CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci"
	}

	tables := []string{
		// 키-값 옵션 테이블
		`CREATE TABLE IF NOT EXISTS options (
			name VARCHAR(191) PRIMARY KEY,
			value LONGTEXT NOT NULL
		)`,

		// 계정 테이블
		`CREATE TABLE IF NOT EXISTS users (
			id ` + autoID + `,
			login VARCHAR(60) UNIQUE NOT NULL,
			display_name VARCHAR(250) NOT NULL DEFAULT '',
			email VARCHAR(100) NOT NULL DEFAULT '',
			role VARCHAR(50) NOT NULL,
			password VARCHAR(255) NOT NULL,
			created_at VARCHAR(50) NOT NULL DEFAULT '',
			updated_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		// 계정 메타데이터 테이블
		`CREATE TABLE IF NOT EXISTS user_meta (
			id ` + autoID + `,
			user_id BIGINT NOT NULL,
			meta_key VARCHAR(191) NOT NULL,
			meta_value LONGTEXT,
			UNIQUE (user_id, meta_key),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// 관리자 활동 로그 테이블
		`CREATE TABLE IF NOT EXISTS activity_logs (
			id VARCHAR(50) PRIMARY KEY,
			user_id BIGINT NOT NULL,
			login VARCHAR(60) NOT NULL,
			action VARCHAR(100) NOT NULL,
			details LONGTEXT,
			created_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		// 연결 계정 테이블
		`CREATE TABLE IF NOT EXISTS sources (
			account_id VARCHAR(100) PRIMARY KEY,
			account_type VARCHAR(20) NOT NULL,
			username VARCHAR(255) NOT NULL DEFAULT '',
			access_token TEXT NOT NULL,
			expires BIGINT NOT NULL DEFAULT 0,
			created_at VARCHAR(50) NOT NULL DEFAULT '',
			updated_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		// 피드 테이블
		`CREATE TABLE IF NOT EXISTS feeds (
			id ` + autoID + `,
			name VARCHAR(255) NOT NULL,
			settings LONGTEXT,
			created_at VARCHAR(50) NOT NULL DEFAULT '',
			updated_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,

		// 피드 캐시 테이블
		`CREATE TABLE IF NOT EXISTS feed_caches (
			cache_key VARCHAR(191) PRIMARY KEY,
			feed_id BIGINT NOT NULL DEFAULT 0,
			account_id VARCHAR(100) NOT NULL DEFAULT '',
			cache_value LONGTEXT,
			expires_at VARCHAR(50) NOT NULL DEFAULT ''
		)`,
	}

	indexes := []string{
		`CREATE INDEX idx_user_meta_key ON user_meta(meta_key)`,
		`CREATE INDEX idx_activity_created ON activity_logs(created_at)`,
		`CREATE INDEX idx_feed_caches_feed ON feed_caches(feed_id)`,
		`CREATE INDEX idx_feed_caches_account ON feed_caches(account_id)`,
	}

	for _, stmt := range tables {
		if _, err := db.Exec(stmt + suffix); err != nil {
			return fmt.Errorf("failed to execute SQL: %w", err)
		}
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			// 이미 존재하는 인덱스 오류 무시
			if !isAlreadyExists(err) {
				return fmt.Errorf("failed to execute SQL: %w", err)
			}
		}
	}
	return nil
}

func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate key name")
}

// EnsureAdmin 관리자 계정이 하나도 없으면 기본 관리자를 만든다.
// password 가 비어 있으면 임의 비밀번호를 생성해 로그로 한 번만 알린다.
func EnsureAdmin(ctx context.Context, db *sql.DB, login, password, email string) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = ?", "administrator").Scan(&count); err != nil {
		return err
	}

	// 이미 관리자가 있으면 스킵
	if count > 0 {
		return nil
	}

	generated := false
	if password == "" {
		p, err := utils.GeneratePassword(20)
		if err != nil {
			return err
		}
		password = p
		generated = true
	}

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	now := utils.FormatDateTimeForDB(time.Now())
	query := `
		INSERT INTO users (login, display_name, email, role, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := db.ExecContext(ctx, query, login, "Administrator", email, "administrator", hashedPassword, now, now); err != nil {
		return err
	}

	if generated {
		logger.Warn("Default administrator created (login: %s, password: %s). Change it after first login.", login, password)
	} else {
		logger.Info("Default administrator created (login: %s)", login)
	}
	return nil
}

// Driver 현재 드라이버 이름
func Driver() string {
	return dbType
}

// Close 데이터베이스 연결 종료
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
