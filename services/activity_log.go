package services

import (
	"context"
	"time"

	"feedadmin/logger"
	"feedadmin/models"
	"feedadmin/utils"
)

// ActivityLogger는 관리자 활동 로그를 기록/조회합니다.
type ActivityLogger interface {
	Log(ctx context.Context, userID int64, login, action, details string)
	Recent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

type activityLogger struct {
	db SQLExecutor
}

// NewActivityLogger는 activity_logs 테이블 기반 ActivityLogger를 생성합니다.
func NewActivityLogger(db SQLExecutor) ActivityLogger {
	return &activityLogger{db: db}
}

// Log 기록 실패는 요청을 실패시키지 않고 에러 로그만 남긴다
func (a *activityLogger) Log(ctx context.Context, userID int64, login, action, details string) {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, user_id, login, action, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		utils.GenerateID("act"), userID, login, action, details, utils.FormatDateTimeForDB(time.Now()),
	)
	if err != nil {
		logger.Error("Failed to log admin activity: %v", err)
	}
}

func (a *activityLogger) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT id, user_id, login, action, details, created_at FROM activity_logs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]models.ActivityLog, 0)
	for rows.Next() {
		var entry models.ActivityLog
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Login, &entry.Action, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
