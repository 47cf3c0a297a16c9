package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"feedadmin/logger"
	"feedadmin/models"
	"feedadmin/scheduler"
)

// CacheClearJobName 백그라운드 캐시 비우기 작업 이름
const CacheClearJobName = "feed_cache_clear"

// CacheService는 피드 캐시 비우기와 그 일정을 관리합니다.
type CacheService interface {
	Clear(ctx context.Context) (int64, error)
	ClearAccount(ctx context.Context, accountID string) (int64, error)
	ApplySchedule(settings models.Settings) error
	NextClear() (time.Time, bool)
	LastCleared(ctx context.Context) (int64, error)
	Entries(ctx context.Context) (int64, error)
}

type cacheService struct {
	cache    FeedCache
	options  OptionsStore
	sched    *scheduler.Scheduler
	activity ActivityLogger
	now      func() time.Time
}

// NewCacheService는 CacheService 구현체를 생성합니다.
func NewCacheService(cache FeedCache, options OptionsStore, sched *scheduler.Scheduler, activity ActivityLogger) CacheService {
	return &cacheService{cache: cache, options: options, sched: sched, activity: activity, now: time.Now}
}

func (s *cacheService) Clear(ctx context.Context) (int64, error) {
	n, err := s.cache.ClearAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear feed cache: %w", err)
	}
	if err := s.options.Set(ctx, models.OptCacheLastClearedAt, strconv.FormatInt(s.now().Unix(), 10)); err != nil {
		return n, err
	}
	logger.WithFields(map[string]interface{}{"entries": n}).Info("Feed cache cleared")
	return n, nil
}

func (s *cacheService) ClearAccount(ctx context.Context, accountID string) (int64, error) {
	n, err := s.cache.ClearAccount(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("clear feed cache for %s: %w", accountID, err)
	}
	return n, nil
}

// ApplySchedule은 캐시 방식이 background 일 때만 비우기 작업을 등록합니다.
func (s *cacheService) ApplySchedule(settings models.Settings) error {
	if s.sched == nil {
		return nil
	}
	if settings.CachingType != models.CachingTypeBackground {
		s.sched.Unregister(CacheClearJobName)
		return nil
	}

	job := scheduler.Job{
		Name: CacheClearJobName,
		Run: func(ctx context.Context) error {
			n, err := s.Clear(ctx)
			if err != nil {
				return err
			}
			if s.activity != nil {
				s.activity.Log(ctx, 0, "system", models.ActionScheduledCacheWipe, fmt.Sprintf("%d entries", n))
			}
			return nil
		},
	}

	switch settings.CacheCronInterval {
	case "30mins":
		job.Interval = 30 * time.Minute
	case "1hour":
		job.Interval = time.Hour
	case "12hours":
		job.Interval = 12 * time.Hour
		job.At = cronTimeOfDay(settings)
	default:
		job.Interval = 24 * time.Hour
		job.At = cronTimeOfDay(settings)
	}
	return s.sched.Register(job)
}

// cronTimeOfDay는 1~12 시와 am/pm 을 24시간 형식으로 바꿉니다.
func cronTimeOfDay(settings models.Settings) *scheduler.TimeOfDay {
	hour := settings.CacheCronTime % 12
	if settings.CacheCronAmPm == "pm" {
		hour += 12
	}
	return &scheduler.TimeOfDay{Hour: hour}
}

func (s *cacheService) NextClear() (time.Time, bool) {
	if s.sched == nil {
		return time.Time{}, false
	}
	return s.sched.NextRun(CacheClearJobName)
}

func (s *cacheService) LastCleared(ctx context.Context) (int64, error) {
	v, _, err := getInt64Option(ctx, s.options, models.OptCacheLastClearedAt)
	return v, err
}

func (s *cacheService) Entries(ctx context.Context) (int64, error) {
	return s.cache.Count(ctx)
}
