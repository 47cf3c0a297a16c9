package services

import (
	"context"
	"time"

	"feedadmin/models"
)

// NoticeService는 관리자 화면 알림 목록을 관리합니다.
type NoticeService interface {
	Add(ctx context.Context, id string) error
	Remove(ctx context.Context, ids ...string) error
	List(ctx context.Context) ([]models.Notice, error)
}

type noticeService struct {
	options OptionsStore
	now     func() time.Time
}

// NewNoticeService는 옵션 저장소 기반 NoticeService를 생성합니다.
func NewNoticeService(options OptionsStore) NoticeService {
	return &noticeService{options: options, now: time.Now}
}

func (s *noticeService) List(ctx context.Context) ([]models.Notice, error) {
	notices := make([]models.Notice, 0)
	if _, err := s.options.GetJSON(ctx, models.OptAdminNotices, &notices); err != nil {
		return nil, err
	}
	return notices, nil
}

// Add는 같은 ID의 알림이 이미 있으면 아무 것도 하지 않습니다.
func (s *noticeService) Add(ctx context.Context, id string) error {
	notices, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, n := range notices {
		if n.ID == id {
			return nil
		}
	}
	notices = append(notices, models.Notice{ID: id, CreatedAt: s.now().Unix()})
	return s.options.SetJSON(ctx, models.OptAdminNotices, notices)
}

func (s *noticeService) Remove(ctx context.Context, ids ...string) error {
	notices, err := s.List(ctx)
	if err != nil {
		return err
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := notices[:0]
	for _, n := range notices {
		if _, ok := drop[n.ID]; !ok {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(notices) {
		return nil
	}
	return s.options.SetJSON(ctx, models.OptAdminNotices, kept)
}
