package services

import (
	"context"
	"encoding/json"
	"time"

	"feedadmin/logger"
	"feedadmin/models"
	"feedadmin/utils"
)

// settingsExportVersion 내보내기 형식 버전
const settingsExportVersion = 1

// SettingsService는 관리 화면 설정의 조회/저장/가져오기/내보내기를 담당합니다.
type SettingsService interface {
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, settings models.Settings) error
	Export(ctx context.Context) (models.SettingsExport, error)
	Import(ctx context.Context, payload string) (models.ImportSettingsResult, error)
}

type settingsService struct {
	options OptionsStore
	feeds   FeedStore
}

// NewSettingsService는 SettingsService 구현체를 생성합니다.
func NewSettingsService(options OptionsStore, feeds FeedStore) SettingsService {
	return &settingsService{options: options, feeds: feeds}
}

func (s *settingsService) Get(ctx context.Context) (models.Settings, error) {
	settings := models.DefaultSettings()
	if _, err := s.options.GetJSON(ctx, models.OptSettings, &settings); err != nil {
		return models.DefaultSettings(), err
	}
	return settings, nil
}

func (s *settingsService) Save(ctx context.Context, settings models.Settings) error {
	if fields, err := utils.ValidateStruct(settings); err != nil {
		return &ValidationError{Message: err.Error(), Fields: fields}
	}
	return s.options.SetJSON(ctx, models.OptSettings, settings)
}

func (s *settingsService) Export(ctx context.Context) (models.SettingsExport, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return models.SettingsExport{}, err
	}
	feeds, err := s.feeds.List(ctx)
	if err != nil {
		return models.SettingsExport{}, err
	}
	return models.SettingsExport{
		Version:    settingsExportVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:   settings,
		Feeds:      feeds,
	}, nil
}

// Import는 내보내기 JSON 을 읽어 설정을 덮어쓰고 피드를 새 ID 로 추가합니다.
// 빠진 설정 값은 기본값으로 채운다.
func (s *settingsService) Import(ctx context.Context, payload string) (models.ImportSettingsResult, error) {
	export := models.SettingsExport{Settings: models.DefaultSettings()}
	if err := json.Unmarshal([]byte(payload), &export); err != nil {
		return models.ImportSettingsResult{}, NewValidationError("payload", "payload is not a settings export: "+err.Error())
	}

	if err := s.Save(ctx, export.Settings); err != nil {
		return models.ImportSettingsResult{}, err
	}

	imported := 0
	for _, feed := range export.Feeds {
		if _, err := s.feeds.Create(ctx, feed.Name, feed.Settings); err != nil {
			return models.ImportSettingsResult{Settings: export.Settings, FeedsImported: imported}, err
		}
		imported++
	}

	logger.WithFields(map[string]interface{}{
		"version": export.Version,
		"feeds":   imported,
	}).Info("Settings imported")
	return models.ImportSettingsResult{Settings: export.Settings, FeedsImported: imported}, nil
}
