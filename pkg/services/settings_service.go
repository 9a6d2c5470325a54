package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/models"
	"github.com/gracechapel/roster-engine/pkg/repositories"
)

// SettingsService manages the persisted singleton settings row.
type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) error
}

type settingsService struct {
	settingsRepo repositories.SettingsRepository
	logger       *zap.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(settingsRepo repositories.SettingsRepository, logger *zap.Logger) SettingsService {
	return &settingsService{settingsRepo: settingsRepo, logger: logger}
}

var _ SettingsService = (*settingsService)(nil)

func (s *settingsService) Get(ctx context.Context) (*models.Settings, error) {
	return s.settingsRepo.Get(ctx)
}

func (s *settingsService) Update(ctx context.Context, settings *models.Settings) error {
	if settings.DeadlineDay < 1 || settings.DeadlineDay > 28 {
		return fmt.Errorf("%w: deadline_day must be between 1 and 28", apperrors.ErrValidation)
	}
	if !models.IsValidNameFormat(settings.NameFormat) {
		return fmt.Errorf("%w: unknown name_format %q", apperrors.ErrValidation, settings.NameFormat)
	}

	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return err
	}

	s.logger.Info("Settings updated",
		zap.Int("deadline_day", settings.DeadlineDay),
		zap.String("name_format", settings.NameFormat))
	return nil
}
