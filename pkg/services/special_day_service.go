package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/models"
	"github.com/gracechapel/roster-engine/pkg/repositories"
	"github.com/gracechapel/roster-engine/pkg/schedule"
)

// SpecialDayService manages calendar annotations shown in the availability
// UI, the roster builder, and the PDF export.
type SpecialDayService interface {
	Create(ctx context.Context, day *models.SpecialDay) error
	Update(ctx context.Context, day *models.SpecialDay) error
	Delete(ctx context.Context, dayID uuid.UUID) error
	List(ctx context.Context) ([]*models.SpecialDay, error)
	Month(ctx context.Context, year, month int) ([]*models.SpecialDay, error)
}

type specialDayService struct {
	specialDayRepo repositories.SpecialDayRepository
	logger         *zap.Logger
}

// NewSpecialDayService creates a new SpecialDayService.
func NewSpecialDayService(specialDayRepo repositories.SpecialDayRepository, logger *zap.Logger) SpecialDayService {
	return &specialDayService{specialDayRepo: specialDayRepo, logger: logger}
}

var _ SpecialDayService = (*specialDayService)(nil)

func validateSpecialDay(day *models.SpecialDay) error {
	if day.Name == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	// Color is a free-form string; only non-emptiness is checked.
	if day.Color == "" {
		return fmt.Errorf("%w: color is required", apperrors.ErrValidation)
	}
	if day.Date.IsZero() {
		return fmt.Errorf("%w: date is required", apperrors.ErrValidation)
	}
	return nil
}

func (s *specialDayService) Create(ctx context.Context, day *models.SpecialDay) error {
	if err := validateSpecialDay(day); err != nil {
		return err
	}
	day.Date = schedule.NormalizeDate(day.Date)

	if err := s.specialDayRepo.Create(ctx, day); err != nil {
		return err
	}

	s.logger.Info("Special day created",
		zap.String("date", schedule.DateKey(day.Date)),
		zap.String("name", day.Name))
	return nil
}

func (s *specialDayService) Update(ctx context.Context, day *models.SpecialDay) error {
	if err := validateSpecialDay(day); err != nil {
		return err
	}
	day.Date = schedule.NormalizeDate(day.Date)
	return s.specialDayRepo.Update(ctx, day)
}

func (s *specialDayService) Delete(ctx context.Context, dayID uuid.UUID) error {
	return s.specialDayRepo.Delete(ctx, dayID)
}

func (s *specialDayService) List(ctx context.Context) ([]*models.SpecialDay, error) {
	return s.specialDayRepo.List(ctx)
}

func (s *specialDayService) Month(ctx context.Context, year, month int) ([]*models.SpecialDay, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month out of range: %d", apperrors.ErrValidation, month)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return s.specialDayRepo.ListForRange(ctx, from, from.AddDate(0, 1, -1))
}
