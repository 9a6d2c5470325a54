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

// AvailabilityService manages per-user, per-date willingness to serve.
type AvailabilityService interface {
	// SetAvailability upserts the (user, date) record. Non-admins editing a
	// date in the current month after the configured deadline day get
	// ErrDeadlinePassed; admins bypass the deadline.
	SetAvailability(ctx context.Context, userID uuid.UUID, date time.Time, available, isAdmin bool) (*models.Availability, error)

	// MonthForUser returns the user's availability records for the month.
	MonthForUser(ctx context.Context, userID uuid.UUID, year, month int) ([]*models.Availability, error)

	// Month returns every availability record for the month (admin view).
	Month(ctx context.Context, year, month int) ([]*models.Availability, error)
}

type availabilityService struct {
	availabilityRepo repositories.AvailabilityRepository
	userRepo         repositories.UserRepository
	settingsRepo     repositories.SettingsRepository
	logger           *zap.Logger
	now              func() time.Time
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(
	availabilityRepo repositories.AvailabilityRepository,
	userRepo repositories.UserRepository,
	settingsRepo repositories.SettingsRepository,
	logger *zap.Logger,
) AvailabilityService {
	return &availabilityService{
		availabilityRepo: availabilityRepo,
		userRepo:         userRepo,
		settingsRepo:     settingsRepo,
		logger:           logger,
		now:              time.Now,
	}
}

var _ AvailabilityService = (*availabilityService)(nil)

func (s *availabilityService) SetAvailability(ctx context.Context, userID uuid.UUID, date time.Time, available, isAdmin bool) (*models.Availability, error) {
	date = schedule.NormalizeDate(date)

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if !isAdmin {
		if err := s.checkDeadline(ctx, date); err != nil {
			return nil, err
		}
	}

	record := &models.Availability{
		UserID:      userID,
		ServiceDate: date,
		IsAvailable: available,
	}
	if err := s.availabilityRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Debug("Availability updated",
		zap.String("user_id", userID.String()),
		zap.String("service_date", schedule.DateKey(date)),
		zap.Bool("available", available))
	return record, nil
}

// checkDeadline rejects edits to current-month dates once the month's
// deadline day has passed. Future months stay open.
func (s *availabilityService) checkDeadline(ctx context.Context, date time.Time) error {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	sameMonth := now.Year() == date.Year() && now.Month() == date.Month()
	if sameMonth && now.Day() > settings.DeadlineDay {
		return apperrors.ErrDeadlinePassed
	}
	if date.Before(schedule.NormalizeDate(now)) {
		return fmt.Errorf("%w: service date is in the past", apperrors.ErrValidation)
	}

	return nil
}

func (s *availabilityService) MonthForUser(ctx context.Context, userID uuid.UUID, year, month int) ([]*models.Availability, error) {
	from, to, err := monthBounds(year, month)
	if err != nil {
		return nil, err
	}
	return s.availabilityRepo.GetForUserMonth(ctx, userID, from, to)
}

func (s *availabilityService) Month(ctx context.Context, year, month int) ([]*models.Availability, error) {
	from, to, err := monthBounds(year, month)
	if err != nil {
		return nil, err
	}
	return s.availabilityRepo.GetForDateRange(ctx, from, to)
}

func monthBounds(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month out of range: %d", apperrors.ErrValidation, month)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, -1), nil
}
