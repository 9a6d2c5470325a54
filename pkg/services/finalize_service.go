package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/models"
	"github.com/gracechapel/roster-engine/pkg/repositories"
)

// FinalizeService is the finalization gate: a per-month flag that publishes
// the roster to members. Finalize and Unfinalize are flag flips; there are
// no intermediate states.
type FinalizeService interface {
	Finalize(ctx context.Context, year, month int, message string, byUserID uuid.UUID) (*models.FinalizedRoster, error)
	// Unfinalize reopens the month for revision. Like Finalize it is
	// idempotent: a month that is already a draft stays a draft.
	Unfinalize(ctx context.Context, year, month int) error
	// Status never returns ErrNotFound: a month without a record is
	// reported as an unfinalized roster.
	Status(ctx context.Context, year, month int) (*models.FinalizedRoster, error)
}

type finalizeService struct {
	finalizedRepo repositories.FinalizedRosterRepository
	logger        *zap.Logger
}

// NewFinalizeService creates a new FinalizeService.
func NewFinalizeService(finalizedRepo repositories.FinalizedRosterRepository, logger *zap.Logger) FinalizeService {
	return &finalizeService{finalizedRepo: finalizedRepo, logger: logger}
}

var _ FinalizeService = (*finalizeService)(nil)

func validateMonth(year, month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month out of range: %d", apperrors.ErrValidation, month)
	}
	if year < 2000 || year > 2200 {
		return fmt.Errorf("%w: year out of range: %d", apperrors.ErrValidation, year)
	}
	return nil
}

func (s *finalizeService) Finalize(ctx context.Context, year, month int, message string, byUserID uuid.UUID) (*models.FinalizedRoster, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}

	record, err := s.finalizedRepo.Finalize(ctx, year, month, message, byUserID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Roster finalized",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.String("finalized_by", byUserID.String()))
	return record, nil
}

func (s *finalizeService) Unfinalize(ctx context.Context, year, month int) error {
	if err := validateMonth(year, month); err != nil {
		return err
	}

	if err := s.finalizedRepo.Unfinalize(ctx, year, month); err != nil {
		return err
	}

	s.logger.Info("Roster reopened for revision",
		zap.Int("year", year),
		zap.Int("month", month))
	return nil
}

func (s *finalizeService) Status(ctx context.Context, year, month int) (*models.FinalizedRoster, error) {
	if err := validateMonth(year, month); err != nil {
		return nil, err
	}

	record, err := s.finalizedRepo.Get(ctx, year, month)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// No record is the same as an unfinalized month.
			return &models.FinalizedRoster{Year: year, Month: month, IsFinalized: false}, nil
		}
		return nil, err
	}

	return record, nil
}
