package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/database"
	"github.com/gracechapel/roster-engine/pkg/models"
)

// FinalizedRosterRepository provides data access for per-month finalization
// records.
type FinalizedRosterRepository interface {
	// Finalize upserts the (year, month) record with is_finalized=true.
	// Finalizing an already-finalized month is a no-op success.
	Finalize(ctx context.Context, year, month int, message string, byUserID uuid.UUID) (*models.FinalizedRoster, error)
	// Unfinalize flips the month back to draft. A month with no record is
	// already a draft, so this is a no-op success, mirroring Finalize's
	// idempotence.
	Unfinalize(ctx context.Context, year, month int) error
	// Get returns the record for the month, or ErrNotFound. A missing
	// record means the month is unfinalized.
	Get(ctx context.Context, year, month int) (*models.FinalizedRoster, error)
}

type finalizedRosterRepository struct {
	db *database.DB
}

// NewFinalizedRosterRepository creates a new FinalizedRosterRepository.
func NewFinalizedRosterRepository(db *database.DB) FinalizedRosterRepository {
	return &finalizedRosterRepository{db: db}
}

var _ FinalizedRosterRepository = (*finalizedRosterRepository)(nil)

const finalizedColumns = `id, year, month, is_finalized, message, created_by, finalized_by, created_at, updated_at`

func scanFinalized(row pgx.Row) (*models.FinalizedRoster, error) {
	var f models.FinalizedRoster
	err := row.Scan(&f.ID, &f.Year, &f.Month, &f.IsFinalized, &f.Message,
		&f.CreatedBy, &f.FinalizedBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *finalizedRosterRepository) Finalize(ctx context.Context, year, month int, message string, byUserID uuid.UUID) (*models.FinalizedRoster, error) {
	query := `
		INSERT INTO finalized_rosters (year, month, is_finalized, message, created_by, finalized_by)
		VALUES ($1, $2, TRUE, $3, $4, $4)
		ON CONFLICT (year, month)
		DO UPDATE SET is_finalized = TRUE, message = EXCLUDED.message,
		              finalized_by = EXCLUDED.finalized_by, updated_at = now()
		RETURNING ` + finalizedColumns

	record, err := scanFinalized(r.db.QueryRow(ctx, query, year, month, message, byUserID))
	if err != nil {
		return nil, fmt.Errorf("failed to finalize roster: %w", err)
	}

	return record, nil
}

func (r *finalizedRosterRepository) Unfinalize(ctx context.Context, year, month int) error {
	// Zero rows means the month was already a draft; nothing to undo.
	_, err := r.db.Exec(ctx, `
		UPDATE finalized_rosters
		SET is_finalized = FALSE, finalized_by = NULL, updated_at = now()
		WHERE year = $1 AND month = $2 AND is_finalized`,
		year, month)
	if err != nil {
		return fmt.Errorf("failed to unfinalize roster: %w", err)
	}

	return nil
}

func (r *finalizedRosterRepository) Get(ctx context.Context, year, month int) (*models.FinalizedRoster, error) {
	record, err := scanFinalized(r.db.QueryRow(ctx,
		`SELECT `+finalizedColumns+` FROM finalized_rosters WHERE year = $1 AND month = $2`,
		year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get finalized roster: %w", err)
	}

	return record, nil
}
