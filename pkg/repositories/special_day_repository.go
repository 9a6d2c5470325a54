package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/database"
	"github.com/gracechapel/roster-engine/pkg/models"
)

// SpecialDayRepository provides data access for special calendar days.
type SpecialDayRepository interface {
	Create(ctx context.Context, day *models.SpecialDay) error
	Update(ctx context.Context, day *models.SpecialDay) error
	Delete(ctx context.Context, dayID uuid.UUID) error
	GetByDate(ctx context.Context, date time.Time) (*models.SpecialDay, error)
	List(ctx context.Context) ([]*models.SpecialDay, error)
	ListForRange(ctx context.Context, from, to time.Time) ([]*models.SpecialDay, error)
}

type specialDayRepository struct {
	db *database.DB
}

// NewSpecialDayRepository creates a new SpecialDayRepository.
func NewSpecialDayRepository(db *database.DB) SpecialDayRepository {
	return &specialDayRepository{db: db}
}

var _ SpecialDayRepository = (*specialDayRepository)(nil)

const specialDayColumns = `id, date, name, description, color, created_at, updated_at`

func scanSpecialDay(row pgx.Row) (*models.SpecialDay, error) {
	var d models.SpecialDay
	err := row.Scan(&d.ID, &d.Date, &d.Name, &d.Description, &d.Color, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *specialDayRepository) Create(ctx context.Context, day *models.SpecialDay) error {
	query := `
		INSERT INTO special_days (date, name, description, color)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		day.Date,
		day.Name,
		day.Description,
		day.Color,
	).Scan(&day.ID, &day.CreatedAt, &day.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// One special day per calendar date.
			return apperrors.ErrValidation
		}
		return fmt.Errorf("failed to create special day: %w", err)
	}

	return nil
}

func (r *specialDayRepository) Update(ctx context.Context, day *models.SpecialDay) error {
	query := `
		UPDATE special_days
		SET date = $2, name = $3, description = $4, color = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		day.ID,
		day.Date,
		day.Name,
		day.Description,
		day.Color,
	).Scan(&day.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrValidation
		}
		return fmt.Errorf("failed to update special day: %w", err)
	}

	return nil
}

func (r *specialDayRepository) Delete(ctx context.Context, dayID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM special_days WHERE id = $1`, dayID)
	if err != nil {
		return fmt.Errorf("failed to delete special day: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *specialDayRepository) GetByDate(ctx context.Context, date time.Time) (*models.SpecialDay, error) {
	day, err := scanSpecialDay(r.db.QueryRow(ctx,
		`SELECT `+specialDayColumns+` FROM special_days WHERE date = $1`, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get special day: %w", err)
	}

	return day, nil
}

func (r *specialDayRepository) List(ctx context.Context) ([]*models.SpecialDay, error) {
	return r.list(ctx, `SELECT `+specialDayColumns+` FROM special_days ORDER BY date`)
}

func (r *specialDayRepository) ListForRange(ctx context.Context, from, to time.Time) ([]*models.SpecialDay, error) {
	return r.list(ctx,
		`SELECT `+specialDayColumns+` FROM special_days WHERE date BETWEEN $1 AND $2 ORDER BY date`,
		from, to)
}

func (r *specialDayRepository) list(ctx context.Context, query string, args ...any) ([]*models.SpecialDay, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list special days: %w", err)
	}
	defer rows.Close()

	var days []*models.SpecialDay
	for rows.Next() {
		day, err := scanSpecialDay(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan special day: %w", err)
		}
		days = append(days, day)
	}

	return days, rows.Err()
}
