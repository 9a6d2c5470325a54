package repositories

import (
	"context"
	"fmt"

	"github.com/gracechapel/roster-engine/pkg/database"
	"github.com/gracechapel/roster-engine/pkg/models"
)

// SettingsRepository provides data access for the singleton settings row.
// The row is seeded by migration; there is no in-memory shadow copy.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) error
}

type settingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *database.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

var _ SettingsRepository = (*settingsRepository)(nil)

func (r *settingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	err := r.db.QueryRow(ctx,
		`SELECT deadline_day, name_format, updated_at FROM settings WHERE id = 1`).
		Scan(&s.DeadlineDay, &s.NameFormat, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return &s, nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *models.Settings) error {
	err := r.db.QueryRow(ctx, `
		UPDATE settings
		SET deadline_day = $1, name_format = $2, updated_at = now()
		WHERE id = 1
		RETURNING updated_at`,
		settings.DeadlineDay,
		settings.NameFormat,
	).Scan(&settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	return nil
}
