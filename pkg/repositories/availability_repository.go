package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gracechapel/roster-engine/pkg/database"
	"github.com/gracechapel/roster-engine/pkg/models"
)

// AvailabilityRepository provides data access for availability records.
type AvailabilityRepository interface {
	// Upsert inserts or updates the (user, date) availability record.
	// Uniqueness is enforced by the database, not a pre-read.
	Upsert(ctx context.Context, availability *models.Availability) error
	GetForUserMonth(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.Availability, error)
	GetForDateRange(ctx context.Context, from, to time.Time) ([]*models.Availability, error)
	AvailableUsersForDate(ctx context.Context, date time.Time) ([]*models.User, error)
	IsUserAvailable(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error)
}

type availabilityRepository struct {
	db *database.DB
}

// NewAvailabilityRepository creates a new AvailabilityRepository.
func NewAvailabilityRepository(db *database.DB) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

var _ AvailabilityRepository = (*availabilityRepository)(nil)

func (r *availabilityRepository) Upsert(ctx context.Context, availability *models.Availability) error {
	query := `
		INSERT INTO availability (user_id, service_date, is_available, last_updated)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, service_date)
		DO UPDATE SET is_available = EXCLUDED.is_available, last_updated = now()
		RETURNING id, last_updated`

	err := r.db.QueryRow(ctx, query,
		availability.UserID,
		availability.ServiceDate,
		availability.IsAvailable,
	).Scan(&availability.ID, &availability.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to upsert availability: %w", err)
	}

	return nil
}

func (r *availabilityRepository) GetForUserMonth(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*models.Availability, error) {
	query := `
		SELECT id, user_id, service_date, is_available, last_updated
		FROM availability
		WHERE user_id = $1 AND service_date BETWEEN $2 AND $3
		ORDER BY service_date`

	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}
	defer rows.Close()

	var records []*models.Availability
	for rows.Next() {
		var a models.Availability
		if err := rows.Scan(&a.ID, &a.UserID, &a.ServiceDate, &a.IsAvailable, &a.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		records = append(records, &a)
	}

	return records, rows.Err()
}

func (r *availabilityRepository) GetForDateRange(ctx context.Context, from, to time.Time) ([]*models.Availability, error) {
	query := `
		SELECT id, user_id, service_date, is_available, last_updated
		FROM availability
		WHERE service_date BETWEEN $1 AND $2
		ORDER BY service_date, user_id`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability range: %w", err)
	}
	defer rows.Close()

	var records []*models.Availability
	for rows.Next() {
		var a models.Availability
		if err := rows.Scan(&a.ID, &a.UserID, &a.ServiceDate, &a.IsAvailable, &a.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan availability: %w", err)
		}
		records = append(records, &a)
	}

	return records, rows.Err()
}

func (r *availabilityRepository) AvailableUsersForDate(ctx context.Context, date time.Time) ([]*models.User, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.initials, u.pin_hash, u.is_admin, u.first_login, u.created_at, u.updated_at
		FROM users u
		JOIN availability a ON a.user_id = u.id
		WHERE a.service_date = $1 AND a.is_available
		ORDER BY u.last_name, u.first_name`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query available users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *availabilityRepository) IsUserAvailable(ctx context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	var available bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM availability
			WHERE user_id = $1 AND service_date = $2 AND is_available
		)`, userID, date).Scan(&available)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return available, nil
}
