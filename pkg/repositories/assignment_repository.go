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

// AssignmentRepository provides data access for roster assignments.
type AssignmentRepository interface {
	// CreateChecked inserts an assignment while enforcing both roster
	// invariants inside a single transaction: the role row is locked so the
	// capacity count cannot race, and the (user_id, service_date) unique
	// constraint backs the one-role-per-person rule.
	CreateChecked(ctx context.Context, assignment *models.RosterAssignment) error
	// DeleteByRoleUserDate removes one exact pairing; returns false if it
	// did not exist.
	DeleteByRoleUserDate(ctx context.Context, roleID, userID uuid.UUID, date time.Time) (bool, error)
	// DeleteForDate removes every assignment on the date. Zero rows removed
	// is a success.
	DeleteForDate(ctx context.Context, date time.Time) (int64, error)
	GetForDate(ctx context.Context, date time.Time) ([]*models.RosterAssignment, error)
	GetForDateRange(ctx context.Context, from, to time.Time) ([]*models.RosterAssignment, error)
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.RosterAssignment, error)
	Exists(ctx context.Context, roleID, userID uuid.UUID, date time.Time) (bool, error)
}

type assignmentRepository struct {
	db *database.DB
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(db *database.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

var _ AssignmentRepository = (*assignmentRepository)(nil)

const assignmentColumns = `id, role_id, user_id, service_date, created_at, updated_at`

func scanAssignment(row pgx.Row) (*models.RosterAssignment, error) {
	var a models.RosterAssignment
	err := row.Scan(&a.ID, &a.RoleID, &a.UserID, &a.ServiceDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepository) CreateChecked(ctx context.Context, assignment *models.RosterAssignment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin assignment transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	// Lock the role row to serialize concurrent capacity checks for the
	// same role, then count inside the same transaction.
	var maxOccupants int
	err = tx.QueryRow(ctx,
		`SELECT max_occupants FROM service_roles WHERE id = $1 FOR UPDATE`,
		assignment.RoleID).Scan(&maxOccupants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to lock role row: %w", err)
	}

	var occupied int
	err = tx.QueryRow(ctx,
		`SELECT count(*) FROM roster_assignments WHERE role_id = $1 AND service_date = $2`,
		assignment.RoleID, assignment.ServiceDate).Scan(&occupied)
	if err != nil {
		return fmt.Errorf("failed to count role occupancy: %w", err)
	}
	if occupied >= maxOccupants {
		return apperrors.ErrRoleCapacityExceeded
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO roster_assignments (role_id, user_id, service_date)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		assignment.RoleID,
		assignment.UserID,
		assignment.ServiceDate,
	).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		// Unique constraint violation (PostgreSQL error code 23505) on
		// (user_id, service_date) means the person already serves that day.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.ErrDuplicateAssignment
		}
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *assignmentRepository) DeleteByRoleUserDate(ctx context.Context, roleID, userID uuid.UUID, date time.Time) (bool, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM roster_assignments
		WHERE role_id = $1 AND user_id = $2 AND service_date = $3`,
		roleID, userID, date)
	if err != nil {
		return false, fmt.Errorf("failed to delete assignment: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func (r *assignmentRepository) DeleteForDate(ctx context.Context, date time.Time) (int64, error) {
	result, err := r.db.Exec(ctx,
		`DELETE FROM roster_assignments WHERE service_date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to clear assignments: %w", err)
	}
	return result.RowsAffected(), nil
}

func (r *assignmentRepository) GetForDate(ctx context.Context, date time.Time) ([]*models.RosterAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM roster_assignments
		WHERE service_date = $1
		ORDER BY created_at`

	return r.query(ctx, query, date)
}

func (r *assignmentRepository) GetForDateRange(ctx context.Context, from, to time.Time) ([]*models.RosterAssignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM roster_assignments
		WHERE service_date BETWEEN $1 AND $2
		ORDER BY service_date, created_at`

	return r.query(ctx, query, from, to)
}

func (r *assignmentRepository) query(ctx context.Context, query string, args ...any) ([]*models.RosterAssignment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*models.RosterAssignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, assignment)
	}

	return assignments, rows.Err()
}

func (r *assignmentRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.RosterAssignment, error) {
	assignment, err := scanAssignment(r.db.QueryRow(ctx, `
		SELECT `+assignmentColumns+`
		FROM roster_assignments
		WHERE user_id = $1 AND service_date = $2`,
		userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	return assignment, nil
}

func (r *assignmentRepository) Exists(ctx context.Context, roleID, userID uuid.UUID, date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM roster_assignments
			WHERE role_id = $1 AND user_id = $2 AND service_date = $3
		)`, roleID, userID, date).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return exists, nil
}
