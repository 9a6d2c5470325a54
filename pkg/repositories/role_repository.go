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

// RoleRepository provides data access for service roles.
type RoleRepository interface {
	Create(ctx context.Context, role *models.ServiceRole) error
	Update(ctx context.Context, role *models.ServiceRole) error
	Delete(ctx context.Context, roleID uuid.UUID) error
	GetByID(ctx context.Context, roleID uuid.UUID) (*models.ServiceRole, error)
	List(ctx context.Context) ([]*models.ServiceRole, error)
	ListActive(ctx context.Context) ([]*models.ServiceRole, error)
	// Reorder assigns dense 1..n positions following the order of roleIDs,
	// in a single transaction.
	Reorder(ctx context.Context, roleIDs []uuid.UUID) error
	NextPosition(ctx context.Context) (int, error)
	HasAssignments(ctx context.Context, roleID uuid.UUID) (bool, error)
}

type roleRepository struct {
	db *database.DB
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(db *database.DB) RoleRepository {
	return &roleRepository{db: db}
}

var _ RoleRepository = (*roleRepository)(nil)

const roleColumns = `id, name, description, is_active, position, max_occupants, created_at, updated_at`

func scanRole(row pgx.Row) (*models.ServiceRole, error) {
	var role models.ServiceRole
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.IsActive,
		&role.Position, &role.MaxOccupants, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) Create(ctx context.Context, role *models.ServiceRole) error {
	query := `
		INSERT INTO service_roles (name, description, is_active, position, max_occupants)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		role.Name,
		role.Description,
		role.IsActive,
		role.Position,
		role.MaxOccupants,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create service role: %w", err)
	}

	return nil
}

func (r *roleRepository) Update(ctx context.Context, role *models.ServiceRole) error {
	query := `
		UPDATE service_roles
		SET name = $2, description = $3, is_active = $4, max_occupants = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		role.ID,
		role.Name,
		role.Description,
		role.IsActive,
		role.MaxOccupants,
	).Scan(&role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update service role: %w", err)
	}

	return nil
}

func (r *roleRepository) Delete(ctx context.Context, roleID uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM service_roles WHERE id = $1`, roleID)
	if err != nil {
		return fmt.Errorf("failed to delete service role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *roleRepository) GetByID(ctx context.Context, roleID uuid.UUID) (*models.ServiceRole, error) {
	role, err := scanRole(r.db.QueryRow(ctx,
		`SELECT `+roleColumns+` FROM service_roles WHERE id = $1`, roleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service role: %w", err)
	}

	return role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]*models.ServiceRole, error) {
	return r.list(ctx, `SELECT `+roleColumns+` FROM service_roles ORDER BY position`)
}

func (r *roleRepository) ListActive(ctx context.Context) ([]*models.ServiceRole, error) {
	return r.list(ctx, `SELECT `+roleColumns+` FROM service_roles WHERE is_active ORDER BY position`)
}

func (r *roleRepository) list(ctx context.Context, query string) ([]*models.ServiceRole, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list service roles: %w", err)
	}
	defer rows.Close()

	var roles []*models.ServiceRole
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service role: %w", err)
		}
		roles = append(roles, role)
	}

	return roles, rows.Err()
}

func (r *roleRepository) Reorder(ctx context.Context, roleIDs []uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin reorder transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for i, roleID := range roleIDs {
		result, err := tx.Exec(ctx,
			`UPDATE service_roles SET position = $2, updated_at = now() WHERE id = $1`,
			roleID, i+1)
		if err != nil {
			return fmt.Errorf("failed to reposition role %s: %w", roleID, err)
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
	}

	return tx.Commit(ctx)
}

func (r *roleRepository) NextPosition(ctx context.Context) (int, error) {
	var next int
	err := r.db.QueryRow(ctx,
		`SELECT coalesce(max(position), 0) + 1 FROM service_roles`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute next position: %w", err)
	}
	return next, nil
}

func (r *roleRepository) HasAssignments(ctx context.Context, roleID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM roster_assignments WHERE role_id = $1)`, roleID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check role assignments: %w", err)
	}
	return exists, nil
}
