package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/database"
	"github.com/gracechapel/roster-engine/pkg/models"
)

// UserRepository provides data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdatePIN(ctx context.Context, userID uuid.UUID, pinHash string, firstLogin bool) error
	Delete(ctx context.Context, userID uuid.UUID) error
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	GetByInitials(ctx context.Context, initials string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	InitialsExist(ctx context.Context, initials string) (bool, error)
	CountAdmins(ctx context.Context) (int, error)
}

type userRepository struct {
	db *database.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

var _ UserRepository = (*userRepository)(nil)

const userColumns = `id, first_name, last_name, initials, pin_hash, is_admin, first_login, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Initials, &u.PINHash,
		&u.IsAdmin, &u.FirstLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()

	query := `
		INSERT INTO users (first_name, last_name, initials, pin_hash, is_admin, first_login, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.FirstName,
		user.LastName,
		user.Initials,
		user.PINHash,
		user.IsAdmin,
		user.FirstLogin,
		now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, initials = $4, is_admin = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Initials,
		user.IsAdmin,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *userRepository) UpdatePIN(ctx context.Context, userID uuid.UUID, pinHash string, firstLogin bool) error {
	query := `
		UPDATE users
		SET pin_hash = $2, first_login = $3, updated_at = now()
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, userID, pinHash, firstLogin)
	if err != nil {
		return fmt.Errorf("failed to update PIN: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	// Availability and assignments cascade via FK.
	result, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetByInitials(ctx context.Context, initials string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE initials = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, initials))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by initials: %w", err)
	}

	return user, nil
}

func (r *userRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY last_name, first_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
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

func (r *userRepository) InitialsExist(ctx context.Context, initials string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE initials = $1)`, initials).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check initials: %w", err)
	}
	return exists, nil
}

func (r *userRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE is_admin`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}
