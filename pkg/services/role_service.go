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

// RoleService manages the service role registry.
type RoleService interface {
	Create(ctx context.Context, name, description string, maxOccupants int) (*models.ServiceRole, error)
	Update(ctx context.Context, role *models.ServiceRole) error
	// Delete removes a role unless any roster assignment still references
	// it, in which case it fails with ErrConflictOnDelete.
	Delete(ctx context.Context, roleID uuid.UUID) error
	GetByID(ctx context.Context, roleID uuid.UUID) (*models.ServiceRole, error)
	List(ctx context.Context) ([]*models.ServiceRole, error)
	// Reorder reassigns dense 1..n positions following the given order.
	// Every existing role must appear exactly once.
	Reorder(ctx context.Context, roleIDs []uuid.UUID) error
}

type roleService struct {
	roleRepo repositories.RoleRepository
	logger   *zap.Logger
}

// NewRoleService creates a new RoleService.
func NewRoleService(roleRepo repositories.RoleRepository, logger *zap.Logger) RoleService {
	return &roleService{roleRepo: roleRepo, logger: logger}
}

var _ RoleService = (*roleService)(nil)

func (s *roleService) Create(ctx context.Context, name, description string, maxOccupants int) (*models.ServiceRole, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: role name is required", apperrors.ErrValidation)
	}
	if maxOccupants < 1 {
		maxOccupants = 1
	}

	position, err := s.roleRepo.NextPosition(ctx)
	if err != nil {
		return nil, err
	}

	role := &models.ServiceRole{
		Name:         name,
		Description:  description,
		IsActive:     true,
		Position:     position,
		MaxOccupants: maxOccupants,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	s.logger.Info("Service role created",
		zap.String("role_id", role.ID.String()),
		zap.String("name", role.Name),
		zap.Int("max_occupants", role.MaxOccupants))
	return role, nil
}

func (s *roleService) Update(ctx context.Context, role *models.ServiceRole) error {
	if role.Name == "" {
		return fmt.Errorf("%w: role name is required", apperrors.ErrValidation)
	}
	if role.MaxOccupants < 1 {
		return fmt.Errorf("%w: max_occupants must be at least 1", apperrors.ErrValidation)
	}
	return s.roleRepo.Update(ctx, role)
}

func (s *roleService) Delete(ctx context.Context, roleID uuid.UUID) error {
	// Guarded in application code on top of the FK so callers get a
	// deliberate error instead of a raw constraint violation.
	referenced, err := s.roleRepo.HasAssignments(ctx, roleID)
	if err != nil {
		return err
	}
	if referenced {
		return apperrors.ErrConflictOnDelete
	}

	if err := s.roleRepo.Delete(ctx, roleID); err != nil {
		return err
	}

	s.logger.Info("Service role deleted", zap.String("role_id", roleID.String()))
	return nil
}

func (s *roleService) GetByID(ctx context.Context, roleID uuid.UUID) (*models.ServiceRole, error) {
	return s.roleRepo.GetByID(ctx, roleID)
}

func (s *roleService) List(ctx context.Context) ([]*models.ServiceRole, error) {
	return s.roleRepo.List(ctx)
}

func (s *roleService) Reorder(ctx context.Context, roleIDs []uuid.UUID) error {
	existing, err := s.roleRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(roleIDs) != len(existing) {
		return fmt.Errorf("%w: reorder must list all %d roles", apperrors.ErrValidation, len(existing))
	}

	seen := make(map[uuid.UUID]bool, len(roleIDs))
	for _, id := range roleIDs {
		if seen[id] {
			return fmt.Errorf("%w: role %s listed twice", apperrors.ErrValidation, id)
		}
		seen[id] = true
	}
	for _, role := range existing {
		if !seen[role.ID] {
			return fmt.Errorf("%w: role %s missing from reorder", apperrors.ErrValidation, role.ID)
		}
	}

	if err := s.roleRepo.Reorder(ctx, roleIDs); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: unknown role in reorder", apperrors.ErrValidation)
		}
		return err
	}

	return nil
}
