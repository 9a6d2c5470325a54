package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/models"
	"github.com/gracechapel/roster-engine/pkg/repositories"
)

// initialsAttempts bounds the collision-suffix search. With realistic
// congregation sizes the suffix never gets anywhere near this.
const initialsAttempts = 100

// UserService manages congregation members.
type UserService interface {
	// Create adds a member. Initials are generated from the name with
	// numeric-suffix collision resolution ("JS", "JS2", ...), and the PIN
	// is stored as a bcrypt hash with first_login set.
	Create(ctx context.Context, firstName, lastName, pin string, isAdmin bool) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// Delete removes a member. Deleting the last remaining admin is
	// rejected with ErrLastAdmin. Availability and assignments cascade.
	Delete(ctx context.Context, userID uuid.UUID) error
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	// ChangePIN verifies the current PIN and replaces it, clearing the
	// first_login flag.
	ChangePIN(ctx context.Context, userID uuid.UUID, currentPIN, newPIN string) error
	// Authenticate checks an initials/PIN pair and returns the user.
	// Wrong initials and wrong PIN are indistinguishable to the caller.
	Authenticate(ctx context.Context, initials, pin string) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, logger: logger}
}

var _ UserService = (*userService)(nil)

func (s *userService) Create(ctx context.Context, firstName, lastName, pin string, isAdmin bool) (*models.User, error) {
	if firstName == "" && lastName == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if len(pin) < 4 {
		return nil, fmt.Errorf("%w: PIN must be at least 4 digits", apperrors.ErrValidation)
	}

	initials, err := s.resolveInitials(ctx, models.BaseInitials(firstName, lastName))
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash PIN: %w", err)
	}

	user := &models.User{
		FirstName:  firstName,
		LastName:   lastName,
		Initials:   initials,
		PINHash:    string(hash),
		IsAdmin:    isAdmin,
		FirstLogin: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("initials", user.Initials),
		zap.Bool("is_admin", user.IsAdmin))
	return user, nil
}

// resolveInitials finds the first free initials string: the base, then
// base+"2", base+"3", and so on.
func (s *userService) resolveInitials(ctx context.Context, base string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("%w: cannot derive initials from name", apperrors.ErrValidation)
	}

	candidate := base
	for i := 2; i <= initialsAttempts; i++ {
		taken, err := s.userRepo.InitialsExist(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}

	return "", fmt.Errorf("could not find free initials for %q", base)
}

func (s *userService) Update(ctx context.Context, user *models.User) error {
	current, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}

	// Demoting the last admin is the same hazard as deleting them.
	if current.IsAdmin && !user.IsAdmin {
		admins, err := s.userRepo.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperrors.ErrLastAdmin
		}
	}

	return s.userRepo.Update(ctx, user)
}

func (s *userService) Delete(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.IsAdmin {
		admins, err := s.userRepo.CountAdmins(ctx)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperrors.ErrLastAdmin
		}
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("User deleted", zap.String("user_id", userID.String()))
	return nil
}

func (s *userService) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) ChangePIN(ctx context.Context, userID uuid.UUID, currentPIN, newPIN string) error {
	if len(newPIN) < 4 {
		return fmt.Errorf("%w: PIN must be at least 4 digits", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(currentPIN)); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPIN), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}

	return s.userRepo.UpdatePIN(ctx, userID, string(hash), false)
}

func (s *userService) Authenticate(ctx context.Context, initials, pin string) (*models.User, error) {
	user, err := s.userRepo.GetByInitials(ctx, initials)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)); err != nil {
		s.logger.Debug("Login rejected", zap.String("initials", initials))
		return nil, apperrors.ErrInvalidCredentials
	}

	return user, nil
}
