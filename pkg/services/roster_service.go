package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/models"
	"github.com/gracechapel/roster-engine/pkg/repositories"
	"github.com/gracechapel/roster-engine/pkg/schedule"
)

// Person is a user as presented in the roster builder: id, display name per
// the configured name format, and initials for compact views.
type Person struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Initials string    `json:"initials"`
}

// AssignmentView is a roster assignment joined with its role and person.
type AssignmentView struct {
	ID          uuid.UUID `json:"id"`
	RoleID      uuid.UUID `json:"role_id"`
	RoleName    string    `json:"role_name"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	ServiceDate string    `json:"service_date"`
}

// SundayRoster aggregates everything the roster builder needs for one
// service date. Sundays with nobody available are included with an empty
// AvailablePeople list.
type SundayRoster struct {
	Date            string                `json:"date"`
	AvailablePeople []Person              `json:"available_people"`
	Assignments     []AssignmentView      `json:"assignments"`
	SpecialDay      *models.SpecialDay    `json:"special_day,omitempty"`
	Roles           []*models.ServiceRole `json:"roles"`
}

// Proposal is one staged (role, user, date) pairing from the builder.
type Proposal struct {
	RoleID      uuid.UUID `json:"role_id"`
	UserID      uuid.UUID `json:"user_id"`
	ServiceDate time.Time `json:"service_date"`
}

// BatchOutcome reports the result of one proposal within a batch save.
// Batch saves are deliberately not transactional: each pairing commits or
// fails on its own, and callers get the per-item outcome.
type BatchOutcome struct {
	Proposal Proposal `json:"proposal"`
	Removed  bool     `json:"removed"`
	Error    string   `json:"error,omitempty"`
}

// RosterService is the assignment engine: it decides whether a proposed
// (role, user, date) pairing is legal, materializes legal pairings, and
// aggregates the per-Sunday builder view.
type RosterService interface {
	// ProposeAssignment validates and persists one pairing. Proposing a
	// pairing that already exists removes it instead (toggle semantics).
	// Returns the updated assignment set for the date and whether the
	// proposal removed an existing assignment.
	ProposeAssignment(ctx context.Context, date time.Time, roleID, userID uuid.UUID) ([]AssignmentView, bool, error)

	// ProposeBatch submits each staged pairing independently and collects
	// per-item outcomes. Successes are never rolled back by later failures.
	ProposeBatch(ctx context.Context, proposals []Proposal) []BatchOutcome

	// ClearAssignmentsForDate removes every assignment on the date and
	// returns how many rows were removed. Zero is a success, not an error.
	ClearAssignmentsForDate(ctx context.Context, date time.Time) (int64, error)

	// ListAvailableSundays returns one SundayRoster per Sunday of the
	// month, ascending.
	ListAvailableSundays(ctx context.Context, year, month int) ([]SundayRoster, error)

	// AssignmentsForDate returns the joined assignment views for one date.
	AssignmentsForDate(ctx context.Context, date time.Time) ([]AssignmentView, error)
}

type rosterService struct {
	assignmentRepo   repositories.AssignmentRepository
	availabilityRepo repositories.AvailabilityRepository
	roleRepo         repositories.RoleRepository
	userRepo         repositories.UserRepository
	specialDayRepo   repositories.SpecialDayRepository
	settingsRepo     repositories.SettingsRepository
	logger           *zap.Logger
}

// NewRosterService creates a new RosterService.
func NewRosterService(
	assignmentRepo repositories.AssignmentRepository,
	availabilityRepo repositories.AvailabilityRepository,
	roleRepo repositories.RoleRepository,
	userRepo repositories.UserRepository,
	specialDayRepo repositories.SpecialDayRepository,
	settingsRepo repositories.SettingsRepository,
	logger *zap.Logger,
) RosterService {
	return &rosterService{
		assignmentRepo:   assignmentRepo,
		availabilityRepo: availabilityRepo,
		roleRepo:         roleRepo,
		userRepo:         userRepo,
		specialDayRepo:   specialDayRepo,
		settingsRepo:     settingsRepo,
		logger:           logger,
	}
}

var _ RosterService = (*rosterService)(nil)

func (s *rosterService) ProposeAssignment(ctx context.Context, date time.Time, roleID, userID uuid.UUID) ([]AssignmentView, bool, error) {
	date = schedule.NormalizeDate(date)

	role, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return nil, false, err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, false, err
	}

	// Toggle: proposing an existing pairing un-assigns it. This runs before
	// the active-role check so people can still be removed from a role that
	// was deactivated after they were assigned.
	removed, err := s.assignmentRepo.DeleteByRoleUserDate(ctx, roleID, userID, date)
	if err != nil {
		return nil, false, err
	}
	if removed {
		views, err := s.AssignmentsForDate(ctx, date)
		return views, true, err
	}

	if !role.IsActive {
		return nil, false, fmt.Errorf("%w: role %q is inactive", apperrors.ErrValidation, role.Name)
	}

	// The server never trusts the client's candidate list: the person must
	// have recorded availability for the date.
	available, err := s.availabilityRepo.IsUserAvailable(ctx, userID, date)
	if err != nil {
		return nil, false, err
	}
	if !available {
		return nil, false, fmt.Errorf("%w: person is not available on %s",
			apperrors.ErrValidation, schedule.DateKey(date))
	}

	// One role per person per date. The repository's unique constraint
	// backs this check, so a concurrent insert still cannot slip through.
	if _, err := s.assignmentRepo.GetByUserAndDate(ctx, userID, date); err == nil {
		return nil, false, apperrors.ErrDuplicateAssignment
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	assignment := &models.RosterAssignment{
		RoleID:      roleID,
		UserID:      userID,
		ServiceDate: date,
	}
	if err := s.assignmentRepo.CreateChecked(ctx, assignment); err != nil {
		return nil, false, err
	}

	s.logger.Info("Assignment created",
		zap.String("service_date", schedule.DateKey(date)),
		zap.String("role", role.Name),
		zap.String("user_id", userID.String()))

	views, err := s.AssignmentsForDate(ctx, date)
	return views, false, err
}

func (s *rosterService) ProposeBatch(ctx context.Context, proposals []Proposal) []BatchOutcome {
	outcomes := make([]BatchOutcome, 0, len(proposals))
	for _, p := range proposals {
		outcome := BatchOutcome{Proposal: p}
		_, removed, err := s.ProposeAssignment(ctx, p.ServiceDate, p.RoleID, p.UserID)
		if err != nil {
			outcome.Error = err.Error()
			s.logger.Warn("Batch proposal rejected",
				zap.String("service_date", schedule.DateKey(p.ServiceDate)),
				zap.String("role_id", p.RoleID.String()),
				zap.String("user_id", p.UserID.String()),
				zap.Error(err))
		}
		outcome.Removed = removed
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (s *rosterService) ClearAssignmentsForDate(ctx context.Context, date time.Time) (int64, error) {
	date = schedule.NormalizeDate(date)

	removed, err := s.assignmentRepo.DeleteForDate(ctx, date)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Assignments cleared",
		zap.String("service_date", schedule.DateKey(date)),
		zap.Int64("removed", removed))
	return removed, nil
}

func (s *rosterService) ListAvailableSundays(ctx context.Context, year, month int) ([]SundayRoster, error) {
	sundays, err := schedule.SundaysInMonth(year, month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	roles, err := s.roleRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	rosters := make([]SundayRoster, 0, len(sundays))
	for _, sunday := range sundays {
		entry := SundayRoster{
			Date:            schedule.DateKey(sunday),
			AvailablePeople: []Person{},
			Assignments:     []AssignmentView{},
			Roles:           roles,
		}

		users, err := s.availabilityRepo.AvailableUsersForDate(ctx, sunday)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			entry.AvailablePeople = append(entry.AvailablePeople, Person{
				UserID:   u.ID,
				Name:     u.DisplayName(settings.NameFormat),
				Initials: u.Initials,
			})
		}

		entry.Assignments, err = s.assignmentViews(ctx, sunday, roles, settings.NameFormat)
		if err != nil {
			return nil, err
		}

		specialDay, err := s.specialDayRepo.GetByDate(ctx, sunday)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		entry.SpecialDay = specialDay

		rosters = append(rosters, entry)
	}

	return rosters, nil
}

func (s *rosterService) AssignmentsForDate(ctx context.Context, date time.Time) ([]AssignmentView, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.assignmentViews(ctx, schedule.NormalizeDate(date), roles, settings.NameFormat)
}

func (s *rosterService) assignmentViews(ctx context.Context, date time.Time, roles []*models.ServiceRole, nameFormat string) ([]AssignmentView, error) {
	assignments, err := s.assignmentRepo.GetForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	roleNames := make(map[uuid.UUID]string, len(roles))
	for _, role := range roles {
		roleNames[role.ID] = role.Name
	}

	views := make([]AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		view := AssignmentView{
			ID:          a.ID,
			RoleID:      a.RoleID,
			RoleName:    roleNames[a.RoleID],
			UserID:      a.UserID,
			ServiceDate: schedule.DateKey(a.ServiceDate),
		}
		if view.RoleName == "" {
			// Role may be inactive and absent from the active list.
			role, err := s.roleRepo.GetByID(ctx, a.RoleID)
			if err == nil {
				view.RoleName = role.Name
			}
		}

		user, err := s.userRepo.GetByID(ctx, a.UserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		view.Name = user.DisplayName(nameFormat)

		views = append(views, view)
	}

	return views, nil
}
