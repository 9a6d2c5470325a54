package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/models"
	"github.com/gracechapel/roster-engine/pkg/schedule"
)

// In-memory repository fakes mirroring the database semantics the real
// repositories get from schema constraints: assignment uniqueness, role
// capacity, availability upserts.

type mockUserRepo struct {
	users     []*models.User
	createErr error
	updateErr error
	deleteErr error
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.users = append(m.users, user)
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *models.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for i, u := range m.users {
		if u.ID == user.ID {
			m.users[i] = user
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockUserRepo) UpdatePIN(_ context.Context, userID uuid.UUID, pinHash string, firstLogin bool) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.PINHash = pinHash
			u.FirstLogin = firstLogin
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockUserRepo) Delete(_ context.Context, userID uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, u := range m.users {
		if u.ID == userID {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockUserRepo) GetByID(_ context.Context, userID uuid.UUID) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) GetByInitials(_ context.Context, initials string) (*models.User, error) {
	for _, u := range m.users {
		if u.Initials == initials {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) List(_ context.Context) ([]*models.User, error) {
	return m.users, nil
}

func (m *mockUserRepo) InitialsExist(_ context.Context, initials string) (bool, error) {
	for _, u := range m.users {
		if u.Initials == initials {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) CountAdmins(_ context.Context) (int, error) {
	count := 0
	for _, u := range m.users {
		if u.IsAdmin {
			count++
		}
	}
	return count, nil
}

type mockAvailabilityRepo struct {
	records   []*models.Availability
	users     *mockUserRepo
	upsertErr error
}

func (m *mockAvailabilityRepo) Upsert(_ context.Context, availability *models.Availability) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, r := range m.records {
		if r.UserID == availability.UserID && r.ServiceDate.Equal(availability.ServiceDate) {
			r.IsAvailable = availability.IsAvailable
			r.LastUpdated = time.Now()
			*availability = *r
			return nil
		}
	}
	availability.ID = uuid.New()
	availability.LastUpdated = time.Now()
	m.records = append(m.records, availability)
	return nil
}

func (m *mockAvailabilityRepo) GetForUserMonth(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*models.Availability, error) {
	var result []*models.Availability
	for _, r := range m.records {
		if r.UserID == userID && !r.ServiceDate.Before(from) && !r.ServiceDate.After(to) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAvailabilityRepo) GetForDateRange(_ context.Context, from, to time.Time) ([]*models.Availability, error) {
	var result []*models.Availability
	for _, r := range m.records {
		if !r.ServiceDate.Before(from) && !r.ServiceDate.After(to) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAvailabilityRepo) AvailableUsersForDate(ctx context.Context, date time.Time) ([]*models.User, error) {
	var result []*models.User
	for _, r := range m.records {
		if !r.ServiceDate.Equal(date) || !r.IsAvailable {
			continue
		}
		if m.users != nil {
			if u, err := m.users.GetByID(ctx, r.UserID); err == nil {
				result = append(result, u)
			}
		}
	}
	return result, nil
}

func (m *mockAvailabilityRepo) IsUserAvailable(_ context.Context, userID uuid.UUID, date time.Time) (bool, error) {
	for _, r := range m.records {
		if r.UserID == userID && r.ServiceDate.Equal(date) {
			return r.IsAvailable, nil
		}
	}
	return false, nil
}

type mockRoleRepo struct {
	roles []*models.ServiceRole
	// assignments lets HasAssignments answer from the assignment fake.
	assignments *mockAssignmentRepo
}

func (m *mockRoleRepo) Create(_ context.Context, role *models.ServiceRole) error {
	role.ID = uuid.New()
	role.CreatedAt = time.Now()
	role.UpdatedAt = time.Now()
	m.roles = append(m.roles, role)
	return nil
}

func (m *mockRoleRepo) Update(_ context.Context, role *models.ServiceRole) error {
	for i, r := range m.roles {
		if r.ID == role.ID {
			m.roles[i] = role
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockRoleRepo) Delete(_ context.Context, roleID uuid.UUID) error {
	for i, r := range m.roles {
		if r.ID == roleID {
			m.roles = append(m.roles[:i], m.roles[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockRoleRepo) GetByID(_ context.Context, roleID uuid.UUID) (*models.ServiceRole, error) {
	for _, r := range m.roles {
		if r.ID == roleID {
			return r, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockRoleRepo) List(_ context.Context) ([]*models.ServiceRole, error) {
	return m.roles, nil
}

func (m *mockRoleRepo) ListActive(_ context.Context) ([]*models.ServiceRole, error) {
	var result []*models.ServiceRole
	for _, r := range m.roles {
		if r.IsActive {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockRoleRepo) Reorder(_ context.Context, roleIDs []uuid.UUID) error {
	for position, id := range roleIDs {
		found := false
		for _, r := range m.roles {
			if r.ID == id {
				r.Position = position + 1
				found = true
				break
			}
		}
		if !found {
			return apperrors.ErrNotFound
		}
	}
	return nil
}

func (m *mockRoleRepo) NextPosition(_ context.Context) (int, error) {
	max := 0
	for _, r := range m.roles {
		if r.Position > max {
			max = r.Position
		}
	}
	return max + 1, nil
}

func (m *mockRoleRepo) HasAssignments(_ context.Context, roleID uuid.UUID) (bool, error) {
	if m.assignments == nil {
		return false, nil
	}
	for _, a := range m.assignments.assignments {
		if a.RoleID == roleID {
			return true, nil
		}
	}
	return false, nil
}

type mockAssignmentRepo struct {
	assignments []*models.RosterAssignment
	roles       *mockRoleRepo
	createErr   error
}

// CreateChecked enforces the same invariants the schema does: one role per
// person per date, and per-role capacity.
func (m *mockAssignmentRepo) CreateChecked(ctx context.Context, assignment *models.RosterAssignment) error {
	if m.createErr != nil {
		return m.createErr
	}

	for _, a := range m.assignments {
		if a.UserID == assignment.UserID && a.ServiceDate.Equal(assignment.ServiceDate) {
			return apperrors.ErrDuplicateAssignment
		}
	}

	if m.roles != nil {
		role, err := m.roles.GetByID(ctx, assignment.RoleID)
		if err != nil {
			return err
		}
		occupied := 0
		for _, a := range m.assignments {
			if a.RoleID == assignment.RoleID && a.ServiceDate.Equal(assignment.ServiceDate) {
				occupied++
			}
		}
		if occupied >= role.MaxOccupants {
			return apperrors.ErrRoleCapacityExceeded
		}
	}

	assignment.ID = uuid.New()
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = time.Now()
	m.assignments = append(m.assignments, assignment)
	return nil
}

func (m *mockAssignmentRepo) DeleteByRoleUserDate(_ context.Context, roleID, userID uuid.UUID, date time.Time) (bool, error) {
	for i, a := range m.assignments {
		if a.RoleID == roleID && a.UserID == userID && a.ServiceDate.Equal(date) {
			m.assignments = append(m.assignments[:i], m.assignments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) DeleteForDate(_ context.Context, date time.Time) (int64, error) {
	var kept []*models.RosterAssignment
	var removed int64
	for _, a := range m.assignments {
		if a.ServiceDate.Equal(date) {
			removed++
		} else {
			kept = append(kept, a)
		}
	}
	m.assignments = kept
	return removed, nil
}

func (m *mockAssignmentRepo) GetForDate(_ context.Context, date time.Time) ([]*models.RosterAssignment, error) {
	var result []*models.RosterAssignment
	for _, a := range m.assignments {
		if a.ServiceDate.Equal(date) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) GetForDateRange(_ context.Context, from, to time.Time) ([]*models.RosterAssignment, error) {
	var result []*models.RosterAssignment
	for _, a := range m.assignments {
		if !a.ServiceDate.Before(from) && !a.ServiceDate.After(to) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) GetByUserAndDate(_ context.Context, userID uuid.UUID, date time.Time) (*models.RosterAssignment, error) {
	for _, a := range m.assignments {
		if a.UserID == userID && a.ServiceDate.Equal(date) {
			return a, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockAssignmentRepo) Exists(_ context.Context, roleID, userID uuid.UUID, date time.Time) (bool, error) {
	for _, a := range m.assignments {
		if a.RoleID == roleID && a.UserID == userID && a.ServiceDate.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

type mockSpecialDayRepo struct {
	days []*models.SpecialDay
}

func (m *mockSpecialDayRepo) Create(_ context.Context, day *models.SpecialDay) error {
	for _, d := range m.days {
		if d.Date.Equal(day.Date) {
			return apperrors.ErrValidation
		}
	}
	day.ID = uuid.New()
	day.CreatedAt = time.Now()
	day.UpdatedAt = time.Now()
	m.days = append(m.days, day)
	return nil
}

func (m *mockSpecialDayRepo) Update(_ context.Context, day *models.SpecialDay) error {
	for i, d := range m.days {
		if d.ID == day.ID {
			m.days[i] = day
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockSpecialDayRepo) Delete(_ context.Context, dayID uuid.UUID) error {
	for i, d := range m.days {
		if d.ID == dayID {
			m.days = append(m.days[:i], m.days[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (m *mockSpecialDayRepo) GetByDate(_ context.Context, date time.Time) (*models.SpecialDay, error) {
	for _, d := range m.days {
		if d.Date.Equal(date) {
			return d, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockSpecialDayRepo) List(_ context.Context) ([]*models.SpecialDay, error) {
	return m.days, nil
}

func (m *mockSpecialDayRepo) ListForRange(_ context.Context, from, to time.Time) ([]*models.SpecialDay, error) {
	var result []*models.SpecialDay
	for _, d := range m.days {
		if !d.Date.Before(from) && !d.Date.After(to) {
			result = append(result, d)
		}
	}
	return result, nil
}

type mockFinalizedRepo struct {
	records []*models.FinalizedRoster
}

func (m *mockFinalizedRepo) Finalize(_ context.Context, year, month int, message string, byUserID uuid.UUID) (*models.FinalizedRoster, error) {
	for _, r := range m.records {
		if r.Year == year && r.Month == month {
			r.IsFinalized = true
			r.Message = message
			r.FinalizedBy = &byUserID
			r.UpdatedAt = time.Now()
			return r, nil
		}
	}
	record := &models.FinalizedRoster{
		ID:          uuid.New(),
		Year:        year,
		Month:       month,
		IsFinalized: true,
		Message:     message,
		CreatedBy:   byUserID,
		FinalizedBy: &byUserID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.records = append(m.records, record)
	return record, nil
}

func (m *mockFinalizedRepo) Unfinalize(_ context.Context, year, month int) error {
	for _, r := range m.records {
		if r.Year == year && r.Month == month && r.IsFinalized {
			r.IsFinalized = false
			r.FinalizedBy = nil
			return nil
		}
	}
	// A month with no record is already a draft.
	return nil
}

func (m *mockFinalizedRepo) Get(_ context.Context, year, month int) (*models.FinalizedRoster, error) {
	for _, r := range m.records {
		if r.Year == year && r.Month == month {
			return r, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

type mockSettingsRepo struct {
	settings models.Settings
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{settings: models.Settings{
		DeadlineDay: 15,
		NameFormat:  models.NameFormatFull,
	}}
}

func (m *mockSettingsRepo) Get(_ context.Context) (*models.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsRepo) Update(_ context.Context, settings *models.Settings) error {
	m.settings = *settings
	m.settings.UpdatedAt = time.Now()
	return nil
}

// date is shorthand for a normalized service date in tests.
func date(year int, month time.Month, day int) time.Time {
	return schedule.NormalizeDate(time.Date(year, month, day, 10, 30, 0, 0, time.UTC))
}
