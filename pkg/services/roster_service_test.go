package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/models"
)

type rosterFixture struct {
	svc              RosterService
	userRepo         *mockUserRepo
	availabilityRepo *mockAvailabilityRepo
	roleRepo         *mockRoleRepo
	assignmentRepo   *mockAssignmentRepo
	specialDayRepo   *mockSpecialDayRepo
	settingsRepo     *mockSettingsRepo
}

func newRosterFixture() *rosterFixture {
	userRepo := &mockUserRepo{}
	roleRepo := &mockRoleRepo{}
	assignmentRepo := &mockAssignmentRepo{roles: roleRepo}
	roleRepo.assignments = assignmentRepo
	availabilityRepo := &mockAvailabilityRepo{users: userRepo}
	specialDayRepo := &mockSpecialDayRepo{}
	settingsRepo := newMockSettingsRepo()

	svc := NewRosterService(assignmentRepo, availabilityRepo, roleRepo, userRepo,
		specialDayRepo, settingsRepo, zap.NewNop())

	return &rosterFixture{
		svc:              svc,
		userRepo:         userRepo,
		availabilityRepo: availabilityRepo,
		roleRepo:         roleRepo,
		assignmentRepo:   assignmentRepo,
		specialDayRepo:   specialDayRepo,
		settingsRepo:     settingsRepo,
	}
}

func (f *rosterFixture) addUser(t *testing.T, firstName, lastName string) *models.User {
	t.Helper()
	user := &models.User{
		FirstName: firstName,
		LastName:  lastName,
		Initials:  models.BaseInitials(firstName, lastName),
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func (f *rosterFixture) addRole(t *testing.T, name string, maxOccupants int) *models.ServiceRole {
	t.Helper()
	role := &models.ServiceRole{Name: name, IsActive: true, MaxOccupants: maxOccupants}
	require.NoError(t, f.roleRepo.Create(context.Background(), role))
	return role
}

func (f *rosterFixture) markAvailable(t *testing.T, userID uuid.UUID, day time.Time) {
	t.Helper()
	require.NoError(t, f.availabilityRepo.Upsert(context.Background(), &models.Availability{
		UserID:      userID,
		ServiceDate: day,
		IsAvailable: true,
	}))
}

func TestProposeAssignmentCreates(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 3)
	user := f.addUser(t, "John", "Smith")
	role := f.addRole(t, "Drummer", 1)
	f.markAvailable(t, user.ID, sunday)

	views, removed, err := f.svc.ProposeAssignment(context.Background(), sunday, role.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	require.Len(t, views, 1)
	assert.Equal(t, "Drummer", views[0].RoleName)
	assert.Equal(t, "John Smith", views[0].Name)
	assert.Equal(t, "2024-03-03", views[0].ServiceDate)
}

func TestProposeAssignmentToggleRemoves(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 3)
	user := f.addUser(t, "John", "Smith")
	role := f.addRole(t, "Drummer", 1)
	f.markAvailable(t, user.ID, sunday)

	_, removed, err := f.svc.ProposeAssignment(context.Background(), sunday, role.ID, user.ID)
	require.NoError(t, err)
	require.False(t, removed)

	// Re-proposing the identical pairing un-assigns it.
	views, removed, err := f.svc.ProposeAssignment(context.Background(), sunday, role.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, views)

	// And a third proposal assigns again.
	views, removed, err = f.svc.ProposeAssignment(context.Background(), sunday, role.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, views, 1)
}

func TestProposeAssignmentRejectsUnavailableUser(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 3)
	user := f.addUser(t, "John", "Smith")
	role := f.addRole(t, "Drummer", 1)

	_, _, err := f.svc.ProposeAssignment(context.Background(), sunday, role.ID, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestProposeAssignmentRejectsSecondRoleSameDate(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 3)
	user := f.addUser(t, "John", "Smith")
	drummer := f.addRole(t, "Drummer", 1)
	usher := f.addRole(t, "Usher", 2)
	f.markAvailable(t, user.ID, sunday)

	_, _, err := f.svc.ProposeAssignment(context.Background(), sunday, drummer.ID, user.ID)
	require.NoError(t, err)

	_, _, err = f.svc.ProposeAssignment(context.Background(), sunday, usher.ID, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateAssignment)
}

func TestProposeAssignmentAllowsSamePersonDifferentDates(t *testing.T) {
	f := newRosterFixture()
	first := date(2024, time.March, 3)
	second := date(2024, time.March, 10)
	user := f.addUser(t, "John", "Smith")
	role := f.addRole(t, "Drummer", 1)
	f.markAvailable(t, user.ID, first)
	f.markAvailable(t, user.ID, second)

	_, _, err := f.svc.ProposeAssignment(context.Background(), first, role.ID, user.ID)
	require.NoError(t, err)
	_, _, err = f.svc.ProposeAssignment(context.Background(), second, role.ID, user.ID)
	assert.NoError(t, err)
}

func TestProposeAssignmentEnforcesCapacity(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 3)
	drummer := f.addRole(t, "Drummer", 1)

	first := f.addUser(t, "John", "Smith")
	second := f.addUser(t, "Amy", "Lee")
	f.markAvailable(t, first.ID, sunday)
	f.markAvailable(t, second.ID, sunday)

	_, _, err := f.svc.ProposeAssignment(context.Background(), sunday, drummer.ID, first.ID)
	require.NoError(t, err)

	_, _, err = f.svc.ProposeAssignment(context.Background(), sunday, drummer.ID, second.ID)
	assert.ErrorIs(t, err, apperrors.ErrRoleCapacityExceeded)
}

func TestProposeAssignmentCapacityFreesOnToggle(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 3)
	drummer := f.addRole(t, "Drummer", 1)

	first := f.addUser(t, "John", "Smith")
	second := f.addUser(t, "Amy", "Lee")
	f.markAvailable(t, first.ID, sunday)
	f.markAvailable(t, second.ID, sunday)

	_, _, err := f.svc.ProposeAssignment(context.Background(), sunday, drummer.ID, first.ID)
	require.NoError(t, err)

	// Un-assign, freeing the slot for the second person.
	_, removed, err := f.svc.ProposeAssignment(context.Background(), sunday, drummer.ID, first.ID)
	require.NoError(t, err)
	require.True(t, removed)

	_, _, err = f.svc.ProposeAssignment(context.Background(), sunday, drummer.ID, second.ID)
	assert.NoError(t, err)
}

func TestProposeAssignmentMultiOccupantRole(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 3)
	singer := f.addRole(t, "Singer", 4)

	for _, name := range []string{"Ann", "Ben", "Cat", "Dan"} {
		u := f.addUser(t, name, "Singerton")
		f.markAvailable(t, u.ID, sunday)
		_, _, err := f.svc.ProposeAssignment(context.Background(), sunday, singer.ID, u.ID)
		require.NoError(t, err)
	}

	fifth := f.addUser(t, "Eve", "Late")
	f.markAvailable(t, fifth.ID, sunday)
	_, _, err := f.svc.ProposeAssignment(context.Background(), sunday, singer.ID, fifth.ID)
	assert.ErrorIs(t, err, apperrors.ErrRoleCapacityExceeded)
}

func TestProposeAssignmentRejectsInactiveRole(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 3)
	user := f.addUser(t, "John", "Smith")
	role := f.addRole(t, "Drummer", 1)
	role.IsActive = false
	f.markAvailable(t, user.ID, sunday)

	_, _, err := f.svc.ProposeAssignment(context.Background(), sunday, role.ID, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestProposeAssignmentTogglesOffDeactivatedRole(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 3)
	user := f.addUser(t, "John", "Smith")
	role := f.addRole(t, "Drummer", 1)
	f.markAvailable(t, user.ID, sunday)

	_, removed, err := f.svc.ProposeAssignment(context.Background(), sunday, role.ID, user.ID)
	require.NoError(t, err)
	require.False(t, removed)

	// Deactivating the role must not trap its existing assignments: the
	// toggle un-assign still works, only new assignments are blocked.
	role.IsActive = false

	views, removed, err := f.svc.ProposeAssignment(context.Background(), sunday, role.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, views)

	_, _, err = f.svc.ProposeAssignment(context.Background(), sunday, role.ID, user.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestProposeAssignmentUnknownRole(t *testing.T) {
	f := newRosterFixture()
	user := f.addUser(t, "John", "Smith")

	_, _, err := f.svc.ProposeAssignment(context.Background(), date(2024, time.March, 3), uuid.New(), user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProposeBatchReportsPerItemOutcomes(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 3)
	drummer := f.addRole(t, "Drummer", 1)
	usher := f.addRole(t, "Usher", 2)

	available := f.addUser(t, "John", "Smith")
	unavailable := f.addUser(t, "Amy", "Lee")
	f.markAvailable(t, available.ID, sunday)

	outcomes := f.svc.ProposeBatch(context.Background(), []Proposal{
		{RoleID: drummer.ID, UserID: available.ID, ServiceDate: sunday},
		{RoleID: usher.ID, UserID: unavailable.ID, ServiceDate: sunday},
	})

	require.Len(t, outcomes, 2)
	assert.Empty(t, outcomes[0].Error)
	assert.NotEmpty(t, outcomes[1].Error)

	// The failing item did not roll back the successful one.
	assignments, err := f.assignmentRepo.GetForDate(context.Background(), sunday)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestClearAssignmentsForDate(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 3)
	otherSunday := date(2024, time.March, 10)
	drummer := f.addRole(t, "Drummer", 1)
	usher := f.addRole(t, "Usher", 2)

	first := f.addUser(t, "John", "Smith")
	second := f.addUser(t, "Amy", "Lee")
	f.markAvailable(t, first.ID, sunday)
	f.markAvailable(t, second.ID, sunday)
	f.markAvailable(t, first.ID, otherSunday)

	_, _, err := f.svc.ProposeAssignment(context.Background(), sunday, drummer.ID, first.ID)
	require.NoError(t, err)
	_, _, err = f.svc.ProposeAssignment(context.Background(), sunday, usher.ID, second.ID)
	require.NoError(t, err)
	_, _, err = f.svc.ProposeAssignment(context.Background(), otherSunday, drummer.ID, first.ID)
	require.NoError(t, err)

	removed, err := f.svc.ClearAssignmentsForDate(context.Background(), sunday)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	// Other dates are untouched.
	remaining, err := f.assignmentRepo.GetForDate(context.Background(), otherSunday)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	// Clearing an already-empty date succeeds with zero removed.
	removed, err = f.svc.ClearAssignmentsForDate(context.Background(), sunday)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestListAvailableSundaysEnumeratesAll(t *testing.T) {
	f := newRosterFixture()

	// March 2024 has five Sundays; nobody has marked availability.
	rosters, err := f.svc.ListAvailableSundays(context.Background(), 2024, 3)
	require.NoError(t, err)
	require.Len(t, rosters, 5)

	wantDates := []string{"2024-03-03", "2024-03-10", "2024-03-17", "2024-03-24", "2024-03-31"}
	for i, r := range rosters {
		assert.Equal(t, wantDates[i], r.Date)
		assert.Empty(t, r.AvailablePeople)
		assert.Empty(t, r.Assignments)
	}
}

func TestListAvailableSundaysIncludesPeopleAndSpecialDays(t *testing.T) {
	f := newRosterFixture()
	sunday := date(2024, time.March, 10)
	user := f.addUser(t, "John", "Smith")
	f.markAvailable(t, user.ID, sunday)

	// A second user who explicitly declined must not appear.
	declined := f.addUser(t, "Amy", "Lee")
	require.NoError(t, f.availabilityRepo.Upsert(context.Background(), &models.Availability{
		UserID:      declined.ID,
		ServiceDate: sunday,
		IsAvailable: false,
	}))

	require.NoError(t, f.specialDayRepo.Create(context.Background(), &models.SpecialDay{
		Date:  sunday,
		Name:  "Mothering Sunday",
		Color: "#ff8800",
	}))

	rosters, err := f.svc.ListAvailableSundays(context.Background(), 2024, 3)
	require.NoError(t, err)

	var entry *SundayRoster
	for i := range rosters {
		if rosters[i].Date == "2024-03-10" {
			entry = &rosters[i]
		}
	}
	require.NotNil(t, entry)
	require.Len(t, entry.AvailablePeople, 1)
	assert.Equal(t, "John Smith", entry.AvailablePeople[0].Name)
	assert.Equal(t, "JS", entry.AvailablePeople[0].Initials)
	require.NotNil(t, entry.SpecialDay)
	assert.Equal(t, "Mothering Sunday", entry.SpecialDay.Name)
}

func TestListAvailableSundaysHonorsNameFormat(t *testing.T) {
	f := newRosterFixture()
	f.settingsRepo.settings.NameFormat = models.NameFormatInitials

	sunday := date(2024, time.March, 3)
	user := f.addUser(t, "John", "Smith")
	f.markAvailable(t, user.ID, sunday)

	rosters, err := f.svc.ListAvailableSundays(context.Background(), 2024, 3)
	require.NoError(t, err)
	require.NotEmpty(t, rosters[0].AvailablePeople)
	assert.Equal(t, "JS", rosters[0].AvailablePeople[0].Name)
}

func TestListAvailableSundaysRejectsBadMonth(t *testing.T) {
	f := newRosterFixture()

	_, err := f.svc.ListAvailableSundays(context.Background(), 2024, 13)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
