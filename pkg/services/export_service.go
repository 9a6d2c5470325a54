package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/models"
	"github.com/gracechapel/roster-engine/pkg/repositories"
	"github.com/gracechapel/roster-engine/pkg/schedule"
)

// Roster publication states as reported to members.
const (
	RosterStatusPublished = "published"
	RosterStatusDraft     = "draft"
)

// RoleSlot is one role on a Sunday with the people assigned to it, in role
// position order.
type RoleSlot struct {
	RoleName string   `json:"role_name"`
	People   []string `json:"people"`
}

// MonthSunday is one service date of the rendered month.
type MonthSunday struct {
	Date       string             `json:"date"`
	SpecialDay *models.SpecialDay `json:"special_day,omitempty"`
	Slots      []RoleSlot         `json:"slots"`
}

// MonthRoster is the member-facing and export-facing view of a month:
// per-Sunday role slots plus the finalization state.
type MonthRoster struct {
	Year    int           `json:"year"`
	Month   int           `json:"month"`
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Sundays []MonthSunday `json:"sundays"`
}

// PDFRenderer renders a month roster to a PDF document.
type PDFRenderer interface {
	RenderMonthRoster(roster *MonthRoster) ([]byte, error)
}

// Mailer delivers a document to a recipient. Implementations own transport
// concerns entirely.
type Mailer interface {
	SendWithAttachment(ctx context.Context, to, subject, body, filename string, attachment []byte) error
}

// ExportService assembles the month view and emails its PDF rendering.
type ExportService interface {
	MonthRoster(ctx context.Context, year, month int) (*MonthRoster, error)
	// EmailRoster renders the month to PDF and sends it to the given
	// address. Fails with ErrValidation when mail is not configured.
	EmailRoster(ctx context.Context, year, month int, to string) error
}

type exportService struct {
	assignmentRepo repositories.AssignmentRepository
	roleRepo       repositories.RoleRepository
	userRepo       repositories.UserRepository
	specialDayRepo repositories.SpecialDayRepository
	settingsRepo   repositories.SettingsRepository
	finalizeSvc    FinalizeService
	renderer       PDFRenderer
	mailer         Mailer
	logger         *zap.Logger
}

// NewExportService creates a new ExportService. mailer may be nil when
// outbound mail is not configured.
func NewExportService(
	assignmentRepo repositories.AssignmentRepository,
	roleRepo repositories.RoleRepository,
	userRepo repositories.UserRepository,
	specialDayRepo repositories.SpecialDayRepository,
	settingsRepo repositories.SettingsRepository,
	finalizeSvc FinalizeService,
	renderer PDFRenderer,
	mailer Mailer,
	logger *zap.Logger,
) ExportService {
	return &exportService{
		assignmentRepo: assignmentRepo,
		roleRepo:       roleRepo,
		userRepo:       userRepo,
		specialDayRepo: specialDayRepo,
		settingsRepo:   settingsRepo,
		finalizeSvc:    finalizeSvc,
		renderer:       renderer,
		mailer:         mailer,
		logger:         logger,
	}
}

var _ ExportService = (*exportService)(nil)

func (s *exportService) MonthRoster(ctx context.Context, year, month int) (*MonthRoster, error) {
	sundays, err := schedule.SundaysInMonth(year, month)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	status, err := s.finalizeSvc.Status(ctx, year, month)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	roster := &MonthRoster{
		Year:    year,
		Month:   month,
		Status:  RosterStatusDraft,
		Message: status.Message,
	}
	if status.IsFinalized {
		roster.Status = RosterStatusPublished
	}

	for _, sunday := range sundays {
		entry := MonthSunday{Date: schedule.DateKey(sunday)}

		specialDay, err := s.specialDayRepo.GetByDate(ctx, sunday)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		entry.SpecialDay = specialDay

		assignments, err := s.assignmentRepo.GetForDate(ctx, sunday)
		if err != nil {
			return nil, err
		}

		peopleByRole := make(map[string][]string)
		for _, a := range assignments {
			user, err := s.userRepo.GetByID(ctx, a.UserID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					continue
				}
				return nil, err
			}
			name := user.DisplayName(settings.NameFormat)
			for _, role := range roles {
				if role.ID == a.RoleID {
					peopleByRole[role.Name] = append(peopleByRole[role.Name], name)
					break
				}
			}
		}

		// Role slots follow registry position order; empty roles are
		// skipped in the rendered month.
		for _, role := range roles {
			if people, ok := peopleByRole[role.Name]; ok {
				entry.Slots = append(entry.Slots, RoleSlot{RoleName: role.Name, People: people})
			}
		}

		roster.Sundays = append(roster.Sundays, entry)
	}

	return roster, nil
}

func (s *exportService) EmailRoster(ctx context.Context, year, month int, to string) error {
	if s.mailer == nil {
		return fmt.Errorf("%w: outbound mail is not configured", apperrors.ErrValidation)
	}
	if to == "" {
		return fmt.Errorf("%w: recipient address is required", apperrors.ErrValidation)
	}

	roster, err := s.MonthRoster(ctx, year, month)
	if err != nil {
		return err
	}

	document, err := s.renderer.RenderMonthRoster(roster)
	if err != nil {
		return fmt.Errorf("failed to render roster PDF: %w", err)
	}

	monthName := monthLabel(year, month)
	subject := fmt.Sprintf("Service roster for %s", monthName)
	body := fmt.Sprintf("Attached is the service roster for %s.", monthName)
	if roster.Message != "" {
		body += "\n\n" + roster.Message
	}
	filename := fmt.Sprintf("roster-%04d-%02d.pdf", year, month)

	if err := s.mailer.SendWithAttachment(ctx, to, subject, body, filename, document); err != nil {
		return fmt.Errorf("failed to email roster: %w", err)
	}

	s.logger.Info("Roster emailed",
		zap.Int("year", year),
		zap.Int("month", month),
		zap.String("to", to),
		zap.Int("pdf_bytes", len(document)))
	return nil
}

func monthLabel(year, month int) string {
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}
