package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gracechapel/roster-engine/pkg/apperrors"
	"github.com/gracechapel/roster-engine/pkg/auth"
	"github.com/gracechapel/roster-engine/pkg/models"
	"github.com/gracechapel/roster-engine/pkg/services"
)

type mockAvailabilityService struct {
	setRecord *models.Availability
	setErr    error

	lastUserID    uuid.UUID
	lastDate      time.Time
	lastAvailable bool
	lastIsAdmin   bool

	monthRecords []*models.Availability
	monthErr     error
}

var _ services.AvailabilityService = (*mockAvailabilityService)(nil)

func (m *mockAvailabilityService) SetAvailability(ctx context.Context, userID uuid.UUID, date time.Time, available, isAdmin bool) (*models.Availability, error) {
	m.lastUserID = userID
	m.lastDate = date
	m.lastAvailable = available
	m.lastIsAdmin = isAdmin
	if m.setErr != nil {
		return nil, m.setErr
	}
	return m.setRecord, nil
}

func (m *mockAvailabilityService) MonthForUser(ctx context.Context, userID uuid.UUID, year, month int) ([]*models.Availability, error) {
	m.lastUserID = userID
	return m.monthRecords, m.monthErr
}

func (m *mockAvailabilityService) Month(ctx context.Context, year, month int) ([]*models.Availability, error) {
	return m.monthRecords, m.monthErr
}

// authedRequest attaches session claims the way the auth middleware does.
func authedRequest(r *http.Request, userID uuid.UUID, isAdmin bool) *http.Request {
	claims := &auth.Claims{
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID.String(),
		},
	}
	return r.WithContext(auth.WithClaims(r.Context(), claims))
}

func TestAvailabilityHandlerSet(t *testing.T) {
	userID := uuid.New()
	svc := &mockAvailabilityService{
		setRecord: &models.Availability{
			ID:          uuid.New(),
			UserID:      userID,
			ServiceDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			IsAvailable: true,
		},
	}
	handler := NewAvailabilityHandler(svc, zap.NewNop())

	body := bytes.NewBufferString(`{"service_date": "2024-03-10", "is_available": true}`)
	req := httptest.NewRequest(http.MethodPut, "/api/availability", body)
	req = authedRequest(req, userID, false)
	w := httptest.NewRecorder()

	handler.Set(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, svc.lastUserID)
	assert.Equal(t, 10, svc.lastDate.Day())
	assert.True(t, svc.lastAvailable)
	assert.False(t, svc.lastIsAdmin)

	var record models.Availability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, userID, record.UserID)
	assert.True(t, record.IsAvailable)
}

func TestAvailabilityHandlerSetDeadlinePassed(t *testing.T) {
	svc := &mockAvailabilityService{setErr: apperrors.ErrDeadlinePassed}
	handler := NewAvailabilityHandler(svc, zap.NewNop())

	body := bytes.NewBufferString(`{"service_date": "2024-03-10", "is_available": false}`)
	req := httptest.NewRequest(http.MethodPut, "/api/availability", body)
	req = authedRequest(req, uuid.New(), false)
	w := httptest.NewRecorder()

	handler.Set(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "deadline_passed", resp["error"])
}

func TestAvailabilityHandlerSetOnBehalf(t *testing.T) {
	callerID := uuid.New()
	targetID := uuid.New()

	t.Run("admin may set for another user", func(t *testing.T) {
		svc := &mockAvailabilityService{setRecord: &models.Availability{UserID: targetID}}
		handler := NewAvailabilityHandler(svc, zap.NewNop())

		body := bytes.NewBufferString(fmt.Sprintf(`{"user_id": %q, "service_date": "2024-03-10", "is_available": true}`, targetID))
		req := httptest.NewRequest(http.MethodPut, "/api/availability", body)
		req = authedRequest(req, callerID, true)
		w := httptest.NewRecorder()

		handler.Set(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, targetID, svc.lastUserID)
		assert.True(t, svc.lastIsAdmin)
	})

	t.Run("non-admin is rejected", func(t *testing.T) {
		svc := &mockAvailabilityService{}
		handler := NewAvailabilityHandler(svc, zap.NewNop())

		body := bytes.NewBufferString(fmt.Sprintf(`{"user_id": %q, "service_date": "2024-03-10", "is_available": true}`, targetID))
		req := httptest.NewRequest(http.MethodPut, "/api/availability", body)
		req = authedRequest(req, callerID, false)
		w := httptest.NewRecorder()

		handler.Set(w, req)

		require.Equal(t, http.StatusForbidden, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "forbidden", resp["error"])
	})
}

func TestAvailabilityHandlerSetInvalidDate(t *testing.T) {
	handler := NewAvailabilityHandler(&mockAvailabilityService{}, zap.NewNop())

	body := bytes.NewBufferString(`{"service_date": "10/03/2024", "is_available": true}`)
	req := httptest.NewRequest(http.MethodPut, "/api/availability", body)
	req = authedRequest(req, uuid.New(), false)
	w := httptest.NewRecorder()

	handler.Set(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvailabilityHandlerMyMonth(t *testing.T) {
	userID := uuid.New()
	svc := &mockAvailabilityService{
		monthRecords: []*models.Availability{
			{UserID: userID, ServiceDate: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), IsAvailable: true},
			{UserID: userID, ServiceDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), IsAvailable: false},
		},
	}
	handler := NewAvailabilityHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/availability/me/2024/3", nil)
	req.SetPathValue("year", "2024")
	req.SetPathValue("month", "3")
	req = authedRequest(req, userID, false)
	w := httptest.NewRecorder()

	handler.MyMonth(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, svc.lastUserID)

	var records []*models.Availability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 2)
}

func TestAvailabilityHandlerMonthBadMonth(t *testing.T) {
	handler := NewAvailabilityHandler(&mockAvailabilityService{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/availability/month/2024/13", nil)
	req.SetPathValue("year", "2024")
	req.SetPathValue("month", "13")
	req = authedRequest(req, uuid.New(), true)
	w := httptest.NewRecorder()

	handler.Month(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
