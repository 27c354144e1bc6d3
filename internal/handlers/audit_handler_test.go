package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/smarttransit/fleet-booking-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAuditHandler_EntityHistory(t *testing.T) {
	route := "/api/v1/admin/audit/:entityType/:id"

	t.Run("Default Limit", func(t *testing.T) {
		history := new(MockAuditHistory)
		handler := NewAuditHandler(history, quietLogger())

		history.On("EntityHistory", mock.Anything, "rental", "r-1", 50).
			Return([]services.AuditRecord{{Action: "rental_status", CreatedAt: time.Now()}}, nil).Once()

		w := performRequest(handler.EntityHistory, http.MethodGet, route, "/api/v1/admin/audit/rental/r-1", nil, &adminActor)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "rental_status")
		history.AssertExpectations(t)
	})

	t.Run("Limit Capped", func(t *testing.T) {
		history := new(MockAuditHistory)
		handler := NewAuditHandler(history, quietLogger())

		history.On("EntityHistory", mock.Anything, "vehicle", "v-1", 200).
			Return([]services.AuditRecord{}, nil).Once()

		w := performRequest(handler.EntityHistory, http.MethodGet, route, "/api/v1/admin/audit/vehicle/v-1?limit=5000", nil, &adminActor)

		assert.Equal(t, http.StatusOK, w.Code)
		history.AssertExpectations(t)
	})

	t.Run("Rejected Input", func(t *testing.T) {
		history := new(MockAuditHistory)
		handler := NewAuditHandler(history, quietLogger())

		w := performRequest(handler.EntityHistory, http.MethodGet, route, "/api/v1/admin/audit/users/u-1", nil, &adminActor)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "entity_type", decodeError(t, w).Field)

		w = performRequest(handler.EntityHistory, http.MethodGet, route, "/api/v1/admin/audit/rental/r-1?limit=-3", nil, &adminActor)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "limit", decodeError(t, w).Field)

		history.AssertNotCalled(t, "EntityHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Store Error Hidden", func(t *testing.T) {
		history := new(MockAuditHistory)
		handler := NewAuditHandler(history, quietLogger())

		history.On("EntityHistory", mock.Anything, "booking", "b-1", 50).
			Return(nil, errors.New("pq: relation does not exist")).Once()

		w := performRequest(handler.EntityHistory, http.MethodGet, route, "/api/v1/admin/audit/booking/b-1", nil, &adminActor)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "pq:")
	})
}
