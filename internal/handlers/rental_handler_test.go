package handlers

import (
	"net/http"
	"testing"

	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRentalHandler_AdminSetRentalStatus(t *testing.T) {
	route := "/api/v1/admin/rentals/:id/status"

	t.Run("Approved And Audited", func(t *testing.T) {
		svc := new(MockRentalService)
		audit := new(MockAuditRecorder)
		handler := NewRentalHandler(svc, audit, quietLogger())

		contractID := "CTR-1743465600000-A1B2C3"
		svc.On("AdminSetStatus", mock.Anything, adminActor, "r-1", mock.MatchedBy(func(req *models.RentalStatusRequest) bool {
			return req.Status == "approved" && req.Fees != nil && *req.Fees == 42000
		})).Return(&models.Rental{ID: "r-1", VehicleID: "v-1", Status: models.RentalStatusApproved, ContractID: &contractID}, nil).Once()
		audit.On("RecordAdminAction", mock.Anything, mock.MatchedBy(func(e services.AuditEvent) bool {
			return e.Action == "rental_status" && e.EntityID == "r-1" && e.UserID == "admin-1" && e.Details["status"] == models.RentalStatusApproved
		})).Once()

		w := performRequest(handler.AdminSetRentalStatus, http.MethodPut, route, "/api/v1/admin/rentals/r-1/status",
			map[string]interface{}{"status": "approved", "fees": 42000}, &adminActor)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), contractID)
		svc.AssertExpectations(t)
		audit.AssertExpectations(t)
	})

	t.Run("Vehicle Taken", func(t *testing.T) {
		svc := new(MockRentalService)
		audit := new(MockAuditRecorder)
		handler := NewRentalHandler(svc, audit, quietLogger())

		svc.On("AdminSetStatus", mock.Anything, adminActor, "r-2", mock.Anything).
			Return(nil, models.ResourceConflict("vehicle v-1 is already reserved")).Once()

		w := performRequest(handler.AdminSetRentalStatus, http.MethodPut, route, "/api/v1/admin/rentals/r-2/status",
			map[string]interface{}{"status": "approved"}, &adminActor)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "resource_conflict", decodeError(t, w).Error)
		audit.AssertNotCalled(t, "RecordAdminAction", mock.Anything, mock.Anything)
	})

	t.Run("Missing Status", func(t *testing.T) {
		svc := new(MockRentalService)
		handler := NewRentalHandler(svc, nil, quietLogger())

		w := performRequest(handler.AdminSetRentalStatus, http.MethodPut, route, "/api/v1/admin/rentals/r-1/status",
			map[string]interface{}{"notes": "no status"}, &adminActor)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_failed", decodeError(t, w).Error)
		svc.AssertNotCalled(t, "AdminSetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRentalHandler_CreateRental(t *testing.T) {
	svc := new(MockRentalService)
	handler := NewRentalHandler(svc, nil, quietLogger())

	svc.On("Create", mock.Anything, customerActor, mock.MatchedBy(func(req *models.CreateRentalRequest) bool {
		return req.VehicleID == "missing"
	})).Return(nil, models.NotFound("vehicle", "missing")).Once()

	w := performRequest(handler.CreateRental, http.MethodPost, "/api/v1/rentals", "/api/v1/rentals",
		map[string]interface{}{
			"vehicle_id":  "missing",
			"rental_type": "daily",
			"start_date":  "2025-04-01T00:00:00Z",
			"end_date":    "2025-04-04T00:00:00Z",
		}, &customerActor)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Error)
	svc.AssertExpectations(t)
}

func TestRentalHandler_AdminDeleteRental(t *testing.T) {
	svc := new(MockRentalService)
	handler := NewRentalHandler(svc, nil, quietLogger())

	svc.On("Delete", mock.Anything, adminActor, "r-active").
		Return(models.InvalidTransition("status", "cannot delete a rental while it holds its vehicle")).Once()
	svc.On("Delete", mock.Anything, adminActor, "r-pending").Return(nil).Once()

	w := performRequest(handler.AdminDeleteRental, http.MethodDelete, "/api/v1/admin/rentals/:id", "/api/v1/admin/rentals/r-active", nil, &adminActor)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "invalid_transition", resp.Error)
	assert.Equal(t, "status", resp.Field)

	w = performRequest(handler.AdminDeleteRental, http.MethodDelete, "/api/v1/admin/rentals/:id", "/api/v1/admin/rentals/r-pending", nil, &adminActor)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
