package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/internal/services"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// AuditHistory reads the admin audit trail
type AuditHistory interface {
	EntityHistory(ctx context.Context, entityType, entityID string, limit int) ([]services.AuditRecord, error)
}

var auditedEntities = map[string]bool{
	"vehicle":           true,
	"booking":           true,
	"rental":            true,
	"tour_package":      true,
	"tour_booking":      true,
	"provider_contract": true,
	"payment":           true,
	"financial_entry":   true,
	"service_record":    true,
}

// AuditHandler exposes the audit trail to admins
type AuditHandler struct {
	history AuditHistory
	logger  *logrus.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(history AuditHistory, logger *logrus.Logger) *AuditHandler {
	return &AuditHandler{history: history, logger: logger}
}

// EntityHistory GET /api/v1/admin/audit/:entityType/:id?limit=50
func (h *AuditHandler) EntityHistory(c *gin.Context) {
	entityType := c.Param("entityType")
	if !auditedEntities[entityType] {
		respondError(c, h.logger, models.ValidationFailed("entity_type", "unknown entity type "+entityType), "audit_history", nil)
		return
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, h.logger, models.ValidationFailed("limit", "must be a positive integer"), "audit_history", nil)
			return
		}
		if n > maxHistoryLimit {
			n = maxHistoryLimit
		}
		limit = n
	}

	id := c.Param("id")
	records, err := h.history.EntityHistory(c.Request.Context(), entityType, id, limit)
	if err != nil {
		respondError(c, h.logger, err, "audit_history", logrus.Fields{"entity_type": entityType, "entity_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entity_type": entityType,
		"entity_id":   id,
		"events":      records,
	})
}
