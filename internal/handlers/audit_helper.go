package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
	"github.com/smarttransit/fleet-booking-backend/internal/services"
	"github.com/smarttransit/fleet-booking-backend/internal/utils"
)

// AuditRecorder persists admin actions. A nil recorder disables auditing.
type AuditRecorder interface {
	RecordAdminAction(ctx context.Context, event services.AuditEvent)
}

// recordAdminAction writes an audit row for a committed admin change
func recordAdminAction(c *gin.Context, audit AuditRecorder, actor models.Actor, action, entityType, entityID string, details map[string]interface{}) {
	if audit == nil {
		return
	}
	client := utils.Client(c)
	audit.RecordAdminAction(c.Request.Context(), services.AuditEvent{
		UserID:     actor.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  client.IP,
		UserAgent:  client.UserAgent,
		Details:    details,
	})
}
