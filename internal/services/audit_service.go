package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/database"
	"github.com/smarttransit/fleet-booking-backend/internal/utils"
)

// AuditService handles audit logging for admin actions
type AuditService struct {
	db     database.DB
	logger *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB, logger *logrus.Logger) *AuditService {
	return &AuditService{
		db:     db,
		logger: logger,
	}
}

// AuditEvent represents an admin event to be logged
type AuditEvent struct {
	UserID     string                 // Acting admin
	Action     string                 // Action type (e.g., "rental_status", "booking_pricing")
	EntityType string                 // Type of entity affected (e.g., "rental", "booking")
	EntityID   string                 // ID of the affected entity
	IPAddress  string                 // Client IP address
	UserAgent  string                 // Client user agent
	Details    map[string]interface{} // Additional details as JSONB
}

// RecordAdminAction logs an admin change to an entity. Failures are logged
// and never returned; the change has already been committed.
func (s *AuditService) RecordAdminAction(ctx context.Context, event AuditEvent) {
	if event.Details == nil {
		event.Details = make(map[string]interface{})
	}
	event.Details["device_info"] = utils.ParseUserAgent(event.UserAgent)

	if err := s.logEvent(ctx, event); err != nil {
		s.logger.WithFields(logrus.Fields{
			"action":      event.Action,
			"entity_type": event.EntityType,
			"entity_id":   event.EntityID,
			"error":       err.Error(),
		}).Warn("Failed to write audit log")
	}
}

// logEvent is the internal method that writes to the audit_logs table
func (s *AuditService) logEvent(ctx context.Context, event AuditEvent) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query,
		event.UserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		details,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}

// AuditRecord is one row of the audit trail
type AuditRecord struct {
	UserID    *string          `json:"user_id" db:"user_id"`
	Action    string           `json:"action" db:"action"`
	IPAddress *string          `json:"ip_address" db:"ip_address"`
	UserAgent *string          `json:"user_agent" db:"user_agent"`
	Details   *json.RawMessage `json:"details" db:"details"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// EntityHistory retrieves recent audit events for an entity
func (s *AuditService) EntityHistory(ctx context.Context, entityType, entityID string, limit int) ([]AuditRecord, error) {
	query := `
		SELECT user_id, action, ip_address, user_agent, details, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	records := []AuditRecord{}
	if err := s.db.SelectContext(ctx, &records, query, entityType, entityID, limit); err != nil {
		return nil, fmt.Errorf("failed to get entity history: %w", err)
	}
	return records, nil
}

// CleanupOldAuditLogs removes audit logs older than the specified duration
func (s *AuditService) CleanupOldAuditLogs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoffTime := time.Now().Add(-olderThan)

	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old audit logs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
