package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// FinanceHandler handles ledger rows, service records and financial reports.
// Every route is admin-only.
type FinanceHandler struct {
	finance FinanceManager
	audit   AuditRecorder
	logger  *logrus.Logger
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(finance FinanceManager, audit AuditRecorder, logger *logrus.Logger) *FinanceHandler {
	return &FinanceHandler{finance: finance, audit: audit, logger: logger}
}

// CreateEntry POST /api/v1/admin/finance/entries
func (h *FinanceHandler) CreateEntry(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.FinancialEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.finance.CreateEntry(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err, "create_financial_entry", logrus.Fields{"type": req.Type})
		return
	}

	recordAdminAction(c, h.audit, actor, "ledger_entry_created", "financial_entry", entry.ID, nil)
	c.JSON(http.StatusCreated, entry)
}

// ListEntries GET /api/v1/admin/finance/entries?from=&to=
func (h *FinanceHandler) ListEntries(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	period, err := parsePeriod(c)
	if err != nil {
		respondError(c, h.logger, err, "list_financial_entries", nil)
		return
	}

	entries, err := h.finance.ListEntries(c.Request.Context(), actor, period)
	if err != nil {
		respondError(c, h.logger, err, "list_financial_entries", nil)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// UpdateEntry PUT /api/v1/admin/finance/entries/:id
func (h *FinanceHandler) UpdateEntry(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.FinancialEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	entry, err := h.finance.UpdateEntry(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "update_financial_entry", logrus.Fields{"entry_id": id})
		return
	}

	recordAdminAction(c, h.audit, actor, "ledger_entry_updated", "financial_entry", id, nil)
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry DELETE /api/v1/admin/finance/entries/:id
func (h *FinanceHandler) DeleteEntry(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.finance.DeleteEntry(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err, "delete_financial_entry", logrus.Fields{"entry_id": id})
		return
	}

	recordAdminAction(c, h.audit, actor, "ledger_entry_deleted", "financial_entry", id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Entry deleted"})
}

// CreateServiceRecord POST /api/v1/admin/finance/service-records
func (h *FinanceHandler) CreateServiceRecord(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.ServiceRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	record, err := h.finance.CreateServiceRecord(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err, "create_service_record", logrus.Fields{"vehicle_id": req.VehicleID})
		return
	}

	recordAdminAction(c, h.audit, actor, "service_record_created", "service_record", record.ID, nil)
	c.JSON(http.StatusCreated, record)
}

// ListServiceRecords GET /api/v1/admin/finance/service-records?from=&to=
func (h *FinanceHandler) ListServiceRecords(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	period, err := parsePeriod(c)
	if err != nil {
		respondError(c, h.logger, err, "list_service_records", nil)
		return
	}

	records, err := h.finance.ListServiceRecords(c.Request.Context(), actor, period)
	if err != nil {
		respondError(c, h.logger, err, "list_service_records", nil)
		return
	}
	c.JSON(http.StatusOK, records)
}

// UpdateServiceRecord PUT /api/v1/admin/finance/service-records/:id
func (h *FinanceHandler) UpdateServiceRecord(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.ServiceRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	record, err := h.finance.UpdateServiceRecord(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "update_service_record", logrus.Fields{"service_record_id": id})
		return
	}

	recordAdminAction(c, h.audit, actor, "service_record_updated", "service_record", id, nil)
	c.JSON(http.StatusOK, record)
}

// DeleteServiceRecord DELETE /api/v1/admin/finance/service-records/:id
func (h *FinanceHandler) DeleteServiceRecord(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.finance.DeleteServiceRecord(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err, "delete_service_record", logrus.Fields{"service_record_id": id})
		return
	}

	recordAdminAction(c, h.audit, actor, "service_record_deleted", "service_record", id, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Service record deleted"})
}

// Summary GET /api/v1/admin/finance/summary?from=&to=
func (h *FinanceHandler) Summary(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	period, err := parsePeriod(c)
	if err != nil {
		respondError(c, h.logger, err, "financial_summary", nil)
		return
	}

	summary, err := h.finance.Summary(c.Request.Context(), actor, period)
	if err != nil {
		respondError(c, h.logger, err, "financial_summary", nil)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Monthly GET /api/v1/admin/finance/monthly?from=&to=
func (h *FinanceHandler) Monthly(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	period, err := parsePeriod(c)
	if err != nil {
		respondError(c, h.logger, err, "financial_monthly", nil)
		return
	}

	months, err := h.finance.Monthly(c.Request.Context(), actor, period)
	if err != nil {
		respondError(c, h.logger, err, "financial_monthly", nil)
		return
	}
	c.JSON(http.StatusOK, months)
}
