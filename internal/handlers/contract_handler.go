package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// ContractHandler handles vehicle provider contract endpoints
type ContractHandler struct {
	contracts ContractManager
	audit     AuditRecorder
	logger    *logrus.Logger
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contracts ContractManager, audit AuditRecorder, logger *logrus.Logger) *ContractHandler {
	return &ContractHandler{contracts: contracts, audit: audit, logger: logger}
}

// CreateContract submits a vehicle for the fleet under contract
// POST /api/v1/provider-contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.CreateProviderContractRequest
	if !bindJSON(c, &req) {
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, h.logger, err, "create_provider_contract", logrus.Fields{"provider_id": actor.ID})
		return
	}
	c.JSON(http.StatusCreated, contract)
}

// ListMyContracts returns the caller's contracts
// GET /api/v1/provider-contracts
func (h *ContractHandler) ListMyContracts(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	contracts, err := h.contracts.ListMine(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err, "list_my_provider_contracts", logrus.Fields{"provider_id": actor.ID})
		return
	}
	c.JSON(http.StatusOK, contracts)
}

// GetContract returns one contract the caller may see
// GET /api/v1/provider-contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	contract, err := h.contracts.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.logger, err, "get_provider_contract", logrus.Fields{"contract_id": id})
		return
	}
	c.JSON(http.StatusOK, contract)
}

// UpdateContract merges vehicle spec and term changes
// PUT /api/v1/provider-contracts/:id
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.ProviderContractUpdate
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	contract, err := h.contracts.Update(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "update_provider_contract", logrus.Fields{"contract_id": id})
		return
	}
	c.JSON(http.StatusOK, contract)
}

// DeleteContract removes a contract the caller may delete
// DELETE /api/v1/provider-contracts/:id
func (h *ContractHandler) DeleteContract(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if err := h.contracts.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.logger, err, "delete_provider_contract", logrus.Fields{"contract_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contract deleted"})
}

// AdminListContracts returns all contracts, optionally by status
// GET /api/v1/admin/provider-contracts?status=active
func (h *ContractHandler) AdminListContracts(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	status := c.Query("status")
	contracts, err := h.contracts.List(c.Request.Context(), actor, status)
	if err != nil {
		respondError(c, h.logger, err, "admin_list_provider_contracts", logrus.Fields{"status": status})
		return
	}
	c.JSON(http.StatusOK, contracts)
}

// AdminSetContractStatus moves a contract through review and activation
// PUT /api/v1/admin/provider-contracts/:id/status
func (h *ContractHandler) AdminSetContractStatus(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.ContractStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	contract, err := h.contracts.AdminSetStatus(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "admin_set_contract_status", logrus.Fields{"contract_id": id, "status": req.Status})
		return
	}

	recordAdminAction(c, h.audit, actor, "contract_status", "provider_contract", id, map[string]interface{}{
		"status": contract.Status,
	})
	c.JSON(http.StatusOK, contract)
}

// AdminRecordContractPayment records a payout for the current period
// POST /api/v1/admin/provider-contracts/:id/payments
func (h *ContractHandler) AdminRecordContractPayment(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.RecordPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	id := c.Param("id")
	contract, err := h.contracts.RecordPayment(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, h.logger, err, "admin_record_contract_payment", logrus.Fields{"contract_id": id, "amount": req.Amount})
		return
	}

	recordAdminAction(c, h.audit, actor, "contract_payment_recorded", "provider_contract", id, map[string]interface{}{
		"amount": req.Amount,
	})
	c.JSON(http.StatusOK, contract)
}
