package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Payment is a settlement record tied to one booking
type Payment struct {
	ID               string           `json:"id" db:"id"`
	BookingID        string           `json:"booking_id" db:"booking_id"`
	CustomerID       string           `json:"customer_id" db:"customer_id"`
	Amount           float64          `json:"amount" db:"amount"`
	Currency         string           `json:"currency" db:"currency"`
	Method           PaymentMethod    `json:"method" db:"method"`
	Status           SettlementStatus `json:"status" db:"status"`
	TransactionID    string           `json:"transaction_id" db:"transaction_id"`
	GatewayReference *string          `json:"gateway_reference,omitempty" db:"gateway_reference"`
	FailureReason    *string          `json:"failure_reason,omitempty" db:"failure_reason"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// GenerateTransactionID generates a unique payment transaction identifier
// Format: TXN-<unix millis>-XXXXXXXX
func GenerateTransactionID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TXN-%d-%s", now.UnixMilli(), suffix)
}

// CreatePaymentRequest records a payment against a booking
type CreatePaymentRequest struct {
	BookingID        string  `json:"booking_id" binding:"required"`
	Amount           float64 `json:"amount" binding:"required"`
	Method           string  `json:"method" binding:"required"`
	GatewayReference *string `json:"gateway_reference,omitempty"`
}

// Validate validates the create payment request
func (r *CreatePaymentRequest) Validate() error {
	if r.Amount <= 0 {
		return ValidationFailed("amount", "must be greater than 0")
	}
	_, err := ParsePaymentMethod(r.Method)
	return err
}

// PaymentStatusRequest is the admin payment status change payload
type PaymentStatusRequest struct {
	Status        string  `json:"status" binding:"required"`
	FailureReason *string `json:"failure_reason,omitempty"`
}

// SettledPaymentStatus derives a booking's payment status from all of its
// payments. Any completed payment keeps the booking paid; otherwise the most
// recently written payment decides. latest must be that payment and replaces
// its stale copy in payments, if any.
func SettledPaymentStatus(payments []Payment, latest Payment) PaymentStatus {
	if latest.Status == SettlementCompleted {
		return PaymentStatusPaid
	}
	for _, p := range payments {
		if p.ID != latest.ID && p.Status == SettlementCompleted {
			return PaymentStatusPaid
		}
	}
	return latest.Status.BookingPaymentStatus()
}
