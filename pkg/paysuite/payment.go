package paysuite

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payload is the JSON body of a create-payment call. Keys beyond the required
// ones are sent as-is.
type Payload map[string]interface{}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentRequest is the typed form of a create-payment payload.
type PaymentRequest struct {
	Amount      string `json:"amount"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
	ReturnURL   string `json:"return_url"`
}

func (r *PaymentRequest) Payload() Payload {
	return Payload{
		"amount":      r.Amount,
		"reference":   r.Reference,
		"description": r.Description,
		"return_url":  r.ReturnURL,
	}
}

func (r *PaymentRequest) Validate() error {
	return ValidatePaymentPayload(r.Payload())
}

// Payment is the typed view of a payment request's data object.
type Payment struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
	Description string          `json:"description,omitempty"`
	Status      PaymentStatus   `json:"status"`
	CheckoutURL string          `json:"checkout_url,omitempty"`
	ReturnURL   string          `json:"return_url,omitempty"`
	Transaction *Transaction    `json:"transaction,omitempty"`
}

// IsPaid reports whether a completed transaction is attached.
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid || (p.Transaction != nil && p.Transaction.Status == "completed")
}

type Transaction struct {
	ID            int64      `json:"id"`
	Status        string     `json:"status"`
	TransactionID string     `json:"transaction_id"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}
