package sandbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/paysuite/pkg/logger"
	"github.com/frahmantamala/paysuite/pkg/paysuite"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

const paidAtLayout = "2006-01-02T15:04:05.000000Z"

type Handler struct {
	store     *Store
	publicURL string
	logger    *slog.Logger
	now       func() time.Time
}

func NewHandler(store *Store, publicURL string, lg *slog.Logger) *Handler {
	if lg == nil {
		lg = logger.L()
	}
	return &Handler{
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    lg,
		now:       time.Now,
	}
}

// CreatePayment handles POST /payments.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var payload paysuite.Payload
	if err := decoder.Decode(&payload); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := paysuite.ValidatePaymentPayload(payload); err != nil {
		h.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	amount, err := paysuite.ParseAmount(payload["amount"])
	if err != nil {
		h.WriteError(w, http.StatusUnprocessableEntity, "Amount must be a positive number")
		return
	}

	id := uuid.NewString()
	p := &paysuite.Payment{
		ID:          id,
		Amount:      amount,
		Reference:   fmt.Sprint(payload["reference"]),
		Description: fmt.Sprint(payload["description"]),
		ReturnURL:   fmt.Sprint(payload["return_url"]),
		Status:      paysuite.PaymentStatusPending,
		CheckoutURL: h.baseURL(r) + "/checkout/" + id,
	}
	h.store.Create(p)

	logger.From(r.Context()).Info("sandbox: payment request created",
		"payment_id", id,
		"reference", p.Reference,
		"amount", amount.StringFixed(2))

	h.WriteSuccess(w, http.StatusCreated, paymentData(p))
}

// GetPayment handles GET /payments/{id}.
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, err := h.store.Get(id)
	if err != nil {
		h.WriteError(w, http.StatusNotFound, "Payment request not found")
		return
	}

	h.WriteSuccess(w, http.StatusOK, paymentData(p))
}

// Checkout handles GET /checkout/{id}. Visiting the page completes the
// payment with a generated transaction id.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	transactionID := "SANDBOX" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	p, err := h.store.MarkPaid(id, transactionID, h.now())
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		h.WriteError(w, http.StatusNotFound, "Payment request not found")
		return
	case errors.Is(err, ErrAlreadyPaid):
		h.WriteError(w, http.StatusConflict, "Payment request already paid")
		return
	case err != nil:
		h.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.From(r.Context()).Info("sandbox: payment completed",
		"payment_id", id,
		"transaction_id", transactionID)

	if p.ReturnURL != "" && r.URL.Query().Get("redirect") != "false" {
		http.Redirect(w, r, p.ReturnURL, http.StatusFound)
		return
	}
	h.WriteSuccess(w, http.StatusOK, paymentData(p))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"payments":   h.store.Len(),
		"checked_at": h.now().UTC(),
	})
}

func (h *Handler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *Handler) WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	h.WriteJSON(w, status, map[string]interface{}{
		"status": paysuite.StatusSuccess,
		"data":   data,
	})
}

func (h *Handler) WriteError(w http.ResponseWriter, status int, message string) {
	h.logger.Warn("sandbox: request failed", "status", status, "message", message)
	h.WriteJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
	})
}

func (h *Handler) baseURL(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func paymentData(p *paysuite.Payment) map[string]interface{} {
	data := map[string]interface{}{
		"id":           p.ID,
		"amount":       p.Amount.StringFixed(2),
		"reference":    p.Reference,
		"description":  p.Description,
		"status":       p.Status,
		"checkout_url": p.CheckoutURL,
	}
	if p.Transaction != nil {
		tx := map[string]interface{}{
			"id":             p.Transaction.ID,
			"status":         p.Transaction.Status,
			"transaction_id": p.Transaction.TransactionID,
		}
		if p.Transaction.PaidAt != nil {
			tx["paid_at"] = p.Transaction.PaidAt.UTC().Format(paidAtLayout)
		}
		data["transaction"] = tx
	}
	return data
}
