package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veritrace/veritrace/internal/http/response"
	"github.com/veritrace/veritrace/internal/observability"
	"github.com/veritrace/veritrace/internal/repository"
	"github.com/veritrace/veritrace/internal/service"
)

type PaymentHandler struct {
	svc service.PaymentWorkflow
}

func NewPaymentHandler(svc service.PaymentWorkflow) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// tokenIDField decodes the productId the frontend sends, which is the
// on-chain token id and arrives as either a JSON number or a string.
type tokenIDField string

func (t *tokenIDField) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = tokenIDField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = tokenIDField(n.String())
	return nil
}

func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AmountInEth float64      `json:"amountInEth"`
		Address     string       `json:"address"`
		ProductID   tokenIDField `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	err := h.svc.Initiate(r.Context(), service.InitiatePaymentInput{
		TokenID:     string(body.ProductID),
		AmountInEth: body.AmountInEth,
		From:        body.Address,
	})
	if err != nil {
		writePaymentError(w, r, err, "failed to initiate payment")
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "payment.initiate",
		Actor:      body.Address,
		TargetType: "product",
		TargetID:   string(body.ProductID),
		Action:     "initiate",
		Outcome:    "success",
		Reason:     "payment_initiated",
	})
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "Payment initiated successfully"})
}

func (h *PaymentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := decodeTokenIDBody(w, r)
	if !ok {
		return
	}

	if err := h.svc.Approve(r.Context(), tokenID); err != nil {
		writePaymentError(w, r, err, "failed to approve payment")
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "payment.approve",
		TargetType: "product",
		TargetID:   tokenID,
		Action:     "approve",
		Outcome:    "success",
		Reason:     "payment_approved",
	})
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "Payment approved successfully"})
}

func (h *PaymentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := decodeTokenIDBody(w, r)
	if !ok {
		return
	}

	if err := h.svc.Reject(r.Context(), tokenID); err != nil {
		writePaymentError(w, r, err, "failed to reject payment")
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "payment.reject",
		TargetType: "product",
		TargetID:   tokenID,
		Action:     "reject",
		Outcome:    "success",
		Reason:     "payment_rejected",
	})
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "Payment rejected successfully"})
}

func decodeTokenIDBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body struct {
		ProductID tokenIDField `json:"productId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return "", false
	}
	return string(body.ProductID), true
}

func writePaymentError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrPaymentInvalidAmount),
		errors.Is(err, service.ErrInvalidWalletAddress),
		errors.Is(err, service.ErrInvalidTokenID),
		errors.Is(err, service.ErrProductNotMinted),
		errors.Is(err, service.ErrNoPendingPayment):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, repository.ErrProductNotFound):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
	default:
		writeChainOrInternalError(w, r, err, fallback)
	}
}
