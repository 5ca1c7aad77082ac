package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veritrace/veritrace/internal/http/response"
	"github.com/veritrace/veritrace/internal/observability"
	"github.com/veritrace/veritrace/internal/service"
)

type WalletHandler struct {
	svc service.WalletRegistry
}

func NewWalletHandler(svc service.WalletRegistry) *WalletHandler {
	return &WalletHandler{svc: svc}
}

func (h *WalletHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WalletAddress string `json:"walletAddress"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		UserRole      string `json:"userRole"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	user, err := h.svc.Register(r.Context(), service.RegisterWalletInput{
		WalletAddress: body.WalletAddress,
		Name:          body.Name,
		Email:         body.Email,
		Role:          body.UserRole,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidWalletAddress),
			errors.Is(err, service.ErrInvalidUserName),
			errors.Is(err, service.ErrInvalidUserEmail),
			errors.Is(err, service.ErrInvalidUserRole),
			errors.Is(err, service.ErrWalletAlreadyRegistered):
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		default:
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to register wallet", nil)
		}
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "wallet.register",
		Actor:      user.WalletAddress,
		TargetType: "user",
		TargetID:   user.WalletAddress,
		Action:     "register",
		Outcome:    "success",
		Reason:     "wallet_registered",
	}, "role", user.Role)
	response.JSON(w, r, http.StatusCreated, map[string]any{
		"message": "Wallet registered successfully",
		"user":    user,
	})
}

func (h *WalletHandler) Check(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}

	result, err := h.svc.Check(r.Context(), body.Address)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWalletAddress) {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to check wallet", nil)
		return
	}

	payload := map[string]any{"exists": result.Exists}
	if result.Exists {
		payload["existingUser"] = result.User
	}
	response.JSON(w, r, http.StatusOK, payload)
}
