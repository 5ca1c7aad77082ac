package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/veritrace/veritrace/internal/domain"
	"github.com/veritrace/veritrace/internal/service"
	servicegomock "github.com/veritrace/veritrace/internal/service/gomock"
)

func TestRegisterWalletHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockWalletRegistry(ctrl)
	h := NewWalletHandler(svc)

	svc.EXPECT().Register(gomock.Any(), service.RegisterWalletInput{
		WalletAddress: testWallet,
		Name:          "Acme",
		Email:         "ops@acme.example",
		Role:          domain.RoleBrand,
	}).Return(&domain.User{ID: 1, WalletAddress: testWallet, Name: "Acme", Email: "ops@acme.example", Role: domain.RoleBrand}, nil)

	body := `{"walletAddress":"` + testWallet + `","name":"Acme","email":"ops@acme.example","userRole":"Brand"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register-wallet", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		User domain.User `json:"user"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.WalletAddress != testWallet {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestRegisterWalletHandlerDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockWalletRegistry(ctrl)
	h := NewWalletHandler(svc)

	svc.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, service.ErrWalletAlreadyRegistered)

	body := `{"walletAddress":"` + testWallet + `","name":"Acme","email":"ops@acme.example","userRole":"Brand"}`
	req := httptest.NewRequest(http.MethodPost, "/api/register-wallet", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate wallet, got %d", rr.Code)
	}
}

func TestCheckWalletHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockWalletRegistry(ctrl)
	h := NewWalletHandler(svc)

	t.Run("unknown wallet", func(t *testing.T) {
		svc.EXPECT().Check(gomock.Any(), testWallet).Return(&service.WalletCheckResult{Exists: false}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/check-wallet", strings.NewReader(`{"address":"`+testWallet+`"}`))
		rr := httptest.NewRecorder()
		h.Check(rr, req)

		var resp map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["exists"] != false {
			t.Fatalf("expected exists=false, got %v", resp)
		}
		if _, present := resp["existingUser"]; present {
			t.Fatal("existingUser must be omitted for unknown wallets")
		}
	})

	t.Run("registered wallet", func(t *testing.T) {
		svc.EXPECT().Check(gomock.Any(), testWallet).Return(&service.WalletCheckResult{
			Exists: true,
			User:   &domain.User{WalletAddress: testWallet, Role: domain.RoleBrand},
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/check-wallet", strings.NewReader(`{"address":"`+testWallet+`"}`))
		rr := httptest.NewRecorder()
		h.Check(rr, req)

		var resp struct {
			Exists       bool         `json:"exists"`
			ExistingUser *domain.User `json:"existingUser"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Exists || resp.ExistingUser == nil || resp.ExistingUser.WalletAddress != testWallet {
			t.Fatalf("unexpected response: %+v", resp)
		}
	})

	t.Run("malformed address", func(t *testing.T) {
		svc.EXPECT().Check(gomock.Any(), "nope").Return(nil, service.ErrInvalidWalletAddress)

		req := httptest.NewRequest(http.MethodPost, "/api/check-wallet", strings.NewReader(`{"address":"nope"}`))
		rr := httptest.NewRecorder()
		h.Check(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}
