package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/veritrace/veritrace/internal/chain"
	"github.com/veritrace/veritrace/internal/repository"
	"github.com/veritrace/veritrace/internal/service"
	servicegomock "github.com/veritrace/veritrace/internal/service/gomock"
)

func TestInitiatePaymentHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockPaymentWorkflow(ctrl)
	h := NewPaymentHandler(svc)

	svc.EXPECT().Initiate(gomock.Any(), service.InitiatePaymentInput{
		TokenID:     "1",
		AmountInEth: 0.5,
		From:        testWallet,
	}).Return(nil)

	body := `{"amountInEth":0.5,"address":"` + testWallet + `","productId":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/initiatePayment", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Initiate(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "Payment initiated successfully") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

// The frontend sends productId as the token id, as either a JSON number or a
// string; both forms must reach the service as the same token id.
func TestInitiatePaymentHandlerStringProductID(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockPaymentWorkflow(ctrl)
	h := NewPaymentHandler(svc)

	svc.EXPECT().Initiate(gomock.Any(), service.InitiatePaymentInput{
		TokenID:     "42",
		AmountInEth: 0.5,
		From:        testWallet,
	}).Return(nil)

	body := `{"amountInEth":0.5,"address":"` + testWallet + `","productId":"42"}`
	req := httptest.NewRequest(http.MethodPost, "/api/initiatePayment", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Initiate(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestInitiatePaymentHandlerUnknownProduct(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockPaymentWorkflow(ctrl)
	h := NewPaymentHandler(svc)

	svc.EXPECT().Initiate(gomock.Any(), gomock.Any()).Return(repository.ErrProductNotFound)

	body := `{"amountInEth":0.5,"address":"` + testWallet + `","productId":404}`
	req := httptest.NewRequest(http.MethodPost, "/api/initiatePayment", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.Initiate(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestApprovePaymentHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockPaymentWorkflow(ctrl)
	h := NewPaymentHandler(svc)

	svc.EXPECT().Approve(gomock.Any(), "7").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/approvePayment", strings.NewReader(`{"productId":7}`))
	rr := httptest.NewRecorder()
	h.Approve(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestApprovePaymentHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"no pending payment", service.ErrNoPendingPayment, http.StatusBadRequest},
		{"unminted", service.ErrProductNotMinted, http.StatusBadRequest},
		{"missing product", repository.ErrProductNotFound, http.StatusNotFound},
		{"escrow revert", chain.ErrTxReverted, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := servicegomock.NewMockPaymentWorkflow(ctrl)
			h := NewPaymentHandler(svc)
			svc.EXPECT().Approve(gomock.Any(), gomock.Any()).Return(tt.svcErr)

			req := httptest.NewRequest(http.MethodPost, "/api/approvePayment", strings.NewReader(`{"productId":7}`))
			rr := httptest.NewRecorder()
			h.Approve(rr, req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestRejectPaymentHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockPaymentWorkflow(ctrl)
	h := NewPaymentHandler(svc)

	svc.EXPECT().Reject(gomock.Any(), "7").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/rejectPayment", strings.NewReader(`{"productId":7}`))
	rr := httptest.NewRecorder()
	h.Reject(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Payment rejected successfully") {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}
