package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/veritrace/veritrace/internal/chain"
	"github.com/veritrace/veritrace/internal/domain"
	"github.com/veritrace/veritrace/internal/observability"
	"github.com/veritrace/veritrace/internal/repository"
)

var (
	ErrPaymentInvalidAmount = errors.New("amount must be greater than 0")
	ErrNoPendingPayment     = errors.New("no pending payment for this product")
)

// InitiatePaymentInput carries the purchase request. TokenID is the on-chain
// token id; the API's productId field has always meant the token, not the
// database row.
type InitiatePaymentInput struct {
	TokenID     string
	AmountInEth float64
	From        string
}

type PaymentWorkflowService struct {
	repo       repository.ProductRepository
	gateway    chain.Gateway
	ownerCache OwnerCacheStore
	logger     *slog.Logger
}

func NewPaymentWorkflowService(
	repo repository.ProductRepository,
	gateway chain.Gateway,
	ownerCache OwnerCacheStore,
	logger *slog.Logger,
) *PaymentWorkflowService {
	return &PaymentWorkflowService{repo: repo, gateway: gateway, ownerCache: ownerCache, logger: logger}
}

// Initiate records a purchase request against a minted product. The buyer's
// wallet locks funds in the escrow contract on its own; the server only
// tracks the request. A fresh initiation replaces any previous one.
func (s *PaymentWorkflowService) Initiate(ctx context.Context, input InitiatePaymentInput) error {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordWorkflowOperation(ctx, "payment_initiate", outcome, time.Since(start)) }()

	if input.AmountInEth <= 0 {
		outcome = "bad_request"
		return ErrPaymentInvalidAmount
	}
	if !chain.IsHexAddress(input.From) {
		outcome = "bad_request"
		return ErrInvalidWalletAddress
	}
	tokenID := strings.TrimSpace(input.TokenID)
	if tokenID == "" {
		outcome = "bad_request"
		return ErrInvalidTokenID
	}

	product, err := s.repo.FindByTokenID(tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return err
	}
	if !product.Minted() {
		outcome = "bad_request"
		return ErrProductNotMinted
	}

	payment := domain.PaymentRequest{
		PriceInEth: input.AmountInEth,
		From:       chain.NormalizeAddress(input.From),
		Status:     domain.PaymentStatusPending,
	}
	if err := s.repo.UpsertPayment(product.ID, payment); err != nil {
		outcome = "error"
		return err
	}
	s.logger.InfoContext(ctx, "payment initiated",
		"product_id", product.ID, "token_id", product.TokenID, "from", payment.From, "amount_eth", input.AmountInEth)
	return nil
}

// Approve releases the escrowed funds to the seller and hands the product to
// the buyer: owner becomes the payment's originator and the history grows by
// one entry.
func (s *PaymentWorkflowService) Approve(ctx context.Context, tokenID string) error {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordWorkflowOperation(ctx, "payment_approve", outcome, time.Since(start)) }()

	product, payment, err := s.pendingPayment(tokenID)
	if err != nil {
		outcome = classifyPaymentOutcome(err)
		return err
	}

	result, err := s.gateway.ApproveEscrow(ctx, product.TokenID)
	if err != nil {
		outcome = "chain_error"
		return err
	}

	if err := s.repo.SetOwnerAndAppendHistory(product.ID, payment.From, result.TxHash); err != nil {
		outcome = "error"
		return err
	}
	if err := s.repo.UpdatePaymentStatus(product.ID, domain.PaymentStatusApproved); err != nil {
		outcome = "error"
		return err
	}
	if err := s.ownerCache.Invalidate(ctx, product.TokenID); err != nil {
		s.logger.WarnContext(ctx, "owner cache invalidation failed", "token_id", product.TokenID, "error", err)
	}
	s.logger.InfoContext(ctx, "payment approved",
		"product_id", product.ID, "token_id", product.TokenID, "new_owner", payment.From, "tx_hash", result.TxHash)
	return nil
}

// Reject refunds the buyer through the escrow contract. The owner never
// changes on rejection.
func (s *PaymentWorkflowService) Reject(ctx context.Context, tokenID string) error {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordWorkflowOperation(ctx, "payment_reject", outcome, time.Since(start)) }()

	product, _, err := s.pendingPayment(tokenID)
	if err != nil {
		outcome = classifyPaymentOutcome(err)
		return err
	}

	result, err := s.gateway.RejectEscrow(ctx, product.TokenID)
	if err != nil {
		outcome = "chain_error"
		return err
	}

	if err := s.repo.UpdatePaymentStatus(product.ID, domain.PaymentStatusRejected); err != nil {
		outcome = "error"
		return err
	}
	s.logger.InfoContext(ctx, "payment rejected",
		"product_id", product.ID, "token_id", product.TokenID, "tx_hash", result.TxHash)
	return nil
}

func (s *PaymentWorkflowService) pendingPayment(tokenID string) (*domain.Product, *domain.PaymentRequest, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return nil, nil, ErrInvalidTokenID
	}
	product, err := s.repo.FindByTokenID(tokenID)
	if err != nil {
		return nil, nil, err
	}
	if !product.Minted() {
		return nil, nil, ErrProductNotMinted
	}
	if product.Payment == nil || product.Payment.Status != domain.PaymentStatusPending {
		return nil, nil, ErrNoPendingPayment
	}
	return product, product.Payment, nil
}

func classifyPaymentOutcome(err error) string {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return "not_found"
	case errors.Is(err, ErrNoPendingPayment), errors.Is(err, ErrProductNotMinted), errors.Is(err, ErrInvalidTokenID):
		return "bad_request"
	default:
		return "error"
	}
}
