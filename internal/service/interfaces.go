package service

//go:generate mockgen -destination gomock/mocks.go -package servicegomock github.com/veritrace/veritrace/internal/service ProductWorkflow,PaymentWorkflow,WalletRegistry

import (
	"context"

	"github.com/veritrace/veritrace/internal/domain"
	"github.com/veritrace/veritrace/internal/repository"
)

type ProductWorkflow interface {
	Mint(ctx context.Context, input MintProductInput) (*MintProductOutput, error)
	ListPaged(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.Product], error)
	Search(ctx context.Context, tokenID string) (*domain.Product, error)
	History(ctx context.Context, tokenID string) ([]domain.OwnershipRecord, error)
	Transfer(ctx context.Context, tokenID, newOwner string) (*TransferProductOutput, error)
}

type PaymentWorkflow interface {
	Initiate(ctx context.Context, input InitiatePaymentInput) error
	Approve(ctx context.Context, tokenID string) error
	Reject(ctx context.Context, tokenID string) error
}

type WalletRegistry interface {
	Register(ctx context.Context, input RegisterWalletInput) (*domain.User, error)
	Check(ctx context.Context, address string) (*WalletCheckResult, error)
}
