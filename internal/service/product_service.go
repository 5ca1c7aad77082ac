package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/veritrace/veritrace/internal/chain"
	"github.com/veritrace/veritrace/internal/config"
	"github.com/veritrace/veritrace/internal/domain"
	"github.com/veritrace/veritrace/internal/observability"
	"github.com/veritrace/veritrace/internal/repository"
)

var (
	ErrProductInvalidName        = errors.New("name must be between 3 and 120 characters")
	ErrProductInvalidDescription = errors.New("description must be <= 500 characters")
	ErrProductInvalidPrice       = errors.New("price must be greater than 0")
	ErrProductInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidWalletAddress      = errors.New("address must be a 42-character 0x-prefixed hex string")
	ErrInvalidTokenID            = errors.New("token id must be a non-negative integer")
	ErrDuplicateProduct          = errors.New("a product with this name already exists for this owner")
	ErrProductNotMinted          = errors.New("product has not been minted yet")
)

type MintProductInput struct {
	Recipient   string
	Name        string
	Description string
	PriceInEth  float64
	Quantity    int
	Category    string
	Attributes  []domain.ProductAttribute

	// Image is optional; when set, the file is uploaded before the mint and
	// removed again if the mint fails.
	Image     io.Reader
	ImageSize int64
}

type MintProductOutput struct {
	TxHash  string
	TokenID string
	Product *domain.Product
}

type TransferProductOutput struct {
	TxHash  string
	Owner   string
	Product *domain.Product
}

type ProductWorkflowService struct {
	repo       repository.ProductRepository
	gateway    chain.Gateway
	storage    StorageService
	ownerCache OwnerCacheStore
	logger     *slog.Logger

	duplicateCheck bool
	ownerCacheTTL  time.Duration
	ownerLookups   singleflight.Group
}

func NewProductWorkflowService(
	cfg *config.Config,
	repo repository.ProductRepository,
	gateway chain.Gateway,
	storage StorageService,
	ownerCache OwnerCacheStore,
	logger *slog.Logger,
) *ProductWorkflowService {
	return &ProductWorkflowService{
		repo:           repo,
		gateway:        gateway,
		storage:        storage,
		ownerCache:     ownerCache,
		logger:         logger,
		duplicateCheck: cfg.MintDuplicateCheck,
		ownerCacheTTL:  cfg.OwnerCacheTTL,
	}
}

// Mint creates the product record first, then submits the on-chain mint, and
// finally writes back the assigned token id. If the chain step fails the
// record (and any uploaded image) is deleted so a failed mint leaves nothing
// behind.
func (s *ProductWorkflowService) Mint(ctx context.Context, input MintProductInput) (*MintProductOutput, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordWorkflowOperation(ctx, "mint", outcome, time.Since(start)) }()

	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)
	if len(name) < 3 || len(name) > 120 {
		outcome = "bad_request"
		return nil, ErrProductInvalidName
	}
	if len(description) > 500 {
		outcome = "bad_request"
		return nil, ErrProductInvalidDescription
	}
	if input.PriceInEth <= 0 {
		outcome = "bad_request"
		return nil, ErrProductInvalidPrice
	}
	if input.Quantity < 1 {
		outcome = "bad_request"
		return nil, ErrProductInvalidQuantity
	}
	if !chain.IsHexAddress(input.Recipient) {
		outcome = "bad_request"
		return nil, ErrInvalidWalletAddress
	}
	owner := chain.NormalizeAddress(input.Recipient)

	if s.duplicateCheck {
		exists, err := s.repo.ExistsByNameAndOwner(name, owner)
		if err != nil {
			outcome = "error"
			return nil, err
		}
		if exists {
			outcome = "duplicate"
			return nil, ErrDuplicateProduct
		}
	}

	product := &domain.Product{
		Name:        name,
		Description: description,
		Category:    strings.TrimSpace(input.Category),
		Quantity:    input.Quantity,
		PriceInEth:  input.PriceInEth,
		Owner:       owner,
		Status:      domain.ProductStatusPendingMint,
		Attributes:  input.Attributes,
	}

	imageKey := ""
	if input.Image != nil {
		key, err := s.storage.UploadProductImage(ctx, owner, input.Image, input.ImageSize)
		if err != nil {
			outcome = "bad_request"
			return nil, err
		}
		imageKey = key
		product.ImageURL = key
	}

	if err := s.repo.Create(product); err != nil {
		s.cleanupImage(ctx, imageKey)
		outcome = "error"
		return nil, err
	}

	result, err := s.gateway.Mint(ctx, owner, name)
	if err != nil {
		s.rollbackMint(ctx, product.ID, imageKey, err)
		outcome = "chain_error"
		return nil, err
	}

	if err := s.repo.MarkMinted(product.ID, result.TokenID, result.TxHash); err != nil {
		// The token exists on chain at this point; keep the row rather than
		// orphan the token, and surface the write failure.
		s.logger.ErrorContext(ctx, "mint confirmed on chain but token id write failed",
			"product_id", product.ID, "token_id", result.TokenID, "error", err)
		outcome = "error"
		return nil, err
	}

	minted, err := s.repo.FindByID(product.ID)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	s.logger.InfoContext(ctx, "product minted",
		"product_id", minted.ID, "token_id", result.TokenID, "owner", owner, "tx_hash", result.TxHash)
	return &MintProductOutput{TxHash: result.TxHash, TokenID: result.TokenID, Product: minted}, nil
}

func (s *ProductWorkflowService) rollbackMint(ctx context.Context, productID uint, imageKey string, cause error) {
	s.logger.WarnContext(ctx, "mint failed, rolling back product record",
		"product_id", productID, "error", cause)
	if err := s.repo.DeleteByID(productID); err != nil && !errors.Is(err, repository.ErrProductNotFound) {
		s.logger.ErrorContext(ctx, "mint rollback failed", "product_id", productID, "error", err)
	}
	s.cleanupImage(ctx, imageKey)
}

func (s *ProductWorkflowService) cleanupImage(ctx context.Context, imageKey string) {
	if imageKey == "" {
		return
	}
	if err := s.storage.DeleteProductImage(ctx, imageKey); err != nil {
		s.logger.WarnContext(ctx, "orphaned product image not deleted", "object_key", imageKey, "error", err)
	}
}

func (s *ProductWorkflowService) ListPaged(ctx context.Context, req repository.PageRequest) (repository.PageResult[domain.Product], error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordWorkflowOperation(ctx, "list", outcome, time.Since(start)) }()

	res, err := s.repo.ListPaged(req)
	if err != nil {
		outcome = "error"
		return repository.PageResult[domain.Product]{}, err
	}
	return res, nil
}

// Search loads a product by token id with the owner re-derived from the
// chain. A database row whose owner diverges from the chain is healed in
// place; the chain wins.
func (s *ProductWorkflowService) Search(ctx context.Context, tokenID string) (*domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordWorkflowOperation(ctx, "search", outcome, time.Since(start)) }()

	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		outcome = "bad_request"
		return nil, ErrInvalidTokenID
	}

	product, err := s.repo.FindByTokenID(tokenID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}

	chainOwner, err := s.resolveOwner(ctx, tokenID)
	if err != nil {
		// Serve the stored owner when the chain is unreachable; the read path
		// must not go down with the RPC endpoint.
		s.logger.WarnContext(ctx, "owner reconciliation skipped, chain unreachable",
			"token_id", tokenID, "error", err)
		return product, nil
	}

	if chainOwner != product.Owner {
		s.logger.InfoContext(ctx, "healing divergent owner",
			"token_id", tokenID, "stored_owner", product.Owner, "chain_owner", chainOwner)
		if err := s.repo.UpdateOwner(product.ID, chainOwner); err != nil {
			outcome = "error"
			return nil, err
		}
		product.Owner = chainOwner
	}
	return product, nil
}

func (s *ProductWorkflowService) resolveOwner(ctx context.Context, tokenID string) (string, error) {
	if owner, ok, err := s.ownerCache.Get(ctx, tokenID); err == nil && ok {
		observability.RecordOwnerCacheEvent(ctx, "hit")
		return owner, nil
	} else if err != nil {
		s.logger.WarnContext(ctx, "owner cache read failed", "token_id", tokenID, "error", err)
	}
	observability.RecordOwnerCacheEvent(ctx, "miss")

	// Concurrent misses for the same token share one chain read.
	v, err, _ := s.ownerLookups.Do(tokenID, func() (any, error) {
		owner, err := s.gateway.OwnerOf(ctx, tokenID)
		if err != nil {
			return "", err
		}
		if err := s.ownerCache.Set(ctx, tokenID, owner, s.ownerCacheTTL); err != nil {
			s.logger.WarnContext(ctx, "owner cache write failed", "token_id", tokenID, "error", err)
		}
		return owner, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// History returns the product's full ownership history, oldest first.
func (s *ProductWorkflowService) History(ctx context.Context, tokenID string) ([]domain.OwnershipRecord, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordWorkflowOperation(ctx, "history", outcome, time.Since(start)) }()

	product, err := s.repo.FindByTokenID(strings.TrimSpace(tokenID))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}
	return product.OwnershipHistory, nil
}

// Transfer moves the token on chain, then updates the stored owner and
// appends to the ownership history.
func (s *ProductWorkflowService) Transfer(ctx context.Context, tokenID, newOwner string) (*TransferProductOutput, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordWorkflowOperation(ctx, "transfer", outcome, time.Since(start)) }()

	if !chain.IsHexAddress(newOwner) {
		outcome = "bad_request"
		return nil, ErrInvalidWalletAddress
	}
	normalized := chain.NormalizeAddress(newOwner)

	product, err := s.repo.FindByTokenID(strings.TrimSpace(tokenID))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
		} else {
			outcome = "error"
		}
		return nil, err
	}

	// The chain is authoritative for ownership; the stored owner may be
	// stale, so the sender is re-read from the contract.
	from, err := s.gateway.OwnerOf(ctx, product.TokenID)
	if err != nil {
		outcome = "chain_error"
		return nil, err
	}

	result, err := s.gateway.Transfer(ctx, product.TokenID, from, normalized)
	if err != nil {
		outcome = "chain_error"
		return nil, err
	}

	if err := s.repo.SetOwnerAndAppendHistory(product.ID, normalized, result.TxHash); err != nil {
		outcome = "error"
		return nil, err
	}
	if err := s.ownerCache.Invalidate(ctx, product.TokenID); err != nil {
		s.logger.WarnContext(ctx, "owner cache invalidation failed", "token_id", product.TokenID, "error", err)
	}

	updated, err := s.repo.FindByID(product.ID)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	s.logger.InfoContext(ctx, "product transferred",
		"token_id", product.TokenID, "new_owner", normalized, "tx_hash", result.TxHash)
	return &TransferProductOutput{TxHash: result.TxHash, Owner: normalized, Product: updated}, nil
}
