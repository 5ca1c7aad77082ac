package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/veritrace/veritrace/internal/chain"
	"github.com/veritrace/veritrace/internal/config"
	"github.com/veritrace/veritrace/internal/domain"
	"github.com/veritrace/veritrace/internal/repository"
)

const (
	brandWallet    = "0xAAAA567890AbCdEf1234567890aBcDeF12345678"
	consumerWallet = "0xBBBB567890abcdef1234567890abcdef12345678"
)

func newWorkflowForTest(repo *stubProductRepo, gw *stubGateway, storage *stubStorage) *ProductWorkflowService {
	cfg := &config.Config{MintDuplicateCheck: true, OwnerCacheTTL: time.Minute}
	return NewProductWorkflowService(cfg, repo, gw, storage, NewInMemoryOwnerCacheStore(), testLogger())
}

func validMintInput() MintProductInput {
	return MintProductInput{
		Recipient:   brandWallet,
		Name:        "Trail Sneaker",
		Description: "Limited run",
		PriceInEth:  0.75,
		Quantity:    1,
		Category:    "footwear",
	}
}

func TestMintHappyPath(t *testing.T) {
	repo := newStubProductRepo()
	gw := newStubGateway()
	svc := newWorkflowForTest(repo, gw, &stubStorage{})

	out, err := svc.Mint(context.Background(), validMintInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if out.TokenID == "" || out.TxHash == "" {
		t.Fatalf("expected token id and tx hash, got %+v", out)
	}
	if out.Product.Status != domain.ProductStatusMinted {
		t.Fatalf("status = %q, want minted", out.Product.Status)
	}
	if out.Product.Owner != strings.ToLower(brandWallet) {
		t.Fatalf("owner = %q, want lower-cased recipient", out.Product.Owner)
	}
	if len(out.Product.OwnershipHistory) != 1 {
		t.Fatalf("expected initial history entry, got %+v", out.Product.OwnershipHistory)
	}

	// The minted product is searchable by its token id.
	found, err := svc.Search(context.Background(), out.TokenID)
	if err != nil {
		t.Fatalf("search after mint: %v", err)
	}
	if found.ID != out.Product.ID {
		t.Fatalf("search returned wrong product: %+v", found)
	}
}

func TestMintValidation(t *testing.T) {
	svc := newWorkflowForTest(newStubProductRepo(), newStubGateway(), &stubStorage{})

	tests := []struct {
		name   string
		mutate func(*MintProductInput)
		want   error
	}{
		{"short name", func(in *MintProductInput) { in.Name = "ab" }, ErrProductInvalidName},
		{"long description", func(in *MintProductInput) { in.Description = strings.Repeat("x", 501) }, ErrProductInvalidDescription},
		{"zero price", func(in *MintProductInput) { in.PriceInEth = 0 }, ErrProductInvalidPrice},
		{"zero quantity", func(in *MintProductInput) { in.Quantity = 0 }, ErrProductInvalidQuantity},
		{"bad recipient", func(in *MintProductInput) { in.Recipient = "not-an-address" }, ErrInvalidWalletAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validMintInput()
			tt.mutate(&in)
			if _, err := svc.Mint(context.Background(), in); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMintChainFailureRollsBackRecord(t *testing.T) {
	repo := newStubProductRepo()
	gw := newStubGateway()
	gw.mintErr = chain.ErrInsufficientFunds
	storage := &stubStorage{}
	svc := newWorkflowForTest(repo, gw, storage)

	in := validMintInput()
	in.Image = strings.NewReader("fake image bytes")
	in.ImageSize = 16

	if _, err := svc.Mint(context.Background(), in); !errors.Is(err, chain.ErrInsufficientFunds) {
		t.Fatalf("expected chain error, got %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected record rolled back, still have %d items", len(repo.items))
	}
	if len(storage.deletes) != 1 {
		t.Fatalf("expected uploaded image removed, deletes=%v", storage.deletes)
	}
}

func TestMintDuplicateDetection(t *testing.T) {
	repo := newStubProductRepo()
	gw := newStubGateway()
	svc := newWorkflowForTest(repo, gw, &stubStorage{})

	if _, err := svc.Mint(context.Background(), validMintInput()); err != nil {
		t.Fatalf("first mint: %v", err)
	}
	if _, err := svc.Mint(context.Background(), validMintInput()); !errors.Is(err, ErrDuplicateProduct) {
		t.Fatalf("expected ErrDuplicateProduct, got %v", err)
	}

	// Same name under a different owner is allowed.
	other := validMintInput()
	other.Recipient = consumerWallet
	if _, err := svc.Mint(context.Background(), other); err != nil {
		t.Fatalf("mint for other owner: %v", err)
	}
}

func TestMintDuplicateCheckDisabled(t *testing.T) {
	repo := newStubProductRepo()
	cfg := &config.Config{MintDuplicateCheck: false, OwnerCacheTTL: time.Minute}
	svc := NewProductWorkflowService(cfg, repo, newStubGateway(), &stubStorage{}, NewInMemoryOwnerCacheStore(), testLogger())

	if _, err := svc.Mint(context.Background(), validMintInput()); err != nil {
		t.Fatalf("first mint: %v", err)
	}
	if _, err := svc.Mint(context.Background(), validMintInput()); err != nil {
		t.Fatalf("second mint with checks off: %v", err)
	}
}

func TestTransferUpdatesOwnerAndHistory(t *testing.T) {
	repo := newStubProductRepo()
	gw := newStubGateway()
	svc := newWorkflowForTest(repo, gw, &stubStorage{})

	out, err := svc.Mint(context.Background(), validMintInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	res, err := svc.Transfer(context.Background(), out.TokenID, consumerWallet)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if res.Owner != strings.ToLower(consumerWallet) {
		t.Fatalf("owner = %q, want lower-cased new owner", res.Owner)
	}
	if res.Product.Owner != res.Owner {
		t.Fatalf("product owner = %q, want %q", res.Product.Owner, res.Owner)
	}
	if len(res.Product.OwnershipHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(res.Product.OwnershipHistory))
	}
	tail := res.Product.OwnershipHistory[1]
	if tail.Address != res.Owner || tail.TxHash != res.TxHash {
		t.Fatalf("unexpected history tail: %+v", tail)
	}
}

// The sender handed to the contract comes from the chain's own view of
// ownership, not from the stored row, which may be stale.
func TestTransferUsesChainOwnerAsSender(t *testing.T) {
	repo := newStubProductRepo()
	gw := newStubGateway()
	svc := newWorkflowForTest(repo, gw, &stubStorage{})

	out, err := svc.Mint(context.Background(), validMintInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// The stored row drifts behind the chain.
	staleOwner := "0x1111111111111111111111111111111111111111"
	if err := repo.UpdateOwner(out.Product.ID, staleOwner); err != nil {
		t.Fatalf("update owner: %v", err)
	}

	if _, err := svc.Transfer(context.Background(), out.TokenID, consumerWallet); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if gw.lastTransferFrom != strings.ToLower(brandWallet) {
		t.Fatalf("transfer sent from %q, want chain owner %q", gw.lastTransferFrom, strings.ToLower(brandWallet))
	}
}

func TestTransferRejectsMalformedAddress(t *testing.T) {
	repo := newStubProductRepo()
	gw := newStubGateway()
	svc := newWorkflowForTest(repo, gw, &stubStorage{})

	out, err := svc.Mint(context.Background(), validMintInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := svc.Transfer(context.Background(), out.TokenID, "0x123"); !errors.Is(err, ErrInvalidWalletAddress) {
		t.Fatalf("expected ErrInvalidWalletAddress, got %v", err)
	}
	if gw.transferCalls != 0 {
		t.Fatal("malformed address must not reach the chain")
	}
	// State unchanged.
	p, _ := repo.FindByTokenID(out.TokenID)
	if p.Owner != strings.ToLower(brandWallet) || len(p.OwnershipHistory) != 1 {
		t.Fatalf("state changed on rejected transfer: %+v", p)
	}
}

func TestTransferUnknownToken(t *testing.T) {
	svc := newWorkflowForTest(newStubProductRepo(), newStubGateway(), &stubStorage{})
	if _, err := svc.Transfer(context.Background(), "404", consumerWallet); !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestSearchHealsDivergentOwner(t *testing.T) {
	repo := newStubProductRepo()
	gw := newStubGateway()
	svc := newWorkflowForTest(repo, gw, &stubStorage{})

	out, err := svc.Mint(context.Background(), validMintInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// Chain moves the token behind the server's back.
	gw.owners[out.TokenID] = strings.ToLower(consumerWallet)

	found, err := svc.Search(context.Background(), out.TokenID)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if found.Owner != strings.ToLower(consumerWallet) {
		t.Fatalf("owner = %q, want chain owner", found.Owner)
	}
	stored, _ := repo.FindByID(found.ID)
	if stored.Owner != strings.ToLower(consumerWallet) {
		t.Fatalf("stored owner not healed: %q", stored.Owner)
	}
}

func TestSearchServesStoredOwnerWhenChainDown(t *testing.T) {
	repo := newStubProductRepo()
	gw := newStubGateway()
	svc := newWorkflowForTest(repo, gw, &stubStorage{})

	out, err := svc.Mint(context.Background(), validMintInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	gw.ownerErr = errors.New("connection refused")
	found, err := svc.Search(context.Background(), out.TokenID)
	if err != nil {
		t.Fatalf("search with chain down: %v", err)
	}
	if found.Owner != strings.ToLower(brandWallet) {
		t.Fatalf("owner = %q, want stored owner", found.Owner)
	}
}

func TestSearchUsesOwnerCache(t *testing.T) {
	repo := newStubProductRepo()
	gw := newStubGateway()
	svc := newWorkflowForTest(repo, gw, &stubStorage{})

	out, err := svc.Mint(context.Background(), validMintInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := svc.Search(context.Background(), out.TokenID); err != nil {
		t.Fatalf("first search: %v", err)
	}
	calls := gw.ownerOfCalls
	if _, err := svc.Search(context.Background(), out.TokenID); err != nil {
		t.Fatalf("second search: %v", err)
	}
	if gw.ownerOfCalls != calls {
		t.Fatalf("expected cached owner, gateway called %d more times", gw.ownerOfCalls-calls)
	}
}

func TestSearchUnknownToken(t *testing.T) {
	svc := newWorkflowForTest(newStubProductRepo(), newStubGateway(), &stubStorage{})
	if _, err := svc.Search(context.Background(), "999"); !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := svc.Search(context.Background(), " "); !errors.Is(err, ErrInvalidTokenID) {
		t.Fatalf("expected ErrInvalidTokenID for blank id, got %v", err)
	}
}

func TestHistoryReturnsFullTrail(t *testing.T) {
	repo := newStubProductRepo()
	gw := newStubGateway()
	svc := newWorkflowForTest(repo, gw, &stubStorage{})

	out, err := svc.Mint(context.Background(), validMintInput())
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := svc.Transfer(context.Background(), out.TokenID, consumerWallet); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	history, err := svc.History(context.Background(), out.TokenID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].Address != strings.ToLower(brandWallet) || history[1].Address != strings.ToLower(consumerWallet) {
		t.Fatalf("unexpected order: %+v", history)
	}
}
