package service

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"time"

	"github.com/veritrace/veritrace/internal/chain"
	"github.com/veritrace/veritrace/internal/domain"
	"github.com/veritrace/veritrace/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubProductRepo struct {
	items  map[uint]*domain.Product
	nextID uint

	createErr error
	deleted   []uint
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{items: map[uint]*domain.Product{}, nextID: 1}
}

func (s *stubProductRepo) Create(product *domain.Product) error {
	if s.createErr != nil {
		return s.createErr
	}
	product.ID = s.nextID
	s.nextID++
	cp := *product
	s.items[product.ID] = &cp
	return nil
}

func (s *stubProductRepo) FindByID(id uint) (*domain.Product, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProductRepo) FindByTokenID(tokenID string) (*domain.Product, error) {
	if tokenID == "" {
		return nil, repository.ErrProductNotFound
	}
	for _, p := range s.items {
		if p.TokenID == tokenID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (s *stubProductRepo) ExistsByNameAndOwner(name, owner string) (bool, error) {
	for _, p := range s.items {
		if p.Name == name && p.Owner == owner {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubProductRepo) ListPaged(req repository.PageRequest) (repository.PageResult[domain.Product], error) {
	items := make([]domain.Product, 0, len(s.items))
	for _, p := range s.items {
		items = append(items, *p)
	}
	return repository.PageResult[domain.Product]{
		Items:      items,
		Page:       1,
		PageSize:   len(items),
		Total:      int64(len(items)),
		TotalPages: 1,
	}, nil
}

func (s *stubProductRepo) MarkMinted(id uint, tokenID, txHash string) error {
	p, ok := s.items[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.TokenID = tokenID
	p.Status = domain.ProductStatusMinted
	p.OwnershipHistory = append(p.OwnershipHistory, domain.OwnershipRecord{
		ProductID: id, Address: p.Owner, TxHash: txHash, Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *stubProductRepo) SetOwnerAndAppendHistory(id uint, newOwner, txHash string) error {
	p, ok := s.items[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Owner = newOwner
	p.OwnershipHistory = append(p.OwnershipHistory, domain.OwnershipRecord{
		ProductID: id, Address: newOwner, TxHash: txHash, Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *stubProductRepo) UpdateOwner(id uint, owner string) error {
	p, ok := s.items[id]
	if !ok {
		return repository.ErrProductNotFound
	}
	p.Owner = owner
	return nil
}

func (s *stubProductRepo) UpsertPayment(productID uint, payment domain.PaymentRequest) error {
	p, ok := s.items[productID]
	if !ok {
		return repository.ErrProductNotFound
	}
	payment.ProductID = productID
	p.Payment = &payment
	return nil
}

func (s *stubProductRepo) UpdatePaymentStatus(productID uint, status string) error {
	p, ok := s.items[productID]
	if !ok || p.Payment == nil {
		return repository.ErrPaymentNotFound
	}
	p.Payment.Status = status
	return nil
}

func (s *stubProductRepo) DeleteByID(id uint) error {
	if _, ok := s.items[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(s.items, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*domain.User{}}
}

func (s *stubUserRepo) Create(user *domain.User) error {
	if _, ok := s.users[user.WalletAddress]; ok {
		return repository.ErrWalletRegistered
	}
	user.ID = uint(len(s.users) + 1)
	cp := *user
	s.users[user.WalletAddress] = &cp
	return nil
}

func (s *stubUserRepo) FindByWallet(address string) (*domain.User, error) {
	u, ok := s.users[address]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubUserRepo) ExistsByWallet(address string) (bool, error) {
	_, ok := s.users[address]
	return ok, nil
}

// stubGateway fakes the contract gateway. Errors can be injected per
// operation; owners holds the chain-side view keyed by token id.
type stubGateway struct {
	mintErr     error
	transferErr error
	approveErr  error
	rejectErr   error
	ownerErr    error

	nextTokenID int
	owners      map[string]string

	mintCalls     int
	ownerOfCalls  int
	transferCalls int

	lastTransferFrom string
}

func newStubGateway() *stubGateway {
	return &stubGateway{nextTokenID: 1, owners: map[string]string{}}
}

func (g *stubGateway) Mint(_ context.Context, recipient, _ string) (chain.MintResult, error) {
	g.mintCalls++
	if g.mintErr != nil {
		return chain.MintResult{}, g.mintErr
	}
	tokenID := big.NewInt(int64(g.nextTokenID)).String()
	g.nextTokenID++
	g.owners[tokenID] = recipient
	return chain.MintResult{TxHash: "0xmint" + tokenID, TokenID: tokenID}, nil
}

func (g *stubGateway) Transfer(_ context.Context, tokenID, from, to string) (chain.TxResult, error) {
	g.transferCalls++
	g.lastTransferFrom = from
	if g.transferErr != nil {
		return chain.TxResult{}, g.transferErr
	}
	g.owners[tokenID] = to
	return chain.TxResult{TxHash: "0xtransfer" + tokenID}, nil
}

func (g *stubGateway) InitiateEscrow(_ context.Context, tokenID, _ string, _ *big.Int) (chain.TxResult, error) {
	return chain.TxResult{TxHash: "0xescrow" + tokenID}, nil
}

func (g *stubGateway) ApproveEscrow(_ context.Context, tokenID string) (chain.TxResult, error) {
	if g.approveErr != nil {
		return chain.TxResult{}, g.approveErr
	}
	return chain.TxResult{TxHash: "0xapprove" + tokenID}, nil
}

func (g *stubGateway) RejectEscrow(_ context.Context, tokenID string) (chain.TxResult, error) {
	if g.rejectErr != nil {
		return chain.TxResult{}, g.rejectErr
	}
	return chain.TxResult{TxHash: "0xreject" + tokenID}, nil
}

func (g *stubGateway) OwnerOf(_ context.Context, tokenID string) (string, error) {
	g.ownerOfCalls++
	if g.ownerErr != nil {
		return "", g.ownerErr
	}
	owner, ok := g.owners[tokenID]
	if !ok {
		return "", chain.ErrInvalidTokenID
	}
	return owner, nil
}

func (g *stubGateway) TokenIDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(g.owners))
	for id := range g.owners {
		ids = append(ids, id)
	}
	return ids, nil
}

func (g *stubGateway) Ping(context.Context) error { return nil }

type stubStorage struct {
	uploadErr error
	uploads   []string
	deletes   []string
}

func (s *stubStorage) UploadProductImage(_ context.Context, owner string, _ io.Reader, _ int64) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	key := "products/" + owner + "/image"
	s.uploads = append(s.uploads, key)
	return key, nil
}

func (s *stubStorage) DeleteProductImage(_ context.Context, objectKey string) error {
	s.deletes = append(s.deletes, objectKey)
	return nil
}

func (s *stubStorage) GenerateImageURL(_ context.Context, objectKey string) (string, error) {
	return "https://storage.local/" + objectKey, nil
}
