package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/veritrace/veritrace/internal/chain"
	"github.com/veritrace/veritrace/internal/domain"
	"github.com/veritrace/veritrace/internal/observability"
	"github.com/veritrace/veritrace/internal/repository"
)

var (
	ErrWalletAlreadyRegistered = errors.New("wallet address already registered")
	ErrInvalidUserRole         = errors.New("userRole must be one of Brand, Consumer, Wholesaler")
	ErrInvalidUserName         = errors.New("name is required")
	ErrInvalidUserEmail        = errors.New("a valid email is required")
)

type RegisterWalletInput struct {
	WalletAddress string
	Name          string
	Email         string
	Role          string
}

type WalletCheckResult struct {
	Exists bool
	User   *domain.User
}

// WalletRegistryService maps wallet addresses to marketplace identities.
// There is no password or session layer; holding the wallet is the identity.
type WalletRegistryService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

func NewWalletRegistryService(repo repository.UserRepository, logger *slog.Logger) *WalletRegistryService {
	return &WalletRegistryService{repo: repo, logger: logger}
}

func (s *WalletRegistryService) Register(ctx context.Context, input RegisterWalletInput) (*domain.User, error) {
	if !chain.IsHexAddress(input.WalletAddress) {
		observability.RecordWalletRegistryEvent(ctx, "register", "bad_request")
		return nil, ErrInvalidWalletAddress
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		observability.RecordWalletRegistryEvent(ctx, "register", "bad_request")
		return nil, ErrInvalidUserName
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		observability.RecordWalletRegistryEvent(ctx, "register", "bad_request")
		return nil, ErrInvalidUserEmail
	}
	if !domain.ValidRole(input.Role) {
		observability.RecordWalletRegistryEvent(ctx, "register", "bad_request")
		return nil, ErrInvalidUserRole
	}

	user := &domain.User{
		WalletAddress: chain.NormalizeAddress(input.WalletAddress),
		Name:          name,
		Email:         email,
		Role:          input.Role,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(user); err != nil {
		if errors.Is(err, repository.ErrWalletRegistered) {
			observability.RecordWalletRegistryEvent(ctx, "register", "duplicate")
			return nil, ErrWalletAlreadyRegistered
		}
		observability.RecordWalletRegistryEvent(ctx, "register", "error")
		return nil, err
	}
	observability.RecordWalletRegistryEvent(ctx, "register", "success")
	s.logger.InfoContext(ctx, "wallet registered", "wallet", user.WalletAddress, "role", user.Role)
	return user, nil
}

func (s *WalletRegistryService) Check(ctx context.Context, address string) (*WalletCheckResult, error) {
	if !chain.IsHexAddress(address) {
		observability.RecordWalletRegistryEvent(ctx, "check", "bad_request")
		return nil, ErrInvalidWalletAddress
	}

	user, err := s.repo.FindByWallet(chain.NormalizeAddress(address))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordWalletRegistryEvent(ctx, "check", "miss")
			return &WalletCheckResult{Exists: false}, nil
		}
		observability.RecordWalletRegistryEvent(ctx, "check", "error")
		return nil, err
	}
	observability.RecordWalletRegistryEvent(ctx, "check", "hit")
	return &WalletCheckResult{Exists: true, User: user}, nil
}
