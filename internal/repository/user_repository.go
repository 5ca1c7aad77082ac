package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/veritrace/veritrace/internal/domain"
	"github.com/veritrace/veritrace/internal/observability"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrWalletRegistered = errors.New("wallet already registered")
)

type UserRepository interface {
	Create(user *domain.User) error
	FindByWallet(address string) (*domain.User, error)
	ExistsByWallet(address string) (bool, error)
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) Create(user *domain.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(context.Background(), "user", "create", "duplicate")
			return ErrWalletRegistered
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "create", "success")
	return nil
}

func (r *GormUserRepository) FindByWallet(address string) (*domain.User, error) {
	var u domain.User
	err := r.db.Where("wallet_address = ?", address).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "user", "find_by_wallet", "not_found")
			return nil, ErrUserNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "user", "find_by_wallet", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "find_by_wallet", "success")
	return &u, nil
}

func (r *GormUserRepository) ExistsByWallet(address string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.User{}).Where("wallet_address = ?", address).Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "user", "exists_by_wallet", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(context.Background(), "user", "exists_by_wallet", "success")
	return count > 0, nil
}
