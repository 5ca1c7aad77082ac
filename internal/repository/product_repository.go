package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veritrace/veritrace/internal/domain"
	"github.com/veritrace/veritrace/internal/observability"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrPaymentNotFound  = errors.New("payment request not found")
	ErrDuplicateProduct = errors.New("product already exists for this owner")
)

type ProductRepository interface {
	Create(product *domain.Product) error
	FindByID(id uint) (*domain.Product, error)
	FindByTokenID(tokenID string) (*domain.Product, error)
	ExistsByNameAndOwner(name, owner string) (bool, error)
	ListPaged(req PageRequest) (PageResult[domain.Product], error)
	MarkMinted(id uint, tokenID, txHash string) error
	SetOwnerAndAppendHistory(id uint, newOwner, txHash string) error
	UpdateOwner(id uint, owner string) error
	UpsertPayment(productID uint, payment domain.PaymentRequest) error
	UpdatePaymentStatus(productID uint, status string) error
	DeleteByID(id uint) error
}

type GormProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(product *domain.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "create", "success")
	return nil
}

func (r *GormProductRepository) FindByID(id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.preloaded().First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "product", "find_by_id", "not_found")
			return nil, ErrProductNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "product", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "find_by_id", "success")
	return &product, nil
}

func (r *GormProductRepository) FindByTokenID(tokenID string) (*domain.Product, error) {
	var product domain.Product
	err := r.preloaded().Where("token_id = ? AND token_id <> ''", tokenID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "product", "find_by_token_id", "not_found")
			return nil, ErrProductNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "product", "find_by_token_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "find_by_token_id", "success")
	return &product, nil
}

func (r *GormProductRepository) ExistsByNameAndOwner(name, owner string) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Product{}).
		Where("name = ? AND owner = ?", name, owner).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "exists_by_name_owner", "error")
		return false, err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "exists_by_name_owner", "success")
	return count > 0, nil
}

func (r *GormProductRepository) ListPaged(req PageRequest) (PageResult[domain.Product], error) {
	normalized := normalizePageRequest(req)
	result := PageResult[domain.Product]{
		Page:     normalized.Page,
		PageSize: normalized.PageSize,
	}

	if err := r.db.Model(&domain.Product{}).Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "list_paged", "error")
		return PageResult[domain.Product]{}, err
	}
	offset := (normalized.Page - 1) * normalized.PageSize
	err := r.preloaded().Order("id desc").Offset(offset).Limit(normalized.PageSize).Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "list_paged", "error")
		return PageResult[domain.Product]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	observability.RecordRepositoryOperation(context.Background(), "product", "list_paged", "success")
	return result, nil
}

// MarkMinted writes the token id assigned by the contract and flips the record
// out of its pre-mint state. The initial ownership entry is appended in the
// same transaction so a half-minted row is never observable.
func (r *GormProductRepository) MarkMinted(id uint, tokenID, txHash string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		updates := map[string]any{
			"token_id": tokenID,
			"status":   domain.ProductStatusMinted,
		}
		if err := tx.Model(&domain.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		record := domain.OwnershipRecord{
			ProductID: id,
			Address:   product.Owner,
			TxHash:    txHash,
			Timestamp: time.Now().UTC(),
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrProductNotFound) {
			outcome = "not_found"
		}
		observability.RecordRepositoryOperation(context.Background(), "product", "mark_minted", outcome)
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "mark_minted", "success")
	return nil
}

// SetOwnerAndAppendHistory changes the owner and appends to the ownership
// history atomically. newOwner must already be normalized to lower case.
func (r *GormProductRepository) SetOwnerAndAppendHistory(id uint, newOwner, txHash string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Product{}).Where("id = ?", id).Update("owner", newOwner)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductNotFound
		}
		record := domain.OwnershipRecord{
			ProductID: id,
			Address:   newOwner,
			TxHash:    txHash,
			Timestamp: time.Now().UTC(),
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrProductNotFound) {
			outcome = "not_found"
		}
		observability.RecordRepositoryOperation(context.Background(), "product", "set_owner", outcome)
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "set_owner", "success")
	return nil
}

// UpdateOwner overwrites the owner column without touching the history. Used
// when reconciling a stale row against the chain, where no local transaction
// hash exists.
func (r *GormProductRepository) UpdateOwner(id uint, owner string) error {
	res := r.db.Model(&domain.Product{}).Where("id = ?", id).Update("owner", owner)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "update_owner", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "product", "update_owner", "not_found")
		return ErrProductNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "update_owner", "success")
	return nil
}

// UpsertPayment replaces the product's payment request. Only one request
// exists per product; a fresh initiation overwrites whatever was there.
func (r *GormProductRepository) UpsertPayment(productID uint, payment domain.PaymentRequest) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrProductNotFound
		}
		payment.ProductID = productID
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"price_in_eth", "from", "status", "updated_at"}),
		}).Create(&payment).Error
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrProductNotFound) {
			outcome = "not_found"
		}
		observability.RecordRepositoryOperation(context.Background(), "payment", "upsert", outcome)
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "payment", "upsert", "success")
	return nil
}

func (r *GormProductRepository) UpdatePaymentStatus(productID uint, status string) error {
	res := r.db.Model(&domain.PaymentRequest{}).Where("product_id = ?", productID).Update("status", status)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "payment", "update_status", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "payment", "update_status", "not_found")
		return ErrPaymentNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "payment", "update_status", "success")
	return nil
}

func (r *GormProductRepository) DeleteByID(id uint) error {
	res := r.db.Select(clause.Associations).Delete(&domain.Product{ID: id})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "product", "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "product", "delete_by_id", "not_found")
		return ErrProductNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "product", "delete_by_id", "success")
	return nil
}

func (r *GormProductRepository) preloaded() *gorm.DB {
	return r.db.
		Preload("Attributes").
		Preload("OwnershipHistory", func(db *gorm.DB) *gorm.DB { return db.Order("timestamp asc, id asc") }).
		Preload("Payment")
}
