package database

import (
	"github.com/veritrace/veritrace/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Product{},
		&domain.ProductAttribute{},
		&domain.OwnershipRecord{},
		&domain.PaymentRequest{},
	)
}
