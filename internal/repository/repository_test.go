package repository

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/veritrace/veritrace/internal/domain"
)

var testDBSeq int

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&domain.Product{},
		&domain.ProductAttribute{},
		&domain.OwnershipRecord{},
		&domain.PaymentRequest{},
		&domain.User{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
