package database

import (
	"github.com/veritrace/veritrace/internal/domain"

	"gorm.io/gorm"
)

// Demo wallets for local development. The addresses are the first accounts of
// the standard hardhat mnemonic, so a local node funds them out of the box.
var demoUsers = []domain.User{
	{WalletAddress: "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", Name: "Acme Brand", Email: "brand@veritrace.dev", Role: domain.RoleBrand},
	{WalletAddress: "0x70997970c51812dc3a010c7d01b50e0d17dc79c8", Name: "Casey Consumer", Email: "consumer@veritrace.dev", Role: domain.RoleConsumer},
	{WalletAddress: "0x3c44cdddb6a900fa2b585dd299e03d12fa4293bc", Name: "Widmore Wholesale", Email: "wholesaler@veritrace.dev", Role: domain.RoleWholesaler},
}

// Draft products stay in pending_mint; token ids are only ever assigned by a
// confirmed on-chain mint.
var demoProducts = []domain.Product{
	{
		Name:        "Single-Origin Coffee 1kg",
		Description: "Seasonal lot, washed process",
		Category:    "food",
		Quantity:    25,
		PriceInEth:  0.05,
		Owner:       "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
		Status:      domain.ProductStatusPendingMint,
		Attributes: []domain.ProductAttribute{
			{Type: "origin", Value: "Huila, Colombia"},
			{Type: "roast", Value: "light"},
		},
	},
	{
		Name:        "Leather Messenger Bag",
		Description: "Full-grain leather, serial-stamped",
		Category:    "apparel",
		Quantity:    5,
		PriceInEth:  0.4,
		Owner:       "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
		Status:      domain.ProductStatusPendingMint,
		Attributes: []domain.ProductAttribute{
			{Type: "material", Value: "full-grain leather"},
		},
	},
}

type SeedReport struct {
	CreatedUsers    int  `json:"created_users"`
	CreatedProducts int  `json:"created_products"`
	Noop            bool `json:"noop"`
}

func Seed(db *gorm.DB) error {
	_, err := SeedDemo(db)
	return err
}

// SeedDemo inserts demo wallets and draft products for local development.
// It is idempotent; rows that already exist are left alone.
func SeedDemo(db *gorm.DB) (*SeedReport, error) {
	report := &SeedReport{}

	for _, u := range demoUsers {
		res := db.Where("wallet_address = ?", u.WalletAddress).FirstOrCreate(&u)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			report.CreatedUsers++
		}
	}

	for _, p := range demoProducts {
		var count int64
		if err := db.Model(&domain.Product{}).Where("name = ? AND owner = ?", p.Name, p.Owner).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&p).Error; err != nil {
			return nil, err
		}
		report.CreatedProducts++
	}

	report.Noop = report.CreatedUsers == 0 && report.CreatedProducts == 0
	return report, nil
}
