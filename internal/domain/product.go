package domain

import "time"

// Product statuses. A product is created as StatusPendingMint before the
// on-chain mint is submitted; TokenID is assigned exactly once, when the mint
// confirms, and never changes afterwards.
const (
	ProductStatusPendingMint = "pending_mint"
	ProductStatusMinted      = "minted"
)

// Payment request statuses. At most one payment request exists per product;
// a new initiation overwrites the previous row.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusApproved = "approved"
	PaymentStatusRejected = "rejected"
)

type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	TokenID     string  `gorm:"size:78;index:idx_products_token_id,unique,where:token_id <> ''" json:"tokenId"`
	Name        string  `gorm:"size:120;not null;index" json:"name"`
	Description string  `gorm:"size:500" json:"description"`
	Category    string  `gorm:"size:64;index" json:"category"`
	Quantity    int     `gorm:"not null;default:1" json:"quantity"`
	ImageURL    string  `gorm:"size:1024" json:"image"`
	PriceInEth  float64 `gorm:"not null" json:"priceInEth"`
	// Owner is always a lower-cased 0x-prefixed hex address.
	Owner     string    `gorm:"size:42;not null;index" json:"owner"`
	Status    string    `gorm:"size:32;not null;default:pending_mint;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attributes       []ProductAttribute `gorm:"constraint:OnDelete:CASCADE" json:"attributes"`
	OwnershipHistory []OwnershipRecord  `gorm:"constraint:OnDelete:CASCADE" json:"ownershipHistory,omitempty"`
	Payment          *PaymentRequest    `gorm:"constraint:OnDelete:CASCADE" json:"payment,omitempty"`
}

// Minted reports whether the product has been assigned an on-chain token.
// Pre-mint products are neither transferable nor payable.
func (p *Product) Minted() bool { return p.TokenID != "" }

type ProductAttribute struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	ProductID uint   `gorm:"index;not null" json:"-"`
	Type      string `gorm:"size:64;not null" json:"type"`
	Value     string `gorm:"size:255;not null" json:"value"`
}

// OwnershipRecord is one entry of a product's append-only ownership history.
type OwnershipRecord struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ProductID uint      `gorm:"index;not null" json:"-"`
	Address   string    `gorm:"size:42;not null" json:"address"`
	TxHash    string    `gorm:"size:66;not null" json:"txHash"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentRequest is the single outstanding purchase request for a product.
type PaymentRequest struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	ProductID  uint      `gorm:"uniqueIndex;not null" json:"-"`
	PriceInEth float64   `gorm:"not null" json:"priceInEth"`
	From       string    `gorm:"size:42;not null" json:"from"`
	Status     string    `gorm:"size:32;not null;default:pending" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
