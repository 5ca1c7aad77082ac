package domain

import "time"

// User roles. The role is fixed at registration; there is no role-change
// endpoint.
const (
	RoleBrand      = "Brand"
	RoleConsumer   = "Consumer"
	RoleWholesaler = "Wholesaler"
)

type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WalletAddress string    `gorm:"uniqueIndex;size:42;not null" json:"walletAddress"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Email         string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role          string    `gorm:"size:32;not null;index" json:"userRole"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleBrand, RoleConsumer, RoleWholesaler:
		return true
	default:
		return false
	}
}
