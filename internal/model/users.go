package model

import (
	"time"

	"github.com/google/uuid"
)

// Vendor owns shops. Vendors cannot log in until an admin approves them.
type Vendor struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CompanyName  string    `gorm:"not null" json:"companyName"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Address      string    `gorm:"not null" json:"address"`
	PhoneNumber  string    `gorm:"not null" json:"phoneNumber"`
	Approved     bool      `gorm:"not null;default:false" json:"approved"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Cashier works the till of exactly one shop.
type Cashier struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	ShopID       uuid.UUID `gorm:"type:uuid;index;not null" json:"shopId"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Admin struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
}

// Roles carried in the JWT "role" claim.
const (
	RoleAdmin   = "admin"
	RoleVendor  = "vendor"
	RoleCashier = "cashier"
)
