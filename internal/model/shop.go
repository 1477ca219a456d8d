package model

import "github.com/google/uuid"

// Shop is an airport outlet run by a vendor.
type Shop struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Location  string    `json:"location"`
	VendorID  uuid.UUID `gorm:"type:uuid;index;not null" json:"vendorId"`
	UPIQRCode *string   `gorm:"column:upi_qr_code" json:"upiQrCode,omitempty"`

	Vendor *Vendor `gorm:"foreignKey:VendorID" json:"-"`
}
