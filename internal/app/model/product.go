package model

import (
	"time"
)

// ProductImage describes an uploaded product image. All fields are empty when
// the product has no image.
type ProductImage struct {
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"` // public URL in the blob store
	FileType string `json:"file_type"`
	FileSize string `json:"file_size"` // human readable, e.g. "12.34 KB"
}

type Product struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	UserID      uint         `gorm:"not null;index" json:"user_id"` // owner
	Name        string       `gorm:"not null" json:"name"`
	SKU         string       `gorm:"column:sku;index" json:"sku"`
	Category    string       `gorm:"not null" json:"category"`
	Quantity    int          `gorm:"not null" json:"quantity"`
	Price       float64      `gorm:"not null" json:"price"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Image       ProductImage `gorm:"embedded;embeddedPrefix:image_" json:"image"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// OwnedBy reports whether userID is the recorded owner.
func (p *Product) OwnedBy(userID uint) bool {
	return p.UserID == userID
}
