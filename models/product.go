package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID           uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `json:"description"`
	Price        int64          `gorm:"not null" json:"price"` // smallest currency subunit (paise)
	Image        string         `json:"image"`
	Sizes        string         `json:"sizes"` // comma-separated size codes, e.g. "S,M,L,Free"
	InStock      bool           `gorm:"default:true" json:"in_stock"`
	CountInStock int            `json:"count_in_stock"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Available reports whether the product can currently be ordered.
func (p Product) Available() bool {
	return p.InStock && p.CountInStock > 0
}
