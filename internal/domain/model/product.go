package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	SKU         string `gorm:"type:varchar(64);not null;uniqueIndex" json:"sku"`

	//定価
	Price decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`

	//セール価格（設定されていれば定価より優先）
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount_price"`

	//在庫（0未満にはならない）
	Stock int64 `gorm:"not null" json:"stock"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
