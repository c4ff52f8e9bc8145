package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品バリエーション（サイズ・色など）。
// 在庫は商品本体とは別に持つ。
type Variant struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	SKU       string `gorm:"type:varchar(64);not null;uniqueIndex" json:"sku"`

	//商品価格に上乗せする差額
	PriceDelta decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price_delta"`

	//バリエーション固有の在庫
	Stock int64 `gorm:"not null" json:"stock"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
