package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 購入時点のスナップショット。作成後は一切変更しない。
type OrderItem struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64  `gorm:"not null;index" json:"order_id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	VariantID *int64 `gorm:"index" json:"variant_id"`

	ProductNameSnapshot string          `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	SKUSnapshot         string          `gorm:"type:varchar(64);not null" json:"sku_snapshot"`
	UnitPriceSnapshot   decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"unit_price_snapshot"`

	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
