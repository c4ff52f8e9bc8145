package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。
// 追加時点の価格を表示用に保存する（注文確定時には再計算される）。
type CartItem struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64  `gorm:"not null;index" json:"cart_id"`
	ProductID int64  `gorm:"not null;index" json:"product_id"`
	VariantID *int64 `gorm:"index" json:"variant_id"`
	Quantity  int64  `gorm:"not null" json:"quantity"`

	UnitPriceSnapshot decimal.Decimal `gorm:"not null;type:decimal(10,2);column:unit_price_snapshot" json:"unit_price_snapshot"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
