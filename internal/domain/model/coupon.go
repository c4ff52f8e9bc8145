package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// クーポン。codeは大文字に正規化して一意。
type Coupon struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Code string `gorm:"type:varchar(64);not null;uniqueIndex" json:"code"`

	//割引額。IsFlatなら金額、そうでなければパーセント
	DiscountValue decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"discount_value"`
	IsFlat        bool            `gorm:"not null;default:false" json:"is_flat"`

	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	//使用回数上限（nilなら無制限）
	UsageLimit *int64 `json:"usage_limit"`
	UsedCount  int64  `gorm:"not null;default:0" json:"used_count"`

	//適用に必要な最低小計
	MinTotal decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"min_total"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
