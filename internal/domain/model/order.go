package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// 注文確定後はstatusとPayment/Refundの紐付けだけが変わる。
// 明細とスナップショット価格は不変。
type Order struct {
	ID        int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64       `gorm:"not null;index" json:"user_id"`
	AddressID *int64      `gorm:"index" json:"address_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	TotalAmount    decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total_amount"`
	DiscountAmount decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"discount_amount"`
	TaxAmount      decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"tax_amount"`
	ShippingAmount decimal.Decimal `gorm:"not null;type:decimal(10,2);default:0" json:"shipping_amount"`

	//適用されたクーポン（任意）
	CouponID *int64 `gorm:"index" json:"coupon_id"`

	IdempotencyKey string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
