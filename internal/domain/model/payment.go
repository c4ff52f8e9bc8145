package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// 支払い記録。注文1件につき1件（order_idで一意）。
// 作成はPayment Reconciliationのみ。作成後は更新しない。
type Payment struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64 `gorm:"not null;uniqueIndex" json:"order_id"`

	Amount decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"amount"`
	Method string          `gorm:"type:varchar(50);not null" json:"method"`
	Status PaymentStatus   `gorm:"type:varchar(20);not null" json:"status"`

	//決済プロバイダ側のトランザクションID
	TransactionID string `gorm:"type:varchar(255);not null" json:"transaction_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
