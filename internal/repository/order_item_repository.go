package repository

import (
	"context"

	"app/internal/domain/model"
)

// 注文明細の保存・取得の約束。
// 明細は注文確定時にまとめて作られ、その後は読み取り専用。
type OrderItemRepository interface {
	CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error
	ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
}
