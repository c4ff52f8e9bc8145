package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// スタッフ用の注文検索条件
type AdminOrderListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// 注文(Order)の保存・取得の約束。
// 確定後の注文は中身を書き換えない（変わるのはstatusだけ）。
type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error

	//idempotency keyでの検索。同じキーなら同じ注文を返すための入口
	FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error)

	//スタッフ用の横断一覧
	ListAdmin(ctx context.Context, f AdminOrderListFilter) ([]model.Order, int64, error)
}
