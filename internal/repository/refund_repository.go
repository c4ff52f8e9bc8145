package repository

import (
	"context"

	"app/internal/domain/model"
)

type RefundRepository interface {
	FindByID(ctx context.Context, refundID int64) (model.Refund, error)

	//注文に紐づく返金を検索（無ければfound=false）
	FindByOrderID(ctx context.Context, orderID int64) (model.Refund, bool, error)

	//作成。order_idの一意制約違反はErrConflict
	Create(ctx context.Context, r model.Refund) (model.Refund, error)

	UpdateStatus(ctx context.Context, refundID int64, status model.RefundStatus) error

	//管理者用一覧
	List(ctx context.Context, page int, limit int) ([]model.Refund, int64, error)
}
