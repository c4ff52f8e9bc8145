package repository

import (
	"context"

	"app/internal/domain/model"
)

type PaymentRepository interface {
	//注文に紐づく支払いを検索（無ければfound=false）
	FindByOrderID(ctx context.Context, orderID int64) (model.Payment, bool, error)

	//作成。order_idの一意制約違反はErrConflict
	Create(ctx context.Context, p model.Payment) (model.Payment, error)
}
