package repository

import (
	"context"

	"app/internal/domain/model"
)

type CouponRepository interface {
	//codeは大文字正規化済みで渡す
	FindByCode(ctx context.Context, code string) (model.Coupon, error)
	FindByID(ctx context.Context, id int64) (model.Coupon, error)
	List(ctx context.Context, page int, limit int) ([]model.Coupon, int64, error)

	Create(ctx context.Context, c model.Coupon) (model.Coupon, error)
	Update(ctx context.Context, c model.Coupon) error
	Delete(ctx context.Context, id int64) error

	//上限に達していなければused_countを+1する（CAS）。
	//falseは「上限到達で増やせなかった」
	IncrementUsedIfAvailable(ctx context.Context, couponID int64) (bool, error)
}
