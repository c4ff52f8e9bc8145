package repository

import (
	"context"

	"app/internal/domain/model"
)

// カートの取得・状態更新の約束。
// ACTIVEなカートは1ユーザーにつき1つだけ。
type CartRepository interface {
	//ACTIVEカートを返す。無ければ作る
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)

	//ACTIVEカートを返す。無ければErrNotFound
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)

	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error

	//カートの明細を全部消す
	Clear(ctx context.Context, cartID int64) error
}
