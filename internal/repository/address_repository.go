package repository

import (
	"context"

	"app/internal/domain/model"
)

// 配送先住所の保存・取得の約束。
type AddressRepository interface {
	//住所を新規作成してID入りで返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//ユーザーの住所一覧（デフォルト住所が先頭）
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)

	FindByID(ctx context.Context, addressID int64) (model.Address, error)

	Update(ctx context.Context, address model.Address) error

	Delete(ctx context.Context, addressID int64) error

	//住所がそのユーザーのものかを確認
	IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error)

	//デフォルト住所の切り替え
	SetDefault(ctx context.Context, userID, addressID int64) error
}
