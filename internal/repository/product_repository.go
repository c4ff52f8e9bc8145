package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// 一意制約違反（重複作成）を表す
var ErrConflict = errors.New("conflict")

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)

	//まとめて取得。見つからないIDがあっても エラーにはせず、取れた分だけ返す
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id int64) error
}

// バリエーションの永続化。
type VariantRepository interface {
	FindByID(ctx context.Context, id int64) (model.Variant, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Variant, error)
	ListByProductID(ctx context.Context, productID int64) ([]model.Variant, error)

	Create(ctx context.Context, v model.Variant) (model.Variant, error)
	Update(ctx context.Context, v model.Variant) error
	Delete(ctx context.Context, id int64) error
}
