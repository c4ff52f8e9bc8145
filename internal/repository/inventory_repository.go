package repository

import (
	"context"
)

// 在庫カウンタの唯一の窓口。
// 直接のフィールド代入で在庫を変えることはしない。
type InventoryRepository interface {
	// 在庫が足りるときだけ減算（UPDATE ... WHERE stock >= ? のCAS）
	DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error)

	// バリエーション在庫の減算
	DecreaseVariantStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error)

	// 在庫戻し（キャンセルなど）
	IncreaseStock(ctx context.Context, productID int64, qty int64) error
	IncreaseVariantStock(ctx context.Context, variantID int64, qty int64) error

	// 在庫を「現在値」に更新し、調整履歴も残す（管理者用）
	SetStockWithAdjustment(ctx context.Context, adminUserID int64, productID int64, newStock int64, reason string) error
}
