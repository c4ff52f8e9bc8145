package usecase

import (
	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 注文時点の単価を計算する。
// セール価格があれば定価より優先し、バリエーションの差額を上乗せする。
// 副作用なし。結果はOrderItemにスナップショットされ、以後再計算されない。
func UnitPrice(p model.Product, v *model.Variant) decimal.Decimal {
	price := p.Price
	if p.DiscountPrice != nil {
		price = *p.DiscountPrice
	}
	if v != nil {
		price = price.Add(v.PriceDelta)
	}
	return price
}
