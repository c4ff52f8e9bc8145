package usecase_test

import (
	"testing"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestUnitPrice_BasePrice(t *testing.T) {
	p := model.Product{Price: dec("49.99")}

	got := usecase.UnitPrice(p, nil)
	assert.True(t, dec("49.99").Equal(got))
}

func TestUnitPrice_DiscountPriceWins(t *testing.T) {
	//セール価格が定価より優先される
	sale := dec("39.99")
	p := model.Product{Price: dec("49.99"), DiscountPrice: &sale}

	got := usecase.UnitPrice(p, nil)
	assert.True(t, sale.Equal(got))
}

func TestUnitPrice_VariantDelta(t *testing.T) {
	p := model.Product{Price: dec("20.00")}
	v := model.Variant{PriceDelta: dec("5.50")}

	got := usecase.UnitPrice(p, &v)
	assert.True(t, dec("25.50").Equal(got))
}

func TestUnitPrice_DiscountPlusDelta(t *testing.T) {
	sale := dec("10.00")
	p := model.Product{Price: dec("15.00"), DiscountPrice: &sale}
	v := model.Variant{PriceDelta: dec("2.00")}

	got := usecase.UnitPrice(p, &v)
	assert.True(t, dec("12.00").Equal(got))
}
