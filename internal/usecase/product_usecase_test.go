package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type productTestEnv struct {
	products  *ProductRepoMock
	variants  *VariantRepoMock
	inventory *InventoryRepoMock
	audit     *AuditRepoMock
	uc        *usecase.ProductUsecase
}

func newProductTestEnv() *productTestEnv {
	env := &productTestEnv{
		products:  new(ProductRepoMock),
		variants:  new(VariantRepoMock),
		inventory: new(InventoryRepoMock),
		audit:     new(AuditRepoMock),
	}
	env.uc = usecase.NewProductUsecase(env.products, env.variants, env.inventory, env.audit)
	return env
}

func TestListPublic_InvalidParams(t *testing.T) {
	env := newProductTestEnv()

	_, err := env.uc.ListPublic(context.Background(), usecase.ProductListInput{Page: 0, Limit: 20})
	require.Error(t, err)

	_, err = env.uc.ListPublic(context.Background(), usecase.ProductListInput{Page: 1, Limit: 0})
	require.Error(t, err)

	_, err = env.uc.ListPublic(context.Background(), usecase.ProductListInput{Page: 1, Limit: 20, Sort: "name_asc"})
	require.Error(t, err)
	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, "invalid sort", he.Message)
}

func TestListPublic_OK(t *testing.T) {
	env := newProductTestEnv()

	env.products.On("ListPublic", mock.Anything, mock.MatchedBy(func(q repo.ProductListQuery) bool {
		return q.Page == 2 && q.Limit == 10 && q.Q == "mug" && q.Sort == "price_asc"
	})).Return([]model.Product{{ID: 1, Name: "Mug"}}, int64(13), nil)

	out, err := env.uc.ListPublic(context.Background(), usecase.ProductListInput{
		Page: 2, Limit: 10, Q: " mug ", Sort: "price_asc",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(13), out.Total)
	assert.Len(t, out.Items, 1)
}

// 非公開商品の詳細は404
func TestGetDetail_InactiveProduct(t *testing.T) {
	env := newProductTestEnv()

	env.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, IsActive: false}, nil)

	_, err := env.uc.GetDetail(context.Background(), 1)
	require.Error(t, err)
	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, http.StatusNotFound, he.Status)
}

func TestGetDetail_WithVariants(t *testing.T) {
	env := newProductTestEnv()

	env.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "Shirt", IsActive: true}, nil)
	env.variants.On("ListByProductID", mock.Anything, int64(1)).
		Return([]model.Variant{{ID: 5, ProductID: 1, Name: "L"}}, nil)

	out, err := env.uc.GetDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Shirt", out.Product.Name)
	require.Len(t, out.Variants, 1)
}

func TestAdminCreateProduct_Validation(t *testing.T) {
	env := newProductTestEnv()

	cases := []struct {
		name string
		in   usecase.ProductInput
		msg  string
	}{
		{"empty name", usecase.ProductInput{SKU: "X", Price: dec("1")}, "name is required"},
		{"empty sku", usecase.ProductInput{Name: "X", Price: dec("1")}, "sku is required"},
		{"negative price", usecase.ProductInput{Name: "X", SKU: "X", Price: dec("-1")}, "price must be >= 0"},
		{"negative stock", usecase.ProductInput{Name: "X", SKU: "X", Price: dec("1"), Stock: -1}, "stock must be >= 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.uc.AdminCreate(context.Background(), tc.in)
			require.Error(t, err)
			he, _ := usecase.AsHTTPError(err)
			assert.Equal(t, tc.msg, he.Message)
		})
	}

	env.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// セール価格は定価以下でなければならない
func TestAdminCreateProduct_DiscountAbovePrice(t *testing.T) {
	env := newProductTestEnv()

	bad := dec("20.00")
	_, err := env.uc.AdminCreate(context.Background(), usecase.ProductInput{
		Name: "Mug", SKU: "MUG-1", Price: dec("10.00"), DiscountPrice: &bad,
	})
	require.Error(t, err)
	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, "discount_price must be <= price", he.Message)
}

func TestAdminCreateProduct_DuplicateSKU(t *testing.T) {
	env := newProductTestEnv()

	env.products.On("Create", mock.Anything, mock.Anything).
		Return(model.Product{}, repo.ErrConflict)

	_, err := env.uc.AdminCreate(context.Background(), usecase.ProductInput{
		Name: "Mug", SKU: "MUG-1", Price: dec("10.00"),
	})
	require.Error(t, err)
	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Equal(t, "sku already exists", he.Message)
}

// 商品更新は在庫を触らない
func TestAdminUpdateProduct_KeepsStock(t *testing.T) {
	env := newProductTestEnv()

	env.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "Old", SKU: "OLD-1", Price: dec("5.00"), Stock: 77}, nil)
	env.products.On("Update", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "New" && p.Stock == 77
	})).Return(nil)

	err := env.uc.AdminUpdate(context.Background(), 1, usecase.ProductInput{
		Name: "New", SKU: "NEW-1", Price: dec("6.00"), IsActive: true,
	})
	require.NoError(t, err)

	env.products.AssertExpectations(t)
}

func TestAdminUpdateInventory_RecordsAdjustmentAndAudit(t *testing.T) {
	env := newProductTestEnv()

	env.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Stock: 10}, nil)
	env.inventory.On("SetStockWithAdjustment", mock.Anything, int64(9), int64(1), int64(25), "restock").
		Return(nil)
	env.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == 9 &&
			l.Action == model.AuditActionUpdateStock &&
			l.ResourceType == model.AuditResourceProduct &&
			l.ResourceID == 1 &&
			l.BeforeJSON == `{"stock":10}` &&
			l.AfterJSON == `{"stock":25}`
	})).Return(nil)

	err := env.uc.AdminUpdateInventory(context.Background(), 9, 1, usecase.UpdateInventoryInput{
		Stock: 25, Reason: "restock",
	})
	require.NoError(t, err)

	env.inventory.AssertExpectations(t)
	env.audit.AssertExpectations(t)
}

// 理由なしの在庫調整は拒否
func TestAdminUpdateInventory_ReasonRequired(t *testing.T) {
	env := newProductTestEnv()

	err := env.uc.AdminUpdateInventory(context.Background(), 9, 1, usecase.UpdateInventoryInput{
		Stock: 25, Reason: "   ",
	})
	require.Error(t, err)
	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, "reason is required", he.Message)

	env.inventory.AssertNotCalled(t, "SetStockWithAdjustment",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAdminCreateVariant_OK(t *testing.T) {
	env := newProductTestEnv()

	env.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, IsActive: true}, nil)
	env.variants.On("Create", mock.Anything, mock.MatchedBy(func(v model.Variant) bool {
		return v.ProductID == 1 && v.Name == "L" && v.SKU == "SH-1-L" && v.Stock == 3
	})).Return(model.Variant{ID: 5, ProductID: 1, Name: "L", SKU: "SH-1-L", Stock: 3}, nil)

	created, err := env.uc.AdminCreateVariant(context.Background(), 1, usecase.VariantInput{
		Name: "L", SKU: "SH-1-L", PriceDelta: dec("3.00"), Stock: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
}
