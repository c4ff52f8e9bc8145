package usecase

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	variantRepo   repo.VariantRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	variantRepo repo.VariantRepository,
	inventoryRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		variantRepo:   variantRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
	}
}

type ProductListInput struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *int64
	MaxPrice *int64
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type ProductDetailOutput struct {
	Product  model.Product   `json:"product"`
	Variants []model.Variant `json:"variants"`
}

// 公開中の商品一覧。
func (u *ProductUsecase) ListPublic(ctx context.Context, in ProductListInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch in.Sort {
	case "", "price_asc", "price_desc", "newest":
		// OK
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

// 商品詳細（バリエーション込み）。非公開商品は存在しない扱い。
func (u *ProductUsecase) GetDetail(ctx context.Context, productID int64) (ProductDetailOutput, error) {
	if productID <= 0 {
		return ProductDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return ProductDetailOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	variants, err := u.variantRepo.ListByProductID(ctx, productID)
	if err != nil {
		return ProductDetailOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductDetailOutput{Product: p, Variants: variants}, nil
}

type ProductInput struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	SKU           string           `json:"sku"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Stock         int64            `json:"stock"`
	IsActive      bool             `json:"is_active"`
}

func validateProductInput(in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if strings.TrimSpace(in.SKU) == "" {
		return NewHTTPError(http.StatusBadRequest, "sku is required")
	}
	if in.Price.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.DiscountPrice != nil {
		if in.DiscountPrice.IsNegative() {
			return NewHTTPError(http.StatusBadRequest, "discount_price must be >= 0")
		}
		if in.DiscountPrice.GreaterThan(in.Price) {
			return NewHTTPError(http.StatusBadRequest, "discount_price must be <= price")
		}
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	return nil
}

// 商品登録（スタッフ）。
func (u *ProductUsecase) AdminCreate(ctx context.Context, in ProductInput) (model.Product, error) {
	if err := validateProductInput(in); err != nil {
		return model.Product{}, err
	}

	p := model.Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		SKU:           strings.TrimSpace(in.SKU),
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		Stock:         in.Stock,
		IsActive:      in.IsActive,
	}

	created, err := u.productRepo.Create(ctx, p)
	if err == repo.ErrConflict {
		return model.Product{}, NewHTTPError(http.StatusConflict, "sku already exists")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

// 商品更新（スタッフ）。在庫はここでは触らない。
func (u *ProductUsecase) AdminUpdate(ctx context.Context, productID int64, in ProductInput) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateProductInput(in); err != nil {
		return err
	}

	existing, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	existing.Name = strings.TrimSpace(in.Name)
	existing.Description = in.Description
	existing.SKU = strings.TrimSpace(in.SKU)
	existing.Price = in.Price
	existing.DiscountPrice = in.DiscountPrice
	existing.IsActive = in.IsActive

	err = u.productRepo.Update(ctx, existing)
	if err == repo.ErrConflict {
		return NewHTTPError(http.StatusConflict, "sku already exists")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 商品削除（論理削除）。
func (u *ProductUsecase) AdminDelete(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type UpdateInventoryInput struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

// 在庫の手動調整（スタッフ）。調整履歴と監査ログの両方を残す。
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, productID int64, in UpdateInventoryInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Stock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return NewHTTPError(http.StatusBadRequest, "reason is required")
	}

	existing, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.inventoryRepo.SetStockWithAdjustment(ctx, adminUserID, productID, in.Stock, reason); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//監査ログ（UPDATE_STOCK）
	beforeJSON := `{"stock":` + strconv.FormatInt(existing.Stock, 10) + `}`
	afterJSON := `{"stock":` + strconv.FormatInt(in.Stock, 10) + `}`
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateStock,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   beforeJSON,
		AfterJSON:    afterJSON,
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

type VariantInput struct {
	Name       string          `json:"name"`
	SKU        string          `json:"sku"`
	PriceDelta decimal.Decimal `json:"price_delta"`
	Stock      int64           `json:"stock"`
}

// バリエーション追加（スタッフ）。
func (u *ProductUsecase) AdminCreateVariant(ctx context.Context, productID int64, in VariantInput) (model.Variant, error) {
	if productID <= 0 {
		return model.Variant{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.SKU) == "" {
		return model.Variant{}, NewHTTPError(http.StatusBadRequest, "name and sku are required")
	}
	if in.Stock < 0 {
		return model.Variant{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if err == repo.ErrNotFound {
			return model.Variant{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Variant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	v := model.Variant{
		ProductID:  productID,
		Name:       strings.TrimSpace(in.Name),
		SKU:        strings.TrimSpace(in.SKU),
		PriceDelta: in.PriceDelta,
		Stock:      in.Stock,
	}

	created, err := u.variantRepo.Create(ctx, v)
	if err == repo.ErrConflict {
		return model.Variant{}, NewHTTPError(http.StatusConflict, "sku already exists")
	}
	if err != nil {
		return model.Variant{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}
