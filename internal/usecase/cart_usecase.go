package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	productRepo  repo.ProductRepository
	variantRepo  repo.VariantRepository
}

// DI
func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	productRepo repo.ProductRepository,
	variantRepo repo.VariantRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		variantRepo:  variantRepo,
	}
}

type CartItemOutput struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	VariantID   *int64 `json:"variant_id,omitempty"`
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type CartOutput struct {
	CartID    int64            `json:"cart_id"`
	Items     []CartItemOutput `json:"items"`
	Total     string           `json:"total"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// カート取得。無ければ空のカートを作って返す。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartOutput(ctx, cart, items)
}

type AddCartItemInput struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}

// カートに追加。同じ(商品,バリエーション)なら数量を足す。
// 在庫を超える数量は在庫数に丸める。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartItemInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 || in.Quantity <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	stock := p.Stock
	var variant *model.Variant
	if in.VariantID != nil {
		v, err := u.variantRepo.FindByID(ctx, *in.VariantID)
		if err == repo.ErrNotFound {
			return CartOutput{}, NewHTTPError(http.StatusNotFound, "variant not found")
		}
		if err != nil {
			return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if v.ProductID != p.ID {
			return CartOutput{}, NewHTTPError(http.StatusBadRequest, "variant does not belong to product")
		}
		variant = &v
		stock = v.Stock
	}

	if stock <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusConflict, "out of stock")
	}

	cart, err := u.cartRepo.GetOrCreateActiveByUserID(ctx, userID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//在庫を超える分は在庫数に丸める（既存分との合算で判断）
	qty := in.Quantity
	existing, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for _, it := range existing {
		if it.ProductID == in.ProductID && sameVariant(it.VariantID, in.VariantID) {
			if it.Quantity+qty > stock {
				qty = stock - it.Quantity
			}
			break
		}
	}
	if qty > stock {
		qty = stock
	}
	if qty <= 0 {
		//既にカートが在庫上限に達している
		return CartOutput{}, NewHTTPError(http.StatusConflict, "out of stock")
	}

	unitPrice := UnitPrice(p, variant)
	if err := u.cartItemRepo.UpsertByCartAndProduct(ctx, cart.ID, in.ProductID, in.VariantID, qty, unitPrice); err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.cartItemRepo.ListByCartID(ctx, cart.ID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartOutput(ctx, cart, items)
}

type UpdateCartItemInput struct {
	Quantity int64 `json:"quantity"`
}

// 数量変更。0なら削除と同じ。
func (u *CartUsecase) UpdateItem(ctx context.Context, userID int64, cartItemID int64, in UpdateCartItemInput) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 || in.Quantity < 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if in.Quantity == 0 {
		if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
			return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return u.GetCart(ctx, userID)
	}

	item, err := u.cartItemRepo.FindByID(ctx, cartItemID)
	if err == repo.ErrNotFound {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	stock, err := u.currentStock(ctx, item.ProductID, item.VariantID)
	if err != nil {
		return CartOutput{}, err
	}

	qty := in.Quantity
	if qty > stock {
		qty = stock
	}
	if qty <= 0 {
		if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
			return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return u.GetCart(ctx, userID)
	}

	if err := u.cartItemRepo.UpdateQuantity(ctx, cartItemID, qty); err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.GetCart(ctx, userID)
}

// 明細削除。
func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, cartItemID int64) (CartOutput, error) {
	if userID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartItemID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, userID)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.GetCart(ctx, userID)
}

func (u *CartUsecase) currentStock(ctx context.Context, productID int64, variantID *int64) (int64, error) {
	if variantID != nil {
		v, err := u.variantRepo.FindByID(ctx, *variantID)
		if err == repo.ErrNotFound {
			return 0, NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return 0, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return v.Stock, nil
	}
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return 0, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p.Stock, nil
}

// 表示用の合計は現在の商品価格で組み立てる。
// カートの価格スナップショットは参考値で、確定金額は注文時に決まる。
func (u *CartUsecase) buildCartOutput(ctx context.Context, cart model.Cart, items []model.CartItem) (CartOutput, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := u.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return CartOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := CartOutput{CartID: cart.ID, Items: make([]CartItemOutput, 0, len(items)), UpdatedAt: cart.UpdatedAt}
	total := decimal.Zero
	for _, it := range items {
		p, ok := products[it.ProductID]
		name := ""
		unit := it.UnitPriceSnapshot
		if ok {
			name = p.Name
			var variant *model.Variant
			if it.VariantID != nil {
				v, err := u.variantRepo.FindByID(ctx, *it.VariantID)
				if err == nil {
					variant = &v
				}
			}
			unit = UnitPrice(p, variant)
		}
		sub := unit.Mul(decimal.NewFromInt(it.Quantity)).Round(2)
		total = total.Add(sub)
		out.Items = append(out.Items, CartItemOutput{
			ID:          it.ID,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: name,
			UnitPrice:   unit.StringFixed(2),
			Quantity:    it.Quantity,
			Subtotal:    sub.StringFixed(2),
		})
	}
	out.Total = total.Round(2).StringFixed(2)
	return out, nil
}

func sameVariant(a, b *int64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
