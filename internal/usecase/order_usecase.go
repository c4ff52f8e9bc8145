package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/notify"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// idempotency keyの同時競合（ロールバック用の内部シグナル）
var errIdemRace = errors.New("idempotency race")

type OrderUsecase struct {
	tx        repo.TransactionManager
	addresses repo.AddressRepository
	carts     repo.CartRepository
	users     repo.UserRepository
	notifier  notify.Notifier
	logger    *zap.Logger

	//消費税率（パーセント）と送料。設定から注入
	taxRate     decimal.Decimal
	shippingFee decimal.Decimal
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	addresses repo.AddressRepository,
	carts repo.CartRepository,
	users repo.UserRepository,
	notifier notify.Notifier,
	logger *zap.Logger,
	taxRate decimal.Decimal,
	shippingFee decimal.Decimal,
) *OrderUsecase {
	return &OrderUsecase{
		tx:          tx,
		addresses:   addresses,
		carts:       carts,
		users:       users,
		notifier:    notifier,
		logger:      logger,
		taxRate:     taxRate,
		shippingFee: shippingFee,
	}
}

type PlaceOrderInput struct {
	AddressID      *int64
	CouponCode     string
	IdempotencyKey string
}

type OrderItemOutput struct {
	ProductID int64           `json:"product_id"`
	VariantID *int64          `json:"variant_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	UserID         int64             `json:"user_id"`
	Status         string            `json:"status"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	ShippingAmount decimal.Decimal   `json:"shipping_amount"`
	CreatedAt      time.Time         `json:"created_at"`
	Items          []OrderItemOutput `json:"items"`
}

// 注文確定。カートを不変のOrderへ変換する。
// 在庫の引き当て・価格スナップショット・クーポン消費・Order作成を
// 1つのトランザクションで行う。途中で失敗したら全部巻き戻る。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	//address_idは任意。指定されたら存在確認＋所有チェック
	if in.AddressID != nil {
		addr, err := u.addresses.FindByID(ctx, *in.AddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repo.ErrNotFound) {
				return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
			}
			return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if addr.UserID != userID {
			return OrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
		}
	}

	var out OrderOutput
	var cartID int64
	var replayed bool

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			//既存注文を返す
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			replayed = true
			return nil
		}

		//ACTIVEカート取得
		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		cartID = cart.ID

		//カート明細取得（空注文は拒否）
		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//参照されている商品・バリエーションを一括ロード。
		//1つでも欠けていたら注文全体を拒否（部分注文は作らない）
		products, variants, err := u.loadCatalog(ctx, r, cartItems)
		if err != nil {
			return err
		}

		//在庫を確定時に再チェックして減らし、価格をスナップショット
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		subtotal := decimal.Zero

		for _, ci := range cartItems {
			p := products[ci.ProductID]

			var v *model.Variant
			if ci.VariantID != nil {
				vv := variants[*ci.VariantID]
				v = &vv
			}

			//在庫減算（足りないなら false→全体ロールバック）
			var ok bool
			if v != nil {
				ok, err = r.Inventory().DecreaseVariantStockIfEnough(ctx, v.ID, ci.Quantity)
			} else {
				ok, err = r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			//スナップショット（注文時点の価格・商品名・SKU）
			unit := UnitPrice(p, v)
			sku := p.SKU
			if v != nil {
				sku = v.SKU
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:           ci.ProductID,
				VariantID:           ci.VariantID,
				ProductNameSnapshot: p.Name,
				SKUSnapshot:         sku,
				UnitPriceSnapshot:   unit,
				Quantity:            ci.Quantity,
				CreatedAt:           time.Now(),
			})

			subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(ci.Quantity)))
		}

		//クーポン適用（任意）。消費カウントも同じトランザクション内で増やす
		discount := decimal.Zero
		var couponID *int64
		if code := NormalizeCouponCode(in.CouponCode); code != "" {
			c, err := r.Coupons().FindByCode(ctx, code)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, couponMsgNotFound)
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			if err := ValidateCoupon(c, time.Now(), subtotal); err != nil {
				return err
			}

			d, _ := QuoteCoupon(c, subtotal)

			//上限チェック付きのインクリメント（同時利用の競合はここで決着）
			ok, err := r.Coupons().IncrementUsedIfAvailable(ctx, c.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, couponMsgLimitReached)
			}

			discount = d
			couponID = &c.ID
		}

		//税・送料を加えて合計
		taxable := subtotal.Sub(discount)
		tax := taxable.Mul(u.taxRate).Div(percentBase).Round(2)
		total := taxable.Add(tax).Add(u.shippingFee).Round(2)

		// 注文作成
		now := time.Now()
		order := model.Order{
			UserID:         userID,
			AddressID:      in.AddressID,
			Status:         model.OrderStatusPending,
			TotalAmount:    total,
			DiscountAmount: discount,
			TaxAmount:      tax,
			ShippingAmount: u.shippingFee,
			CouponID:       couponID,
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//同時に同じキーが入った競合。
			//ここまでの在庫減算ごとロールバックさせてから既存注文を返す
			if err == repo.ErrConflict {
				return errIdemRace
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})

	if errors.Is(err, errIdemRace) {
		//勝った方の注文をそのまま返す（同じキーなら同じ結果）
		return u.replayByIdempotencyKey(ctx, userID, key)
	}
	if err != nil {
		return OrderOutput{}, err
	}

	//コミット後のベストエフォート処理。
	//失敗しても注文は成立している（カートは次回表示で直る）
	if !replayed {
		u.finishCheckout(ctx, userID, cartID, out)
	}
	return out, nil
}

// 同じidempotency keyで先に確定した注文を読み直す。
func (u *OrderUsecase) replayByIdempotencyKey(ctx context.Context, userID int64, key string) (OrderOutput, error) {
	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil || !found {
			return NewHTTPError(http.StatusConflict, "idempotency conflict")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = toOrderOutput(existing, items)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 商品・バリエーションの一括ロードと存在・公開チェック。
func (u *OrderUsecase) loadCatalog(ctx context.Context, r repo.TxRepos, cartItems []model.CartItem) (map[int64]model.Product, map[int64]model.Variant, error) {
	productIDs := make([]int64, 0, len(cartItems))
	variantIDs := make([]int64, 0, len(cartItems))
	for _, ci := range cartItems {
		productIDs = append(productIDs, ci.ProductID)
		if ci.VariantID != nil {
			variantIDs = append(variantIDs, *ci.VariantID)
		}
	}

	products, err := r.Products().FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	variants, err := r.Variants().FindByIDs(ctx, variantIDs)
	if err != nil {
		return nil, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	for _, ci := range cartItems {
		p, okP := products[ci.ProductID]
		if !okP || !p.IsActive {
			return nil, nil, NewHTTPError(http.StatusBadRequest, "invalid")
		}
		if ci.VariantID != nil {
			v, okV := variants[*ci.VariantID]
			if !okV || v.ProductID != ci.ProductID {
				return nil, nil, NewHTTPError(http.StatusBadRequest, "invalid")
			}
		}
	}

	return products, variants, nil
}

// カートのクローズと注文確定通知。どちらも失敗はログのみ。
func (u *OrderUsecase) finishCheckout(ctx context.Context, userID int64, cartID int64, out OrderOutput) {
	if cartID > 0 {
		if err := u.carts.UpdateStatus(ctx, cartID, model.CartStatusCheckedOut); err != nil {
			u.logger.Warn("cart checkout mark failed", zap.Int64("cart_id", cartID), zap.Error(err))
		}
		if err := u.carts.Clear(ctx, cartID); err != nil {
			u.logger.Warn("cart clear failed", zap.Int64("cart_id", cartID), zap.Error(err))
		}
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		u.logger.Warn("notify skipped: user lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	if err := u.notifier.NotifyOrderConfirmed(ctx, user.Email, out.ID, out.TotalAmount); err != nil {
		u.logger.Warn("order confirmation notify failed", zap.Int64("order_id", out.ID), zap.Error(err))
	}
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングでまずは固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Name:      it.ProductNameSnapshot,
			SKU:       it.SKUSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		UserID:         o.UserID,
		Status:         string(o.Status),
		TotalAmount:    o.TotalAmount,
		DiscountAmount: o.DiscountAmount,
		TaxAmount:      o.TaxAmount,
		ShippingAmount: o.ShippingAmount,
		CreatedAt:      o.CreatedAt,
		Items:          outItems,
	}
}
