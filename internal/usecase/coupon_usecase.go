package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// クーポン棄却理由（この順で判定する）
const (
	couponMsgNotFound     = "coupon not found"
	couponMsgExpired      = "coupon expired"
	couponMsgLimitReached = "coupon usage limit reached"
	couponMsgMinTotal     = "minimum order value not met"
)

var percentBase = decimal.NewFromInt(100)

// codeの正規化（大文字・前後空白除去）
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// 適用可否の判定。棄却理由は優先順位どおり：
// 期限切れ → 使用上限 → 最低小計。
// （存在チェックは呼び出し側のFindByCodeが担う）
func ValidateCoupon(c model.Coupon, now time.Time, subtotal decimal.Decimal) error {
	if c.ExpiresAt.Before(now) {
		return NewHTTPError(http.StatusBadRequest, couponMsgExpired)
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return NewHTTPError(http.StatusBadRequest, couponMsgLimitReached)
	}
	if subtotal.LessThan(c.MinTotal) {
		return NewHTTPError(http.StatusBadRequest, couponMsgMinTotal)
	}
	return nil
}

// 割引額と適用後小計を計算する。
// 固定額は min(割引額, 小計)（小計を超えて割り引かない）。
// パーセントは 小計×率÷100。どちらもセント境界で四捨五入（half-up）。
func QuoteCoupon(c model.Coupon, subtotal decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	var discount decimal.Decimal
	if c.IsFlat {
		discount = c.DiscountValue
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
	} else {
		discount = subtotal.Mul(c.DiscountValue).Div(percentBase)
	}

	discount = discount.Round(2)
	final := subtotal.Sub(discount).Round(2)
	return discount, final
}

// 管理者向けのクーポンCRUD。
type CouponUsecase struct {
	couponRepo repo.CouponRepository
}

// DI
func NewCouponUsecase(couponRepo repo.CouponRepository) *CouponUsecase {
	return &CouponUsecase{couponRepo: couponRepo}
}

type CouponInput struct {
	Code          string          `json:"code"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	IsFlat        bool            `json:"is_flat"`
	ExpiresAt     time.Time       `json:"expires_at"`
	UsageLimit    *int64          `json:"usage_limit"`
	MinTotal      decimal.Decimal `json:"min_total"`
}

type CouponListOutput struct {
	Items []model.Coupon `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func validateCouponInput(in CouponInput) error {
	if NormalizeCouponCode(in.Code) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid code")
	}
	if !in.DiscountValue.IsPositive() {
		return NewHTTPError(http.StatusBadRequest, "discount_value must be > 0")
	}
	if !in.IsFlat && in.DiscountValue.GreaterThan(percentBase) {
		return NewHTTPError(http.StatusBadRequest, "percentage must be <= 100")
	}
	if in.ExpiresAt.IsZero() {
		return NewHTTPError(http.StatusBadRequest, "expires_at is required")
	}
	if in.UsageLimit != nil && *in.UsageLimit < 1 {
		return NewHTTPError(http.StatusBadRequest, "usage_limit must be >= 1")
	}
	if in.MinTotal.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "min_total must be >= 0")
	}
	return nil
}

func (u *CouponUsecase) List(ctx context.Context, page int, limit int) (CouponListOutput, error) {
	if page < 1 {
		return CouponListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return CouponListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.couponRepo.List(ctx, page, limit)
	if err != nil {
		return CouponListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return CouponListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *CouponUsecase) Create(ctx context.Context, in CouponInput) (model.Coupon, error) {
	if err := validateCouponInput(in); err != nil {
		return model.Coupon{}, err
	}

	c := model.Coupon{
		Code:          NormalizeCouponCode(in.Code),
		DiscountValue: in.DiscountValue,
		IsFlat:        in.IsFlat,
		ExpiresAt:     in.ExpiresAt,
		UsageLimit:    in.UsageLimit,
		MinTotal:      in.MinTotal,
	}

	created, err := u.couponRepo.Create(ctx, c)
	if err == repo.ErrConflict {
		return model.Coupon{}, NewHTTPError(http.StatusConflict, "code already exists")
	}
	if err != nil {
		return model.Coupon{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *CouponUsecase) Update(ctx context.Context, couponID int64, in CouponInput) error {
	if couponID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateCouponInput(in); err != nil {
		return err
	}

	c := model.Coupon{
		ID:            couponID,
		Code:          NormalizeCouponCode(in.Code),
		DiscountValue: in.DiscountValue,
		IsFlat:        in.IsFlat,
		ExpiresAt:     in.ExpiresAt,
		UsageLimit:    in.UsageLimit,
		MinTotal:      in.MinTotal,
	}

	err := u.couponRepo.Update(ctx, c)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err == repo.ErrConflict {
		return NewHTTPError(http.StatusConflict, "code already exists")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CouponUsecase) Delete(ctx context.Context, couponID int64) error {
	if couponID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.couponRepo.Delete(ctx, couponID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
