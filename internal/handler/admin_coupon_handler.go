package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AdminCouponHandler struct {
	uc *usecase.CouponUsecase
}

// DI
func NewAdminCouponHandler(uc *usecase.CouponUsecase) *AdminCouponHandler {
	return &AdminCouponHandler{uc: uc}
}

type CouponRequest struct {
	Code          string          `json:"code"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	IsFlat        bool            `json:"is_flat"`
	ExpiresAt     time.Time       `json:"expires_at"`
	UsageLimit    *int64          `json:"usage_limit"`
	MinTotal      decimal.Decimal `json:"min_total"`
}

func (h *AdminCouponHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	admin := e.Group("/admin")
	admin.Use(middleware.AuthJWT(cfg))
	admin.Use(middleware.AdminRoleGuard())

	admin.GET("/coupons", h.list)
	admin.POST("/coupons", h.create)
	admin.PUT("/coupons/:id", h.update)
	admin.DELETE("/coupons/:id", h.delete)
}

func (h *AdminCouponHandler) list(c echo.Context) error {
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.List(c.Request().Context(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminCouponHandler) create(c echo.Context) error {
	var req CouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Create(c.Request().Context(), usecase.CouponInput{
		Code:          req.Code,
		DiscountValue: req.DiscountValue,
		IsFlat:        req.IsFlat,
		ExpiresAt:     req.ExpiresAt,
		UsageLimit:    req.UsageLimit,
		MinTotal:      req.MinTotal,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AdminCouponHandler) update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req CouponRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.Update(c.Request().Context(), id, usecase.CouponInput{
		Code:          req.Code,
		DiscountValue: req.DiscountValue,
		IsFlat:        req.IsFlat,
		ExpiresAt:     req.ExpiresAt,
		UsageLimit:    req.UsageLimit,
		MinTotal:      req.MinTotal,
	}); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminCouponHandler) delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
