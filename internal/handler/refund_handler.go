package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 顧客側の返金申請。
type RefundHandler struct {
	uc *usecase.RefundUsecase
}

// DI
func NewRefundHandler(uc *usecase.RefundUsecase) *RefundHandler {
	return &RefundHandler{uc: uc}
}

type RefundRequestBody struct {
	Reason string `json:"reason"`
}

func (h *RefundHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/orders")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/:id/refund", h.requestRefund)
}

func (h *RefundHandler) requestRefund(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req RefundRequestBody
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.RequestRefund(c.Request().Context(), userID, orderID, usecase.RequestRefundInput{
		Reason: req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
