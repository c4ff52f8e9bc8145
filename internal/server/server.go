package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlersはルーティングに登録するhandler一式。
type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Refund       *handler.RefundHandler
	Address      *handler.AddressHandler
	Webhook      *handler.PaymentWebhookHandler
	AdminProduct *handler.AdminProductHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminCoupon  *handler.AdminCouponHandler
	AdminRefund  *handler.AdminRefundHandler
}

// New はEchoインスタンスを組み立てて返す。
func New(cfg config.Config, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	if cfg.FEURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{cfg.FEURL},
			AllowCredentials: true,
		}))
	}

	//公開API
	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Webhook.RegisterRoutes(e)

	//認証が必要なAPI
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Refund.RegisterRoutes(e, cfg)
	h.Address.RegisterRoutes(e, cfg)

	//管理者API
	h.AdminProduct.RegisterRoutes(e, cfg)
	h.AdminOrder.RegisterRoutes(e, cfg)
	h.AdminCoupon.RegisterRoutes(e, cfg)
	h.AdminRefund.RegisterRoutes(e, cfg)

	return e
}

// Start はサーバーを起動する。
func Start(cfg config.Config, h Handlers) error {
	e := New(cfg, h)

	addr := cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}
	return e.Start(addr)
}
