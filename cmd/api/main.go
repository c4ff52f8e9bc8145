package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/notify"
	"app/internal/payment"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const accessTokenTTL = 15 * time.Minute

func main() {
	//.envは無くても環境変数があれば動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Address{},
		&model.Product{},
		&model.Variant{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Coupon{},
		&model.Payment{},
		&model.Refund{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		logger.Fatal("auto migrate failed", zap.Error(err))
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	variantRepo := infraRepo.NewVariantGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, accessTokenTTL)
	notifier := notify.NewLogNotifier(logger)
	provider := payment.NewHostedCheckoutProvider(cfg.CheckoutBaseURL)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer)
	productUC := usecase.NewProductUsecase(productRepo, variantRepo, inventoryRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo, variantRepo)
	orderUC := usecase.NewOrderUsecase(txManager, addressRepo, cartRepo, userRepo, notifier, logger, cfg.TaxRate, cfg.ShippingFee)
	paymentUC := usecase.NewPaymentUsecase(txManager, provider, logger)
	refundUC := usecase.NewRefundUsecase(txManager, auditRepo)
	couponUC := usecase.NewCouponUsecase(couponRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC),
		Product:      handler.NewProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC, paymentUC),
		Refund:       handler.NewRefundHandler(refundUC),
		Address:      handler.NewAddressHandler(addressUC),
		Webhook:      handler.NewPaymentWebhookHandler(paymentUC, cfg, logger),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminCoupon:  handler.NewAdminCouponHandler(couponUC),
		AdminRefund:  handler.NewAdminRefundHandler(refundUC),
	}

	//Server起動
	if err := server.Start(cfg, handlers); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.GoEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
