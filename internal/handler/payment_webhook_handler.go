package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"app/internal/config"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// 決済プロバイダからのwebhook受け口。
// 署名検証を通った通知だけをusecaseに渡す。
type PaymentWebhookHandler struct {
	uc     *usecase.PaymentUsecase
	secret []byte
	logger *zap.Logger
}

// DI
func NewPaymentWebhookHandler(uc *usecase.PaymentUsecase, cfg config.Config, logger *zap.Logger) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		uc:     uc,
		secret: []byte(cfg.PaymentWebhookSecret),
		logger: logger,
	}
}

// webhookのイベントボディ
type paymentWebhookEvent struct {
	Type          string `json:"type"`
	OrderID       int64  `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	Method        string `json:"method"`
}

func (h *PaymentWebhookHandler) RegisterRoutes(e *echo.Echo) {
	// 認証ミドルウェアは通さない（署名で本人性を確認する）
	e.POST("/webhooks/payment", h.handle)
}

func (h *PaymentWebhookHandler) handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//生のボディに対するHMAC-SHA256（hex）を検証する。
	//署名不一致は再送しても直らないので401で終端
	signature := c.Request().Header.Get("X-Webhook-Signature")
	if !h.verifySignature(body, signature) {
		h.logger.Warn("webhook signature mismatch")
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid signature"})
	}

	var ev paymentWebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	switch ev.Type {
	case "payment.completed":
		out, err := h.uc.VerifyPayment(c.Request().Context(), ev.OrderID, ev.TransactionID, ev.Method)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	default:
		//未対応イベントは受領だけして捨てる（再送ループを防ぐ）
		h.logger.Info("webhook event ignored", zap.String("type", ev.Type))
		return c.JSON(http.StatusOK, SuccessResponse{Message: "ignored"})
	}
}

func (h *PaymentWebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, h.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	//タイミング攻撃を避けるため定数時間比較
	return hmac.Equal([]byte(expected), []byte(signature))
}
