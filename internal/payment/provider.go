package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 決済ページに渡す明細
type LineItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// 決済プロバイダへの送信側の境界。
// 受信側（webhook）は handler 側で署名検証してから処理する。
type Provider interface {
	CreateCheckoutSession(ctx context.Context, orderID int64, items []LineItem, successURL, cancelURL string) (CheckoutSession, error)
}

// ホスト型チェックアウトの実装。
// セッションIDを発行して決済ページURLを組み立てる。
type HostedCheckoutProvider struct {
	baseURL string
}

// DI
func NewHostedCheckoutProvider(baseURL string) *HostedCheckoutProvider {
	return &HostedCheckoutProvider{baseURL: baseURL}
}

func (p *HostedCheckoutProvider) CreateCheckoutSession(ctx context.Context, orderID int64, items []LineItem, successURL, cancelURL string) (CheckoutSession, error) {
	sessionID := uuid.NewString()
	return CheckoutSession{
		SessionID: sessionID,
		URL:       fmt.Sprintf("%s/checkout/%s?order=%d", p.baseURL, sessionID, orderID),
	}, nil
}
