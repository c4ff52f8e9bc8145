package notify

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 注文確定通知の送信窓口。
// fire-and-forget：失敗してもログに残すだけで、注文の成否には影響させない。
type Notifier interface {
	NotifyOrderConfirmed(ctx context.Context, email string, orderID int64, total decimal.Decimal) error
}

// ログ出力だけの実装。
// 実際のメール配送は外部コラボレータの責務。
type LogNotifier struct {
	logger *zap.Logger
}

// DI
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyOrderConfirmed(ctx context.Context, email string, orderID int64, total decimal.Decimal) error {
	n.logger.Info("order confirmed",
		zap.String("email", email),
		zap.Int64("order_id", orderID),
		zap.String("total", total.StringFixed(2)),
	)
	return nil
}
