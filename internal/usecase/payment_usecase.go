package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// 支払い作成の同時競合（ロールバック用の内部シグナル）。
// 一意制約違反の時点でトランザクションは死んでいるので、
// 同じトランザクション内での読み直しはできない
var errPaymentRace = errors.New("payment race")

type PaymentUsecase struct {
	tx       repo.TransactionManager
	provider payment.Provider
	logger   *zap.Logger
}

func NewPaymentUsecase(tx repo.TransactionManager, provider payment.Provider, logger *zap.Logger) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, provider: provider, logger: logger}
}

type PaymentOutput struct {
	ID            int64  `json:"id"`
	OrderID       int64  `json:"order_id"`
	Amount        string `json:"amount"`
	Method        string `json:"method"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

// 決済プロバイダの通知を注文に突き合わせる。
// 同じ通知が何度届いても、Paymentは1件しか作られない。
func (u *PaymentUsecase) VerifyPayment(ctx context.Context, orderID int64, transactionID string, method string) (PaymentOutput, error) {
	if orderID <= 0 {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order_id")
	}
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid transaction_id")
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = "card"
	}

	var out PaymentOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//既存の支払いがあればそのまま返す（重複通知のガード）
		existing, found, err := r.Payments().FindByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			out = toPaymentOutput(existing)
			return nil
		}

		//注文が存在しない通知は拒否
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		p := model.Payment{
			OrderID:       orderID,
			Amount:        o.TotalAmount,
			Method:        method,
			Status:        model.PaymentStatusCompleted,
			TransactionID: transactionID,
			CreatedAt:     time.Now(),
		}

		created, err := r.Payments().Create(ctx, p)
		if err == repo.ErrConflict {
			//同時に同じ通知が来た。巻き戻してから勝った方を読み直す
			return errPaymentRace
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//支払い確認で注文はPROCESSINGへ
		if o.Status == model.OrderStatusPending {
			if err := r.Orders().UpdateStatus(ctx, orderID, model.OrderStatusProcessing); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		out = toPaymentOutput(created)
		return nil
	})

	if errors.Is(err, errPaymentRace) {
		//新しいトランザクションで勝った方のレコードを返す
		return u.replayByOrderID(ctx, orderID)
	}
	if err != nil {
		return PaymentOutput{}, err
	}
	return out, nil
}

// 同じ注文で先に確定した支払いを読み直す。
func (u *PaymentUsecase) replayByOrderID(ctx context.Context, orderID int64) (PaymentOutput, error) {
	var out PaymentOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		winner, found, err := r.Payments().FindByOrderID(ctx, orderID)
		if err != nil || !found {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = toPaymentOutput(winner)
		return nil
	})
	if err != nil {
		return PaymentOutput{}, err
	}
	return out, nil
}

type CheckoutSessionOutput struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// 決済ページのセッションを発行する。
func (u *PaymentUsecase) CreateCheckoutSession(ctx context.Context, userID int64, orderID int64, successURL, cancelURL string) (CheckoutSessionOutput, error) {
	if userID <= 0 {
		return CheckoutSessionOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return CheckoutSessionOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var lineItems []payment.LineItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if o.Status != model.OrderStatusPending {
			return NewHTTPError(http.StatusBadRequest, "order not payable")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		lineItems = make([]payment.LineItem, 0, len(items))
		for _, it := range items {
			lineItems = append(lineItems, payment.LineItem{
				Name:      it.ProductNameSnapshot,
				UnitPrice: it.UnitPriceSnapshot,
				Quantity:  it.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		return CheckoutSessionOutput{}, err
	}

	//プロバイダ呼び出しはトランザクションの外
	session, err := u.provider.CreateCheckoutSession(ctx, orderID, lineItems, successURL, cancelURL)
	if err != nil {
		u.logger.Error("checkout session failed", zap.Int64("order_id", orderID), zap.Error(err))
		return CheckoutSessionOutput{}, NewHTTPError(http.StatusBadGateway, "payment provider unavailable")
	}

	return CheckoutSessionOutput{SessionID: session.SessionID, URL: session.URL}, nil
}

func toPaymentOutput(p model.Payment) PaymentOutput {
	return PaymentOutput{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount.StringFixed(2),
		Method:        p.Method,
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
	}
}
