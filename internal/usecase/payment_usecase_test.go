package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreateCheckoutSession(ctx context.Context, orderID int64, items []payment.LineItem, successURL, cancelURL string) (payment.CheckoutSession, error) {
	args := m.Called(ctx, orderID, items, successURL, cancelURL)
	s, _ := args.Get(0).(payment.CheckoutSession)
	return s, args.Error(1)
}

func newPaymentTestEnv() (*fakeTxRepos, *ProviderMock, *usecase.PaymentUsecase) {
	repos := newFakeTxRepos()
	provider := new(ProviderMock)
	uc := usecase.NewPaymentUsecase(&fakeTxManager{repos: repos}, provider, zap.NewNop())
	return repos, provider, uc
}

func TestVerifyPayment_FirstNotification(t *testing.T) {
	repos, _, uc := newPaymentTestEnv()

	repos.payments.On("FindByOrderID", mock.Anything, int64(42)).
		Return(model.Payment{}, false, nil)
	repos.orders.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, Status: model.OrderStatusPending, TotalAmount: dec("104.00")}, nil)
	repos.payments.On("Create", mock.Anything, mock.MatchedBy(func(p model.Payment) bool {
		return p.OrderID == 42 &&
			p.Amount.Equal(dec("104.00")) &&
			p.Status == model.PaymentStatusCompleted &&
			p.TransactionID == "tx-1"
	})).Return(model.Payment{ID: 1, OrderID: 42, Amount: dec("104.00"), Method: "card", Status: model.PaymentStatusCompleted, TransactionID: "tx-1"}, nil)
	repos.orders.On("UpdateStatus", mock.Anything, int64(42), model.OrderStatusProcessing).
		Return(nil)

	out, err := uc.VerifyPayment(context.Background(), 42, "tx-1", "card")
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.OrderID)
	assert.Equal(t, "104.00", out.Amount)
	assert.Equal(t, "COMPLETED", out.Status)

	repos.orders.AssertExpectations(t)
	repos.payments.AssertExpectations(t)
}

// 同じ通知の再送では新しいPaymentを作らない
func TestVerifyPayment_DuplicateNotification(t *testing.T) {
	repos, _, uc := newPaymentTestEnv()

	existing := model.Payment{ID: 1, OrderID: 42, Amount: dec("104.00"), Method: "card", Status: model.PaymentStatusCompleted, TransactionID: "tx-1"}
	repos.payments.On("FindByOrderID", mock.Anything, int64(42)).
		Return(existing, true, nil)

	out, err := uc.VerifyPayment(context.Background(), 42, "tx-1", "card")
	require.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "tx-1", out.TransactionID)

	repos.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	repos.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_OrderNotFound(t *testing.T) {
	repos, _, uc := newPaymentTestEnv()

	repos.payments.On("FindByOrderID", mock.Anything, int64(404)).
		Return(model.Payment{}, false, nil)
	repos.orders.On("FindByID", mock.Anything, int64(404)).
		Return(model.Order{}, repo.ErrNotFound)

	_, err := uc.VerifyPayment(context.Background(), 404, "tx-9", "card")
	require.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)
	assert.Equal(t, "order not found", he.Message)
}

// fakeTxManagerと同じ素通し実行だが、トランザクションの回数を数える。
type countingTxManager struct {
	repos *fakeTxRepos
	calls int
}

func (tm *countingTxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	tm.calls++
	return fn(tm.repos)
}

// 同時に同じ通知が来たら、一意制約で負けた側は勝った方のレコードを返す。
// 一意制約違反で元のトランザクションは巻き戻っているので、
// 読み直しは新しいトランザクションで行われること
func TestVerifyPayment_ConcurrentConflict(t *testing.T) {
	repos := newFakeTxRepos()
	tm := &countingTxManager{repos: repos}
	uc := usecase.NewPaymentUsecase(tm, nil, zap.NewNop())

	repos.payments.On("FindByOrderID", mock.Anything, int64(42)).
		Return(model.Payment{}, false, nil).Once()
	repos.orders.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, Status: model.OrderStatusPending, TotalAmount: dec("50.00")}, nil)
	repos.payments.On("Create", mock.Anything, mock.Anything).
		Return(model.Payment{}, repo.ErrConflict)

	winner := model.Payment{ID: 2, OrderID: 42, Amount: dec("50.00"), Status: model.PaymentStatusCompleted, TransactionID: "tx-win"}
	repos.payments.On("FindByOrderID", mock.Anything, int64(42)).
		Return(winner, true, nil).Once()

	out, err := uc.VerifyPayment(context.Background(), 42, "tx-lose", "card")
	require.NoError(t, err)
	assert.Equal(t, "tx-win", out.TransactionID)
	assert.Equal(t, 2, tm.calls)

	repos.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyPayment_InvalidInput(t *testing.T) {
	_, _, uc := newPaymentTestEnv()

	_, err := uc.VerifyPayment(context.Background(), 0, "tx-1", "card")
	require.Error(t, err)

	_, err = uc.VerifyPayment(context.Background(), 42, "   ", "card")
	require.Error(t, err)
	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, "invalid transaction_id", he.Message)
}

func TestCreateCheckoutSession_OK(t *testing.T) {
	repos, provider, uc := newPaymentTestEnv()

	repos.orders.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: 7, Status: model.OrderStatusPending, TotalAmount: dec("99.98")}, nil)
	repos.orderItems.On("ListByOrderID", mock.Anything, int64(42)).
		Return([]model.OrderItem{{ProductNameSnapshot: "Mug", UnitPriceSnapshot: dec("49.99"), Quantity: 2}}, nil)
	provider.On("CreateCheckoutSession", mock.Anything, int64(42), mock.MatchedBy(func(items []payment.LineItem) bool {
		return len(items) == 1 && items[0].Name == "Mug" && items[0].Quantity == 2
	}), "https://fe/success", "https://fe/cancel").
		Return(payment.CheckoutSession{SessionID: "sess-1", URL: "https://pay/checkout/sess-1"}, nil)

	out, err := uc.CreateCheckoutSession(context.Background(), 7, 42, "https://fe/success", "https://fe/cancel")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", out.SessionID)
	assert.Equal(t, "https://pay/checkout/sess-1", out.URL)
}

// 他人の注文へのセッション発行は404
func TestCreateCheckoutSession_OtherUsersOrder(t *testing.T) {
	repos, provider, uc := newPaymentTestEnv()

	repos.orders.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: 99, Status: model.OrderStatusPending}, nil)

	_, err := uc.CreateCheckoutSession(context.Background(), 7, 42, "s", "c")
	require.Error(t, err)
	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, http.StatusNotFound, he.Status)

	provider.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateCheckoutSession_NotPayable(t *testing.T) {
	repos, _, uc := newPaymentTestEnv()

	repos.orders.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: 7, Status: model.OrderStatusShipped}, nil)

	_, err := uc.CreateCheckoutSession(context.Background(), 7, 42, "s", "c")
	require.Error(t, err)
	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, "order not payable", he.Message)
}

func TestCreateCheckoutSession_ProviderDown(t *testing.T) {
	repos, provider, uc := newPaymentTestEnv()

	repos.orders.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: 7, Status: model.OrderStatusPending}, nil)
	repos.orderItems.On("ListByOrderID", mock.Anything, int64(42)).
		Return([]model.OrderItem{}, nil)
	provider.On("CreateCheckoutSession", mock.Anything, int64(42), mock.Anything, "s", "c").
		Return(payment.CheckoutSession{}, errors.New("connection refused"))

	_, err := uc.CreateCheckoutSession(context.Background(), 7, 42, "s", "c")
	require.Error(t, err)
	he, _ := usecase.AsHTTPError(err)
	assert.Equal(t, http.StatusBadGateway, he.Status)
	assert.Equal(t, "payment provider unavailable", he.Message)
}
