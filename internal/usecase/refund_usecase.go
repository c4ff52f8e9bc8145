package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// 返金の状態遷移表。
// PENDING → APPROVED / REJECTED、APPROVED → COMPLETED。
// それ以外（REJECTED→COMPLETED など）は認めない。
var refundTransitions = map[model.RefundStatus][]model.RefundStatus{
	model.RefundStatusPending:  {model.RefundStatusApproved, model.RefundStatusRejected},
	model.RefundStatusApproved: {model.RefundStatusCompleted},
}

func canTransitRefund(from, to model.RefundStatus) bool {
	for _, allowed := range refundTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type RefundUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
}

func NewRefundUsecase(tx repo.TransactionManager, auditRepo repo.AuditLogRepository) *RefundUsecase {
	return &RefundUsecase{tx: tx, auditRepo: auditRepo}
}

type RefundOutput struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Amount    string    `json:"amount"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type RequestRefundInput struct {
	Reason string
}

// 返金申請（顧客）。
// SHIPPED/DELIVERED の注文だけが対象で、注文1件につき1回しか申請できない。
func (u *RefundUsecase) RequestRefund(ctx context.Context, userID int64, orderID int64, in RequestRefundInput) (RefundOutput, error) {
	if userID <= 0 {
		return RefundOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return RefundOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	reason := strings.TrimSpace(in.Reason)
	if len(reason) > 255 {
		return RefundOutput{}, NewHTTPError(http.StatusBadRequest, "reason too long")
	}

	var out RefundOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		//配送済み（またはそれに相当する）注文だけ返金できる
		if o.Status != model.OrderStatusDelivered && o.Status != model.OrderStatusShipped {
			return NewHTTPError(http.StatusBadRequest, "order not refundable")
		}

		//既に申請済みなら拒否（元の申請はそのまま）
		_, found, err := r.Refunds().FindByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			return NewHTTPError(http.StatusConflict, "refund already requested")
		}

		now := time.Now()
		rf := model.Refund{
			OrderID: orderID,
			//デフォルトは注文合計の全額
			Amount:    o.TotalAmount,
			Reason:    reason,
			Status:    model.RefundStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}

		created, err := r.Refunds().Create(ctx, rf)
		if err == repo.ErrConflict {
			//一意制約での二重申請も同じ扱い
			return NewHTTPError(http.StatusConflict, "refund already requested")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toRefundOutput(created)
		return nil
	})

	if err != nil {
		return RefundOutput{}, err
	}
	return out, nil
}

type AdminUpdateRefundStatusInput struct {
	Status string
}

// 返金ステータス更新（スタッフ）。遷移表に無い遷移は拒否する。
func (u *RefundUsecase) AdminUpdateStatus(ctx context.Context, actorAdminUserID int64, refundID int64, in AdminUpdateRefundStatusInput) error {
	if actorAdminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if refundID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.RefundStatus(strings.TrimSpace(in.Status))
	switch newStatus {
	case model.RefundStatusApproved, model.RefundStatusRejected, model.RefundStatusCompleted:
		// OK
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rf, err := r.Refunds().FindByID(ctx, refundID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// すでに同じなら何もしない（200）
		if rf.Status == newStatus {
			return nil
		}
		if !canTransitRefund(rf.Status, newStatus) {
			return NewHTTPError(http.StatusBadRequest, "invalid transition")
		}

		beforeStatus := string(rf.Status)
		if err := r.Refunds().UpdateStatus(ctx, refundID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//監査ログ（UPDATE_REFUND_STATUS）
		beforeJSON := `{"status":"` + beforeStatus + `"}`
		afterJSON := `{"status":"` + string(newStatus) + `"}`
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateRefundStatus,
			ResourceType: model.AuditResourceRefund,
			ResourceID:   refundID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}

// 返金一覧（スタッフ）。
func (u *RefundUsecase) AdminList(ctx context.Context, page int, limit int) ([]RefundOutput, error) {
	if page < 1 {
		return []RefundOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return []RefundOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var outs []RefundOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		refunds, _, err := r.Refunds().List(ctx, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		outs = make([]RefundOutput, 0, len(refunds))
		for _, rf := range refunds {
			outs = append(outs, toRefundOutput(rf))
		}
		return nil
	})
	if err != nil {
		return []RefundOutput{}, err
	}
	return outs, nil
}

func toRefundOutput(rf model.Refund) RefundOutput {
	return RefundOutput{
		ID:        rf.ID,
		OrderID:   rf.OrderID,
		Amount:    rf.Amount.StringFixed(2),
		Reason:    rf.Reason,
		Status:    string(rf.Status),
		CreatedAt: rf.CreatedAt,
	}
}
