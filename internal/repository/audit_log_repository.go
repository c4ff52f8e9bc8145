package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

// 監査ログの絞り込み条件
type AuditLogFilter struct {
	ActorUserID  *int64
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *int64
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// 監査ログの保存・一覧取得の約束。
// ログは追記のみで、更新・削除の口は持たない。
type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error

	//条件で一覧取得（新しい順）
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
