package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type RefundGormRepository struct {
	db *gorm.DB
}

// DI
func NewRefundGormRepository(db *gorm.DB) *RefundGormRepository {
	return &RefundGormRepository{db: db}
}

func (r *RefundGormRepository) FindByID(ctx context.Context, refundID int64) (model.Refund, error) {
	var rf model.Refund
	err := r.db.WithContext(ctx).First(&rf, refundID).Error
	if isNotFound(err) {
		return model.Refund{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Refund{}, err
	}
	return rf, nil
}

func (r *RefundGormRepository) FindByOrderID(ctx context.Context, orderID int64) (model.Refund, bool, error) {
	var rf model.Refund
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&rf).Error
	if isNotFound(err) {
		return model.Refund{}, false, nil
	}
	if err != nil {
		return model.Refund{}, false, err
	}
	return rf, true, nil
}

// 作成。order_idの一意制約で2件目はErrConflict
func (r *RefundGormRepository) Create(ctx context.Context, rf model.Refund) (model.Refund, error) {
	if err := r.db.WithContext(ctx).Create(&rf).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Refund{}, repo.ErrConflict
		}
		return model.Refund{}, err
	}
	return rf, nil
}

func (r *RefundGormRepository) UpdateStatus(ctx context.Context, refundID int64, status model.RefundStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Refund{}).
		Where("id = ?", refundID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *RefundGormRepository) List(ctx context.Context, page int, limit int) ([]model.Refund, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Refund{}).Count(&total).Error; err != nil {
		return []model.Refund{}, 0, err
	}

	var items []model.Refund
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return []model.Refund{}, 0, err
	}

	return items, total, nil
}
