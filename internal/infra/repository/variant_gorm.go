package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type VariantGormRepository struct {
	db *gorm.DB
}

// DI
func NewVariantGormRepository(db *gorm.DB) *VariantGormRepository {
	return &VariantGormRepository{db: db}
}

func (r *VariantGormRepository) FindByID(ctx context.Context, id int64) (model.Variant, error) {
	var v model.Variant
	err := r.db.WithContext(ctx).First(&v, id).Error
	if isNotFound(err) {
		return model.Variant{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Variant{}, err
	}
	return v, nil
}

// 一括取得。見つかった分だけmapで返す
func (r *VariantGormRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Variant, error) {
	result := make(map[int64]model.Variant, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var items []model.Variant
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}

	for _, v := range items {
		result[v.ID] = v
	}
	return result, nil
}

func (r *VariantGormRepository) ListByProductID(ctx context.Context, productID int64) ([]model.Variant, error) {
	var items []model.Variant
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.Variant{}, err
	}
	return items, nil
}

func (r *VariantGormRepository) Create(ctx context.Context, v model.Variant) (model.Variant, error) {
	if err := r.db.WithContext(ctx).Create(&v).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Variant{}, repo.ErrConflict
		}
		return model.Variant{}, err
	}
	return v, nil
}

func (r *VariantGormRepository) Update(ctx context.Context, v model.Variant) error {
	res := r.db.WithContext(ctx).Model(&model.Variant{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
		"name":        v.Name,
		"sku":         v.SKU,
		"price_delta": v.PriceDelta,
		"stock":       v.Stock,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *VariantGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Variant{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
