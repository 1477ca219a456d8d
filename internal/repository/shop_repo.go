package repository

import (
	"context"

	"airportpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShopRepository interface {
	Create(ctx context.Context, s *model.Shop) error
	// FindByID returns the shop with its Vendor preloaded.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error)
	ListIDsByVendor(ctx context.Context, vendorID uuid.UUID) ([]uuid.UUID, error)
}

type shopRepo struct{ db *gorm.DB }

func NewShopRepository(db *gorm.DB) ShopRepository { return &shopRepo{db: db} }

func (r *shopRepo) Create(ctx context.Context, s *model.Shop) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shopRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shop, error) {
	var s model.Shop
	err := r.db.WithContext(ctx).Preload("Vendor").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *shopRepo) ListIDsByVendor(ctx context.Context, vendorID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.WithContext(ctx).Model(&model.Shop{}).
		Where("vendor_id = ?", vendorID).
		Pluck("id", &ids).Error
	return ids, err
}
