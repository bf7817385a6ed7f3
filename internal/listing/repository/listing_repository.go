package repository

import (
	"context"

	"marketplace_chat_service/internal/listing/domain"

	"gorm.io/gorm"
)

// ListingRepository read-only access to the catalog listings table
type ListingRepository interface {
	// AutoMigrate create the table for local development and tests; the catalog owns it in production
	AutoMigrate() error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Listing, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository create ListingRepository
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Listing{})
}

// GetByID gorm.ErrRecordNotFound when absent
func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var l domain.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *listingRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Listing, error) {
	var listings []domain.Listing
	if len(ids) == 0 {
		return listings, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&listings).Error
	return listings, err
}

func (r *listingRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Listing{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
