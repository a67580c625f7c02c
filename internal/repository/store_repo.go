package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/matjar/internal/models"
)

// StoreRepo reads tenant storefronts.
type StoreRepo struct {
	db *gorm.DB
}

// NewStoreRepo constructs a StoreRepo.
func NewStoreRepo(db *gorm.DB) *StoreRepo {
	return &StoreRepo{db: db}
}

// BySlug returns a store by its public slug.
func (r *StoreRepo) BySlug(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// ActiveBySlug returns a store by slug only if it is active.
func (r *StoreRepo) ActiveBySlug(ctx context.Context, slug string) (*models.Store, error) {
	store, err := r.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !store.IsActive {
		return nil, ErrNotFound
	}
	return store, nil
}
