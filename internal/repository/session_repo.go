package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/matjar/internal/models"
)

// SessionRepo persists customer sessions, keyed by token hash.
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo constructs a SessionRepo.
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a new session row.
func (r *SessionRepo) Create(ctx context.Context, s *models.CustomerSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

// ByTokenHash returns the session for a token hash, revoked or not. Expiry
// and revocation policy belong to the service layer.
func (r *SessionRepo) ByTokenHash(ctx context.Context, hash string) (*models.CustomerSession, error) {
	var s models.CustomerSession
	err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes a session row. Used to clear stale sessions so an expired
// token behaves exactly like one that never existed.
func (r *SessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CustomerSession{}, "id = ?", id).Error
}

// Revoke marks a session revoked without deleting the row.
func (r *SessionRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.CustomerSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", &now).Error
}
