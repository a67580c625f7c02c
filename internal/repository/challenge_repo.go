package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/matjar/internal/models"
)

// ChallengeRepo persists OTP challenges.
type ChallengeRepo struct {
	db *gorm.DB
}

// NewChallengeRepo constructs a ChallengeRepo.
func NewChallengeRepo(db *gorm.DB) *ChallengeRepo {
	return &ChallengeRepo{db: db}
}

// Create inserts a new challenge.
func (r *ChallengeRepo) Create(ctx context.Context, ch *models.OtpChallenge) error {
	return r.db.WithContext(ctx).Create(ch).Error
}

// InvalidatePending consumes every unconsumed challenge for the pair, so a
// re-issued code is the only one that can still verify.
func (r *ChallengeRepo) InvalidatePending(ctx context.Context, storeID uuid.UUID, phone string) error {
	return r.db.WithContext(ctx).Model(&models.OtpChallenge{}).
		Where("store_id = ? AND phone = ? AND consumed = ?", storeID, phone, false).
		Update("consumed", true).Error
}

// LatestPending returns the most recent unconsumed challenge for the pair.
func (r *ChallengeRepo) LatestPending(ctx context.Context, storeID uuid.UUID, phone string) (*models.OtpChallenge, error) {
	var ch models.OtpChallenge
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND phone = ? AND consumed = ?", storeID, phone, false).
		Order("created_at desc").
		First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// HasPending reports whether a live (unconsumed, unexpired) challenge exists.
func (r *ChallengeRepo) HasPending(ctx context.Context, storeID uuid.UUID, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OtpChallenge{}).
		Where("store_id = ? AND phone = ? AND consumed = ? AND expires_at > ?",
			storeID, phone, false, time.Now()).
		Count(&count).Error
	return count > 0, err
}

// Save persists attempt-counter and consumption updates.
func (r *ChallengeRepo) Save(ctx context.Context, ch *models.OtpChallenge) error {
	return r.db.WithContext(ctx).Save(ch).Error
}
