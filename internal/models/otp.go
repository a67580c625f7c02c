package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxOtpAttempts is how many wrong codes consume a challenge.
const MaxOtpAttempts = 5

// OtpChallenge is a pending one-time-passcode for a (store, phone) pair.
// The code itself is never stored; only its salted SHA-256 hash is. Issuing a
// new challenge consumes any pending one for the same pair, so only the most
// recently sent code can ever verify.
type OtpChallenge struct {
	BaseModel
	StoreID   uuid.UUID  `gorm:"type:uuid;index:idx_otp_store_phone" json:"store_id"`
	Phone     string     `gorm:"index:idx_otp_store_phone" json:"phone"`
	CodeHash  string     `json:"-"`
	CodeSalt  string     `json:"-"`
	Attempts  int        `json:"attempts"`
	ExpiresAt time.Time  `json:"expires_at"`
	Consumed  bool       `json:"consumed"`
	UsedAt    *time.Time `json:"used_at"`
}

// CustomerSession is the server-side record behind an opaque session token.
// Only the token's SHA-256 hash is persisted. The session binds one verified
// phone to one store; the gateway re-derives the phone from here on every
// order query instead of trusting anything client supplied.
type CustomerSession struct {
	BaseModel
	StoreID   uuid.UUID  `gorm:"type:uuid;index" json:"store_id"`
	Phone     string     `gorm:"index" json:"phone"`
	TokenHash string     `gorm:"uniqueIndex" json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at"`
}
