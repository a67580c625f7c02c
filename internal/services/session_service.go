package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/matjar/internal/models"
	"github.com/example/matjar/internal/repository"
	"github.com/example/matjar/internal/utils"
)

// ErrSessionInvalid covers every way a session token can fail: unknown,
// revoked, expired, or scoped to a different store. Callers get no more
// detail than that; the reason goes to the logs.
var ErrSessionInvalid = errors.New("session invalid")

// SessionStore is the persistence contract for customer sessions. Keeping it
// an interface means the storage mechanism is swappable without touching the
// flow logic.
type SessionStore interface {
	Create(ctx context.Context, s *models.CustomerSession) error
	ByTokenHash(ctx context.Context, hash string) (*models.CustomerSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Revoke(ctx context.Context, id uuid.UUID) error
}

// SessionService mints and validates customer sessions. A session binds one
// verified phone to one store; validation is server-side on every call and
// client-held expiry is never trusted.
type SessionService struct {
	sessions SessionStore
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(sessions SessionStore, ttl time.Duration) *SessionService {
	return &SessionService{sessions: sessions, ttl: ttl, now: time.Now}
}

// Mint creates a session for a verified (store, phone) pair and returns the
// raw token. The raw token is handed out exactly once; only its hash is kept.
func (s *SessionService) Mint(ctx context.Context, storeID uuid.UUID, phone string) (string, *models.CustomerSession, error) {
	token, hash, err := utils.GenerateSessionToken()
	if err != nil {
		return "", nil, err
	}

	session := &models.CustomerSession{
		StoreID:   storeID,
		Phone:     phone,
		TokenHash: hash,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, err
	}

	return token, session, nil
}

// Validate resolves a token to the phone it is bound to, enforcing store
// scoping, revocation and expiry. An expired session is deleted on sight so
// it behaves exactly like a session that never existed.
func (s *SessionService) Validate(ctx context.Context, storeID uuid.UUID, token string) (string, error) {
	session, err := s.sessions.ByTokenHash(ctx, utils.HashToken(token))
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrSessionInvalid
	}
	if err != nil {
		return "", err
	}

	if session.StoreID != storeID {
		log.Printf("[SESSION] token for store %s presented to store %s", session.StoreID, storeID)
		return "", ErrSessionInvalid
	}

	if session.RevokedAt != nil {
		return "", ErrSessionInvalid
	}

	if s.now().After(session.ExpiresAt) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			log.Printf("[SESSION] failed to clear expired session %s: %v", session.ID, err)
		}
		return "", ErrSessionInvalid
	}

	return session.Phone, nil
}

// Revoke logs a customer out. Revoking an invalid token is not an error.
func (s *SessionService) Revoke(ctx context.Context, storeID uuid.UUID, token string) error {
	session, err := s.sessions.ByTokenHash(ctx, utils.HashToken(token))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if session.StoreID != storeID {
		return nil
	}
	return s.sessions.Revoke(ctx, session.ID)
}
