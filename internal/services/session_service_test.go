package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/matjar/internal/models"
	"github.com/example/matjar/internal/repository"
)

type memSessionStore struct {
	byHash map[string]*models.CustomerSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{byHash: make(map[string]*models.CustomerSession)}
}

func (m *memSessionStore) Create(ctx context.Context, s *models.CustomerSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	copied := *s
	m.byHash[s.TokenHash] = &copied
	return nil
}

func (m *memSessionStore) ByTokenHash(ctx context.Context, hash string) (*models.CustomerSession, error) {
	s, ok := m.byHash[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	for hash, s := range m.byHash {
		if s.ID == id {
			delete(m.byHash, hash)
		}
	}
	return nil
}

func (m *memSessionStore) Revoke(ctx context.Context, id uuid.UUID) error {
	for _, s := range m.byHash {
		if s.ID == id && s.RevokedAt == nil {
			now := time.Now()
			s.RevokedAt = &now
		}
	}
	return nil
}

func TestMintAndValidate(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store, time.Hour)
	storeID := uuid.New()

	token, session, err := svc.Mint(context.Background(), storeID, "+966501234567")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}
	if session.Phone != "+966501234567" {
		t.Fatalf("session phone = %q", session.Phone)
	}

	phone, err := svc.Validate(context.Background(), storeID, token)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if phone != "+966501234567" {
		t.Fatalf("Validate phone = %q", phone)
	}
}

func TestValidateRejectsOtherStore(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store, time.Hour)
	storeA := uuid.New()
	storeB := uuid.New()

	token, _, err := svc.Mint(context.Background(), storeA, "+966501234567")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	if _, err := svc.Validate(context.Background(), storeB, token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for other store, got %v", err)
	}

	// The session stays usable for its own store.
	if _, err := svc.Validate(context.Background(), storeA, token); err != nil {
		t.Fatalf("own-store validate failed after cross-store attempt: %v", err)
	}
}

func TestExpiredSessionBehavesLikeMissing(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store, time.Hour)
	storeID := uuid.New()

	token, session, err := svc.Mint(context.Background(), storeID, "+966501234567")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := svc.Validate(context.Background(), storeID, token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for expired session, got %v", err)
	}

	// The stale row is cleared as a side effect.
	if _, err := store.ByTokenHash(context.Background(), session.TokenHash); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expired session was not cleared, lookup err = %v", err)
	}

	// A second validate is identical to presenting an unknown token.
	if _, err := svc.Validate(context.Background(), storeID, token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid on repeat, got %v", err)
	}
}

func TestRevokedSessionInvalid(t *testing.T) {
	store := newMemSessionStore()
	svc := NewSessionService(store, time.Hour)
	storeID := uuid.New()

	token, _, err := svc.Mint(context.Background(), storeID, "+966501234567")
	if err != nil {
		t.Fatalf("Mint returned error: %v", err)
	}

	if err := svc.Revoke(context.Background(), storeID, token); err != nil {
		t.Fatalf("Revoke returned error: %v", err)
	}

	if _, err := svc.Validate(context.Background(), storeID, token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid after revoke, got %v", err)
	}
}

func TestRevokeUnknownTokenIsNoop(t *testing.T) {
	svc := NewSessionService(newMemSessionStore(), time.Hour)
	if err := svc.Revoke(context.Background(), uuid.New(), "deadbeef"); err != nil {
		t.Fatalf("Revoke of unknown token returned error: %v", err)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	svc := NewSessionService(newMemSessionStore(), time.Hour)
	if _, err := svc.Validate(context.Background(), uuid.New(), "deadbeef"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid for unknown token, got %v", err)
	}
}
