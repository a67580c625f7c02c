package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/example/matjar/internal/models"
	"github.com/example/matjar/internal/repository"
	"github.com/example/matjar/internal/utils"
)

type memChallengeStore struct {
	challenges []*models.OtpChallenge
}

func (m *memChallengeStore) Create(ctx context.Context, ch *models.OtpChallenge) error {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	ch.CreatedAt = time.Now()
	copied := *ch
	m.challenges = append(m.challenges, &copied)
	return nil
}

func (m *memChallengeStore) InvalidatePending(ctx context.Context, storeID uuid.UUID, phone string) error {
	for _, ch := range m.challenges {
		if ch.StoreID == storeID && ch.Phone == phone && !ch.Consumed {
			ch.Consumed = true
		}
	}
	return nil
}

func (m *memChallengeStore) LatestPending(ctx context.Context, storeID uuid.UUID, phone string) (*models.OtpChallenge, error) {
	for i := len(m.challenges) - 1; i >= 0; i-- {
		ch := m.challenges[i]
		if ch.StoreID == storeID && ch.Phone == phone && !ch.Consumed {
			copied := *ch
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memChallengeStore) HasPending(ctx context.Context, storeID uuid.UUID, phone string) (bool, error) {
	for _, ch := range m.challenges {
		if ch.StoreID == storeID && ch.Phone == phone && !ch.Consumed && time.Now().Before(ch.ExpiresAt) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memChallengeStore) Save(ctx context.Context, ch *models.OtpChallenge) error {
	for i, existing := range m.challenges {
		if existing.ID == ch.ID {
			copied := *ch
			m.challenges[i] = &copied
		}
	}
	return nil
}

type captureDispatcher struct {
	messages []SmsMessage
}

func (d *captureDispatcher) Dispatch(ctx context.Context, msg SmsMessage) error {
	d.messages = append(d.messages, msg)
	return nil
}

var codePattern = regexp.MustCompile(`[0-9]{6}`)

func (d *captureDispatcher) lastCode(t *testing.T) string {
	t.Helper()
	if len(d.messages) == 0 {
		t.Fatal("no SMS dispatched")
	}
	code := codePattern.FindString(d.messages[len(d.messages)-1].Body)
	if code == "" {
		t.Fatalf("no code found in dispatched body")
	}
	return code
}

func newOtpFixture() (*OtpService, *SessionService, *memChallengeStore, *captureDispatcher, *models.Store) {
	challenges := &memChallengeStore{}
	dispatcher := &captureDispatcher{}
	sessions := NewSessionService(newMemSessionStore(), time.Hour)
	svc := NewOtpService(challenges, sessions, dispatcher, 10*time.Minute)
	store := &models.Store{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Slug:      "demo-store",
		Name:      "Demo Store",
		NameAr:    "متجر تجريبي",
		Currency:  "SAR",
		IsActive:  true,
	}
	return svc, sessions, challenges, dispatcher, store
}

func TestSendCodeDispatchesHashedChallenge(t *testing.T) {
	svc, _, challenges, dispatcher, store := newOtpFixture()

	if err := svc.SendCode(context.Background(), store, "0501234567"); err != nil {
		t.Fatalf("SendCode returned error: %v", err)
	}

	if len(dispatcher.messages) != 1 {
		t.Fatalf("expected 1 dispatched SMS, got %d", len(dispatcher.messages))
	}
	if dispatcher.messages[0].Phone != "+966501234567" {
		t.Fatalf("dispatched to %q, want normalized phone", dispatcher.messages[0].Phone)
	}

	code := dispatcher.lastCode(t)
	ch := challenges.challenges[0]
	if ch.CodeHash == code {
		t.Fatal("challenge stores the raw code instead of a hash")
	}
	if !utils.VerifyOtpCode(code, ch.CodeSalt, ch.CodeHash) {
		t.Fatal("stored hash does not match dispatched code")
	}
}

func TestSendCodeRejectsInvalidPhone(t *testing.T) {
	svc, _, _, dispatcher, store := newOtpFixture()

	err := svc.SendCode(context.Background(), store, "12345")
	if !errors.Is(err, utils.ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
	if len(dispatcher.messages) != 0 {
		t.Fatal("SMS dispatched for invalid phone")
	}
}

func TestReissueInvalidatesPreviousCode(t *testing.T) {
	svc, _, _, dispatcher, store := newOtpFixture()
	ctx := context.Background()

	if err := svc.SendCode(ctx, store, "0501234567"); err != nil {
		t.Fatalf("first SendCode returned error: %v", err)
	}
	firstCode := dispatcher.lastCode(t)

	if err := svc.SendCode(ctx, store, "0501234567"); err != nil {
		t.Fatalf("second SendCode returned error: %v", err)
	}
	secondCode := dispatcher.lastCode(t)

	if _, _, err := svc.VerifyCode(ctx, store, "0501234567", firstCode); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("superseded code should fail, got %v", err)
	}
	if _, _, err := svc.VerifyCode(ctx, store, "0501234567", secondCode); err != nil {
		t.Fatalf("latest code should verify, got %v", err)
	}
}

func TestVerifyMintsStoreScopedSession(t *testing.T) {
	svc, sessions, _, dispatcher, store := newOtpFixture()
	ctx := context.Background()

	if err := svc.SendCode(ctx, store, "0501234567"); err != nil {
		t.Fatalf("SendCode returned error: %v", err)
	}

	token, session, err := svc.VerifyCode(ctx, store, "0501234567", dispatcher.lastCode(t))
	if err != nil {
		t.Fatalf("VerifyCode returned error: %v", err)
	}
	if session.Phone != "+966501234567" {
		t.Fatalf("session phone = %q", session.Phone)
	}

	phone, err := sessions.Validate(ctx, store.ID, token)
	if err != nil {
		t.Fatalf("minted token failed validation: %v", err)
	}
	if phone != "+966501234567" {
		t.Fatalf("validated phone = %q", phone)
	}

	// The token is worthless on any other store.
	if _, err := sessions.Validate(ctx, uuid.New(), token); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("cross-store validation should fail, got %v", err)
	}
}

func TestWrongCodeLeavesNoSession(t *testing.T) {
	svc, sessions, _, _, store := newOtpFixture()
	ctx := context.Background()

	if err := svc.SendCode(ctx, store, "0501234567"); err != nil {
		t.Fatalf("SendCode returned error: %v", err)
	}

	token, _, err := svc.VerifyCode(ctx, store, "0501234567", "000000")
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
	if token != "" {
		t.Fatal("failed verification returned a token")
	}

	// Without ever verifying, no token grants order access.
	if _, err := sessions.Validate(ctx, store.ID, "0000000000000000000000000000000000000000000000000000000000000000"); !errors.Is(err, ErrSessionInvalid) {
		t.Fatalf("expected authorization failure, got %v", err)
	}
}

func TestAttemptExhaustionConsumesChallenge(t *testing.T) {
	svc, _, _, dispatcher, store := newOtpFixture()
	ctx := context.Background()

	if err := svc.SendCode(ctx, store, "0501234567"); err != nil {
		t.Fatalf("SendCode returned error: %v", err)
	}
	code := dispatcher.lastCode(t)

	for i := 0; i < models.MaxOtpAttempts; i++ {
		if _, _, err := svc.VerifyCode(ctx, store, "0501234567", "999999"); !errors.Is(err, ErrVerificationFailed) {
			t.Fatalf("attempt %d: expected ErrVerificationFailed, got %v", i, err)
		}
	}

	// Even the correct code is dead once attempts are exhausted.
	if _, _, err := svc.VerifyCode(ctx, store, "0501234567", code); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("exhausted challenge should reject correct code, got %v", err)
	}
}

func TestExpiredChallengeFailsUniformly(t *testing.T) {
	svc, _, _, dispatcher, store := newOtpFixture()
	ctx := context.Background()

	if err := svc.SendCode(ctx, store, "0501234567"); err != nil {
		t.Fatalf("SendCode returned error: %v", err)
	}
	code := dispatcher.lastCode(t)

	svc.now = func() time.Time { return time.Now().Add(time.Hour) }

	if _, _, err := svc.VerifyCode(ctx, store, "0501234567", code); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expired challenge should fail uniformly, got %v", err)
	}
}

func TestVerifyRejectsMalformedCodes(t *testing.T) {
	svc, _, _, _, store := newOtpFixture()
	ctx := context.Background()

	if err := svc.SendCode(ctx, store, "0501234567"); err != nil {
		t.Fatalf("SendCode returned error: %v", err)
	}

	for _, code := range []string{"", "12345", "1234567", "abcdef"} {
		if _, _, err := svc.VerifyCode(ctx, store, "0501234567", code); !errors.Is(err, ErrVerificationFailed) {
			t.Fatalf("code %q: expected ErrVerificationFailed, got %v", code, err)
		}
	}
}
