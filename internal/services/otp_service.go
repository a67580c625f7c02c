package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/matjar/internal/models"
	"github.com/example/matjar/internal/repository"
	"github.com/example/matjar/internal/utils"
)

// ErrVerificationFailed is the single error every verification rejection maps
// to. Wrong code, expired challenge, exhausted attempts and missing challenge
// are indistinguishable to the caller, so the endpoint cannot be used to probe
// which phones have pending codes.
var ErrVerificationFailed = errors.New("verification failed")

// ChallengeStore is the persistence contract for OTP challenges.
type ChallengeStore interface {
	Create(ctx context.Context, ch *models.OtpChallenge) error
	InvalidatePending(ctx context.Context, storeID uuid.UUID, phone string) error
	LatestPending(ctx context.Context, storeID uuid.UUID, phone string) (*models.OtpChallenge, error)
	HasPending(ctx context.Context, storeID uuid.UUID, phone string) (bool, error)
	Save(ctx context.Context, ch *models.OtpChallenge) error
}

// SmsDispatcher hands a message to the out-of-band delivery channel. The code
// travels only through here; it is never logged and never returned to the
// client.
type SmsDispatcher interface {
	Dispatch(ctx context.Context, msg SmsMessage) error
}

// OtpService issues and verifies one-time passcodes for guest customers.
type OtpService struct {
	challenges ChallengeStore
	sessions   *SessionService
	sms        SmsDispatcher
	ttl        time.Duration
	now        func() time.Time
}

// NewOtpService constructs an OtpService.
func NewOtpService(challenges ChallengeStore, sessions *SessionService, sms SmsDispatcher, ttl time.Duration) *OtpService {
	return &OtpService{
		challenges: challenges,
		sessions:   sessions,
		sms:        sms,
		ttl:        ttl,
		now:        time.Now,
	}
}

// SendCode creates a challenge for (store, phone) and dispatches the code by
// SMS. Any previously pending challenge for the pair is invalidated first, so
// only the most recently sent code can verify.
func (s *OtpService) SendCode(ctx context.Context, store *models.Store, phone string) error {
	normalized, err := utils.NormalizePhone(phone)
	if err != nil {
		return err
	}

	if err := s.challenges.InvalidatePending(ctx, store.ID, normalized); err != nil {
		return fmt.Errorf("invalidate pending challenges: %w", err)
	}

	code, err := utils.GenerateOtpCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	salt, err := utils.GenerateSalt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	challenge := &models.OtpChallenge{
		StoreID:   store.ID,
		Phone:     normalized,
		CodeHash:  utils.HashOtpCode(code, salt),
		CodeSalt:  salt,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.challenges.Create(ctx, challenge); err != nil {
		return fmt.Errorf("create challenge: %w", err)
	}

	name := store.NameAr
	if name == "" {
		name = store.Name
	}
	msg := SmsMessage{
		Phone:     normalized,
		Body:      fmt.Sprintf("رمز التحقق لمتجر %s هو: %s. صالح لمدة %d دقائق.", name, code, int(s.ttl.Minutes())),
		StoreSlug: store.Slug,
	}
	if err := s.sms.Dispatch(ctx, msg); err != nil {
		return fmt.Errorf("dispatch sms: %w", err)
	}

	log.Printf("[OTP] challenge issued for store %s", store.Slug)
	return nil
}

// VerifyCode checks a submitted code and, on success, consumes the challenge
// and mints a session. Every rejection returns ErrVerificationFailed; the
// differentiated reason is logged server-side only.
func (s *OtpService) VerifyCode(ctx context.Context, store *models.Store, phone, code string) (string, *models.CustomerSession, error) {
	normalized, err := utils.NormalizePhone(phone)
	if err != nil {
		log.Printf("[OTP] verify rejected for store %s: bad phone", store.Slug)
		return "", nil, ErrVerificationFailed
	}

	if !utils.IsNumericCode(code, 6) {
		log.Printf("[OTP] verify rejected for store %s: malformed code", store.Slug)
		return "", nil, ErrVerificationFailed
	}

	challenge, err := s.challenges.LatestPending(ctx, store.ID, normalized)
	if errors.Is(err, repository.ErrNotFound) {
		log.Printf("[OTP] verify rejected for store %s: no pending challenge", store.Slug)
		return "", nil, ErrVerificationFailed
	}
	if err != nil {
		return "", nil, err
	}

	if s.now().After(challenge.ExpiresAt) {
		challenge.Consumed = true
		if err := s.challenges.Save(ctx, challenge); err != nil {
			return "", nil, err
		}
		log.Printf("[OTP] verify rejected for store %s: challenge expired", store.Slug)
		return "", nil, ErrVerificationFailed
	}

	if !utils.VerifyOtpCode(code, challenge.CodeSalt, challenge.CodeHash) {
		challenge.Attempts++
		if challenge.Attempts >= models.MaxOtpAttempts {
			challenge.Consumed = true
		}
		if err := s.challenges.Save(ctx, challenge); err != nil {
			return "", nil, err
		}
		log.Printf("[OTP] verify rejected for store %s: wrong code (attempt %d)", store.Slug, challenge.Attempts)
		return "", nil, ErrVerificationFailed
	}

	now := s.now()
	challenge.Consumed = true
	challenge.UsedAt = &now
	if err := s.challenges.Save(ctx, challenge); err != nil {
		return "", nil, err
	}

	token, session, err := s.sessions.Mint(ctx, store.ID, normalized)
	if err != nil {
		return "", nil, err
	}

	log.Printf("[OTP] verified for store %s, session minted", store.Slug)
	return token, session, nil
}

// HasPendingChallenge reports whether a live challenge exists for the pair.
// The flow endpoint uses it to tell a returning client which step to render.
func (s *OtpService) HasPendingChallenge(ctx context.Context, storeID uuid.UUID, phone string) (bool, error) {
	normalized, err := utils.NormalizePhone(phone)
	if err != nil {
		return false, nil
	}
	return s.challenges.HasPending(ctx, storeID, normalized)
}
