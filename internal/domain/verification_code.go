package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Purpose is the reason a code was issued. Codes never validate across purposes.
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password_reset"
)

func (p Purpose) IsValid() bool {
	return p == PurposeRegistration || p == PurposePasswordReset
}

// OTPSettings configures code generation, expiry and cooldowns.
type OTPSettings struct {
	Length          int
	Expiry          time.Duration
	Cooldown        time.Duration
	ResendCooldown  time.Duration
	DeliveryTimeout time.Duration
}

// DefaultOTPSettings returns a six digit code valid for ten minutes.
func DefaultOTPSettings() OTPSettings {
	return OTPSettings{
		Length:          6,
		Expiry:          10 * time.Minute,
		Cooldown:        60 * time.Second,
		ResendCooldown:  30 * time.Second,
		DeliveryTimeout: 10 * time.Second,
	}
}

// VerificationCode is a one-time code proving control of an email address.
type VerificationCode struct {
	ID         ulid.ULID `json:"id"`
	Email      string    `json:"email"`
	Code       string    `json:"-"`
	Purpose    Purpose   `json:"purpose"`
	CreatedAt  time.Time `json:"created_at"`
	LastSentAt time.Time `json:"last_sent_at"`
	Used       bool      `json:"used"`
	Verified   bool      `json:"verified"`
}

// NewVerificationCode creates an unused code for email and purpose.
func NewVerificationCode(email, code string, purpose Purpose, now time.Time) *VerificationCode {
	return &VerificationCode{
		ID:         ulid.MustNew(ulid.Timestamp(now), rand.Reader),
		Email:      NormalizeEmail(email),
		Code:       code,
		Purpose:    purpose,
		CreatedAt:  now,
		LastSentAt: now,
	}
}

// IsValid reports whether the code can still be redeemed at now.
// It has no side effects and may be called speculatively.
func (vc *VerificationCode) IsValid(now time.Time, expiry time.Duration) bool {
	return !vc.Used && !vc.Verified && now.Sub(vc.CreatedAt) <= expiry
}

// GenerateNumericCode returns length random decimal digits.
func GenerateNumericCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length %d", length)
	}
	var b strings.Builder
	b.Grow(length)
	ten := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate code digit: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// NormalizeEmail case-folds an address for lookups and persistence.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the part after the last '@', or "" when there is none.
func EmailDomain(email string) string {
	email = NormalizeEmail(email)
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return email[at+1:]
}
