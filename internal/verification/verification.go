// Package verification issues and checks short-lived e-mail codes.
package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/rollmark/rollmark/internal/database"
)

// CodeTTL is how long an issued code stays valid.
const CodeTTL = 5 * time.Minute

const codeDigits = 6

// Sender delivers a verification code to an address.
type Sender interface {
	SendCode(ctx context.Context, email, code string) error
}

// Service issues single-use 6-digit codes with a 5-minute lifetime.
type Service struct {
	store  database.VerificationStore
	sender Sender
	now    func() time.Time
}

// NewService creates a verification service.
func NewService(store database.VerificationStore, sender Sender) *Service {
	return &Service{store: store, sender: sender, now: time.Now}
}

// Issue generates a fresh code for the address, stores it and hands it
// to the sender for delivery.
func (s *Service) Issue(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("e-mail address is required")
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	now := s.now()
	record := database.VerificationCode{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(CodeTTL),
	}
	if err := s.store.SaveCode(ctx, record); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.sender.SendCode(ctx, email, code); err != nil {
		return fmt.Errorf("failed to send code: %w", err)
	}
	return nil
}

// Verify consumes the code for the address. A code verifies at most
// once; expired or unknown codes report false without error.
func (s *Service) Verify(ctx context.Context, email, code string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return false, nil
	}

	ok, err := s.store.ConsumeCode(ctx, email, code, s.now())
	if err != nil {
		return false, fmt.Errorf("failed to verify code: %w", err)
	}
	return ok, nil
}

// generateCode returns a zero-padded 6-digit code from crypto/rand.
func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

// LogSender writes codes to the process log instead of delivering
// them. Stands in for an SMTP sender in development.
type LogSender struct{}

func (LogSender) SendCode(ctx context.Context, email, code string) error {
	log.Printf("verification code for %s: %s", email, code)
	return nil
}
