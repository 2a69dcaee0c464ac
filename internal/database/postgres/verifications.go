package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rollmark/rollmark/internal/database"
)

// VerificationRepository provides PostgreSQL-backed storage for e-mail
// verification codes.
type VerificationRepository struct {
	pool *Pool
}

// NewVerificationRepository creates a new PostgreSQL verification repository.
func NewVerificationRepository(pool *Pool) *VerificationRepository {
	return &VerificationRepository{pool: pool}
}

// SaveCode stores a verification code. Codes that expired before the
// new code was created are swept out in the same call; the table only
// ever holds live codes plus recently expired stragglers.
func (r *VerificationRepository) SaveCode(ctx context.Context, code database.VerificationCode) error {
	if _, err := r.pool.Exec(ctx,
		"DELETE FROM verification_codes WHERE expires_at <= $1", code.CreatedAt,
	); err != nil {
		return fmt.Errorf("sweep expired codes: %w", err)
	}

	query := `
		INSERT INTO verification_codes (email, code, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.pool.Exec(ctx, query, code.Email, code.Code, code.CreatedAt, code.ExpiresAt); err != nil {
		return fmt.Errorf("save verification code: %w", err)
	}
	return nil
}

// ConsumeCode atomically deletes a matching unexpired code and reports
// whether one existed.
func (r *VerificationRepository) ConsumeCode(ctx context.Context, email, code string, now time.Time) (bool, error) {
	query := `
		DELETE FROM verification_codes
		WHERE id IN (
			SELECT id FROM verification_codes
			WHERE email = $1 AND code = $2 AND expires_at > $3
			LIMIT 1
		)
	`

	result, err := r.pool.Exec(ctx, query, email, code, now)
	if err != nil {
		return false, fmt.Errorf("consume verification code: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume code rows affected: %w", err)
	}
	return affected > 0, nil
}
