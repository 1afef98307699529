package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/database"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const codeColumns = `id, email, code, purpose, created_at, last_sent_at, used, verified`

type VerificationCodeRepository struct {
	logger *zap.Logger
	db     *database.Postgres
}

func NewVerificationCodeRepository(db *database.Postgres, logger *zap.Logger) *VerificationCodeRepository {
	return &VerificationCodeRepository{
		db:     db,
		logger: logger,
	}
}

// LockKey takes a transaction-scoped advisory lock on (email, purpose).
// Outside a transaction the lock is released as soon as the statement ends.
func (r *VerificationCodeRepository) LockKey(ctx context.Context, email string, purpose domain.Purpose) error {
	if err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, email+":"+string(purpose)); err != nil {
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *VerificationCodeRepository) InvalidateActive(ctx context.Context, email string, purpose domain.Purpose) (int64, error) {
	tag, err := r.db.ExecRaw(ctx, `
		UPDATE verification_codes SET used = TRUE
		WHERE email = $1 AND purpose = $2 AND used = FALSE
	`, email, purpose)
	if err != nil {
		return 0, domain.ErrDatabaseQuery
	}
	return tag.RowsAffected(), nil
}

func (r *VerificationCodeRepository) Create(ctx context.Context, code *domain.VerificationCode) error {
	err := r.db.Exec(ctx, `
		INSERT INTO verification_codes (`+codeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, code.ID.String(), code.Email, code.Code, code.Purpose, code.CreatedAt, code.LastSentAt, code.Used, code.Verified)
	if err != nil {
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *VerificationCodeRepository) FindActive(ctx context.Context, email, code string, purpose domain.Purpose) (*domain.VerificationCode, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+codeColumns+`
		FROM verification_codes
		WHERE email = $1 AND code = $2 AND purpose = $3 AND used = FALSE AND verified = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, email, code, purpose)
	return r.scan(row)
}

func (r *VerificationCodeRepository) FindLatestActive(ctx context.Context, email string, purpose domain.Purpose) (*domain.VerificationCode, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+codeColumns+`
		FROM verification_codes
		WHERE email = $1 AND purpose = $2 AND used = FALSE AND verified = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, email, purpose)
	return r.scan(row)
}

// Consume is a compare-and-swap on the unconsumed state. A concurrent
// consumer blocks on the row lock and then matches zero rows.
func (r *VerificationCodeRepository) Consume(ctx context.Context, id ulid.ULID) error {
	tag, err := r.db.ExecRaw(ctx, `
		UPDATE verification_codes SET used = TRUE, verified = TRUE
		WHERE id = $1 AND used = FALSE AND verified = FALSE
	`, id.String())
	if err != nil {
		return domain.ErrDatabaseQuery
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCodeAlreadyConsumed
	}
	return nil
}

func (r *VerificationCodeRepository) MarkSent(ctx context.Context, id ulid.ULID, at time.Time) error {
	if err := r.db.Exec(ctx, `UPDATE verification_codes SET last_sent_at = $1 WHERE id = $2`, at, id.String()); err != nil {
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *VerificationCodeRepository) scan(row pgx.Row) (*domain.VerificationCode, error) {
	var (
		vc domain.VerificationCode
		id string
	)
	err := row.Scan(&id, &vc.Email, &vc.Code, &vc.Purpose, &vc.CreatedAt, &vc.LastSentAt, &vc.Used, &vc.Verified)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrVerificationCodeNotFound
	}
	if err != nil {
		r.logger.Error("Failed to scan verification code", zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	if vc.ID, err = ulid.Parse(id); err != nil {
		r.logger.Error("Stored verification code id is not a ULID", zap.String("id", id))
		return nil, domain.ErrDatabaseQuery
	}
	return &vc, nil
}
