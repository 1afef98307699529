package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/database"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

const userColumns = `id, email, password, full_name, first_name, last_name, is_active, is_staff, created_at, updated_at`

type UserRepository struct {
	logger *zap.Logger
	db     *database.Postgres
}

func NewUserRepository(db *database.Postgres, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, user.ID.String(), user.Email, user.Password, user.FullName, user.FirstName, user.LastName,
		user.Active, user.IsStaff, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrEmailAlreadyRegistered
		}
		r.logger.Error("Failed to create user", zap.String("user_id", user.ID.String()), zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())
	return r.scan(row, zap.String("user_id", id.String()))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = $1`, domain.NormalizeEmail(email))
	return r.scan(row, zap.String("email", email))
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = $1)`,
		domain.NormalizeEmail(email),
	).Scan(&exists)
	if err != nil {
		r.logger.Error("Failed to check if user exists", zap.Error(err))
		return false, domain.ErrDatabaseQuery
	}
	return exists, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID ulid.ULID, hashedPassword string, at time.Time) error {
	tag, err := r.db.ExecRaw(ctx, `
		UPDATE users SET password = $1, updated_at = $2 WHERE id = $3
	`, hashedPassword, at, userID.String())
	if err != nil {
		r.logger.Error("Failed to update password", zap.String("user_id", userID.String()), zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	tag, err := r.db.ExecRaw(ctx, `
		UPDATE users SET full_name = $1, first_name = $2, last_name = $3, updated_at = $4 WHERE id = $5
	`, user.FullName, user.FirstName, user.LastName, user.UpdatedAt, user.ID.String())
	if err != nil {
		r.logger.Error("Failed to update profile", zap.String("user_id", user.ID.String()), zap.Error(err))
		return domain.ErrDatabaseQuery
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) scan(row pgx.Row, field zap.Field) (*domain.User, error) {
	var (
		user domain.User
		id   string
	)
	err := row.Scan(&id, &user.Email, &user.Password, &user.FullName, &user.FirstName, &user.LastName,
		&user.Active, &user.IsStaff, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("Failed to scan user", field, zap.Error(err))
		return nil, domain.ErrDatabaseQuery
	}
	if user.ID, err = ulid.Parse(id); err != nil {
		r.logger.Error("Stored user id is not a ULID", field, zap.String("id", id))
		return nil, domain.ErrDatabaseQuery
	}
	return &user, nil
}
