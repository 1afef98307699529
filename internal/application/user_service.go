package application

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"go.uber.org/zap"
)

const maxNameLength = 150

// UserService manages the authenticated user's own account.
type UserService struct {
	users  domain.UserRepository
	hasher domain.PasswordHasher
	policy domain.PasswordPolicy
	logger *zap.Logger
	now    func() time.Time
}

func NewUserService(users domain.UserRepository, hasher domain.PasswordHasher, policy domain.PasswordPolicy, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// GetUser returns an active account by id.
func (s *UserService) GetUser(ctx context.Context, id domain.ULID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrAccountInactive
	}
	return user, nil
}

// UpdateProfile applies a partial change to the name fields.
func (s *UserService) UpdateProfile(ctx context.Context, id domain.ULID, update domain.ProfileUpdate) (*domain.User, error) {
	errs := domain.NewValidationError()
	checkName(errs, "full_name", update.FullName)
	checkName(errs, "first_name", update.FirstName)
	checkName(errs, "last_name", update.LastName)
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return user, nil
	}

	update.Apply(user, s.now())
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", zap.String("user_id", user.ID.String()))
	return user, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, id domain.ULID, oldPassword, newPassword, newPassword2 string) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	errs := domain.NewValidationError()
	if oldPassword == "" {
		errs.Add("old_password", "This field is required.")
	}
	s.policy.ValidatePasswordPair(errs, "new_password", "new_password2", newPassword, newPassword2, user.Email)
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	if err := s.hasher.Check(oldPassword, user.Password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			errs.Add("old_password", "Wrong password.")
			return errs
		}
		s.logger.Error("Failed to check password", zap.Error(err))
		return domain.ErrInternal
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return domain.ErrInternal
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, s.now()); err != nil {
		return err
	}

	s.logger.Info("Password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func checkName(errs *domain.ValidationError, field string, value *string) {
	if value != nil && utf8.RuneCountInString(*value) > maxNameLength {
		errs.Add(field, "Ensure this field has no more than 150 characters.")
	}
}
