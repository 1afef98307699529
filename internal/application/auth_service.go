package application

import (
	"context"
	"errors"
	"sync"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"go.uber.org/zap"
)

// LoginResult is the authenticated account and its session.
type LoginResult struct {
	User   *domain.User
	Tokens *domain.TokenPair
}

type AuthService struct {
	userRepo   domain.UserRepository
	hasher     domain.PasswordHasher
	jwtService domain.JWTService
	logger     *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(userRepo domain.UserRepository, hasher domain.PasswordHasher, jwtService domain.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		hasher:     hasher,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login checks email and password and issues a token pair.
// Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Pay for a hash comparison anyway so timing does not reveal the account.
		_ = s.hasher.Check(password, s.placeholderHash())
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := s.hasher.Check(password, user.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		return nil, domain.ErrAccountInactive
	}

	tokens, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, domain.ErrTokenGeneration
	}

	s.logger.Debug("User logged in", zap.String("user_id", user.ID.String()))
	return &LoginResult{User: user, Tokens: tokens}, nil
}

// placeholderHash is a hash of a fixed string made with the
// configured cost, compared against when the account does not exist.
func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("placeholder-password-for-unknown-accounts")
		if err != nil {
			s.logger.Error("Failed to build placeholder hash", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", domain.ErrInvalidToken
	}
	return s.jwtService.RefreshAccessToken(refreshToken)
}

// VerifyToken checks signature and expiry of any token this service issued.
func (s *AuthService) VerifyToken(token string) (*domain.Claims, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}
	return s.jwtService.ValidateToken(token)
}

// CurrentUser resolves the account behind an access token subject.
func (s *AuthService) CurrentUser(ctx context.Context, subject string) (*domain.User, error) {
	id, err := domain.ParseULID(subject)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, domain.ErrAccountInactive
	}
	return user, nil
}
