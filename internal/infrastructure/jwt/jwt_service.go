package jwt

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type jwtService struct {
	strategy domain.JWTStrategy
	logger   *zap.Logger
	now      func() time.Time
}

func NewJWTService(strategy domain.JWTStrategy, logger *zap.Logger) domain.JWTService {
	return &jwtService{
		strategy: strategy,
		logger:   logger,
		now:      time.Now,
	}
}

// GenerateTokenPair mints an access and a refresh token for user.
func (j *jwtService) GenerateTokenPair(user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := j.sign(user.ID.String(), user.Email, user.DisplayName(), user.IsStaff,
		domain.TokenTypeAccess, j.strategy.GetAccessDuration())
	if err != nil {
		return nil, err
	}

	refreshToken, err := j.sign(user.ID.String(), user.Email, user.DisplayName(), user.IsStaff,
		domain.TokenTypeRefresh, j.strategy.GetRefreshDuration())
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshAccessToken exchanges a refresh token for a new access token carrying the same claims.
func (j *jwtService) RefreshAccessToken(refreshToken string) (string, error) {
	claims, err := j.ValidateToken(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenType != domain.TokenTypeRefresh {
		j.logger.Warn("Non-refresh token presented for refresh", zap.String("token_id", claims.ID))
		return "", domain.ErrInvalidToken
	}

	return j.sign(claims.Subject, claims.Email, claims.Name, claims.IsStaff,
		domain.TokenTypeAccess, j.strategy.GetAccessDuration())
}

// ValidateToken validates a JWT token and returns the claims
func (j *jwtService) ValidateToken(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		publicKey := j.strategy.GetPublicKey()
		if publicKey == nil {
			return nil, domain.ErrInvalidKeyConfig
		}
		return publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithTimeFunc(j.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			j.logger.Debug("Token expired", zap.Error(err))
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			j.logger.Debug("Malformed token", zap.Error(err))
			return nil, domain.ErrInvalidToken
		default:
			j.logger.Warn("Failed to parse token", zap.Error(err))
			return nil, domain.ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" {
		j.logger.Warn("Missing subject in token", zap.String("token_id", claims.ID))
		return nil, domain.ErrInvalidToken
	}
	if claims.TokenType != domain.TokenTypeAccess && claims.TokenType != domain.TokenTypeRefresh {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (j *jwtService) GetPublicKey() *rsa.PublicKey {
	return j.strategy.GetPublicKey()
}

func (j *jwtService) sign(subject, email, name string, isStaff bool, tokenType domain.TokenType, ttl time.Duration) (string, error) {
	now := j.now()
	tokenID := ulid.Make().String()
	claims := &domain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
		TokenType: tokenType,
		Email:     email,
		Name:      name,
		IsStaff:   isStaff,
	}

	signed, err := j.strategy.Sign(claims)
	if err != nil {
		j.logger.Error("Failed to sign token",
			zap.Error(err),
			zap.String("token_id", tokenID),
			zap.String("token_type", string(tokenType)),
			zap.String("user_id", subject))
		return "", domain.ErrTokenGeneration
	}
	return signed, nil
}
