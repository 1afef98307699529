package auth

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// AuthMiddleware guards routes with RS256 bearer access tokens.
type AuthMiddleware struct {
	tokenAuth *jwtauth.JWTAuth
	logger    *zap.Logger
}

func NewAuthMiddleware(jwtService domain.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokenAuth: jwtauth.New("RS256", nil, jwtService.GetPublicKey()),
		logger:    logger,
	}
}

// Verifier parses the bearer token into the request context.
func (m *AuthMiddleware) Verifier(next http.Handler) http.Handler {
	return jwtauth.Verify(m.tokenAuth, jwtauth.TokenFromHeader)(next)
}

// Authenticator rejects requests without a valid access token and stores the
// subject and claims in the context.
func (m *AuthMiddleware) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			if err == jwtauth.ErrNoTokenFound {
				errors.RespondWithError(w, domain.ErrUnauthorized)
				return
			}
			m.logger.Debug("Rejected bearer token", zap.Error(err))
			errors.RespondWithError(w, domain.ErrInvalidToken)
			return
		}
		if token == nil {
			errors.RespondWithError(w, domain.ErrUnauthorized)
			return
		}

		if tokenType, _ := claims["token_type"].(string); tokenType != string(domain.TokenTypeAccess) {
			errors.RespondWithError(w, domain.ErrInvalidToken)
			return
		}

		ctx := domain.WithSubject(r.Context(), token.Subject())
		ctx = domain.WithClaims(ctx, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Protect chains Verifier and Authenticator.
func (m *AuthMiddleware) Protect(next http.Handler) http.Handler {
	return m.Verifier(m.Authenticator(next))
}
