package handlers

import (
	"context"
	"net/http"

	"github.com/manorfm/scholarship-auth/internal/application"
	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/dto"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*application.LoginResult, error)
	Refresh(refreshToken string) (string, error)
	VerifyToken(token string) (*domain.Claims, error)
	CurrentUser(ctx context.Context, subject string) (*domain.User, error)
}

type HandlerAuth struct {
	authService AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService AuthService, logger *zap.Logger) *HandlerAuth {
	return &HandlerAuth{
		authService: authService,
		logger:      logger,
	}
}

func (h *HandlerAuth) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, h.logger, "failed to login user", err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, dto.NewSessionResponse(result.User, result.Tokens))
}

func (h *HandlerAuth) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	access, err := h.authService.Refresh(req.Refresh)
	if err != nil {
		respondError(w, h.logger, "failed to refresh token", err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, dto.AccessResponse{Access: access})
}

func (h *HandlerAuth) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyTokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if _, err := h.authService.VerifyToken(req.Token); err != nil {
		respondError(w, h.logger, "failed to verify token", err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, struct{}{})
}

// MeHandler returns the profile of the authenticated user.
func (h *HandlerAuth) MeHandler(w http.ResponseWriter, r *http.Request) {
	subject, ok := domain.GetSubject(r.Context())
	if !ok {
		errors.RespondWithError(w, domain.ErrUnauthorized)
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), subject)
	if err != nil {
		respondError(w, h.logger, "failed to load current user", err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, dto.NewUserResponse(user))
}
