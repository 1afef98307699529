package handlers

import (
	"context"
	"net/http"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/dto"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

type UserService interface {
	UpdateProfile(ctx context.Context, id domain.ULID, update domain.ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, id domain.ULID, oldPassword, newPassword, newPassword2 string) error
}

type HandlerUser struct {
	userService UserService
	logger      *zap.Logger
}

func NewUserHandler(userService UserService, logger *zap.Logger) *HandlerUser {
	return &HandlerUser{
		userService: userService,
		logger:      logger,
	}
}

func (h *HandlerUser) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := subjectID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), id, req.ToDomain())
	if err != nil {
		respondError(w, h.logger, "failed to update profile", err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, dto.NewUserResponse(user))
}

func (h *HandlerUser) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := subjectID(w, r)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.userService.ChangePassword(r.Context(), id, req.OldPassword, req.NewPassword, req.NewPassword2); err != nil {
		respondError(w, h.logger, "failed to change password", err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, dto.MessageResponse{Message: "Password updated successfully"})
}

// subjectID reads the authenticated user id placed in the context by the auth middleware.
func subjectID(w http.ResponseWriter, r *http.Request) (domain.ULID, bool) {
	subject, ok := domain.GetSubject(r.Context())
	if !ok {
		errors.RespondWithError(w, domain.ErrUnauthorized)
		return domain.ULID{}, false
	}
	id, err := domain.ParseULID(subject)
	if err != nil {
		errors.RespondWithError(w, domain.ErrInvalidToken)
		return domain.ULID{}, false
	}
	return id, true
}
