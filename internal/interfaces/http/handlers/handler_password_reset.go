package handlers

import (
	"context"
	"net/http"

	"github.com/manorfm/scholarship-auth/internal/application"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const passwordResetSentMessage = "If an account exists for this email, a password reset code has been sent."

type PasswordResetter interface {
	RequestReset(ctx context.Context, email string, resend bool) (*application.IssueResult, error)
	ConfirmReset(ctx context.Context, email, otpCode, newPassword, newPassword2 string) error
}

type HandlerPasswordReset struct {
	resetter PasswordResetter
	logger   *zap.Logger
}

func NewPasswordResetHandler(resetter PasswordResetter, logger *zap.Logger) *HandlerPasswordReset {
	return &HandlerPasswordReset{resetter: resetter, logger: logger}
}

func (h *HandlerPasswordReset) RequestHandler(w http.ResponseWriter, r *http.Request) {
	h.request(w, r, false)
}

func (h *HandlerPasswordReset) ResendHandler(w http.ResponseWriter, r *http.Request) {
	h.request(w, r, true)
}

func (h *HandlerPasswordReset) request(w http.ResponseWriter, r *http.Request, resend bool) {
	var req dto.EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.resetter.RequestReset(r.Context(), req.Email, resend)
	if err != nil {
		respondError(w, h.logger, "failed to request password reset", err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, &dto.CodeResponse{
		Message: passwordResetSentMessage,
		Email:   result.Email,
	})
}

func (h *HandlerPasswordReset) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetConfirmRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.resetter.ConfirmReset(r.Context(), req.Email, req.OTPCode, req.NewPassword, req.NewPassword2); err != nil {
		respondError(w, h.logger, "failed to reset password", err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, dto.MessageResponse{Message: "Password has been reset successfully."})
}
