package handlers

import (
	"context"
	"net/http"

	"github.com/manorfm/scholarship-auth/internal/application"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

type Registrar interface {
	Register(ctx context.Context, req application.RegistrationRequest) (*application.RegistrationResult, error)
	VerifyCode(ctx context.Context, email, otpCode string) error
}

type HandlerRegistration struct {
	registrar Registrar
	logger    *zap.Logger
}

func NewRegistrationHandler(registrar Registrar, logger *zap.Logger) *HandlerRegistration {
	return &HandlerRegistration{registrar: registrar, logger: logger}
}

func (h *HandlerRegistration) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.RegistrationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.registrar.Register(r.Context(), application.RegistrationRequest{
		Email:     req.Email,
		Password:  req.Password,
		Password2: req.Password2,
		FullName:  req.FullName,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		OTPCode:   req.OTPCode,
	})
	if err != nil {
		respondError(w, h.logger, "failed to register user", err)
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, dto.NewSessionResponse(result.User, result.Tokens))
}

// VerifyCodeHandler checks a registration code without spending it, so the
// client can confirm it before submitting the registration form.
func (h *HandlerRegistration) VerifyCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyCodeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.registrar.VerifyCode(r.Context(), req.Email, req.OTPCode); err != nil {
		respondError(w, h.logger, "failed to verify code", err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, dto.VerifyCodeResponse{
		Message:  "OTP verified successfully. You can now complete your registration.",
		Verified: true,
	})
}
