package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/manorfm/scholarship-auth/internal/application"
	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

type CodeRequester interface {
	RequestRegistrationCode(ctx context.Context, email string, resend bool) (*application.IssueResult, error)
	Redeliver(ctx context.Context, email string, purpose domain.Purpose) (*application.IssueResult, error)
}

type HandlerVerification struct {
	issuer CodeRequester
	logger *zap.Logger
}

func NewVerificationHandler(issuer CodeRequester, logger *zap.Logger) *HandlerVerification {
	return &HandlerVerification{issuer: issuer, logger: logger}
}

// RequestCodeHandler sends a registration code.
func (h *HandlerVerification) RequestCodeHandler(w http.ResponseWriter, r *http.Request) {
	h.request(w, r, false)
}

// ResendCodeHandler sends a new registration code with the shorter cooldown.
func (h *HandlerVerification) ResendCodeHandler(w http.ResponseWriter, r *http.Request) {
	h.request(w, r, true)
}

// RedeliverCodeHandler sends the current registration code again.
func (h *HandlerVerification) RedeliverCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.issuer.Redeliver(r.Context(), req.Email, domain.PurposeRegistration)
	if err != nil {
		respondError(w, h.logger, "failed to redeliver verification code", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, codeResponse(result))
}

func (h *HandlerVerification) request(w http.ResponseWriter, r *http.Request, resend bool) {
	var req dto.EmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.issuer.RequestRegistrationCode(r.Context(), req.Email, resend)
	if err != nil {
		respondError(w, h.logger, "failed to issue verification code", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, codeResponse(result))
}

func codeResponse(result *application.IssueResult) *dto.CodeResponse {
	if result.Sent {
		return &dto.CodeResponse{
			Message: "Verification code sent to your email",
			Email:   result.Email,
		}
	}
	canResend := result.CanResend
	return &dto.CodeResponse{
		Message:   fmt.Sprintf("Please wait %d seconds before requesting a new code", result.WaitTime),
		Email:     result.Email,
		CanResend: &canResend,
		WaitTime:  result.WaitTime,
	}
}
