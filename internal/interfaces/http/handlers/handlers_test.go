package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/manorfm/scholarship-auth/internal/application"
	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockCodeRequester struct {
	mock.Mock
}

func (m *mockCodeRequester) RequestRegistrationCode(ctx context.Context, email string, resend bool) (*application.IssueResult, error) {
	args := m.Called(ctx, email, resend)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.IssueResult), args.Error(1)
}

func (m *mockCodeRequester) Redeliver(ctx context.Context, email string, purpose domain.Purpose) (*application.IssueResult, error) {
	args := m.Called(ctx, email, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.IssueResult), args.Error(1)
}

type mockRegistrar struct {
	mock.Mock
}

func (m *mockRegistrar) Register(ctx context.Context, req application.RegistrationRequest) (*application.RegistrationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.RegistrationResult), args.Error(1)
}

func (m *mockRegistrar) VerifyCode(ctx context.Context, email, otpCode string) error {
	args := m.Called(ctx, email, otpCode)
	return args.Error(0)
}

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id domain.ULID, update domain.ProfileUpdate) (*domain.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserService) ChangePassword(ctx context.Context, id domain.ULID, oldPassword, newPassword, newPassword2 string) error {
	args := m.Called(ctx, id, oldPassword, newPassword, newPassword2)
	return args.Error(0)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*application.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.LoginResult), args.Error(1)
}

func (m *mockAuthService) Refresh(refreshToken string) (string, error) {
	args := m.Called(refreshToken)
	return args.String(0), args.Error(1)
}

func (m *mockAuthService) VerifyToken(token string) (*domain.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claims), args.Error(1)
}

func (m *mockAuthService) CurrentUser(ctx context.Context, subject string) (*domain.User, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockPasswordResetter struct {
	mock.Mock
}

func (m *mockPasswordResetter) RequestReset(ctx context.Context, email string, resend bool) (*application.IssueResult, error) {
	args := m.Called(ctx, email, resend)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.IssueResult), args.Error(1)
}

func (m *mockPasswordResetter) ConfirmReset(ctx context.Context, email, otpCode, newPassword, newPassword2 string) error {
	args := m.Called(ctx, email, otpCode, newPassword, newPassword2)
	return args.Error(0)
}

func newJSONRequest(t *testing.T, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestVerificationHandler_RequestCode(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		mockSetup      func(*mockCodeRequester)
		expectedStatus int
		check          func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "code sent",
			body: map[string]string{"email": "a@x.com"},
			mockSetup: func(m *mockCodeRequester) {
				m.On("RequestRegistrationCode", mock.Anything, "a@x.com", false).
					Return(&application.IssueResult{Email: "a@x.com", Sent: true}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Verification code sent to your email", body["message"])
				assert.Equal(t, "a@x.com", body["email"])
				assert.NotContains(t, body, "canResend")
			},
		},
		{
			name: "cooldown",
			body: map[string]string{"email": "a@x.com"},
			mockSetup: func(m *mockCodeRequester) {
				m.On("RequestRegistrationCode", mock.Anything, "a@x.com", false).
					Return(&application.IssueResult{Email: "a@x.com", WaitTime: 42}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, false, body["canResend"])
				assert.Equal(t, float64(42), body["waitTime"])
			},
		},
		{
			name:           "invalid email",
			body:           map[string]string{"email": "nope"},
			mockSetup:      func(m *mockCodeRequester) {},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "U0001", body["code"])
				details := body["details"].(map[string]interface{})
				assert.Equal(t, []interface{}{"Enter a valid email address."}, details["email"])
			},
		},
		{
			name:           "malformed body",
			body:           "{",
			mockSetup:      func(m *mockCodeRequester) {},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "U0002", body["code"])
			},
		},
		{
			name: "already registered",
			body: map[string]string{"email": "a@x.com"},
			mockSetup: func(m *mockCodeRequester) {
				m.On("RequestRegistrationCode", mock.Anything, "a@x.com", false).
					Return(nil, domain.ErrEmailAlreadyRegistered)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "delivery failed",
			body: map[string]string{"email": "a@x.com"},
			mockSetup: func(m *mockCodeRequester) {
				m.On("RequestRegistrationCode", mock.Anything, "a@x.com", false).
					Return(nil, domain.ErrDeliveryFailed)
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := new(mockCodeRequester)
			tt.mockSetup(issuer)
			handler := NewVerificationHandler(issuer, zap.NewNop())

			w := httptest.NewRecorder()
			handler.RequestCodeHandler(w, newJSONRequest(t, tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.check != nil {
				tt.check(t, decodeBody(t, w))
			}
			issuer.AssertExpectations(t)
		})
	}
}

func TestVerificationHandler_ResendAndRedeliver(t *testing.T) {
	issuer := new(mockCodeRequester)
	issuer.On("RequestRegistrationCode", mock.Anything, "a@x.com", true).
		Return(&application.IssueResult{Email: "a@x.com", Sent: true}, nil)
	issuer.On("Redeliver", mock.Anything, "a@x.com", domain.PurposeRegistration).
		Return(nil, domain.ErrInvalidOrExpiredCode)
	handler := NewVerificationHandler(issuer, zap.NewNop())

	w := httptest.NewRecorder()
	handler.ResendCodeHandler(w, newJSONRequest(t, map[string]string{"email": "a@x.com"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.RedeliverCodeHandler(w, newJSONRequest(t, map[string]string{"email": "a@x.com"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "U0004", decodeBody(t, w)["code"])

	issuer.AssertExpectations(t)
}

func TestRegistrationHandler_Register(t *testing.T) {
	user := domain.NewUser("a@x.com", "hash", "Ada Lovelace", "", "", time.Now())
	tokens := &domain.TokenPair{AccessToken: "access", RefreshToken: "refresh"}
	payload := map[string]string{
		"email":     "a@x.com",
		"password":  "Sup3rSecure!",
		"password2": "Sup3rSecure!",
		"full_name": "Ada Lovelace",
		"otp_code":  "482913",
	}
	want := application.RegistrationRequest{
		Email:     "a@x.com",
		Password:  "Sup3rSecure!",
		Password2: "Sup3rSecure!",
		FullName:  "Ada Lovelace",
		OTPCode:   "482913",
	}

	tests := []struct {
		name           string
		mockSetup      func(*mockRegistrar)
		expectedStatus int
		check          func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "created",
			mockSetup: func(m *mockRegistrar) {
				m.On("Register", mock.Anything, want).Return(&application.RegistrationResult{User: user, Tokens: tokens}, nil)
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "access", body["access"])
				assert.Equal(t, "refresh", body["refresh"])
				u := body["user"].(map[string]interface{})
				assert.Equal(t, user.ID.String(), u["id"])
				assert.Equal(t, "a@x.com", u["email"])
				assert.Equal(t, "Ada Lovelace", u["full_name"])
				assert.NotContains(t, u, "password")
			},
		},
		{
			name: "field errors",
			mockSetup: func(m *mockRegistrar) {
				verr := domain.NewValidationError()
				verr.Add("otp_code", "OTP must contain only digits")
				m.On("Register", mock.Anything, want).Return(nil, verr)
			},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				details := body["details"].(map[string]interface{})
				assert.Equal(t, []interface{}{"OTP must contain only digits"}, details["otp_code"])
				assert.NotContains(t, details, "password")
			},
		},
		{
			name: "invalid code",
			mockSetup: func(m *mockRegistrar) {
				m.On("Register", mock.Anything, want).Return(nil, domain.ErrInvalidOrExpiredCode)
			},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Invalid OTP code", body["message"])
			},
		},
		{
			name: "concurrent consume",
			mockSetup: func(m *mockRegistrar) {
				m.On("Register", mock.Anything, want).Return(nil, domain.ErrCodeAlreadyConsumed)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "unexpected failure is hidden",
			mockSetup: func(m *mockRegistrar) {
				m.On("Register", mock.Anything, want).Return(nil, assert.AnError)
			},
			expectedStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Internal server error", body["message"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registrar := new(mockRegistrar)
			tt.mockSetup(registrar)
			handler := NewRegistrationHandler(registrar, zap.NewNop())

			w := httptest.NewRecorder()
			handler.RegisterHandler(w, newJSONRequest(t, payload))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.check != nil {
				tt.check(t, decodeBody(t, w))
			}
			registrar.AssertExpectations(t)
		})
	}
}

func TestRegistrationHandler_FieldTooLong(t *testing.T) {
	registrar := new(mockRegistrar)
	handler := NewRegistrationHandler(registrar, zap.NewNop())

	w := httptest.NewRecorder()
	handler.RegisterHandler(w, newJSONRequest(t, map[string]string{"full_name": strings.Repeat("a", 151)}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body errors.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, []string{"Ensure this field has no more than 150 characters."}, body.Details["full_name"])
	registrar.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegistrationHandler_VerifyCode(t *testing.T) {
	registrar := new(mockRegistrar)
	registrar.On("VerifyCode", mock.Anything, "a@x.com", "482913").Return(nil)
	registrar.On("VerifyCode", mock.Anything, "a@x.com", "000000").Return(domain.ErrInvalidOrExpiredCode)
	handler := NewRegistrationHandler(registrar, zap.NewNop())

	w := httptest.NewRecorder()
	handler.VerifyCodeHandler(w, newJSONRequest(t, map[string]string{"email": "a@x.com", "otp_code": "482913"}))
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["verified"])
	assert.Equal(t, "OTP verified successfully. You can now complete your registration.", body["message"])

	w = httptest.NewRecorder()
	handler.VerifyCodeHandler(w, newJSONRequest(t, map[string]string{"email": "a@x.com", "otp_code": "000000"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "U0004", decodeBody(t, w)["code"])

	w = httptest.NewRecorder()
	handler.VerifyCodeHandler(w, newJSONRequest(t, map[string]string{"email": "a@x.com", "otp_code": strings.Repeat("1", 33)}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	registrar.AssertNumberOfCalls(t, "VerifyCode", 2)
}

func withSubject(req *http.Request, subject string) *http.Request {
	return req.WithContext(domain.WithSubject(req.Context(), subject))
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	user := domain.NewUser("a@x.com", "hash", "Ada Lovelace", "Ada", "Lovelace", time.Now())
	updated := *user
	updated.FirstName = "Augusta"

	tests := []struct {
		name           string
		subject        string
		body           interface{}
		mockSetup      func(*mockUserService)
		expectedStatus int
		check          func(t *testing.T, body map[string]interface{})
	}{
		{
			name:    "partial update",
			subject: user.ID.String(),
			body:    map[string]string{"first_name": "Augusta"},
			mockSetup: func(m *mockUserService) {
				m.On("UpdateProfile", mock.Anything, user.ID, mock.MatchedBy(func(u domain.ProfileUpdate) bool {
					return u.FirstName != nil && *u.FirstName == "Augusta" && u.LastName == nil && u.FullName == nil
				})).Return(&updated, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Augusta", body["first_name"])
				assert.Equal(t, "Lovelace", body["last_name"])
			},
		},
		{
			name:           "name too long",
			subject:        user.ID.String(),
			body:           map[string]string{"last_name": strings.Repeat("b", 151)},
			mockSetup:      func(m *mockUserService) {},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "U0001", body["code"])
			},
		},
		{
			name:           "missing subject",
			body:           map[string]string{"first_name": "Augusta"},
			mockSetup:      func(m *mockUserService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "malformed subject",
			subject:        "not-a-ulid",
			body:           map[string]string{"first_name": "Augusta"},
			mockSetup:      func(m *mockUserService) {},
			expectedStatus: http.StatusUnauthorized,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "U0012", body["code"])
			},
		},
		{
			name:    "inactive account",
			subject: user.ID.String(),
			body:    map[string]string{"first_name": "Augusta"},
			mockSetup: func(m *mockUserService) {
				m.On("UpdateProfile", mock.Anything, user.ID, mock.Anything).Return(nil, domain.ErrAccountInactive)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockUserService)
			tt.mockSetup(svc)
			handler := NewUserHandler(svc, zap.NewNop())

			req := newJSONRequest(t, tt.body)
			if tt.subject != "" {
				req = withSubject(req, tt.subject)
			}
			w := httptest.NewRecorder()
			handler.UpdateProfileHandler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.check != nil {
				tt.check(t, decodeBody(t, w))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestUserHandler_ChangePassword(t *testing.T) {
	id := domain.NewUser("a@x.com", "hash", "Ada Lovelace", "Ada", "Lovelace", time.Now()).ID
	wrong := domain.NewValidationError()
	wrong.Add("old_password", "Wrong password.")

	svc := new(mockUserService)
	svc.On("ChangePassword", mock.Anything, id, "OldPassw0rd!", "N3wPassword!", "N3wPassword!").Return(nil)
	svc.On("ChangePassword", mock.Anything, id, "guess", "N3wPassword!", "N3wPassword!").Return(wrong)
	handler := NewUserHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	handler.ChangePasswordHandler(w, withSubject(newJSONRequest(t, map[string]string{
		"old_password": "OldPassw0rd!", "new_password": "N3wPassword!", "new_password2": "N3wPassword!",
	}), id.String()))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password updated successfully", decodeBody(t, w)["message"])

	w = httptest.NewRecorder()
	handler.ChangePasswordHandler(w, withSubject(newJSONRequest(t, map[string]string{
		"old_password": "guess", "new_password": "N3wPassword!", "new_password2": "N3wPassword!",
	}), id.String()))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body errors.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, []string{"Wrong password."}, body.Details["old_password"])

	w = httptest.NewRecorder()
	handler.ChangePasswordHandler(w, newJSONRequest(t, map[string]string{"old_password": "OldPassw0rd!"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNumberOfCalls(t, "ChangePassword", 2)
}

func TestAuthHandler_Login(t *testing.T) {
	user := domain.NewUser("a@x.com", "hash", "Ada", "", "", time.Now())

	tests := []struct {
		name           string
		body           interface{}
		mockSetup      func(*mockAuthService)
		expectedStatus int
	}{
		{
			name: "successful login",
			body: map[string]string{"email": "a@x.com", "password": "Sup3rSecure!"},
			mockSetup: func(m *mockAuthService) {
				m.On("Login", mock.Anything, "a@x.com", "Sup3rSecure!").Return(&application.LoginResult{
					User:   user,
					Tokens: &domain.TokenPair{AccessToken: "access", RefreshToken: "refresh"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid credentials",
			body: map[string]string{"email": "a@x.com", "password": "wrong"},
			mockSetup: func(m *mockAuthService) {
				m.On("Login", mock.Anything, "a@x.com", "wrong").Return(nil, domain.ErrInvalidCredentials)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "missing password",
			body:           map[string]string{"email": "a@x.com"},
			mockSetup:      func(m *mockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockAuthService)
			tt.mockSetup(svc)
			handler := NewAuthHandler(svc, zap.NewNop())

			w := httptest.NewRecorder()
			handler.LoginHandler(w, newJSONRequest(t, tt.body))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Tokens(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Refresh", "good-refresh").Return("new-access", nil)
	svc.On("Refresh", "access-token").Return("", domain.ErrInvalidToken)
	svc.On("VerifyToken", "good").Return(&domain.Claims{}, nil)
	svc.On("VerifyToken", "stale").Return(nil, domain.ErrTokenExpired)
	handler := NewAuthHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	handler.RefreshHandler(w, newJSONRequest(t, map[string]string{"refresh": "good-refresh"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new-access", decodeBody(t, w)["access"])

	w = httptest.NewRecorder()
	handler.RefreshHandler(w, newJSONRequest(t, map[string]string{"refresh": "access-token"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	handler.VerifyHandler(w, newJSONRequest(t, map[string]string{"token": "good"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody(t, w))

	w = httptest.NewRecorder()
	handler.VerifyHandler(w, newJSONRequest(t, map[string]string{"token": "stale"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "U0013", decodeBody(t, w)["code"])
}

func TestAuthHandler_Me(t *testing.T) {
	user := domain.NewUser("a@x.com", "hash", "Ada Lovelace", "Ada", "Lovelace", time.Now())
	svc := new(mockAuthService)
	svc.On("CurrentUser", mock.Anything, user.ID.String()).Return(user, nil)
	handler := NewAuthHandler(svc, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(domain.WithSubject(req.Context(), user.ID.String()))
	w := httptest.NewRecorder()
	handler.MeHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Ada", body["first_name"])
	assert.Equal(t, true, body["is_active"])

	w = httptest.NewRecorder()
	handler.MeHandler(w, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetHandler(t *testing.T) {
	resetter := new(mockPasswordResetter)
	resetter.On("RequestReset", mock.Anything, "a@x.com", false).
		Return(&application.IssueResult{Email: "a@x.com", Sent: true}, nil)
	resetter.On("RequestReset", mock.Anything, "a@x.com", true).
		Return(&application.IssueResult{Email: "a@x.com", Sent: true}, nil)
	resetter.On("ConfirmReset", mock.Anything, "a@x.com", "482913", "N3wPassword!", "N3wPassword!").Return(nil)
	resetter.On("ConfirmReset", mock.Anything, "a@x.com", "000000", "N3wPassword!", "N3wPassword!").Return(domain.ErrInvalidOrExpiredCode)
	handler := NewPasswordResetHandler(resetter, zap.NewNop())

	w := httptest.NewRecorder()
	handler.RequestHandler(w, newJSONRequest(t, map[string]string{"email": "a@x.com"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, passwordResetSentMessage, decodeBody(t, w)["message"])

	w = httptest.NewRecorder()
	handler.ResendHandler(w, newJSONRequest(t, map[string]string{"email": "a@x.com"}))
	assert.Equal(t, http.StatusOK, w.Code)

	confirm := map[string]string{
		"email":         "a@x.com",
		"otp_code":      "482913",
		"new_password":  "N3wPassword!",
		"new_password2": "N3wPassword!",
	}
	w = httptest.NewRecorder()
	handler.ConfirmHandler(w, newJSONRequest(t, confirm))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password has been reset successfully.", decodeBody(t, w)["message"])

	confirm["otp_code"] = "000000"
	w = httptest.NewRecorder()
	handler.ConfirmHandler(w, newJSONRequest(t, confirm))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resetter.AssertExpectations(t)
}
