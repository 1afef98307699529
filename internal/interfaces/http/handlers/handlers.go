package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// decodeAndValidate decodes the JSON body into req and runs its validate
// tags. It writes the error response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.RespondWithError(w, domain.ErrInvalidRequestBody)
		return false
	}

	err := requestValidator().Struct(req)
	if err == nil {
		return true
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errors.RespondWithError(w, domain.ErrInvalidRequestBody)
		return false
	}

	fields := domain.NewValidationError()
	for _, fe := range verrs {
		fields.Add(fe.Field(), fieldMessage(fe))
	}
	errors.RespondWithError(w, fields)
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	}
	return "Invalid value."
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// respondError renders err and logs it when it is not part of the domain taxonomy.
func respondError(w http.ResponseWriter, logger *zap.Logger, msg string, err error) {
	if !errors.Respond(w, err) {
		logger.Error(msg, zap.Error(err))
	}
}
