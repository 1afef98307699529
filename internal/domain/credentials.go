package domain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func fieldValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// ValidateEmail returns the messages for a malformed address.
func ValidateEmail(email string) []string {
	email = strings.TrimSpace(email)
	if email == "" {
		return []string{"This field is required."}
	}
	if err := fieldValidator().Var(email, "email,max=254"); err != nil {
		return []string{"Enter a valid email address."}
	}
	return nil
}

// OTPCode is a submitted verification code. Its rules cover shape only
// and share nothing with password validation.
type OTPCode string

// Validate checks the code is present, digits only and exactly length long.
func (c OTPCode) Validate(length int) []string {
	code := strings.TrimSpace(string(c))
	if code == "" {
		return []string{"OTP code is required"}
	}

	var msgs []string
	for _, r := range code {
		if r < '0' || r > '9' {
			msgs = append(msgs, "OTP must contain only digits")
			break
		}
	}
	if len(code) != length {
		msgs = append(msgs, fmt.Sprintf("OTP must be exactly %d digits", length))
	}
	return msgs
}

// Normalized returns the code without surrounding whitespace.
func (c OTPCode) Normalized() string {
	return strings.TrimSpace(string(c))
}

// PasswordPolicy is the complexity policy applied to password fields.
type PasswordPolicy struct {
	MinLength int
	Common    map[string]struct{}
}

var commonPasswords = []string{
	"password", "password1", "password123", "1234567890", "qwertyuiop",
	"iloveyou123", "letmein123", "welcome123", "admin12345", "passw0rd123",
	"football123", "baseball123", "abc1234567", "monkey12345", "sunshine123",
}

func DefaultPasswordPolicy() PasswordPolicy {
	common := make(map[string]struct{}, len(commonPasswords))
	for _, p := range commonPasswords {
		common[p] = struct{}{}
	}
	return PasswordPolicy{MinLength: 10, Common: common}
}

// Validate returns every policy violation for password. email is used for the similarity rule.
func (p PasswordPolicy) Validate(password, email string) []string {
	var msgs []string

	if len(password) < p.MinLength {
		msgs = append(msgs, fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.MinLength))
	}
	if _, ok := p.Common[strings.ToLower(password)]; ok {
		msgs = append(msgs, "This password is too common.")
	}
	if password != "" && isNumeric(password) {
		msgs = append(msgs, "This password is entirely numeric.")
	}
	if local := localPart(email); len(local) >= 3 && strings.Contains(strings.ToLower(password), local) {
		msgs = append(msgs, "The password is too similar to the email.")
	}
	return msgs
}

// ValidatePasswordPair validates a password and its confirmation under the
// given field names, adding messages to errs.
func (p PasswordPolicy) ValidatePasswordPair(errs *ValidationError, field, confirmField, password, confirm, email string) {
	if password == "" {
		errs.Add(field, "This field is required.")
		return
	}
	if confirm == "" {
		errs.Add(confirmField, "This field is required.")
		return
	}
	if password != confirm {
		errs.Add(field, "Password fields didn't match.")
		return
	}
	errs.Add(field, p.Validate(password, email)...)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func localPart(email string) string {
	email = NormalizeEmail(email)
	if at := strings.LastIndex(email, "@"); at > 0 {
		return email[:at]
	}
	return ""
}
