package domain

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULID represents a Universally Unique Lexicographically Sortable Identifier
// @Description A string representation of ULID
// @type string
// @format ulid
type ULID = ulid.ULID

// User is a registered account.
type User struct {
	ID        ulid.ULID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"full_name"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Active    bool      `json:"is_active"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates an active account. Registration is the email verification step,
// so accounts are active from creation.
func NewUser(email, hashedPassword, fullName, firstName, lastName string, now time.Time) *User {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName = strings.TrimSpace(firstName + " " + lastName)
	}

	return &User{
		ID:        ulid.Make(),
		Email:     NormalizeEmail(email),
		Password:  hashedPassword,
		FullName:  fullName,
		FirstName: firstName,
		LastName:  lastName,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DisplayName falls back to the email when no name was given.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// ProfileUpdate is a partial change to the name fields. Nil fields are left as they are.
type ProfileUpdate struct {
	FullName  *string
	FirstName *string
	LastName  *string
}

// Apply writes the set fields to u, trimmed.
func (p ProfileUpdate) Apply(u *User, now time.Time) {
	if p.FirstName != nil {
		u.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		u.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.FullName != nil {
		u.FullName = strings.TrimSpace(*p.FullName)
	}
	u.UpdatedAt = now
}

// IsEmpty reports whether no field is set.
func (p ProfileUpdate) IsEmpty() bool {
	return p.FullName == nil && p.FirstName == nil && p.LastName == nil
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user. It returns ErrEmailAlreadyRegistered on a uniqueness violation.
	Create(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id ulid.ULID) (*User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks if a user exists with the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdatePassword updates a user's password
	UpdatePassword(ctx context.Context, userID ulid.ULID, hashedPassword string, at time.Time) error

	// UpdateProfile stores the user's name fields and UpdatedAt
	UpdateProfile(ctx context.Context, user *User) error
}

// PasswordHasher hashes and checks credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) error
}
