package dto

import "github.com/manorfm/scholarship-auth/internal/domain"

// UpdateProfileRequest is a partial update. Absent fields are left unchanged.
type UpdateProfileRequest struct {
	FullName  *string `json:"full_name" validate:"omitempty,max=150"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
}

func (r UpdateProfileRequest) ToDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		FullName:  r.FullName,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}

type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password" validate:"max=128"`
	NewPassword  string `json:"new_password" validate:"max=128"`
	NewPassword2 string `json:"new_password2" validate:"max=128"`
}
