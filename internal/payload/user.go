package payload

import "time"

// UserResponse is the public view of a user. The password hash is internal
// and never leaves the service.
type UserResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	RegistrationDate time.Time `json:"registration_date"`
	Verified         bool      `json:"verified"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required"`
}
