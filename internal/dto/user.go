package dto

import (
	"github.com/SscSPs/lecturer_claims_app/internal/core/domain"
)

// UserResponse is the public view of a user.
type UserResponse struct {
	UserID string        `json:"userID"`
	Email  string        `json:"email"`
	Name   string        `json:"name"`
	Phone  string        `json:"phone,omitempty"`
	Roles  []domain.Role `json:"roles"`
}

// UpdateLecturerContactRequest is used by HR to correct a lecturer's contact details.
type UpdateLecturerContactRequest struct {
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"max=30"`
}

// MeResponse describes the caller and where the UI should send them.
type MeResponse struct {
	User    UserResponse `json:"user"`
	Landing string       `json:"landing"`
}

// ListUsersResponse wraps the list of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

// ToUserResponse converts a domain.User to UserResponse DTO
func ToUserResponse(u *domain.User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []domain.Role{}
	}
	return UserResponse{
		UserID: u.UserID,
		Email:  u.Email,
		Name:   u.Name,
		Phone:  u.Phone,
		Roles:  roles,
	}
}

// ToListUserResponse converts a slice of domain.User to ListUsersResponse DTO
func ToListUserResponse(users []domain.User) ListUsersResponse {
	res := make([]UserResponse, len(users))
	for i := range users {
		res[i] = ToUserResponse(&users[i])
	}
	return ListUsersResponse{Users: res}
}
