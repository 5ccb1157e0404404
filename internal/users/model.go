package users

import "time"

const (
	RoleLawyer = "lawyer"
	RoleClient = "client"
)

// User is a lawyer or client account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	BarCouncilID string    `json:"barCouncilId,omitempty"`
	MobileNumber string    `json:"mobileNumber,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ValidRole reports whether the role is one of the two supported roles.
func ValidRole(role string) bool {
	return role == RoleLawyer || role == RoleClient
}
