package models

import "time"

// UserRole represents the fixed actor roles in the partnership exchange.
type UserRole string

const (
	RoleOwner        UserRole = "OWNER"
	RoleStudentGroup UserRole = "STUDENT_GROUP"
	RoleStudent      UserRole = "STUDENT"
)

// Valid reports whether the role is one of the closed set.
func (r UserRole) Valid() bool {
	switch r {
	case RoleOwner, RoleStudentGroup, RoleStudent:
		return true
	}
	return false
}

// User represents an application user stored in the users table.
// The role is assigned at registration and never changes afterwards.
type User struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	ModifiedAt   time.Time  `db:"modified_at" json:"modified_at"`
}

// UserRef is the lightweight representation embedded in proposal views.
type UserRef struct {
	ID       string   `db:"id" json:"id"`
	Username string   `db:"username" json:"username"`
	Role     UserRole `db:"role" json:"role"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
