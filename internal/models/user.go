package models

import (
	"time"
)

type User struct {
	ID           int        `json:"id"`
	Username     string     `json:"username"`
	FirstName    *string    `json:"first_name,omitempty"`
	LastName     *string    `json:"last_name,omitempty"`
	PasswordHash string     `json:"-"`
	RoleID       int        `json:"role_id"`
	ActiveStatus string     `json:"active_status"` // active / inactive / "" (never set)
	Locked       bool       `json:"locked"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// UserWithRole embeds User and adds the role name to avoid N+1 queries on list pages.
type UserWithRole struct {
	User
	RoleName string `json:"role_name"`
}
