package models

import (
	"time"
)

type Role struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	ActiveStatus string       `json:"active_status"` // active / inactive / "" (never set)
	Locked       bool         `json:"locked"`
	Permissions  []Permission `json:"permissions,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at,omitempty"`
}

type Permission struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PermissionIDs returns the ids of the role's permissions in declaration order.
func (r *Role) PermissionIDs() []int {
	ids := make([]int, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		ids = append(ids, p.ID)
	}
	return ids
}
