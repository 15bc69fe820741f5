package models

import (
	"time"
)

type AuditLog struct {
	ID         int64     `json:"id"`
	ActorID    *int      `json:"actor_id,omitempty"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"` // user / role / change_request
	EntityID   *int      `json:"entity_id,omitempty"`
	Meta       any       `json:"meta,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
