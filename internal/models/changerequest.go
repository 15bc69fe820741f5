package models

import (
	"encoding/json"
	"time"
)

// Entity kinds governed by dual authorization. The set is closed: every
// switch over EntityKind handles exactly these two values.
const (
	KindUser = "user"
	KindRole = "role"
)

// Actions a change request can carry.
const (
	ActionCreate     = "create"
	ActionUpdate     = "update"
	ActionDelete     = "delete"
	ActionActivate   = "activate"
	ActionDeactivate = "deactivate"
)

// Change request statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Active statuses for governed entities.
const (
	ActiveStatusActive   = "active"
	ActiveStatusInactive = "inactive"
)

// Valid status transitions: from -> []to. Approved and Rejected are terminal.
var ValidStatusTransitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {},
	StatusRejected: {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidStatusTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func IsValidAction(action string) bool {
	switch action {
	case ActionCreate, ActionUpdate, ActionDelete, ActionActivate, ActionDeactivate:
		return true
	}
	return false
}

func IsValidKind(kind string) bool {
	return kind == KindUser || kind == KindRole
}

// ChangeRequest is the unit of the maker-checker workflow: one proposed
// mutation against a user or role, waiting for a second admin to resolve it.
//
// OldData holds the pre-image for update requests. NewData holds the proposed
// payload for create/update, or a snapshot of the current entity for
// delete/activate/deactivate (the snapshot is how the checker side recovers
// the target id). ReviewedBy and ReviewedAt are set exactly when the request
// leaves pending.
type ChangeRequest struct {
	ID         int             `json:"id"`
	EntityKind string          `json:"entity_kind"` // user / role
	Action     string          `json:"action"`
	OldData    json.RawMessage `json:"old_data,omitempty"`
	NewData    json.RawMessage `json:"new_data"`
	Status     string          `json:"status"`
	CreatedBy  int             `json:"created_by"`
	ReviewedBy *int            `json:"reviewed_by,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	ReviewedAt *time.Time      `json:"reviewed_at,omitempty"`
}

// Pending reports whether the request can still be resolved.
func (cr *ChangeRequest) Pending() bool {
	return cr.Status == StatusPending
}

// LocksTarget reports whether submitting this action holds a lock on an
// existing entity. Create has no target, so nothing is locked and nothing
// needs unlocking on resolve.
func (cr *ChangeRequest) LocksTarget() bool {
	return cr.Action != ActionCreate
}
