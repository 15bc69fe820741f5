package models

import (
	"encoding/json"
	"fmt"
)

// UserPayload is the proposed state carried by user create/update requests.
// The plaintext password travels inside the pending snapshot and is hashed
// when the request is approved.
type UserPayload struct {
	ID        int     `json:"id,omitempty"`
	Username  string  `json:"username"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Password  string  `json:"password,omitempty"`
	RoleID    int     `json:"role_id"`
}

// RolePayload is the proposed state carried by role create/update requests.
type RolePayload struct {
	ID            int    `json:"id,omitempty"`
	Name          string `json:"name"`
	PermissionIDs []int  `json:"permission_ids"`
}

// EncodeSnapshot serializes a payload or entity for storage in a change
// request.
func EncodeSnapshot(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot deserializes a stored snapshot into v. Schema mismatches and
// corrupt data surface as ErrMalformedPayload.
func DecodeSnapshot(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty snapshot", ErrMalformedPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
