package models

import "errors"

// Sentinel errors for the dual-authorization workflow. Handlers map these to
// client-visible responses with errors.Is; none of them may be swallowed by
// the service layer.
var (
	// ErrEntityNotFound is returned when a referenced user or role id does
	// not exist in the store.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrEntityLocked is returned when the target entity already has a
	// pending change request against it.
	ErrEntityLocked = errors.New("entity is locked by a pending change request")

	// ErrAlreadyInStatus is returned when an activate/deactivate request
	// targets an entity already in the intended status.
	ErrAlreadyInStatus = errors.New("entity is already in the requested status")

	// ErrRequestNotFound is returned when a change request id is unknown.
	ErrRequestNotFound = errors.New("change request not found")

	// ErrNotPending is returned when resolving a request that is already
	// approved or rejected.
	ErrNotPending = errors.New("change request is not pending")

	// ErrReferencedEntityNotFound is returned when a snapshot references a
	// permission or role that no longer exists.
	ErrReferencedEntityNotFound = errors.New("referenced entity not found")

	// ErrMalformedPayload is returned when a stored snapshot fails to decode.
	ErrMalformedPayload = errors.New("malformed snapshot payload")

	// ErrActorRequired is returned when an operation is attempted without an
	// authenticated actor id.
	ErrActorRequired = errors.New("actor id required")
)
