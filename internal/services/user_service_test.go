package services

import (
	"context"
	"testing"

	"github.com/admin-portal/backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestRequestCreateUser(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")

	cr, err := e.userSvc.RequestCreate(context.Background(), 1, models.UserPayload{
		Username: "ada",
		Password: "secret",
		RoleID:   role.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, cr.Status)
	require.Equal(t, models.KindUser, cr.EntityKind)
	require.Equal(t, models.ActionCreate, cr.Action)
	require.Equal(t, 1, cr.CreatedBy)

	// Nothing is materialized until a checker approves.
	require.Empty(t, e.st.users)
	require.Len(t, e.st.requests, 1)

	// Submission leaves an audit entry and an event behind.
	require.Len(t, e.audit.entries, 1)
	require.Len(t, e.pub.published, 1)
}

func TestRequestCreateUserRequiresActor(t *testing.T) {
	e := newEnv(t)

	_, err := e.userSvc.RequestCreate(context.Background(), 0, models.UserPayload{Username: "ada"})
	require.ErrorIs(t, err, models.ErrActorRequired)
	require.Empty(t, e.st.requests)
}

func TestRequestUpdateLocksUser(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")
	user := e.seedUser("ada", role.ID)

	cr, err := e.userSvc.RequestUpdate(context.Background(), 1, user.ID, models.UserPayload{
		Username: "ada2",
		RoleID:   role.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.ActionUpdate, cr.Action)
	require.NotEmpty(t, cr.OldData)

	got := e.st.users[user.ID]
	require.True(t, got.Locked)
	// Domain fields untouched while pending.
	require.Equal(t, "ada", got.Username)
}

func TestRequestUpdateLockedUserRejected(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")
	user := e.seedUser("ada", role.ID)

	_, err := e.userSvc.RequestUpdate(context.Background(), 1, user.ID, models.UserPayload{Username: "a", RoleID: role.ID})
	require.NoError(t, err)

	// A second maker loses the race.
	_, err = e.userSvc.RequestDelete(context.Background(), 2, user.ID)
	require.ErrorIs(t, err, models.ErrEntityLocked)

	// Exactly one request exists and the lock is still held.
	require.Len(t, e.st.requests, 1)
	require.True(t, e.st.users[user.ID].Locked)
}

func TestRequestUpdateMissingUser(t *testing.T) {
	e := newEnv(t)

	_, err := e.userSvc.RequestUpdate(context.Background(), 1, 99, models.UserPayload{Username: "x", RoleID: 1})
	require.ErrorIs(t, err, models.ErrEntityNotFound)
	require.Empty(t, e.st.requests)
}

func TestRequestActivateAlreadyActive(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")
	user := e.seedUser("ada", role.ID)
	u := e.st.users[user.ID]
	u.ActiveStatus = models.ActiveStatusActive
	e.st.users[user.ID] = u

	_, err := e.userSvc.RequestActivate(context.Background(), 1, user.ID)
	require.ErrorIs(t, err, models.ErrAlreadyInStatus)

	// The guard fires inside the transaction, so no lock survives.
	require.False(t, e.st.users[user.ID].Locked)
	require.Empty(t, e.st.requests)
}

func TestRequestDeactivate(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")
	user := e.seedUser("ada", role.ID)
	u := e.st.users[user.ID]
	u.ActiveStatus = models.ActiveStatusActive
	e.st.users[user.ID] = u

	cr, err := e.userSvc.RequestDeactivate(context.Background(), 1, user.ID)
	require.NoError(t, err)
	require.Equal(t, models.ActionDeactivate, cr.Action)
	require.True(t, e.st.users[user.ID].Locked)
	// The entity keeps its status until approval.
	require.Equal(t, models.ActiveStatusActive, e.st.users[user.ID].ActiveStatus)
}

func TestSearchUsers(t *testing.T) {
	e := newEnv(t)
	ops := e.seedRole("operator")
	aud := e.seedRole("auditor")
	e.seedUser("ada", ops.ID)
	e.seedUser("grace", aud.ID)

	byName, err := e.userSvc.Search(context.Background(), "ada", 20, 0)
	require.NoError(t, err)
	require.Len(t, byName, 1)
	require.Equal(t, "ada", byName[0].Username)

	byRole, err := e.userSvc.Search(context.Background(), "auditor", 20, 0)
	require.NoError(t, err)
	require.Len(t, byRole, 1)
	require.Equal(t, "grace", byRole[0].Username)

	all, err := e.userSvc.Search(context.Background(), "", 20, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
